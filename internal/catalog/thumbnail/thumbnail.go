// Package thumbnail renders small PNG previews for catalogue listings.
package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	_ "golang.org/x/image/tiff"

	"github.com/yungbote/drawhub-backend/internal/catalog/filetype"
)

const DefaultSize = 320

type Request struct {
	Data        []byte
	ContentType string
	Filename    string
	// Caption is printed on generated cards, usually the drawing number.
	Caption string
}

type Generator interface {
	Generate(ctx context.Context, req Request) ([]byte, error)
}

type generator struct {
	size int

	fontOnce  sync.Once
	fontErr   error
	labelFace font.Face
	textFace  font.Face
}

func New(size int) Generator {
	if size <= 0 {
		size = DefaultSize
	}
	return &generator{size: size}
}

func (g *generator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if filetype.Classify(req.ContentType, req.Filename) == filetype.KindRaster {
		return g.scaleRaster(req.Data)
	}
	return g.card(filetype.Label(req.ContentType, req.Filename), req.Caption)
}

// scaleRaster fits the image inside a size x size square on white, keeping aspect ratio.
func (g *generator) scaleRaster(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decode image: empty bounds")
	}
	scale := float64(g.size) / float64(max(b.Dx(), b.Dy()))
	if scale > 1 {
		scale = 1
	}
	w := max(1, int(float64(b.Dx())*scale))
	h := max(1, int(float64(b.Dy())*scale))

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Over, nil)

	dc := gg.NewContext(g.size, g.size)
	dc.SetColor(color.White)
	dc.Clear()
	dc.DrawImageAnchored(scaled, g.size/2, g.size/2, 0.5, 0.5)

	var out bytes.Buffer
	if err := dc.EncodePNG(&out); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return out.Bytes(), nil
}

// card draws a format badge with a caption for files that have no raster preview.
func (g *generator) card(label, caption string) ([]byte, error) {
	if err := g.loadFonts(); err != nil {
		return nil, err
	}
	size := float64(g.size)

	dc := gg.NewContext(g.size, g.size)
	dc.SetRGB255(244, 246, 248)
	dc.Clear()

	dc.SetRGB255(33, 87, 150)
	dc.SetLineWidth(6)
	dc.DrawRectangle(size*0.08, size*0.08, size*0.84, size*0.84)
	dc.Stroke()

	dc.SetFontFace(g.labelFace)
	dc.DrawStringAnchored(label, size/2, size*0.45, 0.5, 0.5)

	if c := strings.TrimSpace(caption); c != "" {
		dc.SetRGB255(60, 60, 60)
		dc.SetFontFace(g.textFace)
		dc.DrawStringWrapped(c, size/2, size*0.68, 0.5, 0, size*0.76, 1.2, gg.AlignCenter)
	}

	var out bytes.Buffer
	if err := dc.EncodePNG(&out); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return out.Bytes(), nil
}

func (g *generator) loadFonts() error {
	g.fontOnce.Do(func() {
		bold, err := truetype.Parse(gobold.TTF)
		if err != nil {
			g.fontErr = fmt.Errorf("parse bold font: %w", err)
			return
		}
		regular, err := truetype.Parse(goregular.TTF)
		if err != nil {
			g.fontErr = fmt.Errorf("parse regular font: %w", err)
			return
		}
		g.labelFace = truetype.NewFace(bold, &truetype.Options{Size: float64(g.size) / 5, DPI: 72, Hinting: font.HintingNone})
		g.textFace = truetype.NewFace(regular, &truetype.Options{Size: float64(g.size) / 16, DPI: 72, Hinting: font.HintingNone})
	})
	return g.fontErr
}
