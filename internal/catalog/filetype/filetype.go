// Package filetype decides which uploads the catalogue accepts and how they
// are stored.
package filetype

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	PDF         = "application/pdf"
	OctetStream = "application/octet-stream"
)

// UnsupportedMessage is the client-facing rejection text.
const UnsupportedMessage = "Unsupported file type. Accepted formats: PDF, PNG, JPG, TIFF, DXF, DWG"

var acceptedTypes = map[string]bool{
	PDF:                  true,
	"image/png":          true,
	"image/jpeg":         true,
	"image/tiff":         true,
	"application/dxf":    true,
	"image/vnd.dxf":      true,
	"application/x-dxf":  true,
	"application/acad":   true,
	"application/x-acad": true,
}

var acceptedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".dxf":  true,
	".dwg":  true,
}

// Kind groups accepted formats by how previews are produced.
type Kind string

const (
	KindPDF    Kind = "pdf"
	KindRaster Kind = "raster"
	KindCAD    Kind = "cad"
	KindOther  Kind = "other"
)

func normalize(contentType string) string {
	ct := strings.TrimSpace(contentType)
	if ct == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(ct); err == nil {
		return strings.ToLower(parsed)
	}
	return strings.ToLower(ct)
}

func Ext(filename string) string {
	return strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
}

// Accepted reports whether the declared media type or the filename extension
// is on the allow-list.
func Accepted(contentType, filename string) bool {
	return acceptedTypes[normalize(contentType)] || acceptedExtensions[Ext(filename)]
}

// IsPDF reports whether the upload is a splittable paged document.
func IsPDF(contentType, filename string) bool {
	return normalize(contentType) == PDF || Ext(filename) == ".pdf"
}

// IsGeneric reports whether a declared media type carries no information.
func IsGeneric(contentType string) bool {
	ct := normalize(contentType)
	return ct == "" || ct == OctetStream || ct == "binary/octet-stream"
}

// ResolveContentType returns the media type to store the payload under.
// Generic declarations fall back to the extension, then to content sniffing.
func ResolveContentType(declared, filename string, data []byte) string {
	if !IsGeneric(declared) {
		return normalize(declared)
	}
	if byExt := byExtension(Ext(filename)); byExt != "" {
		return byExt
	}
	if len(data) > 0 {
		if detected := mimetype.Detect(data); detected != nil {
			if ct := normalize(detected.String()); ct != "" && ct != "text/plain" {
				return ct
			}
		}
	}
	return OctetStream
}

func byExtension(ext string) string {
	switch ext {
	case ".pdf":
		return PDF
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".dxf":
		return "image/vnd.dxf"
	case ".dwg":
		return "image/vnd.dwg"
	default:
		return ""
	}
}

// Classify picks the preview strategy for a stored payload.
func Classify(contentType, filename string) Kind {
	switch ct := normalize(contentType); {
	case ct == PDF:
		return KindPDF
	case ct == "image/png", ct == "image/jpeg", ct == "image/tiff":
		return KindRaster
	case strings.Contains(ct, "dxf"), strings.Contains(ct, "dwg"), strings.Contains(ct, "acad"):
		return KindCAD
	}
	switch Ext(filename) {
	case ".pdf":
		return KindPDF
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
		return KindRaster
	case ".dxf", ".dwg":
		return KindCAD
	}
	return KindOther
}

// Label is the short upper-case format name shown on generated previews.
func Label(contentType, filename string) string {
	if ext := strings.TrimPrefix(Ext(filename), "."); ext != "" {
		return strings.ToUpper(ext)
	}
	switch Classify(contentType, filename) {
	case KindPDF:
		return "PDF"
	case KindCAD:
		return "CAD"
	default:
		return "FILE"
	}
}
