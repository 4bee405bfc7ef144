// Package pdfsplit turns a multi-page PDF into one single-page PDF per page.
package pdfsplit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrInvalidDocument wraps every parse or validation failure of the input.
var ErrInvalidDocument = errors.New("invalid pdf document")

type Splitter interface {
	// Split returns the pages of data in order, each serialized as its own PDF.
	// A document without pages yields an empty slice.
	Split(ctx context.Context, data []byte) ([][]byte, error)
}

type pdfcpuSplitter struct {
	conf *model.Configuration
}

var disableConfigDir sync.Once

func New() Splitter {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &pdfcpuSplitter{conf: conf}
}

func (s *pdfcpuSplitter) Split(ctx context.Context, data []byte) (pages [][]byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("%w: %v", ErrInvalidDocument, r)
		}
	}()

	pdfCtx, err := s.read(data)
	if err != nil {
		return nil, err
	}

	out := make([][]byte, 0, pdfCtx.PageCount)
	for nr := 1; nr <= pdfCtx.PageCount; nr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := api.ExtractPage(pdfCtx, nr)
		if err != nil {
			return nil, fmt.Errorf("%w: extract page %d: %v", ErrInvalidDocument, nr, err)
		}
		buf, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", nr, err)
		}
		out = append(out, buf)
	}
	return out, nil
}

// PageCount parses data and reports its page count.
func (s *pdfcpuSplitter) PageCount(data []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("%w: %v", ErrInvalidDocument, r)
		}
	}()
	pdfCtx, err := s.read(data)
	if err != nil {
		return 0, err
	}
	return pdfCtx.PageCount, nil
}

func (s *pdfcpuSplitter) read(data []byte) (*model.Context, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidDocument)
	}
	pdfCtx, err := api.ReadContext(bytes.NewReader(data), s.conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := pdfCtx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return pdfCtx, nil
}
