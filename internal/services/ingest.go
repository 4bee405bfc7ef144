package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/drawhub-backend/internal/catalog/filetype"
	"github.com/yungbote/drawhub-backend/internal/catalog/pdfsplit"
	"github.com/yungbote/drawhub-backend/internal/catalog/thumbnail"
	"github.com/yungbote/drawhub-backend/internal/data/repos"
	types "github.com/yungbote/drawhub-backend/internal/domain"
	"github.com/yungbote/drawhub-backend/internal/platform/apierr"
	"github.com/yungbote/drawhub-backend/internal/platform/dbctx"
	"github.com/yungbote/drawhub-backend/internal/platform/logger"
	"github.com/yungbote/drawhub-backend/internal/platform/objectstore"
)

type IngestOptions struct {
	DrawingNumber string
	Name          string
	// Split creates one drawing per page when the upload is a PDF.
	Split bool
}

type IngestService interface {
	CreateFromUpload(ctx context.Context, up Upload, opts IngestOptions) ([]*types.Drawing, error)
}

type ingestService struct {
	db       *gorm.DB
	log      *logger.Logger
	drawings repos.DrawingRepo
	blobs    *blobs
	splitter pdfsplit.Splitter
	notify   DrawingNotifier
	now      func() time.Time
}

func NewIngestService(
	db *gorm.DB,
	log *logger.Logger,
	drawings repos.DrawingRepo,
	store objectstore.BlobStore,
	splitter pdfsplit.Splitter,
	thumbs thumbnail.Generator,
	notify DrawingNotifier,
) IngestService {
	serviceLog := log.With("service", "IngestService")
	return &ingestService{
		db:       db,
		log:      serviceLog,
		drawings: drawings,
		blobs:    &blobs{log: serviceLog, store: store, thumb: thumbs},
		splitter: splitter,
		notify:   notifierOrNop(notify),
		now:      time.Now,
	}
}

// pendingDrawing is one record to create together with the payload it points at.
type pendingDrawing struct {
	key         string
	data        []byte
	contentType string
	number      string
	name        *string
}

func (s *ingestService) CreateFromUpload(ctx context.Context, up Upload, opts IngestOptions) ([]*types.Drawing, error) {
	if unsupportedFile(up) {
		return nil, apierr.BadInput("unsupported_file_type", filetype.UnsupportedMessage)
	}
	now := s.now()
	pending, err := s.plan(ctx, up, opts, now)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		s.log.Info("PDF had no pages; nothing created", "filename", up.Filename)
		return []*types.Drawing{}, nil
	}

	var uploaded []string
	records := make([]*types.Drawing, 0, len(pending))
	for i, p := range pending {
		url, err := s.blobs.store.Put(ctx, p.data, p.key, p.contentType)
		if err != nil {
			s.log.Error("Upload failed", "key", p.key, "error", err)
			s.blobs.deleteAll(ctx, uploaded...)
			return nil, fmt.Errorf("store %q: %w", p.key, err)
		}
		uploaded = append(uploaded, url)

		thumb := s.blobs.thumbnail(ctx, p.key, p.data, p.contentType, up.Filename, p.number)
		if thumb != nil {
			uploaded = append(uploaded, *thumb)
		}
		d := &types.Drawing{
			DrawingNumber: p.number,
			Name:          p.name,
			FileURL:       url,
			ThumbnailURL:  thumb,
			Status:        types.StatusCompleted,
			// later pages sort as newer, as if created one after another
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		}
		d.SetMetadata(types.Metadata{}, types.Metadata{})
		records = append(records, d)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.drawings.Create(dbctx.New(ctx).WithTx(tx), records)
		return err
	})
	if err != nil {
		s.log.Error("Create drawings failed; removing uploaded blobs", "count", len(records), "error", err)
		s.blobs.deleteAll(ctx, uploaded...)
		return nil, fmt.Errorf("create drawings: %w", err)
	}

	for _, d := range records {
		s.notify.DrawingCreated(d)
	}
	s.log.Info("Drawings created", "count", len(records), "split", opts.Split)
	return records, nil
}

func (s *ingestService) plan(ctx context.Context, up Upload, opts IngestOptions, now time.Time) ([]pendingDrawing, error) {
	millis := now.UnixMilli()
	number := strings.TrimSpace(opts.DrawingNumber)
	name := strings.TrimSpace(opts.Name)

	if !opts.Split || !filetype.IsPDF(up.ContentType, up.Filename) {
		if number == "" {
			number = fmt.Sprintf("DWG-%d", millis)
		}
		return []pendingDrawing{{
			key:         objectstore.UploadKey(millis, up.Filename),
			data:        up.Data,
			contentType: filetype.ResolveContentType(up.ContentType, up.Filename, up.Data),
			number:      number,
			name:        strPtr(name),
		}}, nil
	}

	pages, err := s.splitter.Split(ctx, up.Data)
	if err != nil {
		if errors.Is(err, pdfsplit.ErrInvalidDocument) {
			s.log.Warn("PDF split failed", "filename", up.Filename, "error", err)
			return nil, apierr.BadInput("invalid_pdf", "Failed to process/split PDF file")
		}
		return nil, err
	}

	base := number
	if base == "" {
		base = fmt.Sprintf("DWG-%d", millis)
	}
	out := make([]pendingDrawing, 0, len(pages))
	for i, page := range pages {
		p := pendingDrawing{
			key:         objectstore.PageKey(millis, up.Filename, i+1),
			data:        page,
			contentType: filetype.PDF,
			number:      fmt.Sprintf("%s-%d", base, i+1),
		}
		if name != "" {
			p.name = strPtr(fmt.Sprintf("%s (%d)", name, i+1))
		}
		out = append(out, p)
	}
	return out, nil
}
