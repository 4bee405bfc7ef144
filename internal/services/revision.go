package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/drawhub-backend/internal/catalog/filetype"
	"github.com/yungbote/drawhub-backend/internal/catalog/thumbnail"
	"github.com/yungbote/drawhub-backend/internal/data/repos"
	types "github.com/yungbote/drawhub-backend/internal/domain"
	"github.com/yungbote/drawhub-backend/internal/platform/apierr"
	"github.com/yungbote/drawhub-backend/internal/platform/dbctx"
	"github.com/yungbote/drawhub-backend/internal/platform/logger"
	"github.com/yungbote/drawhub-backend/internal/platform/objectstore"
)

type RevisionService interface {
	// Create archives the current content of the drawing and promotes up as its new content.
	Create(ctx context.Context, drawingID uuid.UUID, up Upload, label, reason string) (*types.DrawingRevision, error)
	List(ctx context.Context, drawingID uuid.UUID) ([]*types.DrawingRevision, error)
}

type revisionService struct {
	db        *gorm.DB
	log       *logger.Logger
	drawings  repos.DrawingRepo
	revisions repos.RevisionRepo
	blobs     *blobs
	notify    DrawingNotifier
	now       func() time.Time
}

func NewRevisionService(
	db *gorm.DB,
	log *logger.Logger,
	drawingRepo repos.DrawingRepo,
	revisionRepo repos.RevisionRepo,
	store objectstore.BlobStore,
	thumbs thumbnail.Generator,
	notify DrawingNotifier,
) RevisionService {
	serviceLog := log.With("service", "RevisionService")
	return &revisionService{
		db:        db,
		log:       serviceLog,
		drawings:  drawingRepo,
		revisions: revisionRepo,
		blobs:     &blobs{log: serviceLog, store: store, thumb: thumbs},
		notify:    notifierOrNop(notify),
		now:       time.Now,
	}
}

func errDrawingNotFound(id uuid.UUID) error {
	return apierr.NotFound("drawing_not_found", fmt.Sprintf("Drawing with ID %s not found", id))
}

func (s *revisionService) Create(ctx context.Context, drawingID uuid.UUID, up Upload, label, reason string) (*types.DrawingRevision, error) {
	label = strings.TrimSpace(label)
	reason = strings.TrimSpace(reason)
	if label == "" {
		return nil, apierr.BadInput("revision_required", "Revision number is required")
	}
	if unsupportedFile(up) {
		return nil, apierr.BadInput("unsupported_file_type", filetype.UnsupportedMessage)
	}
	current, err := s.drawings.GetByID(dbctx.New(ctx), drawingID)
	if err != nil {
		return nil, fmt.Errorf("load drawing: %w", err)
	}
	if current == nil {
		return nil, errDrawingNotFound(drawingID)
	}

	now := s.now()
	key := objectstore.UploadKey(now.UnixMilli(), up.Filename)
	contentType := filetype.ResolveContentType(up.ContentType, up.Filename, up.Data)
	newURL, err := s.blobs.store.Put(ctx, up.Data, key, contentType)
	if err != nil {
		s.log.Error("Revision upload failed", "drawing_id", drawingID, "key", key, "error", err)
		return nil, fmt.Errorf("store %q: %w", key, err)
	}
	thumb := s.blobs.thumbnail(ctx, key, up.Data, contentType, up.Filename, current.DrawingNumber)

	var (
		created  *types.DrawingRevision
		oldThumb *string
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.New(ctx).WithTx(tx)
		d, err := s.drawings.GetByID(dbc, drawingID)
		if err != nil {
			return err
		}
		if d == nil {
			return errDrawingNotFound(drawingID)
		}
		oldThumb = d.ThumbnailURL

		var rows []*types.DrawingRevision
		if d.FileURL != "" {
			archived := deref(d.Revision)
			if archived == "" {
				archived = types.InitialRevisionLabel
			}
			rows = append(rows, &types.DrawingRevision{
				DrawingID: d.ID,
				Revision:  archived,
				FileURL:   d.FileURL,
				CreatedAt: now,
			})
		}
		created = &types.DrawingRevision{
			DrawingID: d.ID,
			Revision:  label,
			FileURL:   newURL,
			Reason:    strPtr(reason),
			// strictly after the archive row
			CreatedAt: now.Add(time.Microsecond),
		}
		rows = append(rows, created)
		if err := s.revisions.Create(dbc, rows...); err != nil {
			return err
		}
		return s.drawings.UpdateFields(dbc, d.ID, map[string]interface{}{
			"file_url":      newURL,
			"revision":      label,
			"thumbnail_url": thumb,
		})
	})
	if err != nil {
		s.log.Error("Revision promote failed; removing new blob", "drawing_id", drawingID, "error", err)
		s.blobs.deleteAll(ctx, newURL, deref(thumb))
		if _, ok := apierr.As(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("create revision: %w", err)
	}
	if oldThumb != nil && deref(oldThumb) != deref(thumb) {
		s.blobs.deleteAll(ctx, *oldThumb)
	}

	if updated, err := s.drawings.GetByID(dbctx.New(ctx), drawingID); err != nil {
		s.log.Warn("Reload after revision failed", "drawing_id", drawingID, "error", err)
	} else {
		s.notify.DrawingUpdated(updated)
	}
	s.log.Info("Revision created", "drawing_id", drawingID, "revision", label)
	return created, nil
}

func (s *revisionService) List(ctx context.Context, drawingID uuid.UUID) ([]*types.DrawingRevision, error) {
	dbc := dbctx.New(ctx)
	d, err := s.drawings.GetByID(dbc, drawingID)
	if err != nil {
		return nil, fmt.Errorf("load drawing: %w", err)
	}
	if d == nil {
		return nil, errDrawingNotFound(drawingID)
	}
	return s.revisions.ListByDrawingID(dbc, drawingID)
}
