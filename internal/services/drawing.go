package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/drawhub-backend/internal/catalog/csvio"
	"github.com/yungbote/drawhub-backend/internal/catalog/metadata"
	"github.com/yungbote/drawhub-backend/internal/data/repos"
	types "github.com/yungbote/drawhub-backend/internal/domain"
	"github.com/yungbote/drawhub-backend/internal/platform/apierr"
	"github.com/yungbote/drawhub-backend/internal/platform/dbctx"
	"github.com/yungbote/drawhub-backend/internal/platform/logger"
	"github.com/yungbote/drawhub-backend/internal/platform/objectstore"
)

const (
	DefaultPage  = 1
	DefaultLimit = 24
	MaxLimit     = 200
)

type SearchQuery struct {
	Q     string
	Page  int
	Limit int
}

// Normalize applies paging defaults and bounds.
func (q SearchQuery) Normalize() SearchQuery {
	q.Q = strings.TrimSpace(q.Q)
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q
}

type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type SearchResult struct {
	Data []*types.Drawing `json:"data"`
	Meta PageMeta         `json:"meta"`
}

// UpdateInput carries a partial edit; nil fields are left alone.
type UpdateInput struct {
	DrawingNumber *string
	Name          *string
	Metadata      *types.Metadata
}

type DrawingService interface {
	Search(ctx context.Context, q SearchQuery) (*SearchResult, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Drawing, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*types.Drawing, error)
	Delete(ctx context.Context, id uuid.UUID) (*types.Drawing, error)
	AddRelation(ctx context.Context, fromID, toID uuid.UUID, relationType string) (*types.DrawingRelation, error)
	RemoveRelation(ctx context.Context, drawingID, relationID uuid.UUID) (*types.DrawingRelation, error)
	Export(ctx context.Context, w io.Writer) error
}

type drawingService struct {
	db        *gorm.DB
	log       *logger.Logger
	drawings  repos.DrawingRepo
	relations repos.RelationRepo
	revisions repos.RevisionRepo
	blobs     *blobs
	notify    DrawingNotifier
}

func NewDrawingService(
	db *gorm.DB,
	log *logger.Logger,
	drawingRepo repos.DrawingRepo,
	relationRepo repos.RelationRepo,
	revisionRepo repos.RevisionRepo,
	store objectstore.BlobStore,
	notify DrawingNotifier,
) DrawingService {
	serviceLog := log.With("service", "DrawingService")
	return &drawingService{
		db:        db,
		log:       serviceLog,
		drawings:  drawingRepo,
		relations: relationRepo,
		revisions: revisionRepo,
		blobs:     &blobs{log: serviceLog, store: store},
		notify:    notifierOrNop(notify),
	}
}

func (s *drawingService) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	q = q.Normalize()
	rows, total, err := s.drawings.Search(dbctx.New(ctx), repos.SearchFilter{
		Query:  q.Q,
		Offset: (q.Page - 1) * q.Limit,
		Limit:  q.Limit,
	})
	if err != nil {
		s.log.Error("Search failed", "query", q.Q, "error", err)
		return nil, fmt.Errorf("search drawings: %w", err)
	}
	return &SearchResult{
		Data: rows,
		Meta: PageMeta{
			Total:      total,
			Page:       q.Page,
			Limit:      q.Limit,
			TotalPages: int((total + int64(q.Limit) - 1) / int64(q.Limit)),
		},
	}, nil
}

func (s *drawingService) Get(ctx context.Context, id uuid.UUID) (*types.Drawing, error) {
	d, err := s.drawings.GetDetailed(dbctx.New(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("load drawing: %w", err)
	}
	if d == nil {
		return nil, errDrawingNotFound(id)
	}
	return d, nil
}

func (s *drawingService) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*types.Drawing, error) {
	var out *types.Drawing
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.New(ctx).WithTx(tx)
		d, err := s.drawings.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if d == nil {
			return errDrawingNotFound(id)
		}

		fields := map[string]interface{}{}
		if in.DrawingNumber != nil {
			number := strings.TrimSpace(*in.DrawingNumber)
			if number == "" {
				return apierr.BadInput("drawing_number_required", "drawingNumber must not be empty")
			}
			fields["drawing_number"] = number
		}
		if in.Name != nil {
			fields["name"] = strPtr(*in.Name)
		}
		if in.Metadata != nil {
			res := metadata.Replace(d.Meta(), d.Sources(), *in.Metadata)
			d.SetMetadata(res.Metadata, res.Sources)
			fields["metadata"] = d.Metadata
			fields["metadata_sources"] = d.MetadataSources
			s.log.Debug("Metadata replaced", "drawing_id", id, "marked", res.Marked, "removed", res.Removed)
		}
		if err := s.drawings.UpdateFields(dbc, id, fields); err != nil {
			return err
		}
		out, err = s.drawings.GetByID(dbc, id)
		return err
	})
	if err != nil {
		if _, ok := apierr.As(err); ok {
			return nil, err
		}
		s.log.Error("Update failed", "drawing_id", id, "error", err)
		return nil, fmt.Errorf("update drawing: %w", err)
	}
	s.notify.DrawingUpdated(out)
	return out, nil
}

func (s *drawingService) Delete(ctx context.Context, id uuid.UUID) (*types.Drawing, error) {
	var deleted *types.Drawing
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.New(ctx).WithTx(tx)
		d, err := s.drawings.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if d == nil {
			return errDrawingNotFound(id)
		}
		revs, err := s.revisions.ListByDrawingID(dbc, id)
		if err != nil {
			return err
		}
		for _, r := range revs {
			d.Revisions = append(d.Revisions, *r)
		}
		relCount, err := s.relations.DeleteByDrawingID(dbc, id)
		if err != nil {
			return err
		}
		if _, err := s.revisions.DeleteByDrawingID(dbc, id); err != nil {
			return err
		}
		if err := s.drawings.DeleteByID(dbc, id); err != nil {
			return err
		}
		if relCount > 0 {
			s.log.Info("Removed relations of deleted drawing", "drawing_id", id, "count", relCount)
		}
		deleted = d
		return nil
	})
	if err != nil {
		if _, ok := apierr.As(err); ok {
			return nil, err
		}
		s.log.Error("Delete failed", "drawing_id", id, "error", err)
		return nil, fmt.Errorf("delete drawing: %w", err)
	}

	s.blobs.deleteAll(ctx, deleted.BlobURLs()...)
	deleted.Revisions = nil
	s.notify.DrawingDeleted(id)
	return deleted, nil
}

func (s *drawingService) AddRelation(ctx context.Context, fromID, toID uuid.UUID, relationType string) (*types.DrawingRelation, error) {
	rt, ok := types.ParseRelationType(relationType)
	if !ok {
		return nil, apierr.Conflict("invalid_relation_type", fmt.Sprintf("Invalid relationType: %s", relationType))
	}
	dbc := dbctx.New(ctx)
	for _, id := range []uuid.UUID{fromID, toID} {
		d, err := s.drawings.GetByID(dbc, id)
		if err != nil {
			return nil, fmt.Errorf("load drawing: %w", err)
		}
		if d == nil {
			return nil, errDrawingNotFound(id)
		}
	}
	rel, err := s.relations.Create(dbc, &types.DrawingRelation{
		FromDrawingID: fromID,
		ToDrawingID:   toID,
		RelationType:  rt,
	})
	if errors.Is(err, repos.ErrDuplicateRelation) {
		return nil, apierr.Conflict("relation_exists", "This relation already exists")
	}
	if err != nil {
		s.log.Error("Create relation failed", "from", fromID, "to", toID, "error", err)
		return nil, fmt.Errorf("create relation: %w", err)
	}
	return rel, nil
}

// RemoveRelation only deletes relations that touch drawingID.
func (s *drawingService) RemoveRelation(ctx context.Context, drawingID, relationID uuid.UUID) (*types.DrawingRelation, error) {
	dbc := dbctx.New(ctx)
	rel, err := s.relations.GetByID(dbc, relationID)
	if err != nil {
		return nil, fmt.Errorf("load relation: %w", err)
	}
	if rel == nil || (rel.FromDrawingID != drawingID && rel.ToDrawingID != drawingID) {
		return nil, apierr.NotFound("relation_not_found", fmt.Sprintf("Relation with ID %s not found", relationID))
	}
	if err := s.relations.DeleteByID(dbc, relationID); err != nil {
		return nil, fmt.Errorf("delete relation: %w", err)
	}
	return rel, nil
}

func (s *drawingService) Export(ctx context.Context, w io.Writer) error {
	all, err := s.drawings.ListAll(dbctx.New(ctx))
	if err != nil {
		return fmt.Errorf("list drawings: %w", err)
	}
	if err := csvio.WriteExport(w, all); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	s.log.Debug("Exported drawings", "count", len(all))
	return nil
}
