package drawings

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/drawhub-backend/internal/domain"
	"github.com/yungbote/drawhub-backend/internal/platform/dbctx"
	"github.com/yungbote/drawhub-backend/internal/platform/logger"
)

type RevisionRepo interface {
	Create(dbc dbctx.Context, revisions ...*types.DrawingRevision) error
	ListByDrawingID(dbc dbctx.Context, drawingID uuid.UUID) ([]*types.DrawingRevision, error)
	DeleteByDrawingID(dbc dbctx.Context, drawingID uuid.UUID) (int64, error)
}

type revisionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRevisionRepo(db *gorm.DB, baseLog *logger.Logger) RevisionRepo {
	repoLog := baseLog.With("repo", "RevisionRepo")
	return &revisionRepo{db: db, log: repoLog}
}

func (r *revisionRepo) Create(dbc dbctx.Context, revisions ...*types.DrawingRevision) error {
	if len(revisions) == 0 {
		return nil
	}
	return dbc.DB(r.db).Create(&revisions).Error
}

// ListByDrawingID returns revisions newest first.
func (r *revisionRepo) ListByDrawingID(dbc dbctx.Context, drawingID uuid.UUID) ([]*types.DrawingRevision, error) {
	results := []*types.DrawingRevision{}
	if err := dbc.DB(r.db).
		Where("drawing_id = ?", drawingID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *revisionRepo) DeleteByDrawingID(dbc dbctx.Context, drawingID uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).Where("drawing_id = ?", drawingID).Delete(&types.DrawingRevision{})
	return res.RowsAffected, res.Error
}
