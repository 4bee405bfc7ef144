package drawings

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/drawhub-backend/internal/domain"
	"github.com/yungbote/drawhub-backend/internal/platform/dbctx"
	"github.com/yungbote/drawhub-backend/internal/platform/logger"
)

// ErrDuplicateRelation is returned when the (from, to, type) edge already exists.
var ErrDuplicateRelation = errors.New("relation already exists")

type RelationRepo interface {
	Create(dbc dbctx.Context, rel *types.DrawingRelation) (*types.DrawingRelation, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.DrawingRelation, error)
	ListByDrawingID(dbc dbctx.Context, drawingID uuid.UUID) ([]*types.DrawingRelation, error)
	DeleteByID(dbc dbctx.Context, id uuid.UUID) error
	DeleteByDrawingID(dbc dbctx.Context, drawingID uuid.UUID) (int64, error)
}

type relationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRelationRepo(db *gorm.DB, baseLog *logger.Logger) RelationRepo {
	repoLog := baseLog.With("repo", "RelationRepo")
	return &relationRepo{db: db, log: repoLog}
}

func (r *relationRepo) Create(dbc dbctx.Context, rel *types.DrawingRelation) (*types.DrawingRelation, error) {
	if rel == nil {
		return nil, errors.New("relation required")
	}
	if err := dbc.DB(r.db).Omit("FromDrawing", "ToDrawing").Create(rel).Error; err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicateRelation
		}
		return nil, err
	}
	return rel, nil
}

func (r *relationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.DrawingRelation, error) {
	var out types.DrawingRelation
	err := dbc.DB(r.db).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *relationRepo) ListByDrawingID(dbc dbctx.Context, drawingID uuid.UUID) ([]*types.DrawingRelation, error) {
	results := []*types.DrawingRelation{}
	if err := dbc.DB(r.db).
		Where("from_drawing_id = ? OR to_drawing_id = ?", drawingID, drawingID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *relationRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.DrawingRelation{}).Error
}

// DeleteByDrawingID removes every edge that starts or ends at drawingID.
func (r *relationRepo) DeleteByDrawingID(dbc dbctx.Context, drawingID uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).
		Where("from_drawing_id = ? OR to_drawing_id = ?", drawingID, drawingID).
		Delete(&types.DrawingRelation{})
	return res.RowsAffected, res.Error
}
