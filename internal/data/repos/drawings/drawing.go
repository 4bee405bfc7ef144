package drawings

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/drawhub-backend/internal/domain"
	"github.com/yungbote/drawhub-backend/internal/platform/dbctx"
	"github.com/yungbote/drawhub-backend/internal/platform/logger"
)

type SearchFilter struct {
	Query  string
	Offset int
	Limit  int
}

type DrawingRepo interface {
	Create(dbc dbctx.Context, drawings []*types.Drawing) ([]*types.Drawing, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Drawing, error)
	GetDetailed(dbc dbctx.Context, id uuid.UUID) (*types.Drawing, error)
	Search(dbc dbctx.Context, filter SearchFilter) ([]*types.Drawing, int64, error)
	ListAll(dbc dbctx.Context) ([]*types.Drawing, error)
	ListByDrawingNumbers(dbc dbctx.Context, numbers []string) ([]*types.Drawing, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, fields map[string]interface{}) error
	SaveMetadata(dbc dbctx.Context, d *types.Drawing) error
	DeleteByID(dbc dbctx.Context, id uuid.UUID) error
}

type drawingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDrawingRepo(db *gorm.DB, baseLog *logger.Logger) DrawingRepo {
	repoLog := baseLog.With("repo", "DrawingRepo")
	return &drawingRepo{db: db, log: repoLog}
}

func (r *drawingRepo) Create(dbc dbctx.Context, drawings []*types.Drawing) ([]*types.Drawing, error) {
	if len(drawings) == 0 {
		return []*types.Drawing{}, nil
	}
	if err := dbc.DB(r.db).Omit("RelationsFrom", "RelationsTo", "Revisions").Create(&drawings).Error; err != nil {
		return nil, err
	}
	return drawings, nil
}

// GetByID returns nil, nil when the drawing does not exist.
func (r *drawingRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Drawing, error) {
	var out types.Drawing
	err := dbc.DB(r.db).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDetailed loads relations in both directions with endpoint summaries and
// revisions newest first. Returns nil, nil when missing.
func (r *drawingRepo) GetDetailed(dbc dbctx.Context, id uuid.UUID) (*types.Drawing, error) {
	summary := func(db *gorm.DB) *gorm.DB { return db.Select("id", "drawing_number", "name") }
	byCreated := func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }

	var out types.Drawing
	err := dbc.DB(r.db).
		Preload("RelationsFrom", byCreated).
		Preload("RelationsFrom.ToDrawing", summary).
		Preload("RelationsTo", byCreated).
		Preload("RelationsTo.FromDrawing", summary).
		Preload("Revisions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Where("id = ?", id).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *drawingRepo) searchScope(query string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term := strings.TrimSpace(query)
		if term == "" {
			return db
		}
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		return db.Where(
			`LOWER(drawing_number) LIKE ? ESCAPE '\' OR LOWER(COALESCE(name, '')) LIKE ? ESCAPE '\' OR LOWER(CAST(metadata AS TEXT)) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern,
		)
	}
}

func (r *drawingRepo) Search(dbc dbctx.Context, filter SearchFilter) ([]*types.Drawing, int64, error) {
	var total int64
	if err := dbc.DB(r.db).Model(&types.Drawing{}).Scopes(r.searchScope(filter.Query)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	results := []*types.Drawing{}
	if total == 0 {
		return results, 0, nil
	}
	q := dbc.DB(r.db).Model(&types.Drawing{}).
		Scopes(r.searchScope(filter.Query)).
		Order("created_at DESC").
		Order("id DESC")
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *drawingRepo) ListAll(dbc dbctx.Context) ([]*types.Drawing, error) {
	results := []*types.Drawing{}
	if err := dbc.DB(r.db).Order("created_at DESC").Order("id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *drawingRepo) ListByDrawingNumbers(dbc dbctx.Context, numbers []string) ([]*types.Drawing, error) {
	results := []*types.Drawing{}
	if len(numbers) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).
		Where("drawing_number IN ?", numbers).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *drawingRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Drawing{}).Where("id = ?", id).Updates(fields).Error
}

func (r *drawingRepo) SaveMetadata(dbc dbctx.Context, d *types.Drawing) error {
	if d == nil || d.ID == uuid.Nil {
		return errors.New("drawing id required")
	}
	return dbc.DB(r.db).Model(&types.Drawing{}).Where("id = ?", d.ID).Updates(map[string]interface{}{
		"metadata":         d.Metadata,
		"metadata_sources": d.MetadataSources,
	}).Error
}

func (r *drawingRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.Drawing{}).Error
}
