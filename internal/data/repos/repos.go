package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/drawhub-backend/internal/data/repos/drawings"
	"github.com/yungbote/drawhub-backend/internal/platform/logger"
)

type DrawingRepo = drawings.DrawingRepo
type RelationRepo = drawings.RelationRepo
type RevisionRepo = drawings.RevisionRepo
type SearchFilter = drawings.SearchFilter

var ErrDuplicateRelation = drawings.ErrDuplicateRelation

func NewDrawingRepo(db *gorm.DB, baseLog *logger.Logger) DrawingRepo {
	return drawings.NewDrawingRepo(db, baseLog)
}

func NewRelationRepo(db *gorm.DB, baseLog *logger.Logger) RelationRepo {
	return drawings.NewRelationRepo(db, baseLog)
}

func NewRevisionRepo(db *gorm.DB, baseLog *logger.Logger) RevisionRepo {
	return drawings.NewRevisionRepo(db, baseLog)
}
