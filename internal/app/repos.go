package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/drawhub-backend/internal/data/repos"
	"github.com/yungbote/drawhub-backend/internal/platform/logger"
)

type Repos struct {
	Drawing  repos.DrawingRepo
	Relation repos.RelationRepo
	Revision repos.RevisionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Drawing:  repos.NewDrawingRepo(db, log),
		Relation: repos.NewRelationRepo(db, log),
		Revision: repos.NewRevisionRepo(db, log),
	}
}
