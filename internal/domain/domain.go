package domain

import "github.com/yungbote/drawhub-backend/internal/domain/drawings"

type Drawing = drawings.Drawing
type DrawingSummary = drawings.DrawingSummary
type DrawingRelation = drawings.DrawingRelation
type DrawingRevision = drawings.DrawingRevision
type Metadata = drawings.Metadata
type Status = drawings.Status
type RelationType = drawings.RelationType

const (
	StatusPending    = drawings.StatusPending
	StatusProcessing = drawings.StatusProcessing
	StatusCompleted  = drawings.StatusCompleted
	StatusFailed     = drawings.StatusFailed

	RelationRelated    = drawings.RelationRelated
	RelationParent     = drawings.RelationParent
	RelationChild      = drawings.RelationChild
	RelationSupersedes = drawings.RelationSupersedes

	InitialRevisionLabel = drawings.InitialRevisionLabel
)

var ParseRelationType = drawings.ParseRelationType

// Models lists every persisted type, in migration order.
func Models() []any {
	return []any{
		&drawings.Drawing{},
		&drawings.DrawingRelation{},
		&drawings.DrawingRevision{},
	}
}
