package drawings

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RelationType string

const (
	RelationRelated    RelationType = "RELATED"
	RelationParent     RelationType = "PARENT"
	RelationChild      RelationType = "CHILD"
	RelationSupersedes RelationType = "SUPERSEDES"
)

var RelationTypes = []RelationType{RelationRelated, RelationParent, RelationChild, RelationSupersedes}

// ParseRelationType matches exact enum values only.
func ParseRelationType(raw string) (RelationType, bool) {
	rt := RelationType(strings.TrimSpace(raw))
	for _, known := range RelationTypes {
		if rt == known {
			return rt, true
		}
	}
	return "", false
}

type DrawingRelation struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	FromDrawingID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_drawing_relation_edge,priority:1" json:"fromDrawingId"`
	FromDrawing   *DrawingSummary `gorm:"foreignKey:FromDrawingID;references:ID" json:"fromDrawing,omitempty"`
	ToDrawingID   uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_drawing_relation_edge,priority:2" json:"toDrawingId"`
	ToDrawing     *DrawingSummary `gorm:"foreignKey:ToDrawingID;references:ID" json:"toDrawing,omitempty"`
	RelationType  RelationType    `gorm:"column:relation_type;type:varchar(16);not null;uniqueIndex:idx_drawing_relation_edge,priority:3" json:"relationType"`
	CreatedAt     time.Time       `gorm:"not null" json:"createdAt"`
}

func (DrawingRelation) TableName() string { return "drawing_relation" }

func (r *DrawingRelation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
