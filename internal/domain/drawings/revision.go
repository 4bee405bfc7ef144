package drawings

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InitialRevisionLabel names the archived content of a drawing that never had a label.
const InitialRevisionLabel = "initial"

type DrawingRevision struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DrawingID uuid.UUID `gorm:"type:uuid;not null;index" json:"drawingId"`
	Revision  string    `gorm:"column:revision;not null" json:"revision"`
	FileURL   string    `gorm:"column:file_url;not null" json:"fileUrl"`
	Reason    *string   `gorm:"column:reason" json:"reason"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}

func (DrawingRevision) TableName() string { return "drawing_revision" }

func (r *DrawingRevision) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
