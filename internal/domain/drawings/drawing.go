package drawings

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Status string

// Only StatusCompleted is written today; ingestion is synchronous.
const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

type Drawing struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DrawingNumber string    `gorm:"column:drawing_number;not null;index" json:"drawingNumber"`
	Name          *string   `gorm:"column:name" json:"name"`
	FileURL       string    `gorm:"column:file_url;not null" json:"fileUrl"`
	ThumbnailURL  *string   `gorm:"column:thumbnail_url" json:"thumbnailUrl"`
	Status        Status    `gorm:"column:status;type:varchar(16);not null" json:"status"`
	Revision      *string   `gorm:"column:revision" json:"revision"`

	Metadata        datatypes.JSONType[Metadata] `gorm:"column:metadata" json:"metadata"`
	MetadataSources datatypes.JSONType[Metadata] `gorm:"column:metadata_sources" json:"metadataSources"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`

	RelationsFrom []DrawingRelation `gorm:"foreignKey:FromDrawingID" json:"relationsFrom,omitempty"`
	RelationsTo   []DrawingRelation `gorm:"foreignKey:ToDrawingID" json:"relationsTo,omitempty"`
	Revisions     []DrawingRevision `gorm:"foreignKey:DrawingID" json:"revisions,omitempty"`
}

func (Drawing) TableName() string { return "drawing" }

func (d *Drawing) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = StatusCompleted
	}
	return nil
}

// Meta returns a copy of the metadata, never nil.
func (d *Drawing) Meta() Metadata {
	return d.Metadata.Data().Clone()
}

// Sources returns a copy of the provenance map, never nil.
func (d *Drawing) Sources() Metadata {
	return d.MetadataSources.Data().Clone()
}

func (d *Drawing) SetMetadata(meta, sources Metadata) {
	d.Metadata = datatypes.NewJSONType(meta.Clone())
	d.MetadataSources = datatypes.NewJSONType(sources.Clone())
}

// BlobURLs lists every distinct stored object referenced by the drawing and
// its loaded revisions.
func (d *Drawing) BlobURLs() []string {
	seen := map[string]bool{}
	var out []string
	add := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		out = append(out, u)
	}
	add(d.FileURL)
	if d.ThumbnailURL != nil {
		add(*d.ThumbnailURL)
	}
	for _, rev := range d.Revisions {
		add(rev.FileURL)
	}
	return out
}

// DrawingSummary is the slim projection embedded in relation payloads.
type DrawingSummary struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DrawingNumber string    `gorm:"column:drawing_number" json:"drawingNumber"`
	Name          *string   `gorm:"column:name" json:"name"`
}

func (DrawingSummary) TableName() string { return "drawing" }
