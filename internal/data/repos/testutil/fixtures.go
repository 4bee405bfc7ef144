package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/drawhub-backend/internal/domain"
)

type DrawingSeed struct {
	DrawingNumber string
	Name          string
	FileURL       string
	Revision      string
	Metadata      types.Metadata
	Sources       types.Metadata
	CreatedAt     time.Time
}

func SeedDrawing(tb testing.TB, db *gorm.DB, seed DrawingSeed) *types.Drawing {
	tb.Helper()
	d := &types.Drawing{
		ID:            uuid.New(),
		DrawingNumber: seed.DrawingNumber,
		FileURL:       seed.FileURL,
		Status:        types.StatusCompleted,
		CreatedAt:     seed.CreatedAt,
	}
	if d.FileURL == "" {
		d.FileURL = "http://blob.local/drawings/" + d.ID.String() + ".pdf"
	}
	if seed.Name != "" {
		name := seed.Name
		d.Name = &name
	}
	if seed.Revision != "" {
		rev := seed.Revision
		d.Revision = &rev
	}
	d.SetMetadata(seed.Metadata, seed.Sources)
	if err := db.WithContext(context.Background()).Omit("RelationsFrom", "RelationsTo", "Revisions").Create(d).Error; err != nil {
		tb.Fatalf("seed drawing: %v", err)
	}
	return d
}
