package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/drawhub-backend/internal/catalog/csvio"
	"github.com/yungbote/drawhub-backend/internal/catalog/metadata"
	"github.com/yungbote/drawhub-backend/internal/data/repos"
	types "github.com/yungbote/drawhub-backend/internal/domain"
	"github.com/yungbote/drawhub-backend/internal/platform/apierr"
	"github.com/yungbote/drawhub-backend/internal/platform/dbctx"
	"github.com/yungbote/drawhub-backend/internal/platform/logger"
)

type ImportResult struct {
	Updated  int      `json:"updated"`
	NotFound []string `json:"notFound"`
}

type MetadataImportService interface {
	// Import merges CSV columns into the metadata of drawings matched by drawingNumber.
	Import(ctx context.Context, csv []byte) (*ImportResult, error)
}

type metadataImportService struct {
	db       *gorm.DB
	log      *logger.Logger
	drawings repos.DrawingRepo
	notify   DrawingNotifier
}

func NewMetadataImportService(db *gorm.DB, log *logger.Logger, drawingRepo repos.DrawingRepo, notify DrawingNotifier) MetadataImportService {
	return &metadataImportService{
		db:       db,
		log:      log.With("service", "MetadataImportService"),
		drawings: drawingRepo,
		notify:   notifierOrNop(notify),
	}
}

func (s *metadataImportService) Import(ctx context.Context, csv []byte) (*ImportResult, error) {
	table := csvio.Parse(csv)
	keyCol, ok := table.Column(csvio.KeyColumn)
	if !ok {
		return nil, apierr.BadInput("csv_missing_drawing_number", `CSV must include a "drawingNumber" column`)
	}
	var valueCols []string
	seen := map[string]bool{}
	for _, h := range table.Headers {
		if h == keyCol || seen[h] || csvio.IsExportColumn(h) {
			continue
		}
		seen[h] = true
		valueCols = append(valueCols, h)
	}

	res := &ImportResult{NotFound: []string{}}
	var touched []*types.Drawing
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.New(ctx).WithTx(tx)
		for _, row := range table.Rows {
			number := strings.TrimSpace(row[keyCol])
			if number == "" {
				continue
			}
			matches, err := s.drawings.ListByDrawingNumbers(dbc, []string{number})
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				res.NotFound = append(res.NotFound, number)
				continue
			}
			incoming := make(map[string]string, len(valueCols))
			for _, col := range valueCols {
				incoming[col] = row[col]
			}
			for _, d := range matches {
				merged := metadata.Merge(d.Meta(), d.Sources(), incoming)
				d.SetMetadata(merged.Metadata, merged.Sources)
				if err := s.drawings.SaveMetadata(dbc, d); err != nil {
					return err
				}
				res.Updated++
				touched = append(touched, d)
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("CSV import failed; rolled back", "error", err)
		return nil, fmt.Errorf("import metadata: %w", err)
	}

	for _, d := range touched {
		s.notify.DrawingUpdated(d)
	}
	s.log.Info("CSV metadata imported", "rows", len(table.Rows), "updated", res.Updated, "not_found", len(res.NotFound))
	return res, nil
}
