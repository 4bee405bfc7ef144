package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/drawhub-backend/internal/catalog/pdfsplit"
	"github.com/yungbote/drawhub-backend/internal/catalog/thumbnail"
	"github.com/yungbote/drawhub-backend/internal/platform/logger"
	"github.com/yungbote/drawhub-backend/internal/realtime"
	"github.com/yungbote/drawhub-backend/internal/services"
)

type Services struct {
	Notifier       services.DrawingNotifier
	Drawing        services.DrawingService
	Ingest         services.IngestService
	Revision       services.RevisionService
	MetadataImport services.MetadataImportService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, hub *realtime.SSEHub) Services {
	log.Info("Wiring services...")

	notifier := services.NewDrawingNotifier(newEmitter(log, clients, hub))
	splitter := pdfsplit.New()
	thumbs := thumbnail.New(cfg.ThumbnailSize)

	return Services{
		Notifier:       notifier,
		Drawing:        services.NewDrawingService(db, log, repos.Drawing, repos.Relation, repos.Revision, clients.Blobs, notifier),
		Ingest:         services.NewIngestService(db, log, repos.Drawing, clients.Blobs, splitter, thumbs, notifier),
		Revision:       services.NewRevisionService(db, log, repos.Drawing, repos.Revision, clients.Blobs, thumbs, notifier),
		MetadataImport: services.NewMetadataImportService(db, log, repos.Drawing, notifier),
	}
}

// newEmitter routes events through Redis when a bus is configured so every
// instance's hub sees them; otherwise straight into the local hub.
func newEmitter(log *logger.Logger, clients Clients, hub *realtime.SSEHub) services.SSEEmitter {
	if clients.Bus != nil {
		return &services.RedisEmitter{Bus: clients.Bus, Log: log.With("component", "RedisEmitter")}
	}
	return &services.HubEmitter{Hub: hub}
}
