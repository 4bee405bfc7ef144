package app

import (
	"github.com/yungbote/drawhub-backend/internal/http"
	httpH "github.com/yungbote/drawhub-backend/internal/http/handlers"
	"github.com/yungbote/drawhub-backend/internal/platform/logger"
	"github.com/yungbote/drawhub-backend/internal/realtime"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Drawing  *httpH.DrawingHandler
	Upload   *httpH.UploadHandler
	Revision *httpH.RevisionHandler
	Realtime *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Drawing:  httpH.NewDrawingHandler(log, services.Drawing, services.MetadataImport, cfg.MaxUploadBytes),
		Upload:   httpH.NewUploadHandler(log, services.Ingest, cfg.MaxUploadBytes),
		Revision: httpH.NewRevisionHandler(log, services.Revision, cfg.MaxUploadBytes),
		Realtime: httpH.NewRealtimeHandler(log, hub, cfg.CORSOrigins),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers) *http.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewServer(http.RouterConfig{
		HealthHandler:   handlers.Health,
		DrawingHandler:  handlers.Drawing,
		UploadHandler:   handlers.Upload,
		RevisionHandler: handlers.Revision,
		RealtimeHandler: handlers.Realtime,
		Log:             log,
		CORSOrigins:     cfg.CORSOrigins,
		ServiceName:     serviceName,
	})
}
