package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/drawhub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/drawhub-backend/internal/http/middleware"
	"github.com/yungbote/drawhub-backend/internal/platform/logger"
)

type RouterConfig struct {
	DrawingHandler  *httpH.DrawingHandler
	UploadHandler   *httpH.UploadHandler
	RevisionHandler *httpH.RevisionHandler
	RealtimeHandler *httpH.RealtimeHandler
	HealthHandler   *httpH.HealthHandler

	Log         *logger.Logger
	CORSOrigins []string
	// ServiceName labels otelgin spans; tracing middleware is skipped when empty.
	ServiceName string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Drawings (static segments first so they never bind as :id)
		drawings := api.Group("/drawings")
		if cfg.DrawingHandler != nil {
			drawings.GET("", cfg.DrawingHandler.Search)
			drawings.GET("/export", cfg.DrawingHandler.Export)
			drawings.POST("/metadata/csv", cfg.DrawingHandler.ImportMetadata)
		}
		if cfg.UploadHandler != nil {
			drawings.POST("/upload", cfg.UploadHandler.Upload)
		}
		if cfg.DrawingHandler != nil {
			drawings.GET("/:id", cfg.DrawingHandler.Get)
			drawings.PATCH("/:id", cfg.DrawingHandler.Update)
			drawings.DELETE("/:id", cfg.DrawingHandler.Delete)
			drawings.POST("/:id/relations", cfg.DrawingHandler.AddRelation)
			drawings.DELETE("/:id/relations/:relationId", cfg.DrawingHandler.RemoveRelation)
		}

		// Revisions
		if cfg.RevisionHandler != nil {
			drawings.POST("/:id/revisions", cfg.RevisionHandler.Create)
			drawings.GET("/:id/revisions", cfg.RevisionHandler.List)
		}

		// Realtime
		if cfg.RealtimeHandler != nil {
			api.GET("/realtime/sse", cfg.RealtimeHandler.SSEStream)
			api.GET("/realtime/ws", cfg.RealtimeHandler.WSStream)
		}
	}

	return r
}
