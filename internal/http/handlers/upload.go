package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/drawhub-backend/internal/http/response"
	"github.com/yungbote/drawhub-backend/internal/platform/logger"
	"github.com/yungbote/drawhub-backend/internal/services"
)

type UploadHandler struct {
	log      *logger.Logger
	ingest   services.IngestService
	maxBytes int64
}

func NewUploadHandler(log *logger.Logger, ingest services.IngestService, maxUploadBytes int64) *UploadHandler {
	return &UploadHandler{
		log:      log.With("handler", "UploadHandler"),
		ingest:   ingest,
		maxBytes: maxUploadBytes,
	}
}

// POST /api/drawings/upload
// multipart: file, drawingNumber, name, splitPages=true
func (h *UploadHandler) Upload(c *gin.Context) {
	up, ok := readUpload(c, h.maxBytes)
	if !ok {
		return
	}
	created, err := h.ingest.CreateFromUpload(c.Request.Context(), up, services.IngestOptions{
		DrawingNumber: c.PostForm("drawingNumber"),
		Name:          c.PostForm("name"),
		Split:         strings.TrimSpace(c.PostForm("splitPages")) == "true",
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	h.log.Debug("Upload stored", "filename", up.Filename, "bytes", len(up.Data), "drawings", len(created))
	response.RespondCreated(c, created)
}
