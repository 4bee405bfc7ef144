package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/drawhub-backend/internal/http/response"
	"github.com/yungbote/drawhub-backend/internal/platform/logger"
	"github.com/yungbote/drawhub-backend/internal/services"
)

type RevisionHandler struct {
	log       *logger.Logger
	revisions services.RevisionService
	maxBytes  int64
}

func NewRevisionHandler(log *logger.Logger, revisions services.RevisionService, maxUploadBytes int64) *RevisionHandler {
	return &RevisionHandler{
		log:       log.With("handler", "RevisionHandler"),
		revisions: revisions,
		maxBytes:  maxUploadBytes,
	}
}

// POST /api/drawings/:id/revisions
// multipart: file, revision, reason
func (h *RevisionHandler) Create(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	up, ok := readUpload(c, h.maxBytes)
	if !ok {
		return
	}
	rev, err := h.revisions.Create(c.Request.Context(), id, up, c.PostForm("revision"), c.PostForm("reason"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, rev)
}

// GET /api/drawings/:id/revisions
func (h *RevisionHandler) List(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	revs, err := h.revisions.List(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, revs)
}
