package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/drawhub-backend/internal/domain"
	"github.com/yungbote/drawhub-backend/internal/http/response"
	"github.com/yungbote/drawhub-backend/internal/platform/logger"
	"github.com/yungbote/drawhub-backend/internal/services"
)

type DrawingHandler struct {
	log      *logger.Logger
	drawings services.DrawingService
	importer services.MetadataImportService
	maxBytes int64
}

func NewDrawingHandler(log *logger.Logger, drawings services.DrawingService, importer services.MetadataImportService, maxUploadBytes int64) *DrawingHandler {
	return &DrawingHandler{
		log:      log.With("handler", "DrawingHandler"),
		drawings: drawings,
		importer: importer,
		maxBytes: maxUploadBytes,
	}
}

// GET /api/drawings?q=&page=&limit=
func (h *DrawingHandler) Search(c *gin.Context) {
	res, err := h.drawings.Search(c.Request.Context(), services.SearchQuery{
		Q:     c.Query("q"),
		Page:  queryInt(c, "page"),
		Limit: queryInt(c, "limit"),
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/drawings/:id
func (h *DrawingHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	d, err := h.drawings.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, d)
}

// PATCH /api/drawings/:id
func (h *DrawingHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	in, err := decodeUpdate(c.Request.Body)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	d, err := h.drawings.Update(c.Request.Context(), id, in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, d)
}

// decodeUpdate keeps absent fields nil. A null name clears it; metadata values
// that are not strings are stored as their JSON text.
func decodeUpdate(body io.Reader) (services.UpdateInput, error) {
	var in services.UpdateInput
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return in, fmt.Errorf("invalid JSON body: %w", err)
	}
	if v, ok := raw["drawingNumber"]; ok && string(v) != "null" {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return in, errors.New("drawingNumber must be a string")
		}
		in.DrawingNumber = &s
	}
	if v, ok := raw["name"]; ok {
		var s *string
		if err := json.Unmarshal(v, &s); err != nil {
			return in, errors.New("name must be a string or null")
		}
		if s == nil {
			s = new(string)
		}
		in.Name = s
	}
	if v, ok := raw["metadata"]; ok && string(v) != "null" {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(v, &obj); err != nil {
			return in, errors.New("metadata must be an object")
		}
		meta := make(types.Metadata, len(obj))
		for k, val := range obj {
			meta[k] = metadataValue(val)
		}
		in.Metadata = &meta
	}
	return in, nil
}

// DELETE /api/drawings/:id
func (h *DrawingHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	d, err := h.drawings.Delete(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, d)
}

// POST /api/drawings/:id/relations
func (h *DrawingHandler) AddRelation(c *gin.Context) {
	fromID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		ToDrawingID  string `json:"toDrawingId"`
		RelationType string `json:"relationType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	toID, ok := parseUUID(c, req.ToDrawingID)
	if !ok {
		return
	}
	rel, err := h.drawings.AddRelation(c.Request.Context(), fromID, toID, req.RelationType)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, rel)
}

// DELETE /api/drawings/:id/relations/:relationId
func (h *DrawingHandler) RemoveRelation(c *gin.Context) {
	drawingID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	relationID, ok := pathUUID(c, "relationId")
	if !ok {
		return
	}
	rel, err := h.drawings.RemoveRelation(c.Request.Context(), drawingID, relationID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, rel)
}

// GET /api/drawings/export
func (h *DrawingHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.drawings.Export(c.Request.Context(), &buf); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="drawings.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// POST /api/drawings/metadata/csv
func (h *DrawingHandler) ImportMetadata(c *gin.Context) {
	up, ok := readUpload(c, h.maxBytes)
	if !ok {
		return
	}
	res, err := h.importer.Import(c.Request.Context(), up.Data)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, res)
}
