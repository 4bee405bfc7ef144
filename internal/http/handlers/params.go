package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/drawhub-backend/internal/http/response"
	"github.com/yungbote/drawhub-backend/internal/services"
)

// DefaultMaxUploadBytes bounds multipart bodies when no limit is configured.
const DefaultMaxUploadBytes int64 = 100 << 20

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	return parseUUID(c, c.Param(name))
}

func parseUUID(c *gin.Context, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("Invalid id %q", raw))
		return uuid.Nil, false
	}
	return id, true
}

// queryInt returns 0 for absent or malformed values so paging defaults apply.
func queryInt(c *gin.Context, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil {
		return 0
	}
	return n
}

// readUpload reads the "file" part of a multipart body capped at maxBytes.
// It writes the error response itself and reports false on failure.
func readUpload(c *gin.Context, maxBytes int64) (services.Upload, bool) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		switch {
		case errors.Is(err, http.ErrMissingFile):
			response.RespondError(c, http.StatusBadRequest, "missing_file", errors.New("File is required"))
		case isTooLarge(err):
			response.RespondAPIError(c, err)
		default:
			response.RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		}
		return services.Upload{}, false
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondAPIError(c, fmt.Errorf("open upload: %w", err))
		return services.Upload{}, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		response.RespondAPIError(c, fmt.Errorf("read upload: %w", err))
		return services.Upload{}, false
	}
	return services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, true
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

// metadataValue flattens a JSON value into the string stored in metadata.
func metadataValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return ""
	}
	return trimmed
}
