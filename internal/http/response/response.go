package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/drawhub-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError renders classified errors with their own status and code.
// Anything else is a 500 whose details stay in the logs.
func RespondAPIError(c *gin.Context, err error) {
	if ae, ok := apierr.As(err); ok && ae.Status != 0 {
		RespondError(c, ae.Status, ae.Code, ae)
		return
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		RespondError(c, http.StatusRequestEntityTooLarge, "payload_too_large", errors.New("Uploaded file is too large"))
		return
	}
	if err != nil {
		_ = c.Error(err)
	}
	RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("Internal server error"))
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
