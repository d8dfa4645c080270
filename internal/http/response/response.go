package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/easytalk/easytalk-backend/internal/apierr"
)

// ErrorBody is the structured error payload: a human-readable detail
// plus a stable machine code.
type ErrorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorBody{Detail: msg, Code: code})
}

// RespondServiceError maps a service-layer error onto the wire:
// apierr statuses pass through, anything unrecognized becomes a 500
// with a generic detail so internals do not leak.
func RespondServiceError(c *gin.Context, err error) {
	status := apierr.StatusOf(err)
	if status >= http.StatusInternalServerError {
		c.JSON(status, ErrorBody{Detail: "internal server error", Code: apierr.CodeOf(err)})
		return
	}
	RespondError(c, status, apierr.CodeOf(err), err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
