package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipworks/shortform-backend/internal/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError maps service failures onto transport status codes via the
// apierr taxonomy; anything unrecognized is a 500.
func RespondError(c *gin.Context, err error) {
	if apiErr, ok := apierr.From(err); ok {
		c.JSON(apiErr.Status, ErrorEnvelope{
			Error: APIError{
				Message: apiErr.Error(),
				Code:    apiErr.Code,
				Details: apiErr.Details,
			},
		})
		return
	}
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(http.StatusInternalServerError, ErrorEnvelope{
		Error: APIError{Message: msg, Code: "internal"},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
