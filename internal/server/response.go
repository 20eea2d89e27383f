package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kapu/fitplan-engine-go/pkg/errors"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError writes the error envelope with the status its type maps to.
func RespondError(c *gin.Context, err error) {
	msg := "unknown error"
	status := http.StatusInternalServerError
	if err != nil {
		msg = err.Error()
		status = errors.StatusOf(err)
		_ = c.Error(err)
	}
	// Internal details of server-side failures stay in the logs.
	if status == http.StatusInternalServerError && errors.CodeOf(err) == errors.CodeInternal {
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    errors.CodeOf(err),
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
