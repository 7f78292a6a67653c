package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dispenser-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, Response{
		Status: "success",
		Data:   data,
	})
}

// RespondWithMessage sends a success response with a human-readable message
func RespondWithMessage(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Status:  "success",
		Message: message,
	})
}

// RespondWithError maps an application error to the matching HTTP status
func RespondWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	if appErr, ok := err.(*errors.AppError); ok {
		message = appErr.Message
		switch appErr.Code {
		case errors.ErrBadRequest:
			status = http.StatusBadRequest
		case errors.ErrNotFound:
			status = http.StatusNotFound
		}
	}

	c.JSON(status, Response{
		Status:  "error",
		Message: message,
	})
}
