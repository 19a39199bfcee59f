package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err), zap.String("path", c.FullPath()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error: "Internal Server Error",
					Code:  CodeInternal,
				})
			}
		}()
		c.Next()
	}
}

// StatusFor maps an error from the services to an HTTP status and a code.
func StatusFor(err error) (int, string) {
	var (
		ve *ValidationError
		nf *NotFoundError
		ce *ConflictError
		pe *PolicyViolationError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, CodeValidation
	case errors.As(err, &nf):
		return http.StatusNotFound, CodeNotFound
	case errors.As(err, &ce):
		return http.StatusConflict, CodeConflict
	case errors.As(err, &pe):
		return http.StatusUnprocessableEntity, CodePolicy
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// RespondError writes err as JSON. Internal errors are logged and their text
// is not returned to the caller.
func RespondError(c *gin.Context, err error) {
	status, code := StatusFor(err)
	resp := ErrorResponse{Error: err.Error(), Code: code}

	var (
		ve *ValidationError
		ce *ConflictError
		pe *PolicyViolationError
	)
	switch {
	case errors.As(err, &ve):
		resp.Details = gin.H{"field": ve.Field}
	case errors.As(err, &ce):
		resp.Details = gin.H{"conflicts": ce.Conflicts}
	case errors.As(err, &pe):
		resp.Details = gin.H{"rule": pe.Rule, "limit": pe.Limit}
	}

	if status == http.StatusInternalServerError {
		GetLogger().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		resp.Error = "Internal Server Error"
	}
	c.AbortWithStatusJSON(status, resp)
}

