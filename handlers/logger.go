package handlers

import (
	"net/http"

	"reservo/database/repository"
	"reservo/middleware"
	"reservo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves the request logger from the Gin context or falls back
// to the global one.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}

// tenantFrom returns the tenant resolved by the tenant middleware. It
// responds and returns false when none is present.
func tenantFrom(c *gin.Context) (*repository.Tenant, bool) {
	t := middleware.CurrentTenant(c)
	if t == nil {
		utils.RespondError(c, utils.NewValidationError("X-Tenant-ID", "tenant header is required"))
		return nil, false
	}
	return t, true
}

// bindJSON decodes the body into dst and reports malformed payloads as
// validation errors.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		getLogger(c).Warn("Invalid request payload", zap.String("path", c.FullPath()), zap.Error(err))
		utils.RespondError(c, utils.NewValidationError("body", "invalid request payload: "+err.Error()))
		return false
	}
	return true
}

func respondOK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}
