package middleware

import (
	"strings"

	"reservo/database/repository"
	"reservo/utils"

	"github.com/gin-gonic/gin"
)

// TenantHeader names the tenant of a request.
const TenantHeader = "X-Tenant-ID"

const tenantKey = "tenant"

// TenantMiddleware resolves the request's tenant and stores its repository
// bundle in the context. Requests without a valid tenant id are rejected.
func TenantMiddleware(resolver repository.TenantResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(TenantHeader))
		if id == "" {
			utils.RespondError(c, utils.NewValidationError("X-Tenant-ID", "tenant header is required"))
			return
		}
		t, err := resolver.Resolve(c.Request.Context(), id)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.Set(tenantKey, t)
		c.Next()
	}
}

// CurrentTenant returns the bundle stored by TenantMiddleware, or nil.
func CurrentTenant(c *gin.Context) *repository.Tenant {
	v, ok := c.Get(tenantKey)
	if !ok {
		return nil
	}
	t, _ := v.(*repository.Tenant)
	return t
}
