package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/paper-indonesia/circe-credits/internal/types"
)

// RequestIDMiddleware attaches a request ID to the context and response,
// honoring one supplied by the caller.
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
	}

	ctx := types.SetRequestID(c.Request.Context(), requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Writer.Header().Set(types.HeaderRequestID, requestID)
	c.Next()
}

// TenantMiddleware resolves the tenant from the request header. The
// wider platform authenticates upstream; this service only scopes data.
func TenantMiddleware(c *gin.Context) {
	if tenantID := c.GetHeader(types.HeaderTenantID); tenantID != "" {
		ctx := types.SetTenantID(c.Request.Context(), tenantID)
		c.Request = c.Request.WithContext(ctx)
	}
	c.Next()
}
