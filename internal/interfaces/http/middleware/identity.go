package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/infrastructure/logger"
	"github.com/opsconsole/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Keys under which the console identity is stored in gin.Context
const (
	TenantIDKey       = "tenant_id"
	OperatorIDKey     = "operator_id"
	TenantHeaderKey   = "X-Tenant-ID"
	OperatorHeaderKey = "X-Operator-ID"
)

const maxOperatorIDLength = 128

// IdentityConfig holds configuration for the console identity middleware
type IdentityConfig struct {
	// SkipPaths are paths that don't require an identity (e.g., health check)
	SkipPaths []string
	Logger    *zap.Logger
}

// DefaultIdentityConfig returns default identity middleware configuration
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{
		SkipPaths: []string{"/health", "/api/v1/ping"},
	}
}

// Identity resolves the tenant and operator a console request acts for.
// Both X-Tenant-ID (a UUID) and X-Operator-ID are required.
func Identity(cfg IdentityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		rawTenant := strings.TrimSpace(c.GetHeader(TenantHeaderKey))
		tenantID, err := uuid.Parse(rawTenant)
		if rawTenant == "" || err != nil || tenantID == uuid.Nil {
			abortIdentity(c, dto.ErrCodeTenantRequired, "A valid X-Tenant-ID header is required")
			return
		}

		operatorID := strings.TrimSpace(c.GetHeader(OperatorHeaderKey))
		if operatorID == "" || len(operatorID) > maxOperatorIDLength {
			abortIdentity(c, dto.ErrCodeOperatorRequired, "A valid X-Operator-ID header is required")
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Set(OperatorIDKey, operatorID)

		ctx := c.Request.Context()
		ctx = logger.WithTenantID(ctx, tenantID.String())
		ctx = logger.WithOperatorID(ctx, operatorID)
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("console identity resolved",
				zap.String("tenant_id", tenantID.String()),
				zap.String("operator_id", operatorID),
			)
		}

		c.Next()
	}
}

func abortIdentity(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest,
		dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetTenantID retrieves the tenant resolved by Identity
func GetTenantID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(TenantIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// GetOperatorID retrieves the operator resolved by Identity
func GetOperatorID(c *gin.Context) string {
	return c.GetString(OperatorIDKey)
}
