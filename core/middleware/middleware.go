package middleware

import (
	"net/http"
	"strings"

	"wedsync-api/core/controller"
	"wedsync-api/core/errors"
	"wedsync-api/core/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const tenantIDContextKey = "tenant_id"

type Middleware struct{}

func NewMiddleware() *Middleware {
	return &Middleware{}
}

// AuthMiddleware validates the bearer JWT and stores the tenant id on the
// request context.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return controller.NewErrorResponse(http.StatusUnauthorized,
					errors.ErrMissingAuthorizationHeader, "authorization header required")
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if token == header {
				return controller.NewErrorResponse(http.StatusUnauthorized,
					errors.ErrInvalidTokenFormat, "authorization header must be a bearer token")
			}

			claims, err := utils.ValidateAndParseToken(token)
			if err != nil {
				return controller.NewErrorResponse(http.StatusUnauthorized,
					errors.ErrUnauthorized, "invalid or expired token")
			}

			c.Set(tenantIDContextKey, claims.TenantID)
			return next(c)
		}
	}
}

// TenantIDFromContext returns the tenant id set by AuthMiddleware.
func TenantIDFromContext(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(tenantIDContextKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
