package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/universeos/dashboard/internal/core/domain"
)

// RequirePermission enforces that the authenticated caller holds the given
// permission. The admin role passes every check.
func RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if role == domain.RoleAdmin {
				return next(c)
			}

			perms, _ := c.Get("permissions").([]string)
			for _, p := range perms {
				if p == permission {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
