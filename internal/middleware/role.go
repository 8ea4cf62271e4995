package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-booking/internal/apperror"
	"github.com/iliyamo/movie-booking/internal/model"
)

// RequireRole lets the request through only when the role stored by
// JWTAuth is one of roles.
func RequireRole(roles ...model.RoleName) echo.MiddlewareFunc {
	allowed := make(map[model.RoleName]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(RoleKey).(model.RoleName)
			if !ok || role == "" {
				return deny(c, apperror.Unauthenticated("authentication required"))
			}
			if !allowed[role] {
				return deny(c, apperror.Forbidden("forbidden"))
			}
			return next(c)
		}
	}
}
