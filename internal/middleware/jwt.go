package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-booking/internal/apperror"
	"github.com/iliyamo/movie-booking/internal/auth"
)

// Context keys set by JWTAuth.
const (
	ClaimsKey = "claims"
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// TokenVerifier is implemented by *auth.TokenService.
type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, error)
}

// JWTAuth validates the Bearer session token and stores its claims, the
// user id and the role in the echo context. Verification tokens are not
// accepted as sessions.
func JWTAuth(v TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
			raw = strings.TrimSpace(raw)
			if !ok || raw == "" {
				return deny(c, apperror.Unauthenticated("no token provided"))
			}

			claims, err := v.Verify(raw)
			if err != nil {
				return deny(c, apperror.Unauthenticated("invalid or expired token"))
			}
			if claims.Purpose != auth.PurposeSession {
				return deny(c, apperror.Unauthenticated("token cannot be used for this request"))
			}

			c.Set(ClaimsKey, claims)
			c.Set(UserIDKey, claims.UserID)
			c.Set(RoleKey, claims.Role)
			return next(c)
		}
	}
}

func deny(c echo.Context, err error) error {
	he := apperror.MapToHTTP(err)
	return c.JSON(he.Status, he.ToResponse())
}
