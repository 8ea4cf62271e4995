package middleware

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/movie-booking/internal/apperror"
	"github.com/iliyamo/movie-booking/internal/auth"
	"github.com/iliyamo/movie-booking/internal/service"
)

// Actor returns the authenticated caller recorded by JWTAuth.
func Actor(c echo.Context) (service.Actor, error) {
	claims, ok := c.Get(ClaimsKey).(*auth.Claims)
	if !ok || claims == nil {
		return service.Actor{}, apperror.Unauthenticated("authentication required")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return service.Actor{}, apperror.Unauthenticated("invalid token subject")
	}
	return service.Actor{UserID: id, Role: claims.Role}, nil
}

// currentUserID is the rate limit identity: the user id for
// authenticated requests, "anon" otherwise.
func currentUserID(c echo.Context) string {
	if s, ok := c.Get(UserIDKey).(string); ok && s != "" {
		return s
	}
	return "anon"
}
