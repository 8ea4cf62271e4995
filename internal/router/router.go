// Package router registers the HTTP routes and their middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-booking/internal/handler"
	"github.com/iliyamo/movie-booking/internal/middleware"
	"github.com/iliyamo/movie-booking/internal/model"
)

// Handlers bundles everything the routes dispatch to.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Movies   *handler.MovieHandler
	Theaters *handler.TheaterHandler
	Bookings *handler.BookingHandler
	Health   echo.HandlerFunc
}

// Options carries the shared middleware. RateLimit may be nil.
type Options struct {
	Tokens    middleware.TokenVerifier
	RateLimit echo.MiddlewareFunc
	UploadDir string
}

// RegisterRoutes mounts every route on e.
func RegisterRoutes(e *echo.Echo, h Handlers, opt Options) {
	if h.Health != nil {
		e.GET("/healthz", h.Health)
	}
	if opt.UploadDir != "" {
		e.Static("/uploads", opt.UploadDir)
	}

	limited := opt.RateLimit
	if limited == nil {
		limited = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	authed := middleware.JWTAuth(opt.Tokens)
	admin := middleware.RequireRole(model.RoleAdmin)
	anyone := middleware.RequireRole(model.RoleAdmin, model.RoleUser)
	user := middleware.RequireRole(model.RoleUser)

	registerAuth(e, h, limited, authed, admin, anyone)
	registerCatalog(e, h, authed, admin, anyone)
	registerBooking(e, h, limited, authed, admin, anyone, user)
}

func registerAuth(e *echo.Echo, h Handlers, limited, authed, admin, anyone echo.MiddlewareFunc) {
	e.POST("/register", h.Auth.Register, limited)
	e.GET("/verify-email/:token", h.Auth.VerifyEmail)
	e.POST("/login", h.Auth.Login, limited)

	e.GET("/profile", h.Users.Profile, authed, anyone)
	e.GET("/profile/:id", h.Users.Get, authed, anyone)
	e.PUT("/profile/:id", h.Users.Update, authed, anyone)
	e.GET("/users", h.Users.List, authed, admin)
}
