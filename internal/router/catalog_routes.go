package router

import (
	"github.com/labstack/echo/v4"
)

// registerCatalog mounts movie and theater management. Reads that
// customers need are open to both roles; everything else is admin only.
func registerCatalog(e *echo.Echo, h Handlers, authed, admin, anyone echo.MiddlewareFunc) {
	// ---- Movies ----
	e.POST("/movie/create", h.Movies.Create, authed, admin)
	e.PUT("/update/movie/:id", h.Movies.Update, authed, admin)
	e.DELETE("/delete/movie/:id", h.Movies.Delete, authed, admin)
	e.GET("/get/movies", h.Movies.List, authed, admin)
	e.GET("/get/movies/:id", h.Movies.Get, authed, anyone)

	// ---- Theaters ----
	e.POST("/create/theater", h.Theaters.Create, authed, admin)
	e.GET("/get/all/theater", h.Theaters.List, authed, admin)
	e.GET("/get/theater/:id", h.Theaters.Get, authed, admin)
	e.PUT("/theater/update/:id", h.Theaters.Update, authed, admin)
	e.DELETE("/theater/delete", h.Theaters.Delete, authed, admin)
	e.DELETE("/theater/delete/:id", h.Theaters.Delete, authed, admin)
	e.POST("/theater/assign-movie", h.Theaters.AssignMovie, authed, admin)
	e.GET("/theater/movie/details", h.Theaters.MovieDetails, authed, anyone)
}
