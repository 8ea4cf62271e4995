package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/service"
)

type MovieHandler struct {
	movies *service.MovieService
	log    *zap.Logger
}

func NewMovieHandler(movies *service.MovieService, log *zap.Logger) *MovieHandler {
	return &MovieHandler{movies: movies, log: log}
}

func (h *MovieHandler) Create(c echo.Context) error {
	var in service.MovieInput
	if err := bind(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	m, err := h.movies.Create(ctx, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, http.StatusCreated, "Movie created successfully", m)
}

func (h *MovieHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	movies, err := h.movies.List(ctx)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return list(c, "Movies retrieved successfully", movies)
}

func (h *MovieHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	m, err := h.movies.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, http.StatusOK, "Movie retrieved successfully", m)
}

func (h *MovieHandler) Update(c echo.Context) error {
	var up service.MovieUpdate
	if err := bind(c, &up); err != nil {
		return respondError(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	m, err := h.movies.Update(ctx, c.Param("id"), up)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, http.StatusOK, "Movie updated successfully", m)
}

func (h *MovieHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	m, err := h.movies.Delete(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, http.StatusOK, "Movie deleted successfully", m)
}
