package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/apperror"
	"github.com/iliyamo/movie-booking/internal/service"
)

type TheaterHandler struct {
	theaters *service.TheaterService
	log      *zap.Logger
}

func NewTheaterHandler(theaters *service.TheaterService, log *zap.Logger) *TheaterHandler {
	return &TheaterHandler{theaters: theaters, log: log}
}

func (h *TheaterHandler) Create(c echo.Context) error {
	var in service.TheaterInput
	if err := bind(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.theaters.Create(ctx, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, http.StatusCreated, "Theater created successfully", t)
}

func (h *TheaterHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	theaters, err := h.theaters.List(ctx)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return list(c, "All theaters fetched successfully", theaters)
}

func (h *TheaterHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.theaters.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, http.StatusOK, "Theater fetched successfully", t)
}

func (h *TheaterHandler) Update(c echo.Context) error {
	var up service.TheaterUpdate
	if err := bind(c, &up); err != nil {
		return respondError(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.theaters.Update(ctx, c.Param("id"), up)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, http.StatusOK, "Theater updated successfully", t)
}

// Delete takes the theater id from the path, the id query parameter or a
// JSON body {"id": "..."}, in that order.
func (h *TheaterHandler) Delete(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		id = strings.TrimSpace(c.QueryParam("id"))
	}
	if id == "" {
		var body struct {
			ID string `json:"id"`
		}
		if c.Request().ContentLength != 0 {
			if err := bind(c, &body); err != nil {
				return respondError(c, h.log, err)
			}
		}
		id = strings.TrimSpace(body.ID)
	}
	if id == "" {
		return respondError(c, h.log, apperror.Validation("id is required"))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.theaters.Delete(ctx, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, http.StatusOK, "Theater deleted successfully", t)
}

func (h *TheaterHandler) AssignMovie(c echo.Context) error {
	var in service.AssignMovieInput
	if err := bind(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.theaters.AssignMovie(ctx, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, http.StatusOK, "Movie assigned to theater successfully", t)
}

func (h *TheaterHandler) MovieDetails(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	rows, err := h.theaters.MovieTheaterDetails(ctx)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return list(c, "Movies with theater details fetched successfully", rows)
}
