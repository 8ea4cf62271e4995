// Package handler adapts the services to echo: it binds requests, applies
// the per-request timeout and renders the response envelope.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/apperror"
	"github.com/iliyamo/movie-booking/internal/model"
)

const requestTimeout = 5 * time.Second

// envelope is the success response body.
type envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Total   *int           `json:"total,omitempty"`
	Token   string         `json:"token,omitempty"`
	Role    model.RoleName `json:"role,omitempty"`
}

func success(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

// list renders a collection with its size.
func list[T any](c echo.Context, message string, items []T) error {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	return c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: items, Total: &n})
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// respondError renders err in the error envelope. Internal details are
// logged, never sent.
func respondError(c echo.Context, log *zap.Logger, err error) error {
	he := apperror.MapToHTTP(err)
	if he.Status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Error(err))
	}
	return c.JSON(he.Status, he.ToResponse())
}

// bind decodes the request into v; malformed input is a validation error.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return apperror.Validation("invalid request body")
	}
	return nil
}

// ErrorHandler renders errors that reach echo, such as unknown routes, in
// the same envelope as handler errors.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code := "INTERNAL_ERROR"
			switch {
			case he.Code == http.StatusNotFound:
				code = "NOT_FOUND"
			case he.Code == http.StatusUnauthorized:
				code = "UNAUTHENTICATED"
			case he.Code == http.StatusForbidden:
				code = "FORBIDDEN"
			case he.Code == http.StatusTooManyRequests:
				code = "TOO_MANY_REQUESTS"
			case he.Code < http.StatusInternalServerError:
				code = "VALIDATION_ERROR"
			}
			msg := http.StatusText(he.Code)
			if s, ok := he.Message.(string); ok && he.Code < http.StatusInternalServerError {
				msg = s
			}
			if he.Code >= http.StatusInternalServerError {
				log.Error("unhandled error", zap.Error(err))
			}
			_ = c.JSON(he.Code, apperror.Response{Success: false, Message: msg, Error: code})
			return
		}
		_ = respondError(c, log, err)
	}
}
