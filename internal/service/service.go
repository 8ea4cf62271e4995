// Package service holds the business operations behind the HTTP handlers.
// Every exported operation returns *apperror.Error values; repository
// sentinels never leak past this package.
package service

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/apperror"
	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/notify"
	"github.com/iliyamo/movie-booking/internal/repository"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID primitive.ObjectID
	Role   model.RoleName
}

func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// canActFor reports whether a may read or change data owned by userID.
func (a Actor) canActFor(userID primitive.ObjectID) bool {
	return a.IsAdmin() || a.UserID == userID
}

// parseID converts a hex id supplied by a client.
func parseID(field, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, apperror.Validation(field + " must be a valid id")
	}
	return id, nil
}

// storeErr classifies an error returned by a store. notFound is the client
// message used for a miss.
func storeErr(err error, notFound string) error {
	var appErr *apperror.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(notFound)
	case errors.Is(err, repository.ErrDuplicate):
		return apperror.Conflict("record already exists")
	case errors.Is(err, repository.ErrScreenTaken):
		return apperror.Conflict("screen already has a movie assigned")
	case errors.Is(err, repository.ErrScreenOutOfRange):
		return apperror.Validation("screenNumber exceeds the number of screens")
	}
	return apperror.Internal(err)
}

// notifyBestEffort sends m and only logs a failure.
func notifyBestEffort(ctx context.Context, s notify.Sender, log *zap.Logger, m notify.Message) {
	if err := s.Send(ctx, m); err != nil {
		log.Warn("notification not sent",
			zap.String("kind", string(m.Kind)), zap.String("to", m.To), zap.Error(err))
	}
}

// blankToNil trims each optional string in place and drops empty ones so
// they count as absent.
func blankToNil(fields ...**string) {
	for _, f := range fields {
		if *f == nil {
			continue
		}
		v := strings.TrimSpace(**f)
		if v == "" {
			*f = nil
			continue
		}
		*f = &v
	}
}

// compact trims each item and drops blank ones. A nil slice stays nil so
// that "required" still tells absent from empty.
func compact(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, v := range items {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// trimmed returns the trimmed value of p, or "" for nil.
func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
