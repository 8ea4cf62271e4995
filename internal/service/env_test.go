package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/auth"
	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/notify"
	"github.com/iliyamo/movie-booking/internal/service"
	"github.com/iliyamo/movie-booking/internal/service/servicetest"
)

const frontendURL = "http://localhost:3000"

type removedFiles struct{ paths []string }

func (r *removedFiles) Remove(p string) error {
	r.paths = append(r.paths, p)
	return nil
}

type env struct {
	db       *servicetest.DB
	outbox   *servicetest.Outbox
	tokens   *auth.TokenService
	removed  *removedFiles
	auth     *service.AuthService
	users    *service.UserService
	movies   *service.MovieService
	theaters *service.TheaterService
	bookings *service.BookingService
}

func newEnv(t *testing.T) *env {
	return newEnvWithSender(t, nil)
}

// newEnvWithSender uses sender for notifications, or a recording outbox
// when sender is nil.
func newEnvWithSender(t *testing.T, sender notify.Sender) *env {
	t.Helper()
	e := &env{
		db:      servicetest.NewDB(),
		outbox:  &servicetest.Outbox{},
		tokens:  auth.NewTokenService("test-secret", time.Hour),
		removed: &removedFiles{},
	}
	if sender == nil {
		sender = e.outbox
	}
	log := zap.NewNop()
	e.auth = service.NewAuthService(e.db.Users(), e.db.Roles(), e.tokens, sender, log, frontendURL+"/", 4)
	e.users = service.NewUserService(e.db.Users(), e.db.Roles(), e.removed, log)
	e.movies = service.NewMovieService(e.db.Movies(), log)
	e.theaters = service.NewTheaterService(e.db.Theaters(), e.db.Movies(), log)
	e.bookings = service.NewBookingService(e.db.Bookings(), e.db.Users(), e.db.Movies(), e.db.Theaters(), sender, log)
	return e
}

// register creates a user through the service and returns its actor.
func (e *env) register(t *testing.T, name, email string, role model.RoleName) service.Actor {
	t.Helper()
	u, err := e.auth.Register(context.Background(), service.RegisterInput{
		Name:     name,
		Email:    email,
		Phone:    "9876543210",
		Password: "secret123",
		Role:     string(role),
	})
	require.NoError(t, err)
	return service.Actor{UserID: u.ID, Role: role}
}

func (e *env) movie(t *testing.T, name string) *model.Movie {
	t.Helper()
	m, err := e.movies.Create(context.Background(), service.MovieInput{
		MovieName:   name,
		Genre:       "Sci-Fi",
		Language:    "English",
		Duration:    "148 min",
		Cast:        []string{"Leonardo DiCaprio"},
		Director:    "Christopher Nolan",
		ReleaseDate: "2010-07-16",
	})
	require.NoError(t, err)
	return m
}

func (e *env) theater(t *testing.T, name string, screens int) *model.TheaterView {
	t.Helper()
	th, err := e.theaters.Create(context.Background(), service.TheaterInput{
		TheaterName: name,
		Location:    "MG Road, Bengaluru",
		Screens:     screens,
	})
	require.NoError(t, err)
	return th
}

func (e *env) assign(t *testing.T, theaterID, movieID primitive.ObjectID, screen int) {
	t.Helper()
	_, err := e.theaters.AssignMovie(context.Background(), service.AssignMovieInput{
		TheaterID:    theaterID.Hex(),
		MovieID:      movieID.Hex(),
		ScreenNumber: screen,
		ShowTimings:  []string{"10:00 AM", "06:00 PM"},
	})
	require.NoError(t, err)
}

func verifyToken(t *testing.T, m notify.Message) string {
	t.Helper()
	prefix := frontendURL + "/verify-email/"
	require.True(t, strings.HasPrefix(m.VerifyURL, prefix), m.VerifyURL)
	return strings.TrimPrefix(m.VerifyURL, prefix)
}
