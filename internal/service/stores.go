package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/movie-booking/internal/model"
)

// The store interfaces are satisfied by the Mongo repositories and by the
// in-memory stores in servicetest. Implementations report misses and
// conflicts with the repository sentinel errors.

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, u *model.User) error
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
}

type RoleStore interface {
	FindByName(ctx context.Context, name model.RoleName) (*model.Role, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Role, error)
}

type MovieStore interface {
	Create(ctx context.Context, m *model.Movie) error
	FindAll(ctx context.Context) ([]model.Movie, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Movie, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Movie, error)
	Update(ctx context.Context, m *model.Movie) error
	Delete(ctx context.Context, id primitive.ObjectID) (*model.Movie, error)
}

type TheaterStore interface {
	Create(ctx context.Context, t *model.Theater) error
	FindAll(ctx context.Context) ([]model.Theater, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Theater, error)
	Update(ctx context.Context, t *model.Theater) error
	Delete(ctx context.Context, id primitive.ObjectID) (*model.Theater, error)
	AssignMovie(ctx context.Context, theaterID primitive.ObjectID, a model.ScreenAssignment) (*model.Theater, error)
	MovieDetails(ctx context.Context) ([]model.MovieTheaterRow, error)
}

type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	FindView(ctx context.Context, id primitive.ObjectID) (*model.BookingView, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListViewsByUser(ctx context.Context, userID primitive.ObjectID) ([]model.BookingView, error)
	ListViews(ctx context.Context) ([]model.BookingView, error)
	SummaryByTheater(ctx context.Context) ([]model.TheaterBookingSummary, error)
	TotalsByMovie(ctx context.Context) ([]model.MovieBookingTotal, error)
}
