package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iliyamo/movie-booking/internal/database"
	"github.com/iliyamo/movie-booking/internal/model"
)

// BookingRepo persists bookings and builds the joined views and reports
// over them.
type BookingRepo struct {
	coll   *mongo.Collection
	movies *mongo.Collection
}

func NewBookingRepo(db *mongo.Database) *BookingRepo {
	return &BookingRepo{
		coll:   db.Collection(database.BookingsCollection),
		movies: db.Collection(database.MoviesCollection),
	}
}

func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	now := time.Now().UTC()
	b.ID = primitive.NewObjectID()
	b.CreatedAt, b.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// FindView returns the joined view of one booking with its screen number
// resolved.
func (r *BookingRepo) FindView(ctx context.Context, id primitive.ObjectID) (*model.BookingView, error) {
	views, err := r.views(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, ErrNotFound
	}
	return &views[0], nil
}

// Delete removes the booking permanently.
func (r *BookingRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListViewsByUser returns the user's bookings, newest first.
func (r *BookingRepo) ListViewsByUser(ctx context.Context, userID primitive.ObjectID) ([]model.BookingView, error) {
	return r.views(ctx, bson.D{{Key: "user", Value: userID}})
}

// ListViews returns every booking, newest first.
func (r *BookingRepo) ListViews(ctx context.Context) ([]model.BookingView, error) {
	return r.views(ctx, nil)
}

func (r *BookingRepo) SummaryByTheater(ctx context.Context) ([]model.TheaterBookingSummary, error) {
	out, err := aggregate[model.TheaterBookingSummary](ctx, r.coll, theaterSummaryPipeline())
	if err != nil {
		return nil, fmt.Errorf("summary by theater: %w", err)
	}
	return out, nil
}

func (r *BookingRepo) TotalsByMovie(ctx context.Context) ([]model.MovieBookingTotal, error) {
	out, err := aggregate[model.MovieBookingTotal](ctx, r.movies, movieTotalsPipeline())
	if err != nil {
		return nil, fmt.Errorf("totals by movie: %w", err)
	}
	return out, nil
}

func (r *BookingRepo) views(ctx context.Context, match bson.D) ([]model.BookingView, error) {
	views, err := aggregate[model.BookingView](ctx, r.coll, bookingViewPipeline(match))
	if err != nil {
		return nil, fmt.Errorf("booking views: %w", err)
	}
	for i := range views {
		views[i].ResolveScreen()
	}
	return views, nil
}
