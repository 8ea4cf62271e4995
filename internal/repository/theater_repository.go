package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iliyamo/movie-booking/internal/database"
	"github.com/iliyamo/movie-booking/internal/model"
)

// TheaterRepo persists theaters and their embedded screen assignments.
type TheaterRepo struct {
	coll *mongo.Collection
}

func NewTheaterRepo(db *mongo.Database) *TheaterRepo {
	return &TheaterRepo{coll: db.Collection(database.TheatersCollection)}
}

func (r *TheaterRepo) Create(ctx context.Context, t *model.Theater) error {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.CreatedAt, t.UpdatedAt = now, now
	if t.Movies == nil {
		t.Movies = []model.ScreenAssignment{}
	}
	if _, err := r.coll.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("insert theater: %w", err)
	}
	return nil
}

func (r *TheaterRepo) FindAll(ctx context.Context) ([]model.Theater, error) {
	return findAll[model.Theater](ctx, r.coll, bson.D{}, bson.D{{Key: "_id", Value: 1}})
}

func (r *TheaterRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Theater, error) {
	return findOne[model.Theater](ctx, r.coll, bson.M{"_id": id})
}

// Update overwrites name, location and screen count. Assignments are left
// untouched.
func (r *TheaterRepo) Update(ctx context.Context, t *model.Theater) error {
	update := bson.M{"$set": bson.M{
		"theatername": t.TheaterName,
		"location":    t.Location,
		"screens":     t.Screens,
		"updatedAt":   time.Now().UTC(),
	}}
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": t.ID}, update, returnAfter()).Decode(t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update theater: %w", err)
	}
	return nil
}

func (r *TheaterRepo) Delete(ctx context.Context, id primitive.ObjectID) (*model.Theater, error) {
	var t model.Theater
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete theater: %w", err)
	}
	return &t, nil
}

// AssignMovie appends a to the theater's assignments in a single
// conditional update that only matches while the screen is free and within
// the theater's screen count. When nothing matches the theater is re-read
// to tell the failure cases apart.
func (r *TheaterRepo) AssignMovie(ctx context.Context, theaterID primitive.ObjectID, a model.ScreenAssignment) (*model.Theater, error) {
	filter := bson.M{
		"_id":                 theaterID,
		"movies.screenNumber": bson.M{"$ne": a.ScreenNumber},
		"screens":             bson.M{"$gte": a.ScreenNumber},
	}
	update := bson.M{
		"$push": bson.M{"movies": a},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	var t model.Theater
	err := r.coll.FindOneAndUpdate(ctx, filter, update, returnAfter()).Decode(&t)
	if err == nil {
		return &t, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("assign movie: %w", err)
	}

	existing, err := r.FindByID(ctx, theaterID)
	if err != nil {
		return nil, err
	}
	if a.ScreenNumber > existing.Screens {
		return nil, ErrScreenOutOfRange
	}
	return nil, ErrScreenTaken
}

// MovieDetails returns one row per (theater, assigned movie) pair.
func (r *TheaterRepo) MovieDetails(ctx context.Context) ([]model.MovieTheaterRow, error) {
	rows, err := aggregate[model.MovieTheaterRow](ctx, r.coll, movieTheaterDetailsPipeline())
	if err != nil {
		return nil, fmt.Errorf("movie details: %w", err)
	}
	return rows, nil
}
