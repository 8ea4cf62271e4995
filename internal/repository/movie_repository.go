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

// MovieRepo persists the movie catalog.
type MovieRepo struct {
	coll *mongo.Collection
}

func NewMovieRepo(db *mongo.Database) *MovieRepo {
	return &MovieRepo{coll: db.Collection(database.MoviesCollection)}
}

func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	m.CreatedAt, m.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("insert movie: %w", err)
	}
	return nil
}

func (r *MovieRepo) FindAll(ctx context.Context) ([]model.Movie, error) {
	return findAll[model.Movie](ctx, r.coll, bson.D{}, bson.D{{Key: "_id", Value: 1}})
}

func (r *MovieRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Movie, error) {
	return findOne[model.Movie](ctx, r.coll, bson.M{"_id": id})
}

// FindByIDs returns the movies among ids that still exist, in no
// particular order.
func (r *MovieRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Movie, error) {
	if len(ids) == 0 {
		return []model.Movie{}, nil
	}
	return findAll[model.Movie](ctx, r.coll, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

// Update overwrites the editable fields of m and reloads it.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	update := bson.M{"$set": bson.M{
		"moviename":   m.MovieName,
		"genre":       m.Genre,
		"language":    m.Language,
		"duration":    m.Duration,
		"cast":        m.Cast,
		"director":    m.Director,
		"releaseDate": m.ReleaseDate,
		"updatedAt":   time.Now().UTC(),
	}}
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": m.ID}, update, returnAfter()).Decode(m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update movie: %w", err)
	}
	return nil
}

// Delete removes the movie and returns the removed document.
func (r *MovieRepo) Delete(ctx context.Context, id primitive.ObjectID) (*model.Movie, error) {
	var m model.Movie
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete movie: %w", err)
	}
	return &m, nil
}
