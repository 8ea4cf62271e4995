// Package database opens the MongoDB connection and prepares indexes.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	UsersCollection    = "users"
	RolesCollection    = "roles"
	MoviesCollection   = "movies"
	TheatersCollection = "theaters"
	BookingsCollection = "bookings"
)

// Open connects to MongoDB and verifies the connection.
func Open(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(25).
		SetServerSelectionTimeout(10 * time.Second)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

// EnsureIndexes creates the indexes the repositories rely on. It is safe
// to call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		UsersCollection: {{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("users_email_unique"),
		}},
		RolesCollection: {{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("roles_name_unique"),
		}},
		TheatersCollection: {{
			Keys:    bson.D{{Key: "movies.screenNumber", Value: 1}},
			Options: options.Index().SetName("theaters_screen_number"),
		}},
		BookingsCollection: {
			{
				Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("bookings_user_created"),
			},
			{
				Keys:    bson.D{{Key: "theater", Value: 1}, {Key: "movie", Value: 1}},
				Options: options.Index().SetName("bookings_theater_movie"),
			},
		},
	}
	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%s indexes: %w", coll, err)
		}
	}
	return nil
}
