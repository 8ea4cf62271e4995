package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/movie-booking/internal/database"
	"github.com/iliyamo/movie-booking/internal/model"
)

// RoleRepo reads and seeds the roles collection.
type RoleRepo struct {
	coll *mongo.Collection
}

func NewRoleRepo(db *mongo.Database) *RoleRepo {
	return &RoleRepo{coll: db.Collection(database.RolesCollection)}
}

func (r *RoleRepo) FindByName(ctx context.Context, name model.RoleName) (*model.Role, error) {
	return findOne[model.Role](ctx, r.coll, bson.M{"name": name})
}

func (r *RoleRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Role, error) {
	return findOne[model.Role](ctx, r.coll, bson.M{"_id": id})
}

// SeedDefaults inserts the default roles when the collection is empty and
// reports whether it did. A concurrent seeder losing the race on the
// unique name index is not an error.
func (r *RoleRepo) SeedDefaults(ctx context.Context) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return false, fmt.Errorf("count roles: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	roles := model.DefaultRoles()
	docs := make([]any, 0, len(roles))
	for _, role := range roles {
		docs = append(docs, role)
	}
	if _, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert roles: %w", err)
	}
	return true, nil
}
