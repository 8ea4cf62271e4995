package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iliyamo/movie-booking/internal/database"
	"github.com/iliyamo/movie-booking/internal/model"
)

// UserRepo persists users. Emails are stored lower-cased.
type UserRepo struct {
	coll *mongo.Collection
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{coll: db.Collection(database.UsersCollection)}
}

// Create inserts u. A pre-assigned ID is kept so that tokens issued before
// the insert can reference it.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt, u.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return findOne[model.User](ctx, r.coll, bson.M{"_id": id})
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, r.coll, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	return findAll[model.User](ctx, r.coll, bson.D{}, bson.D{{Key: "createdAt", Value: 1}})
}

// UpdateProfile writes the mutable profile fields of u.
func (r *UserRepo) UpdateProfile(ctx context.Context, u *model.User) error {
	u.UpdatedAt = time.Now().UTC()
	res, err := r.coll.UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{
		"name":           u.Name,
		"phone":          u.Phone,
		"profilePicture": u.ProfilePicture,
		"updatedAt":      u.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkVerified flags the user as verified and drops the pending token.
func (r *UserRepo) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{
		"$set":   bson.M{"isVerified": true, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"verificationToken": ""},
	})
	if err != nil {
		return fmt.Errorf("verify user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
