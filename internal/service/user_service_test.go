package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/movie-booking/internal/apperror"
	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/service"
)

func strPtr(s string) *string { return &s }

func TestUserService_Profile(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := e.register(t, "Alice Doe", "alice@example.com", model.RoleUser)
	admin := e.register(t, "Root Admin", "admin@example.com", model.RoleAdmin)

	me, err := e.users.Profile(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", me.Email)
	assert.Equal(t, model.RoleUser, me.Role)

	other, err := e.users.Get(ctx, admin.UserID.Hex())
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, other.Role)

	_, err = e.users.Get(ctx, primitive.NewObjectID().Hex())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	_, err = e.users.Get(ctx, "nope")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	all, err := e.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alice@example.com", all[0].Email)
	assert.Equal(t, model.RoleAdmin, all[1].Role)
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := e.register(t, "Alice Doe", "alice@example.com", model.RoleUser)
	bob := e.register(t, "Bob Smith", "bob@example.com", model.RoleUser)
	admin := e.register(t, "Root Admin", "admin@example.com", model.RoleAdmin)
	id := alice.UserID.Hex()

	t.Run("owner merges present fields", func(t *testing.T) {
		v, err := e.users.UpdateProfile(ctx, alice, id, service.ProfileUpdate{
			Name:           strPtr("Alice Cooper"),
			Phone:          strPtr("  "),
			ProfilePicture: "/uploads/a.png",
		})
		require.NoError(t, err)
		assert.Equal(t, "Alice Cooper", v.Name)
		assert.Equal(t, "9876543210", v.Phone, "blank phone keeps the stored value")
		assert.Equal(t, "/uploads/a.png", v.ProfilePicture)
		assert.Empty(t, e.removed.paths)
	})

	t.Run("replacing the picture removes the old file", func(t *testing.T) {
		_, err := e.users.UpdateProfile(ctx, alice, id, service.ProfileUpdate{ProfilePicture: "/uploads/b.png"})
		require.NoError(t, err)
		assert.Equal(t, []string{"/uploads/a.png"}, e.removed.paths)
	})

	t.Run("admin may update anyone", func(t *testing.T) {
		v, err := e.users.UpdateProfile(ctx, admin, id, service.ProfileUpdate{Phone: strPtr("1234567")})
		require.NoError(t, err)
		assert.Equal(t, "1234567", v.Phone)
	})

	t.Run("other users are forbidden", func(t *testing.T) {
		_, err := e.users.UpdateProfile(ctx, bob, id, service.ProfileUpdate{Name: strPtr("Mallory")})
		assert.True(t, apperror.Is(err, apperror.KindForbidden))
	})

	t.Run("email is fixed", func(t *testing.T) {
		_, err := e.users.UpdateProfile(ctx, alice, id, service.ProfileUpdate{Email: strPtr("new@example.com")})
		assert.True(t, apperror.Is(err, apperror.KindValidation))

		_, err = e.users.UpdateProfile(ctx, alice, id, service.ProfileUpdate{Email: strPtr("ALICE@example.com")})
		assert.NoError(t, err, "same address in another case is not a change")
	})

	t.Run("invalid fields", func(t *testing.T) {
		_, err := e.users.UpdateProfile(ctx, alice, id, service.ProfileUpdate{Name: strPtr("Al")})
		require.Error(t, err)
		assert.Equal(t, "name must be at least 3 characters", err.Error())
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := e.users.UpdateProfile(ctx, admin, primitive.NewObjectID().Hex(), service.ProfileUpdate{Name: strPtr("Nobody")})
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})
}
