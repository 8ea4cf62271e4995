package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/apperror"
	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/validation"
)

// FileRemover deletes a stored upload by its public path.
type FileRemover interface {
	Remove(publicPath string) error
}

// UserService reads and edits user profiles.
type UserService struct {
	users UserStore
	roles RoleStore
	files FileRemover
	log   *zap.Logger
}

// NewUserService builds the service. files may be nil when uploads are
// disabled.
func NewUserService(users UserStore, roles RoleStore, files FileRemover, log *zap.Logger) *UserService {
	return &UserService{users: users, roles: roles, files: files, log: log}
}

// ProfileUpdate carries the optional profile fields. Absent or empty
// fields keep their stored value.
type ProfileUpdate struct {
	Name           *string `json:"name" form:"name" validate:"omitempty,min=3,max=50"`
	Phone          *string `json:"phone" form:"phone" validate:"omitempty,numeric,min=7,max=15"`
	Email          *string `json:"email" form:"email"`
	ProfilePicture string  `json:"-" form:"-"`
}

func (p *ProfileUpdate) normalize() {
	blankToNil(&p.Name, &p.Phone, &p.Email)
}

// Profile returns the caller's own profile.
func (s *UserService) Profile(ctx context.Context, actor Actor) (*model.UserView, error) {
	return s.get(ctx, actor.UserID.Hex())
}

func (s *UserService) Get(ctx context.Context, id string) (*model.UserView, error) {
	return s.get(ctx, id)
}

func (s *UserService) get(ctx context.Context, rawID string) (*model.UserView, error) {
	id, err := parseID("id", rawID)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "user not found")
	}
	role, err := roleName(ctx, s.roles, u.Role)
	if err != nil {
		return nil, err
	}
	view := u.View(role)
	return &view, nil
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]model.UserView, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	names := make(map[string]model.RoleName)
	out := make([]model.UserView, 0, len(users))
	for i := range users {
		key := users[i].Role.Hex()
		name, ok := names[key]
		if !ok {
			if name, err = roleName(ctx, s.roles, users[i].Role); err != nil {
				return nil, err
			}
			names[key] = name
		}
		out = append(out, users[i].View(name))
	}
	return out, nil
}

// UpdateProfile merges up into the profile of user id. Only the owner or an
// admin may update a profile, and the email address is fixed.
func (s *UserService) UpdateProfile(ctx context.Context, actor Actor, id string, up ProfileUpdate) (*model.UserView, error) {
	uid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	if !actor.canActFor(uid) {
		return nil, apperror.Forbidden("you can only update your own profile")
	}
	up.normalize()
	if err := validation.Struct(up); err != nil {
		return nil, err
	}

	u, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, storeErr(err, "user not found")
	}
	if up.Email != nil && !strings.EqualFold(*up.Email, u.Email) {
		return nil, apperror.Validation("email cannot be changed")
	}

	if up.Name != nil {
		u.Name = *up.Name
	}
	if up.Phone != nil {
		u.Phone = *up.Phone
	}
	previous := u.ProfilePicture
	if up.ProfilePicture != "" {
		u.ProfilePicture = up.ProfilePicture
	}
	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return nil, storeErr(err, "user not found")
	}

	if s.files != nil && previous != "" && previous != u.ProfilePicture {
		if err := s.files.Remove(previous); err != nil {
			s.log.Warn("old profile picture not removed", zap.String("path", previous), zap.Error(err))
		}
	}

	role, err := roleName(ctx, s.roles, u.Role)
	if err != nil {
		return nil, err
	}
	view := u.View(role)
	return &view, nil
}
