package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/apperror"
	"github.com/iliyamo/movie-booking/internal/auth"
	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/notify"
	"github.com/iliyamo/movie-booking/internal/repository"
	"github.com/iliyamo/movie-booking/internal/validation"
)

const invalidCredentials = "invalid email or password"

// AuthService registers users, verifies their email and logs them in.
type AuthService struct {
	users       UserStore
	roles       RoleStore
	tokens      *auth.TokenService
	notifier    notify.Sender
	log         *zap.Logger
	frontendURL string
	bcryptCost  int
}

func NewAuthService(users UserStore, roles RoleStore, tokens *auth.TokenService, notifier notify.Sender,
	log *zap.Logger, frontendURL string, bcryptCost int) *AuthService {
	return &AuthService{
		users:       users,
		roles:       roles,
		tokens:      tokens,
		notifier:    notifier,
		log:         log,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		bcryptCost:  bcryptCost,
	}
}

// RegisterInput is bound from JSON or multipart form fields.
// ProfilePicture is set by the handler after storing the upload.
type RegisterInput struct {
	Name           string `json:"name" form:"name" validate:"required,min=3,max=50"`
	Email          string `json:"email" form:"email" validate:"required,email"`
	Phone          string `json:"phone" form:"phone" validate:"required,numeric,min=7,max=15"`
	Password       string `json:"password" form:"password" validate:"required,min=6"`
	Role           string `json:"role" form:"role" validate:"required,oneof=admin user"`
	ProfilePicture string `json:"-" form:"-"`
}

type LoginInput struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginResult is a successful login.
type LoginResult struct {
	User  model.UserView
	Role  model.RoleName
	Token auth.Token
}

// Register stores a new unverified user and mails the verification link.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.UserView, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, apperror.Conflict("email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	role, err := s.roles.FindByName(ctx, model.RoleName(in.Role))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Validation("role not found")
		}
		return nil, apperror.Internal(err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("hash password: %w", err))
	}

	id := primitive.NewObjectID()
	tok, err := s.tokens.Issue(auth.Identity{
		UserID: id.Hex(),
		Email:  in.Email,
		Name:   in.Name,
		Role:   role.Name,
	}, auth.PurposeEmailVerification)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("issue verification token: %w", err))
	}

	u := &model.User{
		ID:                id,
		Name:              in.Name,
		Email:             in.Email,
		Phone:             in.Phone,
		Password:          hash,
		ProfilePicture:    in.ProfilePicture,
		VerificationToken: tok.Value,
		Role:              role.ID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// lost a race with a concurrent registration
			return nil, apperror.Conflict("email already registered")
		}
		return nil, storeErr(err, "user not found")
	}
	s.log.Info("user registered", zap.String("user_id", id.Hex()), zap.String("role", string(role.Name)))

	notifyBestEffort(ctx, s.notifier, s.log, notify.Message{
		Kind:      notify.KindVerifyEmail,
		To:        u.Email,
		Name:      u.Name,
		VerifyURL: s.frontendURL + "/verify-email/" + tok.Value,
	})

	view := u.View(role.Name)
	return &view, nil
}

// VerifyEmail marks the user named by a verification token as verified.
// Verifying twice is not an error.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.tokens.Verify(strings.TrimSpace(token))
	if err != nil || claims.Purpose != auth.PurposeEmailVerification {
		return apperror.Unauthenticated("invalid or expired token")
	}

	u, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return storeErr(err, "user not found")
	}
	if u.IsVerified {
		return nil
	}
	if err := s.users.MarkVerified(ctx, u.ID); err != nil {
		return storeErr(err, "user not found")
	}
	s.log.Info("email verified", zap.String("user_id", u.ID.Hex()))
	return nil
}

// Login checks the credentials and issues a session token. Unverified
// users may log in.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Unauthenticated(invalidCredentials)
		}
		return nil, apperror.Internal(err)
	}
	if !auth.VerifyPassword(u.Password, in.Password) {
		return nil, apperror.Unauthenticated(invalidCredentials)
	}

	role, err := roleName(ctx, s.roles, u.Role)
	if err != nil {
		return nil, err
	}
	tok, err := s.tokens.Issue(auth.Identity{
		UserID: u.ID.Hex(),
		Email:  u.Email,
		Name:   u.Name,
		Role:   role,
	}, auth.PurposeSession)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("issue session token: %w", err))
	}

	notifyBestEffort(ctx, s.notifier, s.log, notify.Message{
		Kind: notify.KindWelcome,
		To:   u.Email,
		Name: u.Name,
	})

	return &LoginResult{User: u.View(role), Role: role, Token: tok}, nil
}

// roleName resolves a role reference. A dangling reference is a data
// error, not a client error.
func roleName(ctx context.Context, roles RoleStore, id primitive.ObjectID) (model.RoleName, error) {
	r, err := roles.FindByID(ctx, id)
	if err != nil {
		return "", apperror.Internal(fmt.Errorf("resolve role %s: %w", id.Hex(), err))
	}
	return r.Name, nil
}
