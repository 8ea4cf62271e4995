// Package auth issues and verifies the bearer tokens used for sessions and
// email verification, and hashes passwords.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iliyamo/movie-booking/internal/model"
)

var (
	// ErrInvalidToken covers bad signatures, unexpected algorithms and
	// expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrMissingSubject is returned when a validly signed token carries no
	// user id.
	ErrMissingSubject = errors.New("token has no subject")
)

// Purpose distinguishes session tokens from email verification tokens
// signed with the same key.
type Purpose string

const (
	PurposeSession           Purpose = "session"
	PurposeEmailVerification Purpose = "email_verification"
)

// Identity is the user data embedded into a token.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   model.RoleName
}

// Claims is the JWT payload.
type Claims struct {
	UserID  string         `json:"userId"`
	Email   string         `json:"email"`
	Name    string         `json:"name,omitempty"`
	Role    model.RoleName `json:"role"`
	Purpose Purpose        `json:"purpose"`
	jwt.RegisteredClaims
}

// Token is a signed token and its expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// TokenService signs and verifies HS256 tokens with a shared secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService returns a service signing with secret; tokens live for ttl.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for id with the given purpose.
func (s *TokenService) Issue(id Identity, purpose Purpose) (Token, error) {
	now := time.Now().UTC()
	exp := now.Add(s.ttl)
	claims := Claims{
		UserID:  id.UserID,
		Email:   id.Email,
		Name:    id.Name,
		Role:    id.Role,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, ExpiresAt: exp}, nil
}

// Verify checks the signature and expiry of raw and returns its claims.
func (s *TokenService) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}
