package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/movie-booking/internal/auth"
	"github.com/iliyamo/movie-booking/internal/config"
	"github.com/iliyamo/movie-booking/internal/model"
)

func newContext(e *echo.Echo, authHeader string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func ok(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func TestJWTAuth(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", time.Hour)
	userID := primitive.NewObjectID()
	id := auth.Identity{UserID: userID.Hex(), Email: "alice@example.com", Role: model.RoleUser}
	session, err := tokens.Issue(id, auth.PurposeSession)
	require.NoError(t, err)
	verification, err := tokens.Issue(id, auth.PurposeEmailVerification)
	require.NoError(t, err)
	foreign, err := auth.NewTokenService("other-secret", time.Hour).Issue(id, auth.PurposeSession)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{name: "no header", status: http.StatusUnauthorized, message: "no token provided"},
		{name: "not bearer", header: "Basic abc", status: http.StatusUnauthorized, message: "no token provided"},
		{name: "empty bearer", header: "Bearer ", status: http.StatusUnauthorized, message: "no token provided"},
		{name: "bad signature", header: "Bearer " + foreign.Value, status: http.StatusUnauthorized, message: "invalid or expired token"},
		{name: "verification token", header: "Bearer " + verification.Value, status: http.StatusUnauthorized, message: "token cannot be used for this request"},
		{name: "session token", header: "Bearer " + session.Value, status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// setup
			e := echo.New()
			c, rec := newContext(e, tt.header)

			// act
			err := JWTAuth(tokens)(ok)(c)

			// assert
			require.NoError(t, err)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status != http.StatusOK {
				assert.JSONEq(t, `{"success":false,"message":"`+tt.message+`","error":"UNAUTHENTICATED"}`, rec.Body.String())
				return
			}
			assert.Equal(t, userID.Hex(), c.Get(UserIDKey))
			assert.Equal(t, model.RoleUser, c.Get(RoleKey))

			actor, err := Actor(c)
			require.NoError(t, err)
			assert.Equal(t, userID, actor.UserID)
			assert.Equal(t, model.RoleUser, actor.Role)
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name   string
		role   any
		status int
		code   string
	}{
		{name: "no role", status: http.StatusUnauthorized, code: "UNAUTHENTICATED"},
		{name: "wrong role", role: model.RoleUser, status: http.StatusForbidden, code: "FORBIDDEN"},
		{name: "plain string is not a role", role: "admin", status: http.StatusUnauthorized, code: "UNAUTHENTICATED"},
		{name: "allowed", role: model.RoleAdmin, status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			c, rec := newContext(e, "")
			if tt.role != nil {
				c.Set(RoleKey, tt.role)
			}

			require.NoError(t, RequireRole(model.RoleAdmin)(ok)(c))

			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Contains(t, rec.Body.String(), `"error":"`+tt.code+`"`)
			}
		})
	}
}

func TestActorWithoutClaims(t *testing.T) {
	c, _ := newContext(echo.New(), "")
	_, err := Actor(c)
	assert.Error(t, err)
}

func TestNewTokenBucketPassThrough(t *testing.T) {
	c, rec := newContext(echo.New(), "")
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, nil)
	require.NoError(t, mw(ok)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/login")

	cfg := config.RateLimitConfig{Prefix: "mb:rl"}
	cases := map[string]string{
		"ip":       "mb:rl:ip:10.0.0.7",
		"user":     "mb:rl:user:anon",
		"ip_route": "mb:rl:ip:10.0.0.7:route:POST /login",
		"":         "mb:rl:ip:10.0.0.7:user:anon:route:POST /login",
	}
	for strategy, want := range cases {
		cfg.KeyStrategy = strategy
		assert.Equal(t, want, buildRateKey(cfg, c), strategy)
	}

	c.Set(UserIDKey, "65a1f0c2e4b0a1b2c3d4e5f6")
	cfg.KeyStrategy = "user_route"
	assert.Equal(t, "mb:rl:user:65a1f0c2e4b0a1b2c3d4e5f6:route:POST /login", buildRateKey(cfg, c))
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(3), asInt64(int64(3)))
	assert.Equal(t, int64(2), asInt64(2.9))
	assert.Equal(t, int64(42), asInt64("42"))
	assert.Equal(t, int64(0), asInt64("x"))
	assert.Equal(t, int64(0), asInt64(nil))
}
