package handler

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/apperror"
	"github.com/iliyamo/movie-booking/internal/auth"
	"github.com/iliyamo/movie-booking/internal/service"
	"github.com/iliyamo/movie-booking/internal/service/servicetest"
	"github.com/iliyamo/movie-booking/internal/upload"
)

type fakeUploads struct {
	saveErr error
	saved   []string
	removed []string
}

func (f *fakeUploads) Save(fh *multipart.FileHeader) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	p := upload.PublicPrefix + fh.Filename
	f.saved = append(f.saved, p)
	return p, nil
}

func (f *fakeUploads) Remove(p string) error {
	f.removed = append(f.removed, p)
	return nil
}

func multipartRegister(t *testing.T, email string, withFile bool) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"name": "Jane Doe", "email": email, "phone": "9876543210", "password": "secret123", "role": "user",
	} {
		require.NoError(t, w.WriteField(k, v))
	}
	if withFile {
		fw, err := w.CreateFormFile("profilePicture", "me.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("png"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/register", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func newAuthHandler(uploads Uploader) *AuthHandler {
	db := servicetest.NewDB()
	log := zap.NewNop()
	svc := service.NewAuthService(db.Users(), db.Roles(), auth.NewTokenService("k", time.Hour),
		&servicetest.Outbox{}, log, "http://localhost:3000", 4)
	return NewAuthHandler(svc, uploads, log)
}

func TestRegisterMultipart(t *testing.T) {
	uploads := &fakeUploads{}
	h := newAuthHandler(uploads)
	e := echo.New()
	e.JSONSerializer = JSONSerializer{}

	rec := httptest.NewRecorder()
	require.NoError(t, h.Register(e.NewContext(multipartRegister(t, "jane@example.com", true), rec)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"profilePicture":"/uploads/me.png"`)
	assert.Equal(t, []string{"/uploads/me.png"}, uploads.saved)

	// a duplicate email leaves no orphaned file behind
	rec = httptest.NewRecorder()
	require.NoError(t, h.Register(e.NewContext(multipartRegister(t, "jane@example.com", true), rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"CONFLICT"`)
	assert.Equal(t, []string{"/uploads/me.png"}, uploads.removed)
}

func TestRegisterRejectsUpload(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{upload.ErrTooLarge, "profilePicture is too large"},
		{upload.ErrUnsupportedExt, "profilePicture must be a jpg, png, gif or webp image"},
	}
	for _, tc := range tests {
		h := newAuthHandler(&fakeUploads{saveErr: tc.err})
		rec := httptest.NewRecorder()
		require.NoError(t, h.Register(echo.New().NewContext(multipartRegister(t, "jane@example.com", true), rec)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), tc.want)
	}
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"route not found", echo.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"method not allowed", echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "VALIDATION_ERROR"},
		{"app conflict", apperror.Conflict("taken"), http.StatusBadRequest, "CONFLICT"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			ErrorHandler(zap.NewNop())(tc.err, c)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error":"`+tc.code+`"`)
			assert.NotContains(t, rec.Body.String(), "boom")
		})
	}
}

func TestListRendersEmptyArray(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	require.NoError(t, list[int](e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), "ok", nil))
	assert.JSONEq(t, `{"success":true,"message":"ok","data":[],"total":0}`, rec.Body.String())
}
