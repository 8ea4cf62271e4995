package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/apperror"
	"github.com/iliyamo/movie-booking/internal/service"
	"github.com/iliyamo/movie-booking/internal/upload"
)

// Uploader stores profile pictures. *upload.LocalStore implements it.
type Uploader interface {
	Save(fh *multipart.FileHeader) (string, error)
	Remove(publicPath string) error
}

// AuthHandler serves registration, email verification and login.
type AuthHandler struct {
	auth    *service.AuthService
	uploads Uploader
	log     *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, uploads Uploader, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, uploads: uploads, log: log}
}

// Register accepts JSON or a multipart form with an optional
// profilePicture file.
func (h *AuthHandler) Register(c echo.Context) error {
	var in service.RegisterInput
	if err := bind(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	picture, err := saveUpload(c, h.uploads)
	if err != nil {
		return respondError(c, h.log, err)
	}
	in.ProfilePicture = picture

	ctx, cancel := reqCtx(c)
	defer cancel()
	user, err := h.auth.Register(ctx, in)
	if err != nil {
		discardUpload(h.uploads, h.log, picture)
		return respondError(c, h.log, err)
	}
	return success(c, http.StatusCreated, "Registration successful. Please verify your email.", user)
}

func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.auth.VerifyEmail(ctx, c.Param("token")); err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, http.StatusOK, "Email verified successfully!", nil)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var in service.LoginInput
	if err := bind(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.auth.Login(ctx, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, envelope{
		Success: true,
		Message: "Login successful",
		Data:    res.User,
		Token:   res.Token.Value,
		Role:    res.Role,
	})
}

// saveUpload stores the profilePicture form file when one was sent and
// returns its public path, or "" when there is none.
func saveUpload(c echo.Context, uploads Uploader) (string, error) {
	if uploads == nil {
		return "", nil
	}
	fh, err := c.FormFile("profilePicture")
	if err != nil {
		// not multipart, or no file part
		return "", nil
	}
	path, err := uploads.Save(fh)
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		return "", apperror.Validation("profilePicture is too large")
	case errors.Is(err, upload.ErrUnsupportedExt):
		return "", apperror.Validation("profilePicture must be a jpg, png, gif or webp image")
	case err != nil:
		return "", apperror.Internal(err)
	}
	return path, nil
}

func discardUpload(uploads Uploader, log *zap.Logger, path string) {
	if path == "" || uploads == nil {
		return
	}
	if err := uploads.Remove(path); err != nil {
		log.Warn("orphaned upload not removed", zap.String("path", path), zap.Error(err))
	}
}
