package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/apperror"
	"github.com/iliyamo/movie-booking/internal/middleware"
	"github.com/iliyamo/movie-booking/internal/service"
)

// UserHandler serves profile reads and updates.
type UserHandler struct {
	users   *service.UserService
	uploads Uploader
	log     *zap.Logger
}

func NewUserHandler(users *service.UserService, uploads Uploader, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, uploads: uploads, log: log}
}

// Profile returns the caller's own profile.
func (h *UserHandler) Profile(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	user, err := h.users.Profile(ctx, actor)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, http.StatusOK, "data get successfully", user)
}

func (h *UserHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	user, err := h.users.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, http.StatusOK, "User fetched successfully", user)
}

func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	users, err := h.users.List(ctx)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return list(c, "Users fetched successfully", users)
}

// Update accepts JSON or a multipart form with an optional profilePicture.
func (h *UserHandler) Update(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	up, err := bindProfileUpdate(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	picture, err := saveUpload(c, h.uploads)
	if err != nil {
		return respondError(c, h.log, err)
	}
	up.ProfilePicture = picture

	ctx, cancel := reqCtx(c)
	defer cancel()
	user, err := h.users.UpdateProfile(ctx, actor, c.Param("id"), up)
	if err != nil {
		discardUpload(h.uploads, h.log, picture)
		return respondError(c, h.log, err)
	}
	return success(c, http.StatusOK, "Profile updated successfully", user)
}

// bindProfileUpdate reads form fields by hand for multipart requests so
// that absent fields stay nil.
func bindProfileUpdate(c echo.Context) (service.ProfileUpdate, error) {
	var up service.ProfileUpdate
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ctype, echo.MIMEMultipartForm) && !strings.HasPrefix(ctype, echo.MIMEApplicationForm) {
		return up, bind(c, &up)
	}
	form, err := c.FormParams()
	if err != nil {
		return up, apperror.Validation("invalid form body")
	}
	field := func(name string) *string {
		if vs, ok := form[name]; ok && len(vs) > 0 {
			v := vs[0]
			return &v
		}
		return nil
	}
	up.Name, up.Phone, up.Email = field("name"), field("phone"), field("email")
	return up, nil
}
