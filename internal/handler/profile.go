package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mabarin/mabarin-web/internal/mabarin"
	"github.com/mabarin/mabarin-web/internal/model"
	"github.com/mabarin/mabarin-web/internal/session"
)

const (
	msgPasswordMismatch = "Passwords do not match!"
	msgProfileUpdated   = "Profile updated successfully!"
	msgProfileFailed    = "Failed to update profile"
	msgPasswordChanged  = "Password changed successfully!"
	msgPasswordFailed   = "Failed to change password"
)

// ProfileHandler serves /profile.  Every route requires a session.
type ProfileHandler struct{ Base }

func NewProfileHandler(b Base) *ProfileHandler { return &ProfileHandler{Base: b} }

type profileData struct {
	User model.User
}

type profileForm struct {
	Name        string `form:"name"`
	Email       string `form:"email"`
	PhoneNumber string `form:"phone_number"`
}

type passwordForm struct {
	Password        string `form:"password"`
	ConfirmPassword string `form:"c_password"`
}

// Show renders the profile of the signed-in user.
func (h *ProfileHandler) Show(c echo.Context) error {
	u, err := h.API.Me(c.Request().Context(), session.From(c).Token)
	if err != nil {
		return h.fail(c, err, "Failed to load profile")
	}
	return h.page(c, http.StatusOK, "profile", "My Profile", profileData{User: u})
}

// Update edits name, email and phone number.  The role is read back from
// /me and sent unchanged.
func (h *ProfileHandler) Update(c echo.Context) error {
	var f profileForm
	if err := c.Bind(&f); err != nil {
		return h.redirect(c, "error", msgProfileFailed, "/profile")
	}
	ctx := c.Request().Context()
	s := session.From(c)

	u, err := h.API.Me(ctx, s.Token)
	if err != nil {
		return h.fail(c, err, msgProfileFailed)
	}
	req := mabarin.UpdateUserRequest{
		Name:        strings.TrimSpace(f.Name),
		Email:       strings.TrimSpace(f.Email),
		PhoneNumber: strings.TrimSpace(f.PhoneNumber),
		Role:        u.Role,
	}
	if _, err := h.API.UpdateUser(ctx, s.Token, u.ID.String(), req); err != nil {
		return h.updateFailed(c, err, msgProfileFailed)
	}

	s.Name, s.Email = req.Name, req.Email
	if err := h.Sessions.Save(c, s); err != nil {
		h.Log.Warnf("profile: refresh session: %v", err)
	}
	return h.redirect(c, "success", msgProfileUpdated, "/profile")
}

// ChangePassword checks the confirmation locally before calling upstream.
func (h *ProfileHandler) ChangePassword(c echo.Context) error {
	var f passwordForm
	if err := c.Bind(&f); err != nil || f.Password == "" {
		return h.redirect(c, "error", msgPasswordFailed, "/profile")
	}
	if f.Password != f.ConfirmPassword {
		return h.redirect(c, "error", msgPasswordMismatch, "/profile")
	}
	ctx := c.Request().Context()
	s := session.From(c)

	u, err := h.API.Me(ctx, s.Token)
	if err != nil {
		return h.fail(c, err, msgPasswordFailed)
	}
	_, err = h.API.UpdateUser(ctx, s.Token, u.ID.String(), mabarin.UpdateUserRequest{
		Name:            u.Name,
		Email:           u.Email,
		PhoneNumber:     u.PhoneNumber,
		Role:            u.Role,
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
	})
	if err != nil {
		return h.updateFailed(c, err, msgPasswordFailed)
	}
	return h.redirect(c, "success", msgPasswordChanged, "/profile")
}

func (h *ProfileHandler) updateFailed(c echo.Context, err error, fallback string) error {
	if isExpired(err) {
		return h.fail(c, err, fallback)
	}
	h.Log.Warnf("profile: %v", err)
	return h.redirect(c, "error", mabarin.UserMessage(err, fallback), "/profile")
}
