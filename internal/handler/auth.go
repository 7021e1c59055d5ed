package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mabarin/mabarin-web/internal/mabarin"
	"github.com/mabarin/mabarin-web/internal/session"
)

const (
	msgLoginOK        = "Login Berhasil!"
	msgLoginFailed    = "Login Gagal! Coba cek email / password mu!"
	msgRegisterOK     = "Register Berhasil!"
	msgRegisterFailed = "Register Gagal! Coba cek email / password mu!"
	msgLoggedOut      = "Logout Berhasil!"
)

// AuthHandler serves login, registration and logout.
type AuthHandler struct{ Base }

func NewAuthHandler(b Base) *AuthHandler { return &AuthHandler{Base: b} }

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	Next     string `form:"next"`
}

type loginData struct {
	Email string
	Next  string
	Error string
}

type registerForm struct {
	Name            string `form:"name"`
	Email           string `form:"email"`
	PhoneNumber     string `form:"phone_number"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"c_password"`
}

type registerData struct {
	Name        string
	Email       string
	PhoneNumber string
	Error       string
}

// LoginPage shows the login form.  Signed-in visitors go home.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if session.From(c).Authenticated() {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return h.page(c, http.StatusOK, "login", "Login", loginData{Next: c.QueryParam("next")})
}

// Login exchanges credentials for an upstream token and stores it in the
// session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var f loginForm
	if err := c.Bind(&f); err != nil {
		return h.page(c, http.StatusBadRequest, "login", "Login", loginData{Error: msgLoginFailed})
	}
	f.Email = strings.TrimSpace(f.Email)

	u, err := h.API.Login(c.Request().Context(), mabarin.LoginRequest{Email: f.Email, Password: f.Password})
	if err != nil {
		h.Log.Infof("login %s: %v", f.Email, err)
		return h.page(c, http.StatusUnauthorized, "login", "Login", loginData{Email: f.Email, Next: f.Next, Error: msgLoginFailed})
	}

	s := session.From(c)
	if s.ID == "" {
		s = session.Anonymous()
	}
	s.Token, s.Email, s.Name, s.UserID = u.Token, u.Email, u.Name, u.ID.String()
	if s.Email == "" {
		s.Email = f.Email
	}
	if err := h.Sessions.Save(c, s); err != nil {
		return err
	}
	return h.redirect(c, "success", msgLoginOK, safeNext(f.Next))
}

func (h *AuthHandler) RegisterPage(c echo.Context) error {
	if session.From(c).Authenticated() {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return h.page(c, http.StatusOK, "register", "Register", registerData{})
}

// Register creates a "user" account and sends the visitor to the login page.
func (h *AuthHandler) Register(c echo.Context) error {
	var f registerForm
	if err := c.Bind(&f); err != nil {
		return h.page(c, http.StatusBadRequest, "register", "Register", registerData{Error: msgRegisterFailed})
	}
	err := h.API.Register(c.Request().Context(), mabarin.RegisterRequest{
		Name:            strings.TrimSpace(f.Name),
		Email:           strings.TrimSpace(f.Email),
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
		PhoneNumber:     strings.TrimSpace(f.PhoneNumber),
		Role:            "user",
	})
	if err != nil {
		h.Log.Infof("register %s: %v", f.Email, err)
		return h.page(c, http.StatusUnprocessableEntity, "register", "Register", registerData{
			Name: f.Name, Email: f.Email, PhoneNumber: f.PhoneNumber, Error: msgRegisterFailed,
		})
	}
	return h.redirect(c, "success", msgRegisterOK, "/login")
}

// Logout revokes the token upstream and always clears the cookie, even when
// the upstream call fails.
func (h *AuthHandler) Logout(c echo.Context) error {
	s := session.From(c)
	msg := msgLoggedOut
	if s.Authenticated() {
		m, err := h.API.Logout(c.Request().Context(), s.Token)
		if err != nil {
			h.Log.Warnf("logout: %v", err)
		} else if m != "" {
			msg = m
		}
	}
	h.Sessions.Clear(c)
	return h.redirect(c, "success", msg, "/")
}
