package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mabarin/mabarin-web/internal/session"
)

// LoadSession returns an Echo middleware that reads the signed session
// cookie and stores the visitor in the request context.  A missing, expired
// or tampered cookie is replaced by a fresh anonymous session so every
// request carries a session ID.
func LoadSession(m *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, ok := m.Read(c)
			if !ok {
				s = session.Anonymous()
				if err := m.Save(c, s); err != nil {
					c.Logger().Warnf("session: %v", err)
				}
			}
			session.Put(c, s)
			return next(c)
		}
	}
}

// LoginRequiredMessage is flashed when an anonymous visitor hits a page that
// needs an account.
const LoginRequiredMessage = "Please login first to continue."

// RequireAuth rejects anonymous visitors.  Pages redirect to /login with a
// next parameter; JSON endpoints under /api answer 401.
func RequireAuth(m *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if session.From(c).Authenticated() {
				return next(c)
			}
			if strings.HasPrefix(c.Path(), "/api/") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "login required"})
			}
			m.SetFlash(c, "error", LoginRequiredMessage)
			return c.Redirect(http.StatusSeeOther, LoginURL(c.Request().URL.RequestURI()))
		}
	}
}

// LoginURL builds the login link that returns to next after signing in.
func LoginURL(next string) string {
	if next == "" || next == "/" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}
