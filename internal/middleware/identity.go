package middleware

// identity.go holds the visitor key shared by the cache and rate limiter.
// It is the session ID stored by LoadSession, or "anon" when the middleware
// did not run.

import (
	"github.com/labstack/echo/v4"

	"github.com/mabarin/mabarin-web/internal/session"
)

func visitorKey(c echo.Context) string {
	if id := session.From(c).ID; id != "" {
		return id
	}
	return "anon"
}
