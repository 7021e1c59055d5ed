package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mabarin/mabarin-web/internal/mabarin"
	"github.com/mabarin/mabarin-web/internal/middleware"
	"github.com/mabarin/mabarin-web/internal/session"
	"github.com/mabarin/mabarin-web/internal/web"
)

const msgSessionExpired = "Your session has expired. Please login again."

// Base bundles what every page handler needs.
type Base struct {
	API      *mabarin.Client
	Sessions *session.Manager
	Log      echo.Logger
}

// page renders a template inside the layout, consuming the pending flash.
func (b Base) page(c echo.Context, status int, name, title string, data any) error {
	p := web.Page{Title: title, Path: c.Request().URL.Path, Session: session.From(c), Data: data}
	if f, ok := b.Sessions.TakeFlash(c); ok {
		p.Flash = &f
	}
	return c.Render(status, name, p)
}

// redirect flashes msg (when non-empty) and sends the browser to to.
func (b Base) redirect(c echo.Context, kind, msg, to string) error {
	if msg != "" {
		b.Sessions.SetFlash(c, kind, msg)
	}
	return c.Redirect(http.StatusSeeOther, to)
}

// fail turns an upstream error into a page response.  An expired token logs
// the visitor out and sends them to the login page.
func (b Base) fail(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, mabarin.ErrUnauthorized):
		b.Sessions.Clear(c)
		return b.redirect(c, "error", msgSessionExpired, middleware.LoginURL(c.Request().URL.RequestURI()))
	case errors.Is(err, mabarin.ErrNotFound):
		return b.page(c, http.StatusNotFound, "error", "Not Found", errorData{Status: http.StatusNotFound, Message: "The page you are looking for does not exist."})
	}
	b.Log.Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return b.page(c, http.StatusBadGateway, "error", "Error", errorData{Status: http.StatusBadGateway, Message: mabarin.UserMessage(err, fallback)})
}

type errorData struct {
	Status  int
	Message string
}

// apiError writes the JSON error body used by every /api endpoint.
func apiError(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, echo.Map{"error": code, "message": msg})
}

// upstreamAPIError maps an upstream failure onto apiError.
func upstreamAPIError(c echo.Context, err error) error {
	var decodeErr *mabarin.DecodeError
	switch {
	case errors.Is(err, mabarin.ErrUnauthorized):
		return apiError(c, http.StatusUnauthorized, "unauthorized", msgSessionExpired)
	case errors.Is(err, mabarin.ErrNotFound):
		return apiError(c, http.StatusNotFound, "not_found", mabarin.UserMessage(err, "not found"))
	case errors.As(err, &decodeErr):
		return apiError(c, http.StatusBadGateway, "bad_upstream_reply", "The server sent an unexpected reply.")
	}
	return apiError(c, http.StatusBadGateway, "upstream_unavailable", mabarin.UserMessage(err, "The server is unavailable, please try again."))
}

// pathID reads a positive numeric path parameter.
func pathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
