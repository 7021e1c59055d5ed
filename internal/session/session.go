// Package session carries the visitor identity through a request.  The
// upstream bearer token lives in a signed cookie; nothing is stored server
// side.
package session

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const contextKey = "mabarin.session"

// Session is the visitor behind a request.  Every visitor has an ID, even
// before logging in, so per-browser state has a key.  Token is set only for
// authenticated visitors.
type Session struct {
	ID     string
	Token  string
	Email  string
	Name   string
	UserID string
}

// Anonymous returns a session with a fresh random ID.
func Anonymous() Session { return Session{ID: uuid.NewString()} }

// Authenticated reports whether the visitor holds an upstream token.
func (s Session) Authenticated() bool { return s.Token != "" }

// Logout returns s without its credentials, keeping the ID.
func (s Session) Logout() Session { return Session{ID: s.ID} }

// Put stores s in the request context.
func Put(c echo.Context, s Session) { c.Set(contextKey, s) }

// From returns the session stored by Put.  A request that never passed the
// loading middleware yields the zero Session.
func From(c echo.Context) Session {
	s, _ := c.Get(contextKey).(Session)
	return s
}
