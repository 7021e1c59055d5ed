package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/mabarin/mabarin-web/internal/config"
)

const (
	CookieName = "mabarin_session"
	FlashName  = "mabarin_flash"

	flashTTL = 5 * time.Minute
	issuer   = "mabarin-web"
)

// ErrInvalid is returned for cookies that fail signature or expiry checks.
var ErrInvalid = errors.New("session: invalid cookie")

type claims struct {
	Sid   string `json:"sid"`
	Tok   string `json:"tok,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	UID   string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

type flashClaims struct {
	Kind string `json:"kind"`
	Msg  string `json:"msg"`
	jwt.RegisteredClaims
}

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    string // success | error
	Message string
}

// Manager signs and reads the session and flash cookies.
type Manager struct {
	keys   config.Keys
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewManager(keys config.Keys, ttl time.Duration, secure bool) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{keys: keys, ttl: ttl, secure: secure, now: time.Now}
}

func (m *Manager) sign(key []byte, cl jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(key)
}

func (m *Manager) parse(raw string, key []byte, cl jwt.Claims) error {
	tok, err := jwt.ParseWithClaims(raw, cl, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tok.Valid {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Encode signs s into a cookie value.
func (m *Manager) Encode(s Session) (string, error) {
	now := m.now()
	return m.sign(m.keys.Session, claims{
		Sid:   s.ID,
		Tok:   s.Token,
		Email: s.Email,
		Name:  s.Name,
		UID:   s.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
}

// Decode verifies a cookie value produced by Encode.
func (m *Manager) Decode(raw string) (Session, error) {
	var cl claims
	if err := m.parse(raw, m.keys.Session, &cl); err != nil {
		return Session{}, err
	}
	if cl.Sid == "" {
		return Session{}, fmt.Errorf("%w: missing sid", ErrInvalid)
	}
	return Session{ID: cl.Sid, Token: cl.Tok, Email: cl.Email, Name: cl.Name, UserID: cl.UID}, nil
}

// Read returns the session cookie of the request, if present and valid.
func (m *Manager) Read(c echo.Context) (Session, bool) {
	ck, err := c.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return Session{}, false
	}
	s, err := m.Decode(ck.Value)
	if err != nil {
		return Session{}, false
	}
	return s, true
}

// Save writes s as the session cookie and stores it in the context.
func (m *Manager) Save(c echo.Context, s Session) error {
	v, err := m.Encode(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	c.SetCookie(m.cookie(CookieName, v, int(m.ttl/time.Second)))
	Put(c, s)
	return nil
}

// Clear expires the session cookie.  The next request starts anonymous.
func (m *Manager) Clear(c echo.Context) {
	c.SetCookie(m.cookie(CookieName, "", -1))
	Put(c, From(c).Logout())
}

// SetFlash queues a message for the next page.
func (m *Manager) SetFlash(c echo.Context, kind, msg string) {
	now := m.now()
	v, err := m.sign(m.keys.Flash, flashClaims{
		Kind: kind,
		Msg:  msg,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(flashTTL)),
		},
	})
	if err != nil {
		c.Logger().Warnf("session: sign flash: %v", err)
		return
	}
	c.SetCookie(m.cookie(FlashName, v, int(flashTTL/time.Second)))
}

// TakeFlash returns and clears the pending message.
func (m *Manager) TakeFlash(c echo.Context) (Flash, bool) {
	ck, err := c.Cookie(FlashName)
	if err != nil || ck.Value == "" {
		return Flash{}, false
	}
	c.SetCookie(m.cookie(FlashName, "", -1))
	var cl flashClaims
	if err := m.parse(ck.Value, m.keys.Flash, &cl); err != nil {
		return Flash{}, false
	}
	return Flash{Kind: cl.Kind, Message: cl.Msg}, true
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
