package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mabarin/mabarin-web/internal/config"
	"github.com/mabarin/mabarin-web/internal/explore"
	"github.com/mabarin/mabarin-web/internal/session"
)

// LiveHandler is the JSON surface of the explore page.  Each call mutates
// the caller's live session and returns its snapshot.
type LiveHandler struct {
	Live *explore.Registry
	Cfg  config.ExploreConfig
}

func NewLiveHandler(live *explore.Registry, cfg config.ExploreConfig) *LiveHandler {
	return &LiveHandler{Live: live, Cfg: cfg}
}

type liveResponse struct {
	explore.View
	URL string `json:"url"`
}

type searchBody struct {
	Text string `json:"text" form:"text"`
}

type pageBody struct {
	Page int `json:"page" form:"page"`
}

// session returns the caller's live session, creating it from the current
// query string on first use.
func (h *LiveHandler) session(c echo.Context) (*explore.Live, error) {
	initial := explore.ParseCriteria(c.QueryParams(), PageSizeFor(c.Request(), h.Cfg))
	return h.Live.Get(c.Request().Context(), session.From(c).ID, initial)
}

func (h *LiveHandler) reply(c echo.Context, l *explore.Live) error {
	v := l.View()
	return c.JSON(http.StatusOK, liveResponse{View: v, URL: v.Criteria.PageURL("/explore", v.Criteria.Page)})
}

func (h *LiveHandler) with(c echo.Context, fn func(l *explore.Live) error) error {
	l, err := h.session(c)
	if errors.Is(err, explore.ErrNoSession) {
		return apiError(c, http.StatusUnauthorized, "no_session", "A session cookie is required.")
	}
	if err != nil {
		return err
	}
	if err := fn(l); err != nil {
		return err
	}
	return h.reply(c, l)
}

// State returns the current snapshot without changing anything.
func (h *LiveHandler) State(c echo.Context) error {
	return h.with(c, func(*explore.Live) error { return nil })
}

// Search echoes keystrokes.  The reply does not wait for the debounce, so
// it usually carries search_pending=true.
func (h *LiveHandler) Search(c echo.Context) error {
	var b searchBody
	if err := c.Bind(&b); err != nil {
		return apiError(c, http.StatusBadRequest, "bad_request", "Invalid search body.")
	}
	return h.with(c, func(l *explore.Live) error {
		l.Type(b.Text)
		return nil
	})
}

// ClearSearch empties the search and refetches at once.
func (h *LiveHandler) ClearSearch(c echo.Context) error {
	return h.with(c, func(l *explore.Live) error {
		l.ClearSearch()
		l.Settle()
		return nil
	})
}

// Filters applies select changes.
func (h *LiveHandler) Filters(c echo.Context) error {
	var p explore.FilterPatch
	if err := c.Bind(&p); err != nil {
		return apiError(c, http.StatusBadRequest, "bad_request", "Invalid filter body.")
	}
	return h.with(c, func(l *explore.Live) error {
		l.SetFilters(c.Request().Context(), p)
		l.Settle()
		return nil
	})
}

// Page moves to another page, clamped to the known range.
func (h *LiveHandler) Page(c echo.Context) error {
	var b pageBody
	if err := c.Bind(&b); err != nil {
		return apiError(c, http.StatusBadRequest, "bad_request", "Invalid page body.")
	}
	return h.with(c, func(l *explore.Live) error {
		l.SetPage(b.Page)
		l.Settle()
		return nil
	})
}

// Reset clears every filter.
func (h *LiveHandler) Reset(c echo.Context) error {
	return h.with(c, func(l *explore.Live) error {
		l.Reset(c.Request().Context())
		l.Settle()
		return nil
	})
}
