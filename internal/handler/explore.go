package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mabarin/mabarin-web/internal/config"
	"github.com/mabarin/mabarin-web/internal/explore"
	"github.com/mabarin/mabarin-web/internal/mabarin"
	"github.com/mabarin/mabarin-web/internal/model"
	"github.com/mabarin/mabarin-web/internal/session"
)

// ExploreHandler serves the home page and the explore list.  The list is
// rendered from the visitor's live session, so the JSON API and the page
// always agree.
type ExploreHandler struct {
	Base
	Live     *explore.Registry
	Cfg      config.ExploreConfig
	Location *time.Location
	now      func() time.Time
}

func NewExploreHandler(b Base, live *explore.Registry, cfg config.ExploreConfig, loc *time.Location) *ExploreHandler {
	return &ExploreHandler{Base: b, Live: live, Cfg: cfg, Location: loc, now: time.Now}
}

type homeData struct {
	Upcoming []model.SportActivity
}

// exploreData is the explore template model.
type exploreData struct {
	explore.View
}

// PageURL links to page p of the current criteria.
func (d exploreData) PageURL(p int) string { return d.Criteria.PageURL("/explore", p) }

// Home lists the next few upcoming events.  A failed lookup shows an empty
// strip rather than an error page.
func (h *ExploreHandler) Home(c echo.Context) error {
	page, err := h.API.ListActivities(c.Request().Context(), mabarin.ActivityQuery{PerPage: mabarin.AllPerPage})
	if err != nil {
		h.Log.Errorf("home: list activities: %v", err)
	}
	return h.page(c, http.StatusOK, "home", "", homeData{
		Upcoming: explore.Upcoming(page.Items, h.now(), h.Location, h.Cfg.UpcomingLimit),
	})
}

// Explore renders the activity list for the criteria in the URL.
func (h *ExploreHandler) Explore(c echo.Context) error {
	ctx := c.Request().Context()
	crit := explore.ParseCriteria(c.QueryParams(), h.pageSize(c))

	live, err := h.Live.Get(ctx, session.From(c).ID, crit)
	if err != nil {
		return err
	}
	live.Sync(ctx, crit)
	live.Settle()
	v := live.View()

	if v.Pager.Total > 0 && crit.Page > v.Pager.TotalPages {
		return c.Redirect(http.StatusSeeOther, crit.PageURL("/explore", v.Pager.TotalPages))
	}
	return h.page(c, http.StatusOK, "explore", "Explore", exploreData{View: v})
}

// pageSize picks the compact page size for phones.  ?view=compact|full
// overrides the guess.
func (h *ExploreHandler) pageSize(c echo.Context) int {
	return PageSizeFor(c.Request(), h.Cfg)
}

// PageSizeFor guesses the page size from the request: an explicit view
// parameter, the Sec-CH-UA-Mobile client hint, then the user agent.
func PageSizeFor(r *http.Request, cfg config.ExploreConfig) int {
	switch r.URL.Query().Get("view") {
	case "compact":
		return cfg.PageSizeMobile
	case "full":
		return cfg.PageSize
	}
	if r.Header.Get("Sec-CH-UA-Mobile") == "?1" || strings.Contains(r.UserAgent(), "Mobi") {
		return cfg.PageSizeMobile
	}
	return cfg.PageSize
}
