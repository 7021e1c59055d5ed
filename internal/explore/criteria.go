// Package explore holds the filter, search and pagination logic behind the
// explore page: the criteria a visitor is looking at, the debounced search
// box, the option lists for the filter selects, and the activity fetcher.
package explore

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/mabarin/mabarin-web/internal/mabarin"
)

// Criteria is the subset of activities a visitor is looking at.  Zero ids
// and empty search mean "no constraint".  CityID is only meaningful together
// with ProvinceID.
type Criteria struct {
	Search      string `json:"search"`
	CategoryID  int64  `json:"sport_category_id,omitempty"`
	ProvinceID  int64  `json:"province_id,omitempty"`
	CityID      int64  `json:"city_id,omitempty"`
	Page        int    `json:"page"`
	PageSize    int    `json:"page_size"`
	HideExpired bool   `json:"hide_expired,omitempty"`
}

// DefaultCriteria is an unfiltered first page.
func DefaultCriteria(pageSize int) Criteria {
	if pageSize < 1 {
		pageSize = 12
	}
	return Criteria{Page: 1, PageSize: pageSize}
}

// ParseCriteria reads criteria from URL query parameters.  Bad numbers are
// treated as absent, and a city without a province is dropped.
func ParseCriteria(v url.Values, pageSize int) Criteria {
	c := DefaultCriteria(pageSize)
	c.Search = strings.TrimSpace(v.Get("search"))
	c.CategoryID = parseID(v.Get("sport_category_id"))
	c.ProvinceID = parseID(v.Get("province_id"))
	c.CityID = parseID(v.Get("city_id"))
	if c.ProvinceID == 0 {
		c.CityID = 0
	}
	if p, err := strconv.Atoi(v.Get("page")); err == nil && p > 1 {
		c.Page = p
	}
	switch strings.ToLower(v.Get("hide_expired")) {
	case "1", "true", "on":
		c.HideExpired = true
	}
	return c
}

// Values is the inverse of ParseCriteria; only set fields are written so the
// URL of an unfiltered page is bare.
func (c Criteria) Values() url.Values {
	v := url.Values{}
	if s := strings.TrimSpace(c.Search); s != "" {
		v.Set("search", s)
	}
	if c.CategoryID > 0 {
		v.Set("sport_category_id", strconv.FormatInt(c.CategoryID, 10))
	}
	if c.ProvinceID > 0 {
		v.Set("province_id", strconv.FormatInt(c.ProvinceID, 10))
		if c.CityID > 0 {
			v.Set("city_id", strconv.FormatInt(c.CityID, 10))
		}
	}
	if c.Page > 1 {
		v.Set("page", strconv.Itoa(c.Page))
	}
	if c.HideExpired {
		v.Set("hide_expired", "1")
	}
	return v
}

// WithPage returns a copy pointing at page p.
func (c Criteria) WithPage(p int) Criteria {
	c.Page = p
	return c
}

// PageURL links base to page p of these criteria.
func (c Criteria) PageURL(base string, p int) string {
	if q := c.WithPage(p).Values().Encode(); q != "" {
		return base + "?" + q
	}
	return base
}

// Filtered reports whether any constraint is set.
func (c Criteria) Filtered() bool {
	return strings.TrimSpace(c.Search) != "" || c.CategoryID > 0 || c.ProvinceID > 0 || c.CityID > 0 || c.HideExpired
}

// Query builds the upstream request for these criteria.  The client
// strategy asks for the whole filtered catalogue and slices locally.
func (c Criteria) Query(strategy Strategy) mabarin.ActivityQuery {
	q := mabarin.ActivityQuery{
		Search:     strings.TrimSpace(c.Search),
		CategoryID: c.CategoryID,
		ProvinceID: c.ProvinceID,
	}
	if c.ProvinceID > 0 {
		q.CityID = c.CityID
	}
	if strategy == StrategyServer {
		q.Paginate = true
		q.PerPage = c.PageSize
		q.Page = c.Page
	} else {
		q.PerPage = mabarin.AllPerPage
	}
	return q
}

func parseID(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
