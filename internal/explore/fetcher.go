package explore

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mabarin/mabarin-web/internal/mabarin"
	"github.com/mabarin/mabarin-web/internal/model"
)

// Strategy selects where pagination happens.
type Strategy string

const (
	// StrategyClient pulls the whole filtered catalogue and slices locally.
	StrategyClient Strategy = "client"
	// StrategyServer lets the API paginate.
	StrategyServer Strategy = "server"
)

// ParseStrategy defaults to StrategyClient.
func ParseStrategy(s string) Strategy {
	if strings.EqualFold(strings.TrimSpace(s), string(StrategyServer)) {
		return StrategyServer
	}
	return StrategyClient
}

// ActivitySource lists activities.
type ActivitySource interface {
	ListActivities(ctx context.Context, q mabarin.ActivityQuery) (mabarin.ActivityPage, error)
}

// Result is one fetched page.  Err is set when the fetch failed, in which
// case Items is empty.
type Result struct {
	Items      []model.SportActivity
	Pager      Pager
	Generation int64
	Err        error
}

// Fetcher turns Criteria into one upstream request.  Every fetch takes a new
// generation number, and Fetch reports whether the result is still the
// newest when it arrives; callers must drop stale ones.
type Fetcher struct {
	src      ActivitySource
	strategy Strategy
	loc      *time.Location
	log      echo.Logger
	now      func() time.Time
	gen      atomic.Int64
}

func NewFetcher(src ActivitySource, strategy Strategy, loc *time.Location, log echo.Logger) *Fetcher {
	if loc == nil {
		loc = time.UTC
	}
	return &Fetcher{src: src, strategy: strategy, loc: loc, log: log, now: time.Now}
}

// Generation is the number of the most recent fetch.
func (f *Fetcher) Generation() int64 { return f.gen.Load() }

// Fetch runs one request.  The bool is false when a newer Fetch started
// before this one finished.
func (f *Fetcher) Fetch(ctx context.Context, c Criteria) (Result, bool) {
	gen := f.gen.Add(1)
	res := f.fetch(ctx, c)
	res.Generation = gen
	return res, f.gen.Load() == gen
}

func (f *Fetcher) fetch(ctx context.Context, c Criteria) Result {
	if c.PageSize < 1 {
		c.PageSize = DefaultCriteria(0).PageSize
	}
	// Upstream cannot drop ended activities, so its page totals would
	// count them.  Hiding them needs the whole catalogue.
	strategy := f.strategy
	if c.HideExpired {
		strategy = StrategyClient
	}
	page, err := f.src.ListActivities(ctx, c.Query(strategy))
	if err != nil {
		f.log.Errorf("explore: list activities %v: %v", c.Values().Encode(), err)
		return Result{Pager: NewPager(1, 0, c.PageSize), Err: err}
	}

	now := f.now()
	if strategy == StrategyServer {
		items := page.Items
		SortByStart(items, f.loc)
		total := page.Total
		if total < len(page.Items) {
			total = len(page.Items)
		}
		return Result{Items: items, Pager: NewPager(c.Page, total, c.PageSize)}
	}

	all := FilterActivities(page.Items, c, now, f.loc)
	SortByStart(all, f.loc)
	pager := NewPager(c.Page, len(all), c.PageSize)
	return Result{Items: SlicePage(all, pager.Page, c.PageSize), Pager: pager}
}

// FilterActivities applies c locally.  Search matches title, description or
// address case-insensitively; ids match exactly.
func FilterActivities(items []model.SportActivity, c Criteria, now time.Time, loc *time.Location) []model.SportActivity {
	needle := strings.ToLower(strings.TrimSpace(c.Search))
	out := make([]model.SportActivity, 0, len(items))
	for _, a := range items {
		if needle != "" && !matches(a, needle) {
			continue
		}
		if c.CategoryID > 0 && (a.SportCategory == nil || a.SportCategory.ID != c.CategoryID) {
			continue
		}
		if c.ProvinceID > 0 && provinceOf(a) != c.ProvinceID {
			continue
		}
		if c.ProvinceID > 0 && c.CityID > 0 && a.City.ID != c.CityID {
			continue
		}
		if c.HideExpired && Check(a, now, loc) == Ended {
			continue
		}
		out = append(out, a)
	}
	return out
}

func matches(a model.SportActivity, needle string) bool {
	for _, field := range []string{a.Title, a.Description, a.Address} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func provinceOf(a model.SportActivity) int64 {
	if a.City.Province.ID != 0 {
		return a.City.Province.ID
	}
	return a.City.ProvinceID
}

// SortByStart orders activities by start time, earliest first.  Activities
// with unparseable times keep their relative order at the end.
func SortByStart(items []model.SportActivity, loc *time.Location) {
	key := func(a model.SportActivity) (time.Time, bool) {
		t, err := a.StartsAt(loc)
		if err != nil {
			t, err = a.Day(loc)
		}
		return t, err == nil
	}
	sort.SliceStable(items, func(i, j int) bool {
		ti, oki := key(items[i])
		tj, okj := key(items[j])
		if oki != okj {
			return oki
		}
		return oki && ti.Before(tj)
	})
}

// Upcoming returns at most limit activities that start after now, nearest
// first.
func Upcoming(items []model.SportActivity, now time.Time, loc *time.Location, limit int) []model.SportActivity {
	out := make([]model.SportActivity, 0, len(items))
	for _, a := range items {
		if start, err := a.StartsAt(loc); err == nil && start.After(now) {
			out = append(out, a)
		}
	}
	SortByStart(out, loc)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
