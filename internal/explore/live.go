package explore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mabarin/mabarin-web/internal/model"
)

// View is the snapshot a live explore session renders.
type View struct {
	Criteria   Criteria              `json:"criteria"`
	SearchText string                `json:"search_text"`
	Pending    bool                  `json:"search_pending"`
	Options    Options               `json:"options"`
	Items      []model.SportActivity `json:"items"`
	Pager      Pager                 `json:"pager"`
	Loading    bool                  `json:"loading"`
	Generation int64                 `json:"generation"`
	Error      string                `json:"error,omitempty"`
}

// FilterPatch carries the select changes of one request.  Nil fields are
// left alone.  A province change is applied before a city change so both can
// be set together.
type FilterPatch struct {
	CategoryID  *int64 `json:"category_id"`
	ProvinceID  *int64 `json:"province_id"`
	CityID      *int64 `json:"city_id"`
	HideExpired *bool  `json:"hide_expired"`
}

// LiveDeps are the collaborators shared by every live session.
type LiveDeps struct {
	Directory    DirectorySource
	Activities   ActivitySource
	Strategy     Strategy
	Debounce     time.Duration
	FetchTimeout time.Duration
	Location     *time.Location
	Log          echo.Logger
}

// Live wires State, Debouncer, Directory and Fetcher together for one
// visitor.  Mutations return at once; fetches run in the background and only
// the newest result is applied.
type Live struct {
	state    *State
	debounce *Debouncer
	dir      *Directory
	fetcher  *Fetcher
	timeout  time.Duration
	log      echo.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	seq     uint64 // last refetch issued
	result  Result
	loading bool
	touched time.Time
	closed  bool
}

var errLiveClosed = errors.New("explore: live session closed")

// NewLive creates a session starting from initial.  Call Start to load the
// directory and the first page.
func NewLive(deps LiveDeps, initial Criteria) *Live {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Live{
		dir:     NewDirectory(deps.Directory, deps.Log),
		fetcher: NewFetcher(deps.Activities, deps.Strategy, deps.Location, deps.Log),
		timeout: deps.FetchTimeout,
		log:     deps.Log,
		ctx:     ctx,
		cancel:  cancel,
		touched: time.Now(),
	}
	if l.timeout <= 0 {
		l.timeout = 15 * time.Second
	}
	l.state = NewState(initial, l.refetch)
	l.debounce = NewDebouncer(deps.Debounce, l.state.SetSearch)
	l.result.Pager = NewPager(1, 0, initial.PageSize)
	return l
}

// Start loads the option lists, the cities of a preselected province, and
// the first page.  It blocks until all three are done.
func (l *Live) Start(ctx context.Context) {
	c := l.state.Criteria()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.dir.Load(ctx)
		if c.ProvinceID > 0 {
			l.dir.SelectProvince(ctx, c.ProvinceID)
		}
	}()
	l.refetch(c)
	wg.Wait()
	l.Settle()
}

// Type echoes text into the search box and schedules its propagation.
func (l *Live) Type(text string) {
	l.touch()
	l.state.EchoSearch(text)
	l.debounce.Push(text)
}

// ClearSearch empties the search box and propagates at once.
func (l *Live) ClearSearch() {
	l.touch()
	l.state.EchoSearch("")
	l.debounce.Clear()
}

// SetFilters applies select changes immediately.  A new province triggers a
// city lookup, or clears the cities when it is zero.
func (l *Live) SetFilters(ctx context.Context, p FilterPatch) {
	l.touch()
	if p.ProvinceID != nil && *p.ProvinceID != l.state.Criteria().ProvinceID {
		l.state.SetProvince(*p.ProvinceID)
		l.dir.SelectProvince(ctx, *p.ProvinceID)
	}
	if p.CityID != nil {
		l.state.SetCity(*p.CityID)
	}
	if p.CategoryID != nil {
		l.state.SetCategory(*p.CategoryID)
	}
	if p.HideExpired != nil {
		l.state.SetHideExpired(*p.HideExpired)
	}
}

// SetPage moves to page p, clamped into the range of the last result.
func (l *Live) SetPage(p int) {
	l.touch()
	l.mu.Lock()
	tp := l.result.Pager.TotalPages
	l.mu.Unlock()
	l.state.SetPage(ClampPage(p, tp))
}

// Reset drops every constraint and clears the city list.
func (l *Live) Reset(ctx context.Context) {
	l.touch()
	l.debounce.Stop()
	if l.state.Criteria().ProvinceID != 0 {
		l.dir.SelectProvince(ctx, 0)
	}
	l.state.Reset()
}

// Sync adopts criteria read from a page URL.  A pending search is dropped
// and the city list follows a changed province.
func (l *Live) Sync(ctx context.Context, c Criteria) {
	l.touch()
	l.debounce.Stop()
	if c.ProvinceID != l.state.Criteria().ProvinceID {
		l.dir.SelectProvince(ctx, c.ProvinceID)
	}
	l.state.Replace(c)
}

// View returns the current snapshot.
func (l *Live) View() View {
	pendingText, pending := l.debounce.Pending()
	l.mu.Lock()
	defer l.mu.Unlock()
	v := View{
		Criteria:   l.state.Criteria(),
		SearchText: l.state.SearchText(),
		Pending:    pending,
		Options:    l.dir.Options(),
		Items:      l.result.Items,
		Pager:      l.result.Pager,
		Loading:    l.loading,
		Generation: l.result.Generation,
	}
	if pending {
		v.SearchText = pendingText
	}
	if l.result.Err != nil {
		v.Error = "Failed to load activities."
	}
	return v
}

// Settle waits for in-flight fetches.
func (l *Live) Settle() { l.wg.Wait() }

// LastTouched is when the visitor last changed anything.
func (l *Live) LastTouched() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.touched
}

// Close stops the debounce timer and cancels in-flight fetches.
func (l *Live) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.debounce.Stop()
	l.cancel()
	l.wg.Wait()
}

func (l *Live) touch() {
	l.mu.Lock()
	l.touched = time.Now()
	l.mu.Unlock()
}

// refetch is the State change listener.
func (l *Live) refetch(c Criteria) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.loading = true
	l.seq++
	seq := l.seq
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(l.ctx, l.timeout)
		defer cancel()
		res, _ := l.fetcher.Fetch(ctx, c)
		l.mu.Lock()
		defer l.mu.Unlock()
		// Only the most recently issued refetch may land.
		if l.closed || seq != l.seq {
			return
		}
		if res.Err != nil && l.ctx.Err() != nil {
			res.Err = errLiveClosed
		}
		l.result = res
		l.loading = false
	}()
}
