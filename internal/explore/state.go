package explore

import (
	"strings"
	"sync"
)

// State is the single owner of the current Criteria.  Every setter except
// EchoSearch notifies the change listener; every setter except SetPage sends
// the visitor back to page 1.
type State struct {
	mu       sync.Mutex
	c        Criteria
	echo     string
	onChange func(Criteria)
}

// NewState starts from initial.  onChange may be nil.
func NewState(initial Criteria, onChange func(Criteria)) *State {
	if initial.Page < 1 {
		initial.Page = 1
	}
	return &State{c: initial, echo: initial.Search, onChange: onChange}
}

func (s *State) Criteria() Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c
}

// SearchText is what the search box shows, which runs ahead of the committed
// Criteria.Search while a debounce is pending.
func (s *State) SearchText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.echo
}

// EchoSearch updates the visible search text only.
func (s *State) EchoSearch(text string) {
	s.mu.Lock()
	s.echo = text
	s.mu.Unlock()
}

// SetSearch commits text as the search constraint.  Re-committing the
// current value is a no-op so a debounce that settles on the same text does
// not refetch.
func (s *State) SetSearch(text string) {
	s.update(func(c *Criteria) bool {
		text = strings.TrimSpace(text)
		s.echo = text
		if c.Search == text {
			return false
		}
		c.Search = text
		c.Page = 1
		return true
	})
}

func (s *State) SetCategory(id int64) {
	s.update(func(c *Criteria) bool {
		c.CategoryID = clampID(id)
		c.Page = 1
		return true
	})
}

// SetProvince also clears the city, which belongs to the old province.
func (s *State) SetProvince(id int64) {
	s.update(func(c *Criteria) bool {
		c.ProvinceID = clampID(id)
		c.CityID = 0
		c.Page = 1
		return true
	})
}

// SetCity is ignored while no province is selected.
func (s *State) SetCity(id int64) {
	s.update(func(c *Criteria) bool {
		if c.ProvinceID == 0 {
			c.CityID = 0
		} else {
			c.CityID = clampID(id)
		}
		c.Page = 1
		return true
	})
}

func (s *State) SetHideExpired(on bool) {
	s.update(func(c *Criteria) bool {
		c.HideExpired = on
		c.Page = 1
		return true
	})
}

func (s *State) SetPage(p int) {
	s.update(func(c *Criteria) bool {
		if p < 1 {
			p = 1
		}
		c.Page = p
		return true
	})
}

// Reset drops every constraint, keeping the page size.
func (s *State) Reset() {
	s.update(func(c *Criteria) bool {
		*c = DefaultCriteria(c.PageSize)
		s.echo = ""
		return true
	})
}

// Replace adopts c wholesale, as when the page is reloaded from a URL.  An
// identical c does not notify.
func (s *State) Replace(c Criteria) {
	if c.Page < 1 {
		c.Page = 1
	}
	s.update(func(cur *Criteria) bool {
		s.echo = c.Search
		if *cur == c {
			return false
		}
		*cur = c
		return true
	})
}

// update applies fn under the lock and notifies outside it.
func (s *State) update(fn func(*Criteria) bool) {
	s.mu.Lock()
	changed := fn(&s.c)
	snapshot := s.c
	notify := s.onChange
	s.mu.Unlock()
	if changed && notify != nil {
		notify(snapshot)
	}
}

func clampID(id int64) int64 {
	if id < 0 {
		return 0
	}
	return id
}
