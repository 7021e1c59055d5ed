package explore

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoSession is returned for requests that carry no session id.
var ErrNoSession = errors.New("explore: no session")

// DefaultMaxSessions bounds a Registry built with a non-positive limit.
const DefaultMaxSessions = 10000

// Registry keeps one Live per session id and evicts the idle ones.  Once
// maxSessions are held the least recently touched one makes room for a new
// visitor.
type Registry struct {
	deps        LiveDeps
	idleTTL     time.Duration
	maxSessions int

	mu       sync.Mutex
	sessions map[string]*Live
}

func NewRegistry(deps LiveDeps, idleTTL time.Duration, maxSessions int) *Registry {
	if idleTTL <= 0 {
		idleTTL = 15 * time.Minute
	}
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &Registry{deps: deps, idleTTL: idleTTL, maxSessions: maxSessions, sessions: make(map[string]*Live)}
}

// Get returns the session for sid, creating and starting it from initial on
// first use.
func (r *Registry) Get(ctx context.Context, sid string, initial Criteria) (*Live, error) {
	if sid == "" {
		return nil, ErrNoSession
	}
	r.mu.Lock()
	if l, ok := r.sessions[sid]; ok {
		r.mu.Unlock()
		return l, nil
	}
	var evicted *Live
	if len(r.sessions) >= r.maxSessions {
		evicted = r.evictOldestLocked()
	}
	l := NewLive(r.deps, initial)
	r.sessions[sid] = l
	r.mu.Unlock()

	if evicted != nil {
		evicted.Close()
	}
	l.Start(ctx)
	return l, nil
}

// evictOldestLocked drops the least recently touched session.  The caller
// closes it after releasing r.mu.
func (r *Registry) evictOldestLocked() *Live {
	var (
		oldestID string
		oldest   *Live
		at       time.Time
	)
	for sid, l := range r.sessions {
		if t := l.LastTouched(); oldest == nil || t.Before(at) {
			oldestID, oldest, at = sid, l, t
		}
	}
	if oldest != nil {
		delete(r.sessions, oldestID)
	}
	return oldest
}

// Lookup returns an existing session.
func (r *Registry) Lookup(sid string) (*Live, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.sessions[sid]
	return l, ok
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle since before now-idleTTL and reports how many
// were removed.
func (r *Registry) Sweep(now time.Time) int {
	cutoff := now.Add(-r.idleTTL)
	var stale []*Live
	r.mu.Lock()
	for sid, l := range r.sessions {
		if l.LastTouched().Before(cutoff) {
			stale = append(stale, l)
			delete(r.sessions, sid)
		}
	}
	r.mu.Unlock()
	for _, l := range stale {
		l.Close()
	}
	return len(stale)
}

// Run sweeps on a ticker until ctx is done, then closes every session.
func (r *Registry) Run(ctx context.Context) {
	interval := r.idleTTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case now := <-ticker.C:
			if n := r.Sweep(now); n > 0 && r.deps.Log != nil {
				r.deps.Log.Debugf("explore: evicted %d idle live sessions", n)
			}
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Live)
	r.mu.Unlock()
	for _, l := range all {
		l.Close()
	}
}
