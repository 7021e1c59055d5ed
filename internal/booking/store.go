package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps dialogs between requests.  Load reports false for a dialog
// that was never saved, was deleted or has expired.
type Store interface {
	Load(ctx context.Context, sid string, activityID int64) (Dialog, bool, error)
	Save(ctx context.Context, d Dialog) error
	Delete(ctx context.Context, sid string, activityID int64) error
}

// RedisStore keeps dialogs as JSON strings that expire after ttl.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(sid string, activityID int64) string {
	return s.prefix + ":" + sid + ":" + strconv.FormatInt(activityID, 10)
}

func (s *RedisStore) Load(ctx context.Context, sid string, activityID int64) (Dialog, bool, error) {
	raw, err := s.rdb.Get(ctx, s.key(sid, activityID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Dialog{}, false, nil
	}
	if err != nil {
		return Dialog{}, false, fmt.Errorf("load dialog: %w", err)
	}
	var d Dialog
	if err := json.Unmarshal(raw, &d); err != nil {
		return Dialog{}, false, fmt.Errorf("decode dialog: %w", err)
	}
	return d, true, nil
}

func (s *RedisStore) Save(ctx context.Context, d Dialog) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key(d.SessionID, d.ActivityID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save dialog: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sid string, activityID int64) error {
	return s.rdb.Del(ctx, s.key(sid, activityID)).Err()
}

// MemoryStore is the single-process fallback used without Redis.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	dialogs map[string]memEntry
}

type memEntry struct {
	d       Dialog
	expires time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, dialogs: make(map[string]memEntry)}
}

func memKey(sid string, activityID int64) string {
	return sid + ":" + strconv.FormatInt(activityID, 10)
}

func (s *MemoryStore) Load(_ context.Context, sid string, activityID int64) (Dialog, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := memKey(sid, activityID)
	e, ok := s.dialogs[k]
	if !ok {
		return Dialog{}, false, nil
	}
	if s.ttl > 0 && s.now().After(e.expires) {
		delete(s.dialogs, k)
		return Dialog{}, false, nil
	}
	return e.d, true, nil
}

func (s *MemoryStore) Save(_ context.Context, d Dialog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialogs[memKey(d.SessionID, d.ActivityID)] = memEntry{d: d, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sid string, activityID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dialogs, memKey(sid, activityID))
	return nil
}
