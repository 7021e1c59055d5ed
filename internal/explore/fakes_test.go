package explore

import (
	"context"
	"io"
	"sync"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/mock"

	"github.com/mabarin/mabarin-web/internal/mabarin"
	"github.com/mabarin/mabarin-web/internal/model"
)

func quietLogger() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}

// mockDirectory is a testify mock of DirectorySource.
type mockDirectory struct{ mock.Mock }

func (m *mockDirectory) Categories(ctx context.Context) ([]model.SportCategory, error) {
	args := m.Called(ctx)
	cats, _ := args.Get(0).([]model.SportCategory)
	return cats, args.Error(1)
}

func (m *mockDirectory) Provinces(ctx context.Context) ([]model.Province, error) {
	args := m.Called(ctx)
	provs, _ := args.Get(0).([]model.Province)
	return provs, args.Error(1)
}

func (m *mockDirectory) Cities(ctx context.Context, provinceID int64) ([]model.City, error) {
	args := m.Called(ctx, provinceID)
	cities, _ := args.Get(0).([]model.City)
	return cities, args.Error(1)
}

// recordingSource answers ListActivities from a fixed catalogue and keeps
// every query it saw.
type recordingSource struct {
	mu      sync.Mutex
	items   []model.SportActivity
	err     error
	queries []mabarin.ActivityQuery
}

func (s *recordingSource) ListActivities(_ context.Context, q mabarin.ActivityQuery) (mabarin.ActivityPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	if s.err != nil {
		return mabarin.ActivityPage{}, s.err
	}
	return mabarin.ActivityPage{Items: append([]model.SportActivity(nil), s.items...), Total: len(s.items), LastPage: 1}, nil
}

func (s *recordingSource) seen() []mabarin.ActivityQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mabarin.ActivityQuery(nil), s.queries...)
}

func activity(id int64, title, date, start, end string) model.SportActivity {
	return model.SportActivity{ID: id, Title: title, ActivityDate: date, StartTime: start, EndTime: end, Slot: 10}
}
