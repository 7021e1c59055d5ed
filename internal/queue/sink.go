package queue

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mabarin/mabarin-web/internal/model"
)

// FileSink appends one human-readable line per event.  It is used when no
// audit database is configured.
type FileSink struct {
	path string
	mu   sync.Mutex
}

func NewFileSink(path string) *FileSink { return &FileSink{path: path} }

func (s *FileSink) Record(_ context.Context, e model.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(e)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders e as a single log line ending in a newline.
func FormatLine(e model.AuditEntry) string {
	return fmt.Sprintf("[%s] %s | session=%s | user=%q | activity_id=%d | transaction_id=%s | payment_method_id=%d | %s\n",
		e.OccurredAt.UTC().Format(time.RFC3339), e.Event, e.SessionID, e.UserEmail,
		e.ActivityID, e.TransactionID, e.PaymentMethodID, e.Detail)
}
