package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sakif/vcard-backend/internal/model"
)

type fakeSessions struct {
	mu     sync.Mutex
	purged int64
	calls  int
	err    error
}

func (f *fakeSessions) Create(context.Context, *model.Session) error { return nil }
func (f *fakeSessions) GetByToken(context.Context, string) (*model.Session, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeSessions) Delete(context.Context, string) error { return nil }

func (f *fakeSessions) DeleteExpired(_ context.Context, _ time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.purged, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewSweeper_RejectsBadSchedule(t *testing.T) {
	_, err := NewSweeper(&fakeSessions{}, "every tuesday at noon", discardLogger())
	if err == nil {
		t.Fatal("NewSweeper accepted a garbage schedule")
	}
}

func TestNewSweeper_AcceptsDescriptorsAndCronSpecs(t *testing.T) {
	for _, schedule := range []string{"@hourly", "@every 1h", "*/5 * * * *"} {
		if _, err := NewSweeper(&fakeSessions{}, schedule, discardLogger()); err != nil {
			t.Errorf("NewSweeper(%q) error = %v", schedule, err)
		}
	}
}

func TestSweeper_SweepCallsDeleteExpired(t *testing.T) {
	sessions := &fakeSessions{purged: 3}
	s, err := NewSweeper(sessions, "@hourly", discardLogger())
	if err != nil {
		t.Fatalf("NewSweeper() error = %v", err)
	}

	// Call the sweep directly; waiting for a cron tick would make the test slow.
	s.sweep()

	sessions.mu.Lock()
	defer sessions.mu.Unlock()
	if sessions.calls != 1 {
		t.Errorf("DeleteExpired called %d times, want 1", sessions.calls)
	}
}

func TestSweeper_SweepErrorIsNotFatal(t *testing.T) {
	sessions := &fakeSessions{err: errors.New("disk on fire")}
	s, err := NewSweeper(sessions, "@hourly", discardLogger())
	if err != nil {
		t.Fatalf("NewSweeper() error = %v", err)
	}

	s.sweep() // must not panic
	s.sweep() // and keeps trying

	sessions.mu.Lock()
	defer sessions.mu.Unlock()
	if sessions.calls != 2 {
		t.Errorf("DeleteExpired called %d times, want 2", sessions.calls)
	}
}

func TestSweeper_StartStop(t *testing.T) {
	s, err := NewSweeper(&fakeSessions{}, "@hourly", discardLogger())
	if err != nil {
		t.Fatalf("NewSweeper() error = %v", err)
	}

	s.Start()
	s.Stop() // must return promptly with no sweep in flight
}
