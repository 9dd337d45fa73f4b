package notify_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shamskabra/AlraedSecurityTaskG/internal/notify"
)

func TestPollerUpdatesAndMarkRead(t *testing.T) {
	var calls atomic.Int64
	p := &notify.Poller{
		Interval: 5 * time.Millisecond,
		Fetch: func(ctx context.Context, lastRead string) (notify.Unread, error) {
			calls.Add(1)
			if lastRead == "2024-01-01T00:00:05Z" {
				return notify.Unread{Count: 0, Latest: lastRead}, nil
			}
			return notify.Unread{Count: 3, Latest: "2024-01-01T00:00:05Z"}, nil
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := make(chan notify.Unread, 16)
	go func() {
		_ = p.Run(ctx, func(u notify.Unread) { updates <- u })
	}()

	select {
	case u := <-updates:
		if u.Count != 3 {
			t.Fatalf("expected 3 unread, got %+v", u)
		}
	case <-time.After(time.Second):
		t.Fatal("no update before deadline")
	}

	p.MarkRead()
	if got := p.Current(); got.Count != 0 {
		t.Fatalf("expected badge cleared, got %+v", got)
	}

	// After the marker moved, later polls report nothing unread.
	deadline := time.After(time.Second)
	for {
		select {
		case u := <-updates:
			if u.Latest == "2024-01-01T00:00:05Z" && u.Count == 0 {
				if calls.Load() < 2 {
					t.Fatalf("expected repeated polls")
				}
				return
			}
		case <-deadline:
			t.Fatal("poller never converged after MarkRead")
		}
	}
}

func TestPollerStopsOnCancel(t *testing.T) {
	p := &notify.Poller{
		Interval: time.Millisecond,
		Fetch: func(ctx context.Context, lastRead string) (notify.Unread, error) {
			return notify.Unread{}, nil
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, nil) }()
	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}
