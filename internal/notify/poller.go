// Package notify drives the unread-activity badge. Clients poll rather than
// subscribe; the interval bounds how stale the badge can get.
package notify

import (
	"context"
	"sync"
	"time"
)

// Unread is one poll result: how many entries are newer than the last-read
// marker and the timestamp to store once the panel is opened.
type Unread struct {
	Count  int    `json:"count"`
	Latest string `json:"latest,omitempty"`
}

// FetchFunc returns the unread state relative to the given marker.
type FetchFunc func(ctx context.Context, lastRead string) (Unread, error)

// Poller periodically re-fetches unread state. The last-read marker only
// moves forward when MarkRead is called, mirroring a bell that clears when
// the panel opens.
type Poller struct {
	Fetch    FetchFunc
	Interval time.Duration

	mu       sync.Mutex
	lastRead string
	current  Unread
}

const DefaultInterval = 10 * time.Second

// Run polls until the context is cancelled. Results go through OnUpdate if
// set; fetch errors are skipped and retried on the next tick.
func (p *Poller) Run(ctx context.Context, onUpdate func(Unread)) error {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := p.poll(ctx, onUpdate); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Poller) poll(ctx context.Context, onUpdate func(Unread)) error {
	p.mu.Lock()
	marker := p.lastRead
	p.mu.Unlock()
	u, err := p.Fetch(ctx, marker)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.current = u
	p.mu.Unlock()
	if onUpdate != nil {
		onUpdate(u)
	}
	return nil
}

// Current returns the most recent poll result.
func (p *Poller) Current() Unread {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// MarkRead advances the marker to the latest seen timestamp and zeroes the
// badge immediately rather than waiting for the next tick.
func (p *Poller) MarkRead() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current.Latest != "" {
		p.lastRead = p.current.Latest
	}
	p.current.Count = 0
}
