// Package display holds the currently displayed output of a composer host.
//
// The display is last-write-wins: every Show replaces the previous output
// and is broadcast to subscribers. There is no queueing or coalescing.
package display

import (
	"context"
	"sync"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/pthm/composer"
	"github.com/pthm/composer/lib/metrics"
	"github.com/rs/zerolog"
)

// DefaultPlaceholder is shown until the first render command arrives.
const DefaultPlaceholder = "Loading..."

// Update is one displayed output.
type Update struct {
	// Version increases by one with every Show.
	Version uint64
	HTML    string
}

// Display stores the latest rendered output and fans it out to subscribers.
type Display struct {
	mu      sync.RWMutex
	current Update
	subs    map[string]chan Update

	logger  zerolog.Logger
	metrics *metrics.Collector
}

// Option configures a Display.
type Option func(*Display)

// WithLogger sets the display logger.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Display) {
		d.logger = l
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(d *Display) {
		d.metrics = m
	}
}

// New creates a display showing placeholder (escaped as text).
func New(placeholder string, opts ...Option) *Display {
	d := &Display{
		current: Update{HTML: templ.EscapeString(placeholder)},
		subs:    make(map[string]chan Update),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Show renders node and makes it the displayed output. A nil node displays
// nothing. If rendering fails the previous output is kept.
func (d *Display) Show(ctx context.Context, node templ.Component) error {
	html, err := composer.RenderString(ctx, node)
	if err != nil {
		d.logger.Error().Err(err).Msg("render to display failed, keeping previous output")
		return err
	}

	d.mu.Lock()
	d.current = Update{Version: d.current.Version + 1, HTML: html}
	u := d.current
	for _, ch := range d.subs {
		select {
		case ch <- u:
		default:
			// Subscriber is behind; replace its pending update with the latest.
			// Sends only happen under d.mu, so the slot is free after the drain.
			select {
			case <-ch:
			default:
			}
			ch <- u
		}
	}
	d.mu.Unlock()

	d.logger.Debug().Uint64("version", u.Version).Int("bytes", len(u.HTML)).Msg("display updated")
	return nil
}

// Current returns the displayed output.
func (d *Display) Current() Update {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.current
}

// HTML returns the displayed markup.
func (d *Display) HTML() string {
	return d.Current().HTML
}

// Subscribe registers a subscriber. The returned channel holds at most one
// pending update, always the newest. Call cancel to unsubscribe; the
// channel is closed afterwards.
func (d *Display) Subscribe() (id string, updates <-chan Update, cancel func()) {
	id = uuid.New().String()
	ch := make(chan Update, 1)

	d.mu.Lock()
	d.subs[id] = ch
	d.mu.Unlock()
	d.metrics.SubscriberAdded()

	var once sync.Once
	cancel = func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.subs, id)
			close(ch)
			d.mu.Unlock()
			d.metrics.SubscriberRemoved()
		})
	}
	return id, ch, cancel
}

// Subscribers returns the number of subscribers.
func (d *Display) Subscribers() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs)
}
