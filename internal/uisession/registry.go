// Package uisession keeps one dropdown coordinator per rendered page.
//
// A page session starts when a page is rendered and ends when the browser
// unloads it or it sits idle past the timeout. Page sessions are process
// local: a page always talks to the instance that rendered it.
package uisession

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/adapter/metrics"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/dropdown"
)

// Page is one rendered page and the coordinator installed at its root.
type Page struct {
	ID        string
	Name      string
	Dropdowns *dropdown.Manager

	mu       sync.Mutex
	lastSeen time.Time
	done     chan struct{}
	closed   bool
	stop     func()
}

// Done is closed when the page session ends.
func (p *Page) Done() <-chan struct{} {
	return p.done
}

// Context installs the page's coordinator into ctx.
func (p *Page) Context(ctx context.Context) context.Context {
	return dropdown.WithManager(ctx, p.Dropdowns)
}

func (p *Page) touch(now time.Time) {
	p.mu.Lock()
	p.lastSeen = now
	p.mu.Unlock()
}

func (p *Page) idleSince() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

func (p *Page) end() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.stop()
	close(p.done)
}

type Registry struct {
	mu    sync.Mutex
	pages map[string]*Page

	idle    time.Duration
	clock   clockwork.Clock
	metrics *metrics.UIMetrics
}

type Option func(*Registry)

func WithClock(clock clockwork.Clock) Option {
	return func(r *Registry) { r.clock = clock }
}

func WithMetrics(m *metrics.UIMetrics) Option {
	return func(r *Registry) { r.metrics = m }
}

func NewRegistry(idleTimeout time.Duration, opts ...Option) *Registry {
	r := &Registry{
		pages: make(map[string]*Page),
		idle:  idleTimeout,
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open starts a page session with a fresh coordinator.
func (r *Registry) Open(name string) *Page {
	m := dropdown.New()
	p := &Page{
		ID:        uuid.NewString(),
		Name:      name,
		Dropdowns: m,
		lastSeen:  r.clock.Now(),
		done:      make(chan struct{}),
		stop:      func() {},
	}
	if r.metrics != nil {
		p.stop = m.Subscribe(r.countChange)
	}

	r.mu.Lock()
	r.pages[p.ID] = p
	n := len(r.pages)
	r.mu.Unlock()

	r.setGauge(n)
	return p
}

func (r *Registry) countChange(c dropdown.Change) {
	kind := "opened"
	switch {
	case c.Superseded():
		kind = "superseded"
	case c.Current == "":
		kind = "closed"
	}
	r.metrics.DropdownChanges.WithLabelValues(kind).Inc()
}

// Get returns the page session and marks it as seen.
func (r *Registry) Get(id string) (*Page, bool) {
	r.mu.Lock()
	p, ok := r.pages[id]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	p.touch(r.clock.Now())
	return p, true
}

// Close ends the page session. It reports false for unknown ids.
func (r *Registry) Close(id string) bool {
	return r.remove(id, "closed")
}

func (r *Registry) remove(id, reason string) bool {
	r.mu.Lock()
	p, ok := r.pages[id]
	if ok {
		delete(r.pages, id)
	}
	n := len(r.pages)
	r.mu.Unlock()

	if !ok {
		return false
	}
	p.end()
	r.setGauge(n)
	if r.metrics != nil {
		r.metrics.PageSessionsEnded.WithLabelValues(reason).Inc()
	}
	return true
}

// EvictIdle ends every page session not seen within the idle timeout and
// returns how many were ended.
func (r *Registry) EvictIdle() int {
	cutoff := r.clock.Now().Add(-r.idle)

	r.mu.Lock()
	var stale []string
	for id, p := range r.pages {
		if p.idleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	r.mu.Unlock()

	evicted := 0
	for _, id := range stale {
		if r.remove(id, "idle") {
			evicted++
		}
	}
	return evicted
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

// Run evicts idle page sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := r.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if n := r.EvictIdle(); n > 0 {
				slog.Debug("Evicted idle page sessions", "count", n, "remaining", r.Len())
			}
		}
	}
}

// CloseAll ends every page session, e.g. on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.pages))
	for id := range r.pages {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.remove(id, "shutdown")
	}
}

func (r *Registry) setGauge(n int) {
	if r.metrics != nil {
		r.metrics.PageSessions.Set(float64(n))
	}
}
