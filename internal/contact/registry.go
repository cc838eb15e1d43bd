package contact

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DukeRupert/contactform/internal/metrics"
)

// DefaultIdleTTL is how long an untouched form instance is kept.
const DefaultIdleTTL = 30 * time.Minute

// Registry tracks form instances by id so each browser keeps its own state
// and in-flight guard across requests.
type Registry struct {
	opts   FormOptions
	ttl    time.Duration
	logger *slog.Logger

	mu    sync.Mutex
	forms map[string]*Form

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRegistry creates a registry whose forms share opts, and starts the
// eviction loop. Call Close to stop it.
func NewRegistry(opts FormOptions, ttl time.Duration, logger *slog.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	r := &Registry{
		opts:   opts,
		ttl:    ttl,
		logger: logger,
		forms:  make(map[string]*Form),
		stop:   make(chan struct{}),
	}

	go r.cleanup()

	return r
}

// Get returns the form for id, if tracked.
func (r *Registry) Get(id string) (*Form, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.forms[id]
	return f, ok
}

// Acquire returns the form for id, creating one when id is unknown or not a
// valid instance id. The returned form's ID may differ from id.
func (r *Registry) Acquire(id string) *Form {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.forms[id]; ok {
		return f
	}

	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	f := NewForm(id, r.opts)
	r.forms[id] = f
	metrics.FormsActive.Set(float64(len(r.forms)))
	return f
}

// Len returns the number of tracked forms.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forms)
}

// Evict drops forms idle for longer than the TTL and returns how many went.
func (r *Registry) Evict(now time.Time) int {
	cutoff := now.Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, f := range r.forms {
		if f.idleSince(cutoff) {
			f.Close()
			delete(r.forms, id)
			evicted++
		}
	}
	metrics.FormsActive.Set(float64(len(r.forms)))
	return evicted
}

// cleanup periodically evicts idle forms to bound memory.
func (r *Registry) cleanup() {
	interval := r.ttl / 2
	if interval <= 0 {
		interval = r.ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case now := <-ticker.C:
			if n := r.Evict(now); n > 0 {
				r.logger.Debug("evicted idle contact forms", "count", n, "remaining", r.Len())
			}
		}
	}
}

// Close stops the eviction loop and every pending auto reset.
func (r *Registry) Close() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.forms {
		f.Close()
	}
}
