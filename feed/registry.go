package feed

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"interaction-service/gesture"
)

const DefaultSessionTTL = 30 * time.Minute

type RegistryConfig struct {
	DoubleTapWindow time.Duration
	SessionTTL      time.Duration
	Logger          *zap.Logger
	// OnResize is called with the number of open sessions after it changes.
	OnResize func(open int)
	// OnEvict is called for every session that leaves the registry, whether
	// closed by the viewer or swept as idle. It runs with the registry locked.
	OnEvict func(viewerID uuid.UUID)
}

// Registry owns the feed sessions of all connected viewers. A session lives
// until it is closed or has been idle longer than the session TTL.
type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	window   time.Duration
	ttl      time.Duration
	logger   *zap.Logger
	onResize func(int)
	onEvict  func(uuid.UUID)
	now      func() time.Time
}

func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.DoubleTapWindow <= 0 {
		cfg.DoubleTapWindow = gesture.DefaultDoubleTapWindow
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.OnResize == nil {
		cfg.OnResize = func(int) {}
	}
	if cfg.OnEvict == nil {
		cfg.OnEvict = func(uuid.UUID) {}
	}

	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		window:   cfg.DoubleTapWindow,
		ttl:      cfg.SessionTTL,
		logger:   cfg.Logger,
		onResize: cfg.OnResize,
		onEvict:  cfg.OnEvict,
		now:      time.Now,
	}
}

// Open returns the viewer's session, creating it on first use. Reopening
// keeps the existing session so pending taps still pair across re-renders.
func (r *Registry) Open(viewerID uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[viewerID]; ok {
		return s, false
	}

	s := newSession(viewerID, r.window, r.now)
	r.sessions[viewerID] = s
	r.onResize(len(r.sessions))
	return s, true
}

func (r *Registry) Get(viewerID uuid.UUID) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[viewerID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *Registry) Close(viewerID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[viewerID]; !ok {
		return false
	}
	delete(r.sessions, viewerID)
	r.onEvict(viewerID)
	r.onResize(len(r.sessions))
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle longer than the TTL and returns how many it closed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	evicted := 0
	for viewerID, s := range r.sessions {
		if s.idleFor(now) > r.ttl {
			delete(r.sessions, viewerID)
			r.onEvict(viewerID)
			evicted++
		}
	}
	if evicted > 0 {
		r.onResize(len(r.sessions))
	}
	return evicted
}

// Run sweeps idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = r.ttl / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Debug("evicted idle feed sessions", zap.Int("count", n), zap.Int("open", r.Len()))
			}
		}
	}
}
