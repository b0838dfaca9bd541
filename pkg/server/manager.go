package server

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/whisker/pkg/usecase/session"
	"github.com/m-mizutani/whisker/pkg/utils/logging"
)

const (
	DefaultSessionTTL   = 30 * time.Minute
	defaultReapInterval = time.Minute
	minimumReapInterval = time.Second
)

// ErrManagerClosed is returned by Acquire once the manager is shutting down
var ErrManagerClosed = goerr.New("session manager is closed")

// ControllerFactory creates the controller of a new browser session
type ControllerFactory func() *session.Controller

type sessionEntry struct {
	ctrl     *session.Controller
	cancel   context.CancelFunc
	lastSeen time.Time
	conns    int
}

// Manager keeps one session controller per browser and stops the ones that
// have not been used for longer than the TTL.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	factory  ControllerFactory
	ttl      time.Duration
	now      func() time.Time
	closed   bool
	wg       sync.WaitGroup
}

type ManagerOption func(*Manager)

// WithSessionTTL sets how long an unused session is kept
func WithSessionTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithManagerClock replaces time.Now
func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a session manager
func NewManager(factory ControllerFactory, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions: make(map[string]*sessionEntry),
		factory:  factory,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire returns the controller of session id, starting a new one if needed.
// The controller outlives ctx; it is stopped by Reap or Close.
func (m *Manager) Acquire(ctx context.Context, id string) (*session.Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, goerr.Wrap(ErrManagerClosed, "session not available", goerr.V("session_id", id))
	}

	if e, ok := m.sessions[id]; ok {
		e.lastSeen = m.now()
		return e.ctrl, nil
	}

	logger := logging.From(ctx).With("session_id", id)
	runCtx, cancel := context.WithCancel(logging.With(context.WithoutCancel(ctx), logger))

	ctrl := m.factory()
	m.sessions[id] = &sessionEntry{
		ctrl:     ctrl,
		cancel:   cancel,
		lastSeen: m.now(),
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := ctrl.Run(runCtx); err != nil {
			logger.Error("Session controller failed", "error", err)
		}
	}()

	logger.Info("Session started", "sessions", len(m.sessions))
	return ctrl, nil
}

// Touch marks session id as used
func (m *Manager) Touch(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.sessions[id]; ok {
		e.lastSeen = m.now()
	}
}

// Attach keeps session id alive until the returned release function is
// called. Used for the lifetime of a WebSocket connection.
func (m *Manager) Attach(id string) (release func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return func() {}
	}
	e.conns++
	e.lastSeen = m.now()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			e.conns--
			e.lastSeen = m.now()
		})
	}
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Reap stops sessions idle for longer than the TTL and returns how many were stopped
func (m *Manager) Reap(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var reaped int
	for id, e := range m.sessions {
		if e.conns > 0 || now.Sub(e.lastSeen) <= m.ttl {
			continue
		}
		e.cancel()
		delete(m.sessions, id)
		reaped++
		logging.From(ctx).Info("Session expired", "session_id", id, "idle", now.Sub(e.lastSeen))
	}

	return reaped
}

// Run reaps expired sessions periodically until ctx is canceled, then stops
// every remaining session.
func (m *Manager) Run(ctx context.Context) error {
	interval := max(min(m.ttl/2, defaultReapInterval), minimumReapInterval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Close()
			return nil
		case <-ticker.C:
			if n := m.Reap(ctx); n > 0 {
				logging.From(ctx).Debug("Reaped sessions", "count", n, "remaining", m.Len())
			}
		}
	}
}

// Close stops all sessions and waits for their controllers to exit
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	for id, e := range m.sessions {
		e.cancel()
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	m.wg.Wait()
}
