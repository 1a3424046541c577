// Package sessions hosts calculator engines behind the HTTP API, one per
// session, and forwards their completed calculations to history.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/observability"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// DefaultLimit caps the number of live sessions when no limit is configured.
const DefaultLimit = 1000

type session struct {
	mu      sync.Mutex
	engine  *calculator.Engine
	pending []calculator.Calculation

	// lastUsed is unix nanoseconds, readable without holding mu.
	lastUsed atomic.Int64
}

func (s *session) touch(t time.Time) {
	s.lastUsed.Store(t.UnixNano())
}

func (s *session) idleSince(cutoff time.Time) bool {
	return s.lastUsed.Load() < cutoff.UnixNano()
}

// Manager owns the live sessions. Actions on one session are serialised;
// different sessions proceed independently.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*session
	recorder calculator.Recorder
	limit    int
	now      func() time.Time
}

// NewManager returns a Manager forwarding calculations to recorder, which may
// be nil.
func NewManager(recorder calculator.Recorder, limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{
		sessions: make(map[string]*session),
		recorder: recorder,
		limit:    limit,
		now:      time.Now,
	}
}

// Create starts a new session and returns its id and initial state.
func (m *Manager) Create(ctx context.Context) (string, calculator.State, error) {
	s := &session{}
	s.touch(m.now())
	s.engine = calculator.NewEngine(calculator.WithCalculationHandler(func(c calculator.Calculation) {
		s.pending = append(s.pending, c)
	}))

	m.mu.Lock()
	if len(m.sessions) >= m.limit {
		m.mu.Unlock()
		return "", calculator.State{}, fmt.Errorf("%w: limit %d", ErrTooManySessions, m.limit)
	}
	id := uuid.New().String()
	m.sessions[id] = s
	m.mu.Unlock()

	activeSessions.Inc()
	observability.LoggerWithTrace(ctx).Debug("session created", zap.String("session_id", id))

	return id, s.engine.Snapshot(), nil
}

// Get returns the current state of a session.
func (m *Manager) Get(id string) (calculator.State, error) {
	s, err := m.lookup(id)
	if err != nil {
		return calculator.State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot(), nil
}

// Apply dispatches actions in order and returns the resulting state together
// with the calculations they completed. Completed calculations are recorded
// before Apply returns; a recording failure is returned after the state has
// already advanced.
func (m *Manager) Apply(ctx context.Context, id string, actions ...calculator.Action) (calculator.State, []calculator.Calculation, error) {
	s, err := m.lookup(id)
	if err != nil {
		return calculator.State{}, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range actions {
		s.engine.Dispatch(a)
	}
	s.touch(m.now())

	calcs := s.pending
	s.pending = nil
	state := s.engine.Snapshot()

	if m.recorder != nil {
		for _, c := range calcs {
			if err := m.recorder.Record(ctx, c); err != nil {
				return state, calcs, fmt.Errorf("session %s: %w", id, err)
			}
		}
	}

	return state, calcs, nil
}

// Delete ends a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(m.sessions, id)
	activeSessions.Dec()
	return nil
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Evict removes sessions idle for longer than idle and returns how many were
// removed. It never waits on a session that is busy applying actions.
func (m *Manager) Evict(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.RLock()
	var stale []string
	for id, s := range m.sessions {
		if s.idleSince(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	if len(stale) == 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for _, id := range stale {
		// Re-check: the session may have been used since the scan.
		if s, ok := m.sessions[id]; ok && s.idleSince(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	activeSessions.Sub(float64(removed))
	return removed
}

// Run evicts idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Evict(idle); n > 0 {
				observability.Logger.Info("evicted idle sessions",
					zap.Int("count", n),
					zap.Duration("idle", idle),
				)
			}
		}
	}
}

func (m *Manager) lookup(id string) (*session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}
