package form

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ziadkadry99/ecoform/internal/fields"
)

// DefaultIdleTimeout is how long an unused session stays in memory.
const DefaultIdleTimeout = 30 * time.Minute

// Builder creates the Synchronizer for one session around its fields.
type Builder func(sessionID string, f fields.Fields) (*Synchronizer, error)

// Manager keeps one Synchronizer and field set per session and serialises
// operations within a session. Sessions idle for longer than the idle
// timeout are dropped by Sweep; their stored values stay in the store.
type Manager struct {
	build Builder
	idle  time.Duration
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	mu       sync.Mutex
	sync     *Synchronizer
	fields   *fields.Map
	hydrated bool
	evicted  bool
	lastUsed time.Time
}

// NewManager returns a Manager that creates sessions with build. idle <= 0
// selects DefaultIdleTimeout.
func NewManager(build Builder, idle time.Duration) *Manager {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Manager{build: build, idle: idle, now: time.Now, sessions: map[string]*entry{}}
}

// Do runs fn with the session's Synchronizer and fields, creating them on
// first use and filling the fields from the store. Calls for the same
// session never overlap.
func (m *Manager) Do(ctx context.Context, sessionID string, fn func(s *Synchronizer, f *fields.Map) error) error {
	for {
		e, err := m.get(sessionID)
		if err != nil {
			return err
		}
		e.mu.Lock()
		if e.evicted {
			// Swept between get and Lock; take the replacement.
			e.mu.Unlock()
			continue
		}
		err = m.run(ctx, e, fn)
		e.mu.Unlock()
		return err
	}
}

// run is called with e.mu held.
func (m *Manager) run(ctx context.Context, e *entry, fn func(s *Synchronizer, f *fields.Map) error) error {
	defer func() { e.lastUsed = m.now() }()
	if !e.hydrated {
		if err := e.sync.Hydrate(ctx); err != nil {
			return fmt.Errorf("restoring session: %w", err)
		}
		e.hydrated = true
	}
	return fn(e.sync, e.fields)
}

func (m *Manager) get(sessionID string) (*entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.sessions[sessionID]; ok {
		return e, nil
	}
	f := fields.NewMap()
	s, err := m.build(sessionID, f)
	if err != nil {
		return nil, fmt.Errorf("creating session %s: %w", sessionID, err)
	}
	e := &entry{sync: s, fields: f, lastUsed: m.now()}
	m.sessions[sessionID] = e
	return e, nil
}

// Sweep drops sessions unused for longer than the idle timeout and reports
// how many it dropped. Sessions with an operation in flight are kept.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.idle)
	dropped := 0
	for id, e := range m.sessions {
		if !e.mu.TryLock() {
			continue
		}
		if e.lastUsed.Before(cutoff) {
			e.evicted = true
			delete(m.sessions, id)
			dropped++
		}
		e.mu.Unlock()
	}
	return dropped
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			m.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

// Len reports how many sessions are held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
