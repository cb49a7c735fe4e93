// Package session persists form values per named session, the way browser
// session storage keeps them per tab.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ziadkadry99/ecoform/internal/db"
)

// Repository is a string key/value store for one session.
type Repository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, key string) error
}

// Compile-time checks.
var (
	_ Repository = (*SQLStore)(nil)
	_ Repository = (*Memory)(nil)
)

// SQLStore keeps one session's values in the session_values table.
type SQLStore struct {
	db      *db.DB
	session string
}

// NewSQLStore returns a store scoped to the given session id.
func NewSQLStore(database *db.DB, sessionID string) *SQLStore {
	return &SQLStore{db: database, session: sessionID}
}

// SessionID returns the session this store is scoped to.
func (s *SQLStore) SessionID() string { return s.session }

// Get returns the stored value for key.
func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_values WHERE session_id = ? AND key = ?`,
		s.session, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, upsertValue, s.session, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

const upsertValue = `INSERT INTO session_values (session_id, key, value, updated_at) VALUES (?, ?, ?, ?)
	ON CONFLICT(session_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// SetMany stores all values in one transaction.
func (s *SQLStore) SetMany(ctx context.Context, values map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for key, value := range values {
		if _, err := tx.ExecContext(ctx, upsertValue, s.session, key, value, now); err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing values: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_values WHERE session_id = ? AND key = ?`, s.session, key)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// All returns every value stored for the session.
func (s *SQLStore) All(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM session_values WHERE session_id = ?`, s.session)
	if err != nil {
		return nil, fmt.Errorf("listing values: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning value: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Clear drops every value of the session.
func (s *SQLStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session_values WHERE session_id = ?`, s.session)
	if err != nil {
		return fmt.Errorf("clearing session %s: %w", s.session, err)
	}
	return nil
}

// Info summarises one stored session.
type Info struct {
	ID        string    `json:"id"`
	Keys      int       `json:"keys"`
	UpdatedAt time.Time `json:"updated_at"`
}

// List returns all sessions with stored values, most recently updated first.
func List(ctx context.Context, database *db.DB) ([]Info, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT session_id, COUNT(*), MAX(updated_at) FROM session_values
		 GROUP BY session_id ORDER BY MAX(updated_at) DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Info
	for rows.Next() {
		var info Info
		var updated string
		if err := rows.Scan(&info.ID, &info.Keys, &updated); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		info.UpdatedAt = parseTime(updated)
		sessions = append(sessions, info)
	}
	return sessions, rows.Err()
}

// parseTime accepts the layouts the sqlite driver writes for DATETIME columns.
func parseTime(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05.999999999-07:00", time.RFC3339Nano, time.DateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Memory is an in-process Repository.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: map[string]string{}}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) SetMany(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Snapshot returns a copy of the stored values.
func (m *Memory) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Keys returns the stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
