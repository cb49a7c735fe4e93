package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/ecoform/internal/db"
)

// Store provides persistence for form events.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record inserts a new event. If event.ID is empty a UUID is generated.
func (s *Store) Record(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload := event.Payload
	if payload == nil {
		payload = map[string]string{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO form_events (id, timestamp, session_id, action, summary, status, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Timestamp.UTC().Format(time.DateTime),
		event.SessionID,
		string(event.Action),
		event.Summary,
		event.Status,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("inserting form event: %w", err)
	}
	return nil
}

// GetByID retrieves a single event. It returns nil, nil when none exists.
func (s *Store) GetByID(ctx context.Context, id string) (*Event, error) {
	row := s.db.QueryRowContext(ctx, selectEvents+" WHERE id = ?", id)
	e, err := scanInto(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting form event: %w", err)
	}
	return e, nil
}

// QueryFilter controls which events are returned by Query.
type QueryFilter struct {
	SessionID string
	Action    Action
	Since     *time.Time
	Limit     int
	Offset    int
}

// Query returns events matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, string(filter.Action))
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}

	query := selectEvents
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying form events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanInto(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning form event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// DeleteBefore removes all events older than the given time.
// Returns the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM form_events WHERE timestamp < ?",
		before.UTC().Format(time.DateTime),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old form events: %w", err)
	}
	return res.RowsAffected()
}

const selectEvents = `SELECT id, timestamp, session_id, action, summary, status, payload FROM form_events`

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Event, error) {
	var (
		e           Event
		ts, action  string
		payloadJSON string
	)
	if err := sc.Scan(&e.ID, &ts, &e.SessionID, &action, &e.Summary, &e.Status, &payloadJSON); err != nil {
		return nil, err
	}
	e.Action = Action(action)

	if t, err := time.Parse(time.DateTime, ts); err == nil {
		e.Timestamp = t
	} else if t, err := time.Parse(time.RFC3339, ts); err == nil {
		e.Timestamp = t
	}

	if err := json.Unmarshal([]byte(payloadJSON), &e.Payload); err != nil || len(e.Payload) == 0 {
		e.Payload = nil
	}
	return &e, nil
}

// Recorder records events for one session. It satisfies the form package's
// history hook.
type Recorder struct {
	store     *Store
	sessionID string
}

// Recorder returns a Recorder writing events for sessionID.
func (s *Store) Recorder(sessionID string) *Recorder {
	return &Recorder{store: s, sessionID: sessionID}
}

// Record stores an event for the recorder's session.
func (r *Recorder) Record(ctx context.Context, action Action, summary, status string, payload map[string]string) error {
	return r.store.Record(ctx, Event{
		SessionID: r.sessionID,
		Action:    action,
		Summary:   summary,
		Status:    status,
		Payload:   payload,
	})
}
