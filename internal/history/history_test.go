package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/ecoform/internal/db"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestRecordAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.Record(ctx, Event{
		ID:        "ev-1",
		SessionID: "tab-1",
		Action:    ActionSubmitted,
		Summary:   "Выполнено (t=0.5)",
		Status:    "Выполнено",
		Payload:   map[string]string{"time-value": "0.5"},
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := store.GetByID(ctx, "ev-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil {
		t.Fatal("expected event, got nil")
	}
	if got.Action != ActionSubmitted || got.SessionID != "tab-1" || got.Status != "Выполнено" {
		t.Errorf("unexpected event: %+v", got)
	}
	if got.Payload["time-value"] != "0.5" {
		t.Errorf("payload = %v", got.Payload)
	}
	if got.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestGetByIDMissing(t *testing.T) {
	store := setupTestStore(t)

	got, err := store.GetByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestQueryFilters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	store.Record(ctx, Event{SessionID: "a", Action: ActionFilled})
	store.Record(ctx, Event{SessionID: "a", Action: ActionSubmitted})
	store.Record(ctx, Event{SessionID: "b", Action: ActionReset})

	all, err := store.Query(ctx, QueryFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}

	sessionA, _ := store.Query(ctx, QueryFilter{SessionID: "a"})
	if len(sessionA) != 2 {
		t.Errorf("expected 2 events for session a, got %d", len(sessionA))
	}

	submitted, _ := store.Query(ctx, QueryFilter{Action: ActionSubmitted})
	if len(submitted) != 1 {
		t.Errorf("expected 1 submitted event, got %d", len(submitted))
	}

	limited, _ := store.Query(ctx, QueryFilter{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("expected 1 event with limit, got %d", len(limited))
	}
	// Newest first: last insert wins the rowid tie-break.
	if limited[0].SessionID != "b" {
		t.Errorf("expected newest event first, got session %q", limited[0].SessionID)
	}
}

func TestDeleteBefore(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	store.Record(ctx, Event{SessionID: "a", Action: ActionFilled, Timestamp: old})
	store.Record(ctx, Event{SessionID: "a", Action: ActionReset})

	n, err := store.DeleteBefore(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d, want 1", n)
	}
}

func TestRecorder(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := store.Recorder("tab-9")
	if err := rec.Record(ctx, ActionRejected, "Cf1", "", nil); err != nil {
		t.Fatalf("Record: %v", err)
	}

	events, _ := store.Query(ctx, QueryFilter{SessionID: "tab-9"})
	if len(events) != 1 || events[0].Action != ActionRejected {
		t.Fatalf("unexpected events: %+v", events)
	}
	if events[0].Payload != nil {
		t.Errorf("empty payload should read back as nil, got %v", events[0].Payload)
	}
}

func TestRoute_Query(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	store.Record(ctx, Event{SessionID: "a", Action: ActionFilled})
	store.Record(ctx, Event{SessionID: "b", Action: ActionFilled})

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	req := httptest.NewRequest("GET", "/api/history/?session_id=a", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var events []Event
	json.Unmarshal(w.Body.Bytes(), &events)
	if len(events) != 1 {
		t.Errorf("expected 1 event, got %d", len(events))
	}
}

func TestRoute_GetNotFound(t *testing.T) {
	store := setupTestStore(t)

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	req := httptest.NewRequest("GET", "/api/history/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestValidAction(t *testing.T) {
	for _, a := range Actions {
		if !ValidAction(a) {
			t.Errorf("ValidAction(%q) = false", a)
		}
	}
	if ValidAction("deleted") {
		t.Error("ValidAction(deleted) = true")
	}
}
