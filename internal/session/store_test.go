package session

import (
	"context"
	"testing"

	"github.com/ziadkadry99/ecoform/internal/db"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestSQLStoreSetGetDelete(t *testing.T) {
	store := NewSQLStore(setupTestDB(t), "tab-1")
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "faks-1-1"); err != nil || ok {
		t.Fatalf("Get on empty store = (%v, %v), want (false, nil)", ok, err)
	}

	if err := store.Set(ctx, "faks-1-1", "0.42"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, "faks-1-1", "0.43"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	v, ok, err := store.Get(ctx, "faks-1-1")
	if err != nil || !ok || v != "0.43" {
		t.Fatalf("Get = (%q, %v, %v), want (0.43, true, nil)", v, ok, err)
	}

	if err := store.Delete(ctx, "faks-1-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "faks-1-1"); ok {
		t.Error("expected key to be gone after Delete")
	}
	if err := store.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestSQLStoreSessionsAreIsolated(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	a := NewSQLStore(database, "a")
	b := NewSQLStore(database, "b")

	a.Set(ctx, "status", "Выполнено")
	if _, ok, _ := b.Get(ctx, "status"); ok {
		t.Error("session b should not see session a's values")
	}
}

func TestSQLStoreSetManyAndAll(t *testing.T) {
	store := NewSQLStore(setupTestDB(t), "s")
	ctx := context.Background()

	values := map[string]string{"init-eq-1": "0.5", "restrictions-1": "0.9", "time-value": "0.25"}
	if err := store.SetMany(ctx, values); err != nil {
		t.Fatalf("SetMany: %v", err)
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 values, got %d", len(all))
	}
	for k, v := range values {
		if all[k] != v {
			t.Errorf("%s = %q, want %q", k, all[k], v)
		}
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	all, _ = store.All(ctx)
	if len(all) != 0 {
		t.Errorf("expected empty session after Clear, got %d values", len(all))
	}
}

func TestList(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	NewSQLStore(database, "one").SetMany(ctx, map[string]string{"a": "1", "b": "2"})
	NewSQLStore(database, "two").Set(ctx, "a", "1")

	sessions, err := List(ctx, database)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	counts := map[string]int{}
	for _, s := range sessions {
		counts[s.ID] = s.Keys
		if s.UpdatedAt.IsZero() {
			t.Errorf("session %s has zero UpdatedAt", s.ID)
		}
	}
	if counts["one"] != 2 || counts["two"] != 1 {
		t.Errorf("unexpected key counts: %v", counts)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.SetMany(ctx, map[string]string{"b": "2", "a": "1"})
	m.Set(ctx, "c", "3")
	m.Delete(ctx, "b")

	if v, ok, _ := m.Get(ctx, "a"); !ok || v != "1" {
		t.Errorf("Get(a) = (%q, %v)", v, ok)
	}
	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "c" {
		t.Errorf("Keys() = %v, want [a c]", keys)
	}

	snap := m.Snapshot()
	snap["a"] = "changed"
	if v, _, _ := m.Get(ctx, "a"); v != "1" {
		t.Error("Snapshot should return a copy")
	}
}
