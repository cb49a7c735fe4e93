package fields

import (
	"testing"

	"github.com/ziadkadry99/ecoform/internal/schema"
)

func TestMapGetSet(t *testing.T) {
	m := NewMap()

	if v, ok := m.Get("faks-1-1"); !ok || v != "" {
		t.Errorf("Get(faks-1-1) = (%q, %v), want (\"\", true)", v, ok)
	}
	m.Set("faks-1-1", "0.3")
	if v, _ := m.Get("faks-1-1"); v != "0.3" {
		t.Errorf("Get after Set = %q", v)
	}

	if _, ok := m.Get(schema.StatusField); !ok {
		t.Error("status field should be rendered")
	}
}

func TestMapIgnoresUnknownIDs(t *testing.T) {
	m := NewMapWithIDs("init-eq-1")

	m.Set("init-eq-2", "0.5")
	if _, ok := m.Get("init-eq-2"); ok {
		t.Error("unrendered field should report ok=false")
	}
	if len(m.Values()) != 1 {
		t.Errorf("Values() = %v", m.Values())
	}
}

func TestMapLoad(t *testing.T) {
	m := NewMap()
	m.Load(map[string]string{"time-value": "0.75", "bogus": "1"})

	vals := m.Values()
	if vals["time-value"] != "0.75" {
		t.Errorf("time-value = %q", vals["time-value"])
	}
	if _, ok := vals["bogus"]; ok {
		t.Error("unknown ids should not be loaded")
	}
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"faks-1-3", "faks-1-1"},
		{"init-eq1", "init-eq-1"},
		{"restriction-2", "restrictions-2"},
		{"time_value", "time-value"},
		{"zzz", ""},
	}
	for _, tt := range tests {
		if got := Suggest(tt.input); got != tt.want {
			t.Errorf("Suggest(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
