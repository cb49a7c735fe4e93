package images

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/ecoform/internal/form"
	"github.com/ziadkadry99/ecoform/internal/schema"
)

func fixedChecker(dir string) *Checker {
	c := NewChecker(dir, "")
	c.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return c
}

func TestCheckNotCompleted(t *testing.T) {
	reports, err := fixedChecker("").Check("")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(reports) != len(Pages) {
		t.Fatalf("expected %d reports, got %d", len(Pages), len(reports))
	}
	for i, r := range reports {
		if r.Available {
			t.Errorf("%s: expected unavailable", r.Page)
		}
		if r.Message != Pages[i].Unavailable {
			t.Errorf("%s: message = %q", r.Page, r.Message)
		}
		if len(r.Images) != 0 {
			t.Errorf("%s: expected no images", r.Page)
		}
	}
}

func TestCheckCompletedAddsCacheBuster(t *testing.T) {
	reports, err := fixedChecker("").Check(schema.Completed)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	graphic := reports[0]
	if !graphic.Available || len(graphic.Images) != 1 {
		t.Fatalf("unexpected graphic report: %+v", graphic)
	}
	want := "/static/images/figure_eco.png?t=1700000000123"
	if graphic.Images[0].URL != want {
		t.Errorf("URL = %q, want %q", graphic.Images[0].URL, want)
	}
	if n := len(reports[2].Images); n != 5 {
		t.Errorf("expected 5 diagrams, got %d", n)
	}
}

func TestCheckFlagsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"figure_eco.png", "diagram_eco.png", "diagram_eco3.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("png"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	c := fixedChecker(dir)
	found, err := c.Discover()
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(found) != 3 {
		t.Errorf("expected 3 discovered files, got %v", found)
	}

	reports, err := c.Check(schema.Completed)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if reports[0].Images[0].Missing {
		t.Error("figure_eco.png should be present")
	}
	dist := reports[1].Images[0]
	if !dist.Missing || dist.URL != "" || dist.Message != "Ошибка загрузки графика" {
		t.Errorf("disturbances should be missing: %+v", dist)
	}

	var missing int
	for _, img := range reports[2].Images {
		if img.Missing {
			missing++
		}
	}
	if missing != 3 {
		t.Errorf("expected 3 missing diagrams, got %d", missing)
	}
}

func TestDiscoverWithoutDir(t *testing.T) {
	found, err := NewChecker("", "").Discover()
	if err != nil || found != nil {
		t.Errorf("Discover() = %v, %v", found, err)
	}
}

func TestRoute_Images(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "figure_eco.png"), []byte("png-bytes"), 0o644)

	r := chi.NewRouter()
	RegisterRoutes(r, NewChecker(dir, ""), dir, func(_ context.Context, id string) (string, error) {
		if id == "done" {
			return schema.Completed, nil
		}
		return "", nil
	})

	req := httptest.NewRequest("GET", "/api/images", nil)
	req.Header.Set(form.SessionHeader, "done")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var reports []Report
	json.Unmarshal(w.Body.Bytes(), &reports)
	if len(reports) != 3 || !reports[0].Available {
		t.Errorf("unexpected reports: %+v", reports)
	}

	req = httptest.NewRequest("GET", "/static/images/figure_eco.png", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "png-bytes" {
		t.Errorf("static file: %d %q", w.Code, w.Body.String())
	}
}
