package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ziadkadry99/ecoform/internal/schema"
)

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments([]string{"time-value=1", " init-eq-2 = 0.3 ", "faks-1-1="})
	if err != nil {
		t.Fatalf("parseAssignments: %v", err)
	}
	want := [][2]string{{"time-value", "1"}, {"init-eq-2", "0.3"}, {"faks-1-1", ""}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("assignment %d = %v, want %v", i, got[i], want[i])
		}
	}

	for _, bad := range []string{"time-value", "=1"} {
		if _, err := parseAssignments([]string{bad}); err == nil {
			t.Errorf("parseAssignments(%q) should fail", bad)
		}
	}
}

// setupCLI writes a config pointing at a fake backend and a temp data dir.
func setupCLI(t *testing.T) string {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/draw_graphics":
			var req schema.Request
			json.NewDecoder(r.Body).Decode(&req)
			json.NewEncoder(w).Encode(map[string]string{"status": schema.Completed, "time_used": req.TimeValue})
		case "/clear_images":
			json.NewEncoder(w).Encode(map[string]string{"status": "Изображения удалены"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(backend.Close)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ".ecoform.yml")
	content := fmt.Sprintf("backend_url: %s\ndata_dir: %s\nreload_delay_ms: 1\n", backend.URL, filepath.Join(dir, "data"))
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return cfgPath
}

func runCLI(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestFormCommands(t *testing.T) {
	cfgPath := setupCLI(t)

	out, err := runCLI(t, cfgPath, "fill")
	if err != nil {
		t.Fatalf("fill: %v\n%s", err, out)
	}
	if !strings.HasPrefix(out, "status: Заполнено случайными значениями (t=") {
		t.Errorf("fill output = %q", out)
	}

	out, err = runCLI(t, cfgPath, "reset")
	if err != nil {
		t.Fatalf("reset: %v\n%s", err, out)
	}
	if !strings.Contains(out, "status: Очищено (значения из документа)") || !strings.Contains(out, "init-eq-3 = 0.9") {
		t.Errorf("reset output = %q", out)
	}

	if out, err = runCLI(t, cfgPath, "set", "init-eq-1", "0.2"); err != nil {
		t.Fatalf("set: %v\n%s", err, out)
	}
	out, err = runCLI(t, cfgPath, "show")
	if err != nil {
		t.Fatalf("show: %v\n%s", err, out)
	}
	if !strings.Contains(out, "init-eq-1 = 0.2") {
		t.Errorf("show did not reflect edit: %q", out)
	}

	_, err = runCLI(t, cfgPath, "set", "init-eq1", "0.2")
	if err == nil || !strings.Contains(err.Error(), `did you mean "init-eq-1"`) {
		t.Errorf("expected suggestion for typo, got %v", err)
	}
}

func TestSubmitCommand(t *testing.T) {
	cfgPath := setupCLI(t)

	if out, err := runCLI(t, cfgPath, "reset"); err != nil {
		t.Fatalf("reset: %v\n%s", err, out)
	}
	if out, err := runCLI(t, cfgPath, "set", "init-eq-2", "5"); err != nil {
		t.Fatalf("set: %v\n%s", err, out)
	}

	_, err := runCLI(t, cfgPath, "submit")
	if err == nil || !strings.Contains(err.Error(), "превышает предел") {
		t.Fatalf("expected validation error, got %v", err)
	}

	out, err := runCLI(t, cfgPath, "submit", "--set", "init-eq-2=0.3", "--set", "time-value=1")
	if err != nil {
		t.Fatalf("submit: %v\n%s", err, out)
	}
	if !strings.HasPrefix(out, "Выполнено (t=1)") {
		t.Errorf("submit output = %q", out)
	}
	// The form is reloaded from the store once the reload delay passes.
	if !strings.Contains(out, "status: Выполнено") || !strings.Contains(out, "time-value = 1") {
		t.Errorf("expected reloaded form, got %q", out)
	}

	out, err = runCLI(t, cfgPath, "history", "--action", "submitted")
	if err != nil {
		t.Fatalf("history: %v\n%s", err, out)
	}
	if !strings.Contains(out, "submitted") {
		t.Errorf("history output = %q", out)
	}

	out, err = runCLI(t, cfgPath, "images")
	if err != nil {
		t.Fatalf("images: %v\n%s", err, out)
	}
	if !strings.Contains(out, "/static/images/figure_eco.png?t=") {
		t.Errorf("images output = %q", out)
	}

	out, err = runCLI(t, cfgPath, "sessions")
	if err != nil {
		t.Fatalf("sessions: %v\n%s", err, out)
	}
	if !strings.Contains(out, "default *") {
		t.Errorf("sessions output = %q", out)
	}

	out, err = runCLI(t, cfgPath, "clear-images")
	if err != nil {
		t.Fatalf("clear-images: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Изображения удалены") {
		t.Errorf("clear-images output = %q", out)
	}
}

func TestHistoryRejectsUnknownAction(t *testing.T) {
	cfgPath := setupCLI(t)
	if _, err := runCLI(t, cfgPath, "history", "--action", "deleted"); err == nil {
		t.Error("expected error for unknown action")
	}
	// Flags keep their values between Execute calls.
	historyCmd.Flags().Set("action", "")
}
