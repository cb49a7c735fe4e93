package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/ecoform/internal/compute"
	"github.com/ziadkadry99/ecoform/internal/fields"
	"github.com/ziadkadry99/ecoform/internal/form"
	"github.com/ziadkadry99/ecoform/internal/sampler"
	"github.com/ziadkadry99/ecoform/internal/schema"
	"github.com/ziadkadry99/ecoform/internal/session"
)

// mockComputer implements form.Computer for testing.
type mockComputer struct {
	err   error
	calls int
}

func (m *mockComputer) DrawGraphics(_ context.Context, req schema.Request) (*compute.Response, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &compute.Response{Status: schema.Completed, TimeUsed: req.TimeValue}, nil
}

func newTestServer(t *testing.T, computer *mockComputer) (*Server, *session.Memory) {
	t.Helper()
	store := session.NewMemory()
	f := fields.NewMap()
	reload := &form.PendingReload{}
	sync, err := form.New(form.Options{
		Store:       store,
		Fields:      f,
		Sampler:     sampler.New(rand.New(rand.NewSource(1)), 0),
		Compute:     computer,
		Reloader:    reload,
		ReloadDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("form.New: %v", err)
	}
	return NewServer(sync, f, reload), store
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return text.Text
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		tool     mcp.Tool
		wantName string
	}{
		{loadFormTool, "load_form"},
		{fillRandomTool, "fill_random"},
		{resetDefaultsTool, "reset_defaults"},
		{showFormTool, "show_form"},
		{setFieldTool, "set_field"},
		{submitFormTool, "submit_form"},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv, _ := newTestServer(t, &mockComputer{})
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
}

func TestFillAndShow(t *testing.T) {
	srv, store := newTestServer(t, &mockComputer{})

	result := call(t, srv.handleFillRandom, nil)
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	if !strings.Contains(resultText(t, result), "Заполнено случайными значениями") {
		t.Error("expected random-fill status in output")
	}
	if len(store.Keys()) != len(schema.Keys()) {
		t.Errorf("expected every key stored, got %d", len(store.Keys()))
	}

	result = call(t, srv.handleShowForm, map[string]any{"format": "request"})
	var req schema.Request
	if err := json.Unmarshal([]byte(resultText(t, result)), &req); err != nil {
		t.Fatalf("request format is not JSON: %v", err)
	}
	if len(req.Equations) != schema.EquationSlots {
		t.Errorf("expected %d equation slots, got %d", schema.EquationSlots, len(req.Equations))
	}

	result = call(t, srv.handleShowForm, map[string]any{"format": "json"})
	var values map[string]string
	if err := json.Unmarshal([]byte(resultText(t, result)), &values); err != nil {
		t.Fatalf("json format: %v", err)
	}
	if values[schema.StatusField] == "" {
		t.Error("expected status field in json output")
	}
}

func TestSetField(t *testing.T) {
	srv, store := newTestServer(t, &mockComputer{})

	result := call(t, srv.handleSetField, map[string]any{"key": "init-eq-2", "value": "0.3"})
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	if v, _, _ := store.Get(context.Background(), "init-eq-2"); v != "0.3" {
		t.Errorf("stored value = %q", v)
	}

	result = call(t, srv.handleSetField, map[string]any{"key": "init-eq-7", "value": "0.3"})
	if !result.IsError {
		t.Error("expected error for unknown key")
	}

	result = call(t, srv.handleSetField, map[string]any{"key": "init-eq-2"})
	if !result.IsError {
		t.Error("expected error for missing value")
	}
}

func TestSubmitValidationError(t *testing.T) {
	computer := &mockComputer{}
	srv, _ := newTestServer(t, computer)

	call(t, srv.handleResetDefaults, nil)
	call(t, srv.handleSetField, map[string]any{"key": "init-eq-1", "value": "0.95"})
	call(t, srv.handleSetField, map[string]any{"key": "restrictions-1", "value": "0.5"})

	result := call(t, srv.handleSubmitForm, nil)
	if !result.IsError {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(resultText(t, result), "Cf1") {
		t.Errorf("error should name Cf1: %s", resultText(t, result))
	}
	if computer.calls != 0 {
		t.Error("backend must not be called")
	}
}

func TestSubmitSuccessReloads(t *testing.T) {
	srv, store := newTestServer(t, &mockComputer{})

	call(t, srv.handleResetDefaults, nil)
	result := call(t, srv.handleSubmitForm, nil)
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	text := resultText(t, result)
	if !strings.HasPrefix(text, "Выполнено (t=0.5)") {
		t.Errorf("unexpected output: %s", text)
	}
	// After the reload the status field shows the bare marker.
	if !strings.Contains(text, "status: Выполнено\n") {
		t.Errorf("expected reloaded status, got: %s", text)
	}
	if v, _, _ := store.Get(context.Background(), schema.KeyStatus); v != schema.Completed {
		t.Errorf("marker = %q", v)
	}
}

func TestSubmitTransportError(t *testing.T) {
	srv, _ := newTestServer(t, &mockComputer{err: errors.New("connection refused")})

	call(t, srv.handleResetDefaults, nil)
	result := call(t, srv.handleSubmitForm, nil)
	if !result.IsError {
		t.Fatal("expected transport error")
	}
	if !strings.Contains(resultText(t, result), form.StatusConnError) {
		t.Errorf("expected connection error status: %s", resultText(t, result))
	}
}

func TestLoadForm(t *testing.T) {
	srv, store := newTestServer(t, &mockComputer{})
	ctx := context.Background()
	store.SetMany(ctx, map[string]string{schema.KeyStatus: schema.Completed, "faks-1-1": "0.66"})

	result := call(t, srv.handleLoadForm, nil)
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	if !strings.Contains(resultText(t, result), "faks-1-1 = 0.66") {
		t.Errorf("expected restored value: %s", resultText(t, result))
	}
}
