package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/ecoform/internal/form"
	"github.com/ziadkadry99/ecoform/internal/schema"
)

// currentForm renders the fields as text.
func (s *Server) currentForm() string {
	status, _ := s.fields.Get(schema.StatusField)
	return form.FormatString(s.form.Collect(), status)
}

func (s *Server) handleLoadForm(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.form.Load(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	return mcp.NewToolResultText(s.currentForm()), nil
}

func (s *Server) handleFillRandom(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.form.FillRandom(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("random fill failed: %v", err)), nil
	}
	return mcp.NewToolResultText(s.currentForm()), nil
}

func (s *Server) handleResetDefaults(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.form.Reset(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reset failed: %v", err)), nil
	}
	return mcp.NewToolResultText(s.currentForm()), nil
}

func (s *Server) handleShowForm(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch request.GetString("format", "text") {
	case "json":
		data, err := json.MarshalIndent(s.fields.Values(), "", "  ")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	case "request":
		data, err := json.MarshalIndent(s.form.Collect().Request(), "", "  ")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	default:
		return mcp.NewToolResultText(s.currentForm()), nil
	}
}

func (s *Server) handleSetField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := request.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: key"), nil
	}
	value, err := request.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: value"), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.form.Edit(ctx, key, value); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s = %s", key, value)), nil
}

func (s *Server) handleSubmitForm(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.form.Submit(ctx)
	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		return mcp.NewToolResultError(verr.Error()), nil
	case err != nil:
		status, _ := s.fields.Get(schema.StatusField)
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", status, err)), nil
	}

	status, _ := s.fields.Get(schema.StatusField)
	if s.reload != nil && s.reload.Wait(ctx) {
		if _, err := s.form.Load(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("submitted (%s) but reload failed: %v", status, err)), nil
		}
	}
	return mcp.NewToolResultText(status + "\n\n" + s.currentForm()), nil
}
