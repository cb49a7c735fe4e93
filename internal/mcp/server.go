package mcp

import (
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/ecoform/internal/fields"
	"github.com/ziadkadry99/ecoform/internal/form"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that lets an agent drive one form session.
type Server struct {
	mu     sync.Mutex
	form   *form.Synchronizer
	fields *fields.Map
	reload *form.PendingReload
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server around a session's synchronizer. reload
// must be the Reloader the synchronizer was built with.
func NewServer(synchronizer *form.Synchronizer, f *fields.Map, reload *form.PendingReload) *Server {
	s := &Server{
		form:   synchronizer,
		fields: f,
		reload: reload,
	}

	s.mcp = server.NewMCPServer(
		"ecoform",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(loadFormTool, s.handleLoadForm)
	s.mcp.AddTool(fillRandomTool, s.handleFillRandom)
	s.mcp.AddTool(resetDefaultsTool, s.handleResetDefaults)
	s.mcp.AddTool(showFormTool, s.handleShowForm)
	s.mcp.AddTool(setFieldTool, s.handleSetField)
	s.mcp.AddTool(submitFormTool, s.handleSubmitForm)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
