// Package server exposes the guarded window tools over the Model Context
// Protocol.
package server

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mj1618/demopilot/internal/config"
	"github.com/mj1618/demopilot/internal/pilot"
	"github.com/mj1618/demopilot/internal/version"
)

// Transports accepted by Serve.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "streamable-http"
)

// Server wraps the MCP server. Every tool call that touches the desktop
// holds mu, so input from concurrent clients never interleaves.
type Server struct {
	// ShotDir is the base directory for run_scenario screenshots. Each run
	// writes into its own timestamped subdirectory. Empty disables them.
	ShotDir string

	mu    sync.Mutex
	pilot *pilot.Pilot
	mcp   *mcpserver.MCPServer
	log   *slog.Logger
}

// New creates a server with all tools registered.
func New(p *pilot.Pilot) *Server {
	s := &Server{pilot: p, log: p.Log}
	s.mcp = mcpserver.NewMCPServer("demopilot", version.Version)
	s.registerTools()
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpserver.MCPServer {
	return s.mcp
}

// SetConfig applies a reloaded configuration between tool calls.
func (s *Server) SetConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.pilot.SetConfig(cfg); err != nil {
		s.log.Error("config reload rejected", "error", err)
		return
	}
	s.log.Info("config reloaded", "policy", s.pilot.Policy().Name())
}

// Serve blocks serving the given transport.
func (s *Server) Serve(transport string, port int) error {
	switch transport {
	case TransportStdio:
		return mcpserver.ServeStdio(s.mcp)
	case TransportHTTP:
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", transport)
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("list_windows",
			mcp.WithDescription("List top-level windows with their safety verdict (forbidden, target, ignored)"),
		),
		s.handleListWindows,
	)

	s.mcp.AddTool(
		mcp.NewTool("classify",
			mcp.WithDescription("Explain how the active safety policy treats a window title"),
			mcp.WithString("title", mcp.Required(), mcp.Description("Window title to classify")),
		),
		s.handleClassify,
	)

	s.mcp.AddTool(
		mcp.NewTool("focus",
			mcp.WithDescription("Find the demo app window, focus it and verify that a forbidden window did not take focus"),
		),
		s.handleFocus,
	)

	s.mcp.AddTool(
		mcp.NewTool("type",
			mcp.WithDescription("Type text into the focused demo window. Refused when the active window is forbidden or unknown."),
			mcp.WithString("text", mcp.Required(), mcp.Description("Text to type")),
			mcp.WithString("field", mcp.Description("Field name for logs; password-like names are redacted")),
			mcp.WithBoolean("refocus", mcp.Description("Run the focus-and-verify loop before typing")),
		),
		s.handleType,
	)

	s.mcp.AddTool(
		mcp.NewTool("key",
			mcp.WithDescription("Send a key combination (e.g. 'Tab', 'Return', 'ctrl+a') to the focused demo window"),
			mcp.WithString("combo", mcp.Required(), mcp.Description("xdotool key combination")),
			mcp.WithString("label", mcp.Description("Human readable label for logs")),
		),
		s.handleKey,
	)

	s.mcp.AddTool(
		mcp.NewTool("click",
			mcp.WithDescription("Click at screen coordinates inside the focused demo window"),
			mcp.WithNumber("x", mcp.Required(), mcp.Description("X coordinate")),
			mcp.WithNumber("y", mcp.Required(), mcp.Description("Y coordinate")),
			mcp.WithString("button", mcp.Description("Mouse button: left, right, middle")),
		),
		s.handleClick,
	)

	s.mcp.AddTool(
		mcp.NewTool("run_scenario",
			mcp.WithDescription("Run a built-in scenario by name, or a YAML list of steps"),
			mcp.WithString("name", mcp.Description("Built-in scenario name (registration, login, profile-setup, swipe, new-user-journey, existing-user-journey)")),
			mcp.WithString("steps", mcp.Description("YAML list of steps; used when name is empty")),
			mcp.WithBoolean("continue_on_error", mcp.Description("Keep running after a failed step")),
		),
		s.handleRunScenario,
	)
}
