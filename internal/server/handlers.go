package server

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/demopilot/internal/capture"
	"github.com/mj1618/demopilot/internal/focus"
	"github.com/mj1618/demopilot/internal/model"
	"github.com/mj1618/demopilot/internal/platform"
	"github.com/mj1618/demopilot/internal/scenario"
)

// ActionResult is the response of the input tools.
type ActionResult struct {
	OK      bool                `yaml:"ok"                json:"ok"`
	Action  string              `yaml:"action"            json:"action"`
	Error   string              `yaml:"error,omitempty"   json:"error,omitempty"`
	Blocked bool                `yaml:"blocked,omitempty" json:"blocked,omitempty"`
	Active  string              `yaml:"active,omitempty"  json:"active,omitempty"`
	Focus   *model.FocusAttempt `yaml:"focus,omitempty"   json:"focus,omitempty"`
}

// toText serializes v to YAML for the MCP response.
func toText(v interface{}) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}

func respond(v interface{}, ok bool) *mcp.CallToolResult {
	if !ok {
		return mcp.NewToolResultError(toText(v))
	}
	return mcp.NewToolResultText(toText(v))
}

// inputHandler runs fn under the desktop lock and shapes the result.
func (s *Server) inputHandler(ctx context.Context, action string, fn func(context.Context) error) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := ActionResult{Action: action}
	if err := fn(ctx); err != nil {
		res.Error = err.Error()
		res.Blocked = errors.Is(err, focus.ErrSafetyBlock)
		return respond(res, false), nil
	}
	res.OK = true
	return respond(res, true), nil
}

func (s *Server) handleListWindows(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	windows := focus.Discover(ctx, s.pilot.Provider.WindowManager, s.log)
	return mcp.NewToolResultText(toText(focus.Classify(windows, s.pilot.Policy()))), nil
}

func (s *Server) handleClassify(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := stringArg(request.GetArguments(), "title", "")
	if title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}
	return mcp.NewToolResultText(toText(s.pilot.Policy().Classify(title))), nil
}

func (s *Server) handleFocus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt, err := s.pilot.Acquirer().Acquire(ctx, s.pilot.Session)
	res := ActionResult{Action: "focus", Focus: &attempt, Active: attempt.ActiveTitle}
	if err != nil {
		res.Error = err.Error()
		res.Blocked = errors.Is(err, focus.ErrSafetyBlock)
		return respond(res, false), nil
	}
	res.OK = true
	return respond(res, true), nil
}

func (s *Server) handleType(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	text := stringArg(params, "text", "")
	field := stringArg(params, "field", "text")
	refocus := boolArg(params, "refocus", false)
	if text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}
	return s.inputHandler(ctx, "type", func(ctx context.Context) error {
		g := s.pilot.Guard()
		if refocus {
			if _, err := g.Refocus(ctx); err != nil {
				return err
			}
		}
		return g.TypeText(ctx, field, text)
	})
}

func (s *Server) handleKey(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	combo := stringArg(params, "combo", "")
	if combo == "" {
		return mcp.NewToolResultError("combo is required"), nil
	}
	label := stringArg(params, "label", "")
	return s.inputHandler(ctx, "key", func(ctx context.Context) error {
		return s.pilot.Guard().SendKey(ctx, label, combo)
	})
}

func (s *Server) handleClick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	x, y := intArg(params, "x", -1), intArg(params, "y", -1)
	if x < 0 || y < 0 {
		return mcp.NewToolResultError("x and y are required"), nil
	}
	btn, err := platform.ParseMouseButton(stringArg(params, "button", "left"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.inputHandler(ctx, "click", func(ctx context.Context) error {
		return s.pilot.Guard().Click(ctx, x, y, btn)
	})
}

func (s *Server) handleRunScenario(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	name := stringArg(params, "name", "")
	raw := stringArg(params, "steps", "")
	cont := boolArg(params, "continue_on_error", false)

	var (
		steps []scenario.Step
		err   error
	)
	switch {
	case name != "":
		steps, err = scenario.Builtin(name, scenario.NewData(rand.New(rand.NewSource(time.Now().UnixNano()))))
	case raw != "":
		name = "inline"
		steps, err = scenario.Parse([]byte(raw))
	default:
		err = errors.New("name or steps is required")
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	shotDir := ""
	if s.ShotDir != "" {
		shotDir, err = capture.SessionDir(s.ShotDir, time.Now())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	rep := s.pilot.Runner(shotDir, !cont).Run(ctx, name, steps)
	return respond(rep, rep.OK), nil
}

func stringArg(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return defaultVal
}

func intArg(params map[string]interface{}, key string, defaultVal int) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return defaultVal
}

func boolArg(params map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return defaultVal
}
