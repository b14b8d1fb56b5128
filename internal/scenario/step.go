// Package scenario parses and runs scripted demo sequences against the
// target window.
package scenario

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Step kinds.
const (
	KindFocus      = "focus"
	KindType       = "type"
	KindKey        = "key"
	KindClick      = "click"
	KindSleep      = "sleep"
	KindWaitWindow = "wait-window"
	KindScreenshot = "screenshot"
	KindLog        = "log"
)

var knownKinds = map[string]bool{
	KindFocus: true, KindType: true, KindKey: true, KindClick: true,
	KindSleep: true, KindWaitWindow: true, KindScreenshot: true, KindLog: true,
}

// Step is one action with its parameters.
type Step struct {
	Kind   string
	Params map[string]interface{}
}

// Parse reads a YAML list of single-key maps:
//
//	- focus:
//	- type: { field: email, text: "anna@example.se" }
//	- key: { combo: Tab, label: "next field" }
func Parse(data []byte) ([]Step, error) {
	var raw []map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML steps: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no steps provided, expected a YAML list of actions")
	}

	steps := make([]Step, 0, len(raw))
	for i, m := range raw {
		n := i + 1
		if len(m) != 1 {
			return nil, fmt.Errorf("step %d: expected exactly one action key, got %d", n, len(m))
		}
		for kind, v := range m {
			if !knownKinds[kind] {
				return nil, fmt.Errorf("step %d: unknown action %q", n, kind)
			}
			params := map[string]interface{}{}
			switch p := v.(type) {
			case nil:
			case map[string]interface{}:
				params = p
			default:
				return nil, fmt.Errorf("step %d: %s parameters must be a map", n, kind)
			}
			steps = append(steps, Step{Kind: kind, Params: params})
		}
	}
	return steps, nil
}

func stringParam(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
		// YAML may decode numbers and booleans.
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

func intParam(params map[string]interface{}, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case int64:
			return int(n)
		}
	}
	return defaultVal
}
