package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type sample struct {
	OK     bool   `yaml:"ok"               json:"ok"`
	Action string `yaml:"action"           json:"action"`
	Window string `yaml:"window,omitempty" json:"window,omitempty"`
}

func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	var buf bytes.Buffer
	old := Stdout
	Stdout = &buf
	defer func() { Stdout = old }()
	if err := fn(); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestPrintYAML(t *testing.T) {
	out := captureStdout(t, func() error {
		return PrintYAML(sample{OK: true, Action: "focus", Window: "DatingApp (Demo)"})
	})

	if strings.Count(out, "\n") <= 1 {
		t.Errorf("YAML output should be multi-line, got:\n%s", out)
	}
	var decoded sample
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.Window != "DatingApp (Demo)" {
		t.Errorf("window: got %q", decoded.Window)
	}
}

func TestPrintJSON_Compact(t *testing.T) {
	out := captureStdout(t, func() error {
		return PrintJSON(sample{OK: true, Action: "type"})
	})
	if strings.Count(out, "\n") > 1 {
		t.Errorf("compact output should be single line, got:\n%s", out)
	}
	var decoded sample
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if _, ok := decodeMap(t, out)["window"]; ok {
		t.Error("empty window should be omitted")
	}
}

func TestPrint_RespectsFormat(t *testing.T) {
	oldFormat, oldPretty := OutputFormat, PrettyOutput
	defer func() { OutputFormat, PrettyOutput = oldFormat, oldPretty }()

	OutputFormat = FormatJSON
	PrettyOutput = true
	out := captureStdout(t, func() error { return Print(sample{Action: "list"}) })
	if strings.Count(out, "\n") <= 1 {
		t.Errorf("pretty JSON should be multi-line, got:\n%s", out)
	}

	OutputFormat = Format("xml")
	var buf bytes.Buffer
	Stdout = &buf
	defer func() { Stdout = nil }()
	if err := Print(sample{}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"", "yaml", "json"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q): %v", s, err)
		}
	}
	if _, err := ParseFormat("agent"); err == nil {
		t.Error("expected error for agent format")
	}
}

func TestConsole_Plain(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true)
	c.Success("focused %s", "DatingApp (Demo)")
	c.Error("blocked")
	c.Header("Smoke test")
	c.Detail("status %d", 200)

	out := buf.String()
	for _, want := range []string{"[ OK ] focused DatingApp (Demo)", "[FAIL] blocked", "Smoke test", "   status 200"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func decodeMap(t *testing.T, s string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatal(err)
	}
	return m
}
