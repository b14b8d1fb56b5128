package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/demopilot/internal/output"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{
		"list", "classify", "focus", "type", "key", "click", "wait-window",
		"run", "do", "menu", "launch", "smoke", "seed", "keyring", "web",
		"screenshot", "history", "serve",
	}
	commands := rootCmd.Commands()

	found := make(map[string]bool)
	for _, c := range commands {
		found[c.Name()] = true
	}

	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("root command version should be set")
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "format", "policy", "log-level", "verbose"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected persistent flag %q", name)
		}
	}
}

func TestKeyringCommand_Subcommands(t *testing.T) {
	found := map[string]bool{}
	for _, c := range keyringCmd.Commands() {
		found[c.Name()] = true
	}
	for _, name := range []string{"status", "lock", "unlock", "help-sync"} {
		assert.True(t, found[name], name)
	}
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		cmd      string
		name     string
		flagType string
	}{
		{"list", "targets", "bool"},
		{"type", "text", "string"},
		{"type", "field", "string"},
		{"type", "refocus", "bool"},
		{"key", "label", "string"},
		{"click", "x", "int"},
		{"wait-window", "timeout", "int"},
		{"run", "seed", "int64"},
		{"run", "launch", "bool"},
		{"do", "stop-on-error", "bool"},
		{"smoke", "suite", "stringSlice"},
		{"seed", "file", "string"},
		{"web", "selector", "stringSlice"},
		{"serve", "transport", "string"},
		{"serve", "port", "int"},
		{"history", "limit", "int"},
	}

	for _, tt := range tests {
		c, _, err := rootCmd.Find([]string{tt.cmd})
		require.NoError(t, err, tt.cmd)
		f := c.Flags().Lookup(tt.name)
		if f == nil {
			t.Errorf("%s: expected flag %q not found", tt.cmd, tt.name)
			continue
		}
		if f.Value.Type() != tt.flagType {
			t.Errorf("%s --%s: expected type %q, got %q", tt.cmd, tt.name, tt.flagType, f.Value.Type())
		}
	}
}

func TestSetup_LoadsConfigAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[safety]
policy = "strict"

[typing]
delay_ms = 5
`), 0o600))

	flags := rootCmd.PersistentFlags()
	t.Cleanup(func() {
		_ = flags.Set("config", "")
		_ = flags.Set("policy", "")
		_ = flags.Set("format", "yaml")
		_ = flags.Set("log-level", "")
		output.OutputFormat = output.FormatYAML
	})
	require.NoError(t, flags.Set("config", path))
	require.NoError(t, flags.Set("policy", "permissive"))
	require.NoError(t, flags.Set("format", "json"))
	require.NoError(t, flags.Set("log-level", "error"))

	require.NoError(t, setup(listCmd, nil))
	assert.Equal(t, path, configPath)
	assert.Equal(t, "permissive", cfg.Safety.Policy)
	assert.Equal(t, 5, cfg.Typing.DelayMs)
	assert.Equal(t, output.FormatJSON, output.OutputFormat)
	require.NotNil(t, logger)
}

func TestSetup_RejectsBadFormat(t *testing.T) {
	flags := rootCmd.PersistentFlags()
	t.Cleanup(func() { _ = flags.Set("format", "yaml") })
	require.NoError(t, flags.Set("format", "xml"))
	assert.Error(t, setup(listCmd, nil))
}
