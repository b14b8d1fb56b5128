package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mj1618/demopilot/internal/config"
	"github.com/mj1618/demopilot/internal/logging"
	"github.com/mj1618/demopilot/internal/output"
	"github.com/mj1618/demopilot/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "demopilot",
	Short: "Drive demo scenarios against a desktop app without typing into your editor",
	Long: `demopilot automates demos of a desktop application on X11. It finds the
demo window by title, focuses it, verifies that focus landed there, and
refuses to send keystrokes when a code editor holds focus.

It also launches the app, smoke-tests and seeds the backend services,
checks the web client, and serves the guarded tools over MCP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	// cfg is the configuration loaded in PersistentPreRunE.
	cfg *config.Config
	// logger is the process logger built from cfg and the global flags.
	logger *logging.Logger
	// configPath is the file cfg was loaded from.
	configPath string
)

// errFailed marks a command that already printed its failure report.
var errFailed = errors.New("run failed")

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	err := rootCmd.Execute()
	if logger != nil {
		logger.Close()
	}
	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("config", "", "Config file (default $XDG_CONFIG_HOME/demopilot/config.toml)")
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().String("policy", "", "Safety policy override: strict, permissive")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Shorthand for --log-level info")
	rootCmd.PersistentPreRunE = setup
}

func setup(cmd *cobra.Command, args []string) error {
	format, _ := rootCmd.PersistentFlags().GetString("format")
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	output.OutputFormat = f
	if prettyFlag := cmd.Flags().Lookup("pretty"); prettyFlag != nil {
		if pretty, err := cmd.Flags().GetBool("pretty"); err == nil && pretty {
			output.PrettyOutput = true
		}
	}

	configPath, _ = rootCmd.PersistentFlags().GetString("config")
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", configPath, err)
	}
	if policy, _ := rootCmd.PersistentFlags().GetString("policy"); policy != "" {
		cfg.Safety.Policy = policy
	}

	level := cfg.Log.Level
	if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
		level = "info"
	}
	if l, _ := rootCmd.PersistentFlags().GetString("log-level"); l != "" {
		level = l
	}
	logger, err = newLogger(cfg.Log, level)
	if err != nil {
		return err
	}
	logging.SetDefault(logger)
	return nil
}

func newLogger(lc config.LogConfig, level string) (*logging.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(lc.Format)
	if err != nil {
		return nil, err
	}
	return logging.New(&logging.Config{
		Level:     lvl,
		Format:    format,
		Output:    lc.Output,
		Component: "demopilot",
	})
}
