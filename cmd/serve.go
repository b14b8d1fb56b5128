package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/demopilot/internal/config"
	"github.com/mj1618/demopilot/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing the guarded window tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes the guarded
tools (list_windows, classify, focus, type, key, click, run_scenario).
Tool calls are serialized; typing is refused in forbidden windows exactly
as on the command line. Edits to the config file are picked up without a
restart.

Supported transports:
  stdio             Standard I/O (default, for local MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  demopilot serve
  demopilot serve --transport streamable-http --port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", server.TransportStdio, "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().Bool("screenshots", false, "Save run_scenario screenshots to the capture directory")
	serveCmd.Flags().Bool("no-watch", false, "Do not reload the config file on change")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	shots, _ := cmd.Flags().GetBool("screenshots")
	noWatch, _ := cmd.Flags().GetBool("no-watch")

	p, err := newPilot()
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	srv := server.New(p)
	if shots {
		srv.ShotDir = cfg.Capture.Dir
	}

	ctx, stop := commandContext(cmd)
	defer stop()

	if !noWatch {
		policy, _ := rootCmd.PersistentFlags().GetString("policy")
		loader, err := config.NewLoader(configPath)
		if err != nil {
			return err
		}
		defer loader.Close()
		loader.OnChange(func(c *config.Config) {
			if policy != "" {
				c.Safety.Policy = policy
			}
			srv.SetConfig(c)
		})
		if err := loader.Watch(ctx); err != nil {
			logger.Warn("config hot reload disabled", "path", configPath, "error", err)
		} else {
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case err := <-loader.Errors():
						logger.Warn("config reload failed", "error", err)
					}
				}
			}()
		}
	}

	logger.Info("mcp server starting", "transport", transport, "policy", p.Policy().Name())
	return srv.Serve(transport, port)
}
