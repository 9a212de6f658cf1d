package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rahidz/oeismatcher/internal/logging"
	mcpserver "github.com/rahidz/oeismatcher/internal/mcp"
	"github.com/rahidz/oeismatcher/internal/telemetry"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server over stdio",
		Long: `Run the Model Context Protocol server. Register it with an AI client
(Claude Code, Cursor) to let the assistant identify integer sequences:

  claude mcp add oeismatch -- oeismatch mcp

Stdout carries JSON-RPC exclusively; logs go to ~/.oeismatch/logs/mcp.log.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// MCP owns stdout; all logging must go to file only.
			cleanup, err := logging.SetupMCPMode()
			if err != nil {
				return err
			}
			defer cleanup()

			cfg := loadConfig()
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			srv, err := mcpserver.NewServer(st, cfg, cfg.Paths.DB)
			if err != nil {
				return err
			}
			defer func() { _ = srv.Close() }()

			if cfg.Cache.Enabled {
				metrics := telemetry.NewMetrics(nil)
				defer func() { _ = metrics.Close() }()
				srv.SetMetrics(metrics)
			}

			return srv.Serve(cmd.Context(), "stdio")
		},
	}
	return cmd
}
