package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/helpcar/quotechat/internal/cli"
	"github.com/helpcar/quotechat/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the wizard as MCP tools (start, answer, report_location, view, compose,
close) so that an AI agent can fill in a quote request on a motorist's behalf.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Logs go to Stderr.
- sse: Uses Server-Sent Events over HTTP on --port.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		if cmd.Flags().Changed("port") {
			cfg.MCP.Port, _ = cmd.Flags().GetInt("port")
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		engine, cleanup, err := cli.NewEngine(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		srv := mcp.NewServer(engine.Sessions, engine.Bundle,
			mcp.WithLogger(logger),
			mcp.WithSettleTimeout(cfg.MCP.Settle),
		)

		switch transport {
		case "stdio":
			logger.Info("Starting QuoteChat MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			port := cfg.MCP.Port
			if port == 0 {
				port = 8081
			}
			logger.Info("Starting QuoteChat MCP Server (SSE)", "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport %q, supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
