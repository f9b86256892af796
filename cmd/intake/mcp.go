package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/intake/internal/cli"
	"github.com/aretw0/intake/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the agent as an MCP Server so AI assistants can fill the form
on a user's behalf through the send_message and describe_form tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)
		app, err := cli.NewApp(ctx, cfg, cli.Options{})
		if err != nil {
			return err
		}
		srv := mcp.NewServer(app.Dispatcher.Dispatch, app.Form, app.Logger)

		var serveErr error
		switch transport {
		case "stdio":
			app.Logger.Info("Starting intake MCP Server (Stdio)...")
			serveErr = srv.ServeStdio()
		case "sse":
			app.Logger.Info("Starting intake MCP Server (SSE)", "port", port)
			serveErr = srv.ServeSSE(ctx, port)
		default:
			serveErr = fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}

		closeCtx, cancel := shutdownContext()
		defer cancel()
		return errors.Join(serveErr, app.Close(closeCtx))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
