package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/aretw0/intake/internal/cli"
	"github.com/aretw0/intake/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the agent on Telegram and/or HTTP",
	Long: `Starts the agent with the selected transports:

- telegram (default): long-polls the Bot API with BOT_TOKEN.
- http: JSON messages, websocket chat, SSE events, health and metrics.
- both: runs the two side by side over the same sessions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		useTelegram, useHTTP, err := cli.ParseTransport(transport)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.HTTPAddr, _ = cmd.Flags().GetString("addr")
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		app, err := cli.NewApp(ctx, cfg, cli.Options{
			Requirements: config.Requirements{Telegram: useTelegram, Notifier: useTelegram},
		})
		if err != nil {
			return err
		}

		app.Logger.Info("intake started", "transport", transport, "ledger", cfg.LedgerBackend, "fields", len(app.Form.Fields))
		serveErr := app.Serve(ctx, useTelegram, useHTTP, cfg.HTTPAddr)
		if sig := ctx.Signal(); sig != nil {
			app.Logger.Info("shutdown signal received", "signal", sig.String())
		}

		// In-flight submissions finish on a fresh context.
		closeCtx, cancel := shutdownContext()
		defer cancel()
		return errors.Join(serveErr, app.Close(closeCtx))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", cli.TransportTelegram, "Transport: telegram, http or both")
	serveCmd.Flags().String("addr", ":8080", "HTTP listen address (overrides HTTP_ADDR)")
}
