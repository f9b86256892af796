package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/intake/internal/cli"
	"github.com/aretw0/intake/internal/logging"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Chat with the agent in the terminal",
	Long: `Runs a local chat session on stdin/stdout. Operator notifications are
printed to stderr unless BOT_TOKEN and OPERATOR_CHAT_ID are set.
Type a number to pick a quick reply, or q to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		opts := cli.Options{}
		if !cmd.Flags().Changed("log-level") && cfg.LogFile == "" {
			// Keep the chat readable: only the file logger or an explicit
			// level gets log output.
			opts.Logger = logging.NewNop()
		}
		app, err := cli.NewApp(ctx, cfg, opts)
		if err != nil {
			return err
		}

		runErr := cli.RunConsole(ctx, app.Dispatcher.Dispatch, os.Stdin, os.Stdout, cli.ConsoleOptions{
			Interactive: cli.IsTerminal(os.Stdin) && cli.IsTerminal(os.Stdout),
			Sender:      cli.LocalSender(),
		})

		closeCtx, cancel := shutdownContext()
		defer cancel()
		return errors.Join(runErr, app.Close(closeCtx))
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}
