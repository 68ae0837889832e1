package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sandevgo/chatassist/internal/transport/cli"
	"github.com/sandevgo/chatassist/pkg/log"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		app := NewApp(ctx)
		defer app.Close(ctx)

		repl, err := cli.NewReadLine(app.agent, app.router, app.cfg)
		if err != nil {
			return err
		}
		defer repl.Shutdown(context.WithoutCancel(ctx))

		log.FromCtx(ctx).Debug().Str("model", app.cfg.GetModel()).Msg("terminal chat started")
		return repl.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
