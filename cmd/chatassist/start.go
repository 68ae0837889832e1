package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/chatassist/pkg/log"
	"github.com/sandevgo/chatassist/pkg/srv"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the web and Telegram front-ends",
	Long:  `Loads the configuration, connects the completion and retrieval providers and serves every enabled front-end until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting chatassist")

		app := NewApp(ctx)
		services := app.Services(ctx)
		if len(services) == len(app.cleanup) {
			logger.Warn().Msg("no front-end enabled, set ENABLE_WEB or ENABLE_TELEGRAM")
		}

		srv.StartServices(ctx, services)

		// Wait for shutdown signal
		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("chatassist has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
