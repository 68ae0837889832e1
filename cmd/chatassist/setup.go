package main

import (
	"github.com/sandevgo/chatassist/internal/config"
	"github.com/sandevgo/chatassist/internal/service/installer"
	"github.com/sandevgo/chatassist/pkg/log"
	"github.com/spf13/cobra"
)

var overwriteEnv bool

var setupCmd = &cobra.Command{
	Use:           "setup",
	Short:         "Create the runtime .env with an interactive wizard",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		runtimePath := config.GetRuntimePath()
		logger.Info().Str("path", runtimePath).Msg("starting setup")

		if _, err := installer.RunWizard(runtimePath, overwriteEnv); err != nil {
			return err
		}

		// Validate the result the same way start would.
		if err := initEnv(ctx, runtimePath); err != nil {
			return err
		}
		if _, err := config.LoadAppConfig(); err != nil {
			return err
		}

		logger.Info().Msgf("initialized runtime directory at: %s", runtimePath)
		logger.Info().Msg("Setup complete! Run 'chatassist start' or 'chatassist chat'.")
		return nil
	},
}

func init() {
	setupCmd.Flags().BoolVar(&overwriteEnv, "force", false, "overwrite an existing .env")
	rootCmd.AddCommand(setupCmd)
}
