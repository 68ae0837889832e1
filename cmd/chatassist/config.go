package main

import (
	"fmt"

	"github.com/sandevgo/chatassist/internal/config"
	"github.com/sandevgo/chatassist/internal/service/ui"
	"github.com/sandevgo/chatassist/pkg/env"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Validate and print the effective configuration",
	Long:  `Loads the runtime .env and the process environment, validates the result and prints every non-default setting with secrets masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		cfg, err := config.LoadAppConfig()
		if err != nil {
			return err
		}

		out, err := env.MarshalEnv(masked(cfg))
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, ui.TitleStyle.Render("CONFIGURATION"))
		fmt.Fprintln(w, ui.DescStyle.Render("runtime: "+cfg.GetRuntimePath()))
		fmt.Fprintln(w, ui.DescStyle.Render("model:   "+cfg.GetModel()))
		fmt.Fprintln(w)
		fmt.Fprint(w, out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// masked returns a copy of cfg with credentials obscured.
func masked(cfg *config.AppConfig) *config.AppConfig {
	c := *cfg
	c.AzureAPIKey = mask(c.AzureAPIKey)
	c.OpenAIAPIKey = mask(c.OpenAIAPIKey)
	c.SearchKey = mask(c.SearchKey)
	return &c
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "****" + secret[len(secret)-4:]
}
