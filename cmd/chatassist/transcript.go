package main

import (
	"fmt"
	"os"

	"github.com/sandevgo/chatassist/internal/config"
	"github.com/sandevgo/chatassist/internal/service/ui"
	"github.com/sandevgo/chatassist/internal/storage/sqlite"
	"github.com/spf13/cobra"
)

var transcriptLimit int

var transcriptCmd = &cobra.Command{
	Use:   "transcript [session-id]",
	Short: "List archived sessions or print one transcript",
	Args:  cobra.MaximumNArgs(1),
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

		dbPath := cfg.GetDatabasePath()
		if _, err := os.Stat(dbPath); err != nil {
			return fmt.Errorf("no transcript archive at %s (set TRANSCRIPT_ENABLED=true): %w", dbPath, err)
		}

		db, err := sqlite.NewDB(ctx, dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		repo := sqlite.NewTranscriptRepo(db)
		w := cmd.OutOrStdout()

		if len(args) == 0 {
			sessions, err := repo.ListSessions(ctx, transcriptLimit)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, ui.TitleStyle.Render("SESSIONS"))
			for _, s := range sessions {
				fmt.Fprintf(w, "  %s  %s\n", s.SessionID,
					ui.DescStyle.Render(fmt.Sprintf("%d turns, last %s", s.Turns, s.LastTurn.Local().Format("2006-01-02 15:04"))))
			}
			return nil
		}

		turns, err := repo.GetTurns(ctx, args[0], transcriptLimit)
		if err != nil {
			return err
		}
		for _, t := range turns {
			fmt.Fprintf(w, "%s %s\n%s\n\n",
				ui.AssistantStyle.Render(string(t.Role)),
				ui.DescStyle.Render(t.Timestamp.Local().Format("15:04:05")),
				t.Text)
		}
		return nil
	},
}

func init() {
	transcriptCmd.Flags().IntVarP(&transcriptLimit, "limit", "n", 50, "maximum number of rows to print")
	rootCmd.AddCommand(transcriptCmd)
}
