package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizdesk/internal/report"
	"github.com/abhisek/quizdesk/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report <session-id>",
	Short: "Print the markdown report of a finished session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("out")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := openStore(cmd, cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		repo := s.EventRepo()
		rec, err := repo.GetSession(ctx, args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("session %s not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		answers, err := repo.SessionAnswers(ctx, args[0])
		if err != nil {
			return fmt.Errorf("get answers: %w", err)
		}

		o := report.FromRecords(*rec, answers)
		if outPath == "" {
			return report.RenderMarkdown(cmd.OutOrStdout(), o)
		}

		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		if err := report.RenderMarkdown(f, o); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
}

func init() {
	reportCmd.Flags().StringP("out", "o", "", "Write the report to this file instead of stdout")
}
