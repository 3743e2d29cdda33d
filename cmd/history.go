package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizdesk/internal/report"
	"github.com/abhisek/quizdesk/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List finished quiz sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := openStore(cmd, cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		sessions, err := s.EventRepo().ListSessions(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			return nil
		}

		// Header.
		fmt.Fprintf(out, "%-36s  %-19s  %-20s  %-16s  %-7s  %-6s  %s\n",
			"Session", "Finished", "Quiz", "Student", "Score", "Time", "Status")
		fmt.Fprintln(out, strings.Repeat("─", 120))

		for _, rec := range sessions {
			mark := ""
			if rec.Status == store.ActionEnd && report.Celebrates(rec.Score, rec.TotalQuestions) {
				mark = " ★"
			}
			fmt.Fprintf(out, "%-36s  %-19s  %-20s  %-16s  %-7s  %-6s  %s%s\n",
				rec.SessionID,
				rec.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
				truncate(rec.QuizTitle, 20),
				truncate(rec.Student, 16),
				fmt.Sprintf("%d/%d", rec.Score, rec.TotalQuestions),
				fmt.Sprintf("%d:%02d", rec.DurationSecs/60, rec.DurationSecs%60),
				rec.Status,
				mark,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of sessions to list")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
