package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizdesk/internal/quiz"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a question set for schema and authoring problems",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := quiz.Load(args[0])
		if err != nil {
			return fmt.Errorf("load question set: %w", err)
		}

		out := cmd.OutOrStdout()
		issues := quiz.Lint(set)
		for _, issue := range issues {
			fmt.Fprintln(out, issue)
		}
		if quiz.HasErrors(issues) {
			return fmt.Errorf("%s: %d issue(s) found", args[0], len(issues))
		}

		title := set.Title
		if title == "" {
			title = args[0]
		}
		fmt.Fprintf(out, "%s: %d questions OK", title, set.Len())
		if len(issues) > 0 {
			fmt.Fprintf(out, " (%d warning(s))", len(issues))
		}
		fmt.Fprintln(out)
		return nil
	},
}
