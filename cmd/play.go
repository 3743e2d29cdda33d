package cmd

import (
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play [file]",
	Short: "Play a question set (the built-in sample when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		if len(args) == 1 {
			path = args[0]
		}
		return runApp(cmd, path)
	},
}

func init() {
	playCmd.Flags().StringP("file", "f", "", "Question set file (.json, .yaml or .yml)")
	playCmd.Flags().String("name", "", "Student name (overrides QUIZDESK_STUDENT_NAME)")
	playCmd.Flags().Bool("lock", false, "Make the first selection for each question final")
	playCmd.Flags().String("export-dir", "", "Write a markdown report of each finished session to this directory")
	playCmd.Flags().String("grading-url", "", "Submit results to this grading service")
}
