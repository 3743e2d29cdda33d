package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizdesk/internal/app"
	"github.com/abhisek/quizdesk/internal/config"
	"github.com/abhisek/quizdesk/internal/grading"
	"github.com/abhisek/quizdesk/internal/quiz"
	"github.com/abhisek/quizdesk/internal/report"
)

// runApp loads the question set, opens the store, builds dependencies and
// launches the TUI. An empty path plays the built-in sample set.
func runApp(cmd *cobra.Command, path string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyPlayFlags(cmd, &cfg)

	set := quiz.Sample()
	if path != "" {
		if set, err = quiz.Load(path); err != nil {
			return fmt.Errorf("load question set: %w", err)
		}
	}

	st, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	eventRepo := st.EventRepo()
	sinks := []report.Sink{report.StoreSink{Repo: eventRepo}}
	if cfg.ExportDir != "" {
		sinks = append(sinks, report.MarkdownExporter{Dir: cfg.ExportDir})
	}

	opts := app.Options{
		Set:            set,
		Student:        report.Student{ID: cfg.StudentID, Name: cfg.StudentName},
		EventRepo:      eventRepo,
		Emitter:        report.NewEmitter(sinks...),
		GradingTimeout: cfg.GradingTimeout,
		LockOnSelect:   cfg.LockOnSelect,
		GuardGrace:     cfg.GuardGrace,
	}
	if cfg.GradingURL != "" {
		opts.Grader = grading.NewClient(cfg.GradingURL)
	} else {
		fmt.Fprintln(os.Stderr, "Grading service not configured; results are scored locally.")
	}

	return app.Run(opts)
}

// applyPlayFlags lets command flags override configured values.
func applyPlayFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Lookup("name") != nil && flags.Changed("name") {
		cfg.StudentName, _ = flags.GetString("name")
	}
	if flags.Lookup("lock") != nil && flags.Changed("lock") {
		cfg.LockOnSelect, _ = flags.GetBool("lock")
	}
	if flags.Lookup("export-dir") != nil && flags.Changed("export-dir") {
		cfg.ExportDir, _ = flags.GetString("export-dir")
	}
	if flags.Lookup("grading-url") != nil && flags.Changed("grading-url") {
		cfg.GradingURL, _ = flags.GetString("grading-url")
	}
}
