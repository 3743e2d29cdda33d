package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizdesk/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve session reports over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.ServerAddress, _ = cmd.Flags().GetString("addr")
		}
		origins, _ := cmd.Flags().GetStringSlice("allow-origin")
		quiet, _ := cmd.Flags().GetBool("quiet")

		s, err := openStore(cmd, cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		h := api.NewRouter(s.EventRepo(), api.Options{
			AllowedOrigins: origins,
			RequestLogging: !quiet,
		})
		fmt.Fprintf(cmd.ErrOrStderr(), "Serving reports on %s\n", cfg.ServerAddress)
		return api.Serve(ctx, cfg.ServerAddress, h, cfg.ShutdownTimeout)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides QUIZDESK_ADDR, default :8080)")
	serveCmd.Flags().StringSlice("allow-origin", nil, "Allowed CORS origin (repeatable, default any)")
	serveCmd.Flags().Bool("quiet", false, "Disable request logging")
}
