// Package config reads quizdesk settings from QUIZDESK_* environment
// variables and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings shared by the CLI commands.
type Config struct {
	// DBPath overrides the event store location. Empty means
	// store.DefaultDBPath.
	DBPath string

	// StudentID and StudentName identify the learner to the grading service.
	StudentID   string
	StudentName string

	// Session behavior.
	LockOnSelect bool
	GuardGrace   time.Duration

	// GradingURL enables server-graded submission when set.
	GradingURL     string
	GradingTimeout time.Duration

	// ExportDir enables markdown export of finished sessions when set.
	ExportDir string

	// Report API.
	ServerAddress   string
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		GuardGrace:      100 * time.Millisecond,
		GradingTimeout:  15 * time.Second,
		ServerAddress:   ":8080",
		ShutdownTimeout: 5 * time.Second,
	}
}

// Load reads the given .env files (".env" when none are named) into the
// environment, then builds a Config from it. Missing .env files are ignored;
// existing variables win over file contents.
func Load(files ...string) (Config, error) {
	_ = godotenv.Load(files...)
	return FromEnv()
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for unset values.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	cfg.DBPath = os.Getenv("QUIZDESK_DB")
	cfg.StudentID = os.Getenv("QUIZDESK_STUDENT_ID")
	cfg.StudentName = os.Getenv("QUIZDESK_STUDENT_NAME")
	cfg.GradingURL = os.Getenv("QUIZDESK_GRADING_URL")
	cfg.ExportDir = os.Getenv("QUIZDESK_EXPORT_DIR")

	if a := os.Getenv("QUIZDESK_ADDR"); a != "" {
		cfg.ServerAddress = a
	}

	var err error
	if cfg.LockOnSelect, err = getBool("QUIZDESK_LOCK_ON_SELECT", cfg.LockOnSelect); err != nil {
		return cfg, err
	}
	if cfg.GuardGrace, err = getDuration("QUIZDESK_GUARD_GRACE", cfg.GuardGrace); err != nil {
		return cfg, err
	}
	if cfg.GuardGrace >= time.Second {
		return cfg, fmt.Errorf("config: QUIZDESK_GUARD_GRACE=%s must be shorter than one countdown tick (1s)", cfg.GuardGrace)
	}
	if cfg.GradingTimeout, err = getDuration("QUIZDESK_GRADING_TIMEOUT", cfg.GradingTimeout); err != nil {
		return cfg, err
	}
	if cfg.ShutdownTimeout, err = getDuration("QUIZDESK_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func getBool(k string, fallback bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("config: %s=%q is not a valid boolean", k, v)
	}
	return b, nil
}

func getDuration(k string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("config: %s=%q is not a valid duration: %w", k, v, err)
	}
	if d <= 0 {
		return fallback, fmt.Errorf("config: %s=%q must be positive", k, v)
	}
	return d, nil
}
