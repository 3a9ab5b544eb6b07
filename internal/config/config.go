// Package config reads server settings from flags with environment
// fallbacks. Flags win over the environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jaminalder/tictactoe/internal/ai"
)

// Config holds everything cmd/tictactoe needs to start.
type Config struct {
	Addr        string
	DataDir     string
	DatabaseURL string
	LogLevel    string
	AIDelay     time.Duration
	Difficulty  string
	IdleTimeout time.Duration
	Seed        uint64
}

// Default mirrors the browser game's defaults (easy AI, 500ms reply delay).
func Default() Config {
	return Config{
		Addr:        ":8080",
		DataDir:     "./data",
		LogLevel:    "info",
		AIDelay:     500 * time.Millisecond,
		Difficulty:  "easy",
		IdleTimeout: 2 * time.Hour,
	}
}

// Load parses args on top of environment values on top of Default.
func Load(args []string, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Default()
	if v := getenv("TTT_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := getenv("TTT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := getenv("TTT_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := getenv("TTT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("TTT_DIFFICULTY"); v != "" {
		cfg.Difficulty = v
	}
	if v := getenv("TTT_AI_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("TTT_AI_DELAY: %w", err)
		}
		cfg.AIDelay = d
	}

	fs := flag.NewFlagSet("tictactoe", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for stats.json (ignored with -database-url)")
	fs.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "postgres DSN for statistics and history")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug|info|warn|error")
	fs.DurationVar(&cfg.AIDelay, "ai-delay", cfg.AIDelay, "pause before the computer replies")
	fs.StringVar(&cfg.Difficulty, "difficulty", cfg.Difficulty, "default difficulty: easy|medium|hard")
	fs.DurationVar(&cfg.IdleTimeout, "idle-timeout", cfg.IdleTimeout, "drop games idle for longer than this")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for the computer player (0: time based)")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.AIDelay < 0 {
		errs = append(errs, errors.New("ai-delay must not be negative"))
	}
	if c.IdleTimeout <= 0 {
		errs = append(errs, errors.New("idle-timeout must be positive"))
	}
	if c.DatabaseURL == "" && strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("either data-dir or database-url is required"))
	}
	return errors.Join(errs...)
}

// DefaultDifficulty parses Difficulty; unknown values are Easy.
func (c Config) DefaultDifficulty() ai.Difficulty {
	return ai.ParseDifficulty(c.Difficulty)
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
