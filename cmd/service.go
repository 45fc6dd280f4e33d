package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/huh/spinner"
	"github.com/mattn/go-isatty"

	"postcraft/internal/app"
	"postcraft/pkg/config"
)

func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyLogLevel(cfg.LogLevel())
	return cfg, nil
}

func loadService(ctx context.Context) (*app.BuildResult, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration (run postcraft setup): %w", err)
	}
	return app.BuildService(ctx, cfg)
}

func interactive() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// withSpinner runs fn behind a spinner on terminals. Info logs are muted
// while it spins so they don't tear the spinner line.
func withSpinner(title string, fn func()) {
	if !interactive() || verbose {
		fn()
		return
	}

	prev := logLevel.Level()
	if prev < slog.LevelWarn {
		logLevel.Set(slog.LevelWarn)
	}
	defer logLevel.Set(prev)

	_ = spinner.New().
		Title(title).
		Action(fn).
		Run()
}
