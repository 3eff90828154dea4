// mcpchat TUI - A terminal chat client for MCP-enabled LLM backends.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/mcpchat-tui/internal/backend"
	"github.com/jeranaias/mcpchat-tui/internal/config"
	"github.com/jeranaias/mcpchat-tui/internal/session"
	"github.com/jeranaias/mcpchat-tui/internal/state"
	"github.com/jeranaias/mcpchat-tui/internal/storage"
	"github.com/jeranaias/mcpchat-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "print version and exit")
		configPath  = flag.String("config", "", "path to config file (default ~/.mcpchat/config.toml)")
		backendURL  = flag.String("backend", "", "backend base URL (overrides config)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("mcpchat %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if err := run(*configPath, *backendURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, backendURL string) error {
	if configPath == "" {
		var err error
		configPath, err = config.DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to resolve config path: %w", err)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if backendURL != "" {
		cfg.Backend.BaseURL = backendURL
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, logFile, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger.Info().
		Str("version", Version).
		Str("backend", cfg.Backend.BaseURL).
		Msg("starting")

	storagePath, err := cfg.StoragePath()
	if err != nil {
		return fmt.Errorf("failed to resolve storage path: %w", err)
	}
	records, err := storage.Open(storagePath, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer records.Close()

	store, err := state.NewStore(records, logger)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	client := backend.NewClient(cfg.Backend.BaseURL, logger)
	sessions := session.NewManager(client, logger)
	view := chat.New(store, sessions, client, cfg, logger)

	// Config edits on disk apply live where they safely can: log level
	// now, everything else on next start.
	watcher, err := config.Watch(configPath, logger, func(next *config.Config) {
		if lvl, perr := zerolog.ParseLevel(next.Log.Level); perr == nil {
			zerolog.SetGlobalLevel(lvl)
			logger.Info().Str("level", next.Log.Level).Msg("log level updated")
		}
	})
	if err != nil {
		logger.Warn().Err(err).Msg("config watching unavailable")
	} else {
		defer watcher.Close()
	}

	p := tea.NewProgram(view, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI crashed: %w", err)
	}
	logger.Info().Msg("shutdown")
	return nil
}

// openLogger builds the file-backed zerolog logger. Logging goes to a
// file, never the terminal: stdout belongs to the TUI.
func openLogger(cfg *config.Config) (zerolog.Logger, *os.File, error) {
	path, err := cfg.LogFile()
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to resolve log path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(f).With().Timestamp().Logger()
	return logger, f, nil
}
