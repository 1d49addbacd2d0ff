package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/teamboard/internal/app"
	"github.com/nhle/teamboard/internal/board"
	"github.com/nhle/teamboard/internal/client"
	"github.com/nhle/teamboard/internal/credential"
	"github.com/nhle/teamboard/internal/model"
	"github.com/nhle/teamboard/internal/store"
)

func boardCmd(opts *globalOptions) *cobra.Command {
	var guest bool

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the terminal project board",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			logFile, err := openLogFile(cfg.Log.File)
			if err != nil {
				return err
			}
			defer logFile.Close()
			logger := newLogger(logFile, cfg.Log.Level)
			slog.SetDefault(logger)

			slot, closeSlot, err := openSlotStore(cfg.Storage, opts.ephemeral)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeSlot(); err != nil {
					logger.Warn("closing board store", "error", err)
				}
			}()

			ctx := cmd.Context()
			b, err := board.Open(ctx, slot, board.WithLogger(logger))
			if err != nil {
				return fmt.Errorf("opening board: %w", err)
			}

			var token string
			if !guest {
				token = loadToken(logger)
			}

			appCfg := app.Config{Board: b, Token: token, Logger: logger}
			if token != "" {
				gw := client.NewClient(cfg.Gateway.URL, token, time.Duration(cfg.Gateway.TimeoutSec)*time.Second)
				appCfg.Syncer = client.NewSessionSyncer(gw, logger)
			}

			p := tea.NewProgram(app.New(appCfg), tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("running board: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&guest, "guest", false, "Ignore any stored credential")
	return cmd
}

// loadToken reads the stored credential. Any failure means guest mode.
func loadToken(logger *slog.Logger) string {
	token, err := credential.NewStore(nil).LoadToken()
	if err != nil {
		if !errors.Is(err, credential.ErrNotFound) {
			logger.Warn("reading stored credential", "error", err)
		}
		return ""
	}
	return token
}

func openSlotStore(cfg model.StorageConfig, ephemeral bool) (store.SlotStore, func() error, error) {
	if ephemeral {
		s := store.NewMemoryStore()
		return s, s.Close, nil
	}
	s, err := openSQLite(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

// syncOnce pushes the session for token to the gateway.
func syncOnce(ctx context.Context, cfg *model.AppConfig, token string, logger *slog.Logger) (client.Session, error) {
	gw := client.NewClient(cfg.Gateway.URL, token, time.Duration(cfg.Gateway.TimeoutSec)*time.Second)
	session, _, err := client.NewSessionSyncer(gw, logger).Sync(ctx, token)
	return session, err
}
