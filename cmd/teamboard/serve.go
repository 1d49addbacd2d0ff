package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/nhle/teamboard/internal/gateway"
	"github.com/nhle/teamboard/internal/identity"
	"github.com/nhle/teamboard/internal/model"
	"github.com/nhle/teamboard/internal/store"
	"github.com/nhle/teamboard/internal/store/mongo"
)

func serveCmd(opts *globalOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the identity sync gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}

			logger := newLogger(os.Stderr, cfg.Log.Level)
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runGateway(ctx, cfg, opts.ephemeral, logger)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (overrides config and $PORT)")
	return cmd
}

func runGateway(ctx context.Context, cfg *model.AppConfig, ephemeral bool, logger *slog.Logger) error {
	verifier, err := newVerifier(cfg.Auth, logger)
	if err != nil {
		return err
	}

	users, closeUsers, err := openUserStore(ctx, cfg.Storage, ephemeral, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeUsers(); err != nil {
			logger.Warn("closing user store", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := gateway.NewMetrics(reg)

	service := gateway.NewService(users, metrics, logger)
	handler := gateway.NewHandler(service, verifier, gateway.HandlerConfig{
		AllowedOrigin: cfg.Server.AllowedOrigin,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
		Gatherer:      reg,
		Metrics:       metrics,
	}, logger)

	srv := gateway.NewServer(
		":"+strconv.Itoa(cfg.Server.Port),
		handler.Routes(),
		time.Duration(cfg.Server.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.Server.WriteTimeoutSec)*time.Second,
		logger,
	)
	return srv.Run(ctx)
}

// newVerifier picks RS256 when a public key is configured, HS256 otherwise.
func newVerifier(cfg model.AuthConfig, logger *slog.Logger) (identity.Verifier, error) {
	var vopts []identity.VerifierOption
	if cfg.Issuer != "" {
		vopts = append(vopts, identity.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		vopts = append(vopts, identity.WithAudience(cfg.Audience))
	}

	if cfg.PublicKeyPath != "" {
		v, err := identity.NewRSAVerifierFromFile(cfg.PublicKeyPath, vopts...)
		if err != nil {
			return nil, fmt.Errorf("loading public key: %w", err)
		}
		logger.Info("verifying RS256 credentials", "public_key", cfg.PublicKeyPath)
		return v, nil
	}

	secret, err := resolveAuthSecret(cfg.AppEnv, cfg.Secret, logger)
	if err != nil {
		return nil, err
	}
	v, err := identity.NewHMACVerifier(secret, vopts...)
	if err != nil {
		return nil, fmt.Errorf("creating verifier: %w", err)
	}
	return v, nil
}

// openUserStore selects MongoDB, memory or SQLite, in that order of
// precedence, and returns a matching close func.
func openUserStore(ctx context.Context, cfg model.StorageConfig, ephemeral bool, logger *slog.Logger) (store.UserStore, func() error, error) {
	switch {
	case cfg.MongoURI != "":
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		s, err := mongo.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to MongoDB: %w", err)
		}
		logger.Info("user store: mongodb", "database", cfg.MongoDatabase)
		return s, s.Close, nil
	case ephemeral:
		logger.Info("user store: memory")
		s := store.NewMemoryStore()
		return s, s.Close, nil
	default:
		s, err := openSQLite(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("user store: sqlite", "path", cfg.Path)
		return s, s.Close, nil
	}
}

func openSQLite(path string) (*store.SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	s, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return s, nil
}
