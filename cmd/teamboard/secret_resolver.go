package main

import (
	"errors"
	"log/slog"
)

const (
	// placeholderSecret is the value shipped in sample configs.
	placeholderSecret = "default-secret-change-in-production"

	// devDefaultSecret signs and verifies credentials outside production
	// when no secret is configured.
	devDefaultSecret = "dev-only-secret-change-me"
)

// resolveAuthSecret returns the HS256 key for appEnv. Production requires
// a real secret; other environments fall back to devDefaultSecret.
func resolveAuthSecret(appEnv, raw string, logger *slog.Logger) ([]byte, error) {
	if appEnv == "production" {
		if raw == "" {
			return nil, errors.New("AUTH_SECRET must be set in production")
		}
		if raw == placeholderSecret {
			return nil, errors.New("AUTH_SECRET must not be the placeholder value in production")
		}
		return []byte(raw), nil
	}

	if raw == "" {
		if logger != nil {
			logger.Warn("AUTH_SECRET is not set, using dev default secret (not for production)")
		}
		return []byte(devDefaultSecret), nil
	}
	return []byte(raw), nil
}
