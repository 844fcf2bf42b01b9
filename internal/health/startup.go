// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/ManuGH/snippets/internal/config"
	"github.com/ManuGH/snippets/internal/log"
	"github.com/rs/zerolog"
)

// minProductionSecretLen is the shortest JWT secret accepted without a warning
// in production.
const minProductionSecretLen = 32

// PerformStartupChecks runs cross-field checks that single-key predicates
// cannot express. It runs after configuration validation and before any
// connection is opened.
func PerformStartupChecks(_ context.Context, s config.Sections) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("running pre-flight startup checks")

	if err := checkAPIPrefix(s.App.APIPrefix); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := checkTelemetry(logger, s.Telemetry); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	checkProduction(logger, s)

	logger.Info().Msg("all startup checks passed")
	return nil
}

func checkAPIPrefix(prefix string) error {
	trimmed := strings.Trim(prefix, "/")
	if trimmed == "" {
		return nil
	}
	if strings.ContainsAny(trimmed, " \t?#") || strings.Contains(trimmed, "//") {
		return fmt.Errorf("API_PREFIX %q is not a valid path segment", prefix)
	}
	return nil
}

func checkTelemetry(logger zerolog.Logger, t config.TelemetryConfig) error {
	if !t.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(t.Endpoint); err != nil {
		return fmt.Errorf("OTEL_ENDPOINT %q must be host:port: %w", t.Endpoint, err)
	}
	logger.Info().
		Str("exporter", t.Exporter).
		Str("endpoint", t.Endpoint).
		Int("sample_percent", t.SamplePercent).
		Msg("tracing enabled")
	return nil
}

func checkProduction(logger zerolog.Logger, s config.Sections) {
	if !s.App.IsProduction() {
		return
	}
	if len(s.Auth.Secret) < minProductionSecretLen {
		logger.Warn().
			Int("min_length", minProductionSecretLen).
			Msg("JWT_SECRET is shorter than recommended for production")
	}
	if s.Database.Logging {
		logger.Warn().Msg("TYPEORM_LOGGING is enabled in production")
	}
}
