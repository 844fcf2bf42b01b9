// SPDX-License-Identifier: MIT

// Package metrics holds the Prometheus collectors shared across snippets.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	configValidationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snippets_config_validation_errors_total",
		Help: "Configuration keys rejected during validation, by reason",
	}, []string{"reason"}) // reason=missing-required|failed-predicate

	configReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snippets_config_reloads_total",
		Help: "Configuration reload attempts by result",
	}, []string{"result"}) // result=success|failure

	migrationsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snippets_migrations_applied_total",
		Help: "Database migrations applied by this process",
	})

	buildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "snippets_build_info",
		Help: "Build and environment information (always 1)",
	}, []string{"version", "env"})
)

// RecordConfigValidationError counts one rejected key.
func RecordConfigValidationError(reason string) {
	configValidationErrors.WithLabelValues(reason).Inc()
}

// RecordConfigReload counts one reload attempt.
func RecordConfigReload(result string) {
	configReloads.WithLabelValues(result).Inc()
}

// RecordMigrationsApplied adds n applied migrations.
func RecordMigrationsApplied(n int) {
	if n > 0 {
		migrationsApplied.Add(float64(n))
	}
}

// SetBuildInfo publishes the running version and deployment environment.
func SetBuildInfo(version, env string) {
	buildInfo.Reset()
	buildInfo.WithLabelValues(version, env).Set(1)
}
