// SPDX-License-Identifier: MIT

// Package api assembles the HTTP surface: probes, metrics, API docs and the
// routes under the configured API prefix.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ManuGH/snippets/internal/api/middleware"
	"github.com/ManuGH/snippets/internal/config"
	"github.com/ManuGH/snippets/internal/docs"
	"github.com/ManuGH/snippets/internal/health"
	"github.com/ManuGH/snippets/internal/log"
	"github.com/ManuGH/snippets/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ErrMissingDeps is returned when NewRouter is called without a config holder
// or health manager.
var ErrMissingDeps = errors.New("api: config holder and health manager are required")

// Deps are the collaborators the router serves from.
type Deps struct {
	Config  *config.Holder
	Health  *health.Manager
	Version string
	// Metrics serves /metrics; nil means the default Prometheus registry.
	Metrics http.Handler
}

// NewRouter builds the HTTP handler. The route layout and middleware stack are
// fixed from the snapshot current at call time; handlers read the holder on
// every request so reloaded values are served without rebuilding.
func NewRouter(ctx context.Context, deps Deps) (http.Handler, error) {
	if deps.Config == nil || deps.Health == nil {
		return nil, ErrMissingDeps
	}
	snap := deps.Config.Current()
	sections := snap.Sections()

	stack := middleware.StackConfig{
		EnableSecurityHeaders: true,
		CSP:                   middleware.DefaultCSP,
		EnableMetrics:         true,
		EnableLogging:         true,
		RateLimitRPM:          sections.App.RateLimitRPM,
	}
	if sections.Telemetry.Enabled {
		stack.TracingService = telemetry.ServiceName
	}
	r := middleware.NewRouter(stack)

	metricsHandler := deps.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Get("/healthz", deps.Health.ServeHealth)
	r.Get("/readyz", deps.Health.ServeReady)
	r.Handle("/metrics", metricsHandler)

	if docs.Enabled(snap.Accessor()) {
		doc, err := docs.NewDocument(ctx, sections.App.APIPrefix)
		if err != nil {
			return nil, err
		}
		h, err := docs.NewHandler(doc)
		if err != nil {
			return nil, fmt.Errorf("api: build docs handler: %w", err)
		}
		r.Mount(docs.MountPath, h.Routes())
	}

	s := &service{holder: deps.Config, version: deps.Version}
	prefix := docs.Prefix(sections.App.APIPrefix)
	root := prefix
	if root == "" {
		root = "/"
	}
	r.Get(root, s.handleInfo)
	r.Get(prefix+"/config", s.handleConfig)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { writeNotFound(w) })

	logger := log.WithComponent("api")
	logger.Info().
		Str(log.FieldEvent, "router.built").
		Str("prefix", root).
		Bool("docs", docs.Enabled(snap.Accessor())).
		Int("rate_limit_rpm", sections.App.RateLimitRPM).
		Msg("http routes registered")

	return r, nil
}
