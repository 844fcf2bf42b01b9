// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/snippets/internal/config"
	"github.com/ManuGH/snippets/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// ReloadFunc applies a freshly published snapshot to runtime state.
type ReloadFunc func(*config.Snapshot)

// App owns the long-lived runtime lifecycle (env file watcher, reload wiring)
// and delegates server management to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	holder       *config.Holder
	onReload     ReloadFunc
	reloadSignal os.Signal
}

// NewApp creates a new App orchestrator. holder and onReload may be nil.
func NewApp(logger zerolog.Logger, manager Manager, holder *config.Holder, onReload ReloadFunc) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		holder:       holder,
		onReload:     onReload,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run starts all owned background subsystems and blocks until ctx is cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	if a.holder != nil {
		// The watcher is best-effort: the server keeps running on the
		// snapshot it started with.
		g.Go(func() error {
			if err := a.holder.Watch(ctx); err != nil {
				a.logger.Warn().Err(err).Str("event", "config.watcher_start_failed").Msg("failed to start config watcher")
			}
			return nil
		})

		if a.onReload != nil {
			applyCh := make(chan *config.Snapshot, 1)
			a.holder.Subscribe(applyCh)
			g.Go(func() error {
				for {
					select {
					case <-ctx.Done():
						return nil
					case snap := <-applyCh:
						if snap != nil {
							a.onReload(snap)
						}
					}
				}
			})
		}

		if a.reloadSignal != nil {
			g.Go(func() error {
				hupChan := make(chan os.Signal, 1)
				signal.Notify(hupChan, a.reloadSignal)
				defer signal.Stop(hupChan)

				for {
					select {
					case <-ctx.Done():
						return nil
					case <-hupChan:
						a.logger.Info().
							Str("event", "config.reload_signal").
							Str("signal", a.reloadSignal.String()).
							Msg("received reload signal, reloading config")
						a.reload(ctx)
					}
				}
			})
		}
	}

	g.Go(func() error {
		return a.manager.Start(ctx)
	})

	return g.Wait()
}

// reload re-reads the configuration and records the outcome on a span.
func (a *App) reload(ctx context.Context) {
	ctx, span := telemetry.Tracer("daemon").Start(ctx, "config.reload")
	defer span.End()

	old := a.holder.Current()
	if err := a.holder.Reload(ctx); err != nil {
		span.RecordError(err)
		span.SetAttributes(telemetry.ErrorAttributes(err, "config_reload")...)
		span.SetStatus(codes.Error, "config reload failed")
		a.logger.Warn().
			Err(err).
			Str("event", "config.reload_failed").
			Msg("config reload failed")
		return
	}

	next := a.holder.Current()
	span.SetAttributes(telemetry.ConfigReloadAttributes(next.Sections().App.Env, "success", len(config.Diff(old, next)))...)
}
