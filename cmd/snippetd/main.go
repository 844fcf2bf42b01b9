// SPDX-License-Identifier: MIT

// snippetd serves the snippets API.
//
// Startup is fail-fast: the environment is validated as a whole and every
// violation is reported before the process exits with status 1.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/snippets/internal/api"
	"github.com/ManuGH/snippets/internal/cache"
	"github.com/ManuGH/snippets/internal/config"
	"github.com/ManuGH/snippets/internal/daemon"
	"github.com/ManuGH/snippets/internal/database"
	"github.com/ManuGH/snippets/internal/database/migrate"
	"github.com/ManuGH/snippets/internal/health"
	xglog "github.com/ManuGH/snippets/internal/log"
	"github.com/ManuGH/snippets/internal/metrics"
	"github.com/ManuGH/snippets/internal/telemetry"
	"github.com/ManuGH/snippets/internal/version"
	"github.com/ManuGH/snippets/migrations"
	"github.com/rs/zerolog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], config.OSEnv(), os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, env config.EnvSource, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("snippetd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	envFile := fs.String("env-file", "", "path to env file (default: .env in production, .env.dev otherwise)")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		_, _ = fmt.Fprintln(stdout, version.String())
		return 0
	}

	// Safe defaults until the env file has been read.
	xglog.Configure(xglog.Config{Level: "info", Output: stdout, Version: version.Version})

	layered, path, err := config.DiscoverEnv(env, *envFile)
	if err != nil {
		config.WriteReport(stderr, err)
		return 1
	}

	// LOG_LEVEL takes effect before Load; an invalid value falls back to
	// info and is reported by Load.
	bootLevel, _ := layered.Lookup("LOG_LEVEL")
	xglog.Configure(xglog.Config{Level: bootLevel, Output: stdout, Version: version.Version})

	snap, err := config.Load(layered)
	if err != nil {
		config.WriteReport(stderr, err)
		return 1
	}
	sections := snap.Sections()

	logger := xglog.WithComponent("daemon")
	logger.Info().
		Str("event", "config.loaded").
		Str("env", sections.App.Env).
		Str("env_file", path).
		Msg("configuration validated")
	metrics.SetBuildInfo(version.Version, sections.App.Env)

	if err := serve(ctx, logger, snap, config.NewHolder(snap, config.FileLoader(env, *envFile), path), stdout); err != nil {
		logger.Error().Err(err).Str("event", "daemon.failed").Msg("snippetd stopped with error")
		return 1
	}
	return 0
}

func serve(ctx context.Context, logger zerolog.Logger, snap *config.Snapshot, holder *config.Holder, stdout io.Writer) error {
	sections := snap.Sections()

	if err := health.PerformStartupChecks(ctx, sections); err != nil {
		return fmt.Errorf("startup checks: %w", err)
	}

	tp, err := telemetry.NewProvider(ctx, telemetry.ConfigFrom(sections, version.Version))
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	opts, err := database.OptionsFromAccessor(snap.Accessor())
	if err != nil {
		_ = tp.Shutdown(ctx)
		return err
	}
	db, err := database.Open(ctx, opts)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return err
	}

	runner, err := migrate.NewRunner(db, migrations.FS, migrate.PostgresDialect, migrate.WithStatementLogging(opts.Logging))
	if err != nil {
		_ = db.Close()
		_ = tp.Shutdown(ctx)
		return err
	}
	if err := migrateOnBoot(ctx, logger, opts, runner); err != nil {
		_ = db.Close()
		_ = tp.Shutdown(ctx)
		return err
	}

	store := cache.New(ctx, sections.Cache)

	hm := health.NewManager(version.Version)
	hm.RegisterChecker(health.NewDatabaseChecker(db))
	hm.RegisterChecker(health.NewCacheChecker(store.Backend(), store.Ping))
	hm.RegisterChecker(health.NewMigrationChecker(runner.Pending))

	handler, err := api.NewRouter(ctx, api.Deps{Config: holder, Health: hm, Version: version.Version})
	if err != nil {
		closeAll(db, store)
		_ = tp.Shutdown(ctx)
		return err
	}

	mgr, err := daemon.NewManager(daemon.DefaultServerConfig(sections.App.Port), daemon.Deps{
		Logger:     logger,
		APIHandler: handler,
	})
	if err != nil {
		closeAll(db, store)
		_ = tp.Shutdown(ctx)
		return err
	}
	// Hooks run LIFO: telemetry flushes after the stores close.
	mgr.RegisterShutdownHook("telemetry", tp.Shutdown)
	mgr.RegisterShutdownHook("database", func(context.Context) error { return db.Close() })
	mgr.RegisterShutdownHook("cache", func(context.Context) error { return store.Close() })

	app := daemon.NewApp(logger, mgr, holder, func(next *config.Snapshot) {
		xglog.Configure(xglog.Config{Level: next.Sections().App.LogLevel, Output: stdout, Version: version.Version})
	})
	return app.Run(ctx)
}

// migrateOnBoot applies pending migrations when database.migrationsRun is set.
// Synchronize outside production has the same effect: the schema is brought
// up to date from the embedded migrations instead of being inferred.
func migrateOnBoot(ctx context.Context, logger zerolog.Logger, opts database.Options, runner *migrate.Runner) error {
	if !opts.MigrationsRun && !opts.Synchronize {
		pending, err := runner.Pending(ctx)
		if err != nil {
			return fmt.Errorf("check migrations: %w", err)
		}
		if pending > 0 {
			logger.Warn().
				Str("event", "migrations.pending").
				Int("pending", pending).
				Msg("pending migrations not applied (TYPEORM_MIGRATIONS_RUN=false)")
		}
		return nil
	}

	applied, err := runner.Up(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	for _, m := range applied {
		logger.Info().Str("event", "migration.applied").Str("migration", m.ID()).Msg("migration applied")
	}
	return nil
}

func closeAll(db *sql.DB, store cache.Cache) {
	err := errors.Join(store.Close(), db.Close())
	if err != nil {
		logger := xglog.WithComponent("daemon")
		logger.Warn().Err(err).Msg("cleanup after failed startup")
	}
}
