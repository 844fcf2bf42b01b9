// SPDX-License-Identifier: MIT

// migrate applies, reverts and lists the embedded schema migrations.
//
// Usage:
//
//	migrate [-env-file path] up|down|status
//
// Exit codes:
//   - 0: success
//   - 1: configuration, connection or migration error
//   - 2: usage error
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/snippets/internal/config"
	"github.com/ManuGH/snippets/internal/database"
	"github.com/ManuGH/snippets/internal/database/migrate"
	xglog "github.com/ManuGH/snippets/internal/log"
	"github.com/ManuGH/snippets/internal/version"
	"github.com/ManuGH/snippets/migrations"
	"github.com/rs/zerolog"
)

// opener connects to the configured database. Tests swap it for SQLite.
type opener func(ctx context.Context, opts database.Options) (*sql.DB, migrate.Dialect, error)

func openPostgres(ctx context.Context, opts database.Options) (*sql.DB, migrate.Dialect, error) {
	db, err := database.Open(ctx, opts)
	return db, migrate.PostgresDialect, err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], config.OSEnv(), os.Stdout, os.Stderr, openPostgres, migrations.FS)
	stop()
	os.Exit(code)
}

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  migrate [-env-file path] up|down|status")
}

func run(ctx context.Context, args []string, env config.EnvSource, stdout, stderr io.Writer, open opener, fsys fs.FS) int {
	flags := flag.NewFlagSet("migrate", flag.ContinueOnError)
	flags.SetOutput(stderr)
	envFile := flags.String("env-file", "", "path to env file (default: .env in production, .env.dev otherwise)")
	showVersion := flags.Bool("version", false, "print version and exit")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if *showVersion {
		_, _ = fmt.Fprintln(stdout, version.String())
		return 0
	}

	cmd := "up"
	switch flags.NArg() {
	case 0:
	case 1:
		cmd = flags.Arg(0)
	default:
		usage(stderr)
		return 2
	}
	if cmd != "up" && cmd != "down" && cmd != "status" {
		_, _ = fmt.Fprintf(stderr, "Error: unknown command %q\n\n", cmd)
		usage(stderr)
		return 2
	}

	xglog.Configure(xglog.Config{Level: "info", Output: stdout, Service: "snippets-migrate", Version: version.Version})

	snap, _, err := config.Discover(env, *envFile)
	if err != nil {
		config.WriteReport(stderr, err)
		return 1
	}
	xglog.Configure(xglog.Config{Level: snap.Sections().App.LogLevel, Output: stdout, Service: "snippets-migrate", Version: version.Version})
	logger := xglog.WithComponent("migrate")

	opts, err := database.OptionsFromAccessor(snap.Accessor())
	if err != nil {
		logger.Error().Err(err).Msg("invalid database options")
		return 1
	}
	db, dialect, err := open(ctx, opts)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return 1
	}
	defer func() { _ = db.Close() }()

	runner, err := migrate.NewRunner(db, fsys, dialect, migrate.WithStatementLogging(opts.Logging))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load migrations")
		return 1
	}

	switch cmd {
	case "down":
		err = down(ctx, logger, runner)
	case "status":
		err = status(ctx, stdout, runner)
	default:
		err = up(ctx, logger, runner)
	}
	if err != nil {
		logger.Error().Err(err).Str("command", cmd).Msg("migration command failed")
		return 1
	}
	return 0
}

func up(ctx context.Context, logger zerolog.Logger, runner *migrate.Runner) error {
	logger.Info().Msg("Running migrations...")
	applied, err := runner.Up(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		logger.Info().Msg("No pending migrations to run")
		return nil
	}
	logger.Info().Msgf("Successfully ran %d migrations:", len(applied))
	for _, m := range applied {
		logger.Info().Msgf("- %s", m.ID())
	}
	return nil
}

func down(ctx context.Context, logger zerolog.Logger, runner *migrate.Runner) error {
	logger.Info().Msg("Reverting last migration...")
	m, err := runner.Down(ctx)
	if err != nil {
		return err
	}
	if m == nil {
		logger.Info().Msg("No applied migrations to revert")
		return nil
	}
	logger.Info().Msgf("Reverted migration %s", m.ID())
	return nil
}

func status(ctx context.Context, w io.Writer, runner *migrate.Runner) error {
	states, err := runner.Status(ctx)
	if err != nil {
		return err
	}
	for _, s := range states {
		mark := "pending"
		if s.Applied {
			mark = "applied " + s.AppliedAt.UTC().Format("2006-01-02T15:04:05Z")
		}
		if _, err := fmt.Fprintf(w, "%-40s %s\n", s.ID(), mark); err != nil {
			return err
		}
	}
	return nil
}
