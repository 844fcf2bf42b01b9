// SPDX-License-Identifier: MIT

// Package migrate applies versioned SQL migrations and records them in a
// schema_migrations table.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	xglog "github.com/ManuGH/snippets/internal/log"
	"github.com/ManuGH/snippets/internal/metrics"
	"github.com/ManuGH/snippets/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
)

var (
	// ErrChecksumMismatch means an applied migration's up script was edited.
	ErrChecksumMismatch = errors.New("applied migration was modified")
	// ErrIrreversible means the latest migration has no down script.
	ErrIrreversible = errors.New("migration has no down script")
	// ErrUnknownVersion means the database records a version with no file.
	ErrUnknownVersion = errors.New("applied migration not found in source")
)

// DefaultTable is the bookkeeping table name.
const DefaultTable = "schema_migrations"

// Runner applies migrations from a source against one database.
type Runner struct {
	db         *sql.DB
	dialect    Dialect
	migrations []Migration
	table      string
	logSQL     bool
	now        func() time.Time
	logger     zerolog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithTable overrides the bookkeeping table name.
func WithTable(name string) Option {
	return func(r *Runner) { r.table = name }
}

// WithStatementLogging logs every executed script at debug level.
func WithStatementLogging(enabled bool) Option {
	return func(r *Runner) { r.logSQL = enabled }
}

// WithClock overrides the clock used for applied_at_ms.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner loads migrations from fsys.
func NewRunner(db *sql.DB, fsys fs.FS, dialect Dialect, opts ...Option) (*Runner, error) {
	migrations, err := Load(fsys)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		db:         db,
		dialect:    dialect,
		migrations: migrations,
		table:      DefaultTable,
		now:        time.Now,
		logger:     xglog.WithComponent("migrate"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Migrations returns every known migration in version order.
func (r *Runner) Migrations() []Migration {
	out := make([]Migration, len(r.migrations))
	copy(out, r.migrations)
	return out
}

// State is the status of one migration.
type State struct {
	Migration
	Applied   bool
	AppliedAt time.Time
}

type appliedRow struct {
	name     string
	checksum string
	at       time.Time
}

// Up applies every pending migration in version order, each in its own
// transaction. It returns the migrations it applied; on error the ones
// applied before the failure stay applied.
func (r *Runner) Up(ctx context.Context) ([]Migration, error) {
	var done []Migration
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		applied, err := r.applied(ctx, conn)
		if err != nil {
			return err
		}
		if err := r.verify(applied); err != nil {
			return err
		}

		for _, m := range r.migrations {
			if _, ok := applied[m.Version]; ok {
				continue
			}
			if err := r.apply(ctx, conn, m); err != nil {
				return err
			}
			done = append(done, m)
		}
		return nil
	})
	metrics.RecordMigrationsApplied(len(done))
	return done, err
}

// Down reverts the most recently applied migration. It returns nil when
// nothing is applied.
func (r *Runner) Down(ctx context.Context) (*Migration, error) {
	var reverted *Migration
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		applied, err := r.applied(ctx, conn)
		if err != nil {
			return err
		}
		if err := r.verify(applied); err != nil {
			return err
		}

		for i := len(r.migrations) - 1; i >= 0; i-- {
			m := r.migrations[i]
			if _, ok := applied[m.Version]; !ok {
				continue
			}
			if m.Down == "" {
				return fmt.Errorf("%w: %s", ErrIrreversible, m.ID())
			}
			if err := r.revert(ctx, conn, m); err != nil {
				return err
			}
			reverted = &m
			return nil
		}
		return nil
	})
	return reverted, err
}

// Status lists every migration with its applied state.
func (r *Runner) Status(ctx context.Context) ([]State, error) {
	var out []State
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		applied, err := r.applied(ctx, conn)
		if err != nil {
			return err
		}
		if err := r.verify(applied); err != nil {
			return err
		}
		out = make([]State, 0, len(r.migrations))
		for _, m := range r.migrations {
			row, ok := applied[m.Version]
			out = append(out, State{Migration: m, Applied: ok, AppliedAt: row.at})
		}
		return nil
	})
	return out, err
}

// Pending counts migrations that Up would apply.
func (r *Runner) Pending(ctx context.Context) (int, error) {
	states, err := r.Status(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, s := range states {
		if !s.Applied {
			n++
		}
	}
	return n, nil
}

func (r *Runner) withConn(ctx context.Context, fn func(*sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if r.dialect.Lock != "" {
		if _, err := conn.ExecContext(ctx, r.dialect.Lock); err != nil {
			return fmt.Errorf("acquire migration lock: %w", err)
		}
		defer func() {
			if _, err := conn.ExecContext(context.WithoutCancel(ctx), r.dialect.Unlock); err != nil {
				r.logger.Warn().Err(err).Msg("failed to release migration lock")
			}
		}()
	}

	if err := r.ensureTable(ctx, conn); err != nil {
		return err
	}
	return fn(conn)
}

func (r *Runner) ensureTable(ctx context.Context, conn *sql.Conn) error {
	ddl := `CREATE TABLE IF NOT EXISTS ` + r.table + ` (
	version BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at_ms BIGINT NOT NULL
)`
	if _, err := conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s: %w", r.table, err)
	}
	return nil
}

func (r *Runner) applied(ctx context.Context, conn *sql.Conn) (map[int64]appliedRow, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version, name, checksum, applied_at_ms FROM `+r.table)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.table, err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[int64]appliedRow)
	for rows.Next() {
		var (
			version int64
			row     appliedRow
			atMs    int64
		)
		if err := rows.Scan(&version, &row.name, &row.checksum, &atMs); err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.table, err)
		}
		row.at = time.UnixMilli(atMs).UTC()
		out[version] = row
	}
	return out, rows.Err()
}

// verify rejects edited or vanished migrations.
func (r *Runner) verify(applied map[int64]appliedRow) error {
	known := make(map[int64]Migration, len(r.migrations))
	for _, m := range r.migrations {
		known[m.Version] = m
	}
	for version, row := range applied {
		m, ok := known[version]
		if !ok {
			return fmt.Errorf("%w: version %d (%s)", ErrUnknownVersion, version, row.name)
		}
		if m.Checksum != row.checksum {
			return fmt.Errorf("%w: %s", ErrChecksumMismatch, m.ID())
		}
	}
	return nil
}

func (r *Runner) apply(ctx context.Context, conn *sql.Conn, m Migration) error {
	ctx, span := telemetry.Tracer("migrate").Start(ctx, "migrate.up")
	defer span.End()
	span.SetAttributes(telemetry.MigrationAttributes(m.Version, m.Name, "up")...)

	p := r.dialect.Placeholder
	insert := fmt.Sprintf(`INSERT INTO %s (version, name, checksum, applied_at_ms) VALUES (%s, %s, %s, %s)`,
		r.table, p(1), p(2), p(3), p(4))

	err := r.inTx(ctx, conn, func(tx *sql.Tx) error {
		r.logStatement(m, "up", m.Up)
		if _, err := tx.ExecContext(ctx, m.Up); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, insert, m.Version, m.Name, m.Checksum, r.now().UnixMilli())
		return err
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("apply %s: %w", m.ID(), err)
	}

	r.logger.Info().
		Str("event", "migrate.applied").
		Int64("version", m.Version).
		Str("name", m.Name).
		Msg("migration applied")
	return nil
}

func (r *Runner) revert(ctx context.Context, conn *sql.Conn, m Migration) error {
	ctx, span := telemetry.Tracer("migrate").Start(ctx, "migrate.down")
	defer span.End()
	span.SetAttributes(telemetry.MigrationAttributes(m.Version, m.Name, "down")...)

	del := fmt.Sprintf(`DELETE FROM %s WHERE version = %s`, r.table, r.dialect.Placeholder(1))

	err := r.inTx(ctx, conn, func(tx *sql.Tx) error {
		r.logStatement(m, "down", m.Down)
		if _, err := tx.ExecContext(ctx, m.Down); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, del, m.Version)
		return err
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("revert %s: %w", m.ID(), err)
	}

	r.logger.Info().
		Str("event", "migrate.reverted").
		Int64("version", m.Version).
		Str("name", m.Name).
		Msg("migration reverted")
	return nil
}

func (r *Runner) inTx(ctx context.Context, conn *sql.Conn, fn func(*sql.Tx) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *Runner) logStatement(m Migration, direction, script string) {
	if !r.logSQL {
		return
	}
	r.logger.Debug().
		Str("event", "migrate.statement").
		Str("migration", m.ID()).
		Str("direction", direction).
		Str("sql", script).
		Msg("executing migration script")
}
