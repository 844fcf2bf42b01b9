// SPDX-License-Identifier: MIT

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	xglog "github.com/ManuGH/snippets/internal/log"
	"github.com/ManuGH/snippets/internal/telemetry"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"go.opentelemetry.io/otel/codes"
)

// DriverName is the database/sql driver used for Postgres.
const DriverName = "pgx"

// Pool holds connection pool limits.
type Pool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// DefaultPool returns the pool limits used by snippetd.
func DefaultPool() Pool {
	return Pool{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
	}
}

// Open connects to Postgres and verifies the connection with a ping.
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	return OpenWithPool(ctx, opts, DefaultPool())
}

// OpenWithPool is Open with explicit pool limits.
func OpenWithPool(ctx context.Context, opts Options, pool Pool) (*sql.DB, error) {
	logger := xglog.WithComponent("database")

	if err := opts.CheckSynchronize(logger); err != nil {
		return nil, err
	}

	ctx, span := telemetry.Tracer("database").Start(ctx, "database.open")
	defer span.End()
	span.SetAttributes(telemetry.DBAttributes(opts.Host, opts.Port, opts.Database, opts.SSL)...)

	db, err := sql.Open(DriverName, opts.DSN())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("database: open failed: %w", err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pool.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("database: ping %s failed: %w", opts.Redacted(), err)
	}

	ev := logger.Info()
	if opts.Logging {
		ev = ev.Int("max_open_conns", pool.MaxOpenConns).Str("sslmode", opts.SSLMode())
	}
	ev.Str("event", "database.connected").
		Str("dsn", opts.Redacted()).
		Msg("connected to database")

	return db, nil
}
