// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"fmt"
)

// Pinger is satisfied by *sql.DB and by the cache backends.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a plain ping function.
type PingFunc func(ctx context.Context) error

// PingContext implements Pinger.
func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// PingChecker reports unhealthy when the dependency does not answer a ping.
// An optional dependency only degrades the service.
type PingChecker struct {
	name     string
	target   Pinger
	optional bool
}

// NewDatabaseChecker checks the Postgres connection pool. The database is
// required for readiness.
func NewDatabaseChecker(db Pinger) *PingChecker {
	return &PingChecker{name: "database", target: db}
}

// NewCacheChecker checks the cache backend. backend is reported in the
// message; a failing cache only degrades readiness.
func NewCacheChecker(backend string, ping func(context.Context) error) *PingChecker {
	return &PingChecker{name: "cache:" + backend, target: PingFunc(ping), optional: true}
}

func (c *PingChecker) Name() string { return c.name }

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	if c.target == nil {
		return CheckResult{Status: StatusUnhealthy, Error: "not configured"}
	}
	if err := c.target.PingContext(ctx); err != nil {
		status := StatusUnhealthy
		if c.optional {
			status = StatusDegraded
		}
		return CheckResult{Status: status, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy, Message: "reachable"}
}

// PendingMigrations reports how many migrations are not yet applied.
type PendingMigrations func(ctx context.Context) (int, error)

// MigrationChecker reports degraded while migrations are pending.
type MigrationChecker struct {
	pending PendingMigrations
}

// NewMigrationChecker creates a checker backed by a migration status query.
func NewMigrationChecker(pending PendingMigrations) *MigrationChecker {
	return &MigrationChecker{pending: pending}
}

func (c *MigrationChecker) Name() string { return "migrations" }

func (c *MigrationChecker) Check(ctx context.Context) CheckResult {
	n, err := c.pending(ctx)
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	if n > 0 {
		return CheckResult{Status: StatusDegraded, Message: fmt.Sprintf("%d pending migrations", n)}
	}
	return CheckResult{Status: StatusHealthy, Message: "up to date"}
}
