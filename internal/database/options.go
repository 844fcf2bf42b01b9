// SPDX-License-Identifier: MIT

// Package database bootstraps the Postgres connection from the database
// configuration section.
package database

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/ManuGH/snippets/internal/config"
	"github.com/rs/zerolog"
)

// ErrSynchronizeInProduction rejects automatic schema synchronization in
// production; schema changes go through migrations only.
var ErrSynchronizeInProduction = errors.New("database synchronize is not allowed in production")

// Options is the connection description read from database.*.
type Options struct {
	Host          string
	Port          int
	Username      string
	Password      string
	Database      string
	Schema        string
	Logging       bool
	Synchronize   bool
	MigrationsRun bool
	SSL           bool
	Env           string // app.env, used for the synchronize rule
}

// OptionsFromAccessor reads every database field through the accessor.
func OptionsFromAccessor(acc *config.Accessor) (Options, error) {
	var (
		o   Options
		err error
	)
	str := func(field string, dst *string) {
		if err == nil {
			*dst, err = acc.String("database", field)
		}
	}
	num := func(field string, dst *int) {
		if err == nil {
			*dst, err = acc.Int("database", field)
		}
	}
	flag := func(field string, dst *bool) {
		if err == nil {
			*dst, err = acc.Bool("database", field)
		}
	}

	str("host", &o.Host)
	num("port", &o.Port)
	str("username", &o.Username)
	str("password", &o.Password)
	str("database", &o.Database)
	str("schema", &o.Schema)
	flag("logging", &o.Logging)
	flag("synchronize", &o.Synchronize)
	flag("migrationsRun", &o.MigrationsRun)
	flag("ssl", &o.SSL)
	if err == nil {
		o.Env, err = acc.String("app", "env")
	}
	if err != nil {
		return Options{}, fmt.Errorf("read database options: %w", err)
	}
	return o, nil
}

// SSLMode maps the derived ssl flag to a libpq sslmode.
func (o Options) SSLMode() string {
	if o.SSL {
		return "require"
	}
	return "disable"
}

func (o Options) url() *url.URL {
	q := url.Values{}
	if o.Schema != "" {
		q.Set("search_path", o.Schema)
	}
	q.Set("sslmode", o.SSLMode())

	return &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(o.Username, o.Password),
		Host:     net.JoinHostPort(o.Host, strconv.Itoa(o.Port)),
		Path:     "/" + o.Database,
		RawQuery: q.Encode(),
	}
}

// DSN returns the connection URL, including the password.
func (o Options) DSN() string {
	return o.url().String()
}

// Redacted returns the connection URL with the password masked, for logs.
func (o Options) Redacted() string {
	return o.url().Redacted()
}

// CheckSynchronize enforces the synchronize rule: an error in production, a
// warning elsewhere.
func (o Options) CheckSynchronize(logger zerolog.Logger) error {
	if !o.Synchronize {
		return nil
	}
	if o.Env == config.EnvProduction {
		return ErrSynchronizeInProduction
	}
	logger.Warn().
		Str("event", "database.synchronize_enabled").
		Str("env", o.Env).
		Msg("TYPEORM_SYNCHRONIZE is enabled; pending migrations are applied on boot regardless of TYPEORM_MIGRATIONS_RUN")
	return nil
}
