// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchemaInvalid reports a contradictory or duplicated schema declaration.
var ErrSchemaInvalid = errors.New("invalid config schema")

// Kind is the canonical target type of a configuration key.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Predicate validates a raw environment value. A nil return accepts the value;
// the error text becomes the detail of the validation message.
type Predicate func(raw string) error

// Key declares a single recognized environment variable.
type Key struct {
	Name        string    // Environment variable (e.g. "DB_HOST")
	Path        string    // Namespaced field (e.g. "database.host")
	Kind        Kind      // Target type
	Required    bool      // Absent and required fails startup
	Default     string    // Raw default, only meaningful when HasDefault
	HasDefault  bool      // Distinguishes "no default" from an empty default
	Validate    Predicate // optional
	Sensitive   bool      // Never logged or echoed
	Description string
}

// Section returns the section half of Path.
func (k Key) Section() string {
	section, _, _ := strings.Cut(k.Path, ".")
	return section
}

// Field returns the field half of Path.
func (k Key) Field() string {
	_, field, _ := strings.Cut(k.Path, ".")
	return field
}

// Schema is an ordered list of keys. Declaration order is the order in which
// validation errors are reported.
type Schema []Key

// Lookup finds a key by environment name.
func (s Schema) Lookup(name string) (Key, bool) {
	for _, k := range s {
		if k.Name == name {
			return k, true
		}
	}
	return Key{}, false
}

// Check rejects schemas that are contradictory: required keys with defaults,
// duplicate names or paths, defaults that fail their own predicate, and paths
// that are not "section.field".
func (s Schema) Check() error {
	names := make(map[string]struct{}, len(s))
	paths := make(map[string]struct{}, len(s))

	for _, k := range s {
		if k.Name == "" {
			return fmt.Errorf("%w: key with empty name (path %q)", ErrSchemaInvalid, k.Path)
		}
		if _, dup := names[k.Name]; dup {
			return fmt.Errorf("%w: duplicate key %s", ErrSchemaInvalid, k.Name)
		}
		names[k.Name] = struct{}{}

		if k.Section() == "" || k.Field() == "" || strings.Count(k.Path, ".") != 1 {
			return fmt.Errorf("%w: key %s has malformed path %q", ErrSchemaInvalid, k.Name, k.Path)
		}
		if _, dup := paths[k.Path]; dup {
			return fmt.Errorf("%w: duplicate path %s", ErrSchemaInvalid, k.Path)
		}
		paths[k.Path] = struct{}{}

		if k.Required && k.HasDefault {
			return fmt.Errorf("%w: key %s is required and has a default", ErrSchemaInvalid, k.Name)
		}
		if k.HasDefault && k.Validate != nil {
			if err := k.Validate(k.Default); err != nil {
				return fmt.Errorf("%w: default for %s fails validation: %v", ErrSchemaInvalid, k.Name, err)
			}
		}
		if k.HasDefault {
			if _, err := coerce(k, k.Default); err != nil {
				return fmt.Errorf("%w: default for %s: %v", ErrSchemaInvalid, k.Name, err)
			}
		}
	}
	return nil
}

func required(name, path string, kind Kind, desc string) Key {
	return Key{Name: name, Path: path, Kind: kind, Required: true, Description: desc}
}

func optional(name, path string, kind Kind, def string, pred Predicate, desc string) Key {
	return Key{Name: name, Path: path, Kind: kind, Default: def, HasDefault: true, Validate: pred, Description: desc}
}

// CanonicalSchema returns every key snippets recognizes, in declaration order.
func CanonicalSchema() Schema {
	return Schema{
		// --- APP ---
		optional("NODE_ENV", "app.env", KindString, "development", OneOf(EnvDevelopment, EnvProduction, EnvTest), "Deployment environment"),
		optional("PORT", "app.port", KindInt, "3000", Port(), "HTTP listen port"),
		optional("API_PREFIX", "app.apiPrefix", KindString, "api", nil, "Global route prefix"),
		optional("LOG_LEVEL", "app.logLevel", KindString, "info", OneOf("debug", "info", "warn", "error"), "Log level"),
		optional("RATE_LIMIT_RPM", "app.rateLimitRPM", KindInt, "600", IntRange(0, 1_000_000), "Requests per minute per client IP (0 disables)"),

		// --- DATABASE ---
		required("DB_HOST", "database.host", KindString, "Postgres host"),
		optional("DB_PORT", "database.port", KindInt, "5432", Port(), "Postgres port"),
		required("DB_USERNAME", "database.username", KindString, "Postgres user"),
		{Name: "DB_PASSWORD", Path: "database.password", Kind: KindString, Required: true, Sensitive: true, Description: "Postgres password"},
		required("DB_NAME", "database.database", KindString, "Postgres database name"),
		optional("DB_SCHEMA", "database.schema", KindString, "public", nil, "Postgres search_path schema"),
		optional("TYPEORM_LOGGING", "database.logging", KindBool, "true", Bool(), "Log database statements"),
		optional("TYPEORM_SYNCHRONIZE", "database.synchronize", KindBool, "false", Bool(), "Synchronize schema outside of migrations"),
		optional("TYPEORM_MIGRATIONS_RUN", "database.migrationsRun", KindBool, "true", Bool(), "Apply pending migrations on boot"),

		// --- AUTH ---
		{Name: "JWT_SECRET", Path: "auth.secret", Kind: KindString, Required: true, Sensitive: true, Description: "JWT signing secret"},
		optional("JWT_EXPIRATION", "auth.expiresIn", KindInt, "3600", IntRange(0, 1<<31-1), "JWT lifetime in seconds"),

		// --- CACHE ---
		required("REDIS_HOST", "cache.host", KindString, "Redis host"),
		optional("REDIS_PORT", "cache.port", KindInt, "6379", Port(), "Redis port"),
		{Name: "REDIS_PASSWORD", Path: "cache.password", Kind: KindString, Sensitive: true, Description: "Redis password"},
		optional("REDIS_DB", "cache.db", KindInt, "0", IntRange(0, 15), "Redis database number"),

		// --- TELEMETRY ---
		optional("OTEL_ENABLED", "telemetry.enabled", KindBool, "false", Bool(), "Export traces over OTLP"),
		optional("OTEL_EXPORTER", "telemetry.exporter", KindString, "grpc", OneOf("grpc", "http"), "OTLP transport"),
		optional("OTEL_ENDPOINT", "telemetry.endpoint", KindString, "localhost:4317", nil, "OTLP collector endpoint"),
		optional("OTEL_SAMPLE_PERCENT", "telemetry.samplePercent", KindInt, "100", IntRange(0, 100), "Trace sampling percentage"),
	}
}

// Deployment environments accepted by NODE_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)
