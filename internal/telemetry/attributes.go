// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	// Database attributes
	DBSystemKey    = "db.system"
	DBNameKey      = "db.name"
	DBHostKey      = "net.peer.name"
	DBPortKey      = "net.peer.port"
	DBSSLKey       = "db.ssl"
	DBOperationKey = "db.operation"

	// Migration attributes
	MigrationVersionKey   = "migration.version"
	MigrationNameKey      = "migration.name"
	MigrationDirectionKey = "migration.direction"

	// Config attributes
	ConfigEnvKey     = "config.env"
	ConfigResultKey  = "config.result"
	ConfigChangesKey = "config.changes"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// DBAttributes describes a Postgres connection. Credentials are never included.
func DBAttributes(host string, port int, database string, ssl bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(DBSystemKey, "postgresql"),
		attribute.String(DBHostKey, host),
		attribute.Int(DBPortKey, port),
		attribute.String(DBNameKey, database),
		attribute.Bool(DBSSLKey, ssl),
	}
}

// MigrationAttributes creates attributes for a single applied or reverted migration.
func MigrationAttributes(version int64, name, direction string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	attrs = append(attrs, attribute.Int64(MigrationVersionKey, version))
	if name != "" {
		attrs = append(attrs, attribute.String(MigrationNameKey, name))
	}
	if direction != "" {
		attrs = append(attrs, attribute.String(MigrationDirectionKey, direction))
	}
	return attrs
}

// ConfigReloadAttributes describes the outcome of a configuration reload.
func ConfigReloadAttributes(env, result string, changes int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ConfigEnvKey, env),
		attribute.String(ConfigResultKey, result),
		attribute.Int(ConfigChangesKey, changes),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
