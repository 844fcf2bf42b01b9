// SPDX-License-Identifier: MIT
package telemetry

import (
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestHTTPAttributes(t *testing.T) {
	attrs := HTTPAttributes("GET", "/api/healthz", "http://localhost:3000/api/healthz", 200)

	if len(attrs) != 4 {
		t.Fatalf("Expected 4 attributes, got %d", len(attrs))
	}

	verifyAttribute(t, attrs, HTTPMethodKey, "GET")
	verifyAttribute(t, attrs, HTTPRouteKey, "/api/healthz")
	verifyAttribute(t, attrs, HTTPURLKey, "http://localhost:3000/api/healthz")
	verifyIntAttribute(t, attrs, HTTPStatusCodeKey, 200)
}

func TestDBAttributes(t *testing.T) {
	attrs := DBAttributes("db1", 5432, "snippets", true)

	verifyAttribute(t, attrs, DBSystemKey, "postgresql")
	verifyAttribute(t, attrs, DBHostKey, "db1")
	verifyIntAttribute(t, attrs, DBPortKey, 5432)
	verifyAttribute(t, attrs, DBNameKey, "snippets")
	verifyBoolAttribute(t, attrs, DBSSLKey, true)

	for _, a := range attrs {
		if a.Key == "db.password" || a.Key == "db.user" {
			t.Errorf("credential attribute %s must not be emitted", a.Key)
		}
	}
}

func TestMigrationAttributes(t *testing.T) {
	tests := []struct {
		name      string
		version   int64
		migration string
		direction string
		wantLen   int
	}{
		{name: "all fields", version: 1, migration: "create_snippets", direction: "up", wantLen: 3},
		{name: "version only", version: 7, wantLen: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := MigrationAttributes(tt.version, tt.migration, tt.direction)
			if len(attrs) != tt.wantLen {
				t.Errorf("Expected %d attributes, got %d", tt.wantLen, len(attrs))
			}
			verifyInt64Attribute(t, attrs, MigrationVersionKey, tt.version)
			if tt.migration != "" {
				verifyAttribute(t, attrs, MigrationNameKey, tt.migration)
			}
		})
	}
}

func TestConfigReloadAttributes(t *testing.T) {
	attrs := ConfigReloadAttributes("production", "success", 2)

	verifyAttribute(t, attrs, ConfigEnvKey, "production")
	verifyAttribute(t, attrs, ConfigResultKey, "success")
	verifyIntAttribute(t, attrs, ConfigChangesKey, 2)
}

func TestErrorAttributes(t *testing.T) {
	attrs := ErrorAttributes(errors.New("boom"), "validation")

	verifyBoolAttribute(t, attrs, ErrorKey, true)
	verifyAttribute(t, attrs, ErrorTypeKey, "validation")
}

func verifyAttribute(t *testing.T, attrs []attribute.KeyValue, key, expectedValue string) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value.AsString() != expectedValue {
				t.Errorf("Expected %s=%s, got %s", key, expectedValue, attr.Value.AsString())
			}
			return
		}
	}
	t.Errorf("Attribute %s not found", key)
}

func verifyIntAttribute(t *testing.T, attrs []attribute.KeyValue, key string, expectedValue int) {
	t.Helper()
	verifyInt64Attribute(t, attrs, key, int64(expectedValue))
}

func verifyInt64Attribute(t *testing.T, attrs []attribute.KeyValue, key string, expectedValue int64) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value.AsInt64() != expectedValue {
				t.Errorf("Expected %s=%d, got %d", key, expectedValue, attr.Value.AsInt64())
			}
			return
		}
	}
	t.Errorf("Attribute %s not found", key)
}

func verifyBoolAttribute(t *testing.T, attrs []attribute.KeyValue, key string, expectedValue bool) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value.AsBool() != expectedValue {
				t.Errorf("Expected %s=%t, got %t", key, expectedValue, attr.Value.AsBool())
			}
			return
		}
	}
	t.Errorf("Attribute %s not found", key)
}
