// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ManuGH/snippets/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptyEnvFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "empty.env")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	return path
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-version"}, config.MapEnv{}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "commit:")
}

func TestRun_BadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-nope"}, config.MapEnv{}, &stdout, &stderr)
	assert.Equal(t, 2, code)
}

func TestRun_InvalidEnvironmentReportsEveryViolation(t *testing.T) {
	var stdout, stderr bytes.Buffer
	env := config.MapEnv{"PORT": "http"}
	code := run(context.Background(), []string{"-env-file", emptyEnvFile(t)}, env, &stdout, &stderr)

	assert.Equal(t, 1, code)
	out := stderr.String()
	assert.Contains(t, out, "Environment validation failed:")
	assert.Contains(t, out, "- Environment variable PORT failed validation")
	assert.Contains(t, out, "- Environment variable DB_HOST is required")
	assert.Contains(t, out, "- Environment variable JWT_SECRET is required")
}

func TestRun_SynchronizeRejectedInProduction(t *testing.T) {
	var stdout, stderr bytes.Buffer
	env := config.MapEnv{
		"NODE_ENV":            "production",
		"DB_HOST":             "127.0.0.1",
		"DB_USERNAME":         "u",
		"DB_PASSWORD":         "p",
		"DB_NAME":             "n",
		"JWT_SECRET":          "a-long-enough-secret-for-production-use",
		"REDIS_HOST":          "127.0.0.1",
		"TYPEORM_SYNCHRONIZE": "true",
		"TYPEORM_LOGGING":     "false",
	}
	code := run(context.Background(), []string{"-env-file", emptyEnvFile(t)}, env, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "synchronize is not allowed in production")
}

func TestRun_UnreachableDatabaseFails(t *testing.T) {
	var stdout, stderr bytes.Buffer
	env := config.MapEnv{
		"DB_HOST":     "127.0.0.1",
		"DB_PORT":     "1",
		"DB_USERNAME": "u",
		"DB_PASSWORD": "secret-pw",
		"DB_NAME":     "n",
		"JWT_SECRET":  "s",
		"REDIS_HOST":  "127.0.0.1",
	}
	code := run(context.Background(), []string{"-env-file", emptyEnvFile(t)}, env, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "daemon.failed")
	assert.NotContains(t, stdout.String(), "secret-pw")
}

func TestRun_DebugLevelLogsBootResolution(t *testing.T) {
	var stdout, stderr bytes.Buffer
	env := config.MapEnv{
		"LOG_LEVEL":   "debug",
		"DB_HOST":     "127.0.0.1",
		"DB_PORT":     "1",
		"DB_USERNAME": "u",
		"DB_PASSWORD": "secret-pw",
		"DB_NAME":     "n",
		"JWT_SECRET":  "s",
		"REDIS_HOST":  "127.0.0.1",
	}
	code := run(context.Background(), []string{"-env-file", emptyEnvFile(t)}, env, &stdout, &stderr)

	assert.Equal(t, 1, code)
	out := stdout.String()
	assert.Contains(t, out, "resolved configuration key")
	assert.Contains(t, out, `"key":"DB_HOST"`)
	assert.NotContains(t, out, "secret-pw")
}

func TestRun_MissingExplicitEnvFileFails(t *testing.T) {
	var stdout, stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "typo.env")
	code := run(context.Background(), []string{"-env-file", path}, config.MapEnv{}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "typo.env")
}
