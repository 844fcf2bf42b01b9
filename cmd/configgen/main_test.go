// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ManuGH/snippets/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_CoversEverySchemaKey(t *testing.T) {
	out := string(render(config.CanonicalSchema()))

	assert.True(t, strings.HasPrefix(out, "# Snippets environment configuration."))
	for _, k := range config.CanonicalSchema() {
		assert.Contains(t, out, k.Name+"=", "missing %s", k.Name)
	}
	assert.Contains(t, out, "# --- database ---")
	assert.Contains(t, out, "\nDB_PORT=5432\n")
	assert.Contains(t, out, "# Required.\nDB_HOST=\n")
	assert.Contains(t, out, "\nDB_PASSWORD=\n")
	assert.Contains(t, out, "\n# REDIS_PASSWORD=\n")
}

func TestRender_OutputLoadsWithRequiredValuesFilled(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env.example")
	require.NoError(t, os.WriteFile(path, render(config.CanonicalSchema()), 0o600))

	file, err := config.ReadEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, "3000", file["PORT"])

	process := config.MapEnv{
		"DB_HOST":     "db1",
		"DB_USERNAME": "u",
		"DB_PASSWORD": "p",
		"DB_NAME":     "n",
		"JWT_SECRET":  "s",
		"REDIS_HOST":  "r",
	}
	_, err = config.Load(config.NewLayeredEnv(process, file))
	require.NoError(t, err)
}

func TestRun_WriteThenCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env.example")
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 1, run([]string{"-check", "-o", path}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "out of date")

	stdout.Reset()
	require.Equal(t, 0, run([]string{"-o", path}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "wrote "+path)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, render(config.CanonicalSchema()), written)

	stdout.Reset()
	assert.Equal(t, 0, run([]string{"-check", "-o", path}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "up to date")

	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))
	assert.Equal(t, 1, run([]string{"-check", "-o", path}, &stdout, &stderr))
}

func TestRun_BadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run([]string{"-nope"}, &stdout, &stderr))
}
