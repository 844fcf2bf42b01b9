// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReport_ListsEveryViolation(t *testing.T) {
	_, err := Validate(without(minimalEnv(), "DB_HOST", "JWT_SECRET"), CanonicalSchema())
	require.Error(t, err)

	var buf bytes.Buffer
	WriteReport(&buf, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"Environment validation failed:",
		"- Environment variable DB_HOST is required",
		"- Environment variable JWT_SECRET is required",
	}, lines)
}

func TestWriteReport_FailedPredicate(t *testing.T) {
	_, err := Validate(withEnv(minimalEnv(), "TYPEORM_SYNCHRONIZE", "maybe"), CanonicalSchema())
	require.Error(t, err)

	var buf bytes.Buffer
	WriteReport(&buf, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, ReportHeader+"\n"))
	assert.Contains(t, out, ReportMarker+"Environment variable TYPEORM_SYNCHRONIZE failed validation")
}

func TestWriteReport_PlainError(t *testing.T) {
	var buf bytes.Buffer
	WriteReport(&buf, errors.New("schema broken"))
	assert.Equal(t, "Environment validation failed:\n- schema broken\n", buf.String())
}

func TestWriteReport_NilIsSilent(t *testing.T) {
	var buf bytes.Buffer
	WriteReport(&buf, nil)
	assert.Empty(t, buf.String())
}
