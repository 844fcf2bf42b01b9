// SPDX-License-Identifier: MIT

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordConfigValidationError(t *testing.T) {
	before := testutil.ToFloat64(configValidationErrors.WithLabelValues("missing-required"))
	RecordConfigValidationError("missing-required")
	RecordConfigValidationError("missing-required")
	after := testutil.ToFloat64(configValidationErrors.WithLabelValues("missing-required"))
	assert.Equal(t, before+2, after)
}

func TestRecordConfigReload(t *testing.T) {
	before := testutil.ToFloat64(configReloads.WithLabelValues("failure"))
	RecordConfigReload("failure")
	assert.Equal(t, before+1, testutil.ToFloat64(configReloads.WithLabelValues("failure")))
}

func TestRecordMigrationsApplied_IgnoresNonPositive(t *testing.T) {
	before := testutil.ToFloat64(migrationsApplied)
	RecordMigrationsApplied(0)
	RecordMigrationsApplied(-3)
	assert.Equal(t, before, testutil.ToFloat64(migrationsApplied))

	RecordMigrationsApplied(2)
	assert.Equal(t, before+2, testutil.ToFloat64(migrationsApplied))
}

func TestSetBuildInfo_ReplacesLabels(t *testing.T) {
	SetBuildInfo("v1", "development")
	SetBuildInfo("v2", "production")

	assert.Equal(t, 1, testutil.CollectAndCount(buildInfo))
	assert.Equal(t, float64(1), testutil.ToFloat64(buildInfo.WithLabelValues("v2", "production")))
}
