// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"testing"

	"github.com/ManuGH/snippets/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validationErrors(t *testing.T, err error) []validate.Error {
	t.Helper()
	var verr validate.ValidationError
	require.True(t, errors.As(err, &verr), "expected validate.ValidationError, got %T: %v", err, err)
	return verr.Errors()
}

func TestValidate_MinimalEnvSucceeds(t *testing.T) {
	resolved, err := Validate(minimalEnv(), CanonicalSchema())
	require.NoError(t, err)

	v, ok := resolved.Get("DB_PORT")
	require.True(t, ok)
	assert.Equal(t, "5432", v)
	assert.Equal(t, SourceDefault, resolved.Source("DB_PORT"))
	assert.Equal(t, SourceEnvironment, resolved.Source("DB_HOST"))

	_, ok = resolved.Get("REDIS_PASSWORD")
	assert.False(t, ok, "optional key without default stays unresolved")
}

func TestValidate_EveryRequiredKeyIsReportedWhenMissing(t *testing.T) {
	for _, k := range CanonicalSchema() {
		if !k.Required {
			continue
		}
		t.Run(k.Name, func(t *testing.T) {
			_, err := Validate(without(minimalEnv(), k.Name), CanonicalSchema())
			require.Error(t, err)

			errs := validationErrors(t, err)
			require.Len(t, errs, 1)
			assert.Equal(t, k.Name, errs[0].Key)
			assert.Equal(t, validate.ReasonMissingRequired, errs[0].Reason)
			assert.True(t, errors.Is(err, validate.ErrMissingRequiredKey))
		})
	}
}

func TestValidate_MissingDBHostOnly(t *testing.T) {
	_, err := Validate(without(minimalEnv(), "DB_HOST"), CanonicalSchema())
	require.Error(t, err)

	errs := validationErrors(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, validate.Error{Key: "DB_HOST", Reason: validate.ReasonMissingRequired}, errs[0])
}

func TestValidate_EmptyValueCountsAsAbsent(t *testing.T) {
	_, err := Validate(withEnv(minimalEnv(), "DB_HOST", ""), CanonicalSchema())
	require.Error(t, err)
	assert.Equal(t, "DB_HOST", validationErrors(t, err)[0].Key)

	resolved, err := Validate(withEnv(minimalEnv(), "DB_PORT", ""), CanonicalSchema())
	require.NoError(t, err)
	v, _ := resolved.Get("DB_PORT")
	assert.Equal(t, "5432", v)
}

func TestValidate_AggregatesAllErrorsInDeclarationOrder(t *testing.T) {
	env := withEnv(MapEnv{},
		"NODE_ENV", "staging",
		"DB_PORT", "fivefourthreetwo",
		"TYPEORM_SYNCHRONIZE", "maybe",
		"REDIS_HOST", "r",
	)

	_, err := Validate(env, CanonicalSchema())
	require.Error(t, err)

	errs := validationErrors(t, err)
	got := make([]string, len(errs))
	for i, e := range errs {
		got[i] = e.Key + ":" + string(e.Reason)
	}
	assert.Equal(t, []string{
		"NODE_ENV:failed-predicate",
		"DB_HOST:missing-required",
		"DB_PORT:failed-predicate",
		"DB_USERNAME:missing-required",
		"DB_PASSWORD:missing-required",
		"DB_NAME:missing-required",
		"TYPEORM_SYNCHRONIZE:failed-predicate",
		"JWT_SECRET:missing-required",
	}, got)
}

func TestValidate_NumericKeysRejectNonNumeric(t *testing.T) {
	for _, k := range CanonicalSchema() {
		if k.Kind != KindInt {
			continue
		}
		for _, bad := range []string{"abc", "12abc", "1.5", "0x10", " 42"} {
			t.Run(k.Name+"="+bad, func(t *testing.T) {
				_, err := Validate(withEnv(minimalEnv(), k.Name, bad), CanonicalSchema())
				require.Error(t, err)
				errs := validationErrors(t, err)
				require.Len(t, errs, 1)
				assert.Equal(t, k.Name, errs[0].Key)
				assert.Equal(t, validate.ReasonFailedValidation, errs[0].Reason)
			})
		}
	}
}

func TestValidate_SynchronizeMaybe(t *testing.T) {
	_, err := Validate(withEnv(minimalEnv(), "TYPEORM_SYNCHRONIZE", "maybe"), CanonicalSchema())
	require.Error(t, err)

	errs := validationErrors(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "TYPEORM_SYNCHRONIZE", errs[0].Key)
	assert.Equal(t, validate.ReasonFailedValidation, errs[0].Reason)
	assert.True(t, errors.Is(err, validate.ErrFailedValidation))
}

func TestValidate_PortRange(t *testing.T) {
	for _, bad := range []string{"0", "65536", "-1"} {
		_, err := Validate(withEnv(minimalEnv(), "PORT", bad), CanonicalSchema())
		require.Error(t, err, bad)
		assert.Contains(t, err.Error(), "between 1 and 65535")
	}
	_, err := Validate(withEnv(minimalEnv(), "PORT", "8080"), CanonicalSchema())
	require.NoError(t, err)
}

func TestValidate_SensitiveValueNeverInMessage(t *testing.T) {
	schema := Schema{
		{Name: "SECRET", Path: "auth.secret", Kind: KindString, Sensitive: true, Validate: OneOf("expected")},
	}
	_, err := Validate(MapEnv{"SECRET": "hunter2"}, schema)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "hunter2")
}

func TestValidate_RecordsEnvFileOrigin(t *testing.T) {
	process := MapEnv{"DB_HOST": "from-process"}
	file := withEnv(minimalEnv(), "DB_HOST", "from-file")

	resolved, err := Validate(NewLayeredEnv(process, file), CanonicalSchema())
	require.NoError(t, err)

	host, _ := resolved.Get("DB_HOST")
	assert.Equal(t, "from-process", host)
	assert.Equal(t, SourceEnvironment, resolved.Source("DB_HOST"))
	assert.Equal(t, SourceEnvFile, resolved.Source("DB_NAME"))
	assert.Equal(t, SourceDefault, resolved.Source("DB_SCHEMA"))
}

func TestValidate_DoesNotTouchProcessEnvironment(t *testing.T) {
	t.Setenv("DB_SCHEMA", "")
	_, err := Validate(minimalEnv(), CanonicalSchema())
	require.NoError(t, err)

	v, _ := OSEnv().Lookup("DB_SCHEMA")
	assert.Equal(t, "", v)
}
