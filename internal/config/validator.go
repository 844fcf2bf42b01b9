// SPDX-License-Identifier: MIT

package config

import (
	"github.com/ManuGH/snippets/internal/log"
	"github.com/ManuGH/snippets/internal/metrics"
	"github.com/ManuGH/snippets/internal/validate"
	"github.com/rs/zerolog"
)

// Validate checks env against schema in declaration order and resolves
// defaults. All violations are collected; the returned error is a
// validate.ValidationError listing every one of them.
//
// Empty values are treated as absent.
func Validate(env EnvSource, schema Schema) (ResolvedEnvironment, error) {
	return validateWithLogger(log.WithComponent("config"), env, schema)
}

func validateWithLogger(logger zerolog.Logger, env EnvSource, schema Schema) (ResolvedEnvironment, error) {
	v := validate.New()
	resolved := ResolvedEnvironment{
		schema:  schema,
		values:  make(map[string]string, len(schema)),
		sources: make(map[string]Source, len(schema)),
	}
	origins, _ := env.(originReporter)

	for _, key := range schema {
		raw, present := env.Lookup(key.Name)
		if present && raw == "" {
			present = false
		}

		if !present {
			if key.Required {
				v.Missing(key.Name)
				continue
			}
			if key.HasDefault {
				resolved.values[key.Name] = key.Default
				resolved.sources[key.Name] = SourceDefault
				logResolution(logger, key, key.Default, SourceDefault)
			}
			continue
		}

		if key.Validate != nil {
			if err := key.Validate(raw); err != nil {
				v.Failed(key.Name, err.Error())
				continue
			}
		}

		src := SourceEnvironment
		if origins != nil {
			if o := origins.Origin(key.Name); o != "" {
				src = o
			}
		}
		resolved.values[key.Name] = raw
		resolved.sources[key.Name] = src
		logResolution(logger, key, raw, src)
	}

	if err := v.Err(); err != nil {
		for _, e := range v.Errors() {
			metrics.RecordConfigValidationError(string(e.Reason))
		}
		return ResolvedEnvironment{}, err
	}
	return resolved, nil
}

func logResolution(logger zerolog.Logger, key Key, value string, src Source) {
	ev := logger.Debug().
		Str("key", key.Name).
		Str("source", string(src))
	if key.Sensitive {
		ev = ev.Bool("sensitive", true)
	} else {
		ev = ev.Str("value", value)
	}
	ev.Msg("resolved configuration key")
}
