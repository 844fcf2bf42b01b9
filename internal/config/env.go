// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ManuGH/snippets/internal/log"
	"github.com/joho/godotenv"
)

// Source identifies where a resolved value came from.
type Source string

const (
	SourceEnvironment Source = "environment"
	SourceEnvFile     Source = "env_file"
	SourceDefault     Source = "default"
)

// EnvSource is a read-only view over environment variables.
type EnvSource interface {
	Lookup(key string) (string, bool)
}

// LookupFunc adapts a function such as os.LookupEnv to an EnvSource.
type LookupFunc func(key string) (string, bool)

// Lookup implements EnvSource.
func (f LookupFunc) Lookup(key string) (string, bool) { return f(key) }

// MapEnv is an EnvSource backed by a map, used for env files and tests.
type MapEnv map[string]string

// Lookup implements EnvSource.
func (m MapEnv) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// OSEnv reads the process environment.
func OSEnv() EnvSource {
	return LookupFunc(os.LookupEnv)
}

// originReporter is implemented by sources that can tell which layer answered.
type originReporter interface {
	Origin(key string) Source
}

type layer struct {
	source Source
	env    EnvSource
}

// LayeredEnv answers lookups from the first layer holding a non-empty value.
type LayeredEnv struct {
	layers []layer
}

// NewLayeredEnv builds the standard precedence: process environment first,
// then the env file. A nil file layer is skipped.
func NewLayeredEnv(process, file EnvSource) *LayeredEnv {
	l := &LayeredEnv{}
	if process != nil {
		l.layers = append(l.layers, layer{source: SourceEnvironment, env: process})
	}
	if file != nil {
		l.layers = append(l.layers, layer{source: SourceEnvFile, env: file})
	}
	return l
}

// Lookup implements EnvSource.
func (l *LayeredEnv) Lookup(key string) (string, bool) {
	for _, ly := range l.layers {
		if v, ok := ly.env.Lookup(key); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// Origin reports the layer that answers key, or "" when none does.
func (l *LayeredEnv) Origin(key string) Source {
	for _, ly := range l.layers {
		if v, ok := ly.env.Lookup(key); ok && v != "" {
			return ly.source
		}
	}
	return ""
}

// EnvFileFor returns the env file name used for a NODE_ENV value.
func EnvFileFor(nodeEnv string) string {
	if nodeEnv == EnvProduction {
		return ".env"
	}
	return ".env.dev"
}

// ReadEnvFile parses a dotenv file without touching the process environment.
// A missing file is reported with an error wrapping fs.ErrNotExist.
func ReadEnvFile(path string) (MapEnv, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return MapEnv(values), nil
}

// DiscoverEnv layers the process environment over the env file at path. When
// path is empty it is chosen from NODE_ENV and may be missing, in which case
// the process environment alone is used. An explicit path must exist.
func DiscoverEnv(process EnvSource, path string) (EnvSource, string, error) {
	explicit := path != ""
	if !explicit {
		nodeEnv, _ := process.Lookup("NODE_ENV")
		path = EnvFileFor(nodeEnv)
	}

	file, err := ReadEnvFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			logger := log.WithComponent("config")
			logger.Warn().
				Str("path", path).
				Msg("environment file not found, using process environment and defaults")
			return NewLayeredEnv(process, nil), path, nil
		}
		return nil, path, err
	}
	return NewLayeredEnv(process, file), path, nil
}
