// SPDX-License-Identifier: MIT

package config

import "fmt"

// Snapshot is the immutable, effective configuration for one process
// lifetime (or one reload generation).
type Snapshot struct {
	sections Sections
	resolved ResolvedEnvironment
	accessor *Accessor
}

// Load validates env against the canonical schema and builds a Snapshot.
func Load(env EnvSource) (*Snapshot, error) {
	return LoadSchema(env, CanonicalSchema())
}

// LoadSchema is Load with an explicit schema.
func LoadSchema(env EnvSource, schema Schema) (*Snapshot, error) {
	if err := schema.Check(); err != nil {
		return nil, err
	}

	resolved, err := Validate(env, schema)
	if err != nil {
		return nil, err
	}

	sections, err := Build(resolved)
	if err != nil {
		return nil, fmt.Errorf("build config sections: %w", err)
	}

	return &Snapshot{
		sections: sections,
		resolved: resolved,
		accessor: NewAccessor(sections),
	}, nil
}

// Sections returns a copy of the typed sections.
func (s *Snapshot) Sections() Sections { return s.sections }

// Resolved returns the validated environment the snapshot was built from.
func (s *Snapshot) Resolved() ResolvedEnvironment { return s.resolved }

// Accessor returns the namespaced lookup surface.
func (s *Snapshot) Accessor() *Accessor { return s.accessor }

// Discover layers process over the env file at path (chosen from NODE_ENV
// when empty) and loads a snapshot from the result. The returned path is the
// env file that was consulted, whether or not it existed.
func Discover(process EnvSource, path string) (*Snapshot, string, error) {
	env, resolvedPath, err := DiscoverEnv(process, path)
	if err != nil {
		return nil, resolvedPath, err
	}
	snap, err := Load(env)
	return snap, resolvedPath, err
}

// FileLoader returns a LoadFunc that re-reads the env file at path on every
// call, for use with Holder.
func FileLoader(process EnvSource, path string) LoadFunc {
	return func() (*Snapshot, error) {
		snap, _, err := Discover(process, path)
		return snap, err
	}
}
