// SPDX-License-Identifier: MIT

package config

import "sort"

// ResolvedEnvironment is the validated view of the environment: every schema
// key that is present or defaulted, with its raw value and origin. It has no
// mutators; Validate is the only constructor.
type ResolvedEnvironment struct {
	schema  Schema
	values  map[string]string
	sources map[string]Source
}

// Get returns the raw resolved value for an environment key.
func (r ResolvedEnvironment) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Source reports where key was resolved from.
func (r ResolvedEnvironment) Source(key string) Source {
	return r.sources[key]
}

// Keys returns the resolved keys in sorted order.
func (r ResolvedEnvironment) Keys() []string {
	keys := make([]string, 0, len(r.values))
	for k := range r.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Schema returns the schema the environment was validated against.
func (r ResolvedEnvironment) Schema() Schema {
	return r.schema
}

// Len returns the number of resolved keys.
func (r ResolvedEnvironment) Len() int {
	return len(r.values)
}
