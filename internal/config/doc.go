// SPDX-License-Identifier: MIT

// Package config provides typed, validated configuration for snippets.
//
// Startup runs in one direction: an EnvSource is validated against the
// canonical Schema, producing an immutable ResolvedEnvironment; Build turns
// that into typed Sections; an Accessor serves namespaced lookups such as
// "database.host". Nothing in this package writes to the process environment.
package config
