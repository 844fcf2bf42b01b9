// SPDX-License-Identifier: MIT

// Package version carries build metadata injected with -ldflags.
package version

import "fmt"

var (
	// Version is the current application version.
	Version = "dev"

	// Commit is the git short hash of the build.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// String renders version, commit and date for -version output.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
