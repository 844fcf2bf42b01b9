// SPDX-License-Identifier: MIT

package migrate

import "strconv"

// Dialect captures the SQL differences between supported databases.
type Dialect struct {
	Name string
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
	// Lock and Unlock serialize concurrent runners; empty disables locking.
	Lock   string
	Unlock string
}

// migrationLockID is an arbitrary constant key for pg_advisory_lock.
const migrationLockID = 731652084

// PostgresDialect uses $n placeholders and a session advisory lock.
var PostgresDialect = Dialect{
	Name:        "postgres",
	Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	Lock:        "SELECT pg_advisory_lock(" + strconv.Itoa(migrationLockID) + ")",
	Unlock:      "SELECT pg_advisory_unlock(" + strconv.Itoa(migrationLockID) + ")",
}

// SQLiteDialect uses ? placeholders. SQLite serializes writers itself.
var SQLiteDialect = Dialect{
	Name:        "sqlite",
	Placeholder: func(int) string { return "?" },
}
