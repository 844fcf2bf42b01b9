// SPDX-License-Identifier: MIT

// Package migrations embeds the Postgres schema migrations.
package migrations

import "embed"

// FS holds every *.up.sql / *.down.sql file in this directory.
//
//go:embed *.sql
var FS embed.FS
