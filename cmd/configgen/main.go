// SPDX-License-Identifier: MIT

// configgen writes a documented .env.example from the canonical environment
// schema. With -check it only reports whether the file is up to date.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/ManuGH/snippets/internal/config"
	"github.com/google/renameio/v2"
)

const header = `# Snippets environment configuration.
# Generated by cmd/configgen from the canonical schema; do not edit by hand.
# Process environment variables take precedence over this file.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("configgen", flag.ContinueOnError)
	flags.SetOutput(stderr)
	out := flags.String("o", ".env.example", "output path")
	check := flags.Bool("check", false, "exit 1 if the output file is missing or stale instead of writing it")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	schema := config.CanonicalSchema()
	if err := schema.Check(); err != nil {
		return fail(stderr, err)
	}
	content := render(schema)

	if *check {
		current, err := os.ReadFile(*out)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fail(stderr, err)
		}
		if !bytes.Equal(current, content) {
			_, _ = fmt.Fprintf(stderr, "configgen: %s is out of date; run configgen\n", *out)
			return 1
		}
		_, _ = fmt.Fprintf(stdout, "%s is up to date\n", *out)
		return 0
	}

	if err := renameio.WriteFile(*out, content, 0o644); err != nil {
		return fail(stderr, fmt.Errorf("write %s: %w", *out, err))
	}
	_, _ = fmt.Fprintf(stdout, "wrote %s (%d keys)\n", *out, len(schema))
	return 0
}

func fail(w io.Writer, err error) int {
	_, _ = fmt.Fprintf(w, "configgen: %v\n", err)
	return 1
}

// render emits one commented block per key, grouped by section in declaration
// order. Sensitive keys are left blank; optional keys without a default are
// commented out.
func render(schema config.Schema) []byte {
	var b bytes.Buffer
	b.WriteString(header)

	section := ""
	for _, k := range schema {
		if s := k.Section(); s != section {
			section = s
			fmt.Fprintf(&b, "\n# --- %s ---\n", section)
		}

		fmt.Fprintf(&b, "\n# %s (%s, %s)\n", k.Description, k.Path, k.Kind)
		switch {
		case k.Required:
			b.WriteString("# Required.\n")
		case k.HasDefault:
			fmt.Fprintf(&b, "# Default: %s\n", k.Default)
		}

		value := ""
		if k.HasDefault && !k.Sensitive {
			value = k.Default
		}
		if !k.Required && !k.HasDefault {
			fmt.Fprintf(&b, "# %s=\n", k.Name)
			continue
		}
		fmt.Fprintf(&b, "%s=%s\n", k.Name, value)
	}
	return b.Bytes()
}
