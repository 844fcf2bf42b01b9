// SPDX-License-Identifier: MIT

// validate checks the snippets environment without starting the server.
//
// Usage:
//
//	validate [-env-file path] [-q]
//
// Exit codes:
//   - 0: Environment is valid
//   - 1: Environment is invalid
//   - 2: Usage error or unreadable env file
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ManuGH/snippets/internal/config"
	xglog "github.com/ManuGH/snippets/internal/log"
	"github.com/ManuGH/snippets/internal/validate"
	"github.com/ManuGH/snippets/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], config.OSEnv(), os.Stdout, os.Stderr))
}

func run(args []string, env config.EnvSource, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("validate", flag.ContinueOnError)
	flags.SetOutput(stderr)
	envFile := flags.String("env-file", "", "path to env file (default: .env in production, .env.dev otherwise)")
	quiet := flags.Bool("q", false, "only report errors")
	showVersion := flags.Bool("version", false, "print version and exit")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() > 0 {
		_, _ = fmt.Fprintf(stderr, "Error: unexpected argument %q\n", flags.Arg(0))
		return 2
	}
	if *showVersion {
		_, _ = fmt.Fprintln(stdout, version.String())
		return 0
	}

	xglog.Configure(xglog.Config{Level: "error", Output: stderr, Service: "snippets-validate"})

	snap, path, err := config.Discover(env, *envFile)
	if err != nil {
		var verr validate.ValidationError
		if !errors.As(err, &verr) {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		config.WriteReport(stderr, err)
		return 1
	}

	if !*quiet {
		printSummary(stdout, snap, path)
	}
	return 0
}

func printSummary(w io.Writer, snap *config.Snapshot, path string) {
	_, _ = fmt.Fprintf(w, "✓ environment is valid (env file: %s)\n", path)

	masked := snap.Masked()
	paths := make([]string, 0, len(masked))
	for p := range masked {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	resolved := snap.Resolved()
	sources := make(map[string]string, len(resolved.Schema()))
	for _, k := range resolved.Schema() {
		sources[k.Path] = "unset"
		if _, ok := resolved.Get(k.Name); ok {
			sources[k.Path] = string(resolved.Source(k.Name))
		}
	}
	for _, p := range paths {
		src, ok := sources[p]
		if !ok {
			src = "derived"
		}
		_, _ = fmt.Fprintf(w, "  %-26s %-24v (%s)\n", p, masked[p], src)
	}
}
