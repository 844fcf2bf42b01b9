// SPDX-License-Identifier: MIT

package migrate

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidSource reports a malformed or inconsistent migration directory.
var ErrInvalidSource = errors.New("invalid migration source")

// Migration is one versioned schema change.
type Migration struct {
	Version  int64
	Name     string
	Up       string
	Down     string // empty when the migration cannot be reverted
	Checksum string // sha256 of Up
}

// ID renders the migration as "<version>_<name>".
func (m Migration) ID() string {
	return fmt.Sprintf("%d_%s", m.Version, m.Name)
}

// Load reads "<version>_<name>.up.sql" and "<version>_<name>.down.sql" files
// from the root of fsys and returns them sorted by version. Other files are
// ignored.
func Load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := make(map[int64]*Migration)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		version, name, direction, ok := parseFilename(e.Name())
		if !ok {
			continue
		}

		body, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}

		m, exists := byVersion[version]
		if !exists {
			m = &Migration{Version: version, Name: name}
			byVersion[version] = m
		} else if m.Name != name {
			return nil, fmt.Errorf("%w: version %d used by %q and %q", ErrInvalidSource, version, m.Name, name)
		}

		switch direction {
		case "up":
			if m.Up != "" {
				return nil, fmt.Errorf("%w: duplicate up migration for version %d", ErrInvalidSource, version)
			}
			m.Up = string(body)
		case "down":
			m.Down = string(body)
		}
	}

	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if strings.TrimSpace(m.Up) == "" {
			return nil, fmt.Errorf("%w: migration %s has no up script", ErrInvalidSource, m.ID())
		}
		sum := sha256.Sum256([]byte(m.Up))
		m.Checksum = hex.EncodeToString(sum[:])
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// parseFilename splits "0001_create_snippets.up.sql".
func parseFilename(filename string) (version int64, name, direction string, ok bool) {
	base := path.Base(filename)
	if !strings.HasSuffix(base, ".sql") {
		return 0, "", "", false
	}
	stem := strings.TrimSuffix(base, ".sql")

	switch {
	case strings.HasSuffix(stem, ".up"):
		direction, stem = "up", strings.TrimSuffix(stem, ".up")
	case strings.HasSuffix(stem, ".down"):
		direction, stem = "down", strings.TrimSuffix(stem, ".down")
	default:
		return 0, "", "", false
	}

	rawVersion, name, found := strings.Cut(stem, "_")
	if !found || name == "" {
		return 0, "", "", false
	}
	version, err := strconv.ParseInt(rawVersion, 10, 64)
	if err != nil || version <= 0 {
		return 0, "", "", false
	}
	return version, name, direction, true
}
