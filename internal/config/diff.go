// SPDX-License-Identifier: MIT

package config

const maskedValue = "***"

// Change is one path whose value differs between two snapshots.
type Change struct {
	Path string
	Old  string
	New  string
}

// Diff compares two snapshots path by path. Values of sensitive keys are masked.
func Diff(old, next *Snapshot) []Change {
	if old == nil || next == nil {
		return nil
	}
	sensitive := sensitivePaths(next.resolved.Schema())

	var changes []Change
	for _, path := range next.accessor.Paths() {
		nv, _ := next.accessor.Lookup(path)
		ov, err := old.accessor.Lookup(path)
		if err == nil && ov == nv {
			continue
		}

		c := Change{Path: path, New: nv.String()}
		if err == nil {
			c.Old = ov.String()
		}
		if _, ok := sensitive[path]; ok {
			c.Old, c.New = maskedValue, maskedValue
		}
		changes = append(changes, c)
	}
	return changes
}

func sensitivePaths(schema Schema) map[string]struct{} {
	out := make(map[string]struct{})
	for _, k := range schema {
		if k.Sensitive {
			out[k.Path] = struct{}{}
		}
	}
	return out
}

// Masked returns every path of the snapshot with its typed value, replacing
// sensitive values with a fixed mask.
func (s *Snapshot) Masked() map[string]any {
	sensitive := sensitivePaths(s.resolved.Schema())
	out := make(map[string]any, len(s.accessor.values))
	for path, v := range s.accessor.values {
		if _, ok := sensitive[path]; ok {
			out[path] = maskedValue
			continue
		}
		out[path] = v.Any()
	}
	return out
}
