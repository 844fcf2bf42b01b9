// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrTypeCoercion means a validated value could not be converted to its
// target type. It signals a schema/validator inconsistency, never user input.
var ErrTypeCoercion = errors.New("config type coercion failed")

const tagName = "config"

// Build materializes typed Sections from a validated environment. It is
// deterministic: the same ResolvedEnvironment always yields equal Sections.
func Build(resolved ResolvedEnvironment) (Sections, error) {
	var out Sections
	schema := resolved.Schema()
	if schema == nil {
		return Sections{}, fmt.Errorf("%w: resolved environment carries no schema", ErrTypeCoercion)
	}

	root := reflect.ValueOf(&out).Elem()
	for _, key := range schema {
		raw, ok := resolved.Get(key.Name)
		if !ok {
			if key.Required {
				return Sections{}, fmt.Errorf("%w: required key %s missing from validated environment", ErrTypeCoercion, key.Name)
			}
			// Optional without default: the zero value stands.
			continue
		}

		val, err := coerce(key, raw)
		if err != nil {
			return Sections{}, fmt.Errorf("%w: %v", ErrTypeCoercion, err)
		}
		if err := setField(root, key.Path, val); err != nil {
			return Sections{}, fmt.Errorf("%w: %s: %v", ErrTypeCoercion, key.Name, err)
		}
	}

	derive(&out)
	return out, nil
}

// derive computes fields that have no environment key.
func derive(s *Sections) {
	s.Database.SSL = s.App.IsProduction()
}

// setField assigns val to the leaf addressed by "section.field".
func setField(root reflect.Value, path string, val Value) error {
	section, field, ok := strings.Cut(path, ".")
	if !ok {
		return fmt.Errorf("malformed path %q", path)
	}

	sv, ok := fieldByTag(root, section)
	if !ok {
		return fmt.Errorf("section %q not found", section)
	}
	f, ok := fieldByTag(sv, field)
	if !ok {
		return fmt.Errorf("field %q not found", path)
	}

	switch f.Kind() {
	case reflect.String:
		s, ok := val.AsString()
		if !ok {
			return fmt.Errorf("type mismatch for %s: expected string, got %s", path, val.Kind())
		}
		f.SetString(s)
	case reflect.Int:
		n, ok := val.AsInt()
		if !ok {
			return fmt.Errorf("type mismatch for %s: expected int, got %s", path, val.Kind())
		}
		f.SetInt(int64(n))
	case reflect.Bool:
		b, ok := val.AsBool()
		if !ok {
			return fmt.Errorf("type mismatch for %s: expected bool, got %s", path, val.Kind())
		}
		f.SetBool(b)
	default:
		return fmt.Errorf("unsupported field kind %s for %s", f.Kind(), path)
	}
	return nil
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tagged, _ := parseTag(t.Field(i))
		if tagged == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func parseTag(f reflect.StructField) (name string, derived bool) {
	tag := f.Tag.Get(tagName)
	name, opts, _ := strings.Cut(tag, ",")
	return name, opts == "derived"
}

// ValidateFieldCoverage ensures every non-derived leaf of Sections is bound to
// exactly one schema key, and every schema path names a real leaf.
func (s Schema) ValidateFieldCoverage() error {
	byPath := make(map[string]Key, len(s))
	for _, k := range s {
		byPath[k.Path] = k
	}

	seen := make(map[string]struct{}, len(s))
	st := reflect.TypeOf(Sections{})
	for i := 0; i < st.NumField(); i++ {
		sec, _ := parseTag(st.Field(i))
		ft := st.Field(i).Type
		for j := 0; j < ft.NumField(); j++ {
			name, derived := parseTag(ft.Field(j))
			path := sec + "." + name
			if derived {
				if _, ok := byPath[path]; ok {
					return fmt.Errorf("%w: derived field %s must not be bound to an environment key", ErrSchemaInvalid, path)
				}
				continue
			}
			k, ok := byPath[path]
			if !ok {
				return fmt.Errorf("%w: field %s is not registered in the schema", ErrSchemaInvalid, path)
			}
			if want := kindOf(ft.Field(j).Type); want != k.Kind {
				return fmt.Errorf("%w: key %s declares %s but field %s is %s", ErrSchemaInvalid, k.Name, k.Kind, path, want)
			}
			seen[path] = struct{}{}
		}
	}

	for _, k := range s {
		if _, ok := seen[k.Path]; !ok {
			return fmt.Errorf("%w: key %s targets unknown field %s", ErrSchemaInvalid, k.Name, k.Path)
		}
	}
	return nil
}

func kindOf(t reflect.Type) Kind {
	switch t.Kind() {
	case reflect.Int:
		return KindInt
	case reflect.Bool:
		return KindBool
	default:
		return KindString
	}
}
