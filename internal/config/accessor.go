// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

var (
	// ErrLookupNotFound is returned for a namespaced key that was never registered.
	ErrLookupNotFound = errors.New("config key not found")
	// ErrTypeMismatch is returned when a typed getter is used on a key of another kind.
	ErrTypeMismatch = errors.New("config type mismatch")
)

// Accessor is the read-only lookup surface over a Sections value. It is built
// once and never mutated, so concurrent readers need no locking.
type Accessor struct {
	values map[string]Value
}

// NewAccessor indexes every leaf of s by "section.field".
func NewAccessor(s Sections) *Accessor {
	a := &Accessor{values: make(map[string]Value)}

	root := reflect.ValueOf(s)
	rt := root.Type()
	for i := 0; i < rt.NumField(); i++ {
		sec, _ := parseTag(rt.Field(i))
		sv := root.Field(i)
		st := sv.Type()
		for j := 0; j < st.NumField(); j++ {
			name, _ := parseTag(st.Field(j))
			f := sv.Field(j)
			var v Value
			switch f.Kind() {
			case reflect.Int:
				v = intValue(int(f.Int()))
			case reflect.Bool:
				v = boolValue(f.Bool())
			default:
				v = stringValue(f.String())
			}
			a.values[sec+"."+name] = v
		}
	}
	return a
}

// Get returns the value of section.field.
func (a *Accessor) Get(section, field string) (Value, error) {
	return a.Lookup(section + "." + field)
}

// Lookup returns the value at a dotted path such as "database.host".
func (a *Accessor) Lookup(path string) (Value, error) {
	v, ok := a.values[path]
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrLookupNotFound, path)
	}
	return v, nil
}

// String returns section.field as a string.
func (a *Accessor) String(section, field string) (string, error) {
	v, err := a.Get(section, field)
	if err != nil {
		return "", err
	}
	s, ok := v.AsString()
	if !ok {
		return "", fmt.Errorf("%w: %s.%s is %s, not string", ErrTypeMismatch, section, field, v.Kind())
	}
	return s, nil
}

// Int returns section.field as an int.
func (a *Accessor) Int(section, field string) (int, error) {
	v, err := a.Get(section, field)
	if err != nil {
		return 0, err
	}
	n, ok := v.AsInt()
	if !ok {
		return 0, fmt.Errorf("%w: %s.%s is %s, not int", ErrTypeMismatch, section, field, v.Kind())
	}
	return n, nil
}

// Bool returns section.field as a bool.
func (a *Accessor) Bool(section, field string) (bool, error) {
	v, err := a.Get(section, field)
	if err != nil {
		return false, err
	}
	b, ok := v.AsBool()
	if !ok {
		return false, fmt.Errorf("%w: %s.%s is %s, not bool", ErrTypeMismatch, section, field, v.Kind())
	}
	return b, nil
}

// Paths lists every registered path in sorted order.
func (a *Accessor) Paths() []string {
	out := make([]string, 0, len(a.values))
	for p := range a.values {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
