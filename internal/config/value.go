// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"strconv"
)

// Value is a typed configuration value. Exactly one payload is meaningful,
// selected by Kind.
type Value struct {
	kind Kind
	str  string
	num  int
	flag bool
}

func stringValue(s string) Value { return Value{kind: KindString, str: s} }
func intValue(n int) Value       { return Value{kind: KindInt, num: n} }
func boolValue(b bool) Value     { return Value{kind: KindBool, flag: b} }

// Kind returns the value's type.
func (v Value) Kind() Kind { return v.kind }

// AsString returns the payload if v is a string.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsInt returns the payload if v is an int.
func (v Value) AsInt() (int, bool) { return v.num, v.kind == KindInt }

// AsBool returns the payload if v is a bool.
func (v Value) AsBool() (bool, bool) { return v.flag, v.kind == KindBool }

// Any returns the payload as an interface value.
func (v Value) Any() any {
	switch v.kind {
	case KindInt:
		return v.num
	case KindBool:
		return v.flag
	default:
		return v.str
	}
}

// String renders the payload the way it would appear in the environment.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.Itoa(v.num)
	case KindBool:
		return strconv.FormatBool(v.flag)
	default:
		return v.str
	}
}

// coerce converts a raw environment string to the key's target type.
func coerce(key Key, raw string) (Value, error) {
	switch key.Kind {
	case KindString:
		return stringValue(raw), nil
	case KindInt:
		n, err := parseInt(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%s is not a base-10 integer", key.Name)
		}
		return intValue(n), nil
	case KindBool:
		b, err := parseBool(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%s is not \"true\" or \"false\"", key.Name)
		}
		return boolValue(b), nil
	default:
		return Value{}, fmt.Errorf("%s has unsupported kind %s", key.Name, key.Kind)
	}
}
