// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"strconv"
	"strings"
)

// OneOf accepts exactly one of the listed values (case-sensitive).
func OneOf(allowed ...string) Predicate {
	return func(raw string) error {
		for _, a := range allowed {
			if raw == a {
				return nil
			}
		}
		return fmt.Errorf("must be one of %s", strings.Join(allowed, ", "))
	}
}

// Int accepts base-10 integers, the same grammar Build uses to coerce.
func Int() Predicate {
	return func(raw string) error {
		if _, err := parseInt(raw); err != nil {
			return fmt.Errorf("must be a base-10 integer")
		}
		return nil
	}
}

// IntRange accepts base-10 integers within [minVal, maxVal].
func IntRange(minVal, maxVal int) Predicate {
	isInt := Int()
	return func(raw string) error {
		if err := isInt(raw); err != nil {
			return err
		}
		n, _ := parseInt(raw)
		if n < minVal || n > maxVal {
			return fmt.Errorf("must be between %d and %d", minVal, maxVal)
		}
		return nil
	}
}

// Port accepts TCP port numbers (1-65535).
func Port() Predicate {
	return IntRange(1, 65535)
}

// Bool accepts only the literals "true" and "false".
func Bool() Predicate {
	return OneOf("true", "false")
}

func parseInt(raw string) (int, error) {
	return strconv.Atoi(raw)
}

func parseBool(raw string) (bool, error) {
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean literal")
	}
}
