// Package config implements fail-open environment loading: a value that
// does not parse or validate is replaced by its default and reported as a
// warning instead of an error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Result is the outcome of loading one variable.
type Result[T any] struct {
	Value           T
	Warning         string
	FallbackApplied bool
}

// Load reads envKey, parses it and validates it. Unset or empty variables
// yield def without a warning. parse and validate may be nil.
func Load[T any](envKey string, def T, parse func(string) (T, error), validate func(T) error) Result[T] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return Result[T]{Value: def}
	}

	fallback := func(err error) Result[T] {
		return Result[T]{
			Value:           def,
			Warning:         fmt.Sprintf("invalid %s=%q: %v, falling back to default %v", envKey, raw, err, def),
			FallbackApplied: true,
		}
	}

	var value T
	if parse == nil {
		s, ok := any(raw).(T)
		if !ok {
			return fallback(fmt.Errorf("no parser for %T", def))
		}
		value = s
	} else {
		v, err := parse(raw)
		if err != nil {
			return fallback(err)
		}
		value = v
	}

	if validate != nil {
		if err := validate(value); err != nil {
			return fallback(err)
		}
	}
	return Result[T]{Value: value}
}

// LoadString loads a string variable.
func LoadString(envKey, def string, validate func(string) error) Result[string] {
	return Load(envKey, def, nil, validate)
}

// LoadInt loads a base-10 integer variable.
func LoadInt(envKey string, def int, validate func(int) error) Result[int] {
	return Load(envKey, def, strconv.Atoi, validate)
}

// LoadDuration loads a variable in time.ParseDuration syntax.
func LoadDuration(envKey string, def time.Duration, validate func(time.Duration) error) Result[time.Duration] {
	return Load(envKey, def, time.ParseDuration, validate)
}

// LoadBool loads a variable in strconv.ParseBool syntax.
func LoadBool(envKey string, def bool) Result[bool] {
	return Load(envKey, def, strconv.ParseBool, nil)
}
