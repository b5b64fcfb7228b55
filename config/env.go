package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvString reads a string environment variable. ok is false when the
// variable is unset or empty.
func EnvString(name string) (string, bool) {
	value := os.Getenv(name)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt reads an integer environment variable.
func EnvInt(name string) (int, bool, error) {
	raw, ok := EnvString(name)
	if !ok {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return value, true, nil
}

// EnvDuration reads a duration environment variable in time.ParseDuration
// syntax.
func EnvDuration(name string) (time.Duration, bool, error) {
	raw, ok := EnvString(name)
	if !ok {
		return 0, false, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be a duration like 30s, got %q", name, raw)
	}
	return value, true, nil
}
