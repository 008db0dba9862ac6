package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/portal-sdk/portal-sdk-go/domain/errors"
)

// Overrides holds loose key-value settings, e.g. from repeated --set flags.
type Overrides = map[string]any

// ParseOverrides turns "key=value" pairs into Overrides. Values that parse as
// integers or booleans are stored with that type.
func ParseOverrides(pairs []string) (Overrides, error) {
	out := make(Overrides, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &errors.ValidationError{
				Field: pair,
				Err:   fmt.Errorf("expected key=value"),
			}
		}
		if n, err := strconv.Atoi(value); err == nil {
			out[key] = n
			continue
		}
		if b, err := strconv.ParseBool(value); err == nil {
			out[key] = b
			continue
		}
		out[key] = value
	}
	return out, nil
}

// GetString extracts a string from overrides, returning (value, found).
func GetString(o Overrides, key string) (string, bool) {
	v, ok := o[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt extracts an int from overrides, handling int, int64, and float64.
func GetInt(o Overrides, key string) (int, bool) {
	v, ok := o[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// GetBool extracts a bool from overrides, returning (value, found).
func GetBool(o Overrides, key string) (bool, bool) {
	v, ok := o[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// MustGetString extracts a required string from overrides or returns error.
func MustGetString(o Overrides, key string) (string, error) {
	s, ok := GetString(o, key)
	if !ok {
		return "", &errors.ValidationError{
			Field: key,
			Err:   fmt.Errorf("required string field '%s' is missing or not a string", key),
		}
	}
	return s, nil
}
