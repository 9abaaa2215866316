package nested

import (
	"errors"
	"fmt"
	"strings"
)

// Map is a decoded JSON object. Values are either Map, []interface{} or
// scalars as produced by encoding/json.
type Map = map[string]interface{}

// ErrEmptyPath is returned when a traversal is requested without any key
var ErrEmptyPath = errors.New("nested: empty key path")

// KeyNotFoundError identifies the single path segment that could not be
// resolved, not the full path.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key not found: %q", e.Key)
}

// TypeError is returned by As when the value at the end of a path exists but
// has an unexpected type.
type TypeError struct {
	Path  []string
	Value interface{}
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("unexpected type %T at %q", e.Value, strings.Join(e.Path, "."))
}

// Access walks m following path and returns the value found at its end. The
// walk stops at the first key that is absent, or whose parent is not an
// object, and reports that key.
func Access(m Map, path ...string) (interface{}, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}

	var current interface{} = m
	for _, key := range path {
		obj, ok := current.(Map)
		if !ok {
			return nil, &KeyNotFoundError{Key: key}
		}

		current, ok = obj[key]
		if !ok {
			return nil, &KeyNotFoundError{Key: key}
		}
	}

	return current, nil
}

// As is Access followed by a type assertion to T
func As[T any](m Map, path ...string) (T, error) {
	var zero T

	v, err := Access(m, path...)
	if err != nil {
		return zero, err
	}

	t, ok := v.(T)
	if !ok {
		return zero, &TypeError{Path: path, Value: v}
	}

	return t, nil
}

// ParsePath splits a dotted path such as "license.key" into its keys. Empty
// segments are dropped.
func ParsePath(s string) []string {
	var path []string
	for _, key := range strings.Split(s, ".") {
		if key == "" {
			continue
		}
		path = append(path, key)
	}
	return path
}
