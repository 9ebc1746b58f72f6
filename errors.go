package marshmallow

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MarshalError is a field-level marshaling failure: a coercion, format,
// validation, or missing-required error for a single field. In non-strict
// mode these are collected into an ErrorMap; in strict mode the first one
// aborts the marshal and is returned to the caller.
type MarshalError struct {
	Msg string
	// Underlying preserves the low-level failure (a cast error, a lookup
	// failure) for diagnostics when one exists.
	Underlying error
}

func (e *MarshalError) Error() string { return e.Msg }

func (e *MarshalError) Unwrap() error { return e.Underlying }

func marshalErr(msg string, cause error) *MarshalError {
	return &MarshalError{Msg: msg, Underlying: cause}
}

// ConfigError reports a broken schema or caller contract: invalid option
// combinations, unresolvable field names, malformed field declarations,
// or a collection passed where a single object was expected. It always
// surfaces immediately regardless of strict mode and is never collected.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

func configErrf(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// AsMarshalError extracts a *MarshalError using errors.As internally.
func AsMarshalError(err error) (*MarshalError, bool) {
	var me *MarshalError
	if errors.As(err, &me) {
		return me, true
	}
	return nil, false
}

// AsConfigError extracts a *ConfigError using errors.As internally.
func AsConfigError(err error) (*ConfigError, bool) {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// ErrorMap is the error mapping produced by a marshal pass. Values are
// message strings for flat fields, nested ErrorMaps for Nested fields, and
// index-keyed ErrorMaps for List fields, so the mapping mirrors the schema
// shape exactly. An empty map means the pass was clean.
type ErrorMap map[string]any

// Error summarizes the first few entries in key order.
func (em ErrorMap) Error() string {
	if len(em) == 0 {
		return ""
	}
	keys := make([]string, 0, len(em))
	for k := range em {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	const maxShown = 3
	lim := len(keys)
	if lim > maxShown {
		lim = maxShown
	}
	b := &strings.Builder{}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s: %v", keys[i], em[keys[i]])
	}
	if len(keys) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(keys))
	}
	return b.String()
}

// Has reports whether the named field has a recorded error.
func (em ErrorMap) Has(name string) bool {
	_, ok := em[name]
	return ok
}

// Nested returns the child ErrorMap recorded under name, or nil when the
// entry is absent or flat.
func (em ErrorMap) Nested(name string) ErrorMap {
	child, _ := em[name].(ErrorMap)
	return child
}
