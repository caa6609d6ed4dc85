package attribute

import (
	"fmt"
	"strings"
)

// ScopeDelimiter separates the value and scope parts of a scoped value's
// raw form, e.g. "jsmith@example.org".
const ScopeDelimiter = "@"

// Value is one unit of attribute data. Implementations are small comparable
// structs, so values can be used directly as map keys when building sets.
type Value interface {
	// Raw returns the canonical string form used for comparison.
	Raw() string
}

// StringValue is a plain string attribute value.
type StringValue struct {
	value string
}

// NewStringValue creates a string value.
func NewStringValue(value string) StringValue {
	return StringValue{value: value}
}

// Raw implements Value.
func (v StringValue) Raw() string {
	return v.value
}

func (v StringValue) String() string {
	return v.value
}

// ScopedValue is a string value qualified by a scope, such as a security
// domain. The raw form joins both parts with ScopeDelimiter.
type ScopedValue struct {
	value string
	scope string
}

// NewScopedValue creates a scoped value from its two parts.
func NewScopedValue(value, scope string) ScopedValue {
	return ScopedValue{value: value, scope: scope}
}

// ParseScopedValue splits a raw string on the last ScopeDelimiter.
// It reports false if the string has no delimiter or an empty part.
func ParseScopedValue(raw string) (ScopedValue, bool) {
	idx := strings.LastIndex(raw, ScopeDelimiter)
	if idx <= 0 || idx == len(raw)-1 {
		return ScopedValue{}, false
	}
	return ScopedValue{value: raw[:idx], scope: raw[idx+1:]}, true
}

// Raw implements Value.
func (v ScopedValue) Raw() string {
	return v.value + ScopeDelimiter + v.scope
}

// Value returns the part before the scope delimiter.
func (v ScopedValue) Value() string {
	return v.value
}

// Scope returns the part after the scope delimiter.
func (v ScopedValue) Scope() string {
	return v.scope
}

func (v ScopedValue) String() string {
	return fmt.Sprintf("%s%s%s", v.value, ScopeDelimiter, v.scope)
}
