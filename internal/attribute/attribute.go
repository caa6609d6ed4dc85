// Package attribute provides the immutable attribute and value primitives
// shared by the filtering engine and its matchers.
package attribute

import (
	"fmt"
	"regexp"
)

// Attribute is an identified, ordered collection of values. Attributes are
// immutable once built and safe for concurrent use; accessors return copies.
type Attribute struct {
	id     string
	values []Value
}

// New creates an attribute. The id is required; an empty value list is legal.
func New(id string, values ...Value) (*Attribute, error) {
	if id == "" {
		return nil, fmt.Errorf("attribute id is required")
	}
	vs := make([]Value, len(values))
	copy(vs, values)
	return &Attribute{id: id, values: vs}, nil
}

// NewFromStrings creates an attribute whose values are plain string values.
func NewFromStrings(id string, values ...string) (*Attribute, error) {
	vs := make([]Value, 0, len(values))
	for _, s := range values {
		vs = append(vs, NewStringValue(s))
	}
	return New(id, vs...)
}

// ID returns the attribute identifier.
func (a *Attribute) ID() string {
	return a.id
}

// Values returns a copy of the attribute's values in their original order.
func (a *Attribute) Values() []Value {
	vs := make([]Value, len(a.values))
	copy(vs, a.values)
	return vs
}

// Len returns the number of values.
func (a *Attribute) Len() int {
	return len(a.values)
}

// Contains reports whether v is one of the attribute's values.
func (a *Attribute) Contains(v Value) bool {
	for _, have := range a.values {
		if have == v {
			return true
		}
	}
	return false
}

// WithValues returns a new attribute with the same id and the given values.
func (a *Attribute) WithValues(values ...Value) *Attribute {
	vs := make([]Value, len(values))
	copy(vs, values)
	return &Attribute{id: a.id, values: vs}
}

// Map is a collection of attributes keyed by id.
type Map map[string]*Attribute

// Clone returns a shallow copy of the map. Attributes are immutable, so
// sharing them between copies is safe.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for id, attr := range m {
		out[id] = attr
	}
	return out
}

// CompileMatchPattern compiles a regular expression for whole-string
// matching. The pattern is anchored so that a match must cover the entire
// candidate string; an unanchored partial match is not a match.
func CompileMatchPattern(pattern string, ignoreCase bool) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("pattern is required")
	}
	anchored := `\A(?:` + pattern + `)\z`
	if ignoreCase {
		anchored = `(?i)` + anchored
	}
	re, err := regexp.Compile(anchored)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return re, nil
}
