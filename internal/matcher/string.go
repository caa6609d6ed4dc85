package matcher

import (
	"fmt"
	"strings"

	"github.com/project-kessel/attrfilter/internal/attribute"
	"github.com/project-kessel/attrfilter/internal/filter"
)

// String permits values whose raw form equals a configured literal.
// Comparison is case-sensitive unless IgnoreCase is set.
type String struct {
	value      string
	ignoreCase bool
}

// StringConfig configures a String matcher.
type StringConfig struct {
	// Value is the literal to compare against.
	Value string

	// IgnoreCase makes the comparison case-insensitive.
	IgnoreCase bool
}

// NewString creates a literal string matcher.
func NewString(cfg StringConfig) (*String, error) {
	if cfg.Value == "" {
		return nil, fmt.Errorf("%w: string matcher requires a value", filter.ErrInvalidConfiguration)
	}
	return &String{value: cfg.Value, ignoreCase: cfg.IgnoreCase}, nil
}

func (m *String) matches(raw string) bool {
	if m.ignoreCase {
		return strings.EqualFold(raw, m.value)
	}
	return raw == m.value
}

// Values implements filter.Matcher.
func (m *String) Values(attr *attribute.Attribute, ctx *filter.Context) ([]attribute.Value, error) {
	if err := checkInputs(attr, ctx); err != nil {
		return nil, err
	}
	var out []attribute.Value
	for _, v := range attr.Values() {
		if m.matches(v.Raw()) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Scope permits scoped values whose scope part equals a configured literal.
// Values without a scope never match.
type Scope struct {
	scope      string
	ignoreCase bool
}

// NewScope creates a scope matcher.
func NewScope(cfg StringConfig) (*Scope, error) {
	if cfg.Value == "" {
		return nil, fmt.Errorf("%w: scope matcher requires a value", filter.ErrInvalidConfiguration)
	}
	return &Scope{scope: cfg.Value, ignoreCase: cfg.IgnoreCase}, nil
}

// Values implements filter.Matcher.
func (m *Scope) Values(attr *attribute.Attribute, ctx *filter.Context) ([]attribute.Value, error) {
	if err := checkInputs(attr, ctx); err != nil {
		return nil, err
	}
	var out []attribute.Value
	for _, v := range attr.Values() {
		scoped, ok := v.(attribute.ScopedValue)
		if !ok {
			continue
		}
		if m.ignoreCase {
			if strings.EqualFold(scoped.Scope(), m.scope) {
				out = append(out, v)
			}
		} else if scoped.Scope() == m.scope {
			out = append(out, v)
		}
	}
	return out, nil
}
