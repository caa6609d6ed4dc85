package matcher

import (
	"fmt"

	"github.com/project-kessel/attrfilter/internal/attribute"
	"github.com/project-kessel/attrfilter/internal/filter"
)

// MatchFunc is an externally supplied matching capability. Implementations
// live outside the core; the Scripted adapter makes them safe to plug in.
type MatchFunc func(attr *attribute.Attribute, ctx *filter.Context) ([]attribute.Value, error)

// Scripted adapts an external callback to the matcher contract. It enforces
// the parts of the contract the callback cannot be trusted with: input
// validation and the subset property. Values the callback returns that are
// not values of the attribute are silently discarded.
type Scripted struct {
	name string
	fn   MatchFunc
}

// NewScripted creates a scripted matcher adapter. The name identifies the
// script in error messages and logs.
func NewScripted(name string, fn MatchFunc) (*Scripted, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: scripted matcher requires a name", filter.ErrInvalidConfiguration)
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: scripted matcher %s requires a match function", filter.ErrInvalidConfiguration, name)
	}
	return &Scripted{name: name, fn: fn}, nil
}

// Name returns the script identifier.
func (m *Scripted) Name() string {
	return m.name
}

// Values implements filter.Matcher.
func (m *Scripted) Values(attr *attribute.Attribute, ctx *filter.Context) ([]attribute.Value, error) {
	if err := checkInputs(attr, ctx); err != nil {
		return nil, err
	}

	values, err := m.fn(attr, ctx)
	if err != nil {
		return nil, fmt.Errorf("scripted matcher %s: %w", m.name, err)
	}

	seen := make(map[attribute.Value]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	var out []attribute.Value
	for _, v := range attr.Values() {
		if _, ok := seen[v]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}
