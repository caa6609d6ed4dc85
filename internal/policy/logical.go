package policy

import (
	"fmt"

	"github.com/project-kessel/attrfilter/internal/filter"
)

// And is true when every child is true. Any false child decides the result
// regardless of failures elsewhere; a failure only surfaces when no child is
// false.
type And struct {
	children []filter.Rule
}

// NewAnd creates a conjunction of rules. At least one child is required.
func NewAnd(children ...filter.Rule) (*And, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: and rule requires at least one child", filter.ErrInvalidConfiguration)
	}
	for i, c := range children {
		if c == nil {
			return nil, fmt.Errorf("%w: and rule child %d is nil", filter.ErrInvalidConfiguration, i)
		}
	}
	cs := make([]filter.Rule, len(children))
	copy(cs, children)
	return &And{children: cs}, nil
}

// Matches implements filter.Rule.
func (r *And) Matches(ctx *filter.Context) (filter.Tristate, error) {
	if ctx == nil {
		return filter.Fail, fmt.Errorf("%w: filter context is required", filter.ErrInvalidInput)
	}

	var firstErr error
	failed := false
	for _, child := range r.children {
		decision, err := child.Matches(ctx)
		if err != nil || decision == filter.Fail {
			failed = true
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if decision == filter.False {
			return filter.False, nil
		}
	}
	if failed {
		return filter.Fail, firstErr
	}
	return filter.True, nil
}

// Or is true when any child is true. A true child decides the result
// regardless of failures elsewhere; a failure only surfaces when no child is
// true.
type Or struct {
	children []filter.Rule
}

// NewOr creates a disjunction of rules. At least one child is required.
func NewOr(children ...filter.Rule) (*Or, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: or rule requires at least one child", filter.ErrInvalidConfiguration)
	}
	for i, c := range children {
		if c == nil {
			return nil, fmt.Errorf("%w: or rule child %d is nil", filter.ErrInvalidConfiguration, i)
		}
	}
	cs := make([]filter.Rule, len(children))
	copy(cs, children)
	return &Or{children: cs}, nil
}

// Matches implements filter.Rule.
func (r *Or) Matches(ctx *filter.Context) (filter.Tristate, error) {
	if ctx == nil {
		return filter.Fail, fmt.Errorf("%w: filter context is required", filter.ErrInvalidInput)
	}

	var firstErr error
	failed := false
	for _, child := range r.children {
		decision, err := child.Matches(ctx)
		if err != nil || decision == filter.Fail {
			failed = true
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if decision == filter.True {
			return filter.True, nil
		}
	}
	if failed {
		return filter.Fail, firstErr
	}
	return filter.False, nil
}

// Not inverts its child: true becomes false and false becomes true. A
// failure stays a failure; negating an undecidable rule does not make it
// decidable.
type Not struct {
	child filter.Rule
}

// NewNot creates a negation of exactly one rule.
func NewNot(child filter.Rule) (*Not, error) {
	if child == nil {
		return nil, fmt.Errorf("%w: not rule requires a child", filter.ErrInvalidConfiguration)
	}
	return &Not{child: child}, nil
}

// Matches implements filter.Rule.
func (r *Not) Matches(ctx *filter.Context) (filter.Tristate, error) {
	if ctx == nil {
		return filter.Fail, fmt.Errorf("%w: filter context is required", filter.ErrInvalidInput)
	}

	decision, err := r.child.Matches(ctx)
	if err != nil || decision == filter.Fail {
		return filter.Fail, err
	}
	if decision == filter.True {
		return filter.False, nil
	}
	return filter.True, nil
}
