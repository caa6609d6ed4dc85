package matcher

import (
	"fmt"

	"github.com/project-kessel/attrfilter/internal/attribute"
	"github.com/project-kessel/attrfilter/internal/filter"
)

// And permits the values permitted by every child matcher: the intersection
// of the children's results, restricted to the attribute's actual values.
type And struct {
	children []filter.Matcher
}

// NewAnd creates a conjunction of matchers. At least one child is required.
func NewAnd(children ...filter.Matcher) (*And, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: and matcher requires at least one child", filter.ErrInvalidConfiguration)
	}
	for i, c := range children {
		if c == nil {
			return nil, fmt.Errorf("%w: and matcher child %d is nil", filter.ErrInvalidConfiguration, i)
		}
	}
	cs := make([]filter.Matcher, len(children))
	copy(cs, children)
	return &And{children: cs}, nil
}

// Values implements filter.Matcher.
func (m *And) Values(attr *attribute.Attribute, ctx *filter.Context) ([]attribute.Value, error) {
	if err := checkInputs(attr, ctx); err != nil {
		return nil, err
	}

	kept := make(map[attribute.Value]struct{}, attr.Len())
	for _, v := range attr.Values() {
		kept[v] = struct{}{}
	}

	for _, child := range m.children {
		if len(kept) == 0 {
			break
		}
		values, err := child.Values(attr, ctx)
		if err != nil {
			return nil, fmt.Errorf("and matcher: %w", err)
		}
		matched := make(map[attribute.Value]struct{}, len(values))
		for _, v := range values {
			matched[v] = struct{}{}
		}
		for v := range kept {
			if _, ok := matched[v]; !ok {
				delete(kept, v)
			}
		}
	}

	var out []attribute.Value
	for _, v := range attr.Values() {
		if _, ok := kept[v]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// Or permits the values permitted by any child matcher: the union of the
// children's results, in the attribute's value order.
type Or struct {
	children []filter.Matcher
}

// NewOr creates a disjunction of matchers. At least one child is required.
func NewOr(children ...filter.Matcher) (*Or, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: or matcher requires at least one child", filter.ErrInvalidConfiguration)
	}
	for i, c := range children {
		if c == nil {
			return nil, fmt.Errorf("%w: or matcher child %d is nil", filter.ErrInvalidConfiguration, i)
		}
	}
	cs := make([]filter.Matcher, len(children))
	copy(cs, children)
	return &Or{children: cs}, nil
}

// Values implements filter.Matcher.
func (m *Or) Values(attr *attribute.Attribute, ctx *filter.Context) ([]attribute.Value, error) {
	if err := checkInputs(attr, ctx); err != nil {
		return nil, err
	}

	matched := make(map[attribute.Value]struct{})
	for _, child := range m.children {
		values, err := child.Values(attr, ctx)
		if err != nil {
			return nil, fmt.Errorf("or matcher: %w", err)
		}
		for _, v := range values {
			matched[v] = struct{}{}
		}
	}

	var out []attribute.Value
	for _, v := range attr.Values() {
		if _, ok := matched[v]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// Not negates a policy-style rule at the matcher level: when the rule
// evaluates false every value is permitted, when it evaluates true none are.
// Fail stays fail: the matcher reports an error and the engine treats it as
// permitting nothing.
type Not struct {
	rule filter.Rule
}

// NewNot creates a negation matcher over a policy rule.
func NewNot(rule filter.Rule) (*Not, error) {
	if rule == nil {
		return nil, fmt.Errorf("%w: not matcher requires a rule", filter.ErrInvalidConfiguration)
	}
	return &Not{rule: rule}, nil
}

// Values implements filter.Matcher.
func (m *Not) Values(attr *attribute.Attribute, ctx *filter.Context) ([]attribute.Value, error) {
	if err := checkInputs(attr, ctx); err != nil {
		return nil, err
	}

	decision, err := m.rule.Matches(ctx)
	if err != nil {
		return nil, fmt.Errorf("not matcher: %w", err)
	}
	switch decision {
	case filter.True:
		return nil, nil
	case filter.False:
		return attr.Values(), nil
	default:
		return nil, fmt.Errorf("not matcher: rule could not be evaluated")
	}
}
