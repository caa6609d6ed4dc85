// Package matcher provides the value-level matchers used by attribute
// rules: literal and regex comparison, scope matching, attribute-targeted
// predicates, logical composition, and the scripted-matcher adapter.
package matcher

import (
	"fmt"

	"github.com/project-kessel/attrfilter/internal/attribute"
	"github.com/project-kessel/attrfilter/internal/filter"
)

// checkInputs validates the arguments every matcher receives.
func checkInputs(attr *attribute.Attribute, ctx *filter.Context) error {
	if attr == nil {
		return fmt.Errorf("%w: attribute is required", filter.ErrInvalidInput)
	}
	if ctx == nil {
		return fmt.Errorf("%w: filter context is required", filter.ErrInvalidInput)
	}
	return nil
}

// Any permits every value of the attribute.
type Any struct{}

// NewAny creates a matcher that permits all values.
func NewAny() Any {
	return Any{}
}

// Values implements filter.Matcher.
func (Any) Values(attr *attribute.Attribute, ctx *filter.Context) ([]attribute.Value, error) {
	if err := checkInputs(attr, ctx); err != nil {
		return nil, err
	}
	return attr.Values(), nil
}
