package attribute

import (
	"fmt"
	"regexp"
)

// MappingRule rewrites values whose whole raw form matches a pattern. The
// replacement may reference capture groups ($1, ${name}).
type MappingRule struct {
	re          *regexp.Regexp
	replacement string
}

// NewMappingRule compiles a mapping rule. The pattern is anchored to the
// whole value string.
func NewMappingRule(pattern, replacement string, ignoreCase bool) (MappingRule, error) {
	re, err := CompileMatchPattern(pattern, ignoreCase)
	if err != nil {
		return MappingRule{}, err
	}
	return MappingRule{re: re, replacement: replacement}, nil
}

// Apply rewrites raw through the rule's replacement template. It reports
// false when the pattern does not match the whole string.
func (r MappingRule) Apply(raw string) (string, bool) {
	idx := r.re.FindStringSubmatchIndex(raw)
	if idx == nil {
		return "", false
	}
	return string(r.re.ExpandString(nil, r.replacement, raw, idx)), true
}

// Mapping rewrites the values of one attribute before filtering. Each value
// is run through every rule; every matching rule contributes its rewritten
// result. Results are deduplicated while preserving first-seen order, so two
// overlapping source patterns produce exactly one entry per distinct output.
type Mapping struct {
	attributeID string
	rules       []MappingRule
	passthrough bool
}

// MappingConfig configures a Mapping.
type MappingConfig struct {
	// AttributeID names the attribute whose values are rewritten.
	AttributeID string

	// Rules are applied to every value.
	Rules []MappingRule

	// Passthrough keeps values matched by no rule. When false such values
	// are dropped.
	Passthrough bool
}

// NewMapping creates a mapping. At least one rule is required.
func NewMapping(cfg MappingConfig) (*Mapping, error) {
	if cfg.AttributeID == "" {
		return nil, fmt.Errorf("mapping attribute id is required")
	}
	if len(cfg.Rules) == 0 {
		return nil, fmt.Errorf("mapping for attribute %s requires at least one rule", cfg.AttributeID)
	}
	rules := make([]MappingRule, len(cfg.Rules))
	copy(rules, cfg.Rules)
	return &Mapping{
		attributeID: cfg.AttributeID,
		rules:       rules,
		passthrough: cfg.Passthrough,
	}, nil
}

// AttributeID returns the id of the attribute this mapping rewrites.
func (m *Mapping) AttributeID() string {
	return m.attributeID
}

// Apply returns a new attribute with the rewritten value set. The input
// attribute is not modified.
func (m *Mapping) Apply(attr *Attribute) *Attribute {
	var out []Value
	seen := make(map[string]struct{})

	add := func(raw string) {
		if _, ok := seen[raw]; ok {
			return
		}
		seen[raw] = struct{}{}
		out = append(out, NewStringValue(raw))
	}

	for _, v := range attr.Values() {
		matched := false
		for _, rule := range m.rules {
			if rewritten, ok := rule.Apply(v.Raw()); ok {
				matched = true
				add(rewritten)
			}
		}
		if !matched && m.passthrough {
			add(v.Raw())
		}
	}

	return attr.WithValues(out...)
}
