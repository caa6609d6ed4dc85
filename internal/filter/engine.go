// Package filter implements the attribute filtering engine: tri-state
// policy requirement rules, per-attribute permit matchers, and the
// orchestration that unions their results into the released attribute set.
package filter

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/project-kessel/attrfilter/internal/attribute"
)

// Engine evaluates an ordered list of policies against a filter context and
// produces the attribute set released to the recipient.
//
// An engine is constructed once, validated, and then serves many concurrent
// requests. A single broken rule or matcher never aborts a run: requirement
// rule failures deactivate their policy and matcher failures contribute no
// values, both reported through the observer.
type Engine struct {
	id       string
	policies []*Policy
	observer Observer
}

// EngineConfig configures an Engine.
type EngineConfig struct {
	// ID identifies the engine in logs.
	ID string

	// Policies are evaluated in order. Policy ids must be unique.
	Policies []*Policy

	// Observer receives run events. Defaults to NoOpObserver.
	Observer Observer
}

// NewEngine creates an engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("%w: engine id is required", ErrInvalidConfiguration)
	}

	seen := make(map[string]struct{}, len(cfg.Policies))
	for _, p := range cfg.Policies {
		if p == nil {
			return nil, fmt.Errorf("%w: engine %s has a nil policy", ErrInvalidConfiguration, cfg.ID)
		}
		if _, dup := seen[p.ID()]; dup {
			return nil, fmt.Errorf("%w: engine %s has duplicate policy id %s", ErrInvalidConfiguration, cfg.ID, p.ID())
		}
		seen[p.ID()] = struct{}{}
	}

	observer := cfg.Observer
	if observer == nil {
		observer = NoOpObserver{}
	}

	policies := make([]*Policy, len(cfg.Policies))
	copy(policies, cfg.Policies)

	return &Engine{id: cfg.ID, policies: policies, observer: observer}, nil
}

// ID returns the engine identifier.
func (e *Engine) ID() string {
	return e.id
}

// Filter runs every policy against ctx and returns the released attributes.
//
// A value survives when at least one active policy's rule for its attribute
// permits it; permits from different policies are unioned, never
// overwritten. Attributes with no surviving values, including attributes no
// active rule references at all, are absent from the result. The result is
// also recorded on ctx.
func (e *Engine) Filter(ctx *Context) (attribute.Map, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: filter context is required", ErrInvalidInput)
	}

	probe := e.observer.FilterStarted(e.id, uuid.NewString())

	permitted := make(map[string]map[attribute.Value]struct{})

	for _, policy := range e.policies {
		decision, err := policy.RequirementRule().Matches(ctx)
		if err != nil || decision == Fail {
			// Fail closed: an undecidable policy releases nothing.
			probe.PolicyFailed(policy.ID(), err)
			continue
		}
		if decision == False {
			probe.PolicyInactive(policy.ID())
			continue
		}
		probe.PolicyActive(policy.ID())

		for _, rule := range policy.Rules() {
			attr, ok := ctx.Attribute(rule.AttributeID())
			if !ok {
				continue
			}

			values, err := rule.Matcher().Values(attr, ctx)
			if err != nil {
				probe.MatcherFailed(policy.ID(), rule.AttributeID(), err)
				continue
			}

			set := permitted[rule.AttributeID()]
			if set == nil {
				set = make(map[attribute.Value]struct{})
				permitted[rule.AttributeID()] = set
			}
			count := 0
			for _, v := range values {
				// Guard the subset contract against misbehaving matchers.
				if !attr.Contains(v) {
					continue
				}
				set[v] = struct{}{}
				count++
			}
			probe.ValuesPermitted(policy.ID(), rule.AttributeID(), count)
		}
	}

	result := make(attribute.Map)
	for id, set := range permitted {
		if len(set) == 0 {
			continue
		}
		attr, _ := ctx.Attribute(id)
		var kept []attribute.Value
		for _, v := range attr.Values() {
			if _, ok := set[v]; ok {
				kept = append(kept, v)
			}
		}
		if len(kept) > 0 {
			result[id] = attr.WithValues(kept...)
		}
	}

	ctx.setFiltered(result)
	probe.End(len(result))
	return result, nil
}
