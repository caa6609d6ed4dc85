package filter

import "github.com/project-kessel/attrfilter/internal/attribute"

// Matcher selects the values of an attribute that satisfy a condition.
//
// Implementations are immutable once constructed and must tolerate
// unsynchronized concurrent calls. The returned slice is always a subset of
// the attribute's own values; a matcher never introduces new values. An
// error return is treated by the engine as "no values match" (fail closed)
// and logged, never propagated as a request failure.
type Matcher interface {
	Values(attr *attribute.Attribute, ctx *Context) ([]attribute.Value, error)
}

// Rule decides whether a policy applies to the request described by ctx.
//
// Implementations are immutable once constructed and must tolerate
// unsynchronized concurrent calls. A Fail result means the rule could not be
// evaluated; the accompanying error, if any, carries the cause for logging.
type Rule interface {
	Matches(ctx *Context) (Tristate, error)
}
