package filter

import (
	"fmt"

	"github.com/project-kessel/attrfilter/internal/attribute"
)

// Context carries the per-request inputs to one filtering run: the issuer
// and recipient entity identifiers, the authenticated principal, and the
// prefiltered attribute map. The engine reads it and records the final
// filtered result; nothing else is mutated.
//
// A Context is created fresh for each request and discarded afterwards.
type Context struct {
	issuer      string
	recipient   string
	principal   string
	prefiltered attribute.Map
	filtered    attribute.Map
}

// ContextConfig configures a Context.
type ContextConfig struct {
	// Issuer is the entity identifier of the attribute issuer.
	Issuer string

	// Recipient is the entity identifier of the attribute recipient.
	Recipient string

	// Principal is the authenticated principal name. May be empty.
	Principal string

	// Attributes is the prefiltered attribute map produced by attribute
	// resolution.
	Attributes attribute.Map
}

// NewContext creates a filter context. The attribute map is copied so later
// changes by the caller do not leak into an in-flight evaluation.
func NewContext(cfg ContextConfig) (*Context, error) {
	if cfg.Attributes == nil {
		return nil, fmt.Errorf("%w: attributes map is required", ErrInvalidInput)
	}
	return &Context{
		issuer:      cfg.Issuer,
		recipient:   cfg.Recipient,
		principal:   cfg.Principal,
		prefiltered: cfg.Attributes.Clone(),
	}, nil
}

// Issuer returns the attribute issuer entity identifier.
func (c *Context) Issuer() string {
	return c.issuer
}

// Recipient returns the attribute recipient entity identifier.
func (c *Context) Recipient() string {
	return c.recipient
}

// Principal returns the authenticated principal name, or "" if absent.
func (c *Context) Principal() string {
	return c.principal
}

// Attribute looks up an attribute in the prefiltered map by id.
func (c *Context) Attribute(id string) (*attribute.Attribute, bool) {
	attr, ok := c.prefiltered[id]
	return attr, ok
}

// Attributes returns a copy of the prefiltered attribute map.
func (c *Context) Attributes() attribute.Map {
	return c.prefiltered.Clone()
}

// Filtered returns the result recorded by the engine, or nil if the context
// has not been evaluated yet.
func (c *Context) Filtered() attribute.Map {
	if c.filtered == nil {
		return nil
	}
	return c.filtered.Clone()
}

func (c *Context) setFiltered(result attribute.Map) {
	c.filtered = result
}
