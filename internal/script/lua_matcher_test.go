package script

import (
	"errors"
	"testing"

	"github.com/project-kessel/attrfilter/internal/attribute"
	"github.com/project-kessel/attrfilter/internal/filter"
)

const matchStaffScript = `
function match(attribute, context)
  local out = {}
  for _, v in ipairs(attribute.values) do
    if v == "staff" then
      table.insert(out, v)
    end
  end
  return out
end
`

func testAttr(t *testing.T, id string, values ...string) *attribute.Attribute {
	t.Helper()
	attr, err := attribute.NewFromStrings(id, values...)
	if err != nil {
		t.Fatalf("failed to create attribute %s: %v", id, err)
	}
	return attr
}

func testContext(t *testing.T, attrs ...*attribute.Attribute) *filter.Context {
	t.Helper()
	m := attribute.Map{}
	for _, a := range attrs {
		m[a.ID()] = a
	}
	ctx, err := filter.NewContext(filter.ContextConfig{
		Issuer:     "https://idp.example.org",
		Recipient:  "https://sp.example.org",
		Principal:  "jsmith",
		Attributes: m,
	})
	if err != nil {
		t.Fatalf("failed to create context: %v", err)
	}
	return ctx
}

func TestNewLuaMatcher(t *testing.T) {
	t.Run("requires name and script", func(t *testing.T) {
		_, err := NewLuaMatcher(LuaMatcherConfig{Script: matchStaffScript})
		if !errors.Is(err, filter.ErrInvalidConfiguration) {
			t.Errorf("missing name: expected configuration error, got %v", err)
		}
		_, err = NewLuaMatcher(LuaMatcherConfig{Name: "staff"})
		if !errors.Is(err, filter.ErrInvalidConfiguration) {
			t.Errorf("missing script: expected configuration error, got %v", err)
		}
	})

	t.Run("rejects scripts that do not load", func(t *testing.T) {
		_, err := NewLuaMatcher(LuaMatcherConfig{Name: "broken", Script: `function match(`})
		if !errors.Is(err, filter.ErrInvalidConfiguration) {
			t.Fatalf("expected configuration error, got %v", err)
		}
	})

	t.Run("rejects scripts without a match function", func(t *testing.T) {
		_, err := NewLuaMatcher(LuaMatcherConfig{Name: "nomatch", Script: `x = 1`})
		if !errors.Is(err, filter.ErrInvalidConfiguration) {
			t.Fatalf("expected configuration error, got %v", err)
		}
	})
}

func TestLuaMatcher_Match(t *testing.T) {
	attr := testAttr(t, "eduPersonAffiliation", "member", "staff", "faculty")
	ctx := testContext(t, attr)

	t.Run("selects the values the script returns", func(t *testing.T) {
		m, err := NewLuaMatcher(LuaMatcherConfig{Name: "staff-only", Script: matchStaffScript})
		if err != nil {
			t.Fatalf("NewLuaMatcher failed: %v", err)
		}
		values, err := m.Match(attr, ctx)
		if err != nil {
			t.Fatalf("Match failed: %v", err)
		}
		if len(values) != 1 || values[0].Raw() != "staff" {
			t.Errorf("unexpected values: %v", values)
		}
	})

	t.Run("nil result means no matches", func(t *testing.T) {
		m, err := NewLuaMatcher(LuaMatcherConfig{
			Name:   "nothing",
			Script: `function match(attribute, context) return nil end`,
		})
		if err != nil {
			t.Fatalf("NewLuaMatcher failed: %v", err)
		}
		values, err := m.Match(attr, ctx)
		if err != nil {
			t.Fatalf("Match failed: %v", err)
		}
		if len(values) != 0 {
			t.Errorf("expected no values, got %v", values)
		}
	})

	t.Run("strings the script invents are dropped", func(t *testing.T) {
		m, err := NewLuaMatcher(LuaMatcherConfig{
			Name:   "inventive",
			Script: `function match(attribute, context) return {"staff", "made-up-value"} end`,
		})
		if err != nil {
			t.Fatalf("NewLuaMatcher failed: %v", err)
		}
		values, err := m.Match(attr, ctx)
		if err != nil {
			t.Fatalf("Match failed: %v", err)
		}
		if len(values) != 1 || values[0].Raw() != "staff" {
			t.Errorf("invented value leaked through: %v", values)
		}
	})

	t.Run("script sees the filter context", func(t *testing.T) {
		m, err := NewLuaMatcher(LuaMatcherConfig{
			Name: "context-aware",
			Script: `
function match(attribute, context)
  if context.principal == "jsmith" and context.recipient == "https://sp.example.org" then
    return attribute.values
  end
  return nil
end
`,
		})
		if err != nil {
			t.Fatalf("NewLuaMatcher failed: %v", err)
		}
		values, err := m.Match(attr, ctx)
		if err != nil {
			t.Fatalf("Match failed: %v", err)
		}
		if len(values) != attr.Len() {
			t.Errorf("expected all values, got %v", values)
		}
	})

	t.Run("script sees other attributes", func(t *testing.T) {
		mail := testAttr(t, "mail", "a@example.org")
		m, err := NewLuaMatcher(LuaMatcherConfig{
			Name: "cross-attribute",
			Script: `
function match(attribute, context)
  local mail = context.attributes["mail"]
  if mail ~= nil and mail[1] == "a@example.org" then
    return attribute.values
  end
  return nil
end
`,
		})
		if err != nil {
			t.Fatalf("NewLuaMatcher failed: %v", err)
		}
		values, err := m.Match(attr, testContext(t, attr, mail))
		if err != nil {
			t.Fatalf("Match failed: %v", err)
		}
		if len(values) != attr.Len() {
			t.Errorf("expected all values, got %v", values)
		}
	})

	t.Run("runtime error propagates", func(t *testing.T) {
		m, err := NewLuaMatcher(LuaMatcherConfig{
			Name:   "exploding",
			Script: `function match(attribute, context) error("boom") end`,
		})
		if err != nil {
			t.Fatalf("NewLuaMatcher failed: %v", err)
		}
		if _, err := m.Match(attr, ctx); err == nil {
			t.Error("expected script error to propagate")
		}
	})

	t.Run("non-table result is an error", func(t *testing.T) {
		m, err := NewLuaMatcher(LuaMatcherConfig{
			Name:   "wrong-type",
			Script: `function match(attribute, context) return "staff" end`,
		})
		if err != nil {
			t.Fatalf("NewLuaMatcher failed: %v", err)
		}
		if _, err := m.Match(attr, ctx); err == nil {
			t.Error("expected error for non-table result")
		}
	})

	t.Run("nil inputs are invalid", func(t *testing.T) {
		m, err := NewLuaMatcher(LuaMatcherConfig{Name: "staff-only", Script: matchStaffScript})
		if err != nil {
			t.Fatalf("NewLuaMatcher failed: %v", err)
		}
		if _, err := m.Match(nil, ctx); !errors.Is(err, filter.ErrInvalidInput) {
			t.Errorf("nil attribute: expected invalid input error, got %v", err)
		}
		if _, err := m.Match(attr, nil); !errors.Is(err, filter.ErrInvalidInput) {
			t.Errorf("nil context: expected invalid input error, got %v", err)
		}
	})
}
