// Package script provides the Lua-backed scripted matching capability. It
// is an escape hatch outside the core matcher set: scripts are plugged into
// the engine through the matcher package's Scripted adapter, which enforces
// the subset and fail-closed contracts on their behalf.
package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/project-kessel/attrfilter/internal/attribute"
	"github.com/project-kessel/attrfilter/internal/filter"
)

// LuaMatcher executes a Lua script to decide which attribute values match.
// The script must define a function called 'match' taking an attribute
// table and a context table and returning a list of raw value strings (or
// nil for no matches).
//
// Example:
//
//	function match(attribute, context)
//	  local out = {}
//	  for _, v in ipairs(attribute.values) do
//	    if context.principal ~= "" and v ~= context.principal then
//	      table.insert(out, v)
//	    end
//	  end
//	  return out
//	end
//
// No I/O services are registered into the script's state: a matcher is a
// pure function of the attribute and the filter context.
type LuaMatcher struct {
	name   string
	script string
}

// LuaMatcherConfig configures a LuaMatcher.
type LuaMatcherConfig struct {
	// Name identifies the script in errors and logs.
	Name string

	// Script is the Lua source. It must define a 'match' function.
	Script string
}

// NewLuaMatcher creates a Lua matcher. The script is loaded once here to
// verify it compiles and defines the match function.
func NewLuaMatcher(cfg LuaMatcherConfig) (*LuaMatcher, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("%w: lua matcher requires a name", filter.ErrInvalidConfiguration)
	}
	if cfg.Script == "" {
		return nil, fmt.Errorf("%w: lua matcher %s requires a script", filter.ErrInvalidConfiguration, cfg.Name)
	}

	L := lua.NewState()
	defer L.Close()

	if err := L.DoString(cfg.Script); err != nil {
		return nil, fmt.Errorf("%w: lua matcher %s: failed to load script: %v", filter.ErrInvalidConfiguration, cfg.Name, err)
	}
	if L.GetGlobal("match").Type() != lua.LTFunction {
		return nil, fmt.Errorf("%w: lua matcher %s: script must define a 'match' function", filter.ErrInvalidConfiguration, cfg.Name)
	}

	return &LuaMatcher{name: cfg.Name, script: cfg.Script}, nil
}

// Name returns the script identifier.
func (m *LuaMatcher) Name() string {
	return m.name
}

// Match runs the script against the attribute and context. Each call runs
// in a fresh Lua state, so the matcher is safe for concurrent use. The
// returned values are the attribute values whose raw form appears in the
// script's result; strings the script invents are not values and are
// dropped.
func (m *LuaMatcher) Match(attr *attribute.Attribute, ctx *filter.Context) ([]attribute.Value, error) {
	if attr == nil || ctx == nil {
		return nil, fmt.Errorf("%w: attribute and filter context are required", filter.ErrInvalidInput)
	}

	L := lua.NewState()
	defer L.Close()

	if err := L.DoString(m.script); err != nil {
		return nil, fmt.Errorf("failed to load script: %w", err)
	}

	attrTable := m.attributeToLuaTable(L, attr)
	ctxTable := m.contextToLuaTable(L, ctx)

	if err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal("match"),
		NRet:    1,
		Protect: true,
	}, attrTable, ctxTable); err != nil {
		return nil, fmt.Errorf("script execution failed: %w", err)
	}

	ret := L.Get(-1)
	L.Pop(1)

	if ret.Type() == lua.LTNil {
		return nil, nil
	}
	if ret.Type() != lua.LTTable {
		return nil, fmt.Errorf("match function must return a table or nil, got %s", ret.Type())
	}

	wanted := make(map[string]struct{})
	ret.(*lua.LTable).ForEach(func(_, value lua.LValue) {
		if s, ok := value.(lua.LString); ok {
			wanted[string(s)] = struct{}{}
		}
	})

	var out []attribute.Value
	for _, v := range attr.Values() {
		if _, ok := wanted[v.Raw()]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// attributeToLuaTable converts an attribute to a Lua table with 'id' and
// 'values' fields.
func (m *LuaMatcher) attributeToLuaTable(L *lua.LState, attr *attribute.Attribute) *lua.LTable {
	tbl := L.NewTable()
	L.SetField(tbl, "id", lua.LString(attr.ID()))

	values := L.NewTable()
	for _, v := range attr.Values() {
		values.Append(lua.LString(v.Raw()))
	}
	L.SetField(tbl, "values", values)
	return tbl
}

// contextToLuaTable converts the filter context to a Lua table with
// 'issuer', 'recipient', 'principal' and 'attributes' fields.
func (m *LuaMatcher) contextToLuaTable(L *lua.LState, ctx *filter.Context) *lua.LTable {
	tbl := L.NewTable()
	L.SetField(tbl, "issuer", lua.LString(ctx.Issuer()))
	L.SetField(tbl, "recipient", lua.LString(ctx.Recipient()))
	L.SetField(tbl, "principal", lua.LString(ctx.Principal()))

	attrs := L.NewTable()
	for id, attr := range ctx.Attributes() {
		values := L.NewTable()
		for _, v := range attr.Values() {
			values.Append(lua.LString(v.Raw()))
		}
		attrs.RawSetString(id, values)
	}
	L.SetField(tbl, "attributes", attrs)
	return tbl
}
