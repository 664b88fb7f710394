package qa

import (
	"strings"

	"github.com/npillmayer/fontlint/ot"
)

// Scope says whether a check inspects a single font or a whole family.
type Scope int8

const (
	ScopeFont   Scope = iota // run once per font
	ScopeFamily              // run once per family of fonts
)

// CheckFunc is the predicate of a check. It reads parsed font data from the
// context and returns the check's results. Check functions never return Go
// errors: domain-level problems become FAIL/WARN/ERROR results, and the
// runner converts panics into ERROR results.
type CheckFunc func(ctx *Context) []Result

// Check is a named predicate over font data, annotated with rationale and
// proposal metadata. Checks are immutable after registration.
type Check struct {
	ID          string   // stable, fully qualified identifier
	Description string   // one-line description, phrased as a question or statement
	Rationale   string   // why this check matters
	Proposal    string   // URL of the issue or PR that proposed the check
	Scope       Scope
	Conditions  []string // named conditions gating execution; "!name" negates
	Run         CheckFunc
}

// Context carries the font (or family of fonts) under test, and memoizes
// condition values so that several checks gated on the same condition do not
// recompute it.
type Context struct {
	fonts []*ot.Font
	index int // current font, -1 for family scope
	conds *ConditionSet
	memo  map[condKey]condValue
}

type condKey struct {
	name string
	font int
}

type condValue struct {
	value any
	err   error
}

// NewContext creates an evaluation context over a family of fonts.
// The context starts out family-scoped.
func NewContext(conds *ConditionSet, fonts ...*ot.Font) *Context {
	if conds == nil {
		conds = BuiltinConditions()
	}
	return &Context{
		fonts: fonts,
		index: -1,
		conds: conds,
		memo:  make(map[condKey]condValue),
	}
}

// Font returns the font currently under test. For a family-scoped context
// this is the first font of the family (family checks should use Fonts).
func (ctx *Context) Font() *ot.Font {
	if ctx.index >= 0 && ctx.index < len(ctx.fonts) {
		return ctx.fonts[ctx.index]
	}
	if len(ctx.fonts) > 0 {
		return ctx.fonts[0]
	}
	return nil
}

// Fonts returns all fonts of the family under test.
func (ctx *Context) Fonts() []*ot.Font {
	return ctx.fonts
}

// FontIndex returns the index of the font under test, -1 for family scope.
func (ctx *Context) FontIndex() int {
	return ctx.index
}

// forFont returns a context focused on a single font, sharing the memo.
func (ctx *Context) forFont(i int) *Context {
	sub := *ctx
	sub.index = i
	return &sub
}

// Condition evaluates the named condition for the context's current font
// (or family), memoized per font.
func (ctx *Context) Condition(name string) (any, error) {
	cond, ok := ctx.conds.Lookup(name)
	if !ok {
		return nil, errUnknownCondition(name)
	}
	key := condKey{name: name, font: ctx.index}
	if cond.Scope == ScopeFamily {
		key.font = -1
	}
	if v, ok := ctx.memo[key]; ok {
		return v.value, v.err
	}
	value, err := cond.Eval(ctx)
	ctx.memo[key] = condValue{value: value, err: err}
	return value, err
}

// ConditionBool evaluates a condition as a boolean: nil and false are false,
// everything else (including non-boolean values) is true. Evaluation errors
// count as false.
func (ctx *Context) ConditionBool(name string) bool {
	negate := strings.HasPrefix(name, "!")
	name = strings.TrimPrefix(name, "!")
	value, err := ctx.Condition(name)
	ok := err == nil && truthy(value)
	if negate {
		return !ok
	}
	return ok
}

func truthy(value any) bool {
	if value == nil {
		return false
	}
	if b, ok := value.(bool); ok {
		return b
	}
	return true
}
