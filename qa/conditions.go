package qa

import (
	"fmt"
	"sync"

	"github.com/npillmayer/fontlint/ot"
)

// Condition is a named predicate (or value producer) over font data, used to
// gate checks. A condition evaluating to nil or false means "unmet"; any
// other value means "met" and is available to the check through
// Context.Condition.
type Condition struct {
	Name  string
	Scope Scope
	Eval  func(ctx *Context) (any, error)
}

// ConditionSet is a registry of named conditions.
type ConditionSet struct {
	mu    sync.RWMutex
	conds map[string]Condition
}

// NewConditionSet creates an empty condition set.
func NewConditionSet() *ConditionSet {
	return &ConditionSet{conds: make(map[string]Condition)}
}

// Register adds a condition to the set. Re-registering a name is an error.
func (cs *ConditionSet) Register(cond Condition) error {
	if cond.Name == "" || cond.Eval == nil {
		return fmt.Errorf("cannot register unnamed or empty condition")
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, ok := cs.conds[cond.Name]; ok {
		return fmt.Errorf("condition %q already registered", cond.Name)
	}
	cs.conds[cond.Name] = cond
	return nil
}

// Lookup returns a condition by name.
func (cs *ConditionSet) Lookup(name string) (Condition, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	cond, ok := cs.conds[name]
	return cond, ok
}

func errUnknownCondition(name string) error {
	return fmt.Errorf("unknown condition %q", name)
}

// --- Built-in conditions ---------------------------------------------------

// GlyphMetricsStats is the value of the 'glyph_metrics_stats' condition:
// advance-width statistics over the glyphs mapped from printable ASCII,
// which is the externally computed "seems monospaced" signal the monospace
// check cross-validates metadata against.
type GlyphMetricsStats struct {
	SeemsMonospaced bool
	MostCommonWidth uint16
	WidthMax        uint16
}

// FamilyVerticalMetrics is the value of the 'family_vertical_metrics'
// condition: the extreme glyph-bounding-box values across all fonts of a
// family, from their 'head' tables.
type FamilyVerticalMetrics struct {
	YMax int16
	YMin int16
}

var builtinOnce sync.Once
var builtinSet *ConditionSet

// BuiltinConditions returns the condition set with all built-in conditions
// registered. The set is shared; callers must not register into it.
func BuiltinConditions() *ConditionSet {
	builtinOnce.Do(func() {
		builtinSet = NewConditionSet()
		for _, cond := range builtins() {
			if err := builtinSet.Register(cond); err != nil {
				panic(err)
			}
		}
	})
	return builtinSet
}

func builtins() []Condition {
	return []Condition{
		{Name: "is_ttf", Scope: ScopeFont, Eval: func(ctx *Context) (any, error) {
			return ctx.Font() != nil && ctx.Font().IsTrueType(), nil
		}},
		{Name: "is_cff", Scope: ScopeFont, Eval: func(ctx *Context) (any, error) {
			return ctx.Font() != nil && ctx.Font().IsCFF(), nil
		}},
		{Name: "is_cff2", Scope: ScopeFont, Eval: func(ctx *Context) (any, error) {
			return ctx.Font() != nil && ctx.Font().IsCFF2(), nil
		}},
		{Name: "has_name_table", Scope: ScopeFont, Eval: func(ctx *Context) (any, error) {
			return ctx.Font() != nil && ctx.Font().HasTable(ot.T("name")), nil
		}},
		{Name: "has_glyph_names", Scope: ScopeFont, Eval: func(ctx *Context) (any, error) {
			if ctx.Font() == nil {
				return false, nil
			}
			post := postTable(ctx.Font())
			return post != nil && post.HasGlyphNames(), nil
		}},
		{Name: "glyph_metrics_stats", Scope: ScopeFont, Eval: glyphMetricsStats},
		{Name: "family_vertical_metrics", Scope: ScopeFamily, Eval: familyVerticalMetrics},
	}
}

func postTable(otf *ot.Font) *ot.PostTable {
	if t := otf.Table(ot.T("post")); t != nil {
		return t.Self().AsPost()
	}
	return nil
}

// monospaceThreshold is the share of printable-ASCII glyphs that must agree
// on one advance width for a font to count as seemingly monospaced.
const monospaceThreshold = 0.8

// glyphMetricsStats computes advance-width statistics over the glyphs mapped
// from printable ASCII (U+0020 … U+007E). The condition is unmet for fonts
// lacking cmap or hmtx data, or mapping no ASCII at all.
func glyphMetricsStats(ctx *Context) (any, error) {
	otf := ctx.Font()
	if otf == nil {
		return nil, nil
	}
	cm := otf.Table(ot.T("cmap"))
	hm := otf.Table(ot.T("hmtx"))
	if cm == nil || hm == nil {
		return nil, nil
	}
	cmap := cm.Self().AsCMap()
	hmtx := hm.Self().AsHMtx()
	if cmap == nil || hmtx == nil {
		return nil, nil
	}
	widths := make(map[uint16]int)
	var total int
	var widthMax uint16
	for r := rune(0x20); r <= 0x7E; r++ {
		gid := cmap.Lookup(r)
		if gid == 0 {
			continue
		}
		aw, ok := hmtx.AdvanceWidth(gid)
		if !ok {
			continue
		}
		widths[aw]++
		total++
		if aw > widthMax {
			widthMax = aw
		}
	}
	if total == 0 {
		return nil, nil
	}
	var mostCommon uint16
	var mostCommonCount int
	for w, n := range widths {
		if n > mostCommonCount || (n == mostCommonCount && w < mostCommon) {
			mostCommon, mostCommonCount = w, n
		}
	}
	stats := GlyphMetricsStats{
		SeemsMonospaced: float64(mostCommonCount)/float64(total) >= monospaceThreshold,
		MostCommonWidth: mostCommon,
		WidthMax:        maxAdvanceWidth(hmtx, widthMax),
	}
	tracer().Debugf("glyph metrics stats: %+v", stats)
	return stats, nil
}

// maxAdvanceWidth extends the ASCII-derived maximum over all glyphs of the
// font, so that hhea.advanceWidthMax can be validated against the true
// maximum.
func maxAdvanceWidth(hmtx *ot.HMtxTable, widthMax uint16) uint16 {
	for gid := 0; gid < hmtx.GlyphCount(); gid++ {
		if aw, ok := hmtx.AdvanceWidth(ot.GlyphIndex(gid)); ok && aw > widthMax {
			widthMax = aw
		}
	}
	return widthMax
}

// familyVerticalMetrics computes family-wide head.yMax/yMin extremes.
// Unmet if any font of the family lacks a head table.
func familyVerticalMetrics(ctx *Context) (any, error) {
	fonts := ctx.Fonts()
	if len(fonts) == 0 {
		return nil, nil
	}
	vm := FamilyVerticalMetrics{YMax: -32768, YMin: 32767}
	for _, otf := range fonts {
		he := otf.Table(ot.T("head"))
		if he == nil {
			return nil, nil
		}
		head := he.Self().AsHead()
		if head.YMax > vm.YMax {
			vm.YMax = head.YMax
		}
		if head.YMin < vm.YMin {
			vm.YMin = head.YMin
		}
	}
	return vm, nil
}
