/*
Package universal implements font checks that apply to any OpenType font,
regardless of foundry or delivery target. Vendor profiles import these checks
by ID and may remap the severity of individual messages.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package universal

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/npillmayer/fontlint/ot"
	"github.com/npillmayer/fontlint/qa"
)

// ProfileChecks lists the IDs of all checks of the universal profile, in
// profile order.
var ProfileChecks = []string{
	"com.google.fonts/check/name/trailing_spaces",
	"com.google.fonts/check/required_tables",
	"com.google.fonts/check/whitespace_glyphs",
	"com.google.fonts/check/valid_glyphnames",
	"com.google.fonts/check/unique_glyphnames",
	"com.google.fonts/check/family/win_ascent_and_descent",
	"com.google.fonts/check/os2_metrics_match_hhea",
}

// Profile returns the universal profile.
func Profile() *qa.Profile {
	return qa.NewProfile("Universal", "universal").Include(ProfileChecks...)
}

func init() {
	qa.MustRegister(&qa.Check{
		ID:          "com.google.fonts/check/name/trailing_spaces",
		Description: "Name table records must not have trailing spaces.",
		Proposal:    "https://github.com/googlefonts/fontbakery/issues/2417",
		Conditions:  []string{"has_name_table"},
		Run:         checkNameTrailingSpaces,
	})
	qa.MustRegister(&qa.Check{
		ID:          "com.google.fonts/check/required_tables",
		Description: "Font contains all required tables?",
		Rationale: `According to the OpenType spec, whether TrueType or CFF outlines
are used in an OpenType font, a number of tables are required for the font to
function correctly on all platforms.`,
		Run: checkRequiredTables,
	})
	qa.MustRegister(&qa.Check{
		ID:          "com.google.fonts/check/whitespace_glyphs",
		Description: "Font contains glyphs for whitespace characters?",
		Run:         checkWhitespaceGlyphs,
	})
	qa.MustRegister(&qa.Check{
		ID:          "com.google.fonts/check/valid_glyphnames",
		Description: "Glyph names are all valid?",
		Rationale: `Microsoft's recommendations for OpenType Fonts states that a glyph
name must be entirely comprised of characters from the set A-Z, a-z, 0-9,
".", and "_", must not start with a digit or period (with the exception of
the special glyph name ".notdef"), and must be no longer than 63 characters.`,
		Conditions: []string{"has_glyph_names"},
		Run:        checkValidGlyphNames,
	})
	qa.MustRegister(&qa.Check{
		ID:          "com.google.fonts/check/unique_glyphnames",
		Description: "Font contains unique glyph names?",
		Conditions:  []string{"has_glyph_names"},
		Run:         checkUniqueGlyphNames,
	})
	qa.MustRegister(&qa.Check{
		ID:          "com.google.fonts/check/family/win_ascent_and_descent",
		Description: "Checking OS/2 usWinAscent & usWinDescent.",
		Rationale: `A font's winAscent and winDescent values should be greater than the
head table's yMax and the absolute value of its yMin, respectively. If they
are less, clipping can occur on Windows platforms. They should not be more
than double those extremes, or too much interline whitespace is added.`,
		Scope:      qa.ScopeFamily,
		Conditions: []string{"family_vertical_metrics"},
		Run:        checkWinAscentAndDescent,
	})
	qa.MustRegister(&qa.Check{
		ID:          "com.google.fonts/check/os2_metrics_match_hhea",
		Description: "Checking OS/2 Metrics match hhea Metrics.",
		Rationale: `OS/2 and hhea vertical metric values should match. This will produce
the same linespacing on Mac, GNU+Linux and Windows.`,
		Run: checkOS2MetricsMatchHHea,
	})
}

func checkNameTrailingSpaces(ctx *qa.Context) []qa.Result {
	name := nameTable(ctx.Font())
	var results []qa.Result
	for _, rec := range name.Records {
		s, err := rec.Decode()
		if err != nil {
			continue
		}
		if s != strings.TrimSpace(s) {
			results = append(results, qa.Failf("trailing-space",
				"name record (%d, %d, %d, %d) has trailing spaces that must be removed: %q",
				rec.PlatformID, rec.EncodingID, rec.LanguageID, rec.NameID, s))
		}
	}
	if len(results) == 0 {
		return []qa.Result{qa.Pass("no trailing spaces found in name table entries")}
	}
	return results
}

// optionalTables are tables the OpenType spec lists as optional. Their
// presence is worth an INFO, since some of them carry hinting or legacy data
// that deserves scrutiny.
var optionalTables = []string{
	"cvt ", "fpgm", "loca", "prep", "VORG", "EBDT", "EBLC", "EBSC",
	"gasp", "hdmx", "kern", "LTSH", "PCLT", "VDMX", "vhea", "vmtx",
	"COLR", "CPAL",
}

func checkRequiredTables(ctx *qa.Context) []qa.Result {
	otf := ctx.Font()
	var results []qa.Result
	var optional []string
	for _, tag := range optionalTables {
		if otf.HasTable(ot.T(tag)) {
			optional = append(optional, tag)
		}
	}
	if len(optional) > 0 {
		results = append(results, qa.Infof("optional-tables",
			"this font contains the following optional tables: %s",
			strings.Join(optional, ", ")))
	}
	var missing []string
	for _, tag := range ot.RequiredTables {
		if !otf.HasTable(ot.T(tag)) {
			missing = append(missing, tag)
		}
	}
	if len(missing) > 0 {
		results = append(results, qa.Failf("required-tables",
			"this font is missing the following required tables: %s",
			strings.Join(missing, ", ")))
	} else {
		results = append(results, qa.Pass("font contains all required tables"))
	}
	return results
}

func checkWhitespaceGlyphs(ctx *qa.Context) []qa.Result {
	cmap := cmapTable(ctx.Font())
	if cmap == nil {
		return []qa.Result{qa.Failf("lacks-table",
			"font lacks a 'cmap' table; whitespace coverage cannot be verified")}
	}
	var results []qa.Result
	for _, cp := range []rune{0x0020, 0x00A0} {
		if cmap.Lookup(cp) == 0 {
			results = append(results, qa.Failf(
				fmt.Sprintf("missing-whitespace-glyph-0x%04X", cp),
				"whitespace glyph missing for codepoint U+%04X", cp))
		}
	}
	if len(results) == 0 {
		return []qa.Result{qa.Pass("font contains glyphs for whitespace characters")}
	}
	return results
}

var validGlyphName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9._]*$`)

const maxGlyphNameLength = 63

func checkValidGlyphNames(ctx *qa.Context) []qa.Result {
	post := postTable(ctx.Font())
	var bad []string
	for _, name := range post.GlyphNames() {
		if name == ".notdef" {
			continue
		}
		if len(name) > maxGlyphNameLength || !validGlyphName.MatchString(name) {
			bad = append(bad, name)
		}
	}
	if len(bad) > 0 {
		return []qa.Result{qa.Failf("found-invalid-names",
			"the following glyph names do not comply with naming conventions: %s",
			strings.Join(bad, ", "))}
	}
	return []qa.Result{qa.Pass("glyph names are all valid")}
}

func checkUniqueGlyphNames(ctx *qa.Context) []qa.Result {
	post := postTable(ctx.Font())
	seen := make(map[string]int)
	for _, name := range post.GlyphNames() {
		seen[name]++
	}
	var dups []string
	for name, n := range seen {
		if n > 1 {
			dups = append(dups, name)
		}
	}
	if len(dups) > 0 {
		sort.Strings(dups)
		return []qa.Result{qa.Failf("duplicated-glyph-names",
			"these glyph names occur more than once: %s", strings.Join(dups, ", "))}
	}
	return []qa.Result{qa.Pass("glyph names are all unique")}
}

func checkWinAscentAndDescent(ctx *qa.Context) []qa.Result {
	value, err := ctx.Condition("family_vertical_metrics")
	if err != nil {
		return []qa.Result{qa.Errorf("condition-error", "family_vertical_metrics: %v", err)}
	}
	vm := value.(qa.FamilyVerticalMetrics)
	var results []qa.Result
	for i, otf := range ctx.Fonts() {
		os2 := os2Table(otf)
		if os2 == nil {
			results = append(results, qa.Failf("lacks-table",
				"font #%d lacks an 'OS/2' table", i))
			continue
		}
		yMax := int(vm.YMax)
		yMinAbs := int(vm.YMin)
		if yMinAbs < 0 {
			yMinAbs = -yMinAbs
		}
		if int(os2.WinAscent) < yMax || int(os2.WinAscent) > 2*yMax {
			results = append(results, qa.Failf("ascent",
				"OS/2.usWinAscent of font #%d is %d, but should be between %d and %d",
				i, os2.WinAscent, yMax, 2*yMax))
		}
		if int(os2.WinDescent) < yMinAbs || int(os2.WinDescent) > 2*yMinAbs {
			results = append(results, qa.Failf("descent",
				"OS/2.usWinDescent of font #%d is %d, but should be between %d and %d",
				i, os2.WinDescent, yMinAbs, 2*yMinAbs))
		}
	}
	if len(results) == 0 {
		return []qa.Result{qa.Pass("OS/2 usWinAscent & usWinDescent values look good")}
	}
	return results
}

func checkOS2MetricsMatchHHea(ctx *qa.Context) []qa.Result {
	otf := ctx.Font()
	os2 := os2Table(otf)
	hhea := hheaTable(otf)
	if os2 == nil || hhea == nil {
		return []qa.Result{qa.Failf("lacks-table",
			"font lacks an 'OS/2' or 'hhea' table; vertical metrics cannot be compared")}
	}
	var results []qa.Result
	if os2.TypoAscender != hhea.Ascender {
		results = append(results, qa.Failf("ascender",
			"OS/2 sTypoAscender (%d) and hhea ascent (%d) must be equal",
			os2.TypoAscender, hhea.Ascender))
	}
	if os2.TypoDescender != hhea.Descender {
		results = append(results, qa.Failf("descender",
			"OS/2 sTypoDescender (%d) and hhea descent (%d) must be equal",
			os2.TypoDescender, hhea.Descender))
	}
	if os2.TypoLineGap != hhea.LineGap {
		results = append(results, qa.Failf("lineGap",
			"OS/2 sTypoLineGap (%d) and hhea lineGap (%d) must be equal",
			os2.TypoLineGap, hhea.LineGap))
	}
	if len(results) == 0 {
		return []qa.Result{qa.Pass("OS/2.sTypoAscender/Descender values match hhea.ascent/descent")}
	}
	return results
}

// --- Table access shorthands ------------------------------------------------

func nameTable(otf *ot.Font) *ot.NameTable {
	if t := otf.Table(ot.T("name")); t != nil {
		return t.Self().AsName()
	}
	return nil
}

func postTable(otf *ot.Font) *ot.PostTable {
	if t := otf.Table(ot.T("post")); t != nil {
		return t.Self().AsPost()
	}
	return nil
}

func os2Table(otf *ot.Font) *ot.OS2Table {
	if t := otf.Table(ot.T("OS/2")); t != nil {
		return t.Self().AsOS2()
	}
	return nil
}

func hheaTable(otf *ot.Font) *ot.HHeaTable {
	if t := otf.Table(ot.T("hhea")); t != nil {
		return t.Self().AsHHea()
	}
	return nil
}

func cmapTable(otf *ot.Font) *ot.CMapTable {
	if t := otf.Table(ot.T("cmap")); t != nil {
		return t.Self().AsCMap()
	}
	return nil
}
