/*
Package names implements checks on the font naming table: record hygiene,
consistency between name entries and other tables, and family-level naming
conventions.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package names

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font/sfnt"

	"github.com/npillmayer/fontlint/ot"
	"github.com/npillmayer/fontlint/qa"
)

// ProfileChecks lists the IDs of all checks of the names profile, in profile
// order.
var ProfileChecks = []string{
	"com.adobe.fonts/check/name/empty_records",
	"com.google.fonts/check/name/no_copyright_on_description",
	"com.google.fonts/check/monospace",
	"com.google.fonts/check/name/match_familyname_fullfont",
	"com.google.fonts/check/family_naming_recommendations",
	"com.adobe.fonts/check/name/postscript_vs_cff",
	"com.adobe.fonts/check/name/postscript_name_consistency",
	"com.adobe.fonts/check/family/max_4_fonts_per_family_name",
}

// Profile returns the names profile.
func Profile() *qa.Profile {
	return qa.NewProfile("Names", "names").Include(ProfileChecks...)
}

func init() {
	qa.MustRegister(&qa.Check{
		ID:          "com.adobe.fonts/check/name/empty_records",
		Description: "Check name table for empty records.",
		Rationale: `Check the name table for empty records, as this can cause
problems in Adobe apps.`,
		Proposal:   "https://github.com/googlefonts/fontbakery/pull/2369",
		Conditions: []string{"has_name_table"},
		Run:        checkNameEmptyRecords,
	})
	qa.MustRegister(&qa.Check{
		ID:          "com.google.fonts/check/name/no_copyright_on_description",
		Description: "Description strings in the name table must not contain copyright info.",
		Conditions:  []string{"has_name_table"},
		Run:         checkNoCopyrightOnDescription,
	})
	qa.MustRegister(&qa.Check{
		ID:          "com.google.fonts/check/monospace",
		Description: "Checking correctness of monospaced metadata.",
		Rationale: `There are various metadata in the OpenType spec to specify if a font
is monospaced or not. If the font is not truly monospaced, then no
monospaced metadata should be set (as sometimes they mistakenly are...).
If the font is monospaced, then many of the metadata must agree on it.`,
		Conditions: []string{"glyph_metrics_stats", "is_ttf"},
		Run:        checkMonospace,
	})
	qa.MustRegister(&qa.Check{
		ID:          "com.google.fonts/check/name/match_familyname_fullfont",
		Description: "Does full font name begin with the font family name?",
		Conditions:  []string{"has_name_table"},
		Run:         checkMatchFamilynameFullfont,
	})
	qa.MustRegister(&qa.Check{
		ID:          "com.google.fonts/check/family_naming_recommendations",
		Description: "Font follows the family naming recommendations?",
		Conditions:  []string{"has_name_table"},
		Run:         checkFamilyNamingRecommendations,
	})
	qa.MustRegister(&qa.Check{
		ID:          "com.adobe.fonts/check/name/postscript_vs_cff",
		Description: "CFF table FontName must match name table ID 6 (PostScript name).",
		Rationale: `The PostScript name entries in the font's name table should
match the FontName string in the CFF table.`,
		Proposal:   "https://github.com/googlefonts/fontbakery/pull/2229",
		Conditions: []string{"is_cff"},
		Run:        checkPostscriptVsCFF,
	})
	qa.MustRegister(&qa.Check{
		ID:          "com.adobe.fonts/check/name/postscript_name_consistency",
		Description: "Name table ID 6 (PostScript name) must be consistent across platforms.",
		Rationale: `The PostScript name entries in the font's name table should be
consistent across platforms. This is the TTF/CFF2 equivalent of the CFF
postscript_vs_cff check.`,
		Proposal:   "https://github.com/googlefonts/fontbakery/pull/2394",
		Conditions: []string{"!is_cff"},
		Run:        checkPostscriptNameConsistency,
	})
	qa.MustRegister(&qa.Check{
		ID:          "com.adobe.fonts/check/family/max_4_fonts_per_family_name",
		Description: "Verify that each group of fonts with the same nameID 1 has maximum of 4 fonts.",
		Rationale: `Per the OpenType spec: 'The Font Family name is used in combination
with Font Subfamily name (name ID 2), and should be shared among at most
four fonts that differ only in weight or style.'`,
		Proposal: "https://github.com/googlefonts/fontbakery/pull/2372",
		Scope:    qa.ScopeFamily,
		Run:      checkMax4FontsPerFamilyName,
	})
}

func checkNameEmptyRecords(ctx *qa.Context) []qa.Result {
	name := nameTable(ctx.Font())
	var results []qa.Result
	for _, rec := range name.Records {
		s, err := rec.Decode()
		if err != nil {
			results = append(results, qa.Errorf("decoding-error",
				"name record with key (%d, %d, %d, %d) could not be decoded",
				rec.PlatformID, rec.EncodingID, rec.LanguageID, rec.NameID))
			continue
		}
		if strings.TrimSpace(s) == "" {
			results = append(results, qa.Failf("empty-record",
				"name table record with key (%d, %d, %d, %d) is empty and should be removed",
				rec.PlatformID, rec.EncodingID, rec.LanguageID, rec.NameID))
		}
	}
	if len(results) == 0 {
		return []qa.Result{qa.Pass("no empty name table records found")}
	}
	return results
}

func checkNoCopyrightOnDescription(ctx *qa.Context) []qa.Result {
	name := nameTable(ctx.Font())
	var results []qa.Result
	for _, s := range name.Strings(ot.NameIDDescription) {
		if strings.Contains(s, "opyright") {
			results = append(results, qa.Failf("copyright-on-description",
				"some description name entries contain copyright info and should be removed: %q", s))
		}
	}
	if len(results) == 0 {
		return []qa.Result{qa.Pass("description strings in the name table do not contain any copyright string")}
	}
	return results
}

func checkMonospace(ctx *qa.Context) []qa.Result {
	otf := ctx.Font()
	var results []qa.Result
	required := []string{"glyf", "hhea", "hmtx", "OS/2", "post"}
	missing := false
	for _, tag := range required {
		if !otf.HasTable(ot.T(tag)) {
			results = append(results, qa.Failf("lacks-"+tag,
				"required table %q is missing", tag))
			missing = true
		}
	}
	if missing {
		return results
	}
	value, err := ctx.Condition("glyph_metrics_stats")
	if err != nil {
		return []qa.Result{qa.Errorf("condition-error", "glyph_metrics_stats: %v", err)}
	}
	stats := value.(qa.GlyphMetricsStats)
	hhea := hheaTable(otf)
	post := postTable(otf)
	os2 := os2Table(otf)
	hmtx := hmtxTable(otf)
	if hhea.AdvanceWidthMax != stats.WidthMax {
		results = append(results, qa.Failf("bad-advanceWidthMax",
			"hhea.advanceWidthMax is %d but it should be %d, the largest glyph advance width in the font",
			hhea.AdvanceWidthMax, stats.WidthMax))
	}
	if stats.SeemsMonospaced {
		if post.IsFixedPitch == 0 {
			results = append(results, qa.Failf("mono-bad-post-isFixedPitch",
				"on monospaced fonts, the value of post.isFixedPitch must be set to a non-zero value"))
		}
		if !os2.PanoseMonospaced() {
			results = append(results, qa.Failf("mono-bad-panose",
				"the PANOSE numbers are incorrect for a monospaced font"))
		}
		outliers := advanceWidthOutliers(hmtx, post, stats.MostCommonWidth)
		if outliers > 0 {
			pct := 100 * float64(outliers) / float64(hmtx.GlyphCount())
			results = append(results, qa.Warnf("mono-outliers",
				"the font seems monospaced, but %d glyphs (%.2f%%) have a different width",
				outliers, pct))
		}
		if len(results) == 0 {
			results = append(results, qa.Passf("mono-good",
				"the font is monospaced and all related metadata look good"))
		}
		return results
	}
	if post.IsFixedPitch != 0 {
		results = append(results, qa.Failf("bad-post-isFixedPitch",
			"on non-monospaced fonts, the post.isFixedPitch value must be 0, but is %d",
			post.IsFixedPitch))
	}
	if os2.PanoseMonospaced() {
		results = append(results, qa.Failf("bad-panose",
			"the PANOSE numbers claim the font is monospaced, but the glyph metrics say otherwise"))
	}
	if len(results) == 0 {
		results = append(results, qa.Passf("good",
			"the font is not monospaced and all related metadata look good"))
	}
	return results
}

// advanceWidthOutliers counts glyphs whose advance width deviates from the
// most common one. Zero-width glyphs (marks etc.) and the control glyphs
// .notdef, .null and NULL do not count as outliers.
func advanceWidthOutliers(hmtx *ot.HMtxTable, post *ot.PostTable, mostCommon uint16) int {
	outliers := 0
	for gid := 0; gid < hmtx.GlyphCount(); gid++ {
		aw, ok := hmtx.AdvanceWidth(ot.GlyphIndex(gid))
		if !ok || aw == 0 || aw == mostCommon {
			continue
		}
		if n, ok := post.GlyphName(ot.GlyphIndex(gid)); ok && isControlGlyphName(n) {
			continue
		}
		outliers++
	}
	return outliers
}

func isControlGlyphName(name string) bool {
	return name == ".notdef" || name == ".null" || name == "NULL"
}

// familyNameIDs are the name IDs that may carry a family name. The full font
// name has to begin with every one of them that is present.
var familyNameIDs = []sfnt.NameID{
	sfnt.NameIDFamily,
	ot.NameIDTypographicFamily,
	ot.NameIDWWSFamily,
}

func checkMatchFamilynameFullfont(ctx *qa.Context) []qa.Result {
	name := nameTable(ctx.Font())
	var results []qa.Result
	compared := false
	for _, rec := range name.Records {
		if rec.NameID != sfnt.NameIDFull {
			continue
		}
		full, err := rec.Decode()
		if err != nil {
			results = append(results, qa.Failf(
				fmt.Sprintf("cannot-decode-nameid-%d", sfnt.NameIDFull),
				"name record with key (%d, %d, %d, %d) could not be decoded",
				rec.PlatformID, rec.EncodingID, rec.LanguageID, rec.NameID))
			continue
		}
		for _, famID := range familyNameIDs {
			famRec := name.Record(famID, rec.PlatformID, rec.EncodingID, rec.LanguageID)
			if famRec == nil {
				continue
			}
			family, err := famRec.Decode()
			if err != nil {
				results = append(results, qa.Failf(
					fmt.Sprintf("cannot-decode-nameid-%d", famID),
					"name record with key (%d, %d, %d, %d) could not be decoded",
					famRec.PlatformID, famRec.EncodingID, famRec.LanguageID, famRec.NameID))
				continue
			}
			compared = true
			if !strings.HasPrefix(full, family) {
				results = append(results, qa.Failf("mismatch-font-names",
					"on the name record with key (%d, %d, %d), the full font name %q does not begin with the name ID %d font family name %q",
					rec.PlatformID, rec.EncodingID, rec.LanguageID, full, famID, family))
			}
		}
	}
	if !compared && len(results) == 0 {
		return []qa.Result{qa.Failf("missing-font-names",
			"the font's name table lacks a pair of records with name IDs 1/16/21 and 4, from which to verify the full font name")}
	}
	if len(results) == 0 {
		return []qa.Result{qa.Pass("full font name begins with the font family name")}
	}
	return results
}

const (
	maxPostScriptNameLength = 63
	maxFullNameLength       = 63
	maxFamilyNameLength     = 31
)

func checkFamilyNamingRecommendations(ctx *qa.Context) []qa.Result {
	name := nameTable(ctx.Font())
	var bad []string
	for _, s := range name.Strings(ot.NameIDPostScript) {
		if strings.Count(s, "-") > 1 {
			bad = append(bad, fmt.Sprintf("PostScript name %q contains more than one hyphen", s))
		}
		if utf8.RuneCountInString(s) > maxPostScriptNameLength {
			bad = append(bad, fmt.Sprintf("PostScript name %q exceeds %d characters", s, maxPostScriptNameLength))
		}
		for _, r := range s {
			if !isPostScriptNameChar(r) {
				bad = append(bad, fmt.Sprintf("PostScript name %q contains the disallowed character %q", s, r))
				break
			}
		}
	}
	for _, s := range name.Strings(sfnt.NameIDFull) {
		if utf8.RuneCountInString(s) > maxFullNameLength {
			bad = append(bad, fmt.Sprintf("full font name %q exceeds %d characters", s, maxFullNameLength))
		}
	}
	for _, id := range []sfnt.NameID{
		sfnt.NameIDFamily, sfnt.NameIDSubfamily,
		ot.NameIDTypographicFamily, ot.NameIDTypographicSubfamily,
	} {
		for _, s := range name.Strings(id) {
			if utf8.RuneCountInString(s) > maxFamilyNameLength {
				bad = append(bad, fmt.Sprintf("name ID %d entry %q exceeds %d characters", id, s, maxFamilyNameLength))
			}
		}
	}
	if len(bad) > 0 {
		return []qa.Result{qa.Infof("bad-entries",
			"some name table entries do not match the family naming recommendations:\n%s",
			strings.Join(bad, "\n"))}
	}
	return []qa.Result{qa.Pass("font follows the family naming recommendations")}
}

func isPostScriptNameChar(r rune) bool {
	return r == '-' ||
		(r >= '0' && r <= '9') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= 'a' && r <= 'z')
}

func checkPostscriptVsCFF(ctx *qa.Context) []qa.Result {
	otf := ctx.Font()
	cff := cffTable(otf)
	if cff == nil || len(cff.FontNames) != 1 {
		n := 0
		if cff != nil {
			n = len(cff.FontNames)
		}
		return []qa.Result{qa.Failf("cff-name-error",
			"unexpected number of font names in CFF table: %d", n)}
	}
	cffName := cff.FontNames[0]
	name := nameTable(otf)
	var results []qa.Result
	for _, s := range name.Strings(ot.NameIDPostScript) {
		if s != cffName {
			results = append(results, qa.Failf("ps-cff-name-mismatch",
				"name table PostScript name %q does not match CFF table FontName %q",
				s, cffName))
		}
	}
	if len(results) == 0 {
		return []qa.Result{qa.Pass("name table PostScript name matches CFF table FontName")}
	}
	return results
}

func checkPostscriptNameConsistency(ctx *qa.Context) []qa.Result {
	name := nameTable(ctx.Font())
	distinct := make(map[string]bool)
	for _, s := range name.Strings(ot.NameIDPostScript) {
		distinct[s] = true
	}
	if len(distinct) > 1 {
		names := make([]string, 0, len(distinct))
		for s := range distinct {
			names = append(names, s)
		}
		sort.Strings(names)
		return []qa.Result{qa.Failf("inconsistency",
			"entries in the name table ID 6 (PostScript name) are not consistent: %s",
			strings.Join(names, ", "))}
	}
	return []qa.Result{qa.Pass("entries in the name table ID 6 (PostScript name) are consistent")}
}

const maxFontsPerFamilyName = 4

func checkMax4FontsPerFamilyName(ctx *qa.Context) []qa.Result {
	counts := make(map[string]int)
	var order []string
	for _, otf := range ctx.Fonts() {
		name := nameTable(otf)
		seen := make(map[string]bool)
		for _, s := range name.StringsFiltered(sfnt.NameIDFamily,
			ot.PlatformWindows, ot.EncodingWindowsBMP, ot.LanguageWindowsEnglishUSA) {
			if seen[s] {
				continue
			}
			seen[s] = true
			if _, ok := counts[s]; !ok {
				order = append(order, s)
			}
			counts[s]++
		}
	}
	var results []qa.Result
	for _, family := range order {
		if counts[family] > maxFontsPerFamilyName {
			results = append(results, qa.Failf("too-many",
				"family %q has %d fonts (should be no more than %d)",
				family, counts[family], maxFontsPerFamilyName))
		}
	}
	if len(results) == 0 {
		return []qa.Result{qa.Pass("there are no more than 4 fonts per family name")}
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

func hmtxTable(otf *ot.Font) *ot.HMtxTable {
	if t := otf.Table(ot.T("hmtx")); t != nil {
		return t.Self().AsHMtx()
	}
	return nil
}

func cffTable(otf *ot.Font) *ot.CFFTable {
	if t := otf.Table(ot.T("CFF ")); t != nil {
		return t.Self().AsCFF()
	}
	return nil
}
