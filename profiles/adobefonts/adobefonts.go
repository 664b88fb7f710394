/*
Package adobefonts assembles the QA profile used for onboarding fonts to the
Adobe Fonts library. The profile imports checks from the universal and names
profiles, restricted to an explicit list, and remaps the severity of a few
messages that are judged less severe for this library than their originating
profiles assume.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package adobefonts

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/emirpasic/gods/sets/hashset"
	"golang.org/x/image/font/sfnt"

	"github.com/npillmayer/fontlint/ot"
	"github.com/npillmayer/fontlint/profiles/names"
	"github.com/npillmayer/fontlint/profiles/universal"
	"github.com/npillmayer/fontlint/qa"
)

// OwnChecks lists the IDs of the checks defined by this package.
var OwnChecks = []string{
	"com.adobe.fonts/check/family/consistent_upm",
	"com.adobe.fonts/check/find_empty_letters",
	"com.adobe.fonts/check/nameid_1_win_english",
}

// explicitChecks is the closed list of check IDs this profile runs. Imported
// check lists are intersected against it, so that adding a check to the
// universal or names profile never silently extends this profile.
var explicitChecks = []string{
	"com.adobe.fonts/check/family/consistent_upm",
	"com.adobe.fonts/check/find_empty_letters",
	"com.adobe.fonts/check/nameid_1_win_english",
	"com.google.fonts/check/name/trailing_spaces",
	"com.google.fonts/check/required_tables",
	"com.google.fonts/check/whitespace_glyphs",
	"com.google.fonts/check/valid_glyphnames",
	"com.google.fonts/check/unique_glyphnames",
	"com.google.fonts/check/family/win_ascent_and_descent",
	"com.google.fonts/check/os2_metrics_match_hhea",
	"com.adobe.fonts/check/name/empty_records",
	"com.google.fonts/check/name/no_copyright_on_description",
	"com.google.fonts/check/monospace",
	"com.google.fonts/check/name/match_familyname_fullfont",
	"com.google.fonts/check/family_naming_recommendations",
	"com.adobe.fonts/check/name/postscript_vs_cff",
	"com.adobe.fonts/check/name/postscript_name_consistency",
	"com.adobe.fonts/check/family/max_4_fonts_per_family_name",
}

// OverriddenChecks lists the imported checks whose message severities this
// profile remaps.
var OverriddenChecks = []string{
	"com.google.fonts/check/whitespace_glyphs",
	"com.google.fonts/check/valid_glyphnames",
	"com.google.fonts/check/family/win_ascent_and_descent",
	"com.google.fonts/check/os2_metrics_match_hhea",
}

// Profile returns the Adobe Fonts profile: own checks, plus the universal
// and names checks from the explicit list, with severity overrides applied.
func Profile() *qa.Profile {
	explicit := hashset.New()
	for _, id := range explicitChecks {
		explicit.Add(id)
	}
	p := qa.NewProfile("Adobe Fonts", "adobefonts")
	p.Include(qa.Intersect(OwnChecks, explicit)...)
	p.Include(qa.Intersect(universal.ProfileChecks, explicit)...)
	p.Include(qa.Intersect(names.ProfileChecks, explicit)...)

	p.Override("com.google.fonts/check/whitespace_glyphs",
		qa.Override{
			Code:   "missing-whitespace-glyph-0x00A0",
			Status: qa.WARN,
			Reason: "this is not as severe as assessed in the original check for 0x00A0",
		})
	p.Override("com.google.fonts/check/valid_glyphnames",
		qa.Override{
			Code:   "found-invalid-names",
			Status: qa.WARN,
			Reason: "glyph names are only needed for production workflows, not for shipping fonts",
		})
	p.Override("com.google.fonts/check/family/win_ascent_and_descent",
		qa.Override{
			Code:   "ascent",
			Status: qa.WARN,
			Reason: "clipping on Windows is considered a usability concern, not a showstopper",
		},
		qa.Override{
			Code:   "descent",
			Status: qa.WARN,
			Reason: "clipping on Windows is considered a usability concern, not a showstopper",
		})
	p.Override("com.google.fonts/check/os2_metrics_match_hhea",
		qa.Override{
			Code:   "ascender",
			Status: qa.WARN,
			Reason: "mismatching hhea metrics merely produce inconsistent linespacing across platforms",
		},
		qa.Override{
			Code:   "descender",
			Status: qa.WARN,
			Reason: "mismatching hhea metrics merely produce inconsistent linespacing across platforms",
		})
	return p
}

func init() {
	qa.MustRegister(&qa.Check{
		ID:          "com.adobe.fonts/check/family/consistent_upm",
		Description: "Fonts have consistent Units Per Em?",
		Rationale: `While not required by the OpenType spec, we (Adobe) expect that a
group of fonts designed & produced as a family have consistent units per
em.`,
		Proposal: "https://github.com/googlefonts/fontbakery/issues/2372",
		Scope:    qa.ScopeFamily,
		Run:      checkConsistentUPM,
	})
	qa.MustRegister(&qa.Check{
		ID:          "com.adobe.fonts/check/find_empty_letters",
		Description: "Letters in font have glyphs?",
		Rationale: `Letters in a font cannot be empty, unless they are Hangul filler
characters, which are used as placeholders in Korean syllable composition.`,
		Proposal: "https://github.com/googlefonts/fontbakery/pull/2460",
		Run:      checkFindEmptyLetters,
	})
	qa.MustRegister(&qa.Check{
		ID:          "com.adobe.fonts/check/nameid_1_win_english",
		Description: "Font has a good nameID 1, Windows/Unicode/US-English 'name' table record?",
		Rationale: `We require fonts to have a name table record for nameID 1 with
platform, encoding and language set to Windows, Unicode BMP and US-English,
since that is the record most operating systems and applications consult
first for the font's menu name.`,
		Proposal: "https://github.com/googlefonts/fontbakery/issues/3714",
		Run:      checkNameID1WinEnglish,
	})
}

func checkConsistentUPM(ctx *qa.Context) []qa.Result {
	distinct := make(map[uint16]bool)
	for _, otf := range ctx.Fonts() {
		if head := headTable(otf); head != nil {
			distinct[head.UnitsPerEm] = true
		}
	}
	if len(distinct) > 1 {
		upms := make([]int, 0, len(distinct))
		for upm := range distinct {
			upms = append(upms, int(upm))
		}
		sort.Ints(upms)
		strs := make([]string, len(upms))
		for i, upm := range upms {
			strs[i] = fmt.Sprintf("%d", upm)
		}
		return []qa.Result{qa.Failf("inconsistent-upem",
			"fonts have different units per em: %s", strings.Join(strs, ", "))}
	}
	return []qa.Result{qa.Pass("fonts have consistent units per em")}
}

// hangulFillers are Hangul filler codepoints, which are expected to have
// empty glyphs.
var hangulFillers = map[rune]bool{
	0x115F: true, // HANGUL CHOSEONG FILLER
	0x1160: true, // HANGUL JUNGSEONG FILLER
	0x3164: true, // HANGUL FILLER
	0xFFA0: true, // HALFWIDTH HANGUL FILLER
}

func isHangulSyllable(r rune) bool {
	return r >= 0xAC00 && r <= 0xD7A3
}

func checkFindEmptyLetters(ctx *qa.Context) []qa.Result {
	otf := ctx.Font()
	cmap := cmapTable(otf)
	if cmap == nil {
		return []qa.Result{qa.Failf("lacks-table",
			"font lacks a 'cmap' table; letter coverage cannot be verified")}
	}
	isEmpty := emptyGlyphPredicate(otf)
	if isEmpty == nil {
		return []qa.Result{qa.Failf("lacks-table",
			"font carries no 'glyf', 'CFF ' or 'CFF2' glyph data")}
	}
	var results []qa.Result
	emptyHangul := 0
	for r, gid := range cmap.CodePoints() {
		if !unicode.IsLetter(r) || hangulFillers[r] {
			continue
		}
		if !isEmpty(gid) {
			continue
		}
		if isHangulSyllable(r) {
			emptyHangul++
			continue
		}
		results = append(results, qa.Failf("empty-letter",
			"U+%04X should be visible, but its glyph (%d) is empty", r, gid))
	}
	if emptyHangul > 0 {
		results = append(results, qa.Warnf("empty-hangul-letter",
			"font has %d empty glyphs for Hangul syllable letters", emptyHangul))
	}
	if len(results) == 0 {
		return []qa.Result{qa.Pass("letters in font have glyphs")}
	}
	return results
}

// emptyGlyphPredicate returns the glyph-emptiness test fitting the font's
// outline flavour, nil if the font carries no recognizable glyph data.
func emptyGlyphPredicate(otf *ot.Font) func(ot.GlyphIndex) bool {
	if otf.IsTrueType() {
		if glyf := glyfTable(otf); glyf != nil {
			return glyf.IsEmptyGlyph
		}
		return nil
	}
	for _, tag := range []string{"CFF ", "CFF2"} {
		if t := otf.Table(ot.T(tag)); t != nil {
			if cff := t.Self().AsCFF(); cff != nil {
				return cff.IsEmptyGlyph
			}
		}
	}
	return nil
}

func checkNameID1WinEnglish(ctx *qa.Context) []qa.Result {
	name := nameTable(ctx.Font())
	if name == nil {
		return []qa.Result{qa.Failf("name-table-not-found",
			"font has no 'name' table")}
	}
	rec := name.Record(sfnt.NameIDFamily,
		ot.PlatformWindows, ot.EncodingWindowsBMP, ot.LanguageWindowsEnglishUSA)
	if rec == nil {
		return []qa.Result{qa.Failf("nameid-1-not-found",
			"windows US English 'name' table record for nameID 1 was not found")}
	}
	s, err := rec.Decode()
	if err != nil {
		return []qa.Result{qa.Errorf("nameid-1-decoding-error",
			"windows US English 'name' table record for nameID 1 could not be decoded")}
	}
	if strings.TrimSpace(s) == "" {
		return []qa.Result{qa.Failf("nameid-1-empty",
			"windows US English 'name' table record for nameID 1 is empty")}
	}
	return []qa.Result{qa.Pass("font contains a good Windows US English 'name' table record for nameID 1")}
}

// --- Table access shorthands ------------------------------------------------

func headTable(otf *ot.Font) *ot.HeadTable {
	if t := otf.Table(ot.T("head")); t != nil {
		return t.Self().AsHead()
	}
	return nil
}

func nameTable(otf *ot.Font) *ot.NameTable {
	if t := otf.Table(ot.T("name")); t != nil {
		return t.Self().AsName()
	}
	return nil
}

func cmapTable(otf *ot.Font) *ot.CMapTable {
	if t := otf.Table(ot.T("cmap")); t != nil {
		return t.Self().AsCMap()
	}
	return nil
}

func glyfTable(otf *ot.Font) *ot.GlyfTable {
	if t := otf.Table(ot.T("glyf")); t != nil {
		return t.Self().AsGlyf()
	}
	return nil
}
