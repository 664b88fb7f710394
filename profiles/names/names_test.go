package names

import (
	"strings"
	"testing"

	"github.com/npillmayer/fontlint/internal/testfont"
	"github.com/npillmayer/fontlint/ot"
	"github.com/npillmayer/fontlint/qa"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func parseFont(t *testing.T, b *testfont.Builder) *ot.Font {
	t.Helper()
	otf, err := ot.Parse(b.Build())
	if err != nil {
		t.Fatalf("cannot parse synthetic font: %v", err)
	}
	return otf
}

func runCheck(id string, fonts ...*ot.Font) []qa.CheckReport {
	return qa.NewRunner(qa.NewProfile("Test", "test").Include(id)).Run(fonts...)
}

func allResults(reports []qa.CheckReport) []qa.Result {
	var results []qa.Result
	for _, rep := range reports {
		results = append(results, rep.Results...)
	}
	return results
}

func hasCode(reports []qa.CheckReport, code string) bool {
	for _, res := range allResults(reports) {
		if res.Message.Code == code {
			return true
		}
	}
	return false
}

// nameFont builds a font carrying just a name table with the given records
// (plus the tables required by unrelated machinery).
func nameFont(t *testing.T, records []testfont.NameRec) *ot.Font {
	t.Helper()
	return parseFont(t, testfont.NewTrueType().
		Add("name", testfont.Name(records)))
}

func TestEmptyRecords(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	const id = "com.adobe.fonts/check/name/empty_records"
	t.Run("non-empty records pass", func(t *testing.T) {
		otf := nameFont(t, []testfont.NameRec{
			testfont.WinEnglish(1, "Example Sans"),
		})
		if reports := runCheck(id, otf); reports[0].Worst() != qa.PASS {
			t.Errorf("expected PASS, have %s", reports[0].Worst())
		}
	})
	t.Run("empty record fails", func(t *testing.T) {
		otf := nameFont(t, []testfont.NameRec{
			testfont.WinEnglish(1, "Example Sans"),
			testfont.WinEnglish(2, "   "),
		})
		reports := runCheck(id, otf)
		if !hasCode(reports, "empty-record") {
			t.Errorf("expected message code 'empty-record'")
		}
	})
	t.Run("undecodable record is an error", func(t *testing.T) {
		otf := nameFont(t, []testfont.NameRec{
			{PlatformID: 3, EncodingID: 1, LanguageID: 0x0409, NameID: 1, Raw: []byte{0, 'A', 0}},
		})
		reports := runCheck(id, otf)
		if !hasCode(reports, "decoding-error") {
			t.Errorf("expected message code 'decoding-error'")
		}
	})
}

func TestNoCopyrightOnDescription(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	const id = "com.google.fonts/check/name/no_copyright_on_description"
	otf := nameFont(t, []testfont.NameRec{
		testfont.WinEnglish(10, "Copyright 2020 Example Foundry"),
	})
	if !hasCode(runCheck(id, otf), "copyright-on-description") {
		t.Errorf("expected message code 'copyright-on-description'")
	}
	otf = nameFont(t, []testfont.NameRec{
		testfont.WinEnglish(10, "A friendly workhorse sans."),
	})
	if reports := runCheck(id, otf); reports[0].Worst() != qa.PASS {
		t.Errorf("expected PASS, have %s", reports[0].Worst())
	}
}

func TestMatchFamilynameFullfont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	const id = "com.google.fonts/check/name/match_familyname_fullfont"
	t.Run("full name extends family name", func(t *testing.T) {
		otf := nameFont(t, []testfont.NameRec{
			testfont.WinEnglish(1, "ExampleSans"),
			testfont.WinEnglish(4, "ExampleSans Bold"),
		})
		if reports := runCheck(id, otf); reports[0].Worst() != qa.PASS {
			t.Errorf("expected PASS, have %s", reports[0].Worst())
		}
	})
	t.Run("full name not starting with family name", func(t *testing.T) {
		otf := nameFont(t, []testfont.NameRec{
			testfont.WinEnglish(1, "ExampleSans"),
			testfont.WinEnglish(4, "Bold ExampleSans"),
		})
		if !hasCode(runCheck(id, otf), "mismatch-font-names") {
			t.Errorf("expected message code 'mismatch-font-names'")
		}
	})
	t.Run("all family name ids must match", func(t *testing.T) {
		otf := nameFont(t, []testfont.NameRec{
			testfont.WinEnglish(1, "Wrong Family"),
			testfont.WinEnglish(16, "ExampleSans"),
			testfont.WinEnglish(4, "ExampleSans Black"),
		})
		reports := runCheck(id, otf)
		if !hasCode(reports, "mismatch-font-names") {
			t.Errorf("name ID 1 does not prefix the full name, expected 'mismatch-font-names'")
		}
	})
	t.Run("matching legacy and typographic family names pass", func(t *testing.T) {
		otf := nameFont(t, []testfont.NameRec{
			testfont.WinEnglish(1, "ExampleSans Black"),
			testfont.WinEnglish(16, "ExampleSans"),
			testfont.WinEnglish(4, "ExampleSans Black"),
		})
		if reports := runCheck(id, otf); reports[0].Worst() != qa.PASS {
			t.Errorf("expected PASS, have %s", reports[0].Worst())
		}
	})
	t.Run("no comparable records", func(t *testing.T) {
		otf := nameFont(t, []testfont.NameRec{
			testfont.WinEnglish(2, "Regular"),
		})
		if !hasCode(runCheck(id, otf), "missing-font-names") {
			t.Errorf("expected message code 'missing-font-names'")
		}
	})
	t.Run("undecodable full name", func(t *testing.T) {
		otf := nameFont(t, []testfont.NameRec{
			testfont.WinEnglish(1, "ExampleSans"),
			{PlatformID: 3, EncodingID: 1, LanguageID: 0x0409, NameID: 4, Raw: []byte{0, 'A', 0}},
		})
		if !hasCode(runCheck(id, otf), "cannot-decode-nameid-4") {
			t.Errorf("expected message code 'cannot-decode-nameid-4'")
		}
	})
}

func TestFamilyNamingRecommendations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	const id = "com.google.fonts/check/family_naming_recommendations"
	t.Run("conforming names pass", func(t *testing.T) {
		otf := nameFont(t, []testfont.NameRec{
			testfont.WinEnglish(1, "Example Sans"),
			testfont.WinEnglish(4, "Example Sans Regular"),
			testfont.WinEnglish(6, "ExampleSans-Regular"),
		})
		if reports := runCheck(id, otf); reports[0].Worst() != qa.PASS {
			t.Errorf("expected PASS, have %s", reports[0].Worst())
		}
	})
	t.Run("length limits count characters, not bytes", func(t *testing.T) {
		otf := nameFont(t, []testfont.NameRec{
			testfont.WinEnglish(1, strings.Repeat("ä", 31)),
		})
		if reports := runCheck(id, otf); reports[0].Worst() != qa.PASS {
			t.Errorf("31 characters are within the limit, have %s", reports[0].Worst())
		}
	})
	t.Run("violations are reported as info", func(t *testing.T) {
		otf := nameFont(t, []testfont.NameRec{
			testfont.WinEnglish(1, strings.Repeat("x", 32)),
			testfont.WinEnglish(6, "Example Sans-Regular"), // space is not allowed
		})
		reports := runCheck(id, otf)
		if !hasCode(reports, "bad-entries") {
			t.Fatalf("expected message code 'bad-entries'")
		}
		if reports[0].Worst() != qa.INFO {
			t.Errorf("naming recommendations are advisory, expected INFO, have %s",
				reports[0].Worst())
		}
	})
}

func TestPostscriptNameConsistency(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	const id = "com.adobe.fonts/check/name/postscript_name_consistency"
	t.Run("consistent entries pass", func(t *testing.T) {
		otf := nameFont(t, []testfont.NameRec{
			testfont.WinEnglish(6, "ExampleSans-Regular"),
			testfont.MacRoman(6, "ExampleSans-Regular"),
		})
		if reports := runCheck(id, otf); reports[0].Worst() != qa.PASS {
			t.Errorf("expected PASS, have %s", reports[0].Worst())
		}
	})
	t.Run("divergent entries fail", func(t *testing.T) {
		otf := nameFont(t, []testfont.NameRec{
			testfont.WinEnglish(6, "ExampleSans-Regular"),
			testfont.MacRoman(6, "ExampleSans"),
		})
		if !hasCode(runCheck(id, otf), "inconsistency") {
			t.Errorf("expected message code 'inconsistency'")
		}
	})
	t.Run("skipped for CFF fonts", func(t *testing.T) {
		otf := parseFont(t, testfont.NewCFF().
			Add("CFF ", testfont.CFF("ExampleSans-Regular", []int{5})).
			Add("name", testfont.Name([]testfont.NameRec{
				testfont.WinEnglish(6, "ExampleSans-Regular"),
			})))
		if reports := runCheck(id, otf); reports[0].Worst() != qa.SKIP {
			t.Errorf("expected SKIP on CFF font, have %s", reports[0].Worst())
		}
	})
}

func TestPostscriptVsCFF(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	const id = "com.adobe.fonts/check/name/postscript_vs_cff"
	t.Run("matching names pass", func(t *testing.T) {
		otf := parseFont(t, testfont.NewCFF().
			Add("CFF ", testfont.CFF("ExampleSans-Regular", []int{5})).
			Add("name", testfont.Name([]testfont.NameRec{
				testfont.WinEnglish(6, "ExampleSans-Regular"),
			})))
		if reports := runCheck(id, otf); reports[0].Worst() != qa.PASS {
			t.Errorf("expected PASS, have %s", reports[0].Worst())
		}
	})
	t.Run("mismatching names fail", func(t *testing.T) {
		otf := parseFont(t, testfont.NewCFF().
			Add("CFF ", testfont.CFF("ExampleSans-Regular", []int{5})).
			Add("name", testfont.Name([]testfont.NameRec{
				testfont.WinEnglish(6, "OtherName-Regular"),
			})))
		if !hasCode(runCheck(id, otf), "ps-cff-name-mismatch") {
			t.Errorf("expected message code 'ps-cff-name-mismatch'")
		}
	})
	t.Run("skipped for TrueType fonts", func(t *testing.T) {
		glyf, loca := testfont.GlyfLoca([]testfont.GlyphSpec{{Contours: 1}})
		otf := parseFont(t, testfont.NewTrueType().
			Add("maxp", testfont.MaxP(1)).
			Add("head", testfont.Head(testfont.HeadSpec{UnitsPerEm: 1000})).
			Add("loca", loca).
			Add("glyf", glyf))
		if reports := runCheck(id, otf); reports[0].Worst() != qa.SKIP {
			t.Errorf("expected SKIP on TrueType font, have %s", reports[0].Worst())
		}
	})
}

func TestMax4FontsPerFamilyName(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	const id = "com.adobe.fonts/check/family/max_4_fonts_per_family_name"
	family := func(t *testing.T, n int, name string) []*ot.Font {
		t.Helper()
		fonts := make([]*ot.Font, n)
		for i := range fonts {
			fonts[i] = nameFont(t, []testfont.NameRec{testfont.WinEnglish(1, name)})
		}
		return fonts
	}
	t.Run("four fonts pass", func(t *testing.T) {
		reports := runCheck(id, family(t, 4, "Example Sans")...)
		if reports[0].Worst() != qa.PASS {
			t.Errorf("expected PASS for 4 fonts, have %s", reports[0].Worst())
		}
	})
	t.Run("five fonts fail with the count cited", func(t *testing.T) {
		reports := runCheck(id, family(t, 5, "Example Sans")...)
		if len(reports) != 1 {
			t.Fatalf("family check must produce one report, has %d", len(reports))
		}
		fails := 0
		for _, res := range reports[0].Results {
			if res.Message.Code == "too-many" {
				fails++
				if !strings.Contains(res.Message.Text, "5") {
					t.Errorf("expected the count of 5 to be cited, message: %s", res.Message.Text)
				}
			}
		}
		if fails != 1 {
			t.Errorf("expected exactly one 'too-many' result, have %d", fails)
		}
	})
}

func TestMonospace(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	const id = "com.google.fonts/check/monospace"
	build := func(t *testing.T, advances []uint16, awMax uint16, fixedPitch uint32, panose [10]byte) *ot.Font {
		t.Helper()
		glyf, loca := testfont.GlyfLoca([]testfont.GlyphSpec{
			{Contours: 1}, {NoOutline: true}, {Contours: 1}, {Contours: 1},
		})
		return parseFont(t, testfont.NewTrueType().
			Add("head", testfont.Head(testfont.HeadSpec{UnitsPerEm: 1000, YMin: -200, YMax: 800})).
			Add("hhea", testfont.HHea(testfont.HHeaSpec{
				Ascender: 800, Descender: -200,
				AdvanceWidthMax: awMax, NumberOfHMetrics: uint16(len(advances)),
			})).
			Add("maxp", testfont.MaxP(uint16(len(advances)))).
			Add("hmtx", testfont.HMtx(advances)).
			Add("OS/2", testfont.OS2(testfont.OS2Spec{
				Panose:       panose,
				TypoAscender: 800, TypoDescender: -200,
				WinAscent: 800, WinDescent: 200,
			})).
			Add("post", testfont.PostV3(fixedPitch)).
			Add("cmap", testfont.CMap(map[rune]uint16{0x20: 1, 0x41: 2, 0x42: 3})).
			Add("loca", loca).
			Add("glyf", glyf))
	}
	monoPanose := [10]byte{2, 0, 0, 9} // latin text, proportion monospaced
	t.Run("proportional font with clean metadata", func(t *testing.T) {
		otf := build(t, []uint16{500, 250, 600, 600}, 600, 0, [10]byte{})
		reports := runCheck(id, otf)
		if !hasCode(reports, "good") {
			t.Errorf("expected message code 'good', results: %v", allResults(reports))
		}
	})
	t.Run("monospaced font with clean metadata", func(t *testing.T) {
		otf := build(t, []uint16{600, 600, 600, 600}, 600, 1, monoPanose)
		reports := runCheck(id, otf)
		if !hasCode(reports, "mono-good") {
			t.Errorf("expected message code 'mono-good', results: %v", allResults(reports))
		}
	})
	t.Run("monospaced font without post flag", func(t *testing.T) {
		otf := build(t, []uint16{600, 600, 600, 600}, 600, 0, monoPanose)
		if !hasCode(runCheck(id, otf), "mono-bad-post-isFixedPitch") {
			t.Errorf("expected message code 'mono-bad-post-isFixedPitch'")
		}
	})
	t.Run("monospaced font without monospaced panose", func(t *testing.T) {
		otf := build(t, []uint16{600, 600, 600, 600}, 600, 1, [10]byte{2})
		reports := runCheck(id, otf)
		if !hasCode(reports, "mono-bad-panose") {
			t.Errorf("expected message code 'mono-bad-panose'")
		}
		if hasCode(reports, "mono-good") {
			t.Errorf("metadata is not clean, 'mono-good' must not appear")
		}
	})
	t.Run("proportional font claiming fixed pitch", func(t *testing.T) {
		otf := build(t, []uint16{500, 250, 600, 600}, 600, 1, [10]byte{})
		if !hasCode(runCheck(id, otf), "bad-post-isFixedPitch") {
			t.Errorf("expected message code 'bad-post-isFixedPitch'")
		}
	})
	t.Run("wrong advanceWidthMax", func(t *testing.T) {
		otf := build(t, []uint16{500, 250, 600, 600}, 1000, 0, [10]byte{})
		if !hasCode(runCheck(id, otf), "bad-advanceWidthMax") {
			t.Errorf("expected message code 'bad-advanceWidthMax'")
		}
	})
	t.Run("monospaced font with width outliers", func(t *testing.T) {
		// glyph 4 is unmapped from ASCII and deviates from the common width
		otf := build(t, []uint16{600, 600, 600, 600, 450}, 600, 1, monoPanose)
		if !hasCode(runCheck(id, otf), "mono-outliers") {
			t.Errorf("expected message code 'mono-outliers'")
		}
	})
	t.Run("wide notdef glyph is not an outlier", func(t *testing.T) {
		glyf, loca := testfont.GlyfLoca([]testfont.GlyphSpec{
			{Contours: 1}, {NoOutline: true}, {Contours: 1}, {Contours: 1},
		})
		otf := parseFont(t, testfont.NewTrueType().
			Add("head", testfont.Head(testfont.HeadSpec{UnitsPerEm: 1000, YMin: -200, YMax: 800})).
			Add("hhea", testfont.HHea(testfont.HHeaSpec{
				Ascender: 800, Descender: -200,
				AdvanceWidthMax: 600, NumberOfHMetrics: 4,
			})).
			Add("maxp", testfont.MaxP(4)).
			Add("hmtx", testfont.HMtx([]uint16{450, 600, 600, 600})).
			Add("OS/2", testfont.OS2(testfont.OS2Spec{
				Panose:       monoPanose,
				TypoAscender: 800, TypoDescender: -200,
				WinAscent: 800, WinDescent: 200,
			})).
			Add("post", testfont.PostV2(1, []string{".notdef", "space", "A", "B"})).
			Add("cmap", testfont.CMap(map[rune]uint16{0x20: 1, 0x41: 2, 0x42: 3})).
			Add("loca", loca).
			Add("glyf", glyf))
		reports := runCheck(id, otf)
		if hasCode(reports, "mono-outliers") {
			t.Errorf("the wide .notdef must not count as an outlier, results: %v", allResults(reports))
		}
		if !hasCode(reports, "mono-good") {
			t.Errorf("expected message code 'mono-good', results: %v", allResults(reports))
		}
	})
	t.Run("skipped for CFF fonts", func(t *testing.T) {
		otf := parseFont(t, testfont.NewCFF().
			Add("CFF ", testfont.CFF("Example", []int{5})).
			Add("cmap", testfont.CMap(map[rune]uint16{0x20: 0})).
			Add("hmtx", testfont.HMtx([]uint16{600})))
		if reports := runCheck(id, otf); reports[0].Worst() != qa.SKIP {
			t.Errorf("expected SKIP on CFF font, have %s", reports[0].Worst())
		}
	})
}

func TestNamesProfileContents(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	p := Profile()
	if err := p.ExpectChecks(ProfileChecks, true); err != nil {
		t.Fatalf("profile composition broken: %v", err)
	}
	for _, id := range ProfileChecks {
		if _, ok := qa.Lookup(id); !ok {
			t.Errorf("profile lists unregistered check %s", id)
		}
	}
}
