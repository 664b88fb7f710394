package adobefonts

import (
	"strings"
	"testing"

	"github.com/npillmayer/fontlint/internal/testfont"
	"github.com/npillmayer/fontlint/ot"
	"github.com/npillmayer/fontlint/profiles/names"
	"github.com/npillmayer/fontlint/profiles/universal"
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

func hasCode(reports []qa.CheckReport, code string) bool {
	for _, rep := range reports {
		for _, res := range rep.Results {
			if res.Message.Code == code {
				return true
			}
		}
	}
	return false
}

func upmFont(t *testing.T, upm uint16) *ot.Font {
	t.Helper()
	return parseFont(t, testfont.NewTrueType().
		Add("head", testfont.Head(testfont.HeadSpec{UnitsPerEm: upm})))
}

func TestConsistentUPM(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	const id = "com.adobe.fonts/check/family/consistent_upm"
	t.Run("single UPM passes", func(t *testing.T) {
		reports := runCheck(id, upmFont(t, 1000), upmFont(t, 1000), upmFont(t, 1000))
		if len(reports) != 1 {
			t.Fatalf("family check must produce one report, has %d", len(reports))
		}
		if reports[0].Worst() != qa.PASS {
			t.Errorf("expected PASS for consistent UPM, have %s", reports[0].Worst())
		}
	})
	t.Run("mixed UPM values fail, sorted listing", func(t *testing.T) {
		reports := runCheck(id, upmFont(t, 2048), upmFont(t, 1000))
		if !hasCode(reports, "inconsistent-upem") {
			t.Fatalf("expected message code 'inconsistent-upem'")
		}
		msg := reports[0].Results[0].Message.Text
		if !strings.Contains(msg, "1000, 2048") {
			t.Errorf("expected sorted UPM listing in message, have: %s", msg)
		}
	})
}

func TestFindEmptyLetters(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	const id = "com.adobe.fonts/check/find_empty_letters"
	build := func(t *testing.T, mapping map[rune]uint16, glyphs []testfont.GlyphSpec) *ot.Font {
		t.Helper()
		glyf, loca := testfont.GlyfLoca(glyphs)
		return parseFont(t, testfont.NewTrueType().
			Add("head", testfont.Head(testfont.HeadSpec{UnitsPerEm: 1000})).
			Add("maxp", testfont.MaxP(uint16(len(glyphs)))).
			Add("cmap", testfont.CMap(mapping)).
			Add("loca", loca).
			Add("glyf", glyf))
	}
	t.Run("letters with outlines pass", func(t *testing.T) {
		otf := build(t, map[rune]uint16{0x41: 1, 0x42: 2},
			[]testfont.GlyphSpec{{Contours: 1}, {Contours: 1}, {Contours: 2}})
		reports := runCheck(id, otf)
		if reports[0].Worst() != qa.PASS {
			t.Errorf("expected PASS, have %s", reports[0].Worst())
		}
	})
	t.Run("empty letter fails", func(t *testing.T) {
		otf := build(t, map[rune]uint16{0x41: 1},
			[]testfont.GlyphSpec{{Contours: 1}, {NoOutline: true}})
		reports := runCheck(id, otf)
		if !hasCode(reports, "empty-letter") {
			t.Errorf("expected message code 'empty-letter'")
		}
	})
	t.Run("empty punctuation is not a letter", func(t *testing.T) {
		otf := build(t, map[rune]uint16{0x2E: 1}, // FULL STOP
			[]testfont.GlyphSpec{{Contours: 1}, {NoOutline: true}})
		if reports := runCheck(id, otf); reports[0].Worst() != qa.PASS {
			t.Errorf("empty non-letter must not be flagged, have %s", reports[0].Worst())
		}
	})
	t.Run("hangul fillers are exempt", func(t *testing.T) {
		otf := build(t, map[rune]uint16{0x3164: 1},
			[]testfont.GlyphSpec{{Contours: 1}, {NoOutline: true}})
		if reports := runCheck(id, otf); reports[0].Worst() != qa.PASS {
			t.Errorf("empty Hangul filler must not be flagged, have %s", reports[0].Worst())
		}
	})
	t.Run("empty hangul syllables warn once", func(t *testing.T) {
		otf := build(t, map[rune]uint16{0xAC00: 1, 0xAC01: 2},
			[]testfont.GlyphSpec{{Contours: 1}, {NoOutline: true}, {NoOutline: true}})
		reports := runCheck(id, otf)
		if !hasCode(reports, "empty-hangul-letter") {
			t.Fatalf("expected message code 'empty-hangul-letter'")
		}
		if reports[0].Worst() != qa.WARN {
			t.Errorf("expected WARN, have %s", reports[0].Worst())
		}
		if len(reports[0].Results) != 1 {
			t.Errorf("expected a single aggregated result, have %d", len(reports[0].Results))
		}
	})
	t.Run("empty CFF charstrings fail", func(t *testing.T) {
		otf := parseFont(t, testfont.NewCFF().
			Add("CFF ", testfont.CFF("Example", []int{5, 1})).
			Add("cmap", testfont.CMap(map[rune]uint16{0x41: 1})))
		if !hasCode(runCheck(id, otf), "empty-letter") {
			t.Errorf("expected message code 'empty-letter' for one-byte charstring")
		}
	})
}

func TestNameID1WinEnglish(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	const id = "com.adobe.fonts/check/nameid_1_win_english"
	cases := []struct {
		name       string
		builder    *testfont.Builder
		wantStatus qa.Status
		wantCode   string
	}{
		{
			name: "good record",
			builder: testfont.NewTrueType().Add("name", testfont.Name([]testfont.NameRec{
				testfont.WinEnglish(1, "Example Sans"),
			})),
			wantStatus: qa.PASS,
		},
		{
			name:       "no name table",
			builder:    testfont.NewTrueType(),
			wantStatus: qa.FAIL,
			wantCode:   "name-table-not-found",
		},
		{
			name: "record missing",
			builder: testfont.NewTrueType().Add("name", testfont.Name([]testfont.NameRec{
				testfont.MacRoman(1, "Example Sans"),
			})),
			wantStatus: qa.FAIL,
			wantCode:   "nameid-1-not-found",
		},
		{
			name: "record undecodable",
			builder: testfont.NewTrueType().Add("name", testfont.Name([]testfont.NameRec{
				{PlatformID: 3, EncodingID: 1, LanguageID: 0x0409, NameID: 1, Raw: []byte{0, 'A', 0}},
			})),
			wantStatus: qa.ERROR,
			wantCode:   "nameid-1-decoding-error",
		},
		{
			name: "record empty",
			builder: testfont.NewTrueType().Add("name", testfont.Name([]testfont.NameRec{
				testfont.WinEnglish(1, " "),
			})),
			wantStatus: qa.FAIL,
			wantCode:   "nameid-1-empty",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reports := runCheck(id, parseFont(t, tc.builder))
			if len(reports) != 1 || len(reports[0].Results) != 1 {
				t.Fatalf("check must produce exactly one result, has %v", reports)
			}
			res := reports[0].Results[0]
			if res.Status != tc.wantStatus {
				t.Errorf("expected status %s, have %s", tc.wantStatus, res.Status)
			}
			if tc.wantCode != "" && res.Message.Code != tc.wantCode {
				t.Errorf("expected message code %q, have %q", tc.wantCode, res.Message.Code)
			}
		})
	}
}

func TestProfileComposition(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	p := Profile()
	var expected []string
	expected = append(expected, OwnChecks...)
	expected = append(expected, universal.ProfileChecks...)
	expected = append(expected, names.ProfileChecks...)
	expected = qa.TagOverridden(expected, p.Tag, OverriddenChecks)
	if err := p.ExpectChecks(expected, true); err != nil {
		t.Fatalf("profile composition broken: %v", err)
	}
	for _, id := range p.RawCheckIDs() {
		if _, ok := qa.Lookup(id); !ok {
			t.Errorf("profile lists unregistered check %s", id)
		}
	}
}

func TestProfileOverridesRemapSeverity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	// a font mapping a space but no no-break space: FAIL under the universal
	// profile, only WARN under this one
	otf := parseFont(t, testfont.NewTrueType().
		Add("cmap", testfont.CMap(map[rune]uint16{0x20: 1})).
		Add("maxp", testfont.MaxP(2)))
	const checkID = "com.google.fonts/check/whitespace_glyphs"

	status := func(p *qa.Profile) qa.Status {
		for _, rep := range qa.NewRunner(p).Run(otf) {
			if rep.CheckID == checkID {
				return rep.Worst()
			}
		}
		t.Fatalf("no report for %s", checkID)
		return qa.DEBUG
	}
	if s := status(universal.Profile()); s != qa.FAIL {
		t.Errorf("expected FAIL under the universal profile, have %s", s)
	}
	if s := status(Profile()); s != qa.WARN {
		t.Errorf("expected WARN under the adobefonts profile, have %s", s)
	}
}
