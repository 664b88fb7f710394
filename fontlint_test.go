package fontlint

import (
	"testing"

	"github.com/npillmayer/fontlint/internal/testfont"
	"github.com/npillmayer/fontlint/profiles/adobefonts"
	"github.com/npillmayer/fontlint/qa"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestFromBinary(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint")
	defer teardown()
	//
	data := testfont.NewTrueType().
		Add("head", testfont.Head(testfont.HeadSpec{UnitsPerEm: 1000})).
		Build()
	otf, err := FromBinary(data)
	if err != nil {
		t.Fatalf("cannot parse font: %v", err)
	}
	if len(otf.TableTags()) != 1 {
		t.Errorf("expected 1 table, have %v", otf.TableTags())
	}
	if _, err := FromBinary([]byte{1, 2, 3}); err == nil {
		t.Errorf("expected error for garbage input")
	}
}

func TestCheckFamily(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint")
	defer teardown()
	//
	data := testfont.NewTrueType().
		Add("head", testfont.Head(testfont.HeadSpec{UnitsPerEm: 1000})).
		Add("name", testfont.Name([]testfont.NameRec{
			testfont.WinEnglish(1, "Example Sans"),
		})).
		Build()
	otf, err := FromBinary(data)
	if err != nil {
		t.Fatalf("cannot parse font: %v", err)
	}
	reports := CheckFamily(adobefonts.Profile(), otf)
	if len(reports) == 0 {
		t.Fatalf("expected check reports")
	}
	byID := make(map[string]qa.Status)
	for _, rep := range reports {
		byID[rep.CheckID] = rep.Worst()
	}
	if byID["com.adobe.fonts/check/family/consistent_upm"] != qa.PASS {
		t.Errorf("expected consistent_upm to pass for a single font")
	}
	if byID["com.adobe.fonts/check/nameid_1_win_english"] != qa.PASS {
		t.Errorf("expected nameid_1_win_english to pass")
	}
	if byID["com.google.fonts/check/required_tables"] != qa.FAIL {
		t.Errorf("expected required_tables to fail for this sparse font")
	}
}
