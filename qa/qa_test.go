package qa

import (
	"strings"
	"testing"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestStatusOrdering(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	ordered := []Status{DEBUG, PASS, INFO, SKIP, WARN, FAIL, ERROR}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1] >= ordered[i] {
			t.Errorf("expected %s to be less severe than %s", ordered[i-1], ordered[i])
		}
	}
	if Worst(nil) != PASS {
		t.Errorf("worst of no results should be PASS")
	}
	results := []Result{
		Passf("", "fine"),
		Warnf("w", "watch out"),
		Failf("f", "broken"),
	}
	if Worst(results) != FAIL {
		t.Errorf("expected worst status FAIL, have %s", Worst(results))
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	reg := NewRegistry()
	chk := &Check{ID: "com.example/check/a", Run: func(ctx *Context) []Result { return nil }}
	if err := reg.Register(chk); err != nil {
		t.Fatalf("cannot register check: %v", err)
	}
	err := reg.Register(&Check{ID: "com.example/check/a", Run: chk.Run})
	if err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if !strings.Contains(err.Error(), "already registered") {
		t.Errorf("unexpected duplicate registration error: %v", err)
	}
	if reg.Len() != 1 {
		t.Errorf("expected 1 registered check, have %d", reg.Len())
	}
}

func TestRegistryValidation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	reg := NewRegistry()
	if err := reg.Register(&Check{ID: "  "}); err == nil {
		t.Errorf("expected registration of blank-ID check to fail")
	}
	if err := reg.Register(&Check{ID: "com.example/check/norun"}); err == nil {
		t.Errorf("expected registration of check without run function to fail")
	}
}

func TestConditionMemoizationAndNegation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	evals := 0
	conds := NewConditionSet()
	err := conds.Register(Condition{Name: "counted", Eval: func(ctx *Context) (any, error) {
		evals++
		return true, nil
	}})
	if err != nil {
		t.Fatalf("cannot register condition: %v", err)
	}
	ctx := NewContext(conds)
	for i := 0; i < 3; i++ {
		if !ctx.ConditionBool("counted") {
			t.Errorf("expected condition to hold")
		}
	}
	if evals != 1 {
		t.Errorf("expected condition to be evaluated once, was %d times", evals)
	}
	if ctx.ConditionBool("!counted") {
		t.Errorf("negated condition should not hold")
	}
	if ctx.ConditionBool("no_such_condition") {
		t.Errorf("unknown condition should evaluate to false")
	}
}

func TestConditionTruthiness(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	conds := NewConditionSet()
	conds.Register(Condition{Name: "nilval", Eval: func(ctx *Context) (any, error) {
		return nil, nil
	}})
	conds.Register(Condition{Name: "structval", Eval: func(ctx *Context) (any, error) {
		return GlyphMetricsStats{}, nil
	}})
	ctx := NewContext(conds)
	if ctx.ConditionBool("nilval") {
		t.Errorf("nil condition value should count as unmet")
	}
	if !ctx.ConditionBool("structval") {
		t.Errorf("non-boolean condition value should count as met")
	}
}

func TestProfileCheckIDsMarkOverrides(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	p := NewProfile("Test", "test")
	p.Include("com.example/check/a", "com.example/check/b", "com.example/check/a")
	if p.Len() != 2 {
		t.Fatalf("expected duplicate includes to collapse, profile has %d checks", p.Len())
	}
	p.Override("com.example/check/b", Override{Code: "x", Status: WARN, Reason: "testing"})
	ids := p.CheckIDs()
	if ids[0] != "com.example/check/a" || ids[1] != "com.example/check/b:test" {
		t.Errorf("unexpected check ID listing: %v", ids)
	}
	raw := p.RawCheckIDs()
	if raw[1] != "com.example/check/b" {
		t.Errorf("raw listing must not carry override markers: %v", raw)
	}
}

func TestProfileExpectChecks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	p := NewProfile("Test", "test").Include("a", "b", "c")
	if err := p.ExpectChecks([]string{"a", "b"}, false); err != nil {
		t.Errorf("non-exclusive expectation should tolerate extra checks: %v", err)
	}
	if err := p.ExpectChecks([]string{"a", "b"}, true); err == nil {
		t.Errorf("exclusive expectation should flag unexpected check 'c'")
	}
	if err := p.ExpectChecks([]string{"a", "d"}, false); err == nil {
		t.Errorf("expected missing check 'd' to be flagged")
	}
	if err := p.ExpectChecks([]string{"a", "b", "c"}, true); err != nil {
		t.Errorf("exact expectation should hold: %v", err)
	}
}

func TestIntersectPreservesOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	allowed := hashset.New("c", "a")
	got := Intersect([]string{"a", "b", "c"}, allowed)
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("expected [a c], have %v", got)
	}
}

func TestTagOverridden(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontlint.qa")
	defer teardown()
	//
	ids := TagOverridden([]string{"a", "b"}, "test", []string{"b"})
	if ids[0] != "a" || ids[1] != "b:test" {
		t.Errorf("unexpected tagging: %v", ids)
	}
}
