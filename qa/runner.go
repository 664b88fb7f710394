package qa

import (
	"fmt"
	"sort"
	"strings"

	"github.com/npillmayer/fontlint/ot"
)

// CheckReport holds the outcome of one check on one font (or, for
// family-scoped checks, on the whole family).
type CheckReport struct {
	CheckID   string
	FontIndex int // index of the checked font, -1 for family scope
	Results   []Result
}

// Worst returns the most severe status among the report's results, PASS for
// an empty result list.
func (r CheckReport) Worst() Status {
	return Worst(r.Results)
}

// Runner executes the checks of a profile over a set of fonts.
type Runner struct {
	Profile    *Profile
	Registry   *Registry
	Conditions *ConditionSet
}

// NewRunner creates a runner for a profile, using the default check registry
// and the builtin conditions.
func NewRunner(p *Profile) *Runner {
	return &Runner{
		Profile:    p,
		Registry:   DefaultRegistry(),
		Conditions: BuiltinConditions(),
	}
}

// Run executes the profile's checks on the given fonts and returns one report
// per check execution: family-scoped checks run once over all fonts,
// font-scoped checks run once per font. Checks whose conditions are unmet
// report a single SKIP result. A check that panics is reported as ERROR
// rather than aborting the run. Severity overrides of the profile are applied
// to the results, keeping the original message texts.
func (r *Runner) Run(fonts ...*ot.Font) []CheckReport {
	ctx := NewContext(r.Conditions, fonts...)
	var reports []CheckReport
	for _, id := range r.Profile.RawCheckIDs() {
		check, ok := r.Registry.Lookup(id)
		if !ok {
			tracer().Errorf("profile %q lists unregistered check %q", r.Profile.Name, id)
			reports = append(reports, CheckReport{
				CheckID:   id,
				FontIndex: -1,
				Results: []Result{Errorf("unregistered-check",
					"check %s is not registered", id)},
			})
			continue
		}
		overrides := r.Profile.Overrides(id)
		if check.Scope == ScopeFamily {
			results := r.runOne(check, ctx.forFont(-1))
			reports = append(reports, CheckReport{
				CheckID:   id,
				FontIndex: -1,
				Results:   applyOverrides(results, overrides),
			})
			continue
		}
		for i := range fonts {
			results := r.runOne(check, ctx.forFont(i))
			reports = append(reports, CheckReport{
				CheckID:   id,
				FontIndex: i,
				Results:   applyOverrides(results, overrides),
			})
		}
	}
	return reports
}

// runOne evaluates a check's conditions and, if all are met, runs it.
func (r *Runner) runOne(check *Check, ctx *Context) (results []Result) {
	defer func() {
		if p := recover(); p != nil {
			tracer().Errorf("check %s panicked: %v", check.ID, p)
			results = []Result{Errorf("uncaught-error",
				"check raised an uncaught error: %v", p)}
		}
	}()
	for _, cond := range check.Conditions {
		negate := strings.HasPrefix(cond, "!")
		value, err := ctx.Condition(strings.TrimPrefix(cond, "!"))
		if err != nil {
			return []Result{Errorf("condition-error",
				"condition %s failed: %v", cond, err)}
		}
		if truthy(value) == negate {
			return []Result{Skipf("unfulfilled-conditions",
				"unfulfilled condition: %s", cond)}
		}
	}
	results = check.Run(ctx)
	if len(results) == 0 {
		results = []Result{Pass("ok")}
	}
	return results
}

// applyOverrides remaps result severities per the profile's overrides,
// keeping the message text unchanged.
func applyOverrides(results []Result, overrides []Override) []Result {
	if len(overrides) == 0 {
		return results
	}
	for i, res := range results {
		for _, ovr := range overrides {
			if res.Message.Code == ovr.Code {
				results[i].Status = ovr.Status
				break
			}
		}
	}
	return results
}

// Summary aggregates the statuses of a run.
type Summary map[Status]int

// Summarize tallies the worst status of every report.
func Summarize(reports []CheckReport) Summary {
	s := make(Summary)
	for _, rep := range reports {
		s[rep.Worst()]++
	}
	return s
}

func (s Summary) String() string {
	statuses := make([]Status, 0, len(s))
	for st := range s {
		statuses = append(statuses, st)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i] > statuses[j] })
	out := ""
	for i, st := range statuses {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s: %d", st, s[st])
	}
	return out
}
