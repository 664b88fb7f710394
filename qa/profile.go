package qa

import (
	"fmt"
	"strings"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/emirpasic/gods/sets/linkedhashset"
)

// Override remaps the severity of one message of a check for a profile.
// The original message is kept; only the status changes.
type Override struct {
	Code   string // message code the override applies to
	Status Status // remapped status
	Reason string // why the profile deviates from the check's default severity
}

// Profile is a named, ordered set of checks, assembled by importing check IDs
// (typically from other profiles' check lists), with optional per-message
// severity overrides.
type Profile struct {
	Name string // human-readable profile name, e.g. "Adobe Fonts"
	Tag  string // short tag used to mark overridden checks, e.g. "adobefonts"

	checks    *linkedhashset.Set // ordered set of check IDs
	overrides map[string][]Override
}

// NewProfile creates an empty profile.
func NewProfile(name, tag string) *Profile {
	return &Profile{
		Name:      name,
		Tag:       tag,
		checks:    linkedhashset.New(),
		overrides: make(map[string][]Override),
	}
}

// Include adds check IDs to the profile, preserving order and ignoring
// duplicates.
func (p *Profile) Include(ids ...string) *Profile {
	for _, id := range ids {
		p.checks.Add(id)
	}
	return p
}

// Has reports whether the profile contains a check ID.
func (p *Profile) Has(id string) bool {
	return p.checks.Contains(id)
}

// Len returns the number of checks in the profile.
func (p *Profile) Len() int {
	return p.checks.Size()
}

// Override registers severity overrides for one check of the profile.
func (p *Profile) Override(checkID string, overrides ...Override) *Profile {
	if !p.Has(checkID) {
		tracer().Infof("override for check %q, which is not part of profile %q", checkID, p.Name)
	}
	p.overrides[checkID] = append(p.overrides[checkID], overrides...)
	return p
}

// Overrides returns the severity overrides for a check, nil for none.
func (p *Profile) Overrides(checkID string) []Override {
	return p.overrides[checkID]
}

// RawCheckIDs returns the profile's check IDs in order, without override
// markers.
func (p *Profile) RawCheckIDs() []string {
	ids := make([]string, 0, p.checks.Size())
	for _, v := range p.checks.Values() {
		ids = append(ids, v.(string))
	}
	return ids
}

// CheckIDs returns the profile's check IDs in order. Checks carrying severity
// overrides are marked with a ":<tag>" suffix, so that profile listings make
// deviations from the originating profiles visible.
func (p *Profile) CheckIDs() []string {
	ids := p.RawCheckIDs()
	for i, id := range ids {
		if len(p.overrides[id]) > 0 {
			ids[i] = id + ":" + p.Tag
		}
	}
	return ids
}

// ExpectChecks verifies the profile's contents against an expected list of
// check IDs (with override markers, as produced by TagOverridden). With
// exclusive set, the profile must contain exactly the expected checks;
// otherwise it must contain at least them. Returns a descriptive error on
// mismatch. Profiles use this as a self-test of their composition.
func (p *Profile) ExpectChecks(expected []string, exclusive bool) error {
	have := hashset.New()
	for _, id := range p.CheckIDs() {
		have.Add(id)
	}
	var missing []string
	want := hashset.New()
	for _, id := range expected {
		want.Add(id)
		if !have.Contains(id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("profile %q lacks expected checks: %s",
			p.Name, strings.Join(missing, ", "))
	}
	if exclusive {
		var unexpected []string
		for _, v := range have.Values() {
			if !want.Contains(v) {
				unexpected = append(unexpected, v.(string))
			}
		}
		if len(unexpected) > 0 {
			return fmt.Errorf("profile %q contains unexpected checks: %s",
				p.Name, strings.Join(unexpected, ", "))
		}
	}
	return nil
}

// Intersect filters an ordered ID list against a set of permitted IDs,
// preserving order. This is the composition primitive profiles use to apply
// their explicit-check sets to imported check lists.
func Intersect(ids []string, allowed *hashset.Set) []string {
	var out []string
	for _, id := range ids {
		if allowed.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}

// TagOverridden returns a copy of ids with every ID listed in overridden
// marked by a ":<tag>" suffix. It mirrors the marking CheckIDs applies, for
// building expected check lists.
func TagOverridden(ids []string, tag string, overridden []string) []string {
	marked := hashset.New()
	for _, id := range overridden {
		marked.Add(id)
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		if marked.Contains(id) {
			id = id + ":" + tag
		}
		out[i] = id
	}
	return out
}
