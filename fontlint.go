/*
Package fontlint provides quality-assurance checking for OpenType fonts.

Checks are independent predicates over parsed font data, identified by
stable IDs and yielding results with a status (PASS, FAIL, WARN, ERROR,
SKIP, INFO) and a coded message. Profiles group checks and may remap the
severity of individual messages; a runner executes a profile over a font or
a family of fonts.

Typical use:

	otf, err := fontlint.FromBinary(data)
	if err != nil { … }
	reports := fontlint.CheckFamily(adobefonts.Profile(), otf)
	for _, rep := range reports {
		fmt.Println(rep.CheckID, rep.Worst())
	}

Sub-package ot parses the font tables the checks consult; sub-package qa
holds the check framework; the profiles sub-packages define the checks and
profiles themselves.

# Tracing

Packages of this module write to traces with keys prefixed 'fontlint', using
the npillmayer/schuko tracing framework. Clients may configure tracing
adapters and levels as they see fit.

# Status

This module is a work in progress.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fontlint

import (
	"github.com/npillmayer/fontlint/ot"
	"github.com/npillmayer/fontlint/qa"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'fontlint'
func tracer() tracing.Trace {
	return tracing.Select("fontlint")
}

// FromBinary parses a font from its binary representation. Parsing is
// lenient: structural problems are accumulated as font errors and warnings
// rather than aborting, so that checks can inspect incomplete fonts. Only
// fonts whose table directory cannot be read at all produce a Go error.
func FromBinary(data []byte) (*ot.Font, error) {
	otf, err := ot.Parse(data)
	if err != nil {
		tracer().Errorf("font parsing failed: %v", err)
		return nil, err
	}
	tracer().Infof("parsed font with %d tables, %d parse errors",
		len(otf.TableTags()), len(otf.Errors()))
	return otf, nil
}

// CheckFamily runs a profile's checks over a family of fonts (a single font
// is a family of one) and returns the resulting reports.
func CheckFamily(profile *qa.Profile, fonts ...*ot.Font) []qa.CheckReport {
	runner := qa.NewRunner(profile)
	return runner.Run(fonts...)
}
