/*
Package qa is the core of the font QA framework: checks, conditions,
a check registry, profiles, and a runner.

A check is a named predicate over parsed font data. It yields zero or more
results, each a status (PASS, FAIL, WARN, ERROR, SKIP, INFO) together with a
message carrying a stable code. Codes are identifiers checks promise not to
change arbitrarily: profiles key severity overrides on them.

A profile is a named, ordered set of checks, assembled by importing checks
from other profiles, filtering against an explicit set, and remapping the
severity of individual messages. The runner executes a profile's checks
against a font or a family of fonts, skipping checks whose conditions are
unmet and converting panicking checks into ERROR results.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package qa

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'fontlint.qa'
func tracer() tracing.Trace {
	return tracing.Select("fontlint.qa")
}
