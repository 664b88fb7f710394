/*
Package ot gives quality-assurance checks access to OpenType font tables.

Unlike a text-shaping stack, a font linter has to work with fonts that are
incomplete or even broken: a missing 'OS/2' table is not a reason to refuse
the font, it is a finding. Package `ot` therefore parses leniently. The table
directory is read strictly (we cannot do anything useful with a font whose
directory is unreadable), but each table is decoded on a best-effort basis and
problems are accumulated as errors and warnings on the font object instead of
aborting the parse. Checks then translate missing or malformed tables into
verdicts.

Package `ot` will not interpret tables beyond what the checks in this module
need. Clients get typed access to the tables relevant for font QA
('head', 'hhea', 'hmtx', 'maxp', 'OS/2', 'post', 'name', 'cmap', 'glyf'/'loca',
'CFF '/'CFF2') and a generic byte-view for everything else.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'fontlint.ot'
func tracer() tracing.Trace {
	return tracing.Select("fontlint.ot")
}
