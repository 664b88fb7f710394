package ot

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Code comments will occasionally cite passages from the OpenType
// specification version 1.8.4;
// see https://docs.microsoft.com/en-us/typography/opentype/spec/.

// errFontFormat produces user level errors for font parsing.
func errFontFormat(message string) error {
	return fmt.Errorf("OpenType font format: %s", message)
}

// Parse parses an OpenType font from a byte slice. An ot.Font needs ongoing
// access to the font's byte-data after the Parse function returns. Its
// elements are assumed immutable while the ot.Font remains in use.
//
// Parsing is deliberately lenient: only an unreadable table directory makes
// Parse fail. Missing or malformed tables are recorded as errors and warnings
// on the returned font, so that QA checks can report them as verdicts.
func Parse(font []byte) (*Font, error) {
	// The Offset Table is 12 bytes, followed immediately by the table record
	// entries, 16 bytes each, "sorted in ascending order by tag".
	r := bytes.NewReader(font)
	h := FontHeader{}
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return nil, err
	}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, Tag(h.FontType).String())
	if !(h.FontType == 0x4f54544f || // OTTO
		h.FontType == 0x00010000 || // TrueType
		h.FontType == 0x74727565) { // 'true'
		return nil, errFontFormat(fmt.Sprintf("font type not supported: %x", h.FontType))
	}
	ec := &errorCollector{}
	otf := &Font{Header: &h, tables: make(map[Tag]Table)}
	src := binarySegm(font)
	buf, err := src.view(12, 16*int(h.TableCount))
	if err != nil {
		return nil, errFontFormat("table record entries")
	}
	for b := buf; len(b) >= 16; b = b[16:] {
		tag := MakeTag(b)
		off, size := u32(b[8:12]), u32(b[12:16])
		if off > uint32(len(src)) || off+size > uint32(len(src)) || off+size < off {
			ec.addError(tag, "Bounds", fmt.Sprintf("bounds [%d:%d] exceed font size %d",
				off, off+size, len(src)), SeverityMajor, off)
			continue // unusable table; keep going, a check will report it as missing
		}
		t, err := parseTable(tag, src[off:off+size], off, size, ec)
		if err != nil {
			ec.addError(tag, "Parse", err.Error(), SeverityMajor, off)
			continue
		}
		if t != nil {
			otf.tables[tag] = t
		}
	}
	wireTables(otf, ec)
	otf.parseErrors = ec.errors
	otf.parseWarnings = ec.warnings
	return otf, nil
}

// RequiredTables lists the tables the OpenType specification requires for a
// font to function correctly. A QA check reports fonts that lack any of them.
var RequiredTables = []string{
	"cmap", "head", "hhea", "hmtx", "maxp", "name", "OS/2", "post",
}

func parseTable(t Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	switch t {
	case T("cmap"):
		return parseCMap(t, b, offset, size, ec)
	case T("head"):
		return parseHead(t, b, offset, size, ec)
	case T("hhea"):
		return parseHHea(t, b, offset, size, ec)
	case T("hmtx"):
		// needs hhea and maxp values; filled in by wireTables
		return newHMtxTable(t, b, offset, size), nil
	case T("maxp"):
		return parseMaxP(t, b, offset, size, ec)
	case T("OS/2"):
		return parseOS2(t, b, offset, size, ec)
	case T("post"):
		return parsePost(t, b, offset, size, ec)
	case T("name"):
		return parseName(t, b, offset, size, ec)
	case T("loca"):
		return newLocaTable(t, b, offset, size), nil
	case T("glyf"):
		// Outline data is not decoded; GlyfTable interprets contour counts
		// on demand once loca is wired in.
		return newGlyfTable(t, b, offset, size), nil
	case T("CFF "), T("CFF2"):
		return parseCFF(t, b, offset, size, ec)
	}
	tracer().Debugf("font contains table (%s), will not be interpreted", t)
	return newTable(t, b, offset, size), nil
}

// wireTables resolves cross-table dependencies: hmtx needs counts from hhea
// and maxp, loca needs the offset format from head and the glyph count from
// maxp, glyf needs loca. Broken fonts may lack any of these; the dependent
// table then simply stays un-wired and reports no data.
func wireTables(otf *Font, ec *errorCollector) {
	var numGlyphs int
	if mp := otf.Table(T("maxp")); mp != nil {
		numGlyphs = mp.Self().AsMaxP().NumGlyphs
	}
	if hm := otf.Table(T("hmtx")); hm != nil {
		hmtx := hm.Self().AsHMtx()
		if hh := otf.Table(T("hhea")); hh != nil {
			hhea := hh.Self().AsHHea()
			if err := hmtx.parseAll(numGlyphs, hhea.NumberOfHMetrics); err != nil {
				ec.addError(T("hmtx"), "Metrics", "metrics inconsistent with hhea/maxp counts",
					SeverityMajor, 0)
			}
		}
	}
	if lo := otf.Table(T("loca")); lo != nil {
		loca := lo.Self().AsLoca()
		loca.locCnt = numGlyphs
		if he := otf.Table(T("head")); he != nil {
			if he.Self().AsHead().IndexToLocFormat == 1 {
				loca.inx2loc = longLocaVersion
			}
		}
		if gl := otf.Table(T("glyf")); gl != nil {
			gl.Self().AsGlyf().loca = loca
		}
	}
}

// --- head table ------------------------------------------------------------

func parseHead(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 54 {
		ec.addError(tag, "Size", fmt.Sprintf("head table too small: %d bytes (need 54)", size),
			SeverityMajor, offset)
		return nil, errFontFormat("size of head table")
	}
	t := newHeadTable(tag, b, offset, size)
	t.FontRevision = b.U32(4)
	t.Flags = b.U16(16)
	t.UnitsPerEm = b.U16(18)
	t.XMin = int16(b.U16(36))
	t.YMin = int16(b.U16(38))
	t.XMax = int16(b.U16(40))
	t.YMax = int16(b.U16(42))
	t.MacStyle = b.U16(44)
	t.IndexToLocFormat = b.U16(50)
	return t, nil
}

// --- hhea table ------------------------------------------------------------

func parseHHea(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 36 {
		ec.addError(tag, "Size", fmt.Sprintf("hhea table too small: %d bytes (need 36)", size),
			SeverityMajor, offset)
		return nil, errFontFormat("size of hhea table")
	}
	t := newHHeaTable(tag, b, offset, size)
	t.Ascender = int16(b.U16(4))
	t.Descender = int16(b.U16(6))
	t.LineGap = int16(b.U16(8))
	t.AdvanceWidthMax = b.U16(10)
	t.NumberOfHMetrics = int(b.U16(34))
	return t, nil
}

// --- maxp table ------------------------------------------------------------

func parseMaxP(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 6 {
		ec.addError(tag, "Size", fmt.Sprintf("maxp table too small: %d bytes (need 6)", size),
			SeverityMajor, offset)
		return nil, errFontFormat("size of maxp table")
	}
	t := newMaxPTable(tag, b, offset, size)
	t.NumGlyphs = int(b.U16(4))
	return t, nil
}

// --- OS/2 table ------------------------------------------------------------

func parseOS2(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	// Version 0 of the table is 78 bytes and already contains every field the
	// QA checks read.
	if size < 78 {
		ec.addError(tag, "Size", fmt.Sprintf("OS/2 table too small: %d bytes (need 78)", size),
			SeverityMajor, offset)
		return nil, errFontFormat("size of OS/2 table")
	}
	t := newOS2Table(tag, b, offset, size)
	t.Version = b.U16(0)
	t.XAvgCharWidth = int16(b.U16(2))
	t.WeightClass = b.U16(4)
	copy(t.Panose[:], b[32:42])
	t.FsSelection = b.U16(62)
	t.TypoAscender = int16(b.U16(68))
	t.TypoDescender = int16(b.U16(70))
	t.TypoLineGap = int16(b.U16(72))
	t.WinAscent = b.U16(74)
	t.WinDescent = b.U16(76)
	return t, nil
}

// --- post table ------------------------------------------------------------

// Macintosh glyph name count of the standard order; version 2.0 name indices
// below this threshold refer to the standard names, which the QA checks never
// inspect individually.
const numStandardMacGlyphNames = 258

func parsePost(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 32 {
		ec.addError(tag, "Size", fmt.Sprintf("post table too small: %d bytes (need 32)", size),
			SeverityMajor, offset)
		return nil, errFontFormat("size of post table")
	}
	t := newPostTable(tag, b, offset, size)
	t.VersionFixed = b.U32(0)
	t.ItalicAngle = int32(b.U32(4))
	t.UnderlinePosition = int16(b.U16(8))
	t.UnderlineThickness = int16(b.U16(10))
	t.IsFixedPitch = b.U32(12)
	if t.VersionFixed == 0x00020000 {
		if err := parsePostV2Names(t, b); err != nil {
			ec.addWarning(tag, "version 2.0 glyph names unreadable", offset)
			t.glyphNames = nil
		}
	}
	return t, nil
}

// parsePostV2Names decodes the glyph name array of a version 2.0 post table:
// a glyph count, per-glyph name indices, and a sequence of Pascal strings for
// indices ≥ 258.
func parsePostV2Names(t *PostTable, b binarySegm) error {
	numGlyphs, err := b.u16(32)
	if err != nil {
		return err
	}
	namesStart := 34 + int(numGlyphs)*2
	if namesStart > len(b) {
		return errBufferBounds
	}
	// Pascal strings, in index order
	var pascalNames []string
	for pos := namesStart; pos < len(b); {
		strlen := int(b[pos])
		pos++
		if pos+strlen > len(b) {
			return errBufferBounds
		}
		pascalNames = append(pascalNames, string(b[pos:pos+strlen]))
		pos += strlen
	}
	names := make([]string, numGlyphs)
	for i := 0; i < int(numGlyphs); i++ {
		inx, _ := b.u16(34 + i*2)
		if inx < numStandardMacGlyphNames {
			names[i] = standardMacGlyphName(inx)
			continue
		}
		k := int(inx) - numStandardMacGlyphNames
		if k >= len(pascalNames) {
			return errBufferBounds
		}
		names[i] = pascalNames[k]
	}
	t.glyphNames = names
	return nil
}

// standardMacGlyphName returns names from the standard Macintosh ordering.
// Only the handful of names the checks actually rely on are spelled out; all
// other standard names are rendered positionally, which is sufficient for
// name validity and uniqueness checking.
func standardMacGlyphName(inx uint16) string {
	switch inx {
	case 0:
		return ".notdef"
	case 1:
		return ".null"
	case 2:
		return "nonmarkingreturn"
	case 3:
		return "space"
	}
	return fmt.Sprintf("macglyph.%d", inx)
}
