/*
Package testfont assembles synthetic OpenType fonts for tests. Tables are
built from small per-table specs and glued together with a table directory,
so that test cases can produce exactly the malformed or borderline fonts a
check is supposed to flag.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package testfont

import (
	"encoding/binary"
	"sort"
	"unicode/utf16"
)

// Builder assembles a font binary from named tables.
type Builder struct {
	fontType uint32
	tags     []string
	tables   map[string][]byte
}

// NewTrueType creates a builder for a font with TrueType outlines.
func NewTrueType() *Builder {
	return &Builder{fontType: 0x00010000, tables: make(map[string][]byte)}
}

// NewCFF creates a builder for a font with CFF outlines ('OTTO' flavour).
func NewCFF() *Builder {
	return &Builder{fontType: 0x4F54544F, tables: make(map[string][]byte)}
}

// Add sets the binary content of a table. Re-adding a tag replaces the
// previous content.
func (b *Builder) Add(tag string, data []byte) *Builder {
	if _, ok := b.tables[tag]; !ok {
		b.tags = append(b.tags, tag)
	}
	b.tables[tag] = data
	return b
}

// Remove drops a table from the builder.
func (b *Builder) Remove(tag string) *Builder {
	if _, ok := b.tables[tag]; ok {
		delete(b.tables, tag)
		for i, t := range b.tags {
			if t == tag {
				b.tags = append(b.tags[:i], b.tags[i+1:]...)
				break
			}
		}
	}
	return b
}

// Build produces the font binary: offset table, table records, table data.
func (b *Builder) Build() []byte {
	n := len(b.tags)
	var out []byte
	out = appendU32(out, b.fontType)
	out = appendU16(out, uint16(n))
	out = appendU16(out, 0) // searchRange
	out = appendU16(out, 0) // entrySelector
	out = appendU16(out, 0) // rangeShift
	offset := 12 + 16*n
	for _, tag := range b.tags {
		data := b.tables[tag]
		out = append(out, []byte((tag + "    ")[:4])...)
		out = appendU32(out, 0) // checksum, not verified
		out = appendU32(out, uint32(offset))
		out = appendU32(out, uint32(len(data)))
		offset += pad4(len(data))
	}
	for _, tag := range b.tags {
		data := b.tables[tag]
		out = append(out, data...)
		out = append(out, make([]byte, pad4(len(data))-len(data))...)
	}
	return out
}

func pad4(n int) int {
	return (n + 3) &^ 3
}

func appendU16(b []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(b, v)
}

func appendU32(b []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(b, v)
}

func putU16(b []byte, at int, v uint16) {
	binary.BigEndian.PutUint16(b[at:], v)
}

func putU32(b []byte, at int, v uint32) {
	binary.BigEndian.PutUint32(b[at:], v)
}

// --- Per-table builders ------------------------------------------------------

// HeadSpec carries the head table fields tests care about.
type HeadSpec struct {
	UnitsPerEm       uint16
	YMin, YMax       int16
	IndexToLocFormat uint16
}

// Head builds a minimal v1.0 head table.
func Head(spec HeadSpec) []byte {
	b := make([]byte, 54)
	putU32(b, 0, 0x00010000)
	putU16(b, 18, spec.UnitsPerEm)
	putU16(b, 38, uint16(spec.YMin))
	putU16(b, 42, uint16(spec.YMax))
	putU16(b, 50, spec.IndexToLocFormat)
	return b
}

// HHeaSpec carries the hhea table fields tests care about.
type HHeaSpec struct {
	Ascender, Descender, LineGap int16
	AdvanceWidthMax              uint16
	NumberOfHMetrics             uint16
}

// HHea builds a minimal hhea table.
func HHea(spec HHeaSpec) []byte {
	b := make([]byte, 36)
	putU32(b, 0, 0x00010000)
	putU16(b, 4, uint16(spec.Ascender))
	putU16(b, 6, uint16(spec.Descender))
	putU16(b, 8, uint16(spec.LineGap))
	putU16(b, 10, spec.AdvanceWidthMax)
	putU16(b, 34, spec.NumberOfHMetrics)
	return b
}

// MaxP builds a maxp table declaring a glyph count.
func MaxP(numGlyphs uint16) []byte {
	b := make([]byte, 6)
	putU32(b, 0, 0x00010000)
	putU16(b, 4, numGlyphs)
	return b
}

// HMtx builds an hmtx table with one long metric per glyph, zero side
// bearings. NumberOfHMetrics in the matching hhea spec must equal the number
// of advances.
func HMtx(advances []uint16) []byte {
	b := make([]byte, 4*len(advances))
	for i, aw := range advances {
		putU16(b, i*4, aw)
	}
	return b
}

// OS2Spec carries the OS/2 table fields tests care about.
type OS2Spec struct {
	Panose                                  [10]byte
	TypoAscender, TypoDescender, TypoLineGap int16
	WinAscent, WinDescent                   uint16
}

// OS2 builds a version 0 OS/2 table.
func OS2(spec OS2Spec) []byte {
	b := make([]byte, 78)
	copy(b[32:42], spec.Panose[:])
	putU16(b, 68, uint16(spec.TypoAscender))
	putU16(b, 70, uint16(spec.TypoDescender))
	putU16(b, 72, uint16(spec.TypoLineGap))
	putU16(b, 74, spec.WinAscent)
	putU16(b, 76, spec.WinDescent)
	return b
}

// PostV3 builds a version 3.0 post table (no glyph names).
func PostV3(isFixedPitch uint32) []byte {
	b := make([]byte, 32)
	putU32(b, 0, 0x00030000)
	putU32(b, 12, isFixedPitch)
	return b
}

// PostV2 builds a version 2.0 post table carrying one custom name per glyph.
func PostV2(isFixedPitch uint32, glyphNames []string) []byte {
	b := make([]byte, 34)
	putU32(b, 0, 0x00020000)
	putU32(b, 12, isFixedPitch)
	putU16(b, 32, uint16(len(glyphNames)))
	for i := range glyphNames {
		b = appendU16(b, uint16(258+i))
	}
	for _, name := range glyphNames {
		b = append(b, byte(len(name)))
		b = append(b, []byte(name)...)
	}
	return b
}

// NameRec specifies one name table record. If Raw is non-nil it is stored
// verbatim; otherwise Value is encoded per the record's platform (UTF-16BE
// for Unicode and Windows, plain bytes for Macintosh).
type NameRec struct {
	PlatformID, EncodingID, LanguageID, NameID uint16
	Value                                      string
	Raw                                        []byte
}

// WinEnglish is a shorthand for a Windows / Unicode BMP / US-English record.
func WinEnglish(nameID uint16, value string) NameRec {
	return NameRec{PlatformID: 3, EncodingID: 1, LanguageID: 0x0409, NameID: nameID, Value: value}
}

// MacRoman is a shorthand for a Macintosh / Roman / English record.
func MacRoman(nameID uint16, value string) NameRec {
	return NameRec{PlatformID: 1, EncodingID: 0, LanguageID: 0, NameID: nameID, Value: value}
}

// Name builds a name table from record specs.
func Name(records []NameRec) []byte {
	var storage []byte
	type encoded struct {
		rec         NameRec
		off, length int
	}
	encs := make([]encoded, 0, len(records))
	for _, rec := range records {
		raw := rec.Raw
		if raw == nil {
			if rec.PlatformID == 1 {
				raw = []byte(rec.Value)
			} else {
				for _, u := range utf16.Encode([]rune(rec.Value)) {
					raw = appendU16(raw, u)
				}
			}
		}
		encs = append(encs, encoded{rec: rec, off: len(storage), length: len(raw)})
		storage = append(storage, raw...)
	}
	storageOffset := 6 + 12*len(records)
	b := make([]byte, storageOffset)
	putU16(b, 2, uint16(len(records)))
	putU16(b, 4, uint16(storageOffset))
	for i, e := range encs {
		at := 6 + 12*i
		putU16(b, at, e.rec.PlatformID)
		putU16(b, at+2, e.rec.EncodingID)
		putU16(b, at+4, e.rec.LanguageID)
		putU16(b, at+6, e.rec.NameID)
		putU16(b, at+8, uint16(e.length))
		putU16(b, at+10, uint16(e.off))
	}
	return append(b, storage...)
}

// CMap builds a cmap table with a single format 4 subtable for Windows /
// Unicode BMP, one segment per mapped codepoint.
func CMap(mapping map[rune]uint16) []byte {
	codes := make([]int, 0, len(mapping))
	for r := range mapping {
		codes = append(codes, int(r))
	}
	sort.Ints(codes)
	segCount := len(codes) + 1 // plus the 0xFFFF sentinel
	sub := make([]byte, 16+8*segCount)
	putU16(sub, 0, 4)                    // format
	putU16(sub, 2, uint16(len(sub)))     // length
	putU16(sub, 6, uint16(segCount*2))   // segCountX2
	endAt := 14
	startAt := 14 + segCount*2 + 2
	deltaAt := startAt + segCount*2
	rangeAt := deltaAt + segCount*2
	for i, c := range codes {
		putU16(sub, endAt+i*2, uint16(c))
		putU16(sub, startAt+i*2, uint16(c))
		putU16(sub, deltaAt+i*2, mapping[rune(c)]-uint16(c))
		putU16(sub, rangeAt+i*2, 0)
	}
	last := segCount - 1
	putU16(sub, endAt+last*2, 0xFFFF)
	putU16(sub, startAt+last*2, 0xFFFF)
	putU16(sub, deltaAt+last*2, 1)

	b := make([]byte, 12)
	putU16(b, 2, 1) // one encoding record
	putU16(b, 4, 3) // Windows
	putU16(b, 6, 1) // Unicode BMP
	putU32(b, 8, 12)
	return append(b, sub...)
}

// GlyphSpec describes one glyph for the glyf/loca builders. A glyph without
// outline gets a zero-length loca entry; otherwise a 10-byte glyph header
// with the given contour count is emitted (negative counts mark composites).
type GlyphSpec struct {
	NoOutline bool
	Contours  int16
}

// GlyfLoca builds matching glyf and loca tables (short offsets) for the
// given glyphs. The head table of the font must declare indexToLocFormat 0.
func GlyfLoca(glyphs []GlyphSpec) (glyf []byte, loca []byte) {
	loca = make([]byte, 2*(len(glyphs)+1))
	for i, g := range glyphs {
		putU16(loca, i*2, uint16(len(glyf)/2))
		if g.NoOutline {
			continue
		}
		hdr := make([]byte, 10)
		putU16(hdr, 0, uint16(g.Contours))
		glyf = append(glyf, hdr...)
	}
	putU16(loca, len(glyphs)*2, uint16(len(glyf)/2))
	return glyf, loca
}

// CFF builds a minimal CFF version 1 table: a Name INDEX with one font name,
// a Top DICT INDEX locating the CharStrings INDEX, and one charstring per
// entry of lengths, filled with endchar bytes. Lengths must stay small
// enough for single-byte INDEX offsets.
func CFF(fontName string, lengths []int) []byte {
	b := []byte{1, 0, 4, 1} // major, minor, hdrSize, offSize

	// Name INDEX
	b = appendU16(b, 1)
	b = append(b, 1) // offSize
	b = append(b, 1, byte(1+len(fontName)))
	b = append(b, []byte(fontName)...)

	// Top DICT INDEX; the DICT is operand (5-byte int) + operator 17
	const dictLen = 6
	topEnd := len(b) + 2 + 1 + 2 + dictLen
	b = appendU16(b, 1)
	b = append(b, 1) // offSize
	b = append(b, 1, 1+dictLen)
	b = append(b, 29)
	b = appendU32(b, uint32(topEnd))
	b = append(b, opCharStrings)

	// CharStrings INDEX
	b = appendU16(b, uint16(len(lengths)))
	b = append(b, 1) // offSize
	off := 1
	b = append(b, byte(off))
	for _, n := range lengths {
		off += n
		b = append(b, byte(off))
	}
	for _, n := range lengths {
		for i := 0; i < n; i++ {
			b = append(b, 0x0E) // endchar
		}
	}
	return b
}

const opCharStrings = 17
