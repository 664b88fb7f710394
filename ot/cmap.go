package ot

import "iter"

// CMapTable defines the mapping of character codes to glyph indices. Different
// subtables may be defined, each containing mappings for different character
// encoding schemes.
//
// From the spec: “If a font includes Unicode subtables for both 16-bit encoding
// (typically, format 4) and also 32-bit encoding (formats 10 or 12), then the
// characters supported by the subtable for 32-bit encoding should be a superset
// of the characters supported by the subtable for 16-bit encoding, and the
// 32-bit encoding should be used by applications.”
//
// We support the following platform/encoding/format combinations and pick the
// widest one present:
//
//	0 (Unicode)  3    4   Unicode BMP
//	0 (Unicode)  4    12  Unicode full
//	3 (Win)      1    4   Unicode BMP
//	3 (Win)      10   12  Unicode full
type CMapTable struct {
	tableBase
	GlyphIndexMap GlyphIndexMap
	NumGlyphs     int // for validation of looked-up indices, 0 if unknown
}

// GlyphIndexMap maps code-points to glyph indices and can enumerate all
// mappings it contains.
type GlyphIndexMap interface {
	Lookup(r rune) GlyphIndex
	CodePoints() iter.Seq2[rune, GlyphIndex]
}

func newCMapTable(tag Tag, b binarySegm, offset, size uint32) *CMapTable {
	t := &CMapTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

// Lookup returns the glyph index for a code-point, 0 (= '.notdef') if the
// code-point is not mapped.
func (t *CMapTable) Lookup(r rune) GlyphIndex {
	if t == nil || t.GlyphIndexMap == nil {
		return 0
	}
	return t.GlyphIndexMap.Lookup(r)
}

// CodePoints yields every (code-point, glyph index) mapping of the selected
// subtable, in ascending code-point order.
func (t *CMapTable) CodePoints() iter.Seq2[rune, GlyphIndex] {
	if t == nil || t.GlyphIndexMap == nil {
		return func(yield func(rune, GlyphIndex) bool) {}
	}
	return t.GlyphIndexMap.CodePoints()
}

// width of the encoding of a platform/encoding combination, in bytes.
// A return value of 0 flags an unsupported combination.
func platformEncodingWidth(pid PlatformID, eid EncodingID) int {
	switch pid {
	case PlatformUnicode:
		switch eid {
		case EncodingUnicodeBMP:
			return 2
		case EncodingUnicodeFull:
			return 4
		}
	case PlatformWindows:
		switch eid {
		case EncodingWindowsBMP:
			return 2
		case EncodingWindowsFull:
			return 4
		}
	}
	return 0
}

func supportedCmapFormat(format uint16, width int) bool {
	return (format == 4 && width == 2) || (format == 12 && width == 4)
}

func parseCMap(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	t := newCMapTable(tag, b, offset, size)
	const headerSize, entrySize = 4, 8
	n := int(b.U16(2)) // number of sub-tables
	tracer().Debugf("font cmap has %d sub-tables in %d bytes", n, len(b))
	if headerSize+n*entrySize > len(b) {
		ec.addError(tag, "Header", "encoding records exceed table size", SeverityMajor, offset)
		return t, nil
	}
	var bestWidth int
	var bestSub binarySegm
	var bestFormat uint16
	for i := 0; i < n; i++ {
		rec := b[headerSize+i*entrySize:]
		pid, eid := PlatformID(u16(rec)), EncodingID(u16(rec[2:]))
		width := platformEncodingWidth(pid, eid)
		if width <= bestWidth {
			continue
		}
		subOffset := u32(rec[4:])
		if int(subOffset)+2 > len(b) {
			ec.addWarning(tag, "cmap sub-table offset out of bounds", offset)
			continue
		}
		sub := b[subOffset:]
		format := u16(sub)
		if supportedCmapFormat(format, width) {
			bestWidth = width
			bestFormat = format
			bestSub = sub
		}
	}
	if bestWidth == 0 {
		ec.addError(tag, "Format", "no supported cmap sub-table found", SeverityMajor, offset)
		return t, nil
	}
	var err error
	switch bestFormat {
	case 4:
		t.GlyphIndexMap, err = parseCmapFormat4(bestSub)
	case 12:
		t.GlyphIndexMap, err = parseCmapFormat12(bestSub)
	}
	if err != nil {
		ec.addError(tag, "Subtable", err.Error(), SeverityMajor, offset)
		t.GlyphIndexMap = nil
	}
	return t, nil
}

// --- Format 4: segment mapping to delta values -----------------------------

type format4GlyphIndex struct {
	segments []cmapSegment
	glyphIDs binarySegm // glyphIdArray region, for segments with idRangeOffset ≠ 0
}

type cmapSegment struct {
	start, end    uint16
	delta         uint16
	rangeOffset   uint16
	rangeOffsetAt int // byte position of this segment's idRangeOffset field
}

func parseCmapFormat4(b binarySegm) (GlyphIndexMap, error) {
	if len(b) < 14 {
		return nil, errBufferBounds
	}
	segCountX2 := int(b.U16(6))
	segCount := segCountX2 / 2
	need := 16 + segCountX2*4
	if segCount == 0 || need > len(b) {
		return nil, errBufferBounds
	}
	endCodes := b[14:]
	startCodes := b[14+segCountX2+2:]
	deltas := b[14+segCountX2*2+2:]
	rangeOffsets := b[14+segCountX2*3+2:]
	gim := format4GlyphIndex{glyphIDs: b}
	for i := 0; i < segCount; i++ {
		gim.segments = append(gim.segments, cmapSegment{
			start:         u16(startCodes[i*2:]),
			end:           u16(endCodes[i*2:]),
			delta:         u16(deltas[i*2:]),
			rangeOffset:   u16(rangeOffsets[i*2:]),
			rangeOffsetAt: 14 + segCountX2*3 + 2 + i*2,
		})
	}
	return gim, nil
}

func (m format4GlyphIndex) lookupSegment(seg cmapSegment, r uint16) GlyphIndex {
	if seg.rangeOffset == 0 {
		return GlyphIndex(r + seg.delta)
	}
	// glyph ID is stored in the glyphIdArray, addressed relative to the
	// position of the idRangeOffset field (the famous format-4 obfuscation)
	pos := seg.rangeOffsetAt + int(seg.rangeOffset) + int(r-seg.start)*2
	gid, err := m.glyphIDs.u16(pos)
	if err != nil || gid == 0 {
		return 0
	}
	return GlyphIndex(gid + seg.delta)
}

func (m format4GlyphIndex) Lookup(r rune) GlyphIndex {
	if r < 0 || r > 0xFFFF {
		return 0
	}
	c := uint16(r)
	for _, seg := range m.segments {
		if c >= seg.start && c <= seg.end {
			return m.lookupSegment(seg, c)
		}
	}
	return 0
}

func (m format4GlyphIndex) CodePoints() iter.Seq2[rune, GlyphIndex] {
	return func(yield func(rune, GlyphIndex) bool) {
		for _, seg := range m.segments {
			if seg.start == 0xFFFF && seg.end == 0xFFFF {
				continue // the mandatory final sentinel segment
			}
			for c := uint32(seg.start); c <= uint32(seg.end); c++ {
				gid := m.lookupSegment(seg, uint16(c))
				if gid == 0 {
					continue
				}
				if !yield(rune(c), gid) {
					return
				}
			}
		}
	}
}

// --- Format 12: segmented coverage -----------------------------------------

type format12GlyphIndex struct {
	groups []cmapGroup
}

type cmapGroup struct {
	start, end uint32
	startGlyph uint32
}

// maxCodePoint is the highest valid Unicode code-point. Group end values
// beyond it are clamped, lest a malformed group spins the group iteration
// past the uint32 wrap-around.
const maxCodePoint = 0x10FFFF

func parseCmapFormat12(b binarySegm) (GlyphIndexMap, error) {
	if len(b) < 16 {
		return nil, errBufferBounds
	}
	numGroups := int(b.U32(12))
	if 16+numGroups*12 > len(b) {
		return nil, errBufferBounds
	}
	gim := format12GlyphIndex{}
	for i := 0; i < numGroups; i++ {
		g := b[16+i*12:]
		group := cmapGroup{
			start:      u32(g),
			end:        u32(g[4:]),
			startGlyph: u32(g[8:]),
		}
		if group.end > maxCodePoint {
			group.end = maxCodePoint
		}
		if group.start > group.end {
			continue
		}
		gim.groups = append(gim.groups, group)
	}
	return gim, nil
}

func (m format12GlyphIndex) Lookup(r rune) GlyphIndex {
	c := uint32(r)
	for _, g := range m.groups {
		if c >= g.start && c <= g.end {
			return GlyphIndex(g.startGlyph + (c - g.start))
		}
	}
	return 0
}

func (m format12GlyphIndex) CodePoints() iter.Seq2[rune, GlyphIndex] {
	return func(yield func(rune, GlyphIndex) bool) {
		for _, g := range m.groups {
			for c := g.start; c <= g.end; c++ {
				if !yield(rune(c), GlyphIndex(g.startGlyph+(c-g.start))) {
					return
				}
			}
		}
	}
}
