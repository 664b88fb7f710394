package ot

// Compact Font Format support, versions 1 ('CFF ') and 2 ('CFF2').
//
// The QA checks do not interpret charstrings. They need exactly two things
// from a CFF table: the font name(s) from the Name INDEX (version 1 only),
// and the byte length of each glyph's charstring, which serves as a cheap
// emptiness heuristic (a charstring of one byte or less draws nothing).

// CFFTable provides access to a 'CFF ' or 'CFF2' table.
type CFFTable struct {
	tableBase
	Version2    bool     // true for 'CFF2'
	FontNames   []string // from the Name INDEX; empty for CFF2
	charStrings cffIndex
}

func newCFFTable(tag Tag, b binarySegm, offset, size uint32) *CFFTable {
	t := &CFFTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

// CharStringCount returns the number of charstrings (= glyphs) in the table.
func (t *CFFTable) CharStringCount() int {
	if t == nil {
		return 0
	}
	return len(t.charStrings.items)
}

// CharStringLength returns the byte length of a glyph's charstring.
func (t *CFFTable) CharStringLength(gid GlyphIndex) (int, bool) {
	if t == nil || int(gid) >= len(t.charStrings.items) {
		return 0, false
	}
	return len(t.charStrings.items[gid]), true
}

// IsEmptyGlyph reports whether a glyph's charstring cannot draw anything.
// A charstring needs at least an operator and an operand to produce ink, so
// one byte or less is definitely empty. The converse does not hold: a longer
// charstring may still be blank, but detecting that would require full
// charstring interpretation.
func (t *CFFTable) IsEmptyGlyph(gid GlyphIndex) bool {
	n, ok := t.CharStringLength(gid)
	return ok && n <= 1
}

// --- INDEX structures ------------------------------------------------------

type cffIndex struct {
	items []binarySegm // views into the table data
}

// parseCFFIndex reads an INDEX structure at pos. CFF2 INDEXes carry a 32-bit
// count, CFF version 1 a 16-bit one. Returns the INDEX and the position of
// the first byte after it.
func parseCFFIndex(b binarySegm, pos int, wideCount bool) (cffIndex, int, error) {
	var idx cffIndex
	var count int
	if wideCount {
		c, err := b.u32(pos)
		if err != nil {
			return idx, 0, err
		}
		count, pos = int(c), pos+4
	} else {
		c, err := b.u16(pos)
		if err != nil {
			return idx, 0, err
		}
		count, pos = int(c), pos+2
	}
	if count == 0 {
		return idx, pos, nil
	}
	if pos >= len(b) {
		return idx, 0, errBufferBounds
	}
	offSize := int(b[pos])
	pos++
	if offSize < 1 || offSize > 4 {
		return idx, 0, errBufferBounds
	}
	offsetsEnd := pos + (count+1)*offSize
	if offsetsEnd > len(b) {
		return idx, 0, errBufferBounds
	}
	readOffset := func(i int) uint32 {
		var v uint32
		for k := 0; k < offSize; k++ {
			v = v<<8 | uint32(b[pos+i*offSize+k])
		}
		return v
	}
	dataStart := offsetsEnd - 1 // offsets are 1-based relative to this position
	prev := readOffset(0)
	if prev != 1 {
		return idx, 0, errBufferBounds
	}
	idx.items = make([]binarySegm, 0, count)
	for i := 1; i <= count; i++ {
		next := readOffset(i)
		if next < prev || dataStart+int(next) > len(b) {
			return idx, 0, errBufferBounds
		}
		idx.items = append(idx.items, b[dataStart+int(prev):dataStart+int(next)])
		prev = next
	}
	return idx, dataStart + int(prev), nil
}

// --- DICT scanning ---------------------------------------------------------

const opCharStrings = 17 // Top DICT operator for the CharStrings INDEX offset

// dictFindOperand scans a DICT for the given (one-byte) operator and returns
// its last integer operand. CFF DICTs are operand-first, so we track the most
// recent operand while walking the byte stream.
func dictFindOperand(dict binarySegm, operator byte) (int, bool) {
	var operand int
	var haveOperand bool
	for i := 0; i < len(dict); {
		b0 := dict[i]
		switch {
		case b0 >= 32 && b0 <= 246:
			operand, haveOperand = int(b0)-139, true
			i++
		case b0 >= 247 && b0 <= 250:
			if i+1 >= len(dict) {
				return 0, false
			}
			operand, haveOperand = (int(b0)-247)*256+int(dict[i+1])+108, true
			i += 2
		case b0 >= 251 && b0 <= 254:
			if i+1 >= len(dict) {
				return 0, false
			}
			operand, haveOperand = -(int(b0)-251)*256-int(dict[i+1])-108, true
			i += 2
		case b0 == 28:
			if i+2 >= len(dict) {
				return 0, false
			}
			operand, haveOperand = int(int16(u16(dict[i+1:]))), true
			i += 3
		case b0 == 29:
			if i+4 >= len(dict) {
				return 0, false
			}
			operand, haveOperand = int(int32(u32(dict[i+1:]))), true
			i += 5
		case b0 == 30: // real number, nibble-encoded, ends with nibble 0xf
			i++
			for i < len(dict) {
				nibbles := dict[i]
				i++
				if nibbles&0x0f == 0x0f || nibbles&0xf0 == 0xf0 {
					break
				}
			}
			haveOperand = false // reals never locate the CharStrings INDEX
		case b0 == 12: // two-byte operator
			i += 2
			haveOperand = false
		default: // one-byte operator
			if b0 == operator && haveOperand {
				return operand, true
			}
			i++
			haveOperand = false
		}
	}
	return 0, false
}

// --- Table parsing ---------------------------------------------------------

func parseCFF(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	t := newCFFTable(tag, b, offset, size)
	t.Version2 = tag == T("CFF2")
	if len(b) < 4 {
		ec.addError(tag, "Header", "table too short", SeverityMajor, offset)
		return t, nil
	}
	hdrSize := int(b[2])
	if hdrSize < 4 || hdrSize > len(b) {
		ec.addError(tag, "Header", "invalid header size", SeverityMajor, offset)
		return t, nil
	}
	var topDict binarySegm
	if t.Version2 {
		topDictLength := int(b.U16(3))
		if hdrSize+topDictLength > len(b) {
			ec.addError(tag, "TopDICT", "top DICT out of bounds", SeverityMajor, offset)
			return t, nil
		}
		topDict = b[hdrSize : hdrSize+topDictLength]
	} else {
		nameIdx, pos, err := parseCFFIndex(b, hdrSize, false)
		if err != nil {
			ec.addError(tag, "NameINDEX", "cannot read Name INDEX", SeverityMajor, offset)
			return t, nil
		}
		for _, item := range nameIdx.items {
			t.FontNames = append(t.FontNames, string(item))
		}
		topIdx, _, err := parseCFFIndex(b, pos, false)
		if err != nil || len(topIdx.items) == 0 {
			ec.addError(tag, "TopDICT", "cannot read Top DICT INDEX", SeverityMajor, offset)
			return t, nil
		}
		topDict = topIdx.items[0]
	}
	csOffset, ok := dictFindOperand(topDict, opCharStrings)
	if !ok || csOffset < 0 || csOffset >= len(b) {
		ec.addError(tag, "TopDICT", "no CharStrings offset in Top DICT", SeverityMajor, offset)
		return t, nil
	}
	cs, _, err := parseCFFIndex(b, csOffset, t.Version2)
	if err != nil {
		ec.addError(tag, "CharStrings", "cannot read CharStrings INDEX", SeverityMajor, offset)
		return t, nil
	}
	t.charStrings = cs
	tracer().Debugf("%s table has %d charstrings", tag, len(cs.items))
	return t, nil
}
