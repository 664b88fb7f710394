package ot

import (
	"errors"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Platform and encoding identifiers for 'name' table records and 'cmap'
// encoding records.
type PlatformID uint16

const (
	PlatformUnicode   PlatformID = 0
	PlatformMacintosh PlatformID = 1
	PlatformWindows   PlatformID = 3
)

type EncodingID uint16

const (
	EncodingMacRoman      EncodingID = 0 // Macintosh platform
	EncodingWindowsSymbol EncodingID = 0 // Windows platform
	EncodingWindowsBMP    EncodingID = 1
	EncodingUnicodeBMP    EncodingID = 3 // Unicode platform
	EncodingUnicodeFull   EncodingID = 4
	EncodingWindowsFull   EncodingID = 10
)

// LanguageWindowsEnglishUSA is the Windows language ID for US-English records.
const LanguageWindowsEnglishUSA uint16 = 0x0409

// Name IDs beyond the ones exported by x/image's sfnt package.
const (
	NameIDTypographicFamily    sfnt.NameID = 16
	NameIDTypographicSubfamily sfnt.NameID = 17
	NameIDWWSFamily            sfnt.NameID = 21
	NameIDWWSSubfamily         sfnt.NameID = 22
)

// NameIDPostScript identifies the PostScript name string in the naming table.
const NameIDPostScript sfnt.NameID = 6

// NameIDDescription identifies the description string in the naming table.
const NameIDDescription sfnt.NameID = 10

// ErrUndecodableName is returned when a name record cannot be decoded with the
// encoding its platform/encoding IDs announce.
var ErrUndecodableName = errors.New("name record cannot be decoded")

// NameRecord is one entry of the 'name' table: a (platform, encoding,
// language, name) key plus the raw string bytes. The OpenType format does not
// guarantee uniqueness of keys, nor presence of any particular record, and QA
// checks must tolerate duplicates and omissions.
type NameRecord struct {
	PlatformID PlatformID
	EncodingID EncodingID
	LanguageID uint16
	NameID     sfnt.NameID
	Raw        []byte // undecoded string bytes, a view into the font binary
}

// Decode returns the record's string, decoded according to its platform and
// encoding IDs. Unicode and Windows platform strings are UTF-16BE, Macintosh
// Roman strings are decoded through the MacRoman charmap. Decoding failures
// and unsupported encodings are reported as ErrUndecodableName.
func (rec NameRecord) Decode() (string, error) {
	switch rec.PlatformID {
	case PlatformUnicode, PlatformWindows:
		if len(rec.Raw)%2 != 0 {
			return "", ErrUndecodableName
		}
		dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
		s, err := dec.Bytes(rec.Raw)
		if err != nil {
			return "", ErrUndecodableName
		}
		return string(s), nil
	case PlatformMacintosh:
		if rec.EncodingID != EncodingMacRoman {
			return "", ErrUndecodableName
		}
		dec := charmap.Macintosh.NewDecoder()
		s, err := dec.Bytes(rec.Raw)
		if err != nil {
			return "", ErrUndecodableName
		}
		return string(s), nil
	}
	return "", ErrUndecodableName
}

// NameTable is the font naming table. Records are kept in font order.
type NameTable struct {
	tableBase
	Records []NameRecord
}

func newNameTable(tag Tag, b binarySegm, offset, size uint32) *NameTable {
	t := &NameTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

// Record returns the first record matching the given key exactly, or nil.
func (t *NameTable) Record(nameID sfnt.NameID, pid PlatformID, eid EncodingID, lid uint16) *NameRecord {
	if t == nil {
		return nil
	}
	for i := range t.Records {
		rec := &t.Records[i]
		if rec.NameID == nameID && rec.PlatformID == pid && rec.EncodingID == eid && rec.LanguageID == lid {
			return rec
		}
	}
	return nil
}

// Strings returns the decoded strings of all records with the given name ID,
// across all platforms. Undecodable records are skipped.
func (t *NameTable) Strings(nameID sfnt.NameID) []string {
	if t == nil {
		return nil
	}
	var strs []string
	for _, rec := range t.Records {
		if rec.NameID != nameID {
			continue
		}
		if s, err := rec.Decode(); err == nil {
			strs = append(strs, s)
		}
	}
	return strs
}

// StringsFiltered returns decoded strings of records matching name ID and the
// given platform/encoding/language key. Undecodable records are skipped.
func (t *NameTable) StringsFiltered(nameID sfnt.NameID, pid PlatformID, eid EncodingID, lid uint16) []string {
	if t == nil {
		return nil
	}
	var strs []string
	for _, rec := range t.Records {
		if rec.NameID != nameID || rec.PlatformID != pid || rec.EncodingID != eid || rec.LanguageID != lid {
			continue
		}
		if s, err := rec.Decode(); err == nil {
			strs = append(strs, s)
		}
	}
	return strs
}

const (
	nameHeaderSize = 6
	nameRecordSize = 12
)

func parseName(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	t := newNameTable(tag, b, offset, size)
	if len(b) < nameHeaderSize {
		ec.addError(tag, "Header", "name table too short", SeverityMajor, offset)
		return t, nil
	}
	count := int(b.U16(2))
	stringStorageOffset := int(b.U16(4))
	if stringStorageOffset > len(b) {
		ec.addError(tag, "Header", "invalid string storage offset", SeverityMajor, offset)
		return t, nil
	}
	recordsEnd := nameHeaderSize + count*nameRecordSize
	if recordsEnd > len(b) {
		ec.addError(tag, "Records", "record section out of bounds", SeverityMajor, offset)
		return t, nil
	}
	t.Records = make([]NameRecord, 0, count)
	for i := 0; i < count; i++ {
		rec := b[nameHeaderSize+i*nameRecordSize : nameHeaderSize+(i+1)*nameRecordSize]
		strLen := int(u16(rec[8:10]))
		strOff := int(u16(rec[10:12]))
		start := stringStorageOffset + strOff
		end := start + strLen
		if end > len(b) {
			ec.addWarning(tag, "name record string out of bounds, record skipped", offset)
			continue
		}
		t.Records = append(t.Records, NameRecord{
			PlatformID: PlatformID(u16(rec[0:2])),
			EncodingID: EncodingID(u16(rec[2:4])),
			LanguageID: u16(rec[4:6]),
			NameID:     sfnt.NameID(u16(rec[6:8])),
			Raw:        b[start:end],
		})
	}
	tracer().Debugf("name table has %d records", len(t.Records))
	return t, nil
}
