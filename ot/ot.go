package ot

// Font represents the internal structure of an OpenType font.
// It is used by QA checks to navigate properties of a font. A Font may be
// incomplete: any table accessor can return nil, and checks are expected to
// turn missing tables into verdicts rather than assume their presence.
type Font struct {
	Header        *FontHeader
	tables        map[Tag]Table
	parseErrors   []FontError   // errors accumulated during parsing
	parseWarnings []FontWarning // warnings accumulated during parsing
}

// FontHeader is a directory of the top-level tables in a font.
//
// OpenType fonts that contain TrueType outlines should use the value of 0x00010000
// for the FontType. OpenType fonts containing CFF data (version 1 or 2) should
// use 0x4F54544F ('OTTO', when re-interpreted as a Tag).
type FontHeader struct {
	FontType   uint32
	TableCount uint16
}

// Table returns the font table for a given tag. If a table for a tag cannot
// be found in the font, nil is returned.
func (otf *Font) Table(tag Tag) Table {
	if otf == nil {
		return nil
	}
	if t, ok := otf.tables[tag]; ok {
		return t
	}
	return nil
}

// HasTable reports whether the font contains a table for the given tag.
func (otf *Font) HasTable(tag Tag) bool {
	return otf.Table(tag) != nil
}

// TableTags returns a list of tags, one for each table contained in the font.
func (otf *Font) TableTags() []Tag {
	var tags = make([]Tag, 0, len(otf.tables))
	for tag := range otf.tables {
		tags = append(tags, tag)
	}
	return tags
}

// IsCFF reports whether the font carries glyphs as CFF version 1 charstrings.
func (otf *Font) IsCFF() bool {
	return otf.HasTable(T("CFF "))
}

// IsCFF2 reports whether the font carries glyphs as CFF version 2 charstrings.
func (otf *Font) IsCFF2() bool {
	return otf.HasTable(T("CFF2"))
}

// IsTrueType reports whether the font carries glyphs as TrueType outlines.
func (otf *Font) IsTrueType() bool {
	return otf.HasTable(T("glyf"))
}

// Errors returns all errors encountered during font parsing.
// These errors represent issues that were found but did not prevent parsing
// from completing.
func (otf *Font) Errors() []FontError {
	if otf.parseErrors == nil {
		return []FontError{}
	}
	return otf.parseErrors
}

// Warnings returns all warnings encountered during font parsing.
func (otf *Font) Warnings() []FontWarning {
	if otf.parseWarnings == nil {
		return []FontWarning{}
	}
	return otf.parseWarnings
}

// HasCriticalErrors returns true if any critical errors were encountered
// during parsing. Fonts with critical errors may be unreliable or unusable.
func (otf *Font) HasCriticalErrors() bool {
	for _, err := range otf.parseErrors {
		if err.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// --- Tag -------------------------------------------------------------------

// Tag is defined by the OpenType spec as an array of four uint8s, used to
// identify a table, script, language system, feature, or baseline.
type Tag uint32

// MakeTag creates a Tag from 4 bytes.
// If b is shorter or longer, it will be silently extended or cut as appropriate.
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate.
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// --- Table -----------------------------------------------------------------

// Table represents one of the various OpenType font tables.
//
// Required tables, according to the OpenType specification:
// 'cmap' (Character to glyph mapping), 'head' (Font header), 'hhea' (Horizontal header),
// 'hmtx' (Horizontal metrics), 'maxp' (Maximum profile), 'name' (Naming table),
// 'OS/2' (OS/2 and Windows specific metrics), 'post' (PostScript information).
//
// Tables not interpreted by this package are still listed in the font and can
// be inspected through Binary().
type Table interface {
	Extent() (uint32, uint32) // offset and byte size within the font's binary data
	Binary() []byte           // the bytes of this table; should be treated as read-only by clients
	Self() TableSelf          // reference to itself
}

func newTable(tag Tag, b binarySegm, offset, size uint32) *genericTable {
	t := &genericTable{tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	},
	}
	t.self = t
	return t
}

type genericTable struct {
	tableBase
}

// tableBase is a common parent for all kinds of OpenType tables.
type tableBase struct {
	data   binarySegm // a table is a slice of font data
	name   Tag        // 4-byte name as an integer
	offset uint32     // from offset
	length uint32     // to offset + length
	self   any
}

// Extent returns offset and byte size of this table within the OpenType font.
func (tb *tableBase) Extent() (uint32, uint32) {
	return tb.offset, tb.length
}

// Binary returns the bytes of this table. Should be treated as read-only by
// clients, as it is a view into the original data.
func (tb *tableBase) Binary() []byte {
	return tb.data
}

func (tb *tableBase) Self() TableSelf {
	return TableSelf{tableBase: tb}
}

// TableSelf is a reference to a table. Its primary use is for converting
// a generic table to a concrete table flavour, and for reproducing the
// name tag of a table.
type TableSelf struct {
	tableBase *tableBase
}

// NameTag returns the 4-letter name of a table.
func (tself TableSelf) NameTag() Tag {
	return tself.tableBase.name
}

func safeSelf(tself TableSelf) any {
	if tself.tableBase == nil || tself.tableBase.self == nil {
		return TableSelf{}
	}
	return tself.tableBase.self
}

// AsHead returns this table as a head table, or nil.
func (tself TableSelf) AsHead() *HeadTable {
	if k, ok := safeSelf(tself).(*HeadTable); ok {
		return k
	}
	return nil
}

// AsHHea returns this table as a hhea table, or nil.
func (tself TableSelf) AsHHea() *HHeaTable {
	if k, ok := safeSelf(tself).(*HHeaTable); ok {
		return k
	}
	return nil
}

// AsHMtx returns this table as a hmtx table, or nil.
func (tself TableSelf) AsHMtx() *HMtxTable {
	if k, ok := safeSelf(tself).(*HMtxTable); ok {
		return k
	}
	return nil
}

// AsMaxP returns this table as a maxp table, or nil.
func (tself TableSelf) AsMaxP() *MaxPTable {
	if k, ok := safeSelf(tself).(*MaxPTable); ok {
		return k
	}
	return nil
}

// AsOS2 returns this table as an OS/2 table, or nil.
func (tself TableSelf) AsOS2() *OS2Table {
	if k, ok := safeSelf(tself).(*OS2Table); ok {
		return k
	}
	return nil
}

// AsPost returns this table as a post table, or nil.
func (tself TableSelf) AsPost() *PostTable {
	if k, ok := safeSelf(tself).(*PostTable); ok {
		return k
	}
	return nil
}

// AsName returns this table as a name table, or nil.
func (tself TableSelf) AsName() *NameTable {
	if k, ok := safeSelf(tself).(*NameTable); ok {
		return k
	}
	return nil
}

// AsCMap returns this table as a cmap table, or nil.
func (tself TableSelf) AsCMap() *CMapTable {
	if k, ok := safeSelf(tself).(*CMapTable); ok {
		return k
	}
	return nil
}

// AsLoca returns this table as a loca table, or nil.
func (tself TableSelf) AsLoca() *LocaTable {
	if k, ok := safeSelf(tself).(*LocaTable); ok {
		return k
	}
	return nil
}

// AsGlyf returns this table as a glyf table, or nil.
func (tself TableSelf) AsGlyf() *GlyfTable {
	if k, ok := safeSelf(tself).(*GlyfTable); ok {
		return k
	}
	return nil
}

// AsCFF returns this table as a CFF or CFF2 table, or nil.
func (tself TableSelf) AsCFF() *CFFTable {
	if k, ok := safeSelf(tself).(*CFFTable); ok {
		return k
	}
	return nil
}

// --- Concrete table implementations ----------------------------------------

// HeadTable gives global information about the font. The public fields are the
// subset the QA checks consult.
type HeadTable struct {
	tableBase
	FontRevision     uint32 // fixed-point revision number, set by the font manufacturer
	Flags            uint16 // see https://docs.microsoft.com/en-us/typography/opentype/spec/head
	UnitsPerEm       uint16 // values 16 … 16384 are valid
	XMin             int16  // bounding box over all glyphs
	YMin             int16
	XMax             int16
	YMax             int16
	MacStyle         uint16 // bold/italic/… style bits
	IndexToLocFormat uint16 // needed to interpret the loca table
}

func newHeadTable(tag Tag, b binarySegm, offset, size uint32) *HeadTable {
	t := &HeadTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

// HHeaTable contains information for horizontal layout.
type HHeaTable struct {
	tableBase
	Ascender         int16
	Descender        int16
	LineGap          int16
	AdvanceWidthMax  uint16
	NumberOfHMetrics int
}

func newHHeaTable(tag Tag, b binarySegm, offset, size uint32) *HHeaTable {
	t := &HHeaTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

// MaxPTable establishes the memory requirements for this font.
// The 'maxp' table contains a count for the number of glyphs in the font.
type MaxPTable struct {
	tableBase
	NumGlyphs int
}

func newMaxPTable(tag Tag, b binarySegm, offset, size uint32) *MaxPTable {
	t := &MaxPTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

// OS2Table contains the metrics and classification fields from table 'OS/2'
// that the QA checks cross-validate against other tables.
type OS2Table struct {
	tableBase
	Version       uint16
	XAvgCharWidth int16
	WeightClass   uint16
	Panose        [10]byte // PANOSE classification, see https://monotype.github.io/panose/
	FsSelection   uint16
	TypoAscender  int16
	TypoDescender int16
	TypoLineGap   int16
	WinAscent     uint16
	WinDescent    uint16
}

func newOS2Table(tag Tag, b binarySegm, offset, size uint32) *OS2Table {
	t := &OS2Table{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

// PANOSE classification values checked by the monospace metadata check.
// Only the fields relevant for spacing classification are named here.
const (
	PanoseFamilyLatinText        = 2
	PanoseFamilyLatinHandWritten = 3
	PanoseFamilyLatinDecorative  = 4
	PanoseFamilyLatinSymbol      = 5

	PanoseProportionMonospaced = 9 // bProportion value for latin text fonts
	PanoseSpacingMonospaced    = 3 // bSpacing value for hand-written and symbol fonts
)

// FamilyType returns the PANOSE bFamilyType digit.
func (t *OS2Table) FamilyType() byte { return t.Panose[0] }

// Proportion returns the PANOSE bProportion digit (latin text fonts).
func (t *OS2Table) Proportion() byte { return t.Panose[3] }

// Spacing returns the PANOSE bSpacing digit (latin hand-written and symbol fonts).
func (t *OS2Table) Spacing() byte { return t.Panose[3] }

// PanoseMonospaced reports whether the PANOSE digits classify this font as
// monospaced. Latin text fonts encode this in bProportion, hand-written and
// symbol fonts in bSpacing.
func (t *OS2Table) PanoseMonospaced() bool {
	switch t.FamilyType() {
	case PanoseFamilyLatinText:
		return t.Proportion() == PanoseProportionMonospaced
	case PanoseFamilyLatinHandWritten, PanoseFamilyLatinSymbol:
		return t.Spacing() == PanoseSpacingMonospaced
	}
	return false
}

// PostTable contains PostScript information, including the fixed-pitch flag
// and (for version 2.0 tables) glyph names.
type PostTable struct {
	tableBase
	VersionFixed       uint32 // 0x00020000 for version 2.0
	ItalicAngle        int32
	UnderlinePosition  int16
	UnderlineThickness int16
	IsFixedPitch       uint32 // 0 if proportionally spaced, non-zero if monospaced
	glyphNames         []string
}

func newPostTable(tag Tag, b binarySegm, offset, size uint32) *PostTable {
	t := &PostTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

// HasGlyphNames reports whether the table carries glyph names (version 2.0).
func (t *PostTable) HasGlyphNames() bool {
	return t != nil && len(t.glyphNames) > 0
}

// GlyphNames returns a copy of all glyph names from a version 2.0 table,
// indexed by glyph. Nil for other versions.
func (t *PostTable) GlyphNames() []string {
	if t == nil || t.glyphNames == nil {
		return nil
	}
	names := make([]string, len(t.glyphNames))
	copy(names, t.glyphNames)
	return names
}

// GlyphName returns the name for a glyph from a version 2.0 table.
func (t *PostTable) GlyphName(gid GlyphIndex) (string, bool) {
	if t == nil || int(gid) >= len(t.glyphNames) {
		return "", false
	}
	return t.glyphNames[gid], true
}

// HMtxTable contains metric information for the horizontal layout of each
// glyph in the font. The value NumberOfHMetrics is taken from the 'hhea'
// table; trailing glyphs share the advance width of the last long record.
type HMtxTable struct {
	tableBase
	NumberOfHMetrics int
	numGlyphs        int
	longMetrics      []HMetricRecord
	leftSideBearings []int16
}

// HMetricRecord is one long horizontal metric record from table hmtx.
type HMetricRecord struct {
	AdvanceWidth    uint16
	LeftSideBearing int16
}

func newHMtxTable(tag Tag, b binarySegm, offset, size uint32) *HMtxTable {
	t := &HMtxTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

func (t *HMtxTable) parseAll(numGlyphs, numberOfHMetrics int) error {
	if t == nil {
		return nil
	}
	if numGlyphs < 0 {
		return errBufferBounds
	}
	if numberOfHMetrics < 0 || numberOfHMetrics > numGlyphs {
		return errBufferBounds
	}
	required := numberOfHMetrics*4 + (numGlyphs-numberOfHMetrics)*2
	if required > len(t.data) {
		return errBufferBounds
	}
	longMetrics := make([]HMetricRecord, numberOfHMetrics)
	for i := 0; i < numberOfHMetrics; i++ {
		longMetrics[i] = HMetricRecord{
			AdvanceWidth:    t.data.U16(i * 4),
			LeftSideBearing: int16(t.data.U16(i*4 + 2)),
		}
	}
	lsbCount := numGlyphs - numberOfHMetrics
	leftSideBearings := make([]int16, lsbCount)
	base := numberOfHMetrics * 4
	for i := 0; i < lsbCount; i++ {
		leftSideBearings[i] = int16(t.data.U16(base + i*2))
	}
	t.NumberOfHMetrics = numberOfHMetrics
	t.numGlyphs = numGlyphs
	t.longMetrics = longMetrics
	t.leftSideBearings = leftSideBearings
	return nil
}

// GlyphCount returns the glyph count used when decoding this hmtx table.
func (t *HMtxTable) GlyphCount() int {
	if t == nil {
		return 0
	}
	return t.numGlyphs
}

// HMetrics returns the advance width and left side bearing for a glyph.
func (t *HMtxTable) HMetrics(g GlyphIndex) (uint16, int16, bool) {
	if t == nil || t.numGlyphs == 0 || int(g) >= t.numGlyphs {
		return 0, 0, false
	}
	if int(g) < len(t.longMetrics) {
		m := t.longMetrics[int(g)]
		return m.AdvanceWidth, m.LeftSideBearing, true
	}
	if len(t.longMetrics) == 0 {
		return 0, 0, false
	}
	i := int(g) - len(t.longMetrics)
	if i >= len(t.leftSideBearings) {
		return 0, 0, false
	}
	return t.longMetrics[len(t.longMetrics)-1].AdvanceWidth, t.leftSideBearings[i], true
}

// AdvanceWidth returns the advance width of a glyph.
func (t *HMtxTable) AdvanceWidth(g GlyphIndex) (uint16, bool) {
	aw, _, ok := t.HMetrics(g)
	return aw, ok
}

// LocaTable stores the offsets to the locations of the glyphs in the font,
// relative to the beginning of the glyph data table.
type LocaTable struct {
	tableBase
	inx2loc func(t *LocaTable, gid GlyphIndex) (uint32, uint32) // start and end of glyph data
	locCnt  int                                                 // number of locations
}

// GlyphExtent returns the extent of a glyph's data block within the 'glyf'
// table: its start offset and its length in bytes. A zero length means the
// glyph has no outline at all.
func (t *LocaTable) GlyphExtent(gid GlyphIndex) (uint32, uint32) {
	if t == nil || t.inx2loc == nil {
		return 0, 0
	}
	return t.inx2loc(t, gid)
}

// GlyphCount returns the number of glyphs covered by this loca table.
func (t *LocaTable) GlyphCount() int {
	if t == nil {
		return 0
	}
	return t.locCnt
}

func newLocaTable(tag Tag, b binarySegm, offset, size uint32) *LocaTable {
	t := &LocaTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.inx2loc = shortLocaVersion // may get changed during cross-table wiring
	t.locCnt = 0                 // has to be set during cross-table wiring
	t.self = t
	return t
}

func shortLocaVersion(t *LocaTable, gid GlyphIndex) (uint32, uint32) {
	if int(gid) >= t.locCnt {
		return 0, 0
	}
	start, err := t.data.u16(int(gid) * 2)
	if err != nil {
		return 0, 0
	}
	end, err := t.data.u16(int(gid)*2 + 2)
	if err != nil || end < start {
		return 0, 0
	}
	return uint32(start) * 2, uint32(end-start) * 2
}

func longLocaVersion(t *LocaTable, gid GlyphIndex) (uint32, uint32) {
	if int(gid) >= t.locCnt {
		return 0, 0
	}
	start, err := t.data.u32(int(gid) * 4)
	if err != nil {
		return 0, 0
	}
	end, err := t.data.u32(int(gid)*4 + 4)
	if err != nil || end < start {
		return 0, 0
	}
	return start, end - start
}

// GlyfTable holds TrueType glyph outline data. This package does not decode
// outlines; it exposes just enough structure for emptiness and composite
// classification, which the QA checks need.
type GlyfTable struct {
	tableBase
	loca *LocaTable // wired after parsing, may be nil for broken fonts
}

func newGlyfTable(tag Tag, b binarySegm, offset, size uint32) *GlyfTable {
	t := &GlyfTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

// NumberOfContours returns the contour count for a glyph. Composite glyphs
// have a negative count, per the OpenType spec.
func (t *GlyfTable) NumberOfContours(gid GlyphIndex) (int, bool) {
	if t == nil || t.loca == nil {
		return 0, false
	}
	start, length := t.loca.GlyphExtent(gid)
	if length == 0 {
		return 0, true // glyph without any outline data
	}
	n, err := t.data.i16(int(start))
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// IsComposite reports whether a glyph is assembled from component glyphs.
func (t *GlyfTable) IsComposite(gid GlyphIndex) bool {
	n, ok := t.NumberOfContours(gid)
	return ok && n < 0
}

// IsEmptyGlyph reports whether a glyph has no outline: either its loca entry
// has zero length or it is a simple glyph with zero contours.
func (t *GlyfTable) IsEmptyGlyph(gid GlyphIndex) bool {
	n, ok := t.NumberOfContours(gid)
	return ok && n == 0
}
