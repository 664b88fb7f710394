package ot

import "errors"

// Reading bytes from a font's binary representation

var errBufferBounds = errors.New("internal inconsistency: buffer bounds error")

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

func i16(b []byte) int16 {
	return int16(u16(b))
}

// binarySegm is a segment of byte data. We use it throughout this package to
// navigate the font's binary data.
type binarySegm []byte

// view returns n bytes at the given offset, without copying.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n < 0 || offset+n > len(b) {
		return nil, errBufferBounds
	}
	return b[offset : offset+n], nil
}

func (b binarySegm) u16(offset int) (uint16, error) {
	if offset < 0 || offset+2 > len(b) {
		return 0, errBufferBounds
	}
	return u16(b[offset:]), nil
}

func (b binarySegm) i16(offset int) (int16, error) {
	n, err := b.u16(offset)
	return int16(n), err
}

func (b binarySegm) u32(offset int) (uint32, error) {
	if offset < 0 || offset+4 > len(b) {
		return 0, errBufferBounds
	}
	return u32(b[offset:]), nil
}

// U16 is convenience access to 16 bit data at a byte index, returning 0 on
// out-of-bounds access.
func (b binarySegm) U16(offset int) uint16 {
	n, err := b.u16(offset)
	if err != nil {
		return 0
	}
	return n
}

// U32 is convenience access to 32 bit data at a byte index, returning 0 on
// out-of-bounds access.
func (b binarySegm) U32(offset int) uint32 {
	n, err := b.u32(offset)
	if err != nil {
		return 0
	}
	return n
}
