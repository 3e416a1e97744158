// SPDX-License-Identifier: MIT

package main

import (
	"encoding/binary"
	"math"
)

// sgdOffset is the fixed base offset from which all addresses stored
// inside an SGD file are measured (SGD_OFFSET in the original format).
const sgdOffset = 0x94

const (
	maxWidth  = 2048
	maxHeight = 2048

	tileWidth  = 128
	tileHeight = 128

	// maxBase is maxWidth*maxHeight, the size of one full-resolution
	// raster plane; loader.go bounds the decoded container buffer at
	// twice this (maxFileSize).
	maxBase = maxWidth * maxHeight
)

// reader is a bounds-checked little-endian view over a decoded SGD
// container buffer. It replaces the original's pointer casts into a
// shared byte buffer: every access goes through a method that checks
// the requested range against the buffer length and returns a BOUNDS
// error instead of reading out of range.
type reader struct {
	buf []byte
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) size() int { return len(r.buf) }

func (r *reader) need(off, n int) error {
	if off < 0 || n < 0 || off+n > len(r.buf) {
		return newErr(KindBounds, "need %d bytes at offset 0x%x, file has %d bytes", n, off, len(r.buf))
	}
	return nil
}

// relAddr resolves an address stored inside the file (relative to
// sgdOffset) to an absolute offset into the buffer, without checking
// that the offset is dereferenceable — callers validate separately
// against the amount of data they expect to read there.
func relAddr(addr uint32) int {
	return sgdOffset + int(addr)
}

// checkRel validates that a file-relative address lies within
// [sgdOffset, size).
func (r *reader) checkRel(addr uint32) error {
	abs := relAddr(addr)
	if abs < sgdOffset || abs >= len(r.buf) {
		return newErr(KindBounds, "address 0x%x out of range [0x%x, 0x%x)", addr, sgdOffset, len(r.buf))
	}
	return nil
}

// checkAbs validates that an absolute file offset is dereferenceable.
func (r *reader) checkAbs(off uint32) error {
	if int(off) >= len(r.buf) {
		return newErr(KindBounds, "address 0x%x exceeds file size 0x%x", off, len(r.buf))
	}
	return nil
}

func (r *reader) u8(off int) (uint8, error) {
	if err := r.need(off, 1); err != nil {
		return 0, err
	}
	return r.buf[off], nil
}

func (r *reader) u16(off int) (uint16, error) {
	if err := r.need(off, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(r.buf[off:]), nil
}

func (r *reader) u32(off int) (uint32, error) {
	if err := r.need(off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.buf[off:]), nil
}

func (r *reader) i32(off int) (int32, error) {
	v, err := r.u32(off)
	return int32(v), err
}

func (r *reader) f32(off int) (float32, error) {
	v, err := r.u32(off)
	return math.Float32frombits(v), err
}

func (r *reader) bytes(off, n int) ([]byte, error) {
	if err := r.need(off, n); err != nil {
		return nil, err
	}
	return r.buf[off : off+n], nil
}

// cstring reads a NUL-terminated byte string starting at off, bounded
// by the number of bytes remaining in the buffer.
func (r *reader) cstring(off int) (string, error) {
	if off < 0 || off > len(r.buf) {
		return "", newErr(KindBounds, "offset 0x%x exceeds file size", off)
	}
	rest := r.buf[off:]
	for i, b := range rest {
		if b == 0 {
			return string(rest[:i]), nil
		}
	}
	return "", newErr(KindFormat, "unterminated string at offset 0x%x", off)
}

// cursor reads sequential fields from a reader, advancing its own
// position after each read the way the original's struct field
// layout does implicitly through pointer arithmetic.
type cursor struct {
	r   *reader
	pos int
}

func (r *reader) at(pos int) *cursor {
	return &cursor{r: r, pos: pos}
}

func (c *cursor) offset() int { return c.pos }

func (c *cursor) skip(n int) { c.pos += n }

func (c *cursor) u8() (uint8, error) {
	v, err := c.r.u8(c.pos)
	c.pos++
	return v, err
}

func (c *cursor) u16() (uint16, error) {
	v, err := c.r.u16(c.pos)
	c.pos += 2
	return v, err
}

func (c *cursor) u32() (uint32, error) {
	v, err := c.r.u32(c.pos)
	c.pos += 4
	return v, err
}

func (c *cursor) i32() (int32, error) {
	v, err := c.r.i32(c.pos)
	c.pos += 4
	return v, err
}

func (c *cursor) f32() (float32, error) {
	v, err := c.r.f32(c.pos)
	c.pos += 4
	return v, err
}

func (c *cursor) point() (point2, error) {
	x, err := c.f32()
	if err != nil {
		return point2{}, err
	}
	y, err := c.f32()
	if err != nil {
		return point2{}, err
	}
	return point2{X: float64(x), Y: float64(y)}, nil
}

func (c *cursor) bytes(n int) ([]byte, error) {
	v, err := c.r.bytes(c.pos, n)
	c.pos += n
	return v, err
}
