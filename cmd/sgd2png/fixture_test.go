// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"math"
)

// sgdBuilder assembles a minimal, byte-exact SGD container for tests,
// mirroring the struct layouts in original_source/sgd.h exactly so the
// parser under test is exercised against real on-disk shapes rather
// than mocked Go values.
type sgdBuilder struct {
	buf []byte
}

func newSGDBuilder() *sgdBuilder {
	b := &sgdBuilder{buf: make([]byte, sgdOffset+8)} // header + MRCI offset pad
	binary.LittleEndian.PutUint32(b.buf[0:], magic1)
	binary.LittleEndian.PutUint16(b.buf[4:], verMajorWant)
	binary.LittleEndian.PutUint16(b.buf[6:], verMinorWantA)
	binary.LittleEndian.PutUint32(b.buf[8:], flagsWant)
	binary.LittleEndian.PutUint32(b.buf[12:], magic2)
	return b
}

func (b *sgdBuilder) pos() int { return len(b.buf) }

func (b *sgdBuilder) putU16(v uint16) { b.buf = binary.LittleEndian.AppendUint16(b.buf, v) }
func (b *sgdBuilder) putU32(v uint32) { b.buf = binary.LittleEndian.AppendUint32(b.buf, v) }
func (b *sgdBuilder) putI32(v int32)  { b.putU32(uint32(v)) }
func (b *sgdBuilder) putF32(v float32) {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, math.Float32bits(v))
}
func (b *sgdBuilder) putPoint(x, y float32) { b.putF32(x); b.putF32(y) }
func (b *sgdBuilder) putBytes(p []byte)     { b.buf = append(b.buf, p...) }
func (b *sgdBuilder) padTo(off int) {
	for len(b.buf) < off {
		b.buf = append(b.buf, 0)
	}
}

// setDirectoryTable writes the single-slot directory table at 0x4c
// pointing at dirAddr (an absolute offset), matching SGDDirectoryTable.
func (b *sgdBuilder) setDirectoryTable(dirAddr uint32) {
	binary.LittleEndian.PutUint32(b.buf[dirTableOffset:], 1) // num_entries
	binary.LittleEndian.PutUint32(b.buf[dirTableOffset+4:], 0) // type == 0
	binary.LittleEndian.PutUint32(b.buf[dirTableOffset+8:], dirAddr)
}

// putEntryHeader writes a full 28-byte SGDEntryHeader.
func (b *sgdBuilder) putEntryHeader(typ uint16, index uint32) {
	b.putU16(0) // size (unused by the Go parser)
	b.putU16(typ)
	b.putU32(index)
	b.putU32(0) // unk2
	b.putU32(0) // unk3 / label flag, off by default
	b.putU32(0) // unk4
	b.putU32(0) // unk5
	b.putU32(0) // unk6
}

// putSet appends an SGDSet entry (hdr + unk7/attr + num_entries + entries[]).
func (b *sgdBuilder) putSet(index uint32, attr uint32, entries []uint32) int {
	off := b.pos()
	b.putEntryHeader(typeSet, index)
	b.putU32(attr)
	b.putU32(uint32(len(entries)))
	for _, e := range entries {
		b.putU32(e)
	}
	return off
}

func (b *sgdBuilder) putPointEntity(index uint32, x, y float32) int {
	off := b.pos()
	b.putEntryHeader(typePoint2D, index)
	b.putPoint(x, y)
	b.putU32(0) // num_entries (unused trailing refs)
	return off
}

func (b *sgdBuilder) putLasso(index uint32, pts [][2]float32) int {
	off := b.pos()
	b.putEntryHeader(typeLasso2D, index)
	b.putU32(uint32(len(pts)))
	for _, p := range pts {
		b.putPoint(p[0], p[1])
	}
	return off
}

func (b *sgdBuilder) putSimpleArea(index uint32, entries []int32) int {
	off := b.pos()
	b.putEntryHeader(typeSimpleArea, index)
	b.putU32(uint32(len(entries)))
	for _, e := range entries {
		b.putI32(e)
	}
	return off
}

func (b *sgdBuilder) putTextLine(index uint32, text string, x, y float32) int {
	off := b.pos()
	b.putEntryHeader(typeTextLine2D, index)
	b.putU32(0) // unk7
	b.putU32(0) // unk8
	b.putPoint(x, y)
	b.putF32(0) // unk11
	b.putPoint(0, 0)
	b.putPoint(0, 0)
	b.putPoint(0, 0)
	b.putBytes(append([]byte(text), 0))
	return off
}

// directory entry (SGDDirectoryType0): 24-byte header then addr[].
// addrs are relative to sgdOffset, as loadDirectory expects.
func (b *sgdBuilder) putType0Directory(addrs []uint32) int {
	off := b.pos()
	b.putU16(0)             // size_16
	b.putU16(typeBulkData)  // hdr.type
	b.putU32(0)              // hdr.size
	b.putU32(0)              // unk2
	b.putU32(uint32(len(addrs)))
	b.putU32(0) // unk4
	b.putU32(0) // unk5
	for _, a := range addrs {
		b.putU32(a)
	}
	return off
}

// rel converts an absolute offset into this builder's buffer to a
// value relative to sgdOffset, as stored inside the file.
func (b *sgdBuilder) rel(abs int) uint32 { return uint32(abs - sgdOffset) }

// putMRCIHeader writes the fixed-layout tiled raster header at
// mrciOffset with width/height filled in and palette_addr/bitmap_addr
// left zero; it returns their absolute byte offsets so the caller can
// patch them in once the palette/bitmap tables have been appended
// later in the file (patchU32).
func (b *sgdBuilder) putMRCIHeader(width, height uint32) (paletteAddrOff, bitmapAddrOff int) {
	if b.pos() != mrciOffset {
		panic("putMRCIHeader called at wrong offset")
	}
	b.putEntryHeader(typeMRCIHeader, 0)
	b.putU32(width)
	b.putU32(height)
	for i := 0; i < 6; i++ {
		b.putU32(0) // unk9..unk14
	}
	b.putF32(0) // unk15
	b.putU32(0) // unk16
	b.putF32(0) // unk17
	for i := 0; i < 9; i++ {
		b.putU32(0) // unk18..unk26
	}
	b.putU32(1) // bytes_per_pixel
	b.putU32(8) // bit_depth
	paletteAddrOff = b.pos()
	b.putU32(0) // palette_addr, patched later
	b.putU32(tileWidth)
	b.putU32(tileHeight)
	for i := 0; i < 4; i++ {
		b.putU32(0) // unk32..unk35
	}
	bitmapAddrOff = b.pos()
	b.putU32(0) // bitmap_addr, patched later
	return
}

func (b *sgdBuilder) patchU32(off int, v uint32) {
	binary.LittleEndian.PutUint32(b.buf[off:], v)
}

func (b *sgdBuilder) putPalette(colors [][3]byte) int {
	off := b.pos()
	b.putU16(0) // size
	b.putU16(bmpPalette)
	b.putU16(3) // bytes_per_pixel
	b.putU16(8) // bit_depth
	b.putU32(uint32(len(colors)))
	for _, c := range colors {
		b.putBytes(c[:])
	}
	return off
}

func (b *sgdBuilder) putBitmap(tileAddrs []uint32) int {
	off := b.pos()
	b.putU16(0)
	b.putU16(bmpTileList)
	for _, a := range tileAddrs {
		b.putU32(a)
	}
	return off
}

// putZlibTile deflates pix (tileWidth*tileHeight bytes for a full
// tile, or tile_row_width*tileHeight for a clamped right-edge column)
// and writes it as an SGDMrciTile with encoding=1.
func (b *sgdBuilder) putZlibTile(pix []byte) int {
	off := b.pos()
	b.putU16(0)
	b.putU16(bmpTile)
	b.putU32(1) // encoding

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	zw.Write(pix)
	zw.Close()
	b.putBytes(compressed.Bytes())
	return off
}
