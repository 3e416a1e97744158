// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"image/color"
	"io"

	"github.com/klauspost/compress/zlib"
)

// mrciHeader is the fixed-layout tiled-raster header sgd.c's
// SGDMrciHeader describes. Only the fields the renderer actually uses
// get real names; the rest are kept in on-disk order so the struct's
// shape documents the file's shape (SPEC_FULL.md "unspecified fields").
type mrciHeader struct {
	hdr entryHeader

	width, height                               uint32
	unk9, unk10, unk11, unk12, unk13, unk14      uint32
	unk15                                        float32
	unk16                                        uint32
	unk17                                        float32
	unk18, unk19, unk20, unk21, unk22, unk23     uint32
	unk24, unk25, unk26                          uint32
	bytesPerPixel, bitDepth                      uint32
	paletteAddr                                  uint32
	tileWidth, tileHeight                        uint32
	unk32, unk33, unk34, unk35                   uint32
	bitmapAddr                                   uint32
}

func parseMrciHeader(r *reader) (mrciHeader, error) {
	c := r.at(mrciOffset)
	var m mrciHeader
	var err error
	if m.hdr, err = parseEntryHeader(c); err != nil {
		return m, err
	}
	fields := []*uint32{
		&m.width, &m.height,
		&m.unk9, &m.unk10, &m.unk11, &m.unk12, &m.unk13, &m.unk14,
	}
	for _, f := range fields {
		if *f, err = c.u32(); err != nil {
			return m, err
		}
	}
	if m.unk15, err = c.f32(); err != nil {
		return m, err
	}
	if m.unk16, err = c.u32(); err != nil {
		return m, err
	}
	if m.unk17, err = c.f32(); err != nil {
		return m, err
	}
	rest := []*uint32{
		&m.unk18, &m.unk19, &m.unk20, &m.unk21, &m.unk22, &m.unk23, &m.unk24, &m.unk25, &m.unk26,
		&m.bytesPerPixel, &m.bitDepth, &m.paletteAddr, &m.tileWidth, &m.tileHeight,
		&m.unk32, &m.unk33, &m.unk34, &m.unk35, &m.bitmapAddr,
	}
	for _, f := range rest {
		if *f, err = c.u32(); err != nil {
			return m, err
		}
	}
	if m.hdr.typ != typeMRCIHeader {
		return m, newErr(KindFormat, "expected MRCI header, got %s", typeName(m.hdr.typ))
	}
	return m, nil
}

func validateMrciHeader(m mrciHeader) error {
	if m.bytesPerPixel != 1 || m.bitDepth != 8 {
		return newErr(KindFormat, "unsupported raster pixel format: %d bpp, %d-bit", m.bytesPerPixel, m.bitDepth)
	}
	if m.width == 0 || m.height == 0 || m.width > maxWidth || m.height > maxHeight {
		return newErr(KindFormat, "bad raster dimensions %dx%d", m.width, m.height)
	}
	if m.tileWidth != tileWidth || m.tileHeight != tileHeight {
		return newErr(KindFormat, "unsupported tile size %dx%d", m.tileWidth, m.tileHeight)
	}
	return nil
}

func (m mrciHeader) tilesX() int { return int(m.width+uint32(tileWidth)-1) / tileWidth }
func (m mrciHeader) tilesY() int { return int(m.height+uint32(tileHeight)-1) / tileHeight }

// mrciPalette is the variable-length color table referenced by the
// raster header's palette_addr.
type mrciPalette struct {
	bytesPerPixel uint16
	bitDepth      uint16
	colors        []color.RGBA
}

func parseMrciPalette(r *reader, paletteAddr uint32) (*mrciPalette, error) {
	abs := relAddr(paletteAddr)
	c := r.at(abs)
	size, err := c.u16()
	if err != nil {
		return nil, err
	}
	typ, err := c.u16()
	if err != nil {
		return nil, err
	}
	if typ != bmpPalette {
		return nil, newErr(KindFormat, "expected palette, got %s", typeName(typ))
	}
	_ = size
	bpp, err := c.u16()
	if err != nil {
		return nil, err
	}
	bitDepth, err := c.u16()
	if err != nil {
		return nil, err
	}
	numColors, err := c.u32()
	if err != nil {
		return nil, err
	}
	if numColors > 256 {
		return nil, newErr(KindFormat, "too many palette colors: %d", numColors)
	}
	if bpp != 1 && bpp != 3 {
		return nil, newErr(KindFormat, "unsupported palette entry size: %d", bpp)
	}
	if bitDepth != 8 {
		return nil, newErr(KindFormat, "unsupported palette bit depth: %d", bitDepth)
	}
	colors := make([]color.RGBA, numColors)
	for i := range colors {
		raw, err := c.bytes(int(bpp))
		if err != nil {
			return nil, err
		}
		var col color.RGBA
		if bpp == 3 {
			col = color.RGBA{R: raw[0], G: raw[1], B: raw[2], A: 255}
		} else {
			col = color.RGBA{R: raw[0], G: raw[0], B: raw[0], A: 255}
		}
		colors[i] = col
	}
	return &mrciPalette{bytesPerPixel: bpp, bitDepth: bitDepth, colors: colors}, nil
}

// mrciBitmap is the per-tile address table referenced by the raster
// header's bitmap_addr.
type mrciBitmap struct {
	tileAddrs []uint32
}

func parseMrciBitmap(r *reader, bitmapAddr uint32, numTiles int) (*mrciBitmap, error) {
	abs := relAddr(bitmapAddr)
	c := r.at(abs)
	if _, err := c.u16(); err != nil { // size, unused
		return nil, err
	}
	typ, err := c.u16()
	if err != nil {
		return nil, err
	}
	if typ != bmpTileList {
		return nil, newErr(KindFormat, "expected tile list, got %s", typeName(typ))
	}
	addrs := make([]uint32, numTiles)
	for i := range addrs {
		if addrs[i], err = c.u32(); err != nil {
			return nil, err
		}
	}
	return &mrciBitmap{tileAddrs: addrs}, nil
}

// decodeTile resolves one tile's pixel bytes. Every tile is zlib
// deflated; sgd.c's parse_bmp() never handles any other encoding.
func decodeTile(r *reader, tileAddr uint32, wantBytes int) ([]byte, error) {
	abs := relAddr(tileAddr)
	c := r.at(abs)
	size, err := c.u16()
	if err != nil {
		return nil, err
	}
	typ, err := c.u16()
	if err != nil {
		return nil, err
	}
	if typ != bmpTile {
		return nil, newErr(KindFormat, "expected tile, got %s", typeName(typ))
	}
	encoding, err := c.u32()
	if err != nil {
		return nil, err
	}
	_ = size
	if encoding != 1 {
		return nil, newErr(KindFormat, "unsupported tile encoding: %d", encoding)
	}

	rest := r.buf[c.offset():]
	zr, err := zlib.NewReader(bytes.NewReader(rest))
	if err != nil {
		return nil, wrapErr(KindFormat, err, "opening compressed tile at 0x%x", tileAddr)
	}
	defer zr.Close()
	out := make([]byte, wantBytes)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, wrapErr(KindFormat, err, "inflating tile at 0x%x", tileAddr)
	}
	return out, nil
}

// rasterPlane is the fully assembled base raster: one palette index
// per pixel, row-major, width*height bytes.
type rasterPlane struct {
	width, height int
	indices       []uint8
	palette       *mrciPalette
	tilesDecoded  int
}

func (r *reader) buildRasterPlane() (*rasterPlane, error) {
	hdr, err := parseMrciHeader(r)
	if err != nil {
		return nil, err
	}
	if err := validateMrciHeader(hdr); err != nil {
		return nil, err
	}
	pal, err := parseMrciPalette(r, hdr.paletteAddr)
	if err != nil {
		return nil, err
	}
	tilesX, tilesY := hdr.tilesX(), hdr.tilesY()
	bmp, err := parseMrciBitmap(r, hdr.bitmapAddr, tilesX*tilesY)
	if err != nil {
		return nil, err
	}

	width, height := int(hdr.width), int(hdr.height)
	plane := &rasterPlane{width: width, height: height, indices: make([]uint8, width*height), palette: pal, tilesDecoded: tilesX * tilesY}

	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			ox, oy := tx*tileWidth, ty*tileHeight
			cw := min(tileWidth, width-ox)
			ch := min(tileHeight, height-oy)
			addr := bmp.tileAddrs[ty*tilesX+tx]
			// render_tiles() indexes each tile row at stride
			// tile_row_width (the clamped column width cw), not the
			// fixed 128; a right-edge tile's decoded payload is laid
			// out with that same narrower stride.
			data, err := decodeTile(r, addr, cw*tileHeight)
			if err != nil {
				return nil, err
			}
			for row := 0; row < ch; row++ {
				src := data[row*cw : row*cw+cw]
				dst := plane.indices[(oy+row)*width+ox : (oy+row)*width+ox+cw]
				copy(dst, src)
			}
		}
	}
	return plane, nil
}
