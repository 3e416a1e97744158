// SPDX-License-Identifier: MIT

package main

import "testing"

func TestBuildRasterPlaneSingleTile(t *testing.T) {
	b := newSGDBuilder()
	paletteOff, bitmapOff := b.putMRCIHeader(4, 3)

	palAbs := b.putPalette([][3]byte{{0xff, 0xff, 0xff}, {0, 0, 0}})
	tilePix := make([]byte, tileWidth*tileHeight)
	tilePix[0] = 1 // top-left pixel maps to palette entry 1 (black)
	tileAbs := b.putZlibTile(tilePix)
	bmpAbs := b.putBitmap([]uint32{b.rel(tileAbs)})

	b.patchU32(paletteOff, b.rel(palAbs))
	b.patchU32(bitmapOff, b.rel(bmpAbs))

	r := newReader(b.buf)
	plane, err := r.buildRasterPlane()
	if err != nil {
		t.Fatalf("buildRasterPlane: %v", err)
	}
	if plane.width != 4 || plane.height != 3 {
		t.Fatalf("plane dims = %dx%d, want 4x3", plane.width, plane.height)
	}
	if len(plane.indices) != 4*3 {
		t.Fatalf("plane has %d indices, want %d", len(plane.indices), 4*3)
	}
	if plane.indices[0] != 1 {
		t.Errorf("plane.indices[0] = %d, want 1", plane.indices[0])
	}
	if plane.indices[1] != 0 {
		t.Errorf("plane.indices[1] = %d, want 0", plane.indices[1])
	}
}

// TestBuildRasterPlaneRightEdgeTileUsesClampedStride covers a raster
// whose width isn't a multiple of 128: the rightmost tile column's
// decoded payload must be read at stride tile_row_width (the clamped
// column width), not the fixed 128, matching render_tiles()'s
// `tile[(y%128) * tile_row_width + x_within_tile]`.
func TestBuildRasterPlaneRightEdgeTileUsesClampedStride(t *testing.T) {
	b := newSGDBuilder()
	const width, height = 200, 2 // two tile columns: 128 + 72
	paletteOff, bitmapOff := b.putMRCIHeader(width, height)
	palAbs := b.putPalette([][3]byte{{0xff, 0xff, 0xff}, {0, 0, 0}, {0x10, 0x20, 0x30}})

	leftPix := make([]byte, tileWidth*tileHeight)
	leftAbs := b.putZlibTile(leftPix)

	const cw = width - tileWidth // 72: clamped width of the right column
	rightPix := make([]byte, cw*tileHeight)
	rightPix[0] = 2             // row 0, col 0 of the right tile (global pixel 128,0)
	rightPix[cw] = 1            // row 1, col 0 of the right tile (global pixel 128,1)
	rightAbs := b.putZlibTile(rightPix)

	bmpAbs := b.putBitmap([]uint32{b.rel(leftAbs), b.rel(rightAbs)})
	b.patchU32(paletteOff, b.rel(palAbs))
	b.patchU32(bitmapOff, b.rel(bmpAbs))

	r := newReader(b.buf)
	plane, err := r.buildRasterPlane()
	if err != nil {
		t.Fatalf("buildRasterPlane: %v", err)
	}
	if got := plane.indices[0*width+tileWidth]; got != 2 {
		t.Errorf("pixel (128,0) = %d, want 2 (stride must be the clamped 72, not 128)", got)
	}
	if got := plane.indices[1*width+tileWidth]; got != 1 {
		t.Errorf("pixel (128,1) = %d, want 1 (stride must be the clamped 72, not 128)", got)
	}
}

func TestValidateMrciHeaderRejectsWrongTileSize(t *testing.T) {
	m := mrciHeader{bytesPerPixel: 1, bitDepth: 8, width: 10, height: 10, tileWidth: 64, tileHeight: 64}
	if err := validateMrciHeader(m); err == nil || errKind(err) != KindFormat {
		t.Fatalf("expected a FORMAT error for non-128 tile size, got %v", err)
	}
}

func TestValidateMrciHeaderRejectsOversizeRaster(t *testing.T) {
	m := mrciHeader{bytesPerPixel: 1, bitDepth: 8, width: maxWidth + 1, height: 100, tileWidth: tileWidth, tileHeight: tileHeight}
	if err := validateMrciHeader(m); err == nil || errKind(err) != KindFormat {
		t.Fatalf("expected a FORMAT error for oversize raster, got %v", err)
	}
}

func TestValidateMrciHeaderAcceptsMaxDimensions(t *testing.T) {
	m := mrciHeader{bytesPerPixel: 1, bitDepth: 8, width: maxWidth, height: maxHeight, tileWidth: tileWidth, tileHeight: tileHeight}
	if err := validateMrciHeader(m); err != nil {
		t.Errorf("2048x2048 should be accepted: %v", err)
	}
}

func TestTilesXY(t *testing.T) {
	m := mrciHeader{width: 300, height: 128}
	if got := m.tilesX(); got != 3 {
		t.Errorf("tilesX() = %d, want 3", got)
	}
	if got := m.tilesY(); got != 1 {
		t.Errorf("tilesY() = %d, want 1", got)
	}
}
