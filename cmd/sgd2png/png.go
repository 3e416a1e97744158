// SPDX-License-Identifier: MIT

package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
)

// cropImage extracts the pixels inside b from a full-width indexed
// plane, matching write_crop()'s row_pointers offset trick without
// needing an actual second copy of the full image.
func cropImage(data []uint8, srcWidth int, b bounds) []uint8 {
	w := b.maxX - b.minX + 1
	h := b.maxY - b.minY + 1
	out := make([]uint8, w*h)
	for row := 0; row < h; row++ {
		srcOff := (b.minY+row)*srcWidth + b.minX
		copy(out[row*w:(row+1)*w], data[srcOff:srcOff+w])
	}
	return out
}

// writeIndexedPNG encodes an indexed-color raster as a PNG file,
// creating any missing output directories first (mkpath in sgd.c).
// compressionLevel follows Go's image/png convention:
// png.DefaultCompression (0) means "use the library default", which is
// what the original's -1 Z_DEFAULT_COMPRESSION sentinel for "flag not
// given" maps to (see resolveCompressionLevel).
func writeIndexedPNG(path string, data []uint8, width, height int, pal color.Palette, compressionLevel png.CompressionLevel) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return wrapErr(KindIO, err, "creating output directory for %s", path)
	}

	img := image.NewPaletted(image.Rect(0, 0, width, height), pal)
	copy(img.Pix, data)

	f, err := os.Create(path)
	if err != nil {
		return wrapErr(KindIO, err, "creating %s", path)
	}

	enc := &png.Encoder{CompressionLevel: compressionLevel}
	if err := enc.Encode(f, img); err != nil {
		f.Close()
		return wrapErr(KindIO, err, "writing %s", path)
	}
	if err := f.Close(); err != nil {
		return wrapErr(KindIO, err, "closing %s", path)
	}
	return nil
}
