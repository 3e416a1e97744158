// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// maxFileSize bounds how much decompressed data loadFile will accept,
// protecting against a gzip bomb masquerading as an SGD container.
// A full-resolution raster plane is the largest legitimate payload;
// double it for headroom and call anything past that a LIMIT error.
const maxFileSize = 2 * maxBase

// looksGzipped reports whether the first bytes of buf are a gzip
// member header with DEFLATE compression and none of the reserved
// flag bits (0xe0) set; the defined flags (FNAME, FEXTRA, ...) may be.
// Matches sgd.c's uncompress_zgd() magic check, `(hdr & 0xe0ffffff)
// == 0x00088b1f` read as a little-endian uint32.
func looksGzipped(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x1f && buf[1] == 0x8b && buf[2] == 0x08 && buf[3]&0xe0 == 0
}

// loadFile reads an SGD container from disk, transparently inflating
// it first if it's gzip-framed (the ".zgd" convention).
func loadFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapErr(KindIO, err, "reading %s", path)
	}

	if !looksGzipped(raw) {
		if len(raw) > maxFileSize {
			return nil, newErr(KindLimit, "%s is %d bytes, exceeds limit of %d", path, len(raw), maxFileSize)
		}
		return checkMinSize(path, raw)
	}

	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, wrapErr(KindFormat, err, "opening gzip stream in %s", path)
	}
	defer zr.Close()

	limited := io.LimitReader(zr, int64(maxFileSize)+1)
	out, err := io.ReadAll(limited)
	if err != nil {
		return nil, wrapErr(KindIO, err, "inflating %s", path)
	}
	if len(out) > maxFileSize {
		return nil, newErr(KindLimit, "%s inflates past the limit of %d bytes", path, maxFileSize)
	}
	return checkMinSize(path, out)
}

// checkMinSize enforces the Loader's "TOO_SMALL" rule (spec.md §4.1):
// a decoded buffer shorter than sgdOffset can't possibly hold even the
// fixed file header, so there's no point handing it to the validator.
func checkMinSize(path string, buf []byte) ([]byte, error) {
	if len(buf) < sgdOffset {
		return nil, newErr(KindLimit, "%s is %d bytes, shorter than the minimum header size %d", path, len(buf), sgdOffset)
	}
	return buf, nil
}
