// SPDX-License-Identifier: MIT

package main

import "testing"

func TestBuildBaseImagePrefersTileWhereUninked(t *testing.T) {
	const w, h = 2, 1
	plane := &rasterPlane{width: w, height: h, indices: []uint8{3, 5}}
	colorMap := []uint8{0, 1, 2, 3, 4, 5, 6, 7}

	mask := newMaskCanvas(w, h)
	mask.set(0, 0, 255) // fully uninked: base image takes the tile color
	mask.set(1, 0, 128) // partially inked: base image takes the mask's own ramp

	out := buildBaseImage(plane, colorMap, mask)
	if out[0] != colorMap[3] {
		t.Errorf("uninked pixel = %d, want tile color %d", out[0], colorMap[3])
	}
	if out[1] != 128>>5 {
		t.Errorf("inked pixel = %d, want %d", out[1], 128>>5)
	}
}

func TestApplySetMaskSkipsPlainWhiteUnlessFullLabel(t *testing.T) {
	const w, h = 3, 1
	base := []uint8{palWhite, palWhite, 2}

	mask := newMaskCanvas(w, h)
	mask.set(0, 0, 128) // shape alpha over white background: must NOT be highlighted
	mask.set(1, 0, 255) // full label alpha over white background: must be highlighted
	mask.set(2, 0, 128) // shape alpha over a non-white color: must be highlighted

	out := applySetMask(base, mask, w, h)
	if out[0] != palWhite {
		t.Errorf("pixel 0 = %d, want untouched %d", out[0], palWhite)
	}
	if out[1] != palWhite|8 {
		t.Errorf("pixel 1 = %d, want %d", out[1], palWhite|8)
	}
	if out[2] != 2|8 {
		t.Errorf("pixel 2 = %d, want %d", out[2], 2|8)
	}
}

func TestApplySetMaskLeavesUnmaskedPixelsAlone(t *testing.T) {
	const w, h = 2, 1
	base := []uint8{4, 5}
	mask := newMaskCanvas(w, h) // all zero: nothing should change

	out := applySetMask(base, mask, w, h)
	if out[0] != 4 || out[1] != 5 {
		t.Errorf("applySetMask modified pixels with zero mask: %v", out)
	}
}
