// SPDX-License-Identifier: MIT

package main

import (
	"os"

	"github.com/fogleman/gg"
)

// candidateFontPaths lists the usual locations for a bold sans-serif
// face across the platforms sgd2png actually ships on; the first one
// found is used for TEXT_LINE rendering. Matches sgd.c's fixed choice
// of "sans-serif" bold at 18pt, just resolved to a concrete file since
// Go has no fontconfig integration of its own.
var candidateFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
	"/Library/Fonts/Arial Bold.ttf",
}

const labelFontSize = 18.0

func loadLabelFont(dc *gg.Context) {
	for _, path := range candidateFontPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := dc.LoadFontFace(path, labelFontSize); err == nil {
			return
		}
	}
}

// buildLabelMask renders every unk3-flagged POLYLINE2D and TEXT_LINE2D
// entry into an antialiased single-channel mask, matching sgd.c's
// render_labels(): the canvas starts fully at 255 ("no ink") and ink
// is drawn in black, so AA edges fall out as a ramp between the two
// exactly as cairo's CAIRO_OPERATOR_SOURCE compositing would produce.
func buildLabelMask(d *directory, width, height int) *maskCanvas {
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	loadLabelFont(dc)

	for _, e := range d.entries {
		if !e.hdr.hasLabel() {
			continue
		}
		switch e.hdr.typ {
		case typePolyline2D:
			pts, err := polylineScreenPoints(d, e, false, height)
			if err != nil || len(pts) < 2 {
				continue
			}
			dc.NewSubPath()
			dc.MoveTo(pts[0].X, pts[0].Y)
			for _, p := range pts[1:] {
				dc.LineTo(p.X, p.Y)
			}
			dc.Stroke()
		case typeTextLine2D:
			tl := e.textLine
			dc.DrawString(tl.text, tl.pos.X, float64(height)-tl.pos.Y)
		}
	}

	img := dc.Image()
	canvas := newMaskCanvas(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			canvas.pix[y*width+x] = uint8(r >> 8)
		}
	}
	return canvas
}

// buildBaseImage composites the decoded raster tiles with the label
// mask into the final 8-color indexed image: a fully uninked pixel
// (255) takes the tile's remapped color, anything else takes the
// mask's own coverage value, rescaled into the low 3 palette bits.
// Matches render_tiles()'s `*msk == 255 ? colormap[src] : *msk >> 5`.
func buildBaseImage(plane *rasterPlane, colorMap []uint8, labelMask *maskCanvas) []uint8 {
	width, height := plane.width, plane.height
	out := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if m := labelMask.get(x, y); m == 255 {
				out[i] = colorMap[plane.indices[i]]
			} else {
				out[i] = m >> 5
			}
		}
	}
	return out
}

// applySetMask highlights one SET's shape mask over the base image by
// switching affected pixels into the label-variant half of the
// 16-color output palette (bit 3), skipping plain white background
// unless the hit came from a full COLOR_LABEL fill. Matches
// apply_mask()'s `if (*msk && (*dst != PAL_WHITE || *msk == 255))`.
func applySetMask(base []uint8, canvas *maskCanvas, width, height int) []uint8 {
	out := make([]uint8, len(base))
	copy(out, base)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			m := canvas.get(x, y)
			if m != 0 && (out[i] != palWhite || m == 255) {
				out[i] |= 8
			}
		}
	}
	return out
}
