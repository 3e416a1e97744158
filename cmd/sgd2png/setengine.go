// SPDX-License-Identifier: MIT

package main

import (
	"math"
	"strings"
)

// palWhite is the working-palette index of the background color;
// apply_mask in sgd.c special-cases it so a highlight never tints a
// plain white background unless the hit came from a COLOR_LABEL fill.
// Index 0 is PAL_BLACK (label ink), so white sits at index 7.
const palWhite = 7

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// polylineScreenPoints resolves one POLYLINE entity into raster-space
// vertices, prefixing/suffixing the POINT entries its point1/point2
// fields reference and reversing the whole sequence when reverse is
// set (a SIMPLE_AREA ref with a negative sign). Mirrors draw_polyline.
func polylineScreenPoints(d *directory, e *entry, reverse bool, height int) ([]point2, error) {
	pl := e.polyline
	start, end := pl.point1, pl.point2
	if reverse {
		start, end = pl.point2, pl.point1
	}

	var pts []point2
	if start != 0 {
		p, err := d.resolve(start)
		if err != nil {
			return nil, err
		}
		if p.point == nil {
			return nil, newErr(KindFormat, "point ref %d is not a POINT entry", start)
		}
		pts = append(pts, screenPoint(p.point.pos, height))
	}
	if reverse {
		for i := len(pl.points) - 1; i >= 0; i-- {
			pts = append(pts, screenPoint(pl.points[i], height))
		}
	} else {
		for _, p := range pl.points {
			pts = append(pts, screenPoint(p, height))
		}
	}
	if end != 0 {
		p, err := d.resolve(end)
		if err != nil {
			return nil, err
		}
		if p.point == nil {
			return nil, newErr(KindFormat, "point ref %d is not a POINT entry", end)
		}
		pts = append(pts, screenPoint(p.point.pos, height))
	}
	return pts, nil
}

// ellipticalArcCircle derives the center and radius sgd.c's
// calc_area_bounds/render_area_mask compute from an ELLIPTICAL_ARC's
// two control points: the first is one edge of the bounding square,
// the second's X gives the diameter.
func ellipticalArcCircle(a *ellipticalArcEntity, height int) (center point2, radius float64) {
	x := a.points[0].X
	y := float64(height) - a.points[0].Y
	r := (a.points[1].X - x) / 2
	x += r
	return point2{X: x, Y: y}, r
}

func calcPolylineBounds(b *bounds, e *entry, d *directory, height int) {
	pl := e.polyline
	if pl.point1 != 0 {
		if p1, err := d.resolve(pl.point1); err == nil && p1.point != nil {
			b.addPoint(p1.point.pos.X, float64(height)-p1.point.pos.Y)
		}
	}
	for _, p := range pl.points {
		b.addPoint(p.X, float64(height)-p.Y)
	}
	if pl.point2 != 0 {
		if p2, err := d.resolve(pl.point2); err == nil && p2.point != nil {
			b.addPoint(p2.point.pos.X, float64(height)-p2.point.pos.Y)
		}
	}
}

func calcAreaBounds(b *bounds, e *entry, d *directory, height int) {
	for _, ref := range e.simpleArea.entries {
		s, err := d.resolve(uint32(absInt32(ref)))
		if err != nil {
			continue
		}
		switch s.hdr.typ {
		case typePolyline2D:
			calcPolylineBounds(b, s, d, height)
		case typeEllipticalArc:
			if len(s.ellipticalArc.points) < 2 {
				continue
			}
			center, r := ellipticalArcCircle(s.ellipticalArc, height)
			b.addPoint(center.X-r, center.Y-r)
			b.addPoint(center.X+r, center.Y+r)
		}
	}
}

func calcEntryBounds(b *bounds, e *entry, d *directory, height int) {
	switch e.hdr.typ {
	case typeLasso2D:
		for _, p := range e.lasso.points {
			b.addPoint(p.X, float64(height)-p.Y)
		}
	case typeConnectedArea:
		for _, ref := range e.simpleArea.entries {
			s, err := d.resolve(uint32(ref))
			if err == nil && s.hdr.typ == typeSimpleArea {
				calcAreaBounds(b, s, d, height)
			}
		}
	case typeSimpleArea:
		calcAreaBounds(b, e, d, height)
	}
}

// fixupSet permanently reorders a SET's entries so that every
// (hyphenated TEXT_LINE, SIMPLE_AREA) pair is moved to the tail of
// the array, without growing it: every such pair found is spliced out
// and appended, shrinking the logical scan range by two each time.
// Matches fixup_set()'s in-place memmove exactly, including the
// re-examination of the same index after a splice (the `i--`).
func fixupSet(s *setEntity, d *directory) {
	entries := s.entries
	total := len(entries)
	n := total
	for i := 0; i < n-1; i++ {
		e, errE := d.resolve(entries[i])
		nx, errN := d.resolve(entries[i+1])
		if errE != nil || errN != nil {
			continue
		}
		if e.isTextLine() && strings.Contains(e.textLine.text, "-") && nx.hdr.typ == typeSimpleArea {
			copy(entries[i:n-2], entries[i+2:n])
			entries[n-2] = e.hdr.index
			entries[n-1] = nx.hdr.index
			n -= 2
			i--
		}
	}
}

// entryHasShape classifies an entry the way entry_has_shape() does,
// for calc_set_bounds_r's run-signature comparison: a run is
// "uniform" only if every shape-bearing member reports the same class.
func entryHasShape(e *entry, d *directory) int {
	switch e.hdr.typ {
	case typeSet:
		return 1
	case typeLasso2D:
		return 2
	case typeConnectedArea:
		return 3
	case typeSimpleArea:
		for _, ref := range e.simpleArea.entries {
			if s, err := d.resolve(uint32(absInt32(ref))); err == nil && s.hdr.typ == typePolyline2D {
				return 4
			}
		}
		return 0
	default:
		return 0
	}
}

// calcSetBounds computes one SET's label-crop bounding box. It scans
// entries in runs delimited by TEXT_LINEs (the first TEXT_LINE in the
// set is absorbed into the current run; every later one ends a run),
// classifies each run by the shape kinds it contains, and picks
// either the run with the smallest resulting area (when every run has
// the same shape signature) or the union of every run (when they
// differ) — exactly sgd.c's calc_set_bounds_r().
func calcSetBounds(b *bounds, set *entry, d *directory, height int) error {
	se := set.set
	if se.isWrapperOnly() {
		return recurseSetBounds(b, se, d, height)
	}
	fixupSet(se, d)

	minB, maxB := emptyBounds(), emptyBounds()
	minArea := math.MaxInt
	lastShape := 0
	textline := false
	entries := se.entries
	n := len(entries)

	for i := 0; i < n; i++ {
		eb := emptyBounds()
		shape := 0
		start := i

		for ; i < n; i++ {
			e, err := d.resolve(entries[i])
			if err != nil {
				return err
			}
			if e.isTextLine() {
				if textline {
					break
				}
				textline = true
				continue
			}
			calcEntryBounds(&eb, e, d, height)
			if class := entryHasShape(e, d); class != 0 {
				shape += 1 << (8 * (class - 1))
			}
		}

		if shape == 0 {
			continue
		}
		if lastShape == 0 {
			lastShape = shape
		} else if lastShape != shape {
			lastShape = -1
		}

		for j := start; j < i; j++ {
			e, err := d.resolve(entries[j])
			if err != nil {
				return err
			}
			if e.isSet() {
				if err := calcSetBounds(&eb, e, d, height); err != nil {
					return err
				}
			}
		}

		t := unionBounds(*b, eb)
		area := t.area()
		if area < minArea {
			minB = t
			minArea = area
		}
		maxB = unionBounds(maxB, t)
	}

	if lastShape == -1 {
		if !maxB.isEmpty() {
			*b = maxB
			return nil
		}
	} else if !minB.isEmpty() {
		*b = minB
		return nil
	}
	return recurseSetBounds(b, se, d, height)
}

func recurseSetBounds(b *bounds, se *setEntity, d *directory, height int) error {
	for _, idx := range se.entries {
		e, err := d.resolve(idx)
		if err != nil {
			return err
		}
		if e.isSet() {
			if err := calcSetBounds(b, e, d, height); err != nil {
				return err
			}
		}
	}
	return nil
}

// renderAreaMaskPolys builds the fill polygons for one SIMPLE_AREA's
// member polylines/arcs. sgd.c accumulates every member into ONE
// cairo path and fills it ONCE, so whichever member's color was set
// last wins for the whole area — we return that color alongside the
// polygons instead of filling per-member.
func renderAreaMaskPolys(d *directory, area *simpleAreaEntity, height int) ([]polygon, uint8, error) {
	var polys []polygon
	lastColor := colorShape
	for _, ref := range area.entries {
		s, err := d.resolve(uint32(absInt32(ref)))
		if err != nil {
			return nil, 0, err
		}
		switch s.hdr.typ {
		case typePolyline2D:
			pts, err := polylineScreenPoints(d, s, ref < 0, height)
			if err != nil {
				return nil, 0, err
			}
			polys = append(polys, polygon(pts))
			lastColor = colorShape
		case typeEllipticalArc:
			if len(s.ellipticalArc.points) < 2 {
				continue
			}
			center, r := ellipticalArcCircle(s.ellipticalArc, height)
			polys = append(polys, circlePolygon(center, r))
			lastColor = colorLabel
		}
	}
	return polys, lastColor, nil
}

func renderConnectedAreaPolys(d *directory, area *simpleAreaEntity, height int) ([]polygon, uint8, error) {
	var polys []polygon
	lastColor := colorShape
	for _, ref := range area.entries {
		s, err := d.resolve(uint32(ref))
		if err != nil {
			return nil, 0, err
		}
		if s.hdr.typ != typeSimpleArea {
			continue
		}
		p, lc, err := renderAreaMaskPolys(d, s.simpleArea, height)
		if err != nil {
			return nil, 0, err
		}
		polys = append(polys, p...)
		lastColor = lc
	}
	return polys, lastColor, nil
}

// renderMaskR paints one SET's shape mask: every LASSO/CONNECTED_AREA/
// SIMPLE_AREA member fills its own even-odd path, then every child
// SET recurses. Matches render_mask_r()'s two-pass structure.
func renderMaskR(canvas *maskCanvas, set *entry, d *directory, height int) error {
	for _, idx := range set.set.entries {
		e, err := d.resolve(idx)
		if err != nil {
			return err
		}
		switch e.hdr.typ {
		case typeLasso2D:
			pts := make([]point2, len(e.lasso.points))
			for i, p := range e.lasso.points {
				pts[i] = screenPoint(p, height)
			}
			canvas.fillEvenOdd([]polygon{pts}, colorShape)
		case typeConnectedArea:
			polys, lastColor, err := renderConnectedAreaPolys(d, e.simpleArea, height)
			if err != nil {
				return err
			}
			canvas.fillEvenOdd(polys, lastColor)
		case typeSimpleArea:
			polys, lastColor, err := renderAreaMaskPolys(d, e.simpleArea, height)
			if err != nil {
				return err
			}
			canvas.fillEvenOdd(polys, lastColor)
		}
	}
	for _, idx := range set.set.entries {
		e, err := d.resolve(idx)
		if err != nil {
			return err
		}
		if e.isSet() {
			if err := renderMaskR(canvas, e, d, height); err != nil {
				return err
			}
		}
	}
	return nil
}

func setHasEntry(se *setEntity, index uint32) bool {
	for _, e := range se.entries {
		if e == index {
			return true
		}
	}
	return false
}

// isSubsetOfAnother reports whether some other, strictly larger SET in
// the directory contains every one of set's member references —
// sgd.c skips rendering such sets on their own, since the larger set
// will draw them as part of its own mask. Matches set_is_subset().
func isSubsetOfAnother(d *directory, set *entry) bool {
	for _, other := range d.entries {
		if other == set || !other.isSet() || len(other.set.entries) <= len(set.set.entries) {
			continue
		}
		all := true
		for _, idx := range set.set.entries {
			if !setHasEntry(other.set, idx) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// finalizeBounds covers the case calc_set_bounds_r leaves empty: it
// seeds the bounds from the SIMPLE_AREA of the first adjacent pair of
// a TEXT_LINE without a '-' followed by a SIMPLE_AREA, then expands
// the result by up to 75px per side.
func finalizeBounds(b *bounds, set *entry, d *directory, width, height int) {
	if b.isEmpty() {
		entries := set.set.entries
		for i := 0; i < len(entries)-1; i++ {
			e, errE := d.resolve(entries[i])
			nx, errN := d.resolve(entries[i+1])
			if errE != nil || errN != nil {
				continue
			}
			if e.isTextLine() && !strings.Contains(e.textLine.text, "-") && nx.hdr.typ == typeSimpleArea {
				calcEntryBounds(b, nx, d, height)
				break
			}
		}
	}
	b.expand(width, height)
}
