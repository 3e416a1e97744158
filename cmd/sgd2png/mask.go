// SPDX-License-Identifier: MIT

package main

import (
	"math"
	"sort"
)

// Mask fill levels. calc_set_bounds_r and render_mask_r in sgd.c work
// in terms of three cairo colors; we keep the same three levels here.
// colorShape is cairo's 0.5 level; applySetMask only distinguishes
// zero, nonzero and the full colorLabel value.
const (
	colorHole  uint8 = 0
	colorShape uint8 = 128
	colorLabel uint8 = 255
)

// maskCanvas is a single-channel raster the same size as the base
// image, used to build one SET's shape mask before it's composited.
type maskCanvas struct {
	width, height int
	pix           []uint8
}

func newMaskCanvas(width, height int) *maskCanvas {
	return &maskCanvas{width: width, height: height, pix: make([]uint8, width*height)}
}

func (c *maskCanvas) set(x, y int, v uint8) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	c.pix[y*c.width+x] = v
}

func (c *maskCanvas) get(x, y int) uint8 {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return 0
	}
	return c.pix[y*c.width+x]
}

// polygon is a closed loop of screen-space points; the edge from the
// last point back to the first is implicit, matching cairo's
// behavior when a subpath is never explicitly closed before filling.
type polygon []point2

type edge struct {
	x1, y1, x2, y2 float64
}

func polygonEdges(polys []polygon) []edge {
	var edges []edge
	for _, p := range polys {
		n := len(p)
		if n < 2 {
			continue
		}
		for i := 0; i < n; i++ {
			a, b := p[i], p[(i+1)%n]
			if a.Y == b.Y {
				continue
			}
			edges = append(edges, edge{a.X, a.Y, b.X, b.Y})
		}
	}
	return edges
}

// fillEvenOdd rasterizes every polygon in polys as ONE combined path
// under the even-odd fill rule, with no antialiasing: a pixel is
// painted iff its center lies inside an odd number of polygon edges.
// Passing a shape together with its holes in one call is how
// CONNECTED_AREA's holes are punched out, matching cairo's
// CAIRO_FILL_RULE_EVEN_ODD over a multi-subpath path.
func (c *maskCanvas) fillEvenOdd(polys []polygon, value uint8) {
	edges := polygonEdges(polys)
	if len(edges) == 0 {
		return
	}
	minY, maxY := c.height, 0
	for _, p := range polys {
		for _, pt := range p {
			y := int(math.Floor(pt.Y))
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= c.height {
		maxY = c.height - 1
	}

	var xs []float64
	for y := minY; y <= maxY; y++ {
		scan := float64(y) + 0.5
		xs = xs[:0]
		for _, e := range edges {
			lo, hi := e.y1, e.y2
			x1, x2 := e.x1, e.x2
			if lo > hi {
				lo, hi = hi, lo
				x1, x2 = x2, x1
			}
			if scan < lo || scan >= hi {
				continue
			}
			t := (scan - e.y1) / (e.y2 - e.y1)
			xs = append(xs, e.x1+t*(e.x2-e.x1))
		}
		if len(xs) < 2 {
			continue
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			x0 := int(math.Round(xs[i]))
			x1 := int(math.Round(xs[i+1]))
			if x0 < 0 {
				x0 = 0
			}
			if x1 > c.width {
				x1 = c.width
			}
			for x := x0; x < x1; x++ {
				c.set(x, y, value)
			}
		}
	}
}

// circlePolygon approximates sgd.c's full-circle rendering of an
// ELLIPTICAL_ARC entity (cairo_arc over the full 2*pi range) as a
// many-sided polygon, since the rasterizer only knows straight edges.
func circlePolygon(center point2, radius float64) polygon {
	const segments = 64
	poly := make(polygon, segments)
	for i := 0; i < segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		poly[i] = point2{X: center.X + radius*math.Cos(theta), Y: center.Y + radius*math.Sin(theta)}
	}
	return poly
}
