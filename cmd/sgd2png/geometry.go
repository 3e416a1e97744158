// SPDX-License-Identifier: MIT

package main

import "math"

// point2 is a 2D point in SGD's stored coordinate space (y grows
// upward); screenPoint below converts it to raster space.
type point2 struct {
	X, Y float64
}

// screenPoint converts a stored SGD point to raster pixel space, where
// y grows downward from the top row. Matches sgd.c's line_to(), which
// computes (rint(x), height - rint(y)) for every vertex it emits.
func screenPoint(p point2, height int) point2 {
	return point2{X: rint(p.X), Y: float64(height) - rint(p.Y)}
}

func rint(v float64) float64 {
	return math.RoundToEven(v)
}

// bounds is an axis-aligned integer rectangle in raster pixel space,
// inclusive on both ends (matches sgd.c's bounds_t).
type bounds struct {
	minX, minY int
	maxX, maxY int
}

// emptyBounds mirrors sgd.c's EMPTY_BOUNDS sentinel: min > max so that
// any real point union makes the rectangle non-empty.
func emptyBounds() bounds {
	return bounds{minX: 9999, minY: 9999, maxX: -9999, maxY: -9999}
}

// addPoint truncates toward zero rather than rounding, matching the
// implicit float-to-int conversion sgd.c's add_point() callers rely on.
func (b *bounds) addPoint(x, y float64) {
	xi, yi := int(x), int(y)
	if xi < b.minX {
		b.minX = xi
	}
	if yi < b.minY {
		b.minY = yi
	}
	if xi > b.maxX {
		b.maxX = xi
	}
	if yi > b.maxY {
		b.maxY = yi
	}
}

func unionBounds(a, b bounds) bounds {
	return bounds{
		minX: min(a.minX, b.minX),
		minY: min(a.minY, b.minY),
		maxX: max(a.maxX, b.maxX),
		maxY: max(a.maxY, b.maxY),
	}
}

func (b bounds) isEmpty() bool {
	return b.minX > b.maxX || b.minY > b.maxY
}

func (b bounds) area() int {
	if b.isEmpty() {
		return 0
	}
	return (b.maxX - b.minX + 1) * (b.maxY - b.minY + 1)
}

// expand grows b outward by up to 75px per side, clamped so it never
// leaves [0, width) x [0, height). Matches sgd.c's expand_bounds():
// both sides of an axis expand by the same amount, the minimum of 75
// and the rectangle's distances to the two canvas edges on that axis.
func (b *bounds) expand(width, height int) {
	if b.isEmpty() {
		return
	}
	const maxExpand = 75
	mx := min(maxExpand, min(b.minX, width-b.maxX-1))
	my := min(maxExpand, min(b.minY, height-b.maxY-1))
	b.minX -= mx
	b.minY -= my
	b.maxX += mx
	b.maxY += my
}
