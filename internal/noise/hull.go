package noise

import (
	"math"
	"sort"

	"github.com/photonworks/lampnoise/internal/catalog"
)

// HullNoise computes the per-window noise magnitude: the maximum
// perpendicular distance from any convex-hull vertex to the baseline
// connecting the window's first and last time-ordered samples. The baseline
// detrends the linear intensity drift expected from lamp decay, and the
// point of maximum deviation from any line always lies on the hull, so
// restricting the search to hull vertices loses nothing.
//
// Returns 0 for fewer than 3 points or a fully colinear window.
func HullNoise(samples []catalog.Sample) float64 {
	if len(samples) < 3 {
		return 0
	}

	// Instrument values carry ~2 decimals of real precision; rounding
	// first keeps the metric stable across export formats.
	pts := make([]point, len(samples))
	for i, s := range samples {
		pts[i] = point{x: round2(s.Time), y: round2(s.Value)}
	}

	hull := convexHull(pts)
	if len(hull) < 3 {
		return 0
	}

	first := pts[0]
	last := pts[len(pts)-1]

	var maxDist float64
	for _, v := range hull {
		d := perpendicularDistance(v, first, last)
		if d > maxDist {
			maxDist = d
		}
	}
	return maxDist
}

type point struct {
	x, y float64
}

// perpendicularDistance measures how far p sits from the line through a and
// b. A degenerate baseline (a == b) collapses to point distance.
func perpendicularDistance(p, a, b point) float64 {
	dx := b.x - a.x
	dy := b.y - a.y
	norm := math.Hypot(dx, dy)
	if norm < 1e-12 {
		return math.Hypot(p.x-a.x, p.y-a.y)
	}
	return math.Abs(dx*(p.y-a.y)-dy*(p.x-a.x)) / norm
}

// convexHull builds the hull with Andrew's monotone chain. The result is in
// counter-clockwise order without the closing vertex; colinear input
// collapses to fewer than 3 vertices.
func convexHull(input []point) []point {
	pts := make([]point, len(input))
	copy(pts, input)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].x != pts[j].x {
			return pts[i].x < pts[j].x
		}
		return pts[i].y < pts[j].y
	})

	// Drop duplicates so they cannot wedge into the chain.
	uniq := pts[:0]
	for i, p := range pts {
		if i == 0 || p != pts[i-1] {
			uniq = append(uniq, p)
		}
	}
	pts = uniq

	n := len(pts)
	if n < 3 {
		return pts
	}

	hull := make([]point, 0, 2*n)

	// Lower chain
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	// Upper chain
	lower := len(hull) + 1
	for i := n - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	return hull[:len(hull)-1]
}

// cross returns the z-component of (b-a) x (c-a); positive means the turn
// a->b->c is counter-clockwise.
func cross(a, b, c point) float64 {
	return (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
