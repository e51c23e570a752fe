// Package geometry holds the planar collision primitives used by the
// configuration spaces: circles, segments and triangles.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Circle is a disk given by its center and radius.
type Circle struct {
	Center orb.Point `json:"center"`
	Radius float64   `json:"radius"`
}

// Segment represents a line segment between two points.
type Segment struct {
	P1, P2 orb.Point
}

// Triangle is three points in any winding order.
type Triangle [3]orb.Point

// Len returns the Euclidean length of the segment.
func (s Segment) Len() float64 {
	return planar.Distance(s.P1, s.P2)
}

// CirclesIntersect reports whether two disks overlap. Touching disks do not
// overlap.
func CirclesIntersect(a, b Circle) bool {
	sum := a.Radius + b.Radius
	return planar.DistanceSquared(a.Center, b.Center) < sum*sum
}

// CircleSegmentIntersect reports whether the segment passes through the
// interior of the disk. A zero-length segment is tested as a point.
func CircleSegmentIntersect(c Circle, s Segment) bool {
	return planar.DistanceFromSegmentSquared(s.P1, s.P2, c.Center) < c.Radius*c.Radius
}

// CircleTriangleIntersect reports whether the disk overlaps the triangle,
// either by containing part of an edge or by lying inside it.
func CircleTriangleIntersect(c Circle, t Triangle) bool {
	for i := 0; i < 3; i++ {
		if CircleSegmentIntersect(c, Segment{P1: t[i], P2: t[(i+1)%3]}) {
			return true
		}
	}

	ring := orb.Ring{t[0], t[1], t[2], t[0]}
	return planar.RingContains(ring, c.Center)
}

// SweepTriangles returns the two triangles covering the rectangle swept by a
// disk of radius r moving from a to b. ok is false when a == b, in which case
// the sweep has no area beyond the disk itself.
func SweepTriangles(a, b orb.Point, r float64) (t1, t2 Triangle, ok bool) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	l := math.Hypot(dx, dy)
	if l == 0 {
		return t1, t2, false
	}

	// unit normal scaled to the radius
	nx, ny := -dy/l*r, dx/l*r

	a1 := orb.Point{a[0] + nx, a[1] + ny}
	a2 := orb.Point{a[0] - nx, a[1] - ny}
	b1 := orb.Point{b[0] + nx, b[1] + ny}
	b2 := orb.Point{b[0] - nx, b[1] - ny}

	return Triangle{a1, b1, b2}, Triangle{a1, b2, a2}, true
}

// CircleSweepIntersect reports whether obstacle o overlaps the region swept by
// a disk of radius r moving in a straight line from a to b.
func CircleSweepIntersect(o Circle, a, b orb.Point, r float64) bool {
	if CirclesIntersect(o, Circle{Center: a, Radius: r}) ||
		CirclesIntersect(o, Circle{Center: b, Radius: r}) {
		return true
	}

	t1, t2, ok := SweepTriangles(a, b, r)
	if !ok {
		return false
	}
	return CircleTriangleIntersect(o, t1) || CircleTriangleIntersect(o, t2)
}
