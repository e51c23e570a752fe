package geometry

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestCirclesIntersect(t *testing.T) {
	cases := []struct {
		name string
		a, b Circle
		want bool
	}{
		{"overlap", Circle{orb.Point{0, 0}, 2}, Circle{orb.Point{3, 0}, 2}, true},
		{"touching", Circle{orb.Point{0, 0}, 1}, Circle{orb.Point{2, 0}, 1}, false},
		{"apart", Circle{orb.Point{0, 0}, 1}, Circle{orb.Point{5, 5}, 1}, false},
		{"contained", Circle{orb.Point{0, 0}, 10}, Circle{orb.Point{1, 1}, 1}, true},
		{"zero radius inside", Circle{orb.Point{0, 0}, 0}, Circle{orb.Point{0.5, 0}, 1}, true},
		{"both zero radius", Circle{orb.Point{0, 0}, 0}, Circle{orb.Point{0, 0}, 0}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, CirclesIntersect(c.a, c.b))
			assert.Equal(t, c.want, CirclesIntersect(c.b, c.a))
		})
	}
}

func TestCircleSegmentIntersect(t *testing.T) {
	c := Circle{Center: orb.Point{0, 0}, Radius: 1}

	assert.True(t, CircleSegmentIntersect(c, Segment{orb.Point{-5, 0}, orb.Point{5, 0}}))
	assert.True(t, CircleSegmentIntersect(c, Segment{orb.Point{-5, 0.5}, orb.Point{5, 0.5}}))
	assert.False(t, CircleSegmentIntersect(c, Segment{orb.Point{-5, 2}, orb.Point{5, 2}}))

	// closest point is an endpoint, not the projection onto the line
	assert.False(t, CircleSegmentIntersect(c, Segment{orb.Point{2, 0}, orb.Point{5, 0}}))
	assert.True(t, CircleSegmentIntersect(c, Segment{orb.Point{0.5, 0}, orb.Point{5, 0}}))

	// zero-length segment
	assert.True(t, CircleSegmentIntersect(c, Segment{orb.Point{0.2, 0.2}, orb.Point{0.2, 0.2}}))
	assert.False(t, CircleSegmentIntersect(c, Segment{orb.Point{3, 3}, orb.Point{3, 3}}))

	// zero radius never overlaps
	assert.False(t, CircleSegmentIntersect(Circle{Center: orb.Point{0, 0}}, Segment{orb.Point{-1, 0}, orb.Point{1, 0}}))
}

func TestCircleTriangleIntersect(t *testing.T) {
	tri := Triangle{{0, 0}, {10, 0}, {0, 10}}

	assert.True(t, CircleTriangleIntersect(Circle{orb.Point{2, 2}, 0.5}, tri), "inside")
	assert.True(t, CircleTriangleIntersect(Circle{orb.Point{5, -0.5}, 1}, tri), "crosses edge")
	assert.False(t, CircleTriangleIntersect(Circle{orb.Point{10, 10}, 1}, tri), "outside")

	// winding should not matter
	rev := Triangle{tri[2], tri[1], tri[0]}
	assert.True(t, CircleTriangleIntersect(Circle{orb.Point{2, 2}, 0.5}, rev))

	// degenerate triangle collapses to a segment
	flat := Triangle{{0, 0}, {5, 0}, {10, 0}}
	assert.True(t, CircleTriangleIntersect(Circle{orb.Point{5, 0.5}, 1}, flat))
	assert.False(t, CircleTriangleIntersect(Circle{orb.Point{5, 3}, 1}, flat))
}

func TestCircleSweepIntersect(t *testing.T) {
	a, b := orb.Point{0, 0}, orb.Point{100, 0}

	// obstacle sits in the middle of the corridor, away from both end disks
	assert.True(t, CircleSweepIntersect(Circle{orb.Point{50, 3}, 1}, a, b, 5))
	assert.False(t, CircleSweepIntersect(Circle{orb.Point{50, 10}, 1}, a, b, 5))

	// end disk overlap
	assert.True(t, CircleSweepIntersect(Circle{orb.Point{-4, 0}, 1}, a, b, 5))

	// zero-length sweep is a disk test
	assert.True(t, CircleSweepIntersect(Circle{orb.Point{3, 0}, 1}, a, a, 5))
	assert.False(t, CircleSweepIntersect(Circle{orb.Point{30, 0}, 1}, a, a, 5))
}

func TestSweepTriangles(t *testing.T) {
	_, _, ok := SweepTriangles(orb.Point{1, 1}, orb.Point{1, 1}, 2)
	assert.False(t, ok)

	t1, t2, ok := SweepTriangles(orb.Point{0, 0}, orb.Point{10, 0}, 2)
	assert.True(t, ok)
	assert.InDelta(t, 2.0, t1[0][1], 1e-12)
	assert.InDelta(t, -2.0, t2[2][1], 1e-12)
}
