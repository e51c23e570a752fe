package cspace

import (
	"github.com/paulmach/orb"

	"github.com/MaastrichtU-BISS/roadmap-planner/internal/geometry"
)

// ObstacleSet is an ordered, append-only collection of circular obstacles.
//
// Editing is two-phase: Move records a translation that is only visible to the
// validity checks once ApplyTransforms commits it.
type ObstacleSet struct {
	circles []geometry.Circle
	pending []orb.Point
}

// NewObstacleSet returns a set holding the given circles in order.
func NewObstacleSet(circles ...geometry.Circle) *ObstacleSet {
	s := &ObstacleSet{}
	for _, c := range circles {
		s.Add(c)
	}
	return s
}

// Add appends c.
func (s *ObstacleSet) Add(c geometry.Circle) {
	s.circles = append(s.circles, c)
	s.pending = append(s.pending, orb.Point{})
}

// Len returns the number of obstacles.
func (s *ObstacleSet) Len() int {
	return len(s.circles)
}

// At returns the committed circle at idx.
func (s *ObstacleSet) At(idx int) geometry.Circle {
	return s.circles[idx]
}

// Circles returns a copy of the committed circles in insertion order.
func (s *ObstacleSet) Circles() []geometry.Circle {
	out := make([]geometry.Circle, len(s.circles))
	copy(out, s.circles)
	return out
}

// Move accumulates a pending translation for the obstacle at idx.
func (s *ObstacleSet) Move(idx int, delta orb.Point) {
	s.pending[idx][0] += delta[0]
	s.pending[idx][1] += delta[1]
}

// Pending reports whether any move is waiting to be applied.
func (s *ObstacleSet) Pending() bool {
	for _, p := range s.pending {
		if p != (orb.Point{}) {
			return true
		}
	}
	return false
}

// ApplyTransforms commits all pending moves.
func (s *ObstacleSet) ApplyTransforms() {
	for i, p := range s.pending {
		s.circles[i].Center[0] += p[0]
		s.circles[i].Center[1] += p[1]
		s.pending[i] = orb.Point{}
	}
}

// Overlaps reports whether c overlaps any committed obstacle.
func (s *ObstacleSet) Overlaps(c geometry.Circle) bool {
	for _, o := range s.circles {
		if geometry.CirclesIntersect(o, c) {
			return true
		}
	}
	return false
}
