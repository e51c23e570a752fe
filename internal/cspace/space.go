// Package cspace defines configuration spaces: the validity oracle the roadmap
// planner samples and connects against. Two variants exist, a disk robot in the
// plane and an open planar arm.
package cspace

import (
	"fmt"

	"github.com/MaastrichtU-BISS/roadmap-planner/internal/geometry"
)

// Config is a point in a configuration space, one value per degree of freedom.
type Config []float64

// Clone returns an independent copy of q.
func (q Config) Clone() Config {
	if q == nil {
		return nil
	}
	out := make(Config, len(q))
	copy(out, q)
	return out
}

// Interval is the half-open range [Low, High) of one dimension.
type Interval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Width returns High - Low.
func (i Interval) Width() float64 {
	return i.High - i.Low
}

// Space is a validity oracle over configurations of fixed dimension.
//
// Valid and ValidEdge read the obstacle set as it is at call time; pending
// obstacle moves must be applied with ObstacleSet.ApplyTransforms before a
// planning pass.
type Space interface {
	// Dim is the number of degrees of freedom. It never changes.
	Dim() int
	// Bounds returns one interval per dimension.
	Bounds() []Interval
	// FreeSpaceMeasure is the measure used to calibrate the connection radius.
	FreeSpaceMeasure() float64
	Obstacles() *ObstacleSet
	Valid(q Config) bool
	ValidEdge(q1, q2 Config) bool
	// Start and Finish are the configurations a path query connects.
	Start() Config
	Finish() Config
}

// mustDim panics when q does not have dimension d. A mismatch is a
// programming error, never a recoverable condition.
func mustDim(q Config, d int) {
	if len(q) != d {
		panic(fmt.Sprintf("cspace: configuration has dimension %d, space has %d", len(q), d))
	}
}

// segmentBlocked reports whether seg passes through any committed obstacle.
func segmentBlocked(obstacles *ObstacleSet, seg geometry.Segment) bool {
	for _, o := range obstacles.circles {
		if geometry.CircleSegmentIntersect(o, seg) {
			return true
		}
	}
	return false
}
