package cspace

import (
	"math"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/floats"

	"github.com/MaastrichtU-BISS/roadmap-planner/internal/geometry"
)

// DefaultLinkLength is the length given to every link of a new arm.
const DefaultLinkLength = 50.0

// PlanarArm is an open serial chain of revolute joints anchored at a fixed
// root. Joint i's angle is relative to link i-1.
type PlanarArm struct {
	root      orb.Point
	links     []float64
	limits    []Interval
	start     Config
	finish    Config
	width     float64
	height    float64
	obstacles *ObstacleSet
}

var _ Space = (*PlanarArm)(nil)

// NewPlanarArm builds an arm with the given link lengths. Joints are limited to
// [-π/2, π/2), the start pose is straight and the finish pose bends every
// joint by π/4.
func NewPlanarArm(links []float64) *PlanarArm {
	n := len(links)
	a := &PlanarArm{
		root:      orb.Point{DefaultWidth / 2, DefaultHeight / 2},
		links:     append([]float64(nil), links...),
		limits:    make([]Interval, n),
		start:     make(Config, n),
		finish:    make(Config, n),
		width:     DefaultWidth,
		height:    DefaultHeight,
		obstacles: &ObstacleSet{},
	}
	for i := range a.limits {
		a.limits[i] = Interval{Low: -math.Pi / 2, High: math.Pi / 2}
		a.finish[i] = math.Pi / 4
	}
	return a
}

// NewUniformPlanarArm builds an arm of n links of equal length.
func NewUniformPlanarArm(n int, length float64) *PlanarArm {
	links := make([]float64, n)
	for i := range links {
		links[i] = length
	}
	return NewPlanarArm(links)
}

// SetPoses replaces the start and finish joint vectors.
func (a *PlanarArm) SetPoses(start, finish Config) {
	mustDim(start, a.Dim())
	mustDim(finish, a.Dim())
	a.start = start.Clone()
	a.finish = finish.Clone()
}

// Dim implements Space.
func (a *PlanarArm) Dim() int { return len(a.links) }

// Root returns the fixed anchor of the first joint.
func (a *PlanarArm) Root() orb.Point { return a.root }

// LinkLengths returns a copy of the link lengths.
func (a *PlanarArm) LinkLengths() []float64 {
	return append([]float64(nil), a.links...)
}

// Bounds returns the joint limits.
func (a *PlanarArm) Bounds() []Interval {
	return append([]Interval(nil), a.limits...)
}

// FreeSpaceMeasure is the product of joint ranges, a measure of angle space
// rather than of the workspace.
func (a *PlanarArm) FreeSpaceMeasure() float64 {
	m := 1.0
	for _, l := range a.limits {
		m *= l.Width()
	}
	return m
}

// Obstacles implements Space.
func (a *PlanarArm) Obstacles() *ObstacleSet { return a.obstacles }

// Start implements Space.
func (a *PlanarArm) Start() Config { return a.start.Clone() }

// Finish implements Space.
func (a *PlanarArm) Finish() Config { return a.finish.Clone() }

// Links maps joint angles to the chain of link segments, root first.
func (a *PlanarArm) Links(q Config) []geometry.Segment {
	mustDim(q, a.Dim())

	segs := make([]geometry.Segment, len(a.links))
	prev := a.root
	angle := 0.0
	for i, l := range a.links {
		angle += q[i]
		next := orb.Point{prev[0] + l*math.Cos(angle), prev[1] + l*math.Sin(angle)}
		segs[i] = geometry.Segment{P1: prev, P2: next}
		prev = next
	}
	return segs
}

// EndEffector returns the tip of the last link.
func (a *PlanarArm) EndEffector(q Config) orb.Point {
	segs := a.Links(q)
	if len(segs) == 0 {
		return a.root
	}
	return segs[len(segs)-1].P2
}

// Valid reports whether no link passes through an obstacle.
func (a *PlanarArm) Valid(q Config) bool {
	for _, seg := range a.Links(q) {
		if segmentBlocked(a.obstacles, seg) {
			return false
		}
	}
	return true
}

// ValidEdge interpolates the joints from q1 to q2 in N+1 steps and checks the
// path of the end effector between consecutive steps. The rest of the body is
// not swept.
func (a *PlanarArm) ValidEdge(q1, q2 Config) bool {
	n := a.Dim()
	mustDim(q1, n)
	mustDim(q2, n)
	if n == 0 {
		return true
	}

	incr := make([]float64, n)
	floats.SubTo(incr, q2, q1)
	floats.Scale(1/float64(n+1), incr)

	cur := q1.Clone()
	prev := a.EndEffector(cur)
	for i := 0; i <= n; i++ {
		floats.Add(cur, incr)
		next := a.EndEffector(cur)
		if segmentBlocked(a.obstacles, geometry.Segment{P1: prev, P2: next}) {
			return false
		}
		prev = next
	}
	return true
}
