package cspace

import (
	"github.com/paulmach/orb"

	"github.com/MaastrichtU-BISS/roadmap-planner/internal/geometry"
)

// Default workspace extents shared by both space variants.
const (
	DefaultWidth  = 400.0
	DefaultHeight = 225.0
)

// DefaultRobotRadius is the disk radius used when none is given.
const DefaultRobotRadius = 2.0

// PointRobot is a disk-shaped robot translating in the plane. Its
// configuration is the disk center (x, y); the radius is the start circle's.
type PointRobot struct {
	start     geometry.Circle
	finish    geometry.Circle
	width     float64
	height    float64
	obstacles *ObstacleSet
}

var _ Space = (*PointRobot)(nil)

// NewPointRobot builds a point robot space over the default workspace.
func NewPointRobot(start, finish geometry.Circle) *PointRobot {
	return &PointRobot{
		start:     start,
		finish:    finish,
		width:     DefaultWidth,
		height:    DefaultHeight,
		obstacles: &ObstacleSet{},
	}
}

// Dim implements Space.
func (p *PointRobot) Dim() int { return 2 }

// Bounds implements Space.
func (p *PointRobot) Bounds() []Interval {
	return []Interval{{0, p.width}, {0, p.height}}
}

// FreeSpaceMeasure is the area of the bounding rectangle.
func (p *PointRobot) FreeSpaceMeasure() float64 {
	return p.width * p.height
}

// Obstacles implements Space.
func (p *PointRobot) Obstacles() *ObstacleSet { return p.obstacles }

// Radius returns the robot disk radius.
func (p *PointRobot) Radius() float64 { return p.start.Radius }

// StartCircle returns the start disk.
func (p *PointRobot) StartCircle() geometry.Circle { return p.start }

// FinishCircle returns the finish disk.
func (p *PointRobot) FinishCircle() geometry.Circle { return p.finish }

// Start implements Space.
func (p *PointRobot) Start() Config {
	return Config{p.start.Center[0], p.start.Center[1]}
}

// Finish implements Space.
func (p *PointRobot) Finish() Config {
	return Config{p.finish.Center[0], p.finish.Center[1]}
}

// Valid reports whether the robot disk placed at q overlaps no obstacle.
func (p *PointRobot) Valid(q Config) bool {
	mustDim(q, 2)
	return !p.obstacles.Overlaps(geometry.Circle{Center: toPoint(q), Radius: p.Radius()})
}

// ValidEdge reports whether the disk can translate from q1 to q2 without
// touching an obstacle, testing the swept quadrilateral and both end disks.
func (p *PointRobot) ValidEdge(q1, q2 Config) bool {
	mustDim(q1, 2)
	mustDim(q2, 2)

	a, b := toPoint(q1), toPoint(q2)
	for _, o := range p.obstacles.circles {
		if geometry.CircleSweepIntersect(o, a, b, p.Radius()) {
			return false
		}
	}
	return true
}

func toPoint(q Config) orb.Point {
	return orb.Point{q[0], q[1]}
}
