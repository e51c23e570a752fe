package planner

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaastrichtU-BISS/roadmap-planner/internal/cspace"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/geometry"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/roadmap"
)

func newRobot() *cspace.PointRobot {
	return cspace.NewPointRobot(
		geometry.Circle{Center: orb.Point{10, 10}, Radius: 10},
		geometry.Circle{Center: orb.Point{190, 190}, Radius: 10},
	)
}

// runToCompletion drives a until Step reports no more work and returns the
// number of calls made.
func runToCompletion(t *testing.T, a *Algorithm, g *roadmap.Graph) int {
	t.Helper()
	calls := 0
	for a.Step(g) {
		calls++
		require.Less(t, calls, 100000, "planner did not finish")
	}
	return calls + 1
}

func TestUnitBallVolume(t *testing.T) {
	assert.InDelta(t, 1.0, UnitBallVolume(0), 1e-12)
	assert.InDelta(t, 2.0, UnitBallVolume(1), 1e-12)
	assert.InDelta(t, math.Pi, UnitBallVolume(2), 1e-12)
	assert.InDelta(t, 4*math.Pi/3, UnitBallVolume(3), 1e-12)
	assert.InDelta(t, math.Pi*math.Pi/2, UnitBallVolume(4), 1e-12)
}

func TestBaseRadius(t *testing.T) {
	s := newRobot()
	want := 2 * math.Sqrt(1.5) * math.Sqrt(400*225/math.Pi)
	assert.InDelta(t, want, BaseRadius(s), 1e-9)

	a := New(WithRadiusMultiplier(0.5))
	assert.InDelta(t, want/2, a.ConnectionRadius(s), 1e-9)
	assert.Equal(t, Uninitialized, a.State(), "ConnectionRadius does not change state")

	fixed := New(WithFixedRadius(12))
	assert.Equal(t, 12.0, fixed.ConnectionRadius(s))
}

func TestStateMachine(t *testing.T) {
	s := newRobot()
	a := New(WithPoints(50), WithRadiusMultiplier(0.1))

	g := roadmap.New(2)
	assert.False(t, a.Step(g), "uninitialized algorithm has no work")

	g = a.Initialize(s)
	assert.Equal(t, Sampling, a.State())
	assert.Equal(t, 0, g.Len())

	assert.True(t, a.Step(g))
	assert.Equal(t, 50, g.Len())
	assert.Equal(t, 0, g.EdgeCount())
	assert.Equal(t, Connecting, a.State())
	assert.Equal(t, 0, a.Cursor())

	assert.True(t, a.Step(g))
	assert.Equal(t, 1, a.Cursor())

	for a.Step(g) {
		assert.Equal(t, Connecting, a.State())
	}
	assert.Equal(t, Done, a.State())
	assert.Equal(t, 50, a.Cursor())
	assert.False(t, a.Step(g))
	assert.Equal(t, 50, g.Len())
}

func TestInitializeResets(t *testing.T) {
	s := newRobot()
	a := New(WithPoints(20))
	g := a.Initialize(s)
	runToCompletion(t, a, g)
	require.Equal(t, Done, a.State())

	g2 := a.Initialize(s)
	assert.Equal(t, Sampling, a.State())
	assert.Equal(t, 0, a.Cursor())
	assert.Equal(t, 0, g2.Len())
}

func TestStepCount(t *testing.T) {
	a := New(WithPoints(30))
	g := a.Initialize(newRobot())
	// one sampling call, then one call per vertex
	assert.Equal(t, 31, runToCompletion(t, a, g))
}

func TestDeterministicRoadmap(t *testing.T) {
	build := func() *roadmap.Graph {
		a := New(WithPoints(60), WithRadiusMultiplier(0.3), WithSeed(99))
		s := newRobot()
		s.Obstacles().Add(geometry.Circle{Center: orb.Point{200, 110}, Radius: 40})
		g := a.Initialize(s)
		runToCompletion(t, a, g)
		return g
	}

	g1, g2 := build(), build()
	require.Equal(t, g1.Len(), g2.Len())
	for i := 0; i < g1.Len(); i++ {
		assert.Equal(t, g1.Vertex(i), g2.Vertex(i))
	}
	assert.Equal(t, g1.Edges(), g2.Edges())
}

func TestEdgesRespectRadiusAndValidity(t *testing.T) {
	s := newRobot()
	s.Obstacles().Add(geometry.Circle{Center: orb.Point{200, 110}, Radius: 50})
	s.Obstacles().Add(geometry.Circle{Center: orb.Point{80, 170}, Radius: 25})

	a := New(WithPoints(120), WithRadiusMultiplier(0.25), WithVariant(SPRM))
	g := a.Initialize(s)
	runToCompletion(t, a, g)

	r2 := a.Radius() * a.Radius()
	for _, e := range g.Edges() {
		assert.Less(t, e[0], e[1])
		assert.LessOrEqual(t, roadmap.DistanceSquared(g.Vertex(e[0]), g.Vertex(e[1])), r2)
		assert.True(t, s.ValidEdge(g.Vertex(e[0]), g.Vertex(e[1])))
	}

	// every radius-qualified valid pair is connected under sPRM
	edges := map[[2]int]bool{}
	for _, e := range g.Edges() {
		edges[e] = true
	}
	for i := 0; i < g.Len(); i++ {
		for j := i + 1; j < g.Len(); j++ {
			if roadmap.DistanceSquared(g.Vertex(i), g.Vertex(j)) <= r2 && s.ValidEdge(g.Vertex(i), g.Vertex(j)) {
				assert.True(t, edges[[2]int{i, j}], "missing edge (%d, %d)", i, j)
			}
		}
	}
}

func TestEncircledStartNeverSampled(t *testing.T) {
	s := newRobot()
	blocker := geometry.Circle{Center: orb.Point{10, 10}, Radius: 40}
	s.Obstacles().Add(blocker)
	require.False(t, s.Valid(s.Start()))

	a := New(WithPoints(200))
	g := a.Initialize(s)
	runToCompletion(t, a, g)

	for i := 0; i < g.Len(); i++ {
		v := g.Vertex(i)
		d := math.Hypot(v[0]-blocker.Center[0], v[1]-blocker.Center[1])
		assert.GreaterOrEqual(t, d, blocker.Radius+s.Radius())
	}
}

func TestConnectionFilterOnlyForPRM(t *testing.T) {
	reject := func(*roadmap.Graph, int, int) bool { return false }

	prm := New(WithPoints(40), WithRadiusMultiplier(0.5), WithConnectionFilter(reject))
	g := prm.Initialize(newRobot())
	runToCompletion(t, prm, g)
	assert.Equal(t, 0, g.EdgeCount())

	sprm := New(WithPoints(40), WithRadiusMultiplier(0.5), WithConnectionFilter(reject), WithVariant(SPRM))
	g = sprm.Initialize(newRobot())
	runToCompletion(t, sprm, g)
	assert.Greater(t, g.EdgeCount(), 0)
}

func TestPRMAndSPRMAgreeWithoutFilter(t *testing.T) {
	build := func(v Variant) *roadmap.Graph {
		a := New(WithPoints(50), WithRadiusMultiplier(0.3), WithVariant(v))
		g := a.Initialize(newRobot())
		runToCompletion(t, a, g)
		return g
	}
	assert.Equal(t, build(PRM).Edges(), build(SPRM).Edges())
}

func TestPlanarArmRoadmap(t *testing.T) {
	arm := cspace.NewUniformPlanarArm(3, 40)
	arm.Obstacles().Add(geometry.Circle{Center: orb.Point{260, 112}, Radius: 10})

	a := New(WithPoints(40), WithRadiusMultiplier(0.5))
	g := a.Initialize(arm)
	assert.Equal(t, 3, g.Dim())
	runToCompletion(t, a, g)

	assert.Equal(t, 40, g.Len())
	for i := 0; i < g.Len(); i++ {
		assert.True(t, arm.Valid(g.Vertex(i)))
		for k, b := range arm.Bounds() {
			assert.GreaterOrEqual(t, g.Vertex(i)[k], b.Low)
			assert.Less(t, g.Vertex(i)[k], b.High)
		}
	}
}

func TestStepDimensionMismatchPanics(t *testing.T) {
	a := New()
	a.Initialize(newRobot())
	assert.Panics(t, func() { a.Step(roadmap.New(3)) })
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("sprm")
	require.NoError(t, err)
	assert.Equal(t, SPRM, v)
	v, err = ParseVariant("PRM")
	require.NoError(t, err)
	assert.Equal(t, PRM, v)
	_, err = ParseVariant("rrt")
	assert.Error(t, err)
	assert.Equal(t, "sprm", SPRM.String())
	assert.Equal(t, "connecting", Connecting.String())
}
