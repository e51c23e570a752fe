// Package session holds the state of one planning session: the problem being
// solved, the roadmap under construction, the algorithm building it and the
// last path found. The host owns a Session and serializes access to it.
package session

import (
	"io"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/MaastrichtU-BISS/roadmap-planner/internal/cspace"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/geometry"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/path"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/planner"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/query"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/roadmap"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/sampler"
)

// Arm link counts accepted by NewPlanarArm.
const (
	MinArmLinks = 1
	MaxArmLinks = 12
)

var (
	// ErrNoRoadmap is returned by operations that need a roadmap before one
	// has been started.
	ErrNoRoadmap = errors.New("no roadmap has been built")
	// ErrDimensionMismatch is returned when a roadmap does not fit the problem.
	ErrDimensionMismatch = errors.New("roadmap dimension does not match the problem")
	// ErrNoObstacle is returned when an obstacle index is out of range.
	ErrNoObstacle = errors.New("no such obstacle")
)

// Params are the roadmap construction settings of a session.
type Params struct {
	Points      int
	RMulti      float64
	FixedRadius float64
	Variant     planner.Variant
	Seed        uint64
}

// DefaultParams returns the settings a new session starts with.
func DefaultParams() Params {
	return Params{
		Points:  planner.DefaultPoints,
		RMulti:  planner.DefaultRadiusMultiplier,
		Variant: planner.PRM,
		Seed:    sampler.DefaultSeed,
	}
}

// Status summarizes a session.
type Status struct {
	Dim        int
	Obstacles  int
	Building   bool
	State      planner.State
	Vertices   int
	Edges      int
	Components int
	Waypoints  int
}

// Session is the explicit context every planning operation runs against.
type Session struct {
	logger  *zap.SugaredLogger
	params  Params
	problem cspace.Space
	algo    *planner.Algorithm
	graph   *roadmap.Graph
	path    path.Path
}

// New returns a session over the default point robot problem.
func New(logger *zap.SugaredLogger, params Params) *Session {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Session{
		logger:  logger,
		params:  params,
		problem: DefaultPointRobot(),
	}
}

// DefaultPointRobot is the problem a fresh session and the "point" preset use.
func DefaultPointRobot() *cspace.PointRobot {
	return cspace.NewPointRobot(
		geometry.Circle{Center: orb.Point{10, 10}, Radius: 10},
		geometry.Circle{Center: orb.Point{200, 200}, Radius: 10},
	)
}

// Params returns the construction settings.
func (s *Session) Params() Params { return s.params }

// SetParams replaces the construction settings used by the next Build.
func (s *Session) SetParams(p Params) { s.params = p }

// Problem returns the current configuration space.
func (s *Session) Problem() cspace.Space { return s.problem }

// Graph returns the roadmap, nil before Build.
func (s *Session) Graph() *roadmap.Graph { return s.graph }

// Algorithm returns the roadmap builder, nil before Build.
func (s *Session) Algorithm() *planner.Algorithm { return s.algo }

// Path returns the last path found, empty if none.
func (s *Session) Path() path.Path { return s.path }

// SetProblem replaces the problem and drops the roadmap and path. A nil space
// is ignored.
func (s *Session) SetProblem(sp cspace.Space) {
	if sp == nil {
		return
	}
	s.problem = sp
	s.algo = nil
	s.ClearGraph()
	s.logger.Infow("problem replaced", "dim", sp.Dim(), "obstacles", sp.Obstacles().Len())
}

// NewPointRobot replaces the problem with the default point robot.
func (s *Session) NewPointRobot() {
	s.SetProblem(DefaultPointRobot())
}

// NewPlanarArm replaces the problem with an arm of the given link count.
func (s *Session) NewPlanarArm(links int) error {
	if links < MinArmLinks || links > MaxArmLinks {
		return errors.Errorf("arm link count %d outside [%d, %d]", links, MinArmLinks, MaxArmLinks)
	}
	s.SetProblem(cspace.NewUniformPlanarArm(links, cspace.DefaultLinkLength))
	return nil
}

// LoadSystem replaces the problem with one read in the system format. The
// session is unchanged when the input is malformed.
func (s *Session) LoadSystem(r io.Reader) error {
	sp, err := cspace.Load(r)
	if err != nil {
		return err
	}
	s.SetProblem(sp)
	return nil
}

// SaveSystem writes the problem in the system format.
func (s *Session) SaveSystem(w io.Writer) error {
	return cspace.Save(w, s.problem)
}

// AddObstacle appends a circle to the problem.
func (s *Session) AddObstacle(c geometry.Circle) {
	s.problem.Obstacles().Add(c)
}

// MoveObstacle records a pending translation of the obstacle at idx. It takes
// effect on ApplyObstacleMoves, the next Build or the next save.
func (s *Session) MoveObstacle(idx int, delta orb.Point) error {
	obstacles := s.problem.Obstacles()
	if idx < 0 || idx >= obstacles.Len() {
		return errors.Wrapf(ErrNoObstacle, "index %d of %d", idx, obstacles.Len())
	}
	obstacles.Move(idx, delta)
	return nil
}

// ApplyObstacleMoves commits pending obstacle moves. The roadmap was built
// against the old obstacles, so it is dropped when anything moved.
func (s *Session) ApplyObstacleMoves() {
	obstacles := s.problem.Obstacles()
	if !obstacles.Pending() {
		return
	}
	obstacles.ApplyTransforms()
	s.algo = nil
	s.ClearGraph()
	s.logger.Infow("obstacle moves applied", "obstacles", obstacles.Len())
}

// Build starts a new roadmap with the session parameters. Pending obstacle
// moves are applied first.
func (s *Session) Build() {
	s.problem.Obstacles().ApplyTransforms()

	s.algo = planner.New(
		planner.WithPoints(s.params.Points),
		planner.WithRadiusMultiplier(s.params.RMulti),
		planner.WithFixedRadius(s.params.FixedRadius),
		planner.WithVariant(s.params.Variant),
		planner.WithSeed(s.params.Seed),
		planner.WithLogger(s.logger),
	)
	s.graph = s.algo.Initialize(s.problem)
	s.path = nil
}

// Proceed calls Step up to steps times and reports whether the roadmap is
// complete.
func (s *Session) Proceed(steps int) (bool, error) {
	if s.algo == nil || s.graph == nil {
		return false, ErrNoRoadmap
	}
	for i := 0; i < steps; i++ {
		if !s.algo.Step(s.graph) {
			return true, nil
		}
	}
	return s.algo.State() == planner.Done, nil
}

// Complete runs the algorithm until the roadmap is complete.
func (s *Session) Complete() error {
	if s.algo == nil || s.graph == nil {
		return ErrNoRoadmap
	}
	for s.algo.Step(s.graph) {
	}
	return nil
}

// UseRoadmap installs a previously saved roadmap for querying. The algorithm
// is kept only to derive the connection radius.
func (s *Session) UseRoadmap(g *roadmap.Graph) error {
	if g.Dim() != s.problem.Dim() {
		return errors.Wrapf(ErrDimensionMismatch, "roadmap %d, problem %d", g.Dim(), s.problem.Dim())
	}
	if s.algo == nil {
		s.algo = planner.New(
			planner.WithRadiusMultiplier(s.params.RMulti),
			planner.WithFixedRadius(s.params.FixedRadius),
			planner.WithLogger(s.logger),
		)
	}
	s.graph = g
	s.path = nil
	return nil
}

// FindPath queries the roadmap between the problem's start and finish. The
// path is empty when they cannot be connected.
func (s *Session) FindPath() (path.Path, error) {
	if s.algo == nil || s.graph == nil {
		return nil, ErrNoRoadmap
	}
	r := s.algo.ConnectionRadius(s.problem)
	s.path = query.Find(s.graph, s.problem, s.problem.Start(), s.problem.Finish(), r*r)

	if s.path.Empty() {
		s.logger.Infow("no path found", "vertices", s.graph.Len(), "radius", r)
	} else {
		s.logger.Infow("path found", "waypoints", len(s.path), "length", s.path.Length())
	}
	return s.path, nil
}

// PathAt returns the configuration at a playback fraction of the last path,
// nil if there is none.
func (s *Session) PathAt(frac float64) cspace.Config {
	return s.path.At(frac)
}

// ClearPath drops the last path.
func (s *Session) ClearPath() { s.path = nil }

// ClearGraph drops the roadmap and the path.
func (s *Session) ClearGraph() {
	s.graph = nil
	s.path = nil
}

// Status reports the session state.
func (s *Session) Status() Status {
	st := Status{
		Dim:       s.problem.Dim(),
		Obstacles: s.problem.Obstacles().Len(),
		Waypoints: len(s.path),
	}
	if s.algo != nil {
		st.State = s.algo.State()
	}
	if s.graph != nil {
		st.Building = st.State == planner.Sampling || st.State == planner.Connecting
		st.Vertices = s.graph.Len()
		st.Edges = s.graph.EdgeCount()
		st.Components = s.graph.Components()
	}
	return st
}
