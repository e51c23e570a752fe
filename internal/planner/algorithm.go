// Package planner builds probabilistic roadmaps incrementally. An Algorithm is
// driven by repeated Step calls: the first samples every vertex, each later
// call connects one more vertex to its neighbors.
package planner

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/MaastrichtU-BISS/roadmap-planner/internal/cspace"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/roadmap"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/sampler"
)

// Variant selects the roadmap construction rule.
type Variant int

const (
	// PRM connects radius neighbors with a valid edge that also pass the
	// connection filter, when one is set.
	PRM Variant = iota
	// SPRM connects every radius neighbor with a valid edge.
	SPRM
)

func (v Variant) String() string {
	switch v {
	case PRM:
		return "prm"
	case SPRM:
		return "sprm"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant maps "prm" and "sprm" to their Variant.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "prm", "PRM":
		return PRM, nil
	case "sprm", "sPRM", "SPRM":
		return SPRM, nil
	}
	return 0, errors.Errorf("unknown planner variant %q", s)
}

// State is the construction phase.
type State int

// Construction phases, in order.
const (
	Uninitialized State = iota
	Sampling
	Connecting
	Done
)

func (s State) String() string {
	return [...]string{"uninitialized", "sampling", "connecting", "done"}[s]
}

// ConnectionFilter can veto an edge between two radius neighbors. Only the PRM
// variant consults it.
type ConnectionFilter func(g *roadmap.Graph, i, j int) bool

// Default construction parameters.
const (
	DefaultPoints           = 50
	DefaultRadiusMultiplier = 0.1
)

// Algorithm is a resumable roadmap builder. The zero value is not usable;
// construct with New.
type Algorithm struct {
	variant     Variant
	n           int
	rMulti      float64
	fixedRadius float64
	seed        uint64
	sampler     sampler.Sampler
	filter      ConnectionFilter
	logger      *zap.SugaredLogger

	space  cspace.Space
	ranges []sampler.Range
	radius float64
	state  State
	cursor int
	began  time.Time
}

// Option configures an Algorithm.
type Option func(*Algorithm)

// WithPoints sets the number of vertices to sample.
func WithPoints(n int) Option {
	return func(a *Algorithm) { a.n = n }
}

// WithRadiusMultiplier scales the base connection radius.
func WithRadiusMultiplier(r float64) Option {
	return func(a *Algorithm) { a.rMulti = r }
}

// WithFixedRadius uses r as the connection radius instead of the scaled base
// radius. Non-positive values restore the scaled radius.
func WithFixedRadius(r float64) Option {
	return func(a *Algorithm) { a.fixedRadius = r }
}

// WithSeed sets the sampler seed applied on every Initialize.
func WithSeed(seed uint64) Option {
	return func(a *Algorithm) { a.seed = seed }
}

// WithVariant selects PRM or SPRM.
func WithVariant(v Variant) Option {
	return func(a *Algorithm) { a.variant = v }
}

// WithSampler replaces the default PCG sampler.
func WithSampler(s sampler.Sampler) Option {
	return func(a *Algorithm) { a.sampler = s }
}

// WithConnectionFilter installs an edge veto for the PRM variant.
func WithConnectionFilter(f ConnectionFilter) Option {
	return func(a *Algorithm) { a.filter = f }
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(a *Algorithm) { a.logger = l }
}

// New returns an uninitialized Algorithm.
func New(opts ...Option) *Algorithm {
	a := &Algorithm{
		variant: PRM,
		n:       DefaultPoints,
		rMulti:  DefaultRadiusMultiplier,
		seed:    sampler.DefaultSeed,
		logger:  zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.sampler == nil {
		a.sampler = sampler.NewUniform(a.seed)
	}
	return a
}

// Variant returns the construction rule.
func (a *Algorithm) Variant() Variant { return a.variant }

// Points returns the target vertex count.
func (a *Algorithm) Points() int { return a.n }

// State returns the current phase.
func (a *Algorithm) State() State { return a.state }

// Cursor returns the next vertex to connect while Connecting.
func (a *Algorithm) Cursor() int { return a.cursor }

// Radius returns the connection radius computed by Initialize.
func (a *Algorithm) Radius() float64 { return a.radius }

// Space returns the bound space, nil before Initialize.
func (a *Algorithm) Space() cspace.Space { return a.space }

// ConnectionRadius derives the connection radius for s without touching the
// algorithm state.
func (a *Algorithm) ConnectionRadius(s cspace.Space) float64 {
	if a.fixedRadius > 0 {
		return a.fixedRadius
	}
	return a.rMulti * BaseRadius(s)
}

// Initialize binds s, reseeds the sampler, computes the connection radius and
// returns an empty roadmap of the space dimension. Any earlier progress is
// discarded.
func (a *Algorithm) Initialize(s cspace.Space) *roadmap.Graph {
	a.space = s
	a.ranges = a.ranges[:0]
	for _, b := range s.Bounds() {
		a.ranges = append(a.ranges, sampler.Range{Low: b.Low, High: b.High})
	}
	a.sampler.Seed(a.seed)
	a.radius = a.ConnectionRadius(s)
	a.cursor = 0
	a.state = Sampling
	a.began = time.Now()

	a.logger.Infow("roadmap initialized",
		"variant", a.variant,
		"points", a.n,
		"dim", s.Dim(),
		"radius", a.radius,
		"obstacles", s.Obstacles().Len())

	return roadmap.New(s.Dim())
}

// Step performs one unit of work on g and reports whether more remains. The
// first call samples all vertices of an empty graph; every later call connects
// one vertex. Once it returns false the roadmap is complete.
func (a *Algorithm) Step(g *roadmap.Graph) bool {
	if a.state == Uninitialized || a.state == Done {
		return false
	}
	if g.Dim() != a.space.Dim() {
		panic(fmt.Sprintf("planner: roadmap dimension %d does not match space dimension %d", g.Dim(), a.space.Dim()))
	}

	if a.state == Sampling {
		if g.Len() == 0 {
			a.sample(g)
		}
		a.state = Connecting
		a.cursor = 0
		return true
	}

	limit := min(a.n, g.Len())
	if a.cursor < limit {
		a.connect(g, a.cursor, limit)
		a.cursor++
	}
	if a.cursor >= limit {
		a.finish(g)
		return false
	}
	return true
}

// sample draws n valid configurations by rejection. It does not terminate
// when the space has no free volume.
func (a *Algorithm) sample(g *roadmap.Graph) {
	q := make(cspace.Config, len(a.ranges))
	rejected := 0
	for added := 0; added < a.n; {
		for k, r := range a.ranges {
			q[k] = a.sampler.Draw(r)
		}
		if !a.space.Valid(q) {
			rejected++
			continue
		}
		g.AddVertex(q)
		added++
	}
	a.logger.Debugw("sampled roadmap vertices", "vertices", g.Len(), "rejected", rejected)
}

// connect adds the edges from vertex i to every later vertex below limit that
// lies within the connection radius and passes the edge checks.
func (a *Algorithm) connect(g *roadmap.Graph, i, limit int) {
	qi := cspace.Config(g.Vertex(i))
	for _, j := range g.Within(i, a.radius*a.radius) {
		if j >= limit {
			break
		}
		if !a.space.ValidEdge(qi, g.Vertex(j)) {
			continue
		}
		if a.variant == PRM && a.filter != nil && !a.filter(g, i, j) {
			continue
		}
		g.AddEdge(i, j)
	}
}

func (a *Algorithm) finish(g *roadmap.Graph) {
	if a.state == Done {
		return
	}
	a.state = Done
	a.logger.Infow("roadmap built",
		"vertices", g.Len(),
		"edges", g.EdgeCount(),
		"components", g.Components(),
		"elapsed", time.Since(a.began))
}
