// Package path holds query results and their arclength playback.
package path

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/MaastrichtU-BISS/roadmap-planner/internal/cspace"
)

// Path is an ordered sequence of configurations from a query start to its
// goal. An empty Path means no path was found.
type Path []cspace.Config

// Empty reports whether the path has no waypoints.
func (p Path) Empty() bool { return len(p) == 0 }

// Length returns the total Euclidean arclength.
func (p Path) Length() float64 {
	cum := p.cumulative()
	if len(cum) == 0 {
		return 0
	}
	return cum[len(cum)-1]
}

// cumulative returns the arclength from the start to each waypoint.
func (p Path) cumulative() []float64 {
	cum := make([]float64, len(p))
	for i := 1; i < len(p); i++ {
		cum[i] = cum[i-1] + floats.Distance(p[i-1], p[i], 2)
	}
	return cum
}

// At returns the configuration at fraction frac of the path's arclength. 0
// yields the start and 1 the goal; values outside [0, 1] are clamped. It
// returns nil for an empty path.
func (p Path) At(frac float64) cspace.Config {
	switch {
	case len(p) == 0:
		return nil
	case frac <= 0 || len(p) == 1:
		return p[0].Clone()
	case frac >= 1:
		return p[len(p)-1].Clone()
	}

	cum := p.cumulative()
	total := cum[len(cum)-1]
	if total == 0 {
		return p[0].Clone()
	}

	for k := 1; k < len(p); k++ {
		if cum[k]/total > frac {
			lo, hi := cum[k-1]/total, cum[k]/total
			t := (frac - lo) / (hi - lo)

			// p[k-1] + t * (p[k] - p[k-1])
			dir := make([]float64, len(p[k]))
			floats.SubTo(dir, p[k], p[k-1])
			out := make(cspace.Config, len(dir))
			floats.AddScaledTo(out, p[k-1], t, dir)
			return out
		}
	}
	return p[len(p)-1].Clone()
}

// LineString returns a planar path as an orb line string.
func (p Path) LineString() (orb.LineString, error) {
	ls := make(orb.LineString, 0, len(p))
	for i, q := range p {
		if len(q) != 2 {
			return nil, errors.Errorf("waypoint %d has dimension %d, want 2", i, len(q))
		}
		ls = append(ls, orb.Point{q[0], q[1]})
	}
	return ls, nil
}

// Feature renders a planar path as a GeoJSON line string feature carrying its
// length.
func (p Path) Feature() (*geojson.Feature, error) {
	ls, err := p.LineString()
	if err != nil {
		return nil, err
	}
	f := geojson.NewFeature(ls)
	f.Properties["length"] = p.Length()
	f.Properties["waypoints"] = len(p)
	return f, nil
}
