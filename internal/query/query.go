// Package query connects a start and a goal configuration through a finished
// roadmap.
package query

import (
	"sort"

	"github.com/MaastrichtU-BISS/roadmap-planner/internal/cspace"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/path"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/roadmap"
)

// candidate is a roadmap vertex and its squared distance to a query endpoint.
type candidate struct {
	vertex int
	distSq float64
}

// byDistance returns every vertex of g ordered by squared distance to q, ties
// broken by vertex index.
func byDistance(g *roadmap.Graph, q cspace.Config) []candidate {
	out := make([]candidate, g.Len())
	for i := range out {
		out[i] = candidate{vertex: i, distSq: roadmap.DistanceSquared(q, g.Vertex(i))}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].distSq < out[b].distSq
	})
	return out
}

// Anchors picks the roadmap vertices a query attaches to. Start candidates are
// tried nearest first; for each one that lies within radiusSq and has a valid
// edge to start, goal candidates are tried nearest first until one in the
// same component, within radiusSq and with a valid edge to goal is found. The
// first such pair wins.
func Anchors(g *roadmap.Graph, s cspace.Space, start, goal cspace.Config, radiusSq float64) (int, int, bool) {
	fromStart := byDistance(g, start)
	fromGoal := byDistance(g, goal)

	for _, sc := range fromStart {
		if sc.distSq > radiusSq {
			break
		}
		if !s.ValidEdge(start, g.Vertex(sc.vertex)) {
			continue
		}
		for _, gc := range fromGoal {
			if gc.distSq > radiusSq {
				break
			}
			if !g.SameComponent(sc.vertex, gc.vertex) {
				continue
			}
			if s.ValidEdge(g.Vertex(gc.vertex), goal) {
				return sc.vertex, gc.vertex, true
			}
		}
	}
	return -1, -1, false
}

// Find returns a path from start to goal through g, or an empty path when the
// endpoints cannot be attached to a common component.
func Find(g *roadmap.Graph, s cspace.Space, start, goal cspace.Config, radiusSq float64) path.Path {
	if g.Dim() != s.Dim() {
		panic("query: roadmap dimension does not match space dimension")
	}

	from, to, ok := Anchors(g, s, start, goal, radiusSq)
	if !ok {
		return nil
	}
	route, ok := ShortestPath(g, from, to)
	if !ok {
		return nil
	}

	p := make(path.Path, 0, len(route)+2)
	p = append(p, start.Clone())
	for _, v := range route {
		p = append(p, cspace.Config(g.Vertex(v)).Clone())
	}
	return append(p, goal.Clone())
}
