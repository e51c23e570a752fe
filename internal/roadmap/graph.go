// Package roadmap stores the probabilistic roadmap: sampled configurations,
// the undirected edges between them and the connected components those edges
// form.
package roadmap

import (
	"fmt"
)

// Graph is an undirected roadmap over D-dimensional vertices. Vertices are
// never removed, adjacency is always symmetric and the component structure
// always reflects the current edge set.
type Graph struct {
	dim      int
	vertices []float64 // flat, dim values per vertex
	adj      [][]int
	edges    [][2]int
	parent   []int
	index    *spatialIndex
}

// New returns an empty graph of dimension dim.
func New(dim int) *Graph {
	if dim <= 0 {
		panic(fmt.Sprintf("roadmap: invalid dimension %d", dim))
	}
	return &Graph{dim: dim, index: newSpatialIndex(dim)}
}

// Dim returns the vertex dimension.
func (g *Graph) Dim() int { return g.dim }

// Len returns the number of vertices.
func (g *Graph) Len() int { return len(g.adj) }

// EdgeCount returns the number of edges added.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Vertex returns the configuration of vertex i. The returned slice aliases
// the graph storage and must not be modified.
func (g *Graph) Vertex(i int) []float64 {
	lo, hi := i*g.dim, (i+1)*g.dim
	return g.vertices[lo:hi:hi]
}

// Neighbors returns the adjacency list of vertex i in insertion order.
func (g *Graph) Neighbors(i int) []int {
	return g.adj[i]
}

// Edges returns every edge in insertion order.
func (g *Graph) Edges() [][2]int {
	return append([][2]int(nil), g.edges...)
}

// AddVertex appends q and returns its index. It panics if q does not have the
// graph dimension.
func (g *Graph) AddVertex(q []float64) int {
	if len(q) != g.dim {
		panic(fmt.Sprintf("roadmap: vertex has dimension %d, graph has %d", len(q), g.dim))
	}
	idx := len(g.adj)
	g.vertices = append(g.vertices, q...)
	g.adj = append(g.adj, nil)
	g.parent = append(g.parent, idx)
	g.index.insert(idx, g.Vertex(idx))
	return idx
}

// AddEdge connects i and j in both directions and merges their components.
func (g *Graph) AddEdge(i, j int) {
	g.adj[i] = append(g.adj[i], j)
	g.adj[j] = append(g.adj[j], i)
	g.edges = append(g.edges, [2]int{i, j})
	g.union(i, j)
}

// SameComponent reports whether i and j are connected.
func (g *Graph) SameComponent(i, j int) bool {
	return g.find(i) == g.find(j)
}

// Component returns the representative of i's component, which is always the
// smallest vertex index in it.
func (g *Graph) Component(i int) int {
	return g.find(i)
}

// Components returns the number of connected components.
func (g *Graph) Components() int {
	n := 0
	for i := range g.parent {
		if g.find(i) == i {
			n++
		}
	}
	return n
}

// find returns the root of i, compressing the whole path onto it.
func (g *Graph) find(i int) int {
	root := i
	for g.parent[root] != root {
		root = g.parent[root]
	}
	for g.parent[i] != root {
		next := g.parent[i]
		g.parent[i] = root
		i = next
	}
	return root
}

// union roots the merged component at the smaller representative.
func (g *Graph) union(i, j int) {
	ri, rj := g.find(i), g.find(j)
	switch {
	case ri == rj:
	case ri < rj:
		g.parent[rj] = ri
	default:
		g.parent[ri] = rj
	}
}

// Within returns the vertices j > i whose squared distance to vertex i is at
// most radiusSq, in increasing index order.
func (g *Graph) Within(i int, radiusSq float64) []int {
	q := g.Vertex(i)
	var out []int
	for _, j := range g.index.near(q, radiusSq) {
		if j > i && DistanceSquared(q, g.Vertex(j)) <= radiusSq {
			out = append(out, j)
		}
	}
	return out
}

// DistanceSquared returns the squared Euclidean distance between a and b.
func DistanceSquared(a, b []float64) float64 {
	var d float64
	for k := range a {
		diff := a[k] - b[k]
		d += diff * diff
	}
	return d
}
