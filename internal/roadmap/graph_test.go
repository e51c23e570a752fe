package roadmap

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reachable computes the vertices reachable from src by breadth-first search
// over the adjacency lists.
func reachable(g *Graph, src int) []bool {
	seen := make([]bool, g.Len())
	seen[src] = true
	queue := []int{src}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range g.Neighbors(v) {
			if !seen[w] {
				seen[w] = true
				queue = append(queue, w)
			}
		}
	}
	return seen
}

func TestAddVertex(t *testing.T) {
	g := New(3)
	assert.Equal(t, 0, g.AddVertex([]float64{1, 2, 3}))
	assert.Equal(t, 1, g.AddVertex([]float64{4, 5, 6}))
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []float64{4, 5, 6}, g.Vertex(1))
	assert.Empty(t, g.Neighbors(0))
	assert.False(t, g.SameComponent(0, 1))
	assert.Equal(t, 2, g.Components())
}

func TestDimensionMismatchPanics(t *testing.T) {
	g := New(2)
	assert.Panics(t, func() { g.AddVertex([]float64{1}) })
	assert.Panics(t, func() { New(0) })
}

func TestAddEdgeSymmetric(t *testing.T) {
	g := New(1)
	for i := 0; i < 4; i++ {
		g.AddVertex([]float64{float64(i)})
	}
	g.AddEdge(0, 2)
	g.AddEdge(3, 2)

	assert.Equal(t, []int{2}, g.Neighbors(0))
	assert.Equal(t, []int{0, 3}, g.Neighbors(2))
	assert.Equal(t, []int{2}, g.Neighbors(3))
	assert.Equal(t, 2, g.EdgeCount())
	assert.True(t, g.SameComponent(0, 3))
	assert.False(t, g.SameComponent(0, 1))
	assert.Equal(t, 0, g.Component(3))
	assert.Equal(t, 2, g.Components())
}

func TestComponentsMatchReachability(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 11))
	const n = 40

	g := New(2)
	for i := 0; i < n; i++ {
		g.AddVertex([]float64{rng.Float64(), rng.Float64()})
	}

	for step := 0; step < 60; step++ {
		g.AddEdge(rng.IntN(n), rng.IntN(n))

		for i := 0; i < n; i++ {
			seen := reachable(g, i)
			for j := 0; j < n; j++ {
				require.Equal(t, seen[j], g.SameComponent(i, j), "step %d, pair (%d, %d)", step, i, j)
			}
		}
	}
}

func TestRepresentativeIsSmallestIndex(t *testing.T) {
	g := New(1)
	for i := 0; i < 6; i++ {
		g.AddVertex([]float64{float64(i)})
	}
	g.AddEdge(5, 4)
	g.AddEdge(3, 4)
	g.AddEdge(1, 5)

	for _, v := range []int{1, 3, 4, 5} {
		assert.Equal(t, 1, g.Component(v))
	}
	assert.Equal(t, 0, g.Component(0))
	assert.Equal(t, 2, g.Component(2))
}

func TestWithinMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	g := New(3)
	for i := 0; i < 300; i++ {
		g.AddVertex([]float64{rng.Float64() * 10, rng.Float64() * 10, rng.Float64() * 10})
	}

	for _, radiusSq := range []float64{0, 0.5, 4, 25} {
		for i := 0; i < g.Len(); i += 17 {
			var want []int
			for j := i + 1; j < g.Len(); j++ {
				if DistanceSquared(g.Vertex(i), g.Vertex(j)) <= radiusSq {
					want = append(want, j)
				}
			}
			assert.Equal(t, want, g.Within(i, radiusSq))
		}
	}
}

func TestWithinBoundary(t *testing.T) {
	g := New(2)
	g.AddVertex([]float64{0, 0})
	g.AddVertex([]float64{3, 4})
	g.AddVertex([]float64{3, 4.0001})

	assert.Equal(t, []int{1}, g.Within(0, 25))
}

func TestSaveLoad(t *testing.T) {
	g := New(2)
	g.AddVertex([]float64{0, 0})
	g.AddVertex([]float64{1, 0.5})
	g.AddVertex([]float64{7, 7})
	g.AddEdge(0, 1)

	var buf bytes.Buffer
	require.NoError(t, g.Save(&buf))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, g.Dim(), loaded.Dim())
	assert.Equal(t, g.Len(), loaded.Len())
	for i := 0; i < g.Len(); i++ {
		assert.Equal(t, g.Vertex(i), loaded.Vertex(i))
		assert.Equal(t, g.Neighbors(i), loaded.Neighbors(i))
	}
	assert.True(t, loaded.SameComponent(0, 1))
	assert.False(t, loaded.SameComponent(0, 2))
	assert.Equal(t, []int{1}, loaded.Within(0, 2))

	_, err = Load(bytes.NewBufferString(`{"dim":2,"vertices":[[0,0]],"edges":[[0,3]]}`))
	assert.Error(t, err)
	_, err = Load(bytes.NewBufferString(`{"dim":2,"vertices":[[0,0,1]]}`))
	assert.Error(t, err)
}

func TestEdgeFeatures(t *testing.T) {
	g := New(2)
	g.AddVertex([]float64{0, 0})
	g.AddVertex([]float64{1, 1})
	g.AddEdge(1, 0)

	fc, err := g.EdgeFeatures()
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, 1, fc.Features[0].Properties["from"])
	assert.Equal(t, 0, fc.Features[0].Properties["component"])

	_, err = New(3).EdgeFeatures()
	assert.Error(t, err)
}
