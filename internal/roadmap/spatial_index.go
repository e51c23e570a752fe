package roadmap

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
)

// pointTolerance is the half-width of the box stored for each vertex.
const pointTolerance = 1e-9

// vertexEntry wraps a vertex for R-tree storage.
type vertexEntry struct {
	idx  int
	bbox rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (v *vertexEntry) Bounds() rtreego.Rect {
	return v.bbox
}

// spatialIndex narrows radius queries to the vertices whose boxes intersect
// the query box. Callers apply the exact distance test.
type spatialIndex struct {
	dim  int
	tree *rtreego.Rtree
}

func newSpatialIndex(dim int) *spatialIndex {
	return &spatialIndex{dim: dim, tree: rtreego.NewTree(dim, 25, 50)}
}

func (s *spatialIndex) insert(idx int, q []float64) {
	s.tree.Insert(&vertexEntry{idx: idx, bbox: boxAround(q, pointTolerance)})
}

// near returns candidate indices within the axis-aligned box enclosing the
// ball of squared radius radiusSq around q, sorted ascending.
func (s *spatialIndex) near(q []float64, radiusSq float64) []int {
	half := math.Sqrt(math.Max(radiusSq, 0))
	// pad so that vertices exactly on the ball boundary stay candidates
	half += pointTolerance + half*1e-9

	results := s.tree.SearchIntersect(boxAround(q, half))
	out := make([]int, 0, len(results))
	for _, item := range results {
		out = append(out, item.(*vertexEntry).idx)
	}
	sort.Ints(out)
	return out
}

// boxAround returns the cube of half-width half centered on q.
func boxAround(q []float64, half float64) rtreego.Rect {
	corner := make(rtreego.Point, len(q))
	lengths := make([]float64, len(q))
	for k, v := range q {
		corner[k] = v - half
		lengths[k] = 2 * half
	}
	rect, err := rtreego.NewRect(corner, lengths)
	if err != nil {
		// only non-positive lengths are rejected and half is always positive
		panic(err)
	}
	return rect
}
