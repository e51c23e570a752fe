package query

import (
	"container/heap"

	"github.com/MaastrichtU-BISS/roadmap-planner/internal/roadmap"
)

// searchNode represents a vertex in the frontier.
type searchNode struct {
	vertex int
	cost   float64 // cost from the source
	parent *searchNode
	index  int // index in the heap
}

// frontier implements heap.Interface, ordered by cost then vertex index.
type frontier []*searchNode

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].cost != f[j].cost {
		return f[i].cost < f[j].cost
	}
	return f[i].vertex < f[j].vertex
}

func (f frontier) Swap(i, j int) {
	f[i], f[j] = f[j], f[i]
	f[i].index = i
	f[j].index = j
}

func (f *frontier) Push(x any) {
	n := x.(*searchNode)
	n.index = len(*f)
	*f = append(*f, n)
}

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*f = old[0 : n-1]
	return node
}

// ShortestPath runs Dijkstra from src to dst over g. The weight of an edge is
// the squared Euclidean distance between its endpoints. It returns the vertex
// indices from src to dst inclusive, or false when dst is unreachable.
func ShortestPath(g *roadmap.Graph, src, dst int) ([]int, bool) {
	open := &frontier{}
	heap.Init(open)

	start := &searchNode{vertex: src}
	heap.Push(open, start)
	inOpen := map[int]*searchNode{src: start}
	closed := make([]bool, g.Len())

	for open.Len() > 0 {
		current := heap.Pop(open).(*searchNode)
		delete(inOpen, current.vertex)

		if current.vertex == dst {
			var route []int
			for n := current; n != nil; n = n.parent {
				route = append(route, n.vertex)
			}
			for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
				route[i], route[j] = route[j], route[i]
			}
			return route, true
		}

		closed[current.vertex] = true
		here := g.Vertex(current.vertex)

		for _, next := range g.Neighbors(current.vertex) {
			if closed[next] {
				continue
			}
			cost := current.cost + roadmap.DistanceSquared(here, g.Vertex(next))

			n, ok := inOpen[next]
			if !ok {
				n = &searchNode{vertex: next, cost: cost, parent: current}
				heap.Push(open, n)
				inOpen[next] = n
			} else if cost < n.cost {
				n.cost = cost
				n.parent = current
				heap.Fix(open, n.index)
			}
		}
	}

	return nil, false
}
