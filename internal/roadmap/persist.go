package roadmap

import (
	"encoding/json"
	"io"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

// graphFile is the on-disk JSON form of a roadmap.
type graphFile struct {
	Dim      int         `json:"dim"`
	Vertices [][]float64 `json:"vertices"`
	Edges    [][2]int    `json:"edges"`
}

// Save writes g as JSON.
func (g *Graph) Save(w io.Writer) error {
	f := graphFile{
		Dim:      g.dim,
		Vertices: make([][]float64, g.Len()),
		Edges:    g.edges,
	}
	for i := range f.Vertices {
		f.Vertices[i] = g.Vertex(i)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(f), "failed to marshal roadmap")
}

// Load reads a roadmap written by Save, replaying its vertices and edges so
// that adjacency and components are rebuilt.
func Load(r io.Reader) (*Graph, error) {
	var f graphFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal roadmap")
	}
	if f.Dim <= 0 {
		return nil, errors.Errorf("invalid roadmap dimension %d", f.Dim)
	}

	g := New(f.Dim)
	for i, v := range f.Vertices {
		if len(v) != f.Dim {
			return nil, errors.Errorf("vertex %d has dimension %d, want %d", i, len(v), f.Dim)
		}
		g.AddVertex(v)
	}
	for _, e := range f.Edges {
		if e[0] < 0 || e[1] < 0 || e[0] >= g.Len() || e[1] >= g.Len() {
			return nil, errors.Errorf("edge %v references a missing vertex", e)
		}
		g.AddEdge(e[0], e[1])
	}
	return g, nil
}

// SaveFile writes g to filename.
func (g *Graph) SaveFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create roadmap file")
	}
	if err := g.Save(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "failed to write roadmap file")
}

// LoadFile reads a roadmap from filename.
func LoadFile(filename string) (*Graph, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read roadmap file")
	}
	defer f.Close()
	return Load(f)
}

// EdgeLines returns every edge of a planar roadmap as a two-point line string.
func (g *Graph) EdgeLines() ([]orb.LineString, error) {
	if g.dim != 2 {
		return nil, errors.Errorf("edge lines need a planar roadmap, have dimension %d", g.dim)
	}
	lines := make([]orb.LineString, 0, len(g.edges))
	for _, e := range g.edges {
		a, b := g.Vertex(e[0]), g.Vertex(e[1])
		lines = append(lines, orb.LineString{{a[0], a[1]}, {b[0], b[1]}})
	}
	return lines, nil
}

// EdgeFeatures renders a planar roadmap as a GeoJSON collection of edge line
// strings, each tagged with its endpoint indices and component.
func (g *Graph) EdgeFeatures() (*geojson.FeatureCollection, error) {
	lines, err := g.EdgeLines()
	if err != nil {
		return nil, err
	}
	fc := geojson.NewFeatureCollection()
	for i, ls := range lines {
		f := geojson.NewFeature(ls)
		f.Properties["from"] = g.edges[i][0]
		f.Properties["to"] = g.edges[i][1]
		f.Properties["component"] = g.Component(g.edges[i][0])
		fc.Append(f)
	}
	return fc, nil
}
