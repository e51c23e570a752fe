package cspace

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"github.com/MaastrichtU-BISS/roadmap-planner/internal/geometry"
)

// ErrUnsupportedSystem is returned when a system file names a dimension or
// layout no space variant can be built from.
var ErrUnsupportedSystem = errors.New("unsupported system")

// Save writes s in the whitespace separated system format: the dimension, the
// variant fields, the obstacle count and one "x y radius" row per obstacle.
// Pending obstacle moves are applied first.
func Save(w io.Writer, s Space) error {
	bw := bufio.NewWriter(w)
	writeRow(bw, strconv.Itoa(s.Dim()))

	switch sp := s.(type) {
	case *PointRobot:
		writeCircle(bw, sp.start)
		writeCircle(bw, sp.finish)
	case *PlanarArm:
		writeRow(bw, strconv.Itoa(sp.Dim()))
		writeRow(bw, formatFloats(sp.links)...)
		writeRow(bw, formatFloats(sp.start)...)
		writeRow(bw, formatFloats(sp.finish)...)
	default:
		return errors.Errorf("cannot save space of type %T", s)
	}

	obstacles := s.Obstacles()
	obstacles.ApplyTransforms()
	writeRow(bw, strconv.Itoa(obstacles.Len()))
	for _, c := range obstacles.circles {
		writeCircle(bw, c)
	}
	return errors.Wrap(bw.Flush(), "writing system")
}

// SaveFile writes s to path.
func SaveFile(path string, s Space) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create system file")
	}
	if err := Save(f, s); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "failed to close system file")
}

// Load parses a system written by Save. The input is read as a stream of
// whitespace separated fields, so line breaks are not significant except in
// one case: a dimension of 2 is a point robot unless the next line holds only
// the link count, which makes it a two link planar arm. Any other dimension
// must be followed by a matching link count. Nothing is returned for any other
// layout.
func Load(r io.Reader) (Space, error) {
	fields, err := readFields(r)
	if err != nil {
		return nil, err
	}
	p := &fieldParser{fields: fields}

	dim, err := p.count()
	if err != nil {
		return nil, errors.Wrap(err, "reading dimension")
	}

	var s Space
	switch {
	case dim == 2 && !p.linkCountLine(dim):
		s, err = p.pointRobot()
	case dim > 0:
		s, err = p.planarArm(dim)
	default:
		return nil, errors.Wrapf(ErrUnsupportedSystem, "dimension %d", dim)
	}
	if err != nil {
		return nil, err
	}

	n, err := p.count()
	if err != nil {
		return nil, errors.Wrap(err, "reading obstacle count")
	}
	for i := 0; i < n; i++ {
		c, err := p.circle()
		if err != nil {
			return nil, errors.Wrapf(err, "reading obstacle %d", i)
		}
		s.Obstacles().Add(c)
	}
	return s, nil
}

// LoadFile reads a system from path.
func LoadFile(path string) (Space, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open system file")
	}
	defer f.Close()
	return Load(f)
}

// field is one whitespace separated token and the line it was read from.
type field struct {
	text string
	line int
}

func readFields(r io.Reader) ([]field, error) {
	var out []field
	sc := bufio.NewScanner(r)
	for line := 0; sc.Scan(); line++ {
		for _, f := range strings.Fields(sc.Text()) {
			out = append(out, field{text: f, line: line})
		}
	}
	return out, errors.Wrap(sc.Err(), "reading system")
}

type fieldParser struct {
	fields []field
	pos    int
}

func (p *fieldParser) next() (string, error) {
	if p.pos >= len(p.fields) {
		return "", io.ErrUnexpectedEOF
	}
	f := p.fields[p.pos]
	p.pos++
	return f.text, nil
}

// linkCountLine reports whether the next field is alone on its line and equal
// to dim.
func (p *fieldParser) linkCountLine(dim int) bool {
	if p.pos >= len(p.fields) {
		return false
	}
	f := p.fields[p.pos]
	if p.pos > 0 && p.fields[p.pos-1].line == f.line {
		return false
	}
	if p.pos+1 < len(p.fields) && p.fields[p.pos+1].line == f.line {
		return false
	}
	return f.text == strconv.Itoa(dim)
}

func (p *fieldParser) count() (int, error) {
	text, err := p.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, errors.Wrap(err, "parsing integer")
	}
	if v < 0 {
		return 0, errors.Errorf("negative count %d", v)
	}
	return v, nil
}

func (p *fieldParser) values(n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		text, err := p.next()
		if err != nil {
			return nil, errors.Wrapf(err, "expected %d values, got %d", n, i)
		}
		if out[i], err = strconv.ParseFloat(text, 64); err != nil {
			return nil, errors.Wrapf(err, "parsing value %d", i)
		}
	}
	return out, nil
}

func (p *fieldParser) circle() (geometry.Circle, error) {
	v, err := p.values(3)
	if err != nil {
		return geometry.Circle{}, err
	}
	return geometry.Circle{Center: orb.Point{v[0], v[1]}, Radius: v[2]}, nil
}

func (p *fieldParser) pointRobot() (*PointRobot, error) {
	start, err := p.circle()
	if err != nil {
		return nil, errors.Wrap(err, "reading start")
	}
	finish, err := p.circle()
	if err != nil {
		return nil, errors.Wrap(err, "reading finish")
	}
	return NewPointRobot(start, finish), nil
}

func (p *fieldParser) planarArm(dim int) (*PlanarArm, error) {
	n, err := p.count()
	if err != nil {
		return nil, errors.Wrap(err, "reading link count")
	}
	if n != dim {
		return nil, errors.Wrapf(ErrUnsupportedSystem, "link count %d does not match dimension %d", n, dim)
	}
	links, err := p.values(n)
	if err != nil {
		return nil, errors.Wrap(err, "reading link lengths")
	}
	start, err := p.values(n)
	if err != nil {
		return nil, errors.Wrap(err, "reading start angles")
	}
	finish, err := p.values(n)
	if err != nil {
		return nil, errors.Wrap(err, "reading finish angles")
	}

	a := NewPlanarArm(links)
	a.SetPoses(start, finish)
	return a, nil
}

func formatFloats(v []float64) []string {
	out := make([]string, len(v))
	for i, f := range v {
		out[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return out
}

func writeCircle(w *bufio.Writer, c geometry.Circle) {
	writeRow(w, formatFloats([]float64{c.Center[0], c.Center[1], c.Radius})...)
}

func writeRow(w *bufio.Writer, fields ...string) {
	w.WriteString(strings.Join(fields, " "))
	w.WriteByte('\n')
}
