package storage

import (
	"fmt"

	"github.com/janelia-flyem/ndimg/ndimg"
)

func init() {
	RegisterFactory(FactoryInfo{
		Name:        "planar",
		Description: "one slice per 2-d plane, optionally owned by an external viewer",
		Version:     mustVersion("0.1.0"),
		New:         func() Factory { return NewPlanarFactory() },
	})
}

// PlaneSource supplies planes owned outside the container, e.g., by an image
// viewer.  Plane i holds the pixels with outer coordinates z + t*Z + ...
type PlaneSource[E Element] interface {
	NumPlanes() int
	Plane(i int) []E
}

// PlanarFactory creates containers with one slice per plane.
type PlanarFactory struct {
	optimizedFlag
}

func NewPlanarFactory() *PlanarFactory {
	return &PlanarFactory{}
}

func (f *PlanarFactory) Name() string { return "planar" }

func (f *PlanarFactory) SetParameters(params string) {
	decodeParameters(f.Name(), params, f)
}

func (f *PlanarFactory) Create(t ndimg.DataType, dims []int, epp int) (Container, error) {
	return create(f, t, dims, epp)
}

// Planar holds one slice per plane spanned by the first two dimensions.
type Planar[E Element] struct {
	*grid
	id      []byte
	factory Factory
	planes  [][]E
	source  PlaneSource[E]
}

// NewPlanarFromSource wraps planes supplied by an external owner.  Every plane
// must hold exactly one plane's worth of entities.
func NewPlanarFromSource[E Element](dims []int, epp int, source PlaneSource[E]) (*Planar[E], error) {
	t := DataTypeOf[E]()
	c, err := newPlanar[E](NewPlanarFactory(), t, dims, epp, source)
	if err != nil {
		return nil, err
	}
	return c.(*Planar[E]), nil
}

func planeDims(dims []int) []int {
	plane := make([]int, len(dims))
	for d := range dims {
		if d < 2 {
			plane[d] = dims[d]
		} else {
			plane[d] = 1
		}
	}
	return plane
}

func newPlanar[E Element](f Factory, t ndimg.DataType, dims []int, epp int, source PlaneSource[E]) (Container, error) {
	g, err := newGrid(t, dims, planeDims(dims), epp)
	if err != nil {
		return nil, err
	}
	p := &Planar[E]{grid: g, id: newID(), factory: f, source: source}
	n := g.NumSlices()
	if source == nil {
		p.planes = make([][]E, n)
		for i := range p.planes {
			p.planes[i] = make([]E, g.sliceEntities(i))
		}
		return p, nil
	}
	if source.NumPlanes() != n {
		return nil, fmt.Errorf("plane source has %d planes, extent %v needs %d: %w", source.NumPlanes(), dims, n, ndimg.ErrDimensionMismatch)
	}
	for i := 0; i < n; i++ {
		if got, want := len(source.Plane(i)), g.sliceEntities(i); got != want {
			return nil, fmt.Errorf("plane %d holds %d entities, expected %d: %w", i, got, want, ndimg.ErrDimensionMismatch)
		}
	}
	return p, nil
}

func (p *Planar[E]) ID() []byte { return p.id }

func (p *Planar[E]) Factory() Factory { return p.factory }

// Acquire returns the plane, asking the external source when there is one.
func (p *Planar[E]) Acquire(id int) []E {
	if p.source != nil {
		return p.source.Plane(id)
	}
	return p.planes[id]
}

func (p *Planar[E]) Release(id int) {}

// Plane returns a plane's storage without tracking its use.
func (p *Planar[E]) Plane(id int) []E {
	return p.Acquire(id)
}

func (p *Planar[E]) Close() error {
	p.planes = nil
	return nil
}

func (p *Planar[E]) String() string { return p.describe("planar") }
