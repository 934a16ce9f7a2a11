package storage

import (
	"fmt"

	"github.com/janelia-flyem/ndimg/ndimg"
)

func init() {
	RegisterFactory(FactoryInfo{
		Name:        "mapped",
		Description: "single contiguous slice in an anonymous memory mapping outside the Go heap",
		Version:     mustVersion("0.1.0"),
		New:         func() Factory { return NewMappedFactory() },
	})
}

// MappedFactory creates containers whose storage is memory mapped.  Packed
// types are not supported.
type MappedFactory struct {
	optimizedFlag
}

func NewMappedFactory() *MappedFactory {
	return &MappedFactory{}
}

func (f *MappedFactory) Name() string { return "mapped" }

func (f *MappedFactory) SetParameters(params string) {
	decodeParameters(f.Name(), params, f)
}

func (f *MappedFactory) Create(t ndimg.DataType, dims []int, epp int) (Container, error) {
	if t.IsPacked() {
		return nil, fmt.Errorf("mapped containers can't hold %s data: %w", t, ndimg.ErrUnsupportedLayout)
	}
	return create(f, t, dims, epp)
}

// Mapped uses the same index arithmetic as Array over a mapped buffer that is
// released by Close.
type Mapped[E Element] struct {
	*grid
	id      []byte
	factory Factory
	data    []E
	unmap   func() error
}

func newMapped[E Element](f Factory, t ndimg.DataType, dims []int, epp int) (Container, error) {
	g, err := newGrid(t, dims, dims, epp)
	if err != nil {
		return nil, err
	}
	data, unmap, err := mapSlice[E](g.sliceEntities(0))
	if err != nil {
		return nil, fmt.Errorf("can't map %v of %s: %v", dims, t, err)
	}
	return &Mapped[E]{grid: g, id: newID(), factory: f, data: data, unmap: unmap}, nil
}

func (m *Mapped[E]) ID() []byte { return m.id }

func (m *Mapped[E]) Factory() Factory { return m.factory }

func (m *Mapped[E]) Acquire(id int) []E { return m.data }

func (m *Mapped[E]) Release(id int) {}

func (m *Mapped[E]) Close() error {
	if m.unmap == nil {
		return nil
	}
	m.data = nil
	err := m.unmap()
	m.unmap = nil
	return err
}

func (m *Mapped[E]) String() string { return m.describe("mapped") }
