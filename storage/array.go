package storage

import (
	"github.com/janelia-flyem/ndimg/ndimg"
)

func init() {
	RegisterFactory(FactoryInfo{
		Name:        "array",
		Description: "single contiguous slice in x-fastest order",
		Version:     mustVersion("0.1.0"),
		New:         func() Factory { return NewArrayFactory() },
	})
}

// ArrayFactory creates flat contiguous containers.  With optimized containers
// enabled, 2-d and 3-d extents get containers with precomputed strides.
type ArrayFactory struct {
	optimizedFlag
}

func NewArrayFactory() *ArrayFactory {
	return &ArrayFactory{optimizedFlag{Optimized: true}}
}

func (f *ArrayFactory) Name() string { return "array" }

func (f *ArrayFactory) SetParameters(params string) {
	decodeParameters(f.Name(), params, f)
}

func (f *ArrayFactory) Create(t ndimg.DataType, dims []int, epp int) (Container, error) {
	return create(f, t, dims, epp)
}

// Array holds every pixel in one slice.
type Array[E Element] struct {
	*grid
	id      []byte
	factory Factory
	data    []E
}

func newArray[E Element](f Factory, t ndimg.DataType, dims []int, epp int) (Container, error) {
	g, err := newGrid(t, dims, dims, epp)
	if err != nil {
		return nil, err
	}
	a := &Array[E]{grid: g, id: newID(), factory: f, data: make([]E, g.sliceEntities(0))}
	if !f.UseOptimizedContainers() {
		return a, nil
	}
	optimized := map[int]func(*Array[E]) Container{
		2: func(a *Array[E]) Container { return &Array2D[E]{Array: a, w: dims[0]} },
		3: func(a *Array[E]) Container { return &Array3D[E]{Array: a, w: dims[0], wh: dims[0] * dims[1]} },
	}
	if specialize, found := optimized[len(dims)]; found {
		return specialize(a), nil
	}
	return a, nil
}

func (a *Array[E]) ID() []byte { return a.id }

func (a *Array[E]) Factory() Factory { return a.factory }

func (a *Array[E]) Acquire(id int) []E { return a.data }

func (a *Array[E]) Release(id int) {}

// Data returns the backing slice.
func (a *Array[E]) Data() []E { return a.data }

func (a *Array[E]) Close() error { return nil }

func (a *Array[E]) String() string { return a.describe("array") }

// Array2D is an Array with the row stride precomputed.
type Array2D[E Element] struct {
	*Array[E]
	w int
}

func (a *Array2D[E]) FlatIndex(pos []int) int {
	return pos[0] + pos[1]*a.w
}

func (a *Array2D[E]) PositionToIndex(pos []int) (slice, index int) {
	return 0, pos[0] + pos[1]*a.w
}

func (a *Array2D[E]) IndexToPosition(slice, index int, pos []int) {
	pos[1] = index / a.w
	pos[0] = index - pos[1]*a.w
}

// Array3D is an Array with the row and plane strides precomputed.
type Array3D[E Element] struct {
	*Array[E]
	w, wh int
}

func (a *Array3D[E]) FlatIndex(pos []int) int {
	return pos[0] + pos[1]*a.w + pos[2]*a.wh
}

func (a *Array3D[E]) PositionToIndex(pos []int) (slice, index int) {
	return 0, pos[0] + pos[1]*a.w + pos[2]*a.wh
}

func (a *Array3D[E]) IndexToPosition(slice, index int, pos []int) {
	pos[2] = index / a.wh
	index -= pos[2] * a.wh
	pos[1] = index / a.w
	pos[0] = index - pos[1]*a.w
}

func (a *Array3D[E]) String() string { return a.describe("3d array") }
