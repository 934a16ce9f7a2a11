package cursor

import (
	"github.com/janelia-flyem/ndimg/ndimg"
	"github.com/janelia-flyem/ndimg/storage"
	"github.com/janelia-flyem/ndimg/types"
)

// Plane visits one 2-d plane of an image, dimension A fastest.  The remaining
// coordinates are fixed by the position passed to ResetPlane.
type Plane[T types.Type[T]] struct {
	inner        *ByDim[T]
	dimA, dimB   int
	sizeA, sizeB int
	a            int
	origin       []int
	count        int
	total        int
}

// NewPlane returns a plane cursor over c, initially on the XY plane at the origin.
func NewPlane[T types.Type[T]](c storage.Container, linked T) *Plane[T] {
	p := &Plane[T]{
		inner:  NewByDim(c, linked),
		origin: make([]int, c.NumDimensions()),
	}
	p.ResetPlane(0, 1, p.origin)
	return p
}

// ResetPlane selects the plane spanned by dimensions dimA and dimB through pos.
// A dimB beyond the image dimensionality selects a single line.
func (p *Plane[T]) ResetPlane(dimA, dimB int, pos []int) {
	dims := p.inner.dims
	copy(p.origin, pos)
	p.dimA, p.dimB = dimA, dimB
	p.origin[dimA] = 0
	p.sizeA = dims[dimA]
	p.sizeB = 1
	if dimB < len(dims) {
		p.origin[dimB] = 0
		p.sizeB = dims[dimB]
	}
	p.total = p.sizeA * p.sizeB
	p.Reset()
}

// ResetShape selects a plane by name, e.g., ndimg.XZ.
func (p *Plane[T]) ResetShape(shape ndimg.DataShape, pos []int) {
	a, b := shape.PlaneAxes()
	p.ResetPlane(a, b, pos)
}

func (p *Plane[T]) Reset() {
	p.count = 0
	p.a = 0
}

func (p *Plane[T]) HasNext() bool { return p.count < p.total }

func (p *Plane[T]) Fwd() {
	switch {
	case p.count == 0:
		p.inner.MoveTo(p.origin)
	case p.a+1 < p.sizeA:
		p.a++
		p.inner.FwdDim(p.dimA)
	default:
		p.a = 0
		p.inner.Move(1-p.sizeA, p.dimA)
		p.inner.FwdDim(p.dimB)
	}
	p.count++
}

func (p *Plane[T]) Type() T { return p.inner.Type() }

func (p *Plane[T]) Close() { p.inner.Close() }

func (p *Plane[T]) IsActive() bool { return p.inner.IsActive() }

func (p *Plane[T]) NumDimensions() int { return p.inner.NumDimensions() }

func (p *Plane[T]) Dimensions() []int { return p.inner.Dimensions() }

func (p *Plane[T]) Position(pos []int) { p.inner.Position(pos) }

func (p *Plane[T]) PositionDim(d int) int { return p.inner.PositionDim(d) }

// PlaneDims returns the dimensions spanning the current plane.
func (p *Plane[T]) PlaneDims() (dimA, dimB int) { return p.dimA, p.dimB }

// JumpFwd is equivalent to calling Fwd steps times.
func (p *Plane[T]) JumpFwd(steps int) {
	for ; steps > 0; steps-- {
		p.Fwd()
	}
}

func (p *Plane[T]) StorageIndex() int { return p.inner.StorageIndex() }

func (p *Plane[T]) Container() storage.Container { return p.inner.Container() }
