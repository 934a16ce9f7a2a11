// Package interpolation reads images at real-valued positions.
package interpolation

import (
	"math"

	"github.com/janelia-flyem/ndimg/image"
	"github.com/janelia-flyem/ndimg/outofbounds"
	"github.com/janelia-flyem/ndimg/types"
)

// Interpolator reads an image at a real-valued position.  Positions may lie
// outside the image; samples there come from the out-of-bounds strategy.
type Interpolator[T types.Type[T]] interface {
	// SetPosition places the interpolator at pos, resolving it directly.
	SetPosition(pos []float32)

	// MoveTo reaches pos by moving from the current position, which is cheaper
	// for nearby targets.
	MoveTo(pos []float32)

	MoveRel(vec []float32)
	Position(pos []float32)

	// Type returns the value at the current position.  It is valid until the
	// next move.
	Type() T

	Image() *image.Image[T]
	Close()
}

// Interpolator1D adds scalar accessors for the first dimension, which avoid
// building a position slice for 1-d images.
type Interpolator1D[T types.Type[T]] interface {
	Interpolator[T]
	SetPosition1(x float32)
	MoveTo1(x float32)
	MoveRel1(x float32)
	X() float32
}

// Factory creates interpolators over images of kind T.
type Factory[T types.Type[T]] interface {
	Create(img *image.Image[T]) Interpolator[T]
}

// base holds the position bookkeeping shared by every interpolator.  update
// recomputes the sample after pos changed.
type base[T types.Type[T]] struct {
	img     *image.Image[T]
	cur     *outofbounds.Cursor[T]
	pos     []float32
	lattice []int
	update  func(direct bool)
}

func newBase[T types.Type[T]](img *image.Image[T], f outofbounds.Factory[T]) base[T] {
	if f == nil {
		f = outofbounds.NewZeroFactory[T]()
	}
	n := img.NumDimensions()
	return base[T]{
		img:     img,
		cur:     img.CreateLocalizableByDimCursorOut(f),
		pos:     make([]float32, n),
		lattice: make([]int, n),
	}
}

// seek moves the cursor to the lattice position.
func (b *base[T]) seek(direct bool) {
	if direct {
		b.cur.SetPosition(b.lattice)
	} else {
		b.cur.MoveTo(b.lattice)
	}
}

func (b *base[T]) SetPosition(pos []float32) {
	copy(b.pos, pos)
	b.update(true)
}

func (b *base[T]) MoveTo(pos []float32) {
	copy(b.pos, pos)
	b.update(false)
}

func (b *base[T]) MoveRel(vec []float32) {
	for d, v := range vec {
		b.pos[d] += v
	}
	b.update(false)
}

func (b *base[T]) SetPosition1(x float32) {
	b.pos[0] = x
	b.update(true)
}

func (b *base[T]) MoveTo1(x float32) {
	b.pos[0] = x
	b.update(false)
}

func (b *base[T]) MoveRel1(x float32) {
	b.pos[0] += x
	b.update(false)
}

func (b *base[T]) Position(pos []float32) { copy(pos, b.pos) }

func (b *base[T]) X() float32 { return b.pos[0] }
func (b *base[T]) Y() float32 { return b.pos[1] }
func (b *base[T]) Z() float32 { return b.pos[2] }

func (b *base[T]) Image() *image.Image[T] { return b.img }

func (b *base[T]) Close() { b.cur.Close() }

// round returns the nearest lattice coordinate, rounding halves up so that
// k+0.5 maps to k+1 and -0.5 maps to 0.
func round(x float32) int {
	return int(math.Floor(float64(x) + 0.5))
}
