package interpolation

import (
	"math"
	"math/bits"

	"github.com/janelia-flyem/ndimg/image"
	"github.com/janelia-flyem/ndimg/outofbounds"
	"github.com/janelia-flyem/ndimg/types"
)

// kernel collapses the 2^d corner values v, indexed with bit d set for the
// upper neighbor along dimension d, using fractions t and their complements w.
// Products are converted explicitly so they are never fused; every kernel
// therefore rounds exactly like lerpN.
type kernel func(v, t, w []float64) float64

// kernels holds the specialized kernels by dimensionality.
var kernels = [...]kernel{1: lerp1, 2: lerp2, 3: lerp3}

func lerp1(v, t, w []float64) float64 {
	return float64(v[0]*w[0]) + float64(v[1]*t[0])
}

func lerp2(v, t, w []float64) float64 {
	r0 := float64(v[0]*w[0]) + float64(v[1]*t[0])
	r1 := float64(v[2]*w[0]) + float64(v[3]*t[0])
	return float64(r0*w[1]) + float64(r1*t[1])
}

func lerp3(v, t, w []float64) float64 {
	r00 := float64(v[0]*w[0]) + float64(v[1]*t[0])
	r01 := float64(v[2]*w[0]) + float64(v[3]*t[0])
	r10 := float64(v[4]*w[0]) + float64(v[5]*t[0])
	r11 := float64(v[6]*w[0]) + float64(v[7]*t[0])
	s0 := float64(r00*w[1]) + float64(r01*t[1])
	s1 := float64(r10*w[1]) + float64(r11*t[1])
	return float64(s0*w[2]) + float64(s1*t[2])
}

// lerpN collapses one dimension at a time, overwriting v.
func lerpN(v, t, w []float64) float64 {
	n := len(v)
	for d := range t {
		n >>= 1
		for i := 0; i < n; i++ {
			v[i] = float64(v[2*i]*w[d]) + float64(v[2*i+1]*t[d])
		}
	}
	return v[0]
}

// corners holds the per-position state of a linear interpolator.
type corners struct {
	t, w  []float64
	k     kernel
	tmp   []float64
	exact uint // bit d set when the position lies on the lattice along d
}

func newCorners(n int) corners {
	c := corners{
		t:   make([]float64, n),
		w:   make([]float64, n),
		tmp: make([]float64, 1<<n),
	}
	if n < len(kernels) {
		c.k = kernels[n]
	}
	return c
}

// split sets the lattice base and the fractional weights for pos.
func (c *corners) split(pos []float32, lattice []int) {
	c.exact = 0
	for d, p := range pos {
		f := math.Floor(float64(p))
		lattice[d] = int(f)
		c.t[d] = float64(p) - f
		c.w[d] = 1 - c.t[d]
		if c.t[d] == 0 {
			c.exact |= 1 << d
		}
	}
}

// combine collapses the corner values v.  Upper corners along dimensions where
// the position is on the lattice carry no weight and are zeroed first, so an
// infinite or NaN neighbor never leaks into an exact sample.
func (c *corners) combine(v []float64) float64 {
	if c.exact != 0 {
		for i := range v {
			if uint(i)&c.exact != 0 {
				v[i] = 0
			}
		}
	}
	if c.k != nil {
		return c.k(v, c.t, c.w)
	}
	copy(c.tmp, v)
	return lerpN(c.tmp, c.t, c.w)
}

// visitCorners moves cur over the 2^n corners of the lattice cell in Gray code
// order, one elementary move per corner, calling fn with each corner index.
// The cursor ends back on the lattice base.
func visitCorners[T types.Type[T]](cur *outofbounds.Cursor[T], n int, fn func(k int)) {
	fn(0)
	prev := 0
	for k := 1; k < 1<<n; k++ {
		g := k ^ (k >> 1)
		d := bits.TrailingZeros(uint(g ^ prev))
		if g&(1<<d) != 0 {
			cur.FwdDim(d)
		} else {
			cur.BckDim(d)
		}
		fn(g)
		prev = g
	}
	if n > 0 {
		cur.BckDim(n - 1)
	}
}

// Linear interpolates the real value multilinearly from the 2^d lattice
// neighbors.  The result is written into a variable of the image's kind, so
// integer kinds round.
type Linear[T types.RealValued[T]] struct {
	base[T]
	corners
	out  T
	vals []float64
}

// NewLinear returns a linear interpolator over img placed at the origin.  A nil
// f reads zero outside the image.
func NewLinear[T types.RealValued[T]](img *image.Image[T], f outofbounds.Factory[T]) *Linear[T] {
	n := img.NumDimensions()
	l := &Linear[T]{
		base:    newBase(img, f),
		corners: newCorners(n),
		out:     img.CreateType(),
		vals:    make([]float64, 1<<n),
	}
	l.update = l.locate
	l.locate(true)
	return l
}

func (l *Linear[T]) locate(direct bool) {
	l.split(l.pos, l.lattice)
	l.seek(direct)
	visitCorners(l.cur, len(l.pos), l.sample)
	l.out.SetReal(l.combine(l.vals))
}

func (l *Linear[T]) sample(k int) {
	l.vals[k] = l.cur.Type().GetRealDouble()
}

// Type returns the interpolated value.  It is a variable owned by the
// interpolator and overwritten on the next move.
func (l *Linear[T]) Type() T { return l.out }

// LinearFactory creates linear interpolators.
type LinearFactory[T types.RealValued[T]] struct {
	OutOfBounds outofbounds.Factory[T]
}

func NewLinearFactory[T types.RealValued[T]](f outofbounds.Factory[T]) *LinearFactory[T] {
	return &LinearFactory[T]{OutOfBounds: f}
}

func (f *LinearFactory[T]) Create(img *image.Image[T]) Interpolator[T] {
	return NewLinear(img, f.OutOfBounds)
}

// LinearComplex interpolates the real and imaginary parts of complex kinds
// independently.
type LinearComplex[T types.ComplexType[T]] struct {
	base[T]
	corners
	out    T
	re, im []float64
}

func NewLinearComplex[T types.ComplexType[T]](img *image.Image[T], f outofbounds.Factory[T]) *LinearComplex[T] {
	n := img.NumDimensions()
	l := &LinearComplex[T]{
		base:    newBase(img, f),
		corners: newCorners(n),
		out:     img.CreateType(),
		re:      make([]float64, 1<<n),
		im:      make([]float64, 1<<n),
	}
	l.update = l.locate
	l.locate(true)
	return l
}

func (l *LinearComplex[T]) locate(direct bool) {
	l.split(l.pos, l.lattice)
	l.seek(direct)
	visitCorners(l.cur, len(l.pos), l.sample)
	l.out.SetComplexNumber(l.combine(l.re), l.combine(l.im))
}

func (l *LinearComplex[T]) sample(k int) {
	v := l.cur.Type()
	l.re[k] = v.GetRealDouble()
	l.im[k] = v.GetImaginaryDouble()
}

func (l *LinearComplex[T]) Type() T { return l.out }

// LinearComplexFactory creates linear interpolators for complex kinds.
type LinearComplexFactory[T types.ComplexType[T]] struct {
	OutOfBounds outofbounds.Factory[T]
}

func (f *LinearComplexFactory[T]) Create(img *image.Image[T]) Interpolator[T] {
	return NewLinearComplex(img, f.OutOfBounds)
}

var (
	_ Interpolator1D[*types.FloatType]        = (*NearestNeighbor[*types.FloatType])(nil)
	_ Interpolator1D[*types.FloatType]        = (*Linear[*types.FloatType])(nil)
	_ Interpolator1D[*types.ComplexFloatType] = (*LinearComplex[*types.ComplexFloatType])(nil)
)
