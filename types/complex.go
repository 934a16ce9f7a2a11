package types

import (
	"fmt"
	"math"

	"github.com/janelia-flyem/ndimg/storage"
)

// Complex stores a complex pixel as two consecutive primitives, real part first.
type Complex[E ~float32 | ~float64] struct {
	link[E]
}

type (
	ComplexFloatType  = Complex[float32]
	ComplexDoubleType = Complex[float64]
)

// NewComplex returns a variable holding re + im*i.
func NewComplex[E ~float32 | ~float64](re, im E) *Complex[E] {
	return &Complex[E]{link[E]{slice: -1, data: []E{re, im}}}
}

func (z *Complex[E]) CreateSuitableContainer(f storage.Factory, dims []int) (storage.Container, *Complex[E], error) {
	c, err := f.Create(storage.DataTypeOf[E](), dims, 2)
	if err != nil {
		return nil, nil, err
	}
	linked := &Complex[E]{}
	if !linked.bind(c) {
		c.Close()
		return nil, nil, fmt.Errorf("%s does not hold complex %s pixels", c, storage.DataTypeOf[E]())
	}
	return c, linked, nil
}

func (z *Complex[E]) DuplicateTypeOnSameContainer() *Complex[E] {
	if z.store == nil {
		return &Complex[E]{link[E]{slice: -1, data: z.data}}
	}
	return &Complex[E]{link[E]{store: z.store, slice: -1}}
}

func (z *Complex[E]) CreateVariable() *Complex[E] { return NewComplex[E](0, 0) }

func (z *Complex[E]) Clone() *Complex[E] {
	re, im := z.parts()
	return NewComplex(re, im)
}

func (z *Complex[E]) parts() (re, im E) {
	return z.data[2*z.i], z.data[2*z.i+1]
}

func (z *Complex[E]) setParts(re, im E) {
	z.data[2*z.i] = re
	z.data[2*z.i+1] = im
}

func (z *Complex[E]) Set(c *Complex[E]) { z.setParts(c.parts()) }

func (z *Complex[E]) String() string {
	re, im := z.parts()
	return fmt.Sprintf("(%v,%vi)", re, im)
}

func (z *Complex[E]) SetZero() { z.setParts(0, 0) }
func (z *Complex[E]) SetOne()  { z.setParts(1, 0) }

func (z *Complex[E]) Add(c *Complex[E]) {
	a, b := z.parts()
	x, y := c.parts()
	z.setParts(a+x, b+y)
}

func (z *Complex[E]) Sub(c *Complex[E]) {
	a, b := z.parts()
	x, y := c.parts()
	z.setParts(a-x, b-y)
}

func (z *Complex[E]) Mul(c *Complex[E]) {
	a, b := z.parts()
	x, y := c.parts()
	z.setParts(a*x-b*y, a*y+b*x)
}

func (z *Complex[E]) Div(c *Complex[E]) {
	a, b := z.parts()
	x, y := c.parts()
	d := x*x + y*y
	z.setParts((a*x+b*y)/d, (b*x-a*y)/d)
}

// AddScalar and SubScalar act on the real part; MulScalar and DivScalar scale both parts.
func (z *Complex[E]) AddScalar(v float64) {
	re, im := z.parts()
	z.setParts(E(float64(re)+v), im)
}

func (z *Complex[E]) SubScalar(v float64) {
	re, im := z.parts()
	z.setParts(E(float64(re)-v), im)
}

func (z *Complex[E]) MulScalar(v float64) {
	re, im := z.parts()
	z.setParts(E(float64(re)*v), E(float64(im)*v))
}

func (z *Complex[E]) DivScalar(v float64) {
	re, im := z.parts()
	z.setParts(E(float64(re)/v), E(float64(im)/v))
}

func (z *Complex[E]) GetRealDouble() float64      { return float64(z.data[2*z.i]) }
func (z *Complex[E]) SetReal(v float64)           { z.data[2*z.i] = E(v) }
func (z *Complex[E]) GetImaginaryDouble() float64 { return float64(z.data[2*z.i+1]) }
func (z *Complex[E]) SetImaginary(v float64)      { z.data[2*z.i+1] = E(v) }

func (z *Complex[E]) SetComplexNumber(re, im float64) { z.setParts(E(re), E(im)) }

func (z *Complex[E]) GetPowerDouble() float64 {
	return math.Hypot(z.GetRealDouble(), z.GetImaginaryDouble())
}

func (z *Complex[E]) GetPhaseDouble() float64 {
	return math.Atan2(z.GetImaginaryDouble(), z.GetRealDouble())
}
