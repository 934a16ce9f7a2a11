package types

import (
	"fmt"
	"math"

	"github.com/janelia-flyem/ndimg/storage"
)

// Number is the proxy for pixel kinds holding one primitive per pixel.
type Number[E storage.Element] struct {
	link[E]
}

type (
	UnsignedByteType  = Number[uint8]
	ByteType          = Number[int8]
	UnsignedShortType = Number[uint16]
	ShortType         = Number[int16]
	UnsignedIntType   = Number[uint32]
	IntType           = Number[int32]
	UnsignedLongType  = Number[uint64]
	LongType          = Number[int64]
	FloatType         = Number[float32]
	DoubleType        = Number[float64]
)

// NewNumber returns a variable holding v.
func NewNumber[E storage.Element](v E) *Number[E] {
	n := &Number[E]{link[E]{slice: -1, data: []E{v}}}
	return n
}

// LinkNumber returns a proxy linked to an existing container of E.
func LinkNumber[E storage.Element](c storage.Container) (*Number[E], error) {
	n := &Number[E]{}
	if !n.bind(c) {
		return nil, fmt.Errorf("%s does not hold %s pixels", c, storage.DataTypeOf[E]())
	}
	return n, nil
}

func (n *Number[E]) CreateSuitableContainer(f storage.Factory, dims []int) (storage.Container, *Number[E], error) {
	c, err := f.Create(storage.DataTypeOf[E](), dims, 1)
	if err != nil {
		return nil, nil, err
	}
	linked, err := LinkNumber[E](c)
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return c, linked, nil
}

func (n *Number[E]) DuplicateTypeOnSameContainer() *Number[E] {
	if n.store == nil {
		return &Number[E]{link[E]{slice: -1, data: n.data}}
	}
	return &Number[E]{link[E]{store: n.store, slice: -1}}
}

func (n *Number[E]) CreateVariable() *Number[E] {
	var zero E
	return NewNumber(zero)
}

func (n *Number[E]) Clone() *Number[E] {
	return NewNumber(n.data[n.i])
}

// Value returns the primitive at the current binding.
func (n *Number[E]) Value() E { return n.data[n.i] }

// SetValue stores a primitive at the current binding.
func (n *Number[E]) SetValue(v E) { n.data[n.i] = v }

func (n *Number[E]) Set(c *Number[E]) { n.data[n.i] = c.data[c.i] }

func (n *Number[E]) String() string { return fmt.Sprint(n.data[n.i]) }

func (n *Number[E]) SetZero() { n.data[n.i] = 0 }
func (n *Number[E]) SetOne()  { n.data[n.i] = 1 }

func (n *Number[E]) Add(c *Number[E]) { n.data[n.i] += c.data[c.i] }
func (n *Number[E]) Sub(c *Number[E]) { n.data[n.i] -= c.data[c.i] }
func (n *Number[E]) Mul(c *Number[E]) { n.data[n.i] *= c.data[c.i] }
func (n *Number[E]) Div(c *Number[E]) { n.data[n.i] /= c.data[c.i] }

func (n *Number[E]) AddScalar(v float64) { n.SetReal(float64(n.data[n.i]) + v) }
func (n *Number[E]) SubScalar(v float64) { n.SetReal(float64(n.data[n.i]) - v) }
func (n *Number[E]) MulScalar(v float64) { n.SetReal(float64(n.data[n.i]) * v) }
func (n *Number[E]) DivScalar(v float64) { n.SetReal(float64(n.data[n.i]) / v) }

func (n *Number[E]) Inc() { n.data[n.i]++ }
func (n *Number[E]) Dec() { n.data[n.i]-- }

func (n *Number[E]) CompareTo(c *Number[E]) int {
	a, b := n.data[n.i], c.data[c.i]
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (n *Number[E]) GetRealDouble() float64 { return float64(n.data[n.i]) }

// SetReal stores v, rounding half away from zero for integer kinds.
func (n *Number[E]) SetReal(v float64) { n.data[n.i] = fromFloat[E](v) }

func (n *Number[E]) GetImaginaryDouble() float64 { return 0 }
func (n *Number[E]) SetImaginary(v float64)      {}

func (n *Number[E]) SetComplexNumber(re, im float64) { n.SetReal(re) }

func (n *Number[E]) GetPowerDouble() float64 { return math.Abs(float64(n.data[n.i])) }

func (n *Number[E]) GetPhaseDouble() float64 {
	if n.data[n.i] < 0 {
		return math.Pi
	}
	return 0
}

func (n *Number[E]) GetMaxValue() float64 {
	max, _ := valueRange[E]()
	return max
}

func (n *Number[E]) GetMinValue() float64 {
	_, min := valueRange[E]()
	return min
}

func isFloat[E storage.Element]() bool {
	var e E
	switch any(e).(type) {
	case float32, float64:
		return true
	}
	return false
}

func fromFloat[E storage.Element](v float64) E {
	if isFloat[E]() {
		return E(v)
	}
	return E(math.Round(v))
}

func valueRange[E storage.Element]() (max, min float64) {
	var e E
	switch any(e).(type) {
	case uint8:
		return math.MaxUint8, 0
	case int8:
		return math.MaxInt8, math.MinInt8
	case uint16:
		return math.MaxUint16, 0
	case int16:
		return math.MaxInt16, math.MinInt16
	case uint32:
		return math.MaxUint32, 0
	case int32:
		return math.MaxInt32, math.MinInt32
	case uint64:
		return math.MaxUint64, 0
	case int64:
		return math.MaxInt64, math.MinInt64
	case float32:
		return math.MaxFloat32, -math.MaxFloat32
	}
	return math.MaxFloat64, -math.MaxFloat64
}
