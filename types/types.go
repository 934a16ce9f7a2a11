/*
Package types defines the value proxies used to read and write pixels.

A proxy is bound either to a container slice plus an index ("linked") or to a
private single-pixel buffer ("variable").  Cursors move linked proxies through
a container with UpdateContainer and the index methods, so reading a pixel
never allocates.  CreateVariable and Clone produce detached proxies that stay
valid after the cursor that produced them is closed.
*/
package types

import "github.com/janelia-flyem/ndimg/storage"

// Type is the contract shared by every pixel kind.  T is the concrete pointer
// type, e.g., *FloatType.
type Type[T any] interface {
	// CreateSuitableContainer creates a container able to hold this kind and a
	// proxy linked to it.
	CreateSuitableContainer(f storage.Factory, dims []int) (storage.Container, T, error)

	// DuplicateTypeOnSameContainer returns a new proxy linked to the same
	// container and not yet bound to a slice.
	DuplicateTypeOnSameContainer() T

	// UpdateContainer binds the proxy to a container slice.  A negative id
	// releases the current binding.
	UpdateContainer(slice int)

	UpdateIndex(i int)
	Index() int
	IncIndex()
	IncIndexBy(n int)
	DecIndex()
	DecIndexBy(n int)

	// CreateVariable returns a detached proxy holding the default value.
	CreateVariable() T

	// Clone returns a detached proxy holding the current value.
	Clone() T

	// Set copies the value of c.
	Set(c T)

	String() string
}

// NumericType adds arithmetic against the same kind and against scalars.
type NumericType[T any] interface {
	Type[T]
	SetZero()
	SetOne()
	Add(c T)
	Sub(c T)
	Mul(c T)
	Div(c T)
	AddScalar(v float64)
	SubScalar(v float64)
	MulScalar(v float64)
	DivScalar(v float64)
}

// ComparableType is implemented by totally ordered kinds.
type ComparableType[T any] interface {
	Type[T]

	// CompareTo returns -1, 0 or 1.
	CompareTo(c T) int
}

// RealValued kinds expose a floating-point projection of their value.
type RealValued[T any] interface {
	Type[T]
	GetRealDouble() float64
	SetReal(v float64)
}

// ComplexType is implemented by every numeric kind; real kinds have a zero
// imaginary part.
type ComplexType[T any] interface {
	NumericType[T]
	GetRealDouble() float64
	SetReal(v float64)
	GetImaginaryDouble() float64
	SetImaginary(v float64)
	SetComplexNumber(re, im float64)
	GetPowerDouble() float64
	GetPhaseDouble() float64
}

// RealType is a totally ordered numeric kind with a representable range.
type RealType[T any] interface {
	ComplexType[T]
	ComparableType[T]
	GetMaxValue() float64
	GetMinValue() float64
	Inc()
	Dec()
}

// link is the binding shared by proxies over a container of primitives E.
type link[E storage.Element] struct {
	store storage.Sliced[E]
	slice int
	data  []E
	i     int
}

func (l *link[E]) bind(c storage.Container) bool {
	store, ok := c.(storage.Sliced[E])
	if !ok {
		return false
	}
	l.store = store
	l.slice = -1
	return true
}

func (l *link[E]) UpdateContainer(slice int) {
	if l.store == nil || slice == l.slice {
		return
	}
	if l.slice >= 0 {
		l.store.Release(l.slice)
	}
	l.slice = slice
	if slice < 0 {
		l.data = nil
		return
	}
	l.data = l.store.Acquire(slice)
}

func (l *link[E]) UpdateIndex(i int) { l.i = i }
func (l *link[E]) Index() int        { return l.i }
func (l *link[E]) IncIndex()         { l.i++ }
func (l *link[E]) IncIndexBy(n int)  { l.i += n }
func (l *link[E]) DecIndex()         { l.i-- }
func (l *link[E]) DecIndexBy(n int)  { l.i -= n }

// IsVariable returns true for a detached proxy.
func (l *link[E]) IsVariable() bool { return l.store == nil }

var (
	_ RealType[*FloatType]           = (*FloatType)(nil)
	_ RealType[*UnsignedByteType]    = (*UnsignedByteType)(nil)
	_ RealType[*BitType]             = (*BitType)(nil)
	_ RealType[*Unsigned12BitType]   = (*Unsigned12BitType)(nil)
	_ ComplexType[*ComplexFloatType] = (*ComplexFloatType)(nil)
)
