/*
Package outofbounds decides what a cursor reads once it leaves the image.

A Strategy either supplies a value of its own (the constant strategies) or maps
the outside position onto a position inside the image (mirror, periodic and
extend).  Cursor wraps a by-dim cursor and consults its strategy on every move
that leaves or re-enters the image, so algorithms can walk windows across the
border without special cases.
*/
package outofbounds

import (
	"fmt"
	"sort"
	"strings"

	"github.com/janelia-flyem/ndimg/types"
)

// Strategy maps positions outside an image of extent dims.
type Strategy[T any] interface {
	// Map writes the inside position to read for the outside position pos into
	// dst and returns true, or returns false if Value should be read instead.
	Map(pos, dims, dst []int) bool

	// Value returns the proxy read where Map returns false.
	Value() T
}

// Factory builds a strategy for cursors whose linked proxy is linked.
type Factory[T any] interface {
	Create(linked T) Strategy[T]
	String() string
}

// valueStrategy hands out a scratch variable refreshed from a private
// constant, so writes through Value never change later reads.
type valueStrategy[T types.Type[T]] struct {
	constant T
	scratch  T
}

func newValueStrategy[T types.Type[T]](v T) *valueStrategy[T] {
	return &valueStrategy[T]{constant: v, scratch: v.Clone()}
}

func (s *valueStrategy[T]) Map(pos, dims, dst []int) bool { return false }

func (s *valueStrategy[T]) Value() T {
	s.scratch.Set(s.constant)
	return s.scratch
}

// ValueFactory returns a fixed value outside the image.
type ValueFactory[T types.Type[T]] struct {
	value T
	zero  bool
}

// NewValueFactory returns a factory whose strategies read a copy of v.
func NewValueFactory[T types.Type[T]](v T) *ValueFactory[T] {
	return &ValueFactory[T]{value: v.Clone()}
}

// NewZeroFactory returns a factory whose strategies read the kind's default
// value, which is zero for every numeric kind.
func NewZeroFactory[T types.Type[T]]() *ValueFactory[T] {
	return &ValueFactory[T]{zero: true}
}

func (f *ValueFactory[T]) Create(linked T) Strategy[T] {
	if f.zero {
		return newValueStrategy(linked.CreateVariable())
	}
	return newValueStrategy(f.value.Clone())
}

func (f *ValueFactory[T]) String() string {
	if f.zero {
		return "zero"
	}
	return "value " + f.value.String()
}

// mapStrategy applies a 1-D coordinate mapping independently per dimension.
type mapStrategy[T any] struct {
	fn func(p, n int) int
}

func (s *mapStrategy[T]) Map(pos, dims, dst []int) bool {
	for d, p := range pos {
		dst[d] = s.fn(p, dims[d])
	}
	return true
}

func (s *mapStrategy[T]) Value() T {
	var t T
	return t
}

// MappingFactory builds strategies that read inside pixels for outside positions.
type MappingFactory[T any] struct {
	name string
	fn   func(p, n int) int
}

func (f *MappingFactory[T]) Create(linked T) Strategy[T] { return &mapStrategy[T]{fn: f.fn} }
func (f *MappingFactory[T]) String() string              { return f.name }

// NewMirrorDoubleFactory mirrors at the border repeating the edge pixel, so
// -1 reads 0 and n reads n-1.
func NewMirrorDoubleFactory[T any]() *MappingFactory[T] {
	return &MappingFactory[T]{name: "mirror", fn: mirrorDouble}
}

// NewMirrorSingleFactory mirrors at the border without repeating the edge
// pixel, so -1 reads 1 and n reads n-2.
func NewMirrorSingleFactory[T any]() *MappingFactory[T] {
	return &MappingFactory[T]{name: "mirror-single", fn: mirrorSingle}
}

// NewPeriodicFactory wraps outside positions around the image.
func NewPeriodicFactory[T any]() *MappingFactory[T] {
	return &MappingFactory[T]{name: "periodic", fn: mod}
}

// NewExtendFactory clamps outside positions to the nearest border pixel.
func NewExtendFactory[T any]() *MappingFactory[T] {
	return &MappingFactory[T]{name: "extend", fn: clamp}
}

func mod(p, n int) int {
	q := p % n
	if q < 0 {
		q += n
	}
	return q
}

func mirrorDouble(p, n int) int {
	q := mod(p, 2*n)
	if q >= n {
		q = 2*n - 1 - q
	}
	return q
}

func mirrorSingle(p, n int) int {
	if n == 1 {
		return 0
	}
	q := mod(p, 2*n-2)
	if q >= n {
		q = 2*n - 2 - q
	}
	return q
}

func clamp(p, n int) int {
	switch {
	case p < 0:
		return 0
	case p >= n:
		return n - 1
	}
	return p
}

// ParseFactory returns the factory with the given name: zero, mirror,
// mirror-single, periodic or extend.
func ParseFactory[T types.Type[T]](name string) (Factory[T], error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "zero", "value":
		return NewZeroFactory[T](), nil
	case "mirror", "mirror-double":
		return NewMirrorDoubleFactory[T](), nil
	case "mirror-single":
		return NewMirrorSingleFactory[T](), nil
	case "periodic":
		return NewPeriodicFactory[T](), nil
	case "extend":
		return NewExtendFactory[T](), nil
	}
	return nil, fmt.Errorf("unknown out-of-bounds strategy %q, expected one of %s", name, strings.Join(FactoryNames(), ", "))
}

// FactoryNames lists the names accepted by ParseFactory.
func FactoryNames() []string {
	names := []string{"zero", "mirror", "mirror-single", "periodic", "extend"}
	sort.Strings(names)
	return names
}
