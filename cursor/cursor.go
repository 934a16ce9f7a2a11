/*
Package cursor implements traversal of image containers.

Every cursor keeps a value proxy bound to its current pixel.  Cursors start
positioned before the first pixel; Fwd moves to the next pixel in the
container's native order and must only be called while HasNext is true.
Close releases the proxy's binding and, for region of interest and
neighborhood cursors, the parent's special cursor slot.

Cursors are not safe for concurrent use.  Parallel code creates one cursor per
goroutine.
*/
package cursor

import (
	"github.com/janelia-flyem/ndimg/storage"
	"github.com/janelia-flyem/ndimg/types"
)

// Iterator is the traversal protocol shared by all cursors.
type Iterator[T any] interface {
	HasNext() bool
	Fwd()
	Reset()
	Close()

	// Type returns the proxy bound to the current pixel.  Re-fetch it after
	// each move; out-of-bounds cursors may return a different proxy.
	Type() T
}

// Cursor visits every pixel of a container.
type Cursor[T any] interface {
	Iterator[T]
	JumpFwd(steps int)
	IsActive() bool
	StorageIndex() int
	Container() storage.Container
}

// Localizable exposes an N-d position.
type Localizable interface {
	NumDimensions() int
	Dimensions() []int
	Position(pos []int)
	PositionDim(d int) int
}

// LocalizableCursor is a cursor that knows its position.
type LocalizableCursor[T any] interface {
	Cursor[T]
	Localizable
}

// Positioner can be moved to arbitrary positions.  It is the parent of region
// of interest and neighborhood cursors.
type Positioner[T any] interface {
	Localizable
	Type() T
	FwdDim(d int)
	BckDim(d int)
	Move(steps, d int)
	MoveTo(pos []int)
	SetPosition(pos []int)
}

// LocalizableByDimCursor can step along any dimension and seek to positions.
type LocalizableByDimCursor[T any] interface {
	LocalizableCursor[T]
	Positioner[T]
	MoveRel(vec []int)
	MoveToLocalizable(l Localizable)
	SetPositionDim(p, d int)
	CreateRegionOfInterestCursor(offset, size []int) *RegionOfInterest[T]
	CreateLocalNeighborhoodCursor() *Neighborhood[T]
}

// Basic walks the slices of a container in order without tracking position.
type Basic[T types.Type[T]] struct {
	c         storage.Container
	t         T
	slice     int
	idx       int
	sliceSize int
	numSlices int
	active    bool
}

// NewBasic returns a cursor over c with its own proxy duplicated from linked.
func NewBasic[T types.Type[T]](c storage.Container, linked T) *Basic[T] {
	b := &Basic[T]{}
	b.init(c, linked)
	b.Reset()
	return b
}

func (b *Basic[T]) init(c storage.Container, linked T) {
	b.c = c
	b.t = linked.DuplicateTypeOnSameContainer()
	b.numSlices = c.NumSlices()
	b.active = true
}

func (b *Basic[T]) Reset() {
	b.slice = 0
	b.idx = -1
	b.sliceSize = b.c.SliceSize(0)
	b.t.UpdateContainer(0)
	b.t.UpdateIndex(-1)
	b.active = true
}

func (b *Basic[T]) HasNext() bool {
	return b.idx < b.sliceSize-1 || b.slice < b.numSlices-1
}

func (b *Basic[T]) Fwd() {
	b.idx++
	if b.idx < b.sliceSize {
		b.t.IncIndex()
		return
	}
	b.slice++
	b.idx = 0
	b.sliceSize = b.c.SliceSize(b.slice)
	b.t.UpdateContainer(b.slice)
	b.t.UpdateIndex(0)
}

// jump advances the storage index by steps, returning true if the slice changed.
func (b *Basic[T]) jump(steps int) bool {
	b.idx += steps
	changed := false
	for b.idx >= b.sliceSize && b.slice < b.numSlices-1 {
		b.idx -= b.sliceSize
		b.slice++
		b.sliceSize = b.c.SliceSize(b.slice)
		changed = true
	}
	if changed {
		b.t.UpdateContainer(b.slice)
	}
	b.t.UpdateIndex(b.idx)
	return changed
}

// JumpFwd is equivalent to calling Fwd steps times.
func (b *Basic[T]) JumpFwd(steps int) {
	b.jump(steps)
}

func (b *Basic[T]) Close() {
	if !b.active {
		return
	}
	b.t.UpdateContainer(-1)
	b.active = false
}

func (b *Basic[T]) Type() T                      { return b.t }
func (b *Basic[T]) IsActive() bool               { return b.active }
func (b *Basic[T]) StorageIndex() int            { return b.idx }
func (b *Basic[T]) Container() storage.Container { return b.c }

// Slice returns the id of the container slice the cursor is in.
func (b *Basic[T]) Slice() int { return b.slice }
