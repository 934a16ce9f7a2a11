package cursor

import (
	"sync"

	"github.com/janelia-flyem/ndimg/ndimg"
	"github.com/janelia-flyem/ndimg/storage"
	"github.com/janelia-flyem/ndimg/types"
)

// SpecialSlot guards the single region of interest or neighborhood cursor a
// positionable cursor may have open at a time.
type SpecialSlot struct {
	mu    sync.Mutex
	taken bool
}

// Acquire takes the slot, returning false if it is already taken.
func (s *SpecialSlot) Acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.taken {
		return false
	}
	s.taken = true
	return true
}

func (s *SpecialSlot) Release() {
	s.mu.Lock()
	s.taken = false
	s.mu.Unlock()
}

// ByDim is a localizable cursor that can also move along any dimension.  A
// move that stays inside the current slice only adjusts the storage index;
// crossing into another slice re-resolves the position through the container.
// Positions must stay inside the image; use an out-of-bounds cursor otherwise.
type ByDim[T types.Type[T]] struct {
	Localizing[T]
	slot  SpecialSlot
	tmp   []int
	moves int
}

// NewByDim returns a positionable cursor over c.
func NewByDim[T types.Type[T]](c storage.Container, linked T) *ByDim[T] {
	b := &ByDim[T]{}
	b.initLocalizing(c, linked)
	b.tmp = make([]int, c.NumDimensions())
	b.Reset()
	return b
}

// Move moves the cursor by steps along dimension d.
func (b *ByDim[T]) Move(steps, d int) {
	if steps == 0 {
		return
	}
	b.moves++
	p := b.pos[d] + steps
	b.pos[d] = p
	if p >= b.origin[d] && p < b.origin[d]+b.sdims[d] {
		delta := steps * b.ssteps[d]
		b.idx += delta
		b.t.IncIndexBy(delta)
		return
	}
	b.relocate()
}

func (b *ByDim[T]) FwdDim(d int) { b.Move(1, d) }

func (b *ByDim[T]) BckDim(d int) { b.Move(-1, d) }

// relocate resolves the current position into a slice and index.
func (b *ByDim[T]) relocate() {
	slice, idx := b.c.PositionToIndex(b.pos)
	if slice != b.slice {
		b.slice = slice
		b.loadSlice(slice)
		b.t.UpdateContainer(slice)
	}
	b.idx = idx
	b.t.UpdateIndex(idx)
}

// MoveTo moves to pos with one Move per dimension whose coordinate differs.
func (b *ByDim[T]) MoveTo(pos []int) {
	for d, p := range pos {
		b.Move(p-b.pos[d], d)
	}
}

func (b *ByDim[T]) MoveRel(vec []int) {
	for d, steps := range vec {
		b.Move(steps, d)
	}
}

func (b *ByDim[T]) MoveToLocalizable(l Localizable) {
	l.Position(b.tmp)
	b.MoveTo(b.tmp)
}

// SetPosition places the cursor at pos by resolving it directly.
func (b *ByDim[T]) SetPosition(pos []int) {
	copy(b.pos, pos)
	b.relocate()
}

func (b *ByDim[T]) SetPositionDim(p, d int) {
	b.pos[d] = p
	b.relocate()
}

// MoveCount returns the number of elementary moves performed so far.
func (b *ByDim[T]) MoveCount() int { return b.moves }

// CreateRegionOfInterestCursor returns a cursor over the box [offset, offset+size)
// that moves this cursor.  It returns nil if another region of interest or
// neighborhood cursor is still open.
func (b *ByDim[T]) CreateRegionOfInterestCursor(offset, size []int) *RegionOfInterest[T] {
	if !b.slot.Acquire() {
		ndimg.Warningf("cursor already has an open region of interest or neighborhood cursor; close it first\n")
		return nil
	}
	return NewRegionOfInterest[T](b, &b.slot, offset, size)
}

// CreateLocalNeighborhoodCursor returns a cursor over the 2*d direct neighbors of
// the current position, or nil if another special cursor is open.  A ByDim
// cannot step outside the image, so it also returns nil when the center lies on
// the image border; use an out-of-bounds cursor there.  The same holds for
// centers chosen later through Update.
func (b *ByDim[T]) CreateLocalNeighborhoodCursor() *Neighborhood[T] {
	for d, p := range b.pos {
		if p <= 0 || p >= b.dims[d]-1 {
			ndimg.Warningf("neighborhood of %v would leave the image of extent %v; use an out-of-bounds cursor\n", b.pos, b.dims)
			return nil
		}
	}
	if !b.slot.Acquire() {
		ndimg.Warningf("cursor already has an open region of interest or neighborhood cursor; close it first\n")
		return nil
	}
	return NewNeighborhood[T](b, &b.slot)
}

var (
	_ LocalizableCursor[*types.FloatType]      = (*Localizing[*types.FloatType])(nil)
	_ LocalizableByDimCursor[*types.FloatType] = (*ByDim[*types.FloatType])(nil)
	_ LocalizableCursor[*types.FloatType]      = (*Plane[*types.FloatType])(nil)
)
