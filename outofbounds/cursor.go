package outofbounds

import (
	"github.com/janelia-flyem/ndimg/cursor"
	"github.com/janelia-flyem/ndimg/ndimg"
	"github.com/janelia-flyem/ndimg/storage"
	"github.com/janelia-flyem/ndimg/types"
)

// Cursor is a by-dim cursor that may be positioned anywhere.  Inside the image
// it reads through its inner cursor; outside, its strategy either moves the
// inner cursor to a mapped position or supplies a value.  Type must be fetched
// again after every move since it may switch between the two.
//
// Native traversal with HasNext and Fwd continues from the inner cursor's
// position and always stays inside the image.
type Cursor[T types.Type[T]] struct {
	inner    *cursor.ByDim[T]
	strategy Strategy[T]
	dims     []int
	pos      []int
	tmp      []int
	outside  bool
	mapped   bool
	slot     cursor.SpecialSlot
	moves    int
}

// NewCursor returns an out-of-bounds aware cursor over c.
func NewCursor[T types.Type[T]](c storage.Container, linked T, f Factory[T]) *Cursor[T] {
	n := c.NumDimensions()
	oc := &Cursor[T]{
		inner:    cursor.NewByDim(c, linked),
		strategy: f.Create(linked),
		dims:     c.Dimensions(),
		pos:      make([]int, n),
		tmp:      make([]int, n),
	}
	oc.sync()
	return oc
}

// sync adopts the inner cursor's position.  Before the first Fwd the inner
// position lies outside the image, which reads as the strategy value.
func (c *Cursor[T]) sync() {
	c.inner.Position(c.pos)
	c.outside = !ndimg.InBounds(c.pos, c.dims)
	c.mapped = false
}

func (c *Cursor[T]) Reset() {
	c.inner.Reset()
	c.sync()
}

func (c *Cursor[T]) HasNext() bool { return c.inner.HasNext() }

func (c *Cursor[T]) Fwd() {
	c.inner.Fwd()
	c.sync()
}

func (c *Cursor[T]) JumpFwd(steps int) {
	c.inner.JumpFwd(steps)
	c.sync()
}

func (c *Cursor[T]) Close() { c.inner.Close() }

// Type returns the proxy to read at the current position.
func (c *Cursor[T]) Type() T {
	if c.outside && !c.mapped {
		return c.strategy.Value()
	}
	return c.inner.Type()
}

func (c *Cursor[T]) IsActive() bool               { return c.inner.IsActive() }
func (c *Cursor[T]) StorageIndex() int            { return c.inner.StorageIndex() }
func (c *Cursor[T]) Container() storage.Container { return c.inner.Container() }

// IsOutOfBounds returns true if the current position lies outside the image.
func (c *Cursor[T]) IsOutOfBounds() bool { return c.outside }

func (c *Cursor[T]) NumDimensions() int    { return len(c.dims) }
func (c *Cursor[T]) Dimensions() []int     { return ndimg.CopyInts(c.dims) }
func (c *Cursor[T]) Position(pos []int)    { copy(pos, c.pos) }
func (c *Cursor[T]) PositionDim(d int) int { return c.pos[d] }

// MoveCount returns the number of elementary moves performed so far.
func (c *Cursor[T]) MoveCount() int { return c.moves }

// Move moves by steps along dimension d.  A move that stays inside the image
// is passed to the inner cursor unchanged.
func (c *Cursor[T]) Move(steps, d int) {
	if steps == 0 {
		return
	}
	c.moves++
	p := c.pos[d] + steps
	c.pos[d] = p
	if !c.outside && p >= 0 && p < c.dims[d] {
		c.inner.Move(steps, d)
		return
	}
	c.resolve(false)
}

// resolve brings the inner cursor in line with the current position, either
// with incremental moves or by a direct reposition.
func (c *Cursor[T]) resolve(direct bool) {
	target := c.pos
	c.outside = !ndimg.InBounds(c.pos, c.dims)
	c.mapped = false
	if c.outside {
		if c.mapped = c.strategy.Map(c.pos, c.dims, c.tmp); !c.mapped {
			return
		}
		target = c.tmp
	}
	if direct {
		c.inner.SetPosition(target)
	} else {
		c.inner.MoveTo(target)
	}
}

func (c *Cursor[T]) FwdDim(d int) { c.Move(1, d) }
func (c *Cursor[T]) BckDim(d int) { c.Move(-1, d) }

// MoveTo moves to pos with one Move per dimension whose coordinate differs.
func (c *Cursor[T]) MoveTo(pos []int) {
	for d, p := range pos {
		c.Move(p-c.pos[d], d)
	}
}

func (c *Cursor[T]) MoveRel(vec []int) {
	for d, steps := range vec {
		c.Move(steps, d)
	}
}

func (c *Cursor[T]) MoveToLocalizable(l cursor.Localizable) {
	l.Position(c.tmp)
	c.MoveTo(c.tmp)
}

func (c *Cursor[T]) SetPosition(pos []int) {
	copy(c.pos, pos)
	c.resolve(true)
}

func (c *Cursor[T]) SetPositionDim(p, d int) {
	c.pos[d] = p
	c.resolve(true)
}

// CreateRegionOfInterestCursor returns a cursor over the box [offset, offset+size),
// which may extend past the image.  It returns nil if another region of interest
// or neighborhood cursor is still open.
func (c *Cursor[T]) CreateRegionOfInterestCursor(offset, size []int) *cursor.RegionOfInterest[T] {
	if !c.slot.Acquire() {
		ndimg.Warningf("out-of-bounds cursor already has an open region of interest or neighborhood cursor\n")
		return nil
	}
	return cursor.NewRegionOfInterest[T](c, &c.slot, offset, size)
}

// CreateLocalNeighborhoodCursor returns a cursor over the direct neighbors of
// the current position, or nil if another special cursor is open.
func (c *Cursor[T]) CreateLocalNeighborhoodCursor() *cursor.Neighborhood[T] {
	if !c.slot.Acquire() {
		ndimg.Warningf("out-of-bounds cursor already has an open region of interest or neighborhood cursor\n")
		return nil
	}
	return cursor.NewNeighborhood[T](c, &c.slot)
}

var _ cursor.LocalizableByDimCursor[*types.FloatType] = (*Cursor[*types.FloatType])(nil)
