package cursor

import "github.com/janelia-flyem/ndimg/ndimg"

// RegionOfInterest visits the box [offset, offset+size) in x-fastest order by
// moving its parent cursor.  ResetTo repositions the box without allocating.
// Positions reported are relative to the box origin.
type RegionOfInterest[T any] struct {
	parent Positioner[T]
	slot   *SpecialSlot
	offset []int
	size   []int
	rel    []int
	count  int
	total  int
	closed bool
}

// NewRegionOfInterest returns a region of interest cursor moving parent.  The
// slot, if given, must already be held and is released on Close.
func NewRegionOfInterest[T any](parent Positioner[T], slot *SpecialSlot, offset, size []int) *RegionOfInterest[T] {
	r := &RegionOfInterest[T]{
		parent: parent,
		slot:   slot,
		offset: ndimg.CopyInts(offset),
		size:   ndimg.CopyInts(size),
		rel:    make([]int, len(size)),
		total:  1,
	}
	for _, s := range size {
		r.total *= s
	}
	return r
}

func (r *RegionOfInterest[T]) Reset() {
	r.count = 0
	for d := range r.rel {
		r.rel[d] = 0
	}
}

// ResetTo moves the box to a new offset and resets the traversal.
func (r *RegionOfInterest[T]) ResetTo(offset []int) {
	copy(r.offset, offset)
	r.Reset()
}

func (r *RegionOfInterest[T]) HasNext() bool { return r.count < r.total }

func (r *RegionOfInterest[T]) Fwd() {
	if r.count == 0 {
		r.parent.MoveTo(r.offset)
		r.count = 1
		return
	}
	for d := range r.rel {
		r.rel[d]++
		if r.rel[d] < r.size[d] {
			r.parent.FwdDim(d)
			break
		}
		r.rel[d] = 0
		r.parent.Move(1-r.size[d], d)
	}
	r.count++
}

// JumpFwd is equivalent to calling Fwd steps times.
func (r *RegionOfInterest[T]) JumpFwd(steps int) {
	for ; steps > 0; steps-- {
		r.Fwd()
	}
}

func (r *RegionOfInterest[T]) Type() T { return r.parent.Type() }

func (r *RegionOfInterest[T]) NumDimensions() int { return len(r.size) }

func (r *RegionOfInterest[T]) Dimensions() []int { return ndimg.CopyInts(r.size) }

func (r *RegionOfInterest[T]) Position(pos []int) { copy(pos, r.rel) }

func (r *RegionOfInterest[T]) PositionDim(d int) int { return r.rel[d] }

// Offset returns the position of the box origin in the parent.
func (r *RegionOfInterest[T]) Offset() []int { return ndimg.CopyInts(r.offset) }

func (r *RegionOfInterest[T]) IsActive() bool { return !r.closed }

// Close releases the parent's special cursor slot.  It is safe to call twice.
func (r *RegionOfInterest[T]) Close() {
	if r.closed {
		return
	}
	r.closed = true
	if r.slot != nil {
		r.slot.Release()
	}
}

// Neighborhood visits the 2*d direct neighbors of a center position: -1 then +1
// along dimension 0, then along dimension 1, and so on.  The parent must be
// able to step outside the image when the center lies on the border.
type Neighborhood[T any] struct {
	parent Positioner[T]
	slot   *SpecialSlot
	center []int
	k      int
	closed bool
}

// NewNeighborhood returns a neighborhood cursor centered on parent's position.
func NewNeighborhood[T any](parent Positioner[T], slot *SpecialSlot) *Neighborhood[T] {
	nb := &Neighborhood[T]{
		parent: parent,
		slot:   slot,
		center: make([]int, parent.NumDimensions()),
		k:      -1,
	}
	nb.Update()
	return nb
}

// Update recenters on the parent's current position.
func (nb *Neighborhood[T]) Update() {
	nb.parent.Position(nb.center)
	nb.k = -1
}

// undo returns the parent from the current neighbor to the center.
func (nb *Neighborhood[T]) undo() {
	if nb.k < 0 {
		return
	}
	if nb.k%2 == 0 {
		nb.parent.FwdDim(nb.k / 2)
	} else {
		nb.parent.BckDim(nb.k / 2)
	}
}

func (nb *Neighborhood[T]) HasNext() bool { return nb.k < 2*len(nb.center)-1 }

func (nb *Neighborhood[T]) Fwd() {
	nb.undo()
	nb.k++
	if nb.k%2 == 0 {
		nb.parent.BckDim(nb.k / 2)
	} else {
		nb.parent.FwdDim(nb.k / 2)
	}
}

// Reset returns the parent to the center.
func (nb *Neighborhood[T]) Reset() {
	nb.undo()
	nb.k = -1
}

func (nb *Neighborhood[T]) Type() T { return nb.parent.Type() }

// Center writes the center position.
func (nb *Neighborhood[T]) Center(pos []int) { copy(pos, nb.center) }

func (nb *Neighborhood[T]) NumDimensions() int { return len(nb.center) }

func (nb *Neighborhood[T]) Dimensions() []int { return nb.parent.Dimensions() }

// Position writes the parent's position, i.e., the current neighbor.
func (nb *Neighborhood[T]) Position(pos []int) { nb.parent.Position(pos) }

func (nb *Neighborhood[T]) PositionDim(d int) int { return nb.parent.PositionDim(d) }

func (nb *Neighborhood[T]) IsActive() bool { return !nb.closed }

// Close returns the parent to the center and releases the special cursor slot.
func (nb *Neighborhood[T]) Close() {
	if nb.closed {
		return
	}
	nb.Reset()
	nb.closed = true
	if nb.slot != nil {
		nb.slot.Release()
	}
}
