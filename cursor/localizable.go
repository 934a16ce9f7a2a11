package cursor

import (
	"github.com/janelia-flyem/ndimg/ndimg"
	"github.com/janelia-flyem/ndimg/storage"
	"github.com/janelia-flyem/ndimg/types"
)

// Localizing walks a container in native order and tracks the position of
// the current pixel.  Within a slice the position advances x-fastest, so no
// index arithmetic beyond a carry is needed per step.
type Localizing[T types.Type[T]] struct {
	Basic[T]
	dims   []int
	pos    []int
	origin []int // of the current slice
	sdims  []int // extent of the current slice
	ssteps []int // strides within the current slice
}

// NewLocalizing returns a localizable cursor over c.
func NewLocalizing[T types.Type[T]](c storage.Container, linked T) *Localizing[T] {
	l := &Localizing[T]{}
	l.initLocalizing(c, linked)
	l.Reset()
	return l
}

func (l *Localizing[T]) initLocalizing(c storage.Container, linked T) {
	l.init(c, linked)
	n := c.NumDimensions()
	l.dims = c.Dimensions()
	l.pos = make([]int, n)
	l.origin = make([]int, n)
	l.sdims = make([]int, n)
	l.ssteps = make([]int, n)
}

// loadSlice caches the geometry of a slice.
func (l *Localizing[T]) loadSlice(id int) {
	l.c.SliceOrigin(id, l.origin)
	l.c.SliceDimensions(id, l.sdims)
	ndimg.Steps(l.sdims, l.ssteps)
	l.sliceSize = l.c.SliceSize(id)
}

func (l *Localizing[T]) Reset() {
	l.Basic.Reset()
	l.loadSlice(0)
	copy(l.pos, l.origin)
	l.pos[0]--
}

func (l *Localizing[T]) Fwd() {
	l.idx++
	if l.idx < l.sliceSize {
		l.t.IncIndex()
		l.pos[0]++
		for d := 0; d < len(l.pos)-1 && l.pos[d] >= l.origin[d]+l.sdims[d]; d++ {
			l.pos[d] = l.origin[d]
			l.pos[d+1]++
		}
		return
	}
	l.slice++
	l.idx = 0
	l.loadSlice(l.slice)
	copy(l.pos, l.origin)
	l.t.UpdateContainer(l.slice)
	l.t.UpdateIndex(0)
}

func (l *Localizing[T]) JumpFwd(steps int) {
	if l.jump(steps) {
		l.loadSlice(l.slice)
	}
	l.c.IndexToPosition(l.slice, l.idx, l.pos)
}

func (l *Localizing[T]) NumDimensions() int { return len(l.dims) }

func (l *Localizing[T]) Dimensions() []int { return ndimg.CopyInts(l.dims) }

func (l *Localizing[T]) Position(pos []int) { copy(pos, l.pos) }

func (l *Localizing[T]) PositionDim(d int) int { return l.pos[d] }
