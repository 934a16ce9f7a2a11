package storage

import (
	"fmt"
	"math"

	"github.com/janelia-flyem/ndimg/ndimg"
)

// maxSliceEntities bounds the entities held by a single slice.
const maxSliceEntities = math.MaxInt32

// grid partitions an extent into boxes of a fixed nominal size.  Boxes at the
// upper border are truncated.  Boxes are numbered x-fastest and their pixels
// are laid out x-fastest, so the flat index of a position is the number of
// pixels in all preceding boxes plus the position's offset inside its box.
type grid struct {
	t        ndimg.DataType
	dims     []int
	boxDims  []int
	numBoxes []int
	boxSteps []int
	epp      int

	numPixels  int
	firstIndex []int // flat index of each box's first pixel; len = boxes+1
}

func newGrid(t ndimg.DataType, dims, boxDims []int, epp int) (*grid, error) {
	numPixels, err := ndimg.NumPixels(dims)
	if err != nil {
		return nil, err
	}
	if len(boxDims) != len(dims) {
		return nil, fmt.Errorf("box size %v for extent %v: %w", boxDims, dims, ndimg.ErrDimensionMismatch)
	}
	if epp <= 0 {
		return nil, fmt.Errorf("entities per pixel must be positive, got %d: %w", epp, ndimg.ErrBadExtent)
	}
	g := &grid{
		t:         t,
		dims:      ndimg.CopyInts(dims),
		boxDims:   make([]int, len(dims)),
		numBoxes:  make([]int, len(dims)),
		boxSteps:  make([]int, len(dims)),
		epp:       epp,
		numPixels: numPixels,
	}
	total := 1
	for d, size := range dims {
		b := boxDims[d]
		if b <= 0 || b > size {
			b = size
		}
		g.boxDims[d] = b
		g.numBoxes[d] = (size + b - 1) / b
		g.boxSteps[d] = total
		total *= g.numBoxes[d]
	}

	// The nominal box is the largest one, so checking it bounds every slice.
	boxPixels := 1
	for _, b := range g.boxDims {
		boxPixels *= b
	}
	if boxPixels > maxSliceEntities/epp || t.StorageEntities(boxPixels*epp) > maxSliceEntities {
		return nil, fmt.Errorf("%d pixels x %d entities in one slice: %w", boxPixels, epp, ndimg.ErrOverflow)
	}

	g.firstIndex = make([]int, total+1)
	boxOrigin := make([]int, len(dims))
	boxSize := make([]int, len(dims))
	for id := 0; id < total; id++ {
		g.boxGeometry(id, boxOrigin, boxSize)
		n := 1
		for _, s := range boxSize {
			n *= s
		}
		g.firstIndex[id+1] = g.firstIndex[id] + n
	}
	return g, nil
}

func (g *grid) DataType() ndimg.DataType { return g.t }

func (g *grid) Dimensions() []int { return ndimg.CopyInts(g.dims) }

func (g *grid) NumDimensions() int { return len(g.dims) }

func (g *grid) NumPixels() int { return g.numPixels }

func (g *grid) NumEntitiesPerPixel() int { return g.epp }

func (g *grid) NumSlices() int { return len(g.firstIndex) - 1 }

func (g *grid) SliceSize(id int) int { return g.firstIndex[id+1] - g.firstIndex[id] }

// sliceEntities returns the number of stored entities backing a slice.
func (g *grid) sliceEntities(id int) int {
	return g.t.StorageEntities(g.SliceSize(id) * g.epp)
}

func (g *grid) boxGeometry(id int, origin, size []int) {
	for d := range g.dims {
		b := id % g.numBoxes[d]
		id /= g.numBoxes[d]
		origin[d] = b * g.boxDims[d]
		size[d] = g.boxDims[d]
		if origin[d]+size[d] > g.dims[d] {
			size[d] = g.dims[d] - origin[d]
		}
	}
}

func (g *grid) SliceOrigin(id int, origin []int) {
	for d := range g.dims {
		b := id % g.numBoxes[d]
		id /= g.numBoxes[d]
		origin[d] = b * g.boxDims[d]
	}
}

func (g *grid) SliceDimensions(id int, dims []int) {
	for d := range g.dims {
		b := id % g.numBoxes[d]
		id /= g.numBoxes[d]
		origin := b * g.boxDims[d]
		dims[d] = g.boxDims[d]
		if origin+dims[d] > g.dims[d] {
			dims[d] = g.dims[d] - origin
		}
	}
}

func (g *grid) PositionToIndex(pos []int) (slice, index int) {
	step := 1
	for d, p := range pos {
		b := p / g.boxDims[d]
		slice += b * g.boxSteps[d]
		origin := b * g.boxDims[d]
		size := g.boxDims[d]
		if origin+size > g.dims[d] {
			size = g.dims[d] - origin
		}
		index += (p - origin) * step
		step *= size
	}
	return
}

func (g *grid) IndexToPosition(slice, index int, pos []int) {
	for d := range g.dims {
		b := slice % g.numBoxes[d]
		slice /= g.numBoxes[d]
		origin := b * g.boxDims[d]
		size := g.boxDims[d]
		if origin+size > g.dims[d] {
			size = g.dims[d] - origin
		}
		pos[d] = origin + index%size
		index /= size
	}
}

func (g *grid) FlatIndex(pos []int) int {
	slice, index := g.PositionToIndex(pos)
	return g.firstIndex[slice] + index
}

func (g *grid) describe(kind string) string {
	return fmt.Sprintf("%s container %v of %s (%d entities/pixel, %d slices)", kind, g.dims, g.t, g.epp, g.NumSlices())
}
