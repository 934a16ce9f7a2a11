package interpolation

import (
	"github.com/janelia-flyem/ndimg/image"
	"github.com/janelia-flyem/ndimg/outofbounds"
	"github.com/janelia-flyem/ndimg/types"
)

// NearestNeighbor returns the pixel nearest to the position.
type NearestNeighbor[T types.Type[T]] struct {
	base[T]
}

// NewNearestNeighbor returns a nearest neighbor interpolator over img placed at
// the origin.  A nil f reads zero outside the image.
func NewNearestNeighbor[T types.Type[T]](img *image.Image[T], f outofbounds.Factory[T]) *NearestNeighbor[T] {
	nn := &NearestNeighbor[T]{base: newBase(img, f)}
	nn.update = nn.locate
	nn.locate(true)
	return nn
}

func (nn *NearestNeighbor[T]) locate(direct bool) {
	for d, p := range nn.pos {
		nn.lattice[d] = round(p)
	}
	nn.seek(direct)
}

// Type returns the proxy of the nearest pixel, which is linked to the image.
func (nn *NearestNeighbor[T]) Type() T { return nn.cur.Type() }

// NearestNeighborFactory creates nearest neighbor interpolators.
type NearestNeighborFactory[T types.Type[T]] struct {
	OutOfBounds outofbounds.Factory[T]
}

func NewNearestNeighborFactory[T types.Type[T]](f outofbounds.Factory[T]) *NearestNeighborFactory[T] {
	return &NearestNeighborFactory[T]{OutOfBounds: f}
}

func (f *NearestNeighborFactory[T]) Create(img *image.Image[T]) Interpolator[T] {
	return NewNearestNeighbor(img, f.OutOfBounds)
}
