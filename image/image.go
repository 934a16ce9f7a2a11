/*
Package image ties a container, its linked pixel proxy and the image metadata
together and hands out cursors of each capability.

An Image owns exactly one container.  Every cursor created from it shares the
image's extent and calibration, and Close on the image releases the container,
so cursors must be closed first.
*/
package image

import (
	"fmt"

	"github.com/janelia-flyem/ndimg/cursor"
	"github.com/janelia-flyem/ndimg/ndimg"
	"github.com/janelia-flyem/ndimg/outofbounds"
	"github.com/janelia-flyem/ndimg/storage"
	"github.com/janelia-flyem/ndimg/types"
)

// Factory creates images of one pixel kind on one storage backend.
type Factory[T types.Type[T]] struct {
	t       T
	storage storage.Factory
}

// NewFactory returns a factory creating images of t's kind with sf.
func NewFactory[T types.Type[T]](t T, sf storage.Factory) *Factory[T] {
	return &Factory[T]{t: t, storage: sf}
}

// StorageFactory returns the container factory used for new images.
func (f *Factory[T]) StorageFactory() storage.Factory { return f.storage }

// CreateType returns a detached proxy of the factory's kind.
func (f *Factory[T]) CreateType() T { return f.t.CreateVariable() }

// CreateImage allocates a new image of extent dims.  An empty name is replaced
// by a generated one.
func (f *Factory[T]) CreateImage(dims []int, name string) (*Image[T], error) {
	c, linked, err := f.t.CreateSuitableContainer(f.storage, dims)
	if err != nil {
		return nil, fmt.Errorf("unable to create image %q: %w", name, err)
	}
	return newImage(f, c, linked, name), nil
}

func (f *Factory[T]) String() string {
	return fmt.Sprintf("image factory for %T on %s", f.t, f.storage.Name())
}

// Image is an N-d image of pixel kind T.
type Image[T types.Type[T]] struct {
	name        string
	dims        []int
	calibration []float32
	container   storage.Container
	linked      T
	factory     *Factory[T]
}

func newImage[T types.Type[T]](f *Factory[T], c storage.Container, linked T, name string) *Image[T] {
	if name == "" {
		name = fmt.Sprintf("image-%x", c.ID()[:4])
	}
	img := &Image[T]{
		name:        name,
		dims:        c.Dimensions(),
		calibration: make([]float32, c.NumDimensions()),
		container:   c,
		linked:      linked,
		factory:     f,
	}
	for d := range img.calibration {
		img.calibration[d] = 1
	}
	return img
}

// Wrap returns an image around an existing container, e.g., one built from
// externally owned planes.  linked must be a proxy linked to c.
func Wrap[T types.Type[T]](c storage.Container, linked T, name string) *Image[T] {
	return newImage(NewFactory(linked.CreateVariable(), c.Factory()), c, linked, name)
}

func (img *Image[T]) Name() string         { return img.name }
func (img *Image[T]) SetName(name string)  { img.name = name }
func (img *Image[T]) NumDimensions() int   { return len(img.dims) }
func (img *Image[T]) Dimension(d int) int  { return img.dims[d] }
func (img *Image[T]) NumPixels() int       { return img.container.NumPixels() }
func (img *Image[T]) Factory() *Factory[T] { return img.factory }

// Dimensions returns a copy of the image extent.
func (img *Image[T]) Dimensions() []int { return ndimg.CopyInts(img.dims) }

// Container returns the backing container.
func (img *Image[T]) Container() storage.Container { return img.container }

// Calibration returns a copy of the per-dimension pixel size.
func (img *Image[T]) Calibration() []float32 {
	cal := make([]float32, len(img.calibration))
	copy(cal, img.calibration)
	return cal
}

// SetCalibration sets the pixel size along each dimension.  Non-positive
// entries are replaced by 1.
func (img *Image[T]) SetCalibration(cal []float32) error {
	if len(cal) != len(img.dims) {
		return fmt.Errorf("calibration %v for %d-d image %q: %w", cal, len(img.dims), img.name, ndimg.ErrDimensionMismatch)
	}
	for d, c := range cal {
		if c <= 0 {
			ndimg.Warningf("image %q: calibration %g along dimension %d replaced by 1\n", img.name, c, d)
			c = 1
		}
		img.calibration[d] = c
	}
	return nil
}

// CreateType returns a detached proxy of the image's kind.
func (img *Image[T]) CreateType() T { return img.linked.CreateVariable() }

func (img *Image[T]) CreateCursor() *cursor.Basic[T] {
	return cursor.NewBasic(img.container, img.linked)
}

func (img *Image[T]) CreateLocalizableCursor() *cursor.Localizing[T] {
	return cursor.NewLocalizing(img.container, img.linked)
}

func (img *Image[T]) CreateLocalizableByDimCursor() *cursor.ByDim[T] {
	return cursor.NewByDim(img.container, img.linked)
}

// CreateLocalizableByDimCursorOut returns a cursor that may leave the image,
// reading outside positions according to f.
func (img *Image[T]) CreateLocalizableByDimCursorOut(f outofbounds.Factory[T]) *outofbounds.Cursor[T] {
	return outofbounds.NewCursor(img.container, img.linked, f)
}

func (img *Image[T]) CreateLocalizablePlaneCursor() *cursor.Plane[T] {
	return cursor.NewPlane(img.container, img.linked)
}

// CreateNewImage returns an empty image of the same kind and storage with
// extent dims.
func (img *Image[T]) CreateNewImage(dims []int, name string) (*Image[T], error) {
	return img.factory.CreateImage(dims, name)
}

// Clone returns a copy of the image with its own container.
func (img *Image[T]) Clone() (*Image[T], error) {
	dup, err := img.CreateNewImage(img.dims, img.name+" copy")
	if err != nil {
		return nil, err
	}
	copy(dup.calibration, img.calibration)
	src := img.CreateLocalizableCursor()
	dst := dup.CreateLocalizableByDimCursor()
	defer src.Close()
	defer dst.Close()
	for src.HasNext() {
		src.Fwd()
		dst.MoveToLocalizable(src)
		dst.Type().Set(src.Type())
	}
	return dup, nil
}

// MemoryUsage returns the approximate number of bytes held by the container.
func (img *Image[T]) MemoryUsage() int { return storage.MemoryUsage(img.container) }

// Close releases the container.
func (img *Image[T]) Close() error {
	return img.container.Close()
}

func (img *Image[T]) String() string {
	return fmt.Sprintf("image %q %v calibrated %v on %s", img.name, img.dims, img.calibration, img.container)
}
