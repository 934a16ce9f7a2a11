/*
Package loader fills images from external readers.

A Reader delivers an N-d volume plane by plane as raw samples.  Open decodes
the samples into any real pixel kind through a plane cursor, so the image may
live on any storage backend.  StackReader adapts decoded 2-d Go images (TIFF,
PNG, BMP) and RawReader adapts headerless binary volumes.
*/
package loader

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/janelia-flyem/ndimg/image"
	"github.com/janelia-flyem/ndimg/ndimg"
	"github.com/janelia-flyem/ndimg/types"
)

// PixelType is the sample format delivered by a Reader.
type PixelType uint8

const (
	Uint8 PixelType = iota
	Uint16
	Uint32
	Float32
)

var pixelTypeNames = map[PixelType]string{
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Float32: "float32",
}

func (p PixelType) String() string {
	if name, ok := pixelTypeNames[p]; ok {
		return name
	}
	return fmt.Sprintf("unknown pixel type %d", p)
}

// Bytes returns the size of one sample.
func (p PixelType) Bytes() int {
	switch p {
	case Uint8:
		return 1
	case Uint16:
		return 2
	case Uint32, Float32:
		return 4
	}
	return 0
}

// ParsePixelType returns the pixel type with the given name.
func ParsePixelType(s string) (PixelType, error) {
	for p, name := range pixelTypeNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown pixel type %q: %w", s, ndimg.ErrUnsupportedLayout)
}

// decoder returns a function reading the i-th sample of a plane buffer.
func (p PixelType) decoder(order binary.ByteOrder) func(buf []byte, i int) float64 {
	switch p {
	case Uint8:
		return func(buf []byte, i int) float64 { return float64(buf[i]) }
	case Uint16:
		return func(buf []byte, i int) float64 { return float64(order.Uint16(buf[2*i:])) }
	case Uint32:
		return func(buf []byte, i int) float64 { return float64(order.Uint32(buf[4*i:])) }
	case Float32:
		return func(buf []byte, i int) float64 { return float64(math.Float32frombits(order.Uint32(buf[4*i:]))) }
	}
	return nil
}

// Reader delivers an N-d volume as planes spanned by the first two dimensions,
// x fastest.  Planes are numbered in x-fastest order over the remaining
// dimensions.
type Reader interface {
	Name() string
	Dimensions() []int
	PixelType() PixelType
	NumPlanes() int

	// ReadPlane fills buf, which holds one plane of samples, with plane i.
	ReadPlane(i int, buf []byte) error

	// Calibration returns the pixel size per dimension.  It may be nil.
	Calibration() []float32

	LittleEndian() bool
}

// planeGeometry returns the number of samples per plane and the extent of the
// plane index space.
func planeGeometry(dims []int) (int, []int) {
	if len(dims) == 1 {
		return dims[0], []int{1}
	}
	if len(dims) == 2 {
		return dims[0] * dims[1], []int{1}
	}
	return dims[0] * dims[1], dims[2:]
}

// Open creates an image from r with f and fills it.
func Open[T types.RealValued[T]](r Reader, f *image.Factory[T]) (*image.Image[T], error) {
	timedLog := ndimg.NewTimeLog()
	dims := r.Dimensions()
	if err := ndimg.CheckExtent(dims); err != nil {
		return nil, fmt.Errorf("reader %q: %w", r.Name(), err)
	}
	decode := r.PixelType().decoder(binaryOrder(r.LittleEndian()))
	if decode == nil {
		return nil, fmt.Errorf("reader %q delivers %s: %w", r.Name(), r.PixelType(), ndimg.ErrUnsupportedLayout)
	}
	planeSize, planeDims := planeGeometry(dims)
	numPlanes, err := ndimg.NumPixels(planeDims)
	if err != nil {
		return nil, err
	}
	if r.NumPlanes() != numPlanes {
		return nil, fmt.Errorf("reader %q has %d planes, extent %v needs %d: %w", r.Name(), r.NumPlanes(), dims, numPlanes, ndimg.ErrDimensionMismatch)
	}

	img, err := f.CreateImage(dims, r.Name())
	if err != nil {
		return nil, err
	}
	if err := img.SetCalibration(calibration(r, len(dims))); err != nil {
		img.Close()
		return nil, err
	}

	buf := make([]byte, planeSize*r.PixelType().Bytes())
	cur := img.CreateLocalizablePlaneCursor()
	defer cur.Close()
	pos := make([]int, len(dims))
	for i := 0; i < numPlanes; i++ {
		if err := r.ReadPlane(i, buf); err != nil {
			img.Close()
			return nil, fmt.Errorf("reading plane %d of %q: %w", i, r.Name(), err)
		}
		if len(dims) > 2 {
			ndimg.IndexToPosition(i, planeDims, pos[2:])
		}
		cur.ResetPlane(0, 1, pos)
		for j := 0; cur.HasNext(); j++ {
			cur.Fwd()
			cur.Type().SetReal(decode(buf, j))
		}
	}
	timedLog.Infof("Loaded %q %v %s (%s)\n", r.Name(), dims, r.PixelType(), humanize.Bytes(uint64(numPlanes*len(buf))))
	return img, nil
}

// calibration returns r's calibration padded with 1 where missing.
func calibration(r Reader, n int) []float32 {
	cal := make([]float32, n)
	src := r.Calibration()
	if len(src) != n {
		ndimg.Warningf("reader %q has %d calibration entries for %d dimensions, missing entries set to 1\n", r.Name(), len(src), n)
	}
	for d := range cal {
		cal[d] = 1
		if d < len(src) {
			cal[d] = src[d]
		}
	}
	return cal
}

func binaryOrder(littleEndian bool) binary.ByteOrder {
	if littleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}
