package loader

import (
	"encoding/binary"
	"fmt"
	stdimage "image"
	"image/draw"
	"io"
	"os"
	"path/filepath"

	"github.com/janelia-flyem/ndimg/ndimg"
)

// StackReader serves a list of equally sized 2-d images as a volume, one image
// per plane.  8-bit gray images deliver Uint8 samples; everything else is
// converted to 16-bit gray.
type StackReader struct {
	name        string
	planes      []stdimage.Image
	dims        []int
	pixelType   PixelType
	calibration []float32
}

// NewStackReader returns a reader over planes.  A single plane gives a 2-d
// volume.
func NewStackReader(name string, planes []stdimage.Image, calibration []float32) (*StackReader, error) {
	if len(planes) == 0 {
		return nil, fmt.Errorf("stack %q has no planes: %w", name, ndimg.ErrBadExtent)
	}
	bounds := planes[0].Bounds()
	s := &StackReader{
		name:        name,
		planes:      planes,
		dims:        []int{bounds.Dx(), bounds.Dy()},
		pixelType:   Uint8,
		calibration: calibration,
	}
	if len(planes) > 1 {
		s.dims = append(s.dims, len(planes))
	}
	for i, p := range planes {
		if p.Bounds().Dx() != bounds.Dx() || p.Bounds().Dy() != bounds.Dy() {
			return nil, fmt.Errorf("plane %d of %q is %s, expected %s: %w", i, name, p.Bounds().Size(), bounds.Size(), ndimg.ErrDimensionMismatch)
		}
		if _, ok := p.(*stdimage.Gray); !ok {
			s.pixelType = Uint16
		}
	}
	return s, nil
}

// ReadStack decodes the image files at paths into a stack named after the
// first file.
func ReadStack(paths ...string) (*StackReader, error) {
	planes := make([]stdimage.Image, len(paths))
	for i, path := range paths {
		img, err := ImageFromFile(path)
		if err != nil {
			return nil, err
		}
		planes[i] = img
	}
	name := "stack"
	if len(paths) > 0 {
		name = filepath.Base(paths[0])
	}
	return NewStackReader(name, planes, nil)
}

// ImageFromFile decodes an image file in any registered format.  The encoders
// imported for Save register the tiff, png and bmp decoders.
func ImageFromFile(path string) (stdimage.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open image %q: %w", path, err)
	}
	defer f.Close()
	return decode(f, path)
}

func decode(r io.Reader, name string) (stdimage.Image, error) {
	img, format, err := stdimage.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("unable to decode image %q: %w", name, err)
	}
	ndimg.Debugf("Decoded %s image %q of %s\n", format, name, img.Bounds().Size())
	return img, nil
}

func (s *StackReader) Name() string           { return s.name }
func (s *StackReader) Dimensions() []int      { return ndimg.CopyInts(s.dims) }
func (s *StackReader) PixelType() PixelType   { return s.pixelType }
func (s *StackReader) NumPlanes() int         { return len(s.planes) }
func (s *StackReader) Calibration() []float32 { return s.calibration }
func (s *StackReader) LittleEndian() bool     { return false }

func (s *StackReader) ReadPlane(i int, buf []byte) error {
	if i < 0 || i >= len(s.planes) {
		return fmt.Errorf("plane %d out of range [0, %d)", i, len(s.planes))
	}
	src := s.planes[i]
	if s.pixelType == Uint8 {
		gray := src.(*stdimage.Gray)
		w, h := s.dims[0], s.dims[1]
		for y := 0; y < h; y++ {
			start := y * gray.Stride
			copy(buf[y*w:(y+1)*w], gray.Pix[start:start+w])
		}
		return nil
	}
	gray, ok := src.(*stdimage.Gray16)
	if !ok {
		b := src.Bounds()
		gray = stdimage.NewGray16(stdimage.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(gray, gray.Bounds(), src, b.Min, draw.Src)
	}
	b := gray.Bounds()
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			binary.BigEndian.PutUint16(buf[2*n:], gray.Gray16At(x, y).Y)
			n++
		}
	}
	return nil
}
