package loader

import (
	"fmt"
	"io"

	"github.com/janelia-flyem/ndimg/ndimg"
)

// RawReader serves a headerless binary volume stored plane after plane.
type RawReader struct {
	name         string
	r            io.ReaderAt
	offset       int64
	dims         []int
	pixelType    PixelType
	littleEndian bool
	calibration  []float32
}

// NewRawReader returns a reader of a volume starting at offset in r.
func NewRawReader(name string, r io.ReaderAt, offset int64, dims []int, p PixelType, littleEndian bool, calibration []float32) (*RawReader, error) {
	if err := ndimg.CheckExtent(dims); err != nil {
		return nil, fmt.Errorf("raw volume %q: %w", name, err)
	}
	if p.Bytes() == 0 {
		return nil, fmt.Errorf("raw volume %q has %s: %w", name, p, ndimg.ErrUnsupportedLayout)
	}
	return &RawReader{
		name:         name,
		r:            r,
		offset:       offset,
		dims:         ndimg.CopyInts(dims),
		pixelType:    p,
		littleEndian: littleEndian,
		calibration:  calibration,
	}, nil
}

func (raw *RawReader) Name() string           { return raw.name }
func (raw *RawReader) Dimensions() []int      { return ndimg.CopyInts(raw.dims) }
func (raw *RawReader) PixelType() PixelType   { return raw.pixelType }
func (raw *RawReader) Calibration() []float32 { return raw.calibration }
func (raw *RawReader) LittleEndian() bool     { return raw.littleEndian }

func (raw *RawReader) NumPlanes() int {
	_, planeDims := planeGeometry(raw.dims)
	n, _ := ndimg.NumPixels(planeDims)
	return n
}

func (raw *RawReader) ReadPlane(i int, buf []byte) error {
	planeSize, _ := planeGeometry(raw.dims)
	size := planeSize * raw.pixelType.Bytes()
	if len(buf) < size {
		return fmt.Errorf("plane buffer holds %d bytes, need %d", len(buf), size)
	}
	_, err := raw.r.ReadAt(buf[:size], raw.offset+int64(i)*int64(size))
	if err == io.EOF {
		return fmt.Errorf("raw volume %q truncated at plane %d: %w", raw.name, i, io.ErrUnexpectedEOF)
	}
	return err
}
