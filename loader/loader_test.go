package loader

import (
	"bytes"
	"encoding/binary"
	"errors"
	stdimage "image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	. "github.com/janelia-flyem/go/gocheck"
	"github.com/janelia-flyem/ndimg/image"
	"github.com/janelia-flyem/ndimg/ndimg"
	"github.com/janelia-flyem/ndimg/storage"
	"github.com/janelia-flyem/ndimg/types"
)

func Test(t *testing.T) { TestingT(t) }

type LoaderSuite struct{}

var _ = Suite(&LoaderSuite{})

func rampGray16(w, h, z int) *stdimage.Gray16 {
	img := stdimage.NewGray16(stdimage.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray16(x, y, color.Gray16{Y: uint16(x + 10*y + 100*z)})
		}
	}
	return img
}

func checkRamp(c *C, img *image.Image[*types.FloatType]) {
	cur := img.CreateLocalizableCursor()
	defer cur.Close()
	for cur.HasNext() {
		cur.Fwd()
		want := cur.PositionDim(0) + 10*cur.PositionDim(1)
		if cur.NumDimensions() > 2 {
			want += 100 * cur.PositionDim(2)
		}
		c.Assert(cur.Type().Value(), Equals, float32(want))
	}
}

func (s *LoaderSuite) TestStack(c *C) {
	planes := []stdimage.Image{rampGray16(5, 4, 0), rampGray16(5, 4, 1), rampGray16(5, 4, 2)}
	r, err := NewStackReader("ramp", planes, []float32{0.5, 0.5})
	c.Assert(err, IsNil)
	c.Assert(r.Dimensions(), DeepEquals, []int{5, 4, 3})
	c.Assert(r.PixelType(), Equals, Uint16)

	cells := storage.NewCellFactory()
	cells.SetParameters("cell_size = [2, 3, 2]")
	for _, sf := range []storage.Factory{storage.NewArrayFactory(), cells, storage.NewPlanarFactory()} {
		img, err := Open(r, image.NewFactory(new(types.FloatType), sf))
		c.Assert(err, IsNil)
		c.Assert(img.Name(), Equals, "ramp")
		c.Assert(img.Calibration(), DeepEquals, []float32{0.5, 0.5, 1})
		checkRamp(c, img)
		img.Close()
	}
}

func (s *LoaderSuite) TestGray8(c *C) {
	gray := stdimage.NewGray(stdimage.Rect(0, 0, 3, 2))
	gray.Pix = []uint8{1, 2, 3, 4, 5, 255}
	r, err := NewStackReader("gray", []stdimage.Image{gray}, nil)
	c.Assert(err, IsNil)
	c.Assert(r.PixelType(), Equals, Uint8)
	c.Assert(r.Dimensions(), DeepEquals, []int{3, 2})

	img, err := Open(r, image.NewFactory(new(types.UnsignedByteType), storage.NewArrayFactory()))
	c.Assert(err, IsNil)
	defer img.Close()
	c.Assert(img.Calibration(), DeepEquals, []float32{1, 1})
	var got []uint8
	cur := img.CreateCursor()
	for cur.HasNext() {
		cur.Fwd()
		got = append(got, cur.Type().Value())
	}
	c.Assert(got, DeepEquals, gray.Pix)
}

func (s *LoaderSuite) TestMismatchedPlanes(c *C) {
	_, err := NewStackReader("bad", []stdimage.Image{rampGray16(5, 4, 0), rampGray16(4, 4, 1)}, nil)
	c.Assert(errors.Is(err, ndimg.ErrDimensionMismatch), Equals, true)
	_, err = NewStackReader("empty", nil, nil)
	c.Assert(errors.Is(err, ndimg.ErrBadExtent), Equals, true)
}

func (s *LoaderSuite) TestRaw(c *C) {
	dims := []int{3, 2, 2}
	var le, be bytes.Buffer
	for i := 0; i < 12; i++ {
		binary.Write(&le, binary.LittleEndian, uint32(i*1000))
		binary.Write(&be, binary.BigEndian, math.Float32bits(float32(i)/4))
	}
	f := image.NewFactory(new(types.DoubleType), storage.NewArrayFactory())

	r, err := NewRawReader("le", bytes.NewReader(le.Bytes()), 0, dims, Uint32, true, nil)
	c.Assert(err, IsNil)
	c.Assert(r.NumPlanes(), Equals, 2)
	img, err := Open(r, f)
	c.Assert(err, IsNil)
	cur := img.CreateCursor()
	for i := 0; cur.HasNext(); i++ {
		cur.Fwd()
		c.Assert(cur.Type().Value(), Equals, float64(i*1000))
	}
	img.Close()

	r, err = NewRawReader("be", bytes.NewReader(be.Bytes()), 0, dims, Float32, false, []float32{1, 2, 3})
	c.Assert(err, IsNil)
	img, err = Open(r, f)
	c.Assert(err, IsNil)
	c.Assert(img.Calibration(), DeepEquals, []float32{1, 2, 3})
	cur = img.CreateCursor()
	for i := 0; cur.HasNext(); i++ {
		cur.Fwd()
		c.Assert(cur.Type().Value(), Equals, float64(i)/4)
	}
	img.Close()

	r, err = NewRawReader("short", bytes.NewReader(le.Bytes()[:30]), 0, dims, Uint32, true, nil)
	c.Assert(err, IsNil)
	_, err = Open(r, f)
	c.Assert(err, NotNil)
}

func (s *LoaderSuite) TestSaveAndReload(c *C) {
	dir := c.MkDir()
	planes := []stdimage.Image{rampGray16(6, 5, 0), rampGray16(6, 5, 1)}
	r, err := NewStackReader("ramp", planes, nil)
	c.Assert(err, IsNil)
	img, err := Open(r, image.NewFactory(new(types.FloatType), storage.NewArrayFactory()))
	c.Assert(err, IsNil)
	defer img.Close()

	for _, name := range []string{"plane.tif", "plane.png"} {
		path := filepath.Join(dir, name)
		c.Assert(Save(img, []int{0, 0, 1}, path), IsNil)
		reread, err := ReadStack(path)
		c.Assert(err, IsNil, Commentf("reading %s", name))
		c.Assert(reread.Dimensions(), DeepEquals, []int{6, 5})
		back, err := Open(reread, image.NewFactory(new(types.FloatType), storage.NewArrayFactory()))
		c.Assert(err, IsNil)
		cur := back.CreateLocalizableCursor()
		for cur.HasNext() {
			cur.Fwd()
			want := cur.PositionDim(0) + 10*cur.PositionDim(1) + 100
			c.Assert(cur.Type().Value(), Equals, float32(want), Commentf("%s", name))
		}
		back.Close()
	}

	c.Assert(Save(img, nil, filepath.Join(dir, "plane.gif")), NotNil)
	c.Assert(Save(img, []int{0}, filepath.Join(dir, "plane.png")), NotNil)
}

func (s *LoaderSuite) TestPlane16Clamps(c *C) {
	img, err := image.NewFactory(new(types.DoubleType), storage.NewArrayFactory()).CreateImage([]int{4}, "line")
	c.Assert(err, IsNil)
	defer img.Close()
	vals := []float64{-3, 1.5, 70000, 2.49}
	cur := img.CreateCursor()
	for i := 0; cur.HasNext(); i++ {
		cur.Fwd()
		cur.Type().SetValue(vals[i])
	}
	plane, err := Plane16(img, nil)
	c.Assert(err, IsNil)
	var got []uint16
	for x := 0; x < 4; x++ {
		got = append(got, plane.Gray16At(x, 0).Y)
	}
	c.Assert(got, DeepEquals, []uint16{0, 2, 65535, 2})
}

func (s *LoaderSuite) TestParsePixelType(c *C) {
	p, err := ParsePixelType("float32")
	c.Assert(err, IsNil)
	c.Assert(p, Equals, Float32)
	c.Assert(p.Bytes(), Equals, 4)
	_, err = ParsePixelType("int7")
	c.Assert(errors.Is(err, ndimg.ErrUnsupportedLayout), Equals, true)
}
