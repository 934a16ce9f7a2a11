package interpolation

import (
	"math"
	"math/rand"
	"testing"

	. "github.com/janelia-flyem/go/gocheck"
	"github.com/janelia-flyem/ndimg/image"
	"github.com/janelia-flyem/ndimg/outofbounds"
	"github.com/janelia-flyem/ndimg/storage"
	"github.com/janelia-flyem/ndimg/types"
)

func Test(t *testing.T) { TestingT(t) }

type InterpolationSuite struct{}

var _ = Suite(&InterpolationSuite{})

func newLine(c *C, values ...float32) *image.Image[*types.FloatType] {
	img, err := image.NewFactory(new(types.FloatType), storage.NewArrayFactory()).CreateImage([]int{len(values)}, "line")
	c.Assert(err, IsNil)
	cur := img.CreateCursor()
	for _, v := range values {
		cur.Fwd()
		cur.Type().SetValue(v)
	}
	cur.Close()
	return img
}

func (s *InterpolationSuite) TestNearestRounding(c *C) {
	img := newLine(c, 10, 20, 30, 40, 50)
	defer img.Close()
	nn := NewNearestNeighbor[*types.FloatType](img, nil)
	defer nn.Close()

	tests := []struct {
		x    float32
		want float32
	}{
		{2.49, 30}, {2.51, 40}, {2.5, 40}, {0, 10}, {-0.5, 10}, {-0.51, 0},
		{4.49, 50}, {4.5, 0}, {1.5, 30},
	}
	for _, test := range tests {
		nn.SetPosition1(test.x)
		c.Assert(nn.Type().Value(), Equals, test.want, Commentf("SetPosition1(%g)", test.x))
		nn.SetPosition1(0)
		nn.MoveTo1(test.x)
		c.Assert(nn.Type().Value(), Equals, test.want, Commentf("MoveTo1(%g)", test.x))
	}
	nn.SetPosition([]float32{1})
	nn.MoveRel1(1.5)
	c.Assert(nn.X(), Equals, float32(2.5))
	c.Assert(nn.Type().Value(), Equals, float32(40))
}

func (s *InterpolationSuite) TestNearestRoundingRule(c *C) {
	for k := -3; k <= 3; k++ {
		c.Assert(round(float32(k)+0.49), Equals, k)
		c.Assert(round(float32(k)+0.51), Equals, k+1)
		c.Assert(round(float32(k)+0.5), Equals, k+1)
	}
	c.Assert(round(-0.5), Equals, 0)
}

func (s *InterpolationSuite) TestLinearLine(c *C) {
	img := newLine(c, 10, 20, 30, 40, 50)
	defer img.Close()
	l := NewLinear[*types.FloatType](img, outofbounds.NewExtendFactory[*types.FloatType]())
	defer l.Close()

	tests := []struct {
		x    float32
		want float32
	}{
		{0, 10}, {1.25, 22.5}, {3.5, 45}, {4, 50}, {-2, 10}, {6.75, 50},
	}
	for _, test := range tests {
		l.MoveTo1(test.x)
		c.Assert(l.Type().Value(), Equals, test.want, Commentf("x = %g", test.x))
	}
}

func (s *InterpolationSuite) TestLinearLatticeEqualsSample(c *C) {
	dims := []int{6, 5, 4}
	cells := storage.NewCellFactory()
	cells.SetParameters("cell_size = [4]")
	rng := rand.New(rand.NewSource(7))
	for _, sf := range []storage.Factory{storage.NewArrayFactory(), cells} {
		img, err := image.NewFactory(new(types.DoubleType), sf).CreateImage(dims, "random")
		c.Assert(err, IsNil)
		cur := img.CreateCursor()
		for cur.HasNext() {
			cur.Fwd()
			cur.Type().SetValue(rng.Float64()*200 - 100)
		}
		cur.Close()

		l := NewLinear[*types.DoubleType](img, nil)
		read := img.CreateLocalizableCursor()
		pos := make([]int, 3)
		fpos := make([]float32, 3)
		for read.HasNext() {
			read.Fwd()
			read.Position(pos)
			for d, p := range pos {
				fpos[d] = float32(p)
			}
			l.MoveTo(fpos)
			c.Assert(l.Type().Value(), Equals, read.Type().Value(), Commentf("at %v", pos))
		}
		read.Close()
		l.Close()
		img.Close()
	}
}

func (s *InterpolationSuite) TestLinearLatticeIgnoresNonFiniteNeighbors(c *C) {
	inf := float32(math.Inf(1))
	img := newLine(c, 1, inf, 3)
	defer img.Close()
	lin := NewLinear[*types.FloatType](img, nil)
	defer lin.Close()

	lin.SetPosition1(0)
	c.Assert(lin.Type().Value(), Equals, float32(1))
	lin.SetPosition1(1)
	c.Assert(lin.Type().Value(), Equals, inf)
	lin.SetPosition1(2)
	c.Assert(lin.Type().Value(), Equals, float32(3))

	nan := float32(math.NaN())
	plane, err := image.NewFactory(new(types.FloatType), storage.NewArrayFactory()).CreateImage([]int{3, 3, 2}, "nan")
	c.Assert(err, IsNil)
	defer plane.Close()
	cur := plane.CreateLocalizableCursor()
	for cur.HasNext() {
		cur.Fwd()
		v := float32(cur.PositionDim(0) + 10*cur.PositionDim(1))
		if cur.PositionDim(0) == 2 || cur.PositionDim(2) == 1 {
			v = nan
		}
		cur.Type().SetValue(v)
	}
	cur.Close()
	lin3 := NewLinear[*types.FloatType](plane, nil)
	defer lin3.Close()
	lin3.SetPosition([]float32{1, 1, 0})
	c.Assert(lin3.Type().Value(), Equals, float32(11))
	lin3.SetPosition([]float32{1, 1.5, 0})
	c.Assert(lin3.Type().Value(), Equals, float32(16))
}

func (s *InterpolationSuite) TestLinearGenericDimensions(c *C) {
	// A multilinear function is reproduced exactly up to rounding, also in 4-d
	// where no specialized kernel exists.
	dims := []int{3, 3, 3, 3}
	img, err := image.NewFactory(new(types.DoubleType), storage.NewArrayFactory()).CreateImage(dims, "ramp")
	c.Assert(err, IsNil)
	defer img.Close()
	cur := img.CreateLocalizableCursor()
	for cur.HasNext() {
		cur.Fwd()
		v := 0.0
		for d, scale := range []float64{1, 10, 100, 1000} {
			v += scale * float64(cur.PositionDim(d))
		}
		cur.Type().SetValue(v)
	}
	cur.Close()

	l := NewLinear[*types.DoubleType](img, outofbounds.NewExtendFactory[*types.DoubleType]())
	defer l.Close()
	l.SetPosition([]float32{0.5, 1.25, 0.75, 1.5})
	c.Assert(math.Abs(l.Type().Value()-(0.5+12.5+75+1500)) < 1e-9, Equals, true, Commentf("got %g", l.Type().Value()))

	l.MoveRel([]float32{1, 0, 0, -1})
	var pos [4]float32
	l.Position(pos[:])
	c.Assert(pos, Equals, [4]float32{1.5, 1.25, 0.75, 0.5})
	c.Assert(math.Abs(l.Type().Value()-(1.5+12.5+75+500)) < 1e-9, Equals, true)
}

func (s *InterpolationSuite) TestLinearIntegerRounds(c *C) {
	img, err := image.NewFactory(new(types.UnsignedByteType), storage.NewArrayFactory()).CreateImage([]int{2}, "")
	c.Assert(err, IsNil)
	defer img.Close()
	cur := img.CreateCursor()
	cur.Fwd()
	cur.Fwd()
	cur.Type().SetValue(3)
	cur.Close()

	l := NewLinearFactory[*types.UnsignedByteType](outofbounds.NewExtendFactory[*types.UnsignedByteType]()).Create(img)
	l.(Interpolator1D[*types.UnsignedByteType]).SetPosition1(0.5)
	c.Assert(l.Type().Value(), Equals, uint8(2))
	l.Close()
}

func (s *InterpolationSuite) TestLinearComplex(c *C) {
	img, err := image.NewFactory(new(types.ComplexDoubleType), storage.NewArrayFactory()).CreateImage([]int{2, 2}, "")
	c.Assert(err, IsNil)
	defer img.Close()
	cur := img.CreateLocalizableCursor()
	for cur.HasNext() {
		cur.Fwd()
		x, y := float64(cur.PositionDim(0)), float64(cur.PositionDim(1))
		cur.Type().SetComplexNumber(x+2*y, -4*x)
	}
	cur.Close()

	f := &LinearComplexFactory[*types.ComplexDoubleType]{OutOfBounds: outofbounds.NewExtendFactory[*types.ComplexDoubleType]()}
	l := f.Create(img)
	defer l.Close()
	l.SetPosition([]float32{0.25, 0.5})
	c.Assert(l.Type().GetRealDouble(), Equals, 1.25)
	c.Assert(l.Type().GetImaginaryDouble(), Equals, -1.0)
}

func TestKernelsMatchGeneric(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 1; n <= 3; n++ {
		k := kernels[n]
		for trial := 0; trial < 1000; trial++ {
			v := make([]float64, 1<<n)
			for i := range v {
				v[i] = rng.NormFloat64() * math.Pow(10, float64(rng.Intn(12)-6))
			}
			tt := make([]float64, n)
			w := make([]float64, n)
			for d := range tt {
				tt[d] = rng.Float64()
				w[d] = 1 - tt[d]
			}
			scratch := make([]float64, len(v))
			copy(scratch, v)
			want := lerpN(scratch, tt, w)
			if got := k(v, tt, w); math.Float64bits(got) != math.Float64bits(want) {
				t.Fatalf("%d-d kernel gives %v, generic gives %v for v=%v t=%v", n, got, want, v, tt)
			}
		}
	}
}

func TestVisitCornersReturnsToBase(t *testing.T) {
	for n := 1; n <= 4; n++ {
		dims := make([]int, n)
		for d := range dims {
			dims[d] = 3
		}
		img, err := image.NewFactory(new(types.FloatType), storage.NewArrayFactory()).CreateImage(dims, "")
		if err != nil {
			t.Fatal(err)
		}
		cur := img.CreateLocalizableByDimCursorOut(outofbounds.NewZeroFactory[*types.FloatType]())
		start := make([]int, n)
		cur.SetPosition(start)
		seen := make(map[int]bool)
		pos := make([]int, n)
		visitCorners(cur, n, func(k int) {
			cur.Position(pos)
			for d := range pos {
				if pos[d] != (k>>d)&1 {
					t.Errorf("corner %b visited at %v", k, pos)
				}
			}
			seen[k] = true
		})
		if len(seen) != 1<<n {
			t.Errorf("%d-d: visited %d corners", n, len(seen))
		}
		cur.Position(pos)
		for d := range pos {
			if pos[d] != 0 {
				t.Errorf("%d-d: cursor ended at %v", n, pos)
			}
		}
		if moves := cur.MoveCount(); moves != 1<<n {
			t.Errorf("%d-d: %d moves, expected %d", n, moves, 1<<n)
		}
		cur.Close()
		img.Close()
	}
}
