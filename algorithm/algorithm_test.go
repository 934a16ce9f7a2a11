package algorithm

import (
	"errors"
	"math"
	"strings"
	"testing"

	. "github.com/janelia-flyem/go/gocheck"
	"github.com/janelia-flyem/ndimg/cursor"
	"github.com/janelia-flyem/ndimg/image"
	"github.com/janelia-flyem/ndimg/multithreading"
	"github.com/janelia-flyem/ndimg/ndimg"
	"github.com/janelia-flyem/ndimg/outofbounds"
	"github.com/janelia-flyem/ndimg/storage"
	"github.com/janelia-flyem/ndimg/types"
)

func Test(t *testing.T) { TestingT(t) }

type AlgorithmSuite struct{}

var _ = Suite(&AlgorithmSuite{})

func newImage(c *C, sf storage.Factory, dims []int, value func(pos []int) float32) *image.Image[*types.FloatType] {
	img, err := image.NewFactory(new(types.FloatType), sf).CreateImage(dims, "input")
	c.Assert(err, IsNil)
	cur := img.CreateLocalizableCursor()
	pos := make([]int, len(dims))
	for cur.HasNext() {
		cur.Fwd()
		cur.Position(pos)
		cur.Type().SetValue(value(pos))
	}
	cur.Close()
	return img
}

func values(c *C, img *image.Image[*types.FloatType]) []float32 {
	out := make([]float32, img.NumPixels())
	cur := img.CreateLocalizableCursor()
	defer cur.Close()
	pos := make([]int, img.NumDimensions())
	for cur.HasNext() {
		cur.Fwd()
		cur.Position(pos)
		out[ndimg.PositionToIndex(pos, img.Dimensions())] = cur.Type().Value()
	}
	return out
}

func line(vals ...float32) func(pos []int) float32 {
	return func(pos []int) float32 { return vals[pos[0]] }
}

func (s *AlgorithmSuite) TestMeanLine(c *C) {
	input := newImage(c, storage.NewArrayFactory(), []int{5}, line(1, 2, 3, 4, 5))
	alg, err := NewMeanFilter[*types.FloatType](new(types.FloatType), input, []int{3})
	c.Assert(err, IsNil)
	c.Assert(alg.CheckInput(), Equals, true)
	c.Assert(alg.Process(), Equals, true, Commentf(alg.ErrorMessage()))
	c.Assert(alg.ErrorMessage(), Equals, "")
	c.Assert(alg.ProcessingTime() >= 0, Equals, true)

	out := values(c, alg.Result())
	c.Assert(out[0], Equals, float32(1))
	c.Assert(out[2], Equals, float32(3))
	c.Assert(out[4], Equals, float32(3))
	c.Assert(out, DeepEquals, []float32{1, 2, 3, 4, 3})

	// Processing again reuses the output image.
	result := alg.Result()
	c.Assert(alg.Process(), Equals, true)
	c.Assert(alg.Result(), Equals, result)
	c.Assert(values(c, result), DeepEquals, out)
}

func (s *AlgorithmSuite) TestConstruction(c *C) {
	input := newImage(c, storage.NewArrayFactory(), []int{4, 3}, func(pos []int) float32 { return 0 })

	_, err := NewMeanFilter[*types.FloatType](new(types.FloatType), input, []int{3})
	c.Assert(errors.Is(err, ndimg.ErrDimensionMismatch), Equals, true)
	_, err = NewMeanFilter[*types.FloatType](new(types.FloatType), input, []int{3, 0})
	c.Assert(errors.Is(err, ndimg.ErrBadExtent), Equals, true)

	alg, err := NewMeanFilter[*types.FloatType](new(types.FloatType), input, []int{4, 3})
	c.Assert(err, IsNil)
	c.Assert(alg.PatchSize(), DeepEquals, []int{4, 3})

	dst := make([]int, 2)
	c.Assert(alg.PositionOffset([]int{5, 5}, dst), IsNil)
	c.Assert(dst, DeepEquals, []int{3, 4})
	c.Assert(alg.PositionOffset([]int{5}, dst), NotNil)
	c.Assert(alg.PositionOffset([]int{5, 5, 5}, dst), NotNil)
}

func (s *AlgorithmSuite) TestFailureAborts(c *C) {
	input := newImage(c, storage.NewArrayFactory(), []int{5}, line(1, 2, 3, 4, 5))
	calls := 0
	op := PatchFunc[*types.FloatType, *types.FloatType](func(center []int, roi *cursor.RegionOfInterest[*types.FloatType], out *types.FloatType) bool {
		calls++
		return center[0] != 2
	})
	alg, err := NewROIAlgorithm[*types.FloatType, *types.FloatType](new(types.FloatType), input, []int{3}, op)
	c.Assert(err, IsNil)
	c.Assert(alg.Process(), Equals, false)
	c.Assert(calls, Equals, 3)
	c.Assert(strings.Contains(alg.ErrorMessage(), "[2]"), Equals, true, Commentf(alg.ErrorMessage()))
}

func (s *AlgorithmSuite) TestNotReentrant(c *C) {
	input := newImage(c, storage.NewArrayFactory(), []int{3}, line(1, 2, 3))
	var alg *ROIAlgorithm[*types.FloatType, *types.FloatType]
	nested := true
	op := PatchFunc[*types.FloatType, *types.FloatType](func(center []int, roi *cursor.RegionOfInterest[*types.FloatType], out *types.FloatType) bool {
		if center[0] == 1 {
			nested = alg.Process()
		}
		return true
	})
	alg, _ = NewROIAlgorithm[*types.FloatType, *types.FloatType](new(types.FloatType), input, []int{1}, op)
	c.Assert(alg.Process(), Equals, true)
	c.Assert(nested, Equals, false)
	c.Assert(alg.Process(), Equals, true)
}

func (s *AlgorithmSuite) TestParallelMatchesSequential(c *C) {
	cells := storage.NewCellFactory()
	cells.SetParameters("cell_size = [3, 4]\nmax_resident_cells = 4")
	pool := multithreading.NewPool(4)
	defer pool.Close()
	ramp := func(pos []int) float32 { return float32(pos[0]*pos[0] + 7*pos[1]) }
	for _, sf := range []storage.Factory{storage.NewArrayFactory(), cells} {
		input := newImage(c, sf, []int{11, 9}, ramp)

		seq, err := NewMeanFilter[*types.FloatType](new(types.FloatType), input, []int{3, 5})
		c.Assert(err, IsNil)
		seq.SetOutOfBoundsFactory(outofbounds.NewMirrorDoubleFactory[*types.FloatType]())
		c.Assert(seq.Process(), Equals, true)

		par, err := NewMeanFilter[*types.FloatType](new(types.FloatType), input, []int{3, 5})
		c.Assert(err, IsNil)
		par.SetOutOfBoundsFactory(outofbounds.NewMirrorDoubleFactory[*types.FloatType]())
		c.Assert(par.ProcessParallel(pool), Equals, true, Commentf(par.ErrorMessage()))

		c.Assert(values(c, par.Result()), DeepEquals, values(c, seq.Result()))
	}
}

func (s *AlgorithmSuite) TestMinMax(c *C) {
	input := newImage(c, storage.NewArrayFactory(), []int{6}, line(4, 1, 7, 3, 9, 2))
	lo, err := NewMinFilter(input, []int{3})
	c.Assert(err, IsNil)
	lo.SetOutOfBoundsFactory(outofbounds.NewExtendFactory[*types.FloatType]())
	c.Assert(lo.Process(), Equals, true)
	c.Assert(values(c, lo.Result()), DeepEquals, []float32{1, 1, 1, 3, 2, 2})

	hi, err := NewMaxFilter(input, []int{3})
	c.Assert(err, IsNil)
	c.Assert(hi.Process(), Equals, true)
	c.Assert(values(c, hi.Result()), DeepEquals, []float32{4, 7, 7, 9, 9, 9})
}

func (s *AlgorithmSuite) TestConvolution(c *C) {
	input := newImage(c, storage.NewArrayFactory(), []int{4}, line(1, 2, 3, 4))
	_, err := NewConvolution[*types.FloatType](new(types.DoubleType), input, []float64{1, 2}, []int{3})
	c.Assert(errors.Is(err, ndimg.ErrDimensionMismatch), Equals, true)

	alg, err := NewConvolution[*types.FloatType](new(types.DoubleType), input, []float64{1, 2, 0}, []int{3})
	c.Assert(err, IsNil)
	alg.SetName("convolved")
	alg.SetImageFactory(image.NewFactory(new(types.DoubleType), storage.NewCellFactory()))
	c.Assert(alg.Process(), Equals, true)
	result := alg.Result()
	c.Assert(result.Name(), Equals, "convolved")
	c.Assert(result.Container().Factory().Name(), Equals, "cell")

	// out[x] = 2*in[x] + in[x+1]
	cur := result.CreateCursor()
	var got []float64
	for cur.HasNext() {
		cur.Fwd()
		got = append(got, cur.Type().Value())
	}
	cur.Close()
	c.Assert(got, DeepEquals, []float64{4, 7, 10, 8})
}

func (s *AlgorithmSuite) TestKernels(c *C) {
	kernel, dims := GaussianKernel([]float64{1, 0.5})
	c.Assert(dims, DeepEquals, []int{7, 5})
	var total float64
	for _, w := range kernel {
		total += w
	}
	c.Assert(math.Abs(total-1) < 1e-12, Equals, true)
	c.Assert(kernel[0], Equals, kernel[len(kernel)-1])
	center := ndimg.PositionToIndex([]int{3, 2}, dims)
	for _, w := range kernel {
		c.Assert(w <= kernel[center], Equals, true)
	}

	img := newImage(c, storage.NewArrayFactory(), []int{2, 2}, func(pos []int) float32 { return float32(pos[0] + 2*pos[1]) })
	k, kdims := KernelFromImage(img)
	c.Assert(kdims, DeepEquals, []int{2, 2})
	c.Assert(k, DeepEquals, []float64{0, 1, 2, 3})
}
