package algorithm

import (
	"fmt"
	"math"

	"github.com/janelia-flyem/ndimg/cursor"
	"github.com/janelia-flyem/ndimg/image"
	"github.com/janelia-flyem/ndimg/ndimg"
	"github.com/janelia-flyem/ndimg/types"
)

// NewMeanFilter returns an algorithm writing the mean of each patch, including
// any out-of-bounds samples, as outType's kind.
func NewMeanFilter[T types.RealValued[T], S types.RealValued[S]](outType S, input *image.Image[T], patch []int) (*ROIAlgorithm[T, S], error) {
	return NewROIAlgorithm[T, S](outType, input, patch, PatchFunc[T, S](mean[T, S]))
}

func mean[T types.RealValued[T], S types.RealValued[S]](center []int, roi *cursor.RegionOfInterest[T], out S) bool {
	var sum float64
	n := 0
	for roi.HasNext() {
		roi.Fwd()
		sum += roi.Type().GetRealDouble()
		n++
	}
	if n == 0 {
		return false
	}
	out.SetReal(sum / float64(n))
	return true
}

// NewMinFilter returns an algorithm writing the smallest value of each patch,
// i.e., a grayscale erosion with a box structuring element.
func NewMinFilter[T types.ComparableType[T]](input *image.Image[T], patch []int) (*ROIAlgorithm[T, T], error) {
	return NewROIAlgorithm[T, T](input.CreateType(), input, patch, PatchFunc[T, T](extremum[T](-1)))
}

// NewMaxFilter returns an algorithm writing the largest value of each patch,
// i.e., a grayscale dilation with a box structuring element.
func NewMaxFilter[T types.ComparableType[T]](input *image.Image[T], patch []int) (*ROIAlgorithm[T, T], error) {
	return NewROIAlgorithm[T, T](input.CreateType(), input, patch, PatchFunc[T, T](extremum[T](1)))
}

// extremum keeps the patch value v with v.CompareTo(best) == sign.  The output
// pixel itself holds the running best, so no scratch proxy is shared between
// goroutines.
func extremum[T types.ComparableType[T]](sign int) func([]int, *cursor.RegionOfInterest[T], T) bool {
	return func(center []int, roi *cursor.RegionOfInterest[T], out T) bool {
		first := true
		for roi.HasNext() {
			roi.Fwd()
			v := roi.Type()
			if first || v.CompareTo(out) == sign {
				out.Set(v)
				first = false
			}
		}
		return !first
	}
}

// Convolution computes the weighted sum of each patch.  The kernel is stored
// x-fastest with the extent of the patch and is applied flipped, so a kernel
// that is not symmetric gives a true convolution rather than a correlation.
type Convolution[T types.RealValued[T], S types.RealValued[S]] struct {
	kernel []float64
}

// NewConvolution returns an algorithm convolving input with kernel, whose extent
// is dims.
func NewConvolution[T types.RealValued[T], S types.RealValued[S]](outType S, input *image.Image[T], kernel []float64, dims []int) (*ROIAlgorithm[T, S], error) {
	n, err := ndimg.NumPixels(dims)
	if err != nil {
		return nil, fmt.Errorf("bad kernel size: %w", err)
	}
	if n != len(kernel) {
		return nil, fmt.Errorf("kernel of %d weights for extent %v: %w", len(kernel), dims, ndimg.ErrDimensionMismatch)
	}
	conv := &Convolution[T, S]{kernel: make([]float64, n)}
	for i, w := range kernel {
		conv.kernel[n-1-i] = w
	}
	return NewROIAlgorithm[T, S](outType, input, dims, conv)
}

func (conv *Convolution[T, S]) PatchOperation(center []int, roi *cursor.RegionOfInterest[T], out S) bool {
	var sum float64
	i := 0
	for roi.HasNext() {
		roi.Fwd()
		sum += conv.kernel[i] * roi.Type().GetRealDouble()
		i++
	}
	out.SetReal(sum)
	return true
}

// KernelFromImage returns the values of a kernel image x-fastest along with
// its extent.
func KernelFromImage[K types.RealValued[K]](img *image.Image[K]) ([]float64, []int) {
	dims := img.Dimensions()
	kernel := make([]float64, img.NumPixels())
	cur := img.CreateLocalizableCursor()
	defer cur.Close()
	pos := make([]int, len(dims))
	for cur.HasNext() {
		cur.Fwd()
		cur.Position(pos)
		kernel[ndimg.PositionToIndex(pos, dims)] = cur.Type().GetRealDouble()
	}
	return kernel, dims
}

// GaussianKernel returns a normalized separable Gaussian kernel for the given
// per-dimension sigmas, extending 3 sigma to each side.
func GaussianKernel(sigma []float64) ([]float64, []int) {
	dims := make([]int, len(sigma))
	profiles := make([][]float64, len(sigma))
	for d, s := range sigma {
		r := int(math.Ceil(3 * s))
		if r < 1 {
			r = 1
		}
		dims[d] = 2*r + 1
		profiles[d] = make([]float64, dims[d])
		for i := range profiles[d] {
			x := float64(i - r)
			if s > 0 {
				profiles[d][i] = math.Exp(-x * x / (2 * s * s))
			} else if x == 0 {
				profiles[d][i] = 1
			}
		}
	}
	n, _ := ndimg.NumPixels(dims)
	kernel := make([]float64, n)
	pos := make([]int, len(dims))
	var total float64
	for i := range kernel {
		ndimg.IndexToPosition(i, dims, pos)
		w := 1.0
		for d, p := range pos {
			w *= profiles[d][p]
		}
		kernel[i] = w
		total += w
	}
	for i := range kernel {
		kernel[i] /= total
	}
	return kernel, dims
}
