/*
Package fft computes N-d discrete Fourier transforms of images and registers
two images by phase correlation.

Transforms run along one dimension at a time with gonum's complex FFT, so any
extent is supported; lengths with large prime factors are slower.
*/
package fft

import (
	"fmt"

	"github.com/janelia-flyem/ndimg/image"
	"github.com/janelia-flyem/ndimg/ndimg"
	"github.com/janelia-flyem/ndimg/storage"
	"github.com/janelia-flyem/ndimg/types"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Transform replaces data, an x-fastest array of extent dims, by its N-d
// discrete Fourier transform.  The inverse transform is scaled by 1/n so that
// a forward and inverse pass restore the input.
func Transform(data []complex128, dims []int, inverse bool) error {
	total, err := ndimg.NumPixels(dims)
	if err != nil {
		return err
	}
	if total != len(data) {
		return fmt.Errorf("%d values for extent %v: %w", len(data), dims, ndimg.ErrDimensionMismatch)
	}
	stride := 1
	for _, n := range dims {
		if n > 1 {
			transformDim(data, n, stride, inverse)
		}
		stride *= n
	}
	if inverse {
		scale := complex(1/float64(total), 0)
		for i := range data {
			data[i] *= scale
		}
	}
	return nil
}

// transformDim transforms every line of length n whose elements are stride
// apart.
func transformDim(data []complex128, n, stride int, inverse bool) {
	t := fourier.NewCmplxFFT(n)
	line := make([]complex128, n)
	out := make([]complex128, n)
	block := n * stride
	for start := 0; start < len(data); start += block {
		for offset := 0; offset < stride; offset++ {
			first := start + offset
			for i := range line {
				line[i] = data[first+i*stride]
			}
			if inverse {
				t.Sequence(out, line)
			} else {
				t.Coefficients(out, line)
			}
			for i, v := range out {
				data[first+i*stride] = v
			}
		}
	}
}

// Values returns the real values of img x-fastest.
func Values[T types.RealValued[T]](img *image.Image[T]) []complex128 {
	dims := img.Dimensions()
	data := make([]complex128, img.NumPixels())
	cur := img.CreateLocalizableCursor()
	defer cur.Close()
	pos := make([]int, len(dims))
	for cur.HasNext() {
		cur.Fwd()
		cur.Position(pos)
		data[ndimg.PositionToIndex(pos, dims)] = complex(cur.Type().GetRealDouble(), 0)
	}
	return data
}

// ComplexImage is the image kind holding transforms.
type ComplexImage = image.Image[*types.ComplexDoubleType]

// FourierTransform returns the transform of img as a complex image created on
// sf, or on img's storage backend if sf is nil.
func FourierTransform[T types.RealValued[T]](img *image.Image[T], sf storage.Factory) (*ComplexImage, error) {
	data := Values(img)
	dims := img.Dimensions()
	if err := Transform(data, dims, false); err != nil {
		return nil, err
	}
	if sf == nil {
		sf = img.Container().Factory()
	}
	out, err := image.NewFactory(new(types.ComplexDoubleType), sf).CreateImage(dims, "fft of "+img.Name())
	if err != nil {
		return nil, err
	}
	cur := out.CreateLocalizableCursor()
	defer cur.Close()
	pos := make([]int, len(dims))
	for cur.HasNext() {
		cur.Fwd()
		cur.Position(pos)
		v := data[ndimg.PositionToIndex(pos, dims)]
		cur.Type().SetComplexNumber(real(v), imag(v))
	}
	return out, nil
}

// InverseFourierTransform writes the real part of the inverse transform of
// spectrum into a new image of kind T.
func InverseFourierTransform[T types.RealValued[T]](spectrum *ComplexImage, f *image.Factory[T]) (*image.Image[T], error) {
	dims := spectrum.Dimensions()
	data := make([]complex128, spectrum.NumPixels())
	pos := make([]int, len(dims))
	in := spectrum.CreateLocalizableCursor()
	for in.HasNext() {
		in.Fwd()
		in.Position(pos)
		v := in.Type()
		data[ndimg.PositionToIndex(pos, dims)] = complex(v.GetRealDouble(), v.GetImaginaryDouble())
	}
	in.Close()
	if err := Transform(data, dims, true); err != nil {
		return nil, err
	}
	out, err := f.CreateImage(dims, "inverse fft")
	if err != nil {
		return nil, err
	}
	cur := out.CreateLocalizableCursor()
	defer cur.Close()
	for cur.HasNext() {
		cur.Fwd()
		cur.Position(pos)
		cur.Type().SetReal(real(data[ndimg.PositionToIndex(pos, dims)]))
	}
	return out, nil
}
