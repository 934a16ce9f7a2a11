/*
Package algorithm provides the windowed algorithm framework.

ROIAlgorithm walks every position of an output image with the extent of the
input, centers a fixed-size patch of the input on it and hands a region of
interest cursor over that patch to a PatchOperation, which writes the output
pixel.  Patches overhanging the border read through an out-of-bounds strategy,
zero unless set otherwise.  Mean, min, max and convolution filters are built on
it in filters.go.
*/
package algorithm

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/janelia-flyem/ndimg/cursor"
	"github.com/janelia-flyem/ndimg/image"
	"github.com/janelia-flyem/ndimg/multithreading"
	"github.com/janelia-flyem/ndimg/ndimg"
	"github.com/janelia-flyem/ndimg/outofbounds"
	"github.com/janelia-flyem/ndimg/types"
)

// Algorithm is the contract shared by all algorithms.
type Algorithm interface {
	CheckInput() bool
	Process() bool
	ErrorMessage() string
}

// OutputAlgorithm produces an image.
type OutputAlgorithm[S types.Type[S]] interface {
	Algorithm
	Result() *image.Image[S]
}

// Benchmark reports how long the last successful run took.
type Benchmark interface {
	ProcessingTime() time.Duration
}

// PatchOperation computes one output pixel.  center is the position of the
// output pixel and of the patch center in the input, roi is reset over the
// patch and out is linked to the output pixel.  Returning false aborts the
// run.  Operations may be called from several goroutines at once by
// ProcessParallel, so they should keep no state between calls.
type PatchOperation[T, S any] interface {
	PatchOperation(center []int, roi *cursor.RegionOfInterest[T], out S) bool
}

// PatchFunc adapts a function to the PatchOperation interface.
type PatchFunc[T, S any] func(center []int, roi *cursor.RegionOfInterest[T], out S) bool

func (f PatchFunc[T, S]) PatchOperation(center []int, roi *cursor.RegionOfInterest[T], out S) bool {
	return f(center, roi, out)
}

// failureReporter is implemented by operations that can explain a failure.
type failureReporter interface {
	FailureMessage() string
}

// ROIAlgorithm runs a PatchOperation over every position of its input.
type ROIAlgorithm[T types.Type[T], S types.Type[S]] struct {
	input   *image.Image[T]
	outType S
	op      PatchOperation[T, S]
	patch   []int
	offset  []int

	oob      outofbounds.Factory[T]
	factory  *image.Factory[S]
	output   *image.Image[S]
	name     string
	running  atomic.Bool
	failed   atomic.Bool
	mu       sync.Mutex // guards errMsg
	errMsg   string
	duration time.Duration
}

// NewROIAlgorithm returns an algorithm writing images of outType's kind.  The
// patch must have one positive extent per input dimension.
func NewROIAlgorithm[T types.Type[T], S types.Type[S]](outType S, input *image.Image[T], patch []int, op PatchOperation[T, S]) (*ROIAlgorithm[T, S], error) {
	if len(patch) != input.NumDimensions() {
		return nil, fmt.Errorf("patch size %v for %d-d image %q: %w", patch, input.NumDimensions(), input.Name(), ndimg.ErrDimensionMismatch)
	}
	if err := ndimg.CheckExtent(patch); err != nil {
		return nil, fmt.Errorf("bad patch size: %w", err)
	}
	a := &ROIAlgorithm[T, S]{
		input:   input,
		outType: outType.CreateVariable(),
		op:      op,
		patch:   ndimg.CopyInts(patch),
		offset:  make([]int, len(patch)),
		oob:     outofbounds.NewZeroFactory[T](),
	}
	for d, size := range patch {
		a.offset[d] = size / 2
	}
	return a, nil
}

// SetOutOfBoundsFactory sets the strategy for patches overhanging the border.
// A nil factory restores the zero default.
func (a *ROIAlgorithm[T, S]) SetOutOfBoundsFactory(f outofbounds.Factory[T]) {
	if f == nil {
		f = outofbounds.NewZeroFactory[T]()
	}
	a.oob = f
}

// SetImageFactory sets the factory for the output image.  By default the
// output uses the input's storage backend.
func (a *ROIAlgorithm[T, S]) SetImageFactory(f *image.Factory[S]) { a.factory = f }

// SetName sets the name given to the output image.
func (a *ROIAlgorithm[T, S]) SetName(name string) { a.name = name }

func (a *ROIAlgorithm[T, S]) Name() string { return a.name }

// PatchSize returns a copy of the patch extent.
func (a *ROIAlgorithm[T, S]) PatchSize() []int { return ndimg.CopyInts(a.patch) }

// PositionOffset writes into dst the patch origin for a patch centered on pos.
func (a *ROIAlgorithm[T, S]) PositionOffset(pos, dst []int) error {
	if len(dst) < len(pos) {
		return fmt.Errorf("cannot copy %d values into a vector of length %d: %w", len(pos), len(dst), ndimg.ErrDimensionMismatch)
	}
	if len(pos) < len(a.offset) {
		return fmt.Errorf("position %v has fewer dimensions than the %d-d input: %w", pos, len(a.offset), ndimg.ErrDimensionMismatch)
	}
	for d := range a.offset {
		dst[d] = pos[d] - a.offset[d]
	}
	return nil
}

// CheckInput returns true if a patch cursor can be opened over the input.
func (a *ROIAlgorithm[T, S]) CheckInput() bool {
	if a.op == nil {
		a.setError("no patch operation")
		return false
	}
	cur := a.input.CreateLocalizableByDimCursorOut(a.oob)
	defer cur.Close()
	roi := cur.CreateRegionOfInterestCursor(make([]int, len(a.patch)), a.patch)
	if roi == nil || !roi.IsActive() {
		a.setError("unable to open a patch cursor over the input")
		return false
	}
	roi.Close()
	return true
}

// Result returns the output image, creating it on first use.  It returns nil
// if the image could not be created; see ErrorMessage.
func (a *ROIAlgorithm[T, S]) Result() *image.Image[S] {
	if a.output != nil {
		return a.output
	}
	if a.factory == nil {
		a.factory = image.NewFactory(a.outType, a.input.Container().Factory())
	}
	out, err := a.factory.CreateImage(a.input.Dimensions(), a.name)
	if err != nil {
		a.setError(err.Error())
		return nil
	}
	if err := out.SetCalibration(a.input.Calibration()); err != nil {
		ndimg.Warningf("output image %q: %v\n", out.Name(), err)
	}
	a.output = out
	return out
}

func (a *ROIAlgorithm[T, S]) ErrorMessage() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.errMsg
}

func (a *ROIAlgorithm[T, S]) setError(msg string) {
	a.mu.Lock()
	a.errMsg = msg
	a.mu.Unlock()
}

// ProcessingTime returns the duration of the last successful run.
func (a *ROIAlgorithm[T, S]) ProcessingTime() time.Duration { return a.duration }

// Process fills the output image.  It returns false if a patch operation
// failed or another run is in progress.
func (a *ROIAlgorithm[T, S]) Process() bool {
	return a.run(func(out *image.Image[S]) {
		a.processRange(out, 0, out.NumPixels())
	})
}

// ProcessParallel is Process with the output positions split among the
// workers of pool.  Each worker uses its own cursors.
func (a *ROIAlgorithm[T, S]) ProcessParallel(pool *multithreading.Pool) bool {
	return a.run(func(out *image.Image[S]) {
		pool.ParallelFor(out.NumPixels(), func(start, end int) {
			a.processRange(out, start, end)
		})
	})
}

func (a *ROIAlgorithm[T, S]) run(traverse func(out *image.Image[S])) bool {
	if !a.running.CompareAndSwap(false, true) {
		a.mu.Lock()
		a.errMsg = "algorithm is already processing"
		a.mu.Unlock()
		return false
	}
	defer a.running.Store(false)

	if !a.CheckInput() {
		return false
	}
	out := a.Result()
	if out == nil {
		return false
	}
	a.failed.Store(false)
	a.mu.Lock()
	a.errMsg = ""
	a.mu.Unlock()

	timedLog := ndimg.NewTimeLog()
	traverse(out)
	if a.failed.Load() {
		return false
	}
	a.duration = timedLog.Elapsed()
	timedLog.Debugf("Processed %d pixels of %q with patch %v\n", out.NumPixels(), out.Name(), a.patch)
	return true
}

// processRange runs the operation for output pixels [start, end) in native
// order, stopping early once any range failed.
func (a *ROIAlgorithm[T, S]) processRange(out *image.Image[S], start, end int) {
	oc := out.CreateLocalizableCursor()
	defer oc.Close()
	in := a.input.CreateLocalizableByDimCursorOut(a.oob)
	defer in.Close()
	roi := in.CreateRegionOfInterestCursor(make([]int, len(a.patch)), a.patch)
	if roi == nil {
		a.fail("unable to open a patch cursor over the input")
		return
	}
	defer roi.Close()

	pos := make([]int, len(a.patch))
	origin := make([]int, len(a.patch))
	if start > 0 {
		oc.JumpFwd(start)
	}
	for i := start; i < end; i++ {
		if a.failed.Load() {
			return
		}
		oc.Fwd()
		oc.Position(pos)
		a.PositionOffset(pos, origin)
		roi.ResetTo(origin)
		if !a.op.PatchOperation(pos, roi, oc.Type()) {
			msg := fmt.Sprintf("patch operation failed at %v", pos)
			if r, ok := a.op.(failureReporter); ok && r.FailureMessage() != "" {
				msg += ": " + r.FailureMessage()
			}
			a.fail(msg)
			return
		}
	}
}

// fail records the first failure of a run.
func (a *ROIAlgorithm[T, S]) fail(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failed.CompareAndSwap(false, true) {
		a.errMsg = msg
	}
}

var (
	_ OutputAlgorithm[*types.FloatType] = (*ROIAlgorithm[*types.ByteType, *types.FloatType])(nil)
	_ Benchmark                         = (*ROIAlgorithm[*types.ByteType, *types.FloatType])(nil)
)
