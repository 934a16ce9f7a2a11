package fft

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"
	"time"

	"github.com/janelia-flyem/ndimg/image"
	"github.com/janelia-flyem/ndimg/multithreading"
	"github.com/janelia-flyem/ndimg/ndimg"
	"github.com/janelia-flyem/ndimg/types"
)

// PhaseCorrelationPeak is a candidate shift between two images.
type PhaseCorrelationPeak struct {
	// Position is the shift s such that the second image at x matches the
	// first at x - s.
	Position []int

	PhaseCorrelation float64

	// CrossCorrelation is the Pearson correlation of the overlapping pixels
	// under the shift, and NumPixels the size of the overlap.  Both are zero
	// unless the peak was verified.
	CrossCorrelation float64
	NumPixels        int

	sortByPhase bool
}

// CompareTo orders peaks by phase correlation or, once verified, by cross
// correlation.  It returns -1, 0 or 1.
func (p PhaseCorrelationPeak) CompareTo(q PhaseCorrelationPeak) int {
	a, b := p.CrossCorrelation, q.CrossCorrelation
	if p.sortByPhase {
		a, b = p.PhaseCorrelation, q.PhaseCorrelation
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (p PhaseCorrelationPeak) String() string {
	return fmt.Sprintf("shift %v (phase %.4f, cross %.4f over %d pixels)", p.Position, p.PhaseCorrelation, p.CrossCorrelation, p.NumPixels)
}

// SortPeaks sorts peaks best first, by phase correlation if byPhase is set and
// by cross correlation otherwise.
func SortPeaks(peaks []PhaseCorrelationPeak, byPhase bool) {
	for i := range peaks {
		peaks[i].sortByPhase = byPhase
	}
	sort.SliceStable(peaks, func(i, j int) bool { return peaks[i].CompareTo(peaks[j]) > 0 })
}

// PhaseCorrelation finds the translation between two images of equal extent.
type PhaseCorrelation[T types.RealValued[T], S types.RealValued[S]] struct {
	img1 *image.Image[T]
	img2 *image.Image[S]

	// NumPeaks is the number of phase correlation maxima examined.
	NumPeaks int

	// Verify checks every peak and its periodic alternatives by cross
	// correlation, which resolves the ambiguity of shifts beyond half the
	// extent.
	Verify bool

	// MinOverlap is the smallest overlap, in pixels, a verified shift may have.
	MinOverlap int

	pool     *multithreading.Pool
	peaks    []PhaseCorrelationPeak
	errMsg   string
	duration time.Duration
}

// NewPhaseCorrelation returns a registration of img2 against img1 examining 5
// peaks with verification.
func NewPhaseCorrelation[T types.RealValued[T], S types.RealValued[S]](img1 *image.Image[T], img2 *image.Image[S]) *PhaseCorrelation[T, S] {
	return &PhaseCorrelation[T, S]{
		img1:       img1,
		img2:       img2,
		NumPeaks:   5,
		Verify:     true,
		MinOverlap: 1,
	}
}

// SetPool verifies peaks concurrently on pool.
func (pc *PhaseCorrelation[T, S]) SetPool(pool *multithreading.Pool) { pc.pool = pool }

func (pc *PhaseCorrelation[T, S]) CheckInput() bool {
	if pc.img1 == nil || pc.img2 == nil {
		pc.errMsg = "phase correlation needs two images"
		return false
	}
	d1, d2 := pc.img1.Dimensions(), pc.img2.Dimensions()
	if len(d1) != len(d2) {
		pc.errMsg = fmt.Sprintf("images have %d and %d dimensions", len(d1), len(d2))
		return false
	}
	for d := range d1 {
		if d1[d] != d2[d] {
			pc.errMsg = fmt.Sprintf("image extents %v and %v differ", d1, d2)
			return false
		}
	}
	if pc.NumPeaks < 1 {
		pc.errMsg = fmt.Sprintf("number of peaks must be positive, got %d", pc.NumPeaks)
		return false
	}
	return true
}

func (pc *PhaseCorrelation[T, S]) Process() bool {
	if !pc.CheckInput() {
		return false
	}
	timedLog := ndimg.NewTimeLog()
	dims := pc.img1.Dimensions()
	f1 := Values(pc.img1)
	f2 := Values(pc.img2)
	if err := Transform(f1, dims, false); err != nil {
		pc.errMsg = err.Error()
		return false
	}
	if err := Transform(f2, dims, false); err != nil {
		pc.errMsg = err.Error()
		return false
	}
	for i, a := range f1 {
		p := f2[i] * cmplx.Conj(a)
		if m := cmplx.Abs(p); m > 1e-12 {
			f1[i] = p / complex(m, 0)
		} else {
			f1[i] = 0
		}
	}
	if err := Transform(f1, dims, true); err != nil {
		pc.errMsg = err.Error()
		return false
	}

	pc.peaks = localMaxima(f1, dims, pc.NumPeaks)
	if len(pc.peaks) == 0 {
		pc.errMsg = "phase correlation matrix has no peak"
		return false
	}
	if pc.Verify {
		pc.verifyPeaks(dims)
		SortPeaks(pc.peaks, false)
	}
	pc.errMsg = ""
	pc.duration = timedLog.Elapsed()
	timedLog.Debugf("Phase correlation of %q and %q: %d peaks, best %s\n", pc.img1.Name(), pc.img2.Name(), len(pc.peaks), pc.peaks[0])
	return true
}

// Peaks returns the examined peaks, best first.
func (pc *PhaseCorrelation[T, S]) Peaks() []PhaseCorrelationPeak { return pc.peaks }

// Shift returns the best peak.
func (pc *PhaseCorrelation[T, S]) Shift() PhaseCorrelationPeak {
	if len(pc.peaks) == 0 {
		return PhaseCorrelationPeak{}
	}
	return pc.peaks[0]
}

func (pc *PhaseCorrelation[T, S]) ErrorMessage() string          { return pc.errMsg }
func (pc *PhaseCorrelation[T, S]) ProcessingTime() time.Duration { return pc.duration }

// localMaxima returns up to n pixels of pcm that exceed their direct periodic
// neighbors, highest first, with positions signed into (-dim/2, dim/2].
func localMaxima(pcm []complex128, dims []int, n int) []PhaseCorrelationPeak {
	steps := make([]int, len(dims))
	ndimg.Steps(dims, steps)
	pos := make([]int, len(dims))
	var peaks []PhaseCorrelationPeak
	for i, v := range pcm {
		value := real(v)
		ndimg.IndexToPosition(i, dims, pos)
		isMax := true
		for d, size := range dims {
			if size == 1 {
				continue
			}
			lo := i - steps[d]
			if pos[d] == 0 {
				lo += size * steps[d]
			}
			hi := i + steps[d]
			if pos[d] == size-1 {
				hi -= size * steps[d]
			}
			if real(pcm[lo]) >= value || real(pcm[hi]) > value {
				isMax = false
				break
			}
		}
		if !isMax {
			continue
		}
		shift := make([]int, len(dims))
		for d, p := range pos {
			if p > dims[d]/2 {
				p -= dims[d]
			}
			shift[d] = p
		}
		peaks = append(peaks, PhaseCorrelationPeak{Position: shift, PhaseCorrelation: value})
	}
	SortPeaks(peaks, true)
	if len(peaks) > n {
		peaks = peaks[:n]
	}
	return peaks
}

// verifyPeaks replaces each peak by whichever periodic alternative of its
// shift correlates best over the overlap.
func (pc *PhaseCorrelation[T, S]) verifyPeaks(dims []int) {
	verify := func(i int) {
		peak := &pc.peaks[i]
		best := PhaseCorrelationPeak{CrossCorrelation: math.Inf(-1)}
		shift := make([]int, len(dims))
		for variant := 0; variant < 1<<len(dims); variant++ {
			for d, s := range peak.Position {
				shift[d] = s
				if variant&(1<<d) != 0 {
					if s == 0 {
						shift[d] = dims[d]
					} else if s > 0 {
						shift[d] = s - dims[d]
					} else {
						shift[d] = s + dims[d]
					}
				}
			}
			r, n := pc.crossCorrelation(shift, dims)
			if n >= pc.MinOverlap && r > best.CrossCorrelation {
				best.Position = ndimg.CopyInts(shift)
				best.CrossCorrelation = r
				best.NumPixels = n
			}
		}
		if best.Position == nil {
			peak.CrossCorrelation = math.Inf(-1)
			return
		}
		peak.Position = best.Position
		peak.CrossCorrelation = best.CrossCorrelation
		peak.NumPixels = best.NumPixels
	}
	if pc.pool != nil {
		pc.pool.ParallelForAtomic(len(pc.peaks), verify)
		return
	}
	for i := range pc.peaks {
		verify(i)
	}
}

// crossCorrelation returns the Pearson correlation of img2 at x against img1
// at x - shift over their overlap, and the overlap size.
func (pc *PhaseCorrelation[T, S]) crossCorrelation(shift, dims []int) (float64, int) {
	size := make([]int, len(dims))
	off1 := make([]int, len(dims))
	off2 := make([]int, len(dims))
	for d, s := range shift {
		size[d] = dims[d] - abs(s)
		if size[d] <= 0 {
			return 0, 0
		}
		if s > 0 {
			off2[d] = s
		} else {
			off1[d] = -s
		}
	}
	c1 := pc.img1.CreateLocalizableByDimCursor()
	defer c1.Close()
	c2 := pc.img2.CreateLocalizableByDimCursor()
	defer c2.Close()
	r1 := c1.CreateRegionOfInterestCursor(off1, size)
	r2 := c2.CreateRegionOfInterestCursor(off2, size)
	defer r1.Close()
	defer r2.Close()

	var n int
	var s1, s2, s11, s22, s12 float64
	for r1.HasNext() {
		r1.Fwd()
		r2.Fwd()
		a := r1.Type().GetRealDouble()
		b := r2.Type().GetRealDouble()
		s1 += a
		s2 += b
		s11 += a * a
		s22 += b * b
		s12 += a * b
		n++
	}
	fn := float64(n)
	cov := s12 - s1*s2/fn
	v1 := s11 - s1*s1/fn
	v2 := s22 - s2*s2/fn
	if v1 <= 0 || v2 <= 0 {
		return 0, n
	}
	return cov / math.Sqrt(v1*v2), n
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
