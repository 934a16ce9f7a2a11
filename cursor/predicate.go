package cursor

import "github.com/janelia-flyem/ndimg/types"

// Predicate selects pixels.
type Predicate[T any] interface {
	Test(v T) bool
}

// PredicateFunc adapts a function to a Predicate.
type PredicateFunc[T any] func(v T) bool

func (f PredicateFunc[T]) Test(v T) bool { return f(v) }

// AlwaysTrue accepts every pixel.
type AlwaysTrue[T any] struct{}

func (AlwaysTrue[T]) Test(v T) bool { return true }

// AboveThreshold accepts pixels strictly greater than a threshold.
type AboveThreshold[T types.ComparableType[T]] struct {
	Threshold T
}

func (p AboveThreshold[T]) Test(v T) bool { return v.CompareTo(p.Threshold) > 0 }

// BelowThreshold accepts pixels strictly less than a threshold.
type BelowThreshold[T types.ComparableType[T]] struct {
	Threshold T
}

func (p BelowThreshold[T]) Test(v T) bool { return v.CompareTo(p.Threshold) < 0 }

// InRange accepts pixels within [Min, Max].
type InRange[T types.ComparableType[T]] struct {
	Min, Max T
}

func (p InRange[T]) Test(v T) bool {
	return v.CompareTo(p.Min) >= 0 && v.CompareTo(p.Max) <= 0
}

// Filtered visits only the pixels accepted by a predicate.  A scout cursor
// looks ahead for the next match so HasNext has no visible effect.
type Filtered[T any] struct {
	scout, cur    Cursor[T]
	pred          Predicate[T]
	scoutN, curN  int
	looked, found bool
}

// NewFiltered filters the pixels of cur.  scout must be a second cursor over
// the same container in the same order; both are owned by the result.
func NewFiltered[T any](cur, scout Cursor[T], pred Predicate[T]) *Filtered[T] {
	return &Filtered[T]{scout: scout, cur: cur, pred: pred}
}

func (f *Filtered[T]) look() {
	f.found = false
	for f.scout.HasNext() {
		f.scout.Fwd()
		f.scoutN++
		if f.pred.Test(f.scout.Type()) {
			f.found = true
			break
		}
	}
	f.looked = true
}

func (f *Filtered[T]) HasNext() bool {
	if !f.looked {
		f.look()
	}
	return f.found
}

func (f *Filtered[T]) Fwd() {
	if !f.looked {
		f.look()
	}
	f.cur.JumpFwd(f.scoutN - f.curN)
	f.curN = f.scoutN
	f.looked = false
}

func (f *Filtered[T]) Reset() {
	f.scout.Reset()
	f.cur.Reset()
	f.scoutN, f.curN = 0, 0
	f.looked, f.found = false, false
}

func (f *Filtered[T]) Type() T { return f.cur.Type() }

// Cursor returns the underlying cursor positioned on the current match.
func (f *Filtered[T]) Cursor() Cursor[T] { return f.cur }

func (f *Filtered[T]) Close() {
	f.scout.Close()
	f.cur.Close()
}
