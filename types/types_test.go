package types

import (
	"math"
	"testing"

	. "github.com/janelia-flyem/go/gocheck"
	"github.com/janelia-flyem/ndimg/storage"
)

func Test(t *testing.T) { TestingT(t) }

type TypesSuite struct{}

var _ = Suite(&TypesSuite{})

func (s *TypesSuite) TestLinkedNumber(c *C) {
	cont, linked, err := new(FloatType).CreateSuitableContainer(storage.NewArrayFactory(), []int{4, 2})
	c.Assert(err, IsNil)
	c.Assert(cont.NumPixels(), Equals, 8)

	a := linked.DuplicateTypeOnSameContainer()
	a.UpdateContainer(0)
	a.UpdateIndex(5)
	a.SetValue(2.5)

	b := linked.DuplicateTypeOnSameContainer()
	b.UpdateContainer(0)
	b.UpdateIndex(4)
	b.IncIndex()
	c.Assert(b.Value(), Equals, float32(2.5))

	// Clones are detached.
	clone := b.Clone()
	b.SetValue(1)
	c.Assert(clone.Value(), Equals, float32(2.5))
	c.Assert(clone.IsVariable(), Equals, true)
}

func (s *TypesSuite) TestArithmetic(c *C) {
	a := NewNumber[int16](7)
	b := NewNumber[int16](2)
	a.Add(b)
	c.Assert(a.Value(), Equals, int16(9))
	a.Div(b)
	c.Assert(a.Value(), Equals, int16(4))
	a.MulScalar(1.4)
	c.Assert(a.Value(), Equals, int16(6))
	a.SubScalar(6.5)
	c.Assert(a.Value(), Equals, int16(-1))
	c.Assert(a.CompareTo(b), Equals, -1)
	c.Assert(b.CompareTo(a), Equals, 1)
	c.Assert(a.GetPhaseDouble(), Equals, math.Pi)

	v := a.CreateVariable()
	c.Assert(v.Value(), Equals, int16(0))
	v.SetOne()
	v.Inc()
	c.Assert(v.GetRealDouble(), Equals, 2.0)

	f := NewNumber[float32](1)
	f.DivScalar(4)
	c.Assert(f.Value(), Equals, float32(0.25))
	c.Assert(new(UnsignedByteType).GetMaxValue(), Equals, 255.0)
	c.Assert(new(ShortType).GetMinValue(), Equals, -32768.0)
}

func (s *TypesSuite) TestBitPacking(c *C) {
	cont, linked, err := new(BitType).CreateSuitableContainer(storage.NewArrayFactory(), []int{130})
	c.Assert(err, IsNil)
	b := linked.DuplicateTypeOnSameContainer()
	b.UpdateContainer(0)
	for i := 0; i < cont.NumPixels(); i++ {
		b.UpdateIndex(i)
		b.SetBool(i%3 == 0)
	}
	for i := 0; i < cont.NumPixels(); i++ {
		b.UpdateIndex(i)
		c.Assert(b.Bool(), Equals, i%3 == 0)
	}

	x := NewBit(true)
	x.Add(NewBit(true))
	c.Assert(x.Bool(), Equals, false)
	x.SetReal(0.7)
	c.Assert(x.Bool(), Equals, true)
	c.Assert(x.CompareTo(NewBit(false)), Equals, 1)
}

func (s *TypesSuite) TestTwelveBitPacking(c *C) {
	cont, linked, err := new(Unsigned12BitType).CreateSuitableContainer(storage.NewArrayFactory(), []int{37})
	c.Assert(err, IsNil)
	u := linked.DuplicateTypeOnSameContainer()
	u.UpdateContainer(0)
	for i := 0; i < cont.NumPixels(); i++ {
		u.UpdateIndex(i)
		u.SetValue(uint16(i * 111))
	}
	for i := 0; i < cont.NumPixels(); i++ {
		u.UpdateIndex(i)
		c.Assert(u.Value(), Equals, uint16(i*111)&max12Bit)
	}

	w := NewUnsigned12Bit(4095)
	w.Inc()
	c.Assert(w.Value(), Equals, uint16(0))
	w.SetReal(-1)
	c.Assert(w.Value(), Equals, uint16(4095))
}

func (s *TypesSuite) TestComplex(c *C) {
	z := NewComplex[float32](1, 2)
	z.Mul(NewComplex[float32](3, -1))
	c.Assert(z.GetRealDouble(), Equals, 5.0)
	c.Assert(z.GetImaginaryDouble(), Equals, 5.0)
	z.Div(NewComplex[float32](5, 5))
	c.Assert(z.GetRealDouble(), Equals, 1.0)
	c.Assert(z.GetImaginaryDouble(), Equals, 0.0)

	cont, linked, err := new(ComplexFloatType).CreateSuitableContainer(storage.NewArrayFactory(), []int{3})
	c.Assert(err, IsNil)
	c.Assert(cont.NumEntitiesPerPixel(), Equals, 2)
	p := linked.DuplicateTypeOnSameContainer()
	p.UpdateContainer(0)
	p.UpdateIndex(2)
	p.SetComplexNumber(3, 4)
	c.Assert(p.GetPowerDouble(), Equals, 5.0)
	c.Assert(p.String(), Equals, "(3,4i)")
}

func TestLinkRejectsWrongContainer(t *testing.T) {
	cont, _, err := new(FloatType).CreateSuitableContainer(storage.NewArrayFactory(), []int{3})
	if err != nil {
		t.Fatalf("can't create container: %v", err)
	}
	if _, err := LinkNumber[uint8](cont); err == nil {
		t.Errorf("expected error linking uint8 proxy to float32 container")
	}
}

func TestReleaseOnUnbind(t *testing.T) {
	f := storage.NewCellFactory()
	f.SetParameters("cell_size = [2]\nmax_resident_cells = 1")
	cont, linked, err := new(IntType).CreateSuitableContainer(f, []int{6})
	if err != nil {
		t.Fatalf("can't create container: %v", err)
	}
	a := linked.DuplicateTypeOnSameContainer()
	a.UpdateContainer(0)
	a.SetValue(11)
	a.UpdateContainer(1)
	a.UpdateContainer(2)
	a.UpdateContainer(0)
	if a.Value() != 11 {
		t.Errorf("expected spilled cell to be restored with 11, got %d", a.Value())
	}
	a.UpdateContainer(-1)
	cells := cont.(*storage.Cell[int32])
	if n := cells.ResidentCells(); n > 1 {
		t.Errorf("expected at most one resident cell, got %d", n)
	}
}
