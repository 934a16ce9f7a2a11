package storage

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	. "github.com/janelia-flyem/go/gocheck"
	"github.com/janelia-flyem/ndimg/ndimg"
)

func Test(t *testing.T) { TestingT(t) }

type StorageSuite struct{}

var _ = Suite(&StorageSuite{})

func testFactories() []Factory {
	plain := NewArrayFactory()
	plain.SetOptimizedContainerUse(false)
	cells := NewCellFactory()
	cells.SetParameters("cell_size = [3]")
	return []Factory{NewArrayFactory(), plain, cells, NewPlanarFactory(), NewMappedFactory()}
}

var testExtents = [][]int{{7}, {5, 4}, {4, 3, 5}, {3, 4, 2, 3}}

func checkBijection(c *C, cont Container) {
	dims := cont.Dimensions()
	n := cont.NumPixels()
	seen := make([]bool, n)
	pos := make([]int, len(dims))
	back := make([]int, len(dims))
	for i := 0; i < n; i++ {
		ndimg.IndexToPosition(i, dims, pos)
		flat := cont.FlatIndex(pos)
		c.Assert(flat >= 0 && flat < n, Equals, true, Commentf("%s: flat index %d of %v", cont, flat, pos))
		c.Assert(seen[flat], Equals, false, Commentf("%s: flat index %d reached twice", cont, flat))
		seen[flat] = true

		slice, index := cont.PositionToIndex(pos)
		c.Assert(index >= 0 && index < cont.SliceSize(slice), Equals, true)
		cont.IndexToPosition(slice, index, back)
		c.Assert(back, DeepEquals, pos)
	}
	total := 0
	for s := 0; s < cont.NumSlices(); s++ {
		total += cont.SliceSize(s)
	}
	c.Assert(total, Equals, n)
}

func (s *StorageSuite) TestFlatIndexBijection(c *C) {
	for _, f := range testFactories() {
		for _, dims := range testExtents {
			cont, err := f.Create(ndimg.T_float32, dims, 1)
			c.Assert(err, IsNil)
			c.Assert(cont.Dimensions(), DeepEquals, dims)
			checkBijection(c, cont)
			c.Assert(cont.Close(), IsNil)
		}
	}
}

func (s *StorageSuite) TestOptimizedArrays(c *C) {
	f := NewArrayFactory()
	cont, err := f.Create(ndimg.T_uint8, []int{4, 3, 2}, 1)
	c.Assert(err, IsNil)
	_, ok := cont.(*Array3D[uint8])
	c.Assert(ok, Equals, true)

	f.SetOptimizedContainerUse(false)
	cont, err = f.Create(ndimg.T_uint8, []int{4, 3, 2}, 1)
	c.Assert(err, IsNil)
	_, ok = cont.(*Array[uint8])
	c.Assert(ok, Equals, true)
}

func (s *StorageSuite) TestTruncatedCells(c *C) {
	f := NewCellFactory()
	f.SetParameters("cell_size = [4, 4]")
	cont, err := f.Create(ndimg.T_uint16, []int{10, 5}, 1)
	c.Assert(err, IsNil)
	c.Assert(cont.NumSlices(), Equals, 6)
	dims := make([]int, 2)
	cont.SliceDimensions(5, dims)
	c.Assert(dims, DeepEquals, []int{2, 1})
	origin := make([]int, 2)
	cont.SliceOrigin(5, origin)
	c.Assert(origin, DeepEquals, []int{8, 4})
	checkBijection(c, cont)
}

func (s *StorageSuite) TestPackedEntities(c *C) {
	cont, err := NewArrayFactory().Create(ndimg.T_bit, []int{100}, 1)
	c.Assert(err, IsNil)
	a := cont.(*Array[uint64])
	c.Assert(len(a.Data()), Equals, 2)

	_, err = NewMappedFactory().Create(ndimg.T_bit, []int{100}, 1)
	c.Assert(errors.Is(err, ndimg.ErrUnsupportedLayout), Equals, true)
}

func (s *StorageSuite) TestConstructionErrors(c *C) {
	_, err := NewArrayFactory().Create(ndimg.T_uint8, []int{1 << 16, 1 << 16}, 1)
	c.Assert(errors.Is(err, ndimg.ErrOverflow), Equals, true)

	_, err = NewArrayFactory().Create(ndimg.T_uint8, []int{1 << 15, 1 << 15}, 4)
	c.Assert(errors.Is(err, ndimg.ErrOverflow), Equals, true)

	_, err = NewPlanarFactory().Create(ndimg.T_uint8, []int{4, 0, 2}, 1)
	c.Assert(errors.Is(err, ndimg.ErrBadExtent), Equals, true)

	_, err = NewCellFactory().Create(ndimg.T_uint8, nil, 1)
	c.Assert(errors.Is(err, ndimg.ErrBadExtent), Equals, true)
}

func (s *StorageSuite) TestSetParametersIgnoresUnknown(c *C) {
	f := NewCellFactory()
	f.SetParameters("cell_size = [4, 5]\nfancy_layout = true")
	c.Assert(f.CellSize, DeepEquals, []int{4, 5})

	f.SetParameters("cell_size = [")
	c.Assert(f.CellSize, DeepEquals, []int{4, 5})

	a := NewArrayFactory()
	a.SetParameters("optimized = false\nunused = 1")
	c.Assert(a.UseOptimizedContainers(), Equals, false)
}

func (s *StorageSuite) TestRegistry(c *C) {
	names := []string{}
	for _, info := range Factories() {
		names = append(names, info.Name)
	}
	c.Assert(names, DeepEquals, []string{"array", "cell", "mapped", "planar"})

	_, err := NewFactory("hdf5")
	c.Assert(err, NotNil)

	f, err := FactoryFromConfig(ndimg.StorageConfig{
		Factory: "cell",
		Params:  map[string]interface{}{"cell_size": []int{2, 2}, "max_resident_cells": 3},
	})
	c.Assert(err, IsNil)
	cf := f.(*CellFactory)
	c.Assert(cf.CellSize, DeepEquals, []int{2, 2})
	c.Assert(cf.MaxResidentCells, Equals, 3)
}

func fillCells(c *C, cont *Cell[float32]) {
	for id := 0; id < cont.NumSlices(); id++ {
		data := cont.Acquire(id)
		for i := range data {
			data[i] = float32(id*100 + i)
		}
		cont.Release(id)
	}
}

func checkCells(c *C, cont *Cell[float32]) {
	for id := 0; id < cont.NumSlices(); id++ {
		data := cont.Acquire(id)
		for i := range data {
			c.Assert(data[i], Equals, float32(id*100+i))
		}
		cont.Release(id)
	}
}

func (s *StorageSuite) TestCellSpill(c *C) {
	for _, spill := range []string{"memory", "badger"} {
		for _, compression := range []string{"none", "snappy", "zstd"} {
			f := NewCellFactory()
			f.SetParameters(fmt.Sprintf("cell_size = [3, 3]\nmax_resident_cells = 2\nspill = %q\ncompression = %q", spill, compression))
			cont, err := f.Create(ndimg.T_float32, []int{9, 7}, 1)
			c.Assert(err, IsNil)
			cells := cont.(*Cell[float32])
			fillCells(c, cells)
			c.Assert(cells.ResidentCells() <= 2, Equals, true)
			checkCells(c, cells)
			c.Assert(cells.Close(), IsNil)
		}
	}
}

func (s *StorageSuite) TestCellPinning(c *C) {
	f := NewCellFactory()
	f.SetParameters("cell_size = [2]\nmax_resident_cells = 1")
	cont, err := f.Create(ndimg.T_int32, []int{8}, 1)
	c.Assert(err, IsNil)
	cells := cont.(*Cell[int32])

	first := cells.Acquire(0)
	first[0] = 42
	for id := 1; id < cells.NumSlices(); id++ {
		cells.Acquire(id)
		cells.Release(id)
	}
	// Pinned cells survive pressure.
	c.Assert(first[0], Equals, int32(42))
	c.Assert(cells.Acquire(0)[0], Equals, int32(42))
	cells.Release(0)
	cells.Release(0)
}

func (s *StorageSuite) TestCellReleaseDuringClose(c *C) {
	f := NewCellFactory()
	f.SetParameters("cell_size = [2]\nmax_resident_cells = 1")
	cont, err := f.Create(ndimg.T_int32, []int{8}, 1)
	c.Assert(err, IsNil)
	cells := cont.(*Cell[int32])
	n := cells.NumSlices()
	for id := 0; id < n; id++ {
		cells.Acquire(id)[0] = int32(id + 1)
	}

	var wg sync.WaitGroup
	for id := 0; id < n; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			cells.Release(id)
		}(id)
	}
	c.Assert(cells.Close(), IsNil)
	wg.Wait()

	// A closed container hands out fresh cells instead of reading the spill.
	for id := 0; id < n; id++ {
		c.Assert(cells.Acquire(id)[0], Equals, int32(0))
		cells.Release(id)
	}
}

type testPlanes [][]uint16

func (p testPlanes) NumPlanes() int       { return len(p) }
func (p testPlanes) Plane(i int) []uint16 { return p[i] }

func (s *StorageSuite) TestExternalPlanes(c *C) {
	planes := testPlanes{make([]uint16, 6), make([]uint16, 6)}
	planes[1][5] = 7
	cont, err := NewPlanarFromSource[uint16]([]int{3, 2, 2}, 1, planes)
	c.Assert(err, IsNil)
	slice, index := cont.PositionToIndex([]int{2, 1, 1})
	c.Assert(cont.Acquire(slice)[index], Equals, uint16(7))

	_, err = NewPlanarFromSource[uint16]([]int{3, 2, 3}, 1, planes)
	c.Assert(errors.Is(err, ndimg.ErrDimensionMismatch), Equals, true)

	_, err = NewPlanarFromSource[uint16]([]int{3, 3, 2}, 1, planes)
	c.Assert(errors.Is(err, ndimg.ErrDimensionMismatch), Equals, true)
}

func TestMemoryUsage(t *testing.T) {
	cont, err := NewArrayFactory().Create(ndimg.T_float64, []int{32, 32}, 1)
	if err != nil {
		t.Fatalf("can't create array: %v", err)
	}
	if got := MemoryUsage(cont); got < 32*32*8 {
		t.Errorf("expected at least %d bytes, got %d", 32*32*8, got)
	}
}

func TestMappedRoundTrip(t *testing.T) {
	cont, err := NewMappedFactory().Create(ndimg.T_int16, []int{16, 4}, 2)
	if err != nil {
		t.Fatalf("can't create mapped container: %v", err)
	}
	m := cont.(*Mapped[int16])
	data := m.Acquire(0)
	if len(data) != 128 {
		t.Fatalf("expected 128 entities, got %d", len(data))
	}
	for i := range data {
		data[i] = int16(i)
	}
	if data[127] != 127 {
		t.Errorf("mapped buffer didn't hold value")
	}
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
