package storage

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/janelia-flyem/ndimg/ndimg"
)

// DefaultCellSize is the cell edge used for dimensions without a configured size.
const DefaultCellSize = 10

func init() {
	RegisterFactory(FactoryInfo{
		Name:        "cell",
		Description: "fixed-size cells materialized on first access, optionally spilled when idle",
		Version:     mustVersion("0.2.0"),
		New:         func() Factory { return NewCellFactory() },
	})
}

// CellFactory creates tiled containers.  Parameters:
//
//	cell_size = [64, 64, 8]    # one entry per dimension, or a single entry for all
//	max_resident_cells = 256   # 0 keeps every cell in memory
//	spill = "memory"           # or "badger"
//	spill_path = "/tmp/spill"  # badger directory; empty keeps badger in memory
//	compression = "snappy"     # "none", "snappy" or "zstd"
type CellFactory struct {
	optimizedFlag
	CellSize         []int  `toml:"cell_size"`
	MaxResidentCells int    `toml:"max_resident_cells"`
	Spill            string `toml:"spill"`
	SpillPath        string `toml:"spill_path"`
	Compression      string `toml:"compression"`
}

func NewCellFactory() *CellFactory {
	return &CellFactory{Spill: "memory", Compression: "snappy"}
}

func (f *CellFactory) Name() string { return "cell" }

func (f *CellFactory) SetParameters(params string) {
	decodeParameters(f.Name(), params, f)
}

func (f *CellFactory) Create(t ndimg.DataType, dims []int, epp int) (Container, error) {
	return create(f, t, dims, epp)
}

func (f *CellFactory) cellDims(dims []int) []int {
	cell := make([]int, len(dims))
	switch len(f.CellSize) {
	case len(dims):
		copy(cell, f.CellSize)
	case 1:
		for d := range cell {
			cell[d] = f.CellSize[0]
		}
	default:
		if len(f.CellSize) != 0 {
			ndimg.Warningf("cell size %v doesn't match %d-d extent; using %d\n", f.CellSize, len(dims), DefaultCellSize)
		}
		for d := range cell {
			cell[d] = DefaultCellSize
		}
	}
	return cell
}

// Cell stores each cell in its own slice.  Cells are allocated on first
// access.  When a residency bound is set, idle cells beyond it are serialized
// into a spill store in least recently used order and restored on demand.
type Cell[E Element] struct {
	*grid
	id      []byte
	factory *CellFactory

	mu       sync.Mutex
	cells    [][]E
	pins     []int32
	spilled  []bool
	resident int

	maxResident int
	idle        *lru.Cache // unpinned resident cells
	evicting    bool
	spill       SpillStore
	compress    ndimg.Compression
}

func newCell[E Element](f *CellFactory, t ndimg.DataType, dims []int, epp int) (Container, error) {
	g, err := newGrid(t, dims, f.cellDims(dims), epp)
	if err != nil {
		return nil, err
	}
	n := g.NumSlices()
	c := &Cell[E]{
		grid:    g,
		id:      newID(),
		factory: f,
		cells:   make([][]E, n),
	}
	if f.MaxResidentCells <= 0 {
		return c, nil
	}
	c.compress, err = ndimg.ParseCompression(f.Compression)
	if err != nil {
		ndimg.Warningf("%v; cells will be spilled uncompressed\n", err)
	}
	path := f.SpillPath
	if path != "" {
		path = filepath.Join(path, hex.EncodeToString(c.id))
	}
	if c.spill, err = NewSpillStore(f.Spill, path); err != nil {
		return nil, err
	}
	c.maxResident = f.MaxResidentCells
	c.pins = make([]int32, n)
	c.spilled = make([]bool, n)
	c.idle = lru.New(0)
	c.idle.OnEvicted = func(key lru.Key, _ interface{}) {
		if c.evicting {
			c.spillCell(key.(int))
		}
	}
	return c, nil
}

func (c *Cell[E]) ID() []byte { return c.id }

func (c *Cell[E]) Factory() Factory { return c.factory }

func (c *Cell[E]) spillKey(id int) []byte {
	key := make([]byte, len(c.id)+4)
	copy(key, c.id)
	binary.BigEndian.PutUint32(key[len(c.id):], uint32(id))
	return key
}

// Acquire returns the storage of a cell, materializing it if needed.  With a
// residency bound the cell stays in memory until released.
func (c *Cell[E]) Acquire(id int) []E {
	c.mu.Lock()
	defer c.mu.Unlock()
	data := c.cells[id]
	if data == nil {
		data = c.materialize(id)
		c.cells[id] = data
		c.resident++
	}
	if c.idle != nil {
		if c.pins[id] == 0 {
			c.idle.Remove(id)
		}
		c.pins[id]++
		c.evict()
	}
	return data
}

// Release marks one use of a cell as finished.
func (c *Cell[E]) Release(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idle == nil || c.pins[id] == 0 {
		return
	}
	c.pins[id]--
	if c.pins[id] == 0 {
		c.idle.Add(id, nil)
		c.evict()
	}
}

// ResidentCells returns the number of cells currently held in memory.
func (c *Cell[E]) ResidentCells() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resident
}

func (c *Cell[E]) materialize(id int) []E {
	if c.spilled == nil || !c.spilled[id] {
		return make([]E, c.sliceEntities(id))
	}
	key := c.spillKey(id)
	value, err := c.spill.Get(key)
	if err == nil {
		value, err = ndimg.DeserializeData(value)
	}
	if err != nil {
		ndimg.Criticalf("lost spilled cell %d of %s: %v\n", id, c, err)
		panic(fmt.Sprintf("cell %d could not be restored: %v", id, err))
	}
	if err := c.spill.Delete(key); err != nil {
		ndimg.Warningf("could not delete spilled cell %d: %v\n", id, err)
	}
	c.spilled[id] = false
	return fromBytes[E](value)
}

// evict spills idle cells until the residency bound holds.  Caller holds c.mu.
func (c *Cell[E]) evict() {
	c.evicting = true
	for c.resident > c.maxResident && c.idle.Len() > 0 {
		c.idle.RemoveOldest()
	}
	c.evicting = false
}

func (c *Cell[E]) spillCell(id int) {
	value, err := ndimg.SerializeData(asBytes(c.cells[id]), c.compress, ndimg.CRC32)
	if err == nil {
		err = c.spill.Put(c.spillKey(id), value)
	}
	if err != nil {
		ndimg.Errorf("could not spill cell %d of %s, keeping it resident: %v\n", id, c, err)
		return
	}
	c.cells[id] = nil
	c.spilled[id] = true
	c.resident--
}

func (c *Cell[E]) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cells = make([][]E, len(c.cells))
	c.resident = 0
	if c.spill != nil {
		err := c.spill.Close()
		c.spill = nil
		c.idle = nil
		c.pins = nil
		c.spilled = nil
		return err
	}
	return nil
}

func (c *Cell[E]) String() string { return c.describe("cell") }
