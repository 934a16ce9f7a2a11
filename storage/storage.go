/*
Package storage provides the containers that hold pixel data for images and the
factories that create them.

Every container partitions its extent into one or more slices.  A slice is a
box of pixels stored contiguously in x-fastest order: the flat array has a
single slice covering the whole extent, the cell container has one slice per
cell, and the planar container has one slice per 2-D plane.  Cursors walk the
slices in order and use the slice geometry to translate between N-d positions
and storage indices, so algorithm code never sees the layout.
*/
package storage

import (
	"fmt"

	"github.com/DmitriyVTitov/size"
	"github.com/janelia-flyem/ndimg/ndimg"
)

// Element is the set of primitives a container can store.
type Element interface {
	~uint8 | ~int8 | ~uint16 | ~int16 | ~uint32 | ~int32 | ~uint64 | ~int64 | ~float32 | ~float64
}

// Container holds the pixel data of an image and translates positions into
// (slice, index) pairs.  Indices are pixel indices within a slice; a pixel kind
// with several entities per pixel or a packed layout maps a pixel index onto
// its own storage words.
type Container interface {
	// ID uniquely identifies this container within the process.
	ID() []byte

	DataType() ndimg.DataType
	Dimensions() []int
	NumDimensions() int
	NumPixels() int
	NumEntitiesPerPixel() int

	// NumSlices returns the number of independently stored slices.
	NumSlices() int

	// SliceSize returns the number of pixels in a slice.
	SliceSize(id int) int

	// SliceOrigin writes the position of the first pixel of a slice.
	SliceOrigin(id int, origin []int)

	// SliceDimensions writes the extent of a slice.
	SliceDimensions(id int, dims []int)

	// FlatIndex maps a position onto [0, NumPixels()) bijectively.
	FlatIndex(pos []int) int

	// PositionToIndex returns the slice holding a position and the pixel index within it.
	PositionToIndex(pos []int) (slice, index int)

	// IndexToPosition is the inverse of PositionToIndex.
	IndexToPosition(slice, index int, pos []int)

	// Factory returns the factory that created this container.
	Factory() Factory

	// Close releases any resources held outside the Go heap.
	Close() error

	String() string
}

// Sliced gives typed access to the raw store of a container.  Acquire returns
// the backing slice of a container slice and keeps it resident until the
// matching Release.
type Sliced[E Element] interface {
	Container
	Acquire(id int) []E
	Release(id int)
}

// DataTypeOf returns the DataType for a primitive.
func DataTypeOf[E Element]() ndimg.DataType {
	var e E
	switch any(e).(type) {
	case uint8:
		return ndimg.T_uint8
	case int8:
		return ndimg.T_int8
	case uint16:
		return ndimg.T_uint16
	case int16:
		return ndimg.T_int16
	case uint32:
		return ndimg.T_uint32
	case int32:
		return ndimg.T_int32
	case uint64:
		return ndimg.T_uint64
	case int64:
		return ndimg.T_int64
	case float32:
		return ndimg.T_float32
	case float64:
		return ndimg.T_float64
	}
	panic(fmt.Sprintf("no data type for %T", e))
}

// MemoryUsage estimates the bytes a container holds on the Go heap.
func MemoryUsage(c Container) int {
	return size.Of(c)
}
