package ndimg

import (
	"fmt"
	"math"
	"strings"
)

// CheckExtent returns an error if the extent is empty or any size is non-positive.
func CheckExtent(dims []int) error {
	if len(dims) == 0 {
		return fmt.Errorf("empty extent: %w", ErrBadExtent)
	}
	for d, size := range dims {
		if size <= 0 {
			return fmt.Errorf("extent %v has size %d in dimension %d: %w", dims, size, d, ErrBadExtent)
		}
	}
	return nil
}

// NumPixels returns the number of positions within an extent or ErrOverflow if
// the count can't be represented.
func NumPixels(dims []int) (int, error) {
	if err := CheckExtent(dims); err != nil {
		return 0, err
	}
	n := 1
	for _, size := range dims {
		if n > math.MaxInt/size {
			return 0, fmt.Errorf("extent %v: %w", dims, ErrOverflow)
		}
		n *= size
	}
	return n, nil
}

// Steps writes the x-fastest strides of an extent into steps.
func Steps(dims, steps []int) {
	s := 1
	for d, size := range dims {
		steps[d] = s
		s *= size
	}
}

// IndexToPosition writes the position of the i-th pixel in x-fastest order.
func IndexToPosition(i int, dims, pos []int) {
	for d, size := range dims {
		pos[d] = i % size
		i /= size
	}
}

// PositionToIndex is the inverse of IndexToPosition.
func PositionToIndex(pos, dims []int) int {
	i := 0
	for d := len(dims) - 1; d >= 0; d-- {
		i = i*dims[d] + pos[d]
	}
	return i
}

// InBounds returns true if pos lies within [0, dims).
func InBounds(pos, dims []int) bool {
	for d, p := range pos {
		if p < 0 || p >= dims[d] {
			return false
		}
	}
	return true
}

// CopyInts returns a copy of a slice of ints.
func CopyInts(s []int) []int {
	c := make([]int, len(s))
	copy(c, s)
	return c
}

// DataShape describes a plane through a volume by its two axes.
type DataShape struct {
	dims  uint8
	shape []uint8
}

var (
	// XY describes a 2d rectangle of voxels that share a z-coord.
	XY = DataShape{3, []uint8{0, 1}}

	// XZ describes a 2d rectangle of voxels that share a y-coord.
	XZ = DataShape{3, []uint8{0, 2}}

	// YZ describes a 2d rectangle of voxels that share a x-coord.
	YZ = DataShape{3, []uint8{1, 2}}
)

var dataShapeStrings = map[string]DataShape{
	"xy":  XY,
	"xz":  XZ,
	"yz":  YZ,
	"0_1": XY,
	"0_2": XZ,
	"1_2": YZ,
	"0,1": XY,
	"0,2": XZ,
	"1,2": YZ,
}

// ParseDataShape returns the plane named by a string like "xz" or "0,2".
func ParseDataShape(s string) (DataShape, error) {
	shape, found := dataShapeStrings[strings.ToLower(s)]
	if !found {
		return DataShape{}, fmt.Errorf("unknown plane shape %q", s)
	}
	return shape, nil
}

// PlaneAxes returns the two dimensions spanning the plane.
func (s DataShape) PlaneAxes() (dimA, dimB int) {
	return int(s.shape[0]), int(s.shape[1])
}

func (s DataShape) String() string {
	names := []string{"x", "y", "z"}
	var b strings.Builder
	for _, axis := range s.shape {
		if int(axis) < len(names) {
			b.WriteString(names[axis])
		} else {
			fmt.Fprintf(&b, "%d", axis)
		}
	}
	return b.String()
}
