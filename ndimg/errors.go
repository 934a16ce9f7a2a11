package ndimg

import "errors"

var (
	// ErrBadExtent is returned when an extent is empty or has a non-positive size.
	ErrBadExtent = errors.New("bad extent")

	// ErrDimensionMismatch is returned when two extents or vectors must agree in
	// dimensionality but don't.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrOverflow is returned when a container would hold more entities than it can address.
	ErrOverflow = errors.New("addressable range exceeded")

	// ErrUnsupportedLayout is returned when a backend cannot represent a data type,
	// e.g., bit-packed data in a memory-mapped buffer.
	ErrUnsupportedLayout = errors.New("unsupported layout")
)
