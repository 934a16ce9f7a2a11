/*
   This file handles the layout of primitive values stored for each pixel.
*/

package ndimg

import "fmt"

// DataType is a unique ID for each primitive stored in a container, e.g., a uint8 or a float32.
// Packed types (T_bit, T_uint12) are stored in uint64 words.
type DataType uint8

const (
	T_uint8 DataType = iota
	T_int8
	T_uint16
	T_int16
	T_uint32
	T_int32
	T_uint64
	T_int64
	T_float32
	T_float64
	T_bit
	T_uint12
)

var typeBytes = map[DataType]int32{
	T_uint8:   1,
	T_int8:    1,
	T_uint16:  2,
	T_int16:   2,
	T_uint32:  4,
	T_int32:   4,
	T_uint64:  8,
	T_int64:   8,
	T_float32: 4,
	T_float64: 8,
	T_bit:     8,
	T_uint12:  8,
}

var typeBits = map[DataType]int{
	T_bit:    1,
	T_uint12: 12,
}

var typeNames = map[DataType]string{
	T_uint8:   "uint8",
	T_int8:    "int8",
	T_uint16:  "uint16",
	T_int16:   "int16",
	T_uint32:  "uint32",
	T_int32:   "int32",
	T_uint64:  "uint64",
	T_int64:   "int64",
	T_float32: "float32",
	T_float64: "float64",
	T_bit:     "bit",
	T_uint12:  "uint12",
}

// DataTypeBytes returns the # of bytes for one stored entity of the given type.
// Packed types report the size of their storage word.
func DataTypeBytes(t DataType) int32 {
	return typeBytes[t]
}

func (t DataType) String() string {
	if s, found := typeNames[t]; found {
		return s
	}
	return fmt.Sprintf("unknown data type %d", uint8(t))
}

// IsPacked returns true if several values share one storage word.
func (t DataType) IsPacked() bool {
	_, found := typeBits[t]
	return found
}

// Bits returns the number of bits used by one value.
func (t DataType) Bits() int {
	if b, found := typeBits[t]; found {
		return b
	}
	return int(typeBytes[t]) * 8
}

// StorageEntities returns the number of stored entities needed to hold the given
// number of values.
func (t DataType) StorageEntities(values int) int {
	bits, packed := typeBits[t]
	if !packed {
		return values
	}
	return (values*bits + 63) / 64
}

// ParseDataType returns the DataType for a name like "uint16".
func ParseDataType(s string) (DataType, error) {
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return T_uint8, fmt.Errorf("unknown data type %q", s)
}
