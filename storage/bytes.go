package storage

import "unsafe"

// asBytes reinterprets a slice of primitives as its raw bytes.
func asBytes[E Element](s []E) []byte {
	if len(s) == 0 {
		return nil
	}
	var e E
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(e)))
}

// fromBytes copies raw bytes into a new slice of primitives.
func fromBytes[E Element](b []byte) []E {
	var e E
	s := make([]E, len(b)/int(unsafe.Sizeof(e)))
	copy(asBytes(s), b)
	return s
}
