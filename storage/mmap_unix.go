//go:build unix

package storage

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

func mapSlice[E Element](n int) ([]E, func() error, error) {
	var e E
	size := n * int(unsafe.Sizeof(e))
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, err
	}
	data := unsafe.Slice((*E)(unsafe.Pointer(&b[0])), n)
	return data, func() error { return unix.Munmap(b) }, nil
}
