//go:build !unix

package storage

// Without mmap the buffer lives on the heap.
func mapSlice[E Element](n int) ([]E, func() error, error) {
	return make([]E, n), func() error { return nil }, nil
}
