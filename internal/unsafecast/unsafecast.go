// Package unsafecast reinterprets raw buffers as typed slices without copying.
package unsafecast

import "unsafe"

// Sizeof returns the size of T in bytes.
func Sizeof[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// FromBytes views b as a slice of T. Trailing bytes that do not fill a whole
// element are not visible. The result aliases b.
func FromBytes[T any](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	size := Sizeof[T]()
	p := (*T)(unsafe.Pointer(unsafe.SliceData(b)))
	return unsafe.Slice(p, cap(b)/size)[:len(b)/size]
}

// ToBytes views s as its underlying bytes. The result aliases s.
func ToBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	size := Sizeof[T]()
	p := (*byte)(unsafe.Pointer(unsafe.SliceData(s)))
	return unsafe.Slice(p, cap(s)*size)[:len(s)*size]
}
