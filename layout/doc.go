// Package layout implements the two variable-length encodings of the
// columnar format.
//
// Offset layout: N+1 non-decreasing integers delimit N byte runs inside a
// single data buffer (utf8, binary and their large variants).
//
// View layout: one 16-byte record per element. Values of at most 12 bytes
// are stored inline in the record; longer values are referenced by a 4-byte
// prefix, a variadic buffer index and an offset into that buffer
// (utf8_view, binary_view).
package layout
