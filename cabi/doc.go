// Package cabi moves arrays across the native Arrow C Data Interface.
//
// Export writes an array into caller-provided C structures and Import takes
// C structures produced elsewhere. Both directions go through arrow-go's
// cdata package and copy the buffers once, so the C side never aliases Go
// memory. Without cgo every entry point returns ErrCgoRequired.
package cabi
