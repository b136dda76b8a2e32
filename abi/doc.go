// Package abi defines the interchange pair of the Arrow C Data Interface.
//
// This package implements:
//   - ArrowArray / ArrowSchema: Go mirrors of the C structures, field for field
//   - The release protocol: call exactly once, nil release means released or borrowed
//   - A producer that allocates buffers through a memory.Allocator and frees them on release
//   - Deep copies of whole array/schema trees
//   - The closed DataType enumeration and its format strings
//   - Schema metadata in the C Data Interface binary layout
//
// The C rendering of these structures is produced by package cabi through
// arrow-go's cdata package.
package abi
