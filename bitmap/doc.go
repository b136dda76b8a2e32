// Package bitmap implements the validity bitmap of a columnar array.
//
// A Bitmap stores one bit per element, 1 meaning valid and 0 meaning null,
// least significant bit first, and keeps the number of zero bits cached so
// NullCount is O(1) under any mutation.
//
// This package implements:
//   - Owning bitmaps backed by a memory.Allocator
//   - Non-owning views over a caller buffer (NewView)
//   - Bitmaps bound to foreign storage, such as a proxy buffer (NewOnStorage)
//   - Bit references, random-access iterators and range-over-func iteration
//   - Structural edits: Insert, Erase, Resize, PushBack, PopBack
//
// A nil buffer reads as all valid; it is materialized as all ones on the
// first mutation.
package bitmap
