package layout

import (
	"fmt"
	"math"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
	"github.com/VanDung-dev/HieraChain-Columnar/internal/unsafecast"
)

// ErrInvalidLayout reports offsets or views inconsistent with their buffers.
var ErrInvalidLayout = fmt.Errorf("%w: invalid layout", abi.ErrInvalidFormat)

// Offset is the element type of an offset buffer.
type Offset interface{ ~int32 | ~int64 }

// Value is a variable-length element.
type Value interface{ ~string | ~[]byte }

// OffsetsFromSizes returns the running prefix sum of sizes, starting at 0.
// The result has len(sizes)+1 entries.
func OffsetsFromSizes[O Offset](sizes []int) ([]O, error) {
	out := make([]O, len(sizes)+1)
	if err := FillOffsets(out, sizes); err != nil {
		return nil, err
	}
	return out, nil
}

// FillOffsets writes the running prefix sum of sizes into dst, which must
// hold len(sizes)+1 entries.
func FillOffsets[O Offset](dst []O, sizes []int) error {
	if len(dst) != len(sizes)+1 {
		return fmt.Errorf("%w: %d offsets for %d sizes", ErrInvalidLayout, len(dst), len(sizes))
	}
	limit := int64(math.MaxInt64)
	if isInt32[O]() {
		limit = math.MaxInt32
	}
	var acc int64
	dst[0] = 0
	for i, n := range sizes {
		if n < 0 {
			return fmt.Errorf("%w: negative size %d at %d", ErrInvalidLayout, n, i)
		}
		if int64(n) > limit-acc {
			return fmt.Errorf("%w: offset overflow at element %d", ErrInvalidLayout, i)
		}
		acc += int64(n)
		dst[i+1] = O(acc)
	}
	return nil
}

func isInt32[O Offset]() bool { return unsafecast.Sizeof[O]() == 4 }

// Range returns the byte run [start, end) of element i.
func Range[O Offset](offsets []O, i int) (start, end int) {
	return int(offsets[i]), int(offsets[i+1])
}

// ValidateOffsets checks that offsets start at or after 0, never decrease and
// stay within a data buffer of dataLen bytes.
func ValidateOffsets[O Offset](offsets []O, dataLen int) error {
	if len(offsets) == 0 {
		return nil
	}
	if offsets[0] < 0 {
		return fmt.Errorf("%w: first offset %d is negative", ErrInvalidLayout, offsets[0])
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return fmt.Errorf("%w: offset %d decreases (%d < %d)", ErrInvalidLayout, i, offsets[i], offsets[i-1])
		}
	}
	if last := int64(offsets[len(offsets)-1]); last > int64(dataLen) {
		return fmt.Errorf("%w: last offset %d past data of %d bytes", ErrInvalidLayout, last, dataLen)
	}
	return nil
}

// Concat packs values into one data buffer and its offsets.
func Concat[O Offset, V Value](values []V) (data []byte, offsets []O, err error) {
	sizes := make([]int, len(values))
	total := 0
	for i, v := range values {
		sizes[i] = len(v)
		total += len(v)
	}
	offsets, err = OffsetsFromSizes[O](sizes)
	if err != nil {
		return nil, nil, err
	}
	data = make([]byte, 0, total)
	for _, v := range values {
		data = append(data, v...)
	}
	return data, offsets, nil
}
