package abi

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/endian"
)

// KeyValue is one schema metadata entry.
type KeyValue struct {
	Key   string
	Value string
}

// EncodeMetadata renders pairs in the C Data Interface layout: an int32 pair
// count, then for each pair an int32 key length, the key bytes, an int32
// value length and the value bytes, all integers in native byte order.
// An empty list encodes to nil (metadata absent).
func EncodeMetadata(pairs []KeyValue) []byte {
	if len(pairs) == 0 {
		return nil
	}
	n := 4
	for _, kv := range pairs {
		n += 8 + len(kv.Key) + len(kv.Value)
	}
	out := make([]byte, n)
	pos := 0
	putInt := func(v int) {
		endian.Native.PutUint32(out[pos:], uint32(v))
		pos += 4
	}
	putInt(len(pairs))
	for _, kv := range pairs {
		putInt(len(kv.Key))
		pos += copy(out[pos:], kv.Key)
		putInt(len(kv.Value))
		pos += copy(out[pos:], kv.Value)
	}
	return out
}

// DecodeMetadata parses metadata encoded by EncodeMetadata or by any C
// Data Interface producer.
func DecodeMetadata(b []byte) ([]KeyValue, error) {
	if len(b) == 0 {
		return nil, nil
	}
	r := metadataReader{buf: b}
	count, err := r.int32()
	if err != nil {
		return nil, err
	}
	pairs := make([]KeyValue, 0, count)
	for i := 0; i < count; i++ {
		k, err := r.str()
		if err != nil {
			return nil, fmt.Errorf("metadata key %d: %w", i, err)
		}
		v, err := r.str()
		if err != nil {
			return nil, fmt.Errorf("metadata value %d: %w", i, err)
		}
		pairs = append(pairs, KeyValue{Key: k, Value: v})
	}
	if r.pos != len(b) {
		return nil, fmt.Errorf("%w: %d trailing metadata bytes", ErrInvalidFormat, len(b)-r.pos)
	}
	return pairs, nil
}

type metadataReader struct {
	buf []byte
	pos int
}

func (r *metadataReader) int32() (int, error) {
	if len(r.buf)-r.pos < 4 {
		return 0, fmt.Errorf("%w: truncated metadata", ErrInvalidFormat)
	}
	v := int32(endian.Native.Uint32(r.buf[r.pos:]))
	r.pos += 4
	if v < 0 {
		return 0, fmt.Errorf("%w: negative metadata length %d", ErrInvalidFormat, v)
	}
	return int(v), nil
}

func (r *metadataReader) str() (string, error) {
	n, err := r.int32()
	if err != nil {
		return "", err
	}
	if len(r.buf)-r.pos < n {
		return "", fmt.Errorf("%w: truncated metadata", ErrInvalidFormat)
	}
	s := string(r.buf[r.pos : r.pos+n])
	r.pos += n
	return s, nil
}
