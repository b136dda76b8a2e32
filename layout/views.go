package layout

import (
	"bytes"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/endian"

	"github.com/VanDung-dev/HieraChain-Columnar/internal/unsafecast"
)

const (
	// ViewSize is the size in bytes of one view record.
	ViewSize = 16
	// MaxInline is the longest value stored inside its record.
	MaxInline = 12
	// PrefixSize is the number of leading bytes copied into a referenced record.
	PrefixSize = 4
)

// ViewRecord is one element of a view array.
//
//	inline:     length(4) | data(12, zero padded)
//	referenced: length(4) | prefix(4) | buffer index(4) | offset(4)
//
// Integers are stored in native byte order.
type ViewRecord [ViewSize]byte

// InlineView returns the record of a value of at most 12 bytes.
func InlineView[V Value](v V) ViewRecord {
	if len(v) > MaxInline {
		panic(fmt.Sprintf("layout: inline value of %d bytes", len(v)))
	}
	var r ViewRecord
	endian.Native.PutUint32(r[0:], uint32(len(v)))
	copy(r[4:], v)
	return r
}

// ReferencedView returns the record of a value of size bytes stored at
// offset in variadic buffer bufferIndex. At most 4 bytes of prefix are kept.
func ReferencedView(size int32, prefix []byte, bufferIndex, offset int32) ViewRecord {
	var r ViewRecord
	endian.Native.PutUint32(r[0:], uint32(size))
	copy(r[4:8], prefix)
	endian.Native.PutUint32(r[8:], uint32(bufferIndex))
	endian.Native.PutUint32(r[12:], uint32(offset))
	return r
}

// Len returns the value length.
func (r *ViewRecord) Len() int { return int(int32(endian.Native.Uint32(r[0:]))) }

// IsInline reports whether the value lives inside the record.
func (r *ViewRecord) IsInline() bool { return r.Len() <= MaxInline }

// InlineBytes returns the inline value. Only meaningful when IsInline.
func (r *ViewRecord) InlineBytes() []byte { return r[4 : 4+r.Len()] }

// Prefix returns the first min(4, Len) bytes of the value.
func (r *ViewRecord) Prefix() []byte { return r[4 : 4+min(PrefixSize, r.Len())] }

// BufferIndex returns the variadic buffer holding a referenced value.
func (r *ViewRecord) BufferIndex() int { return int(int32(endian.Native.Uint32(r[8:]))) }

// BufferOffset returns the offset of a referenced value in its buffer.
func (r *ViewRecord) BufferOffset() int { return int(int32(endian.Native.Uint32(r[12:]))) }

// Value resolves the record against the variadic buffers. The result aliases
// either the record or a buffer.
func (r *ViewRecord) Value(variadic [][]byte) []byte {
	if r.IsInline() {
		return r.InlineBytes()
	}
	off := r.BufferOffset()
	return variadic[r.BufferIndex()][off : off+r.Len()]
}

// Views reinterprets a views buffer as records without copying.
func Views(buf []byte) []ViewRecord { return unsafecast.FromBytes[ViewRecord](buf) }

// ViewBytes reinterprets records as a views buffer without copying.
func ViewBytes(views []ViewRecord) []byte { return unsafecast.ToBytes(views) }

// ViewSpec is an external description of one view, as found in integration
// fixtures. A non-nil Inlined selects the inline form; otherwise Size,
// Prefix, BufferIndex and Offset describe a referenced value.
type ViewSpec struct {
	Inlined     *[]byte
	Size        int32
	Prefix      []byte
	BufferIndex int32
	Offset      int32
}

// BuildViews encodes specs into view records. The form of each record is
// taken from the spec's Inlined marker, never from the data length: an
// inline spec stores its full length and at most 12 bytes of data, a
// referenced spec at most 4 bytes of prefix.
func BuildViews(specs []ViewSpec) []ViewRecord {
	out := make([]ViewRecord, len(specs))
	for i, s := range specs {
		if s.Inlined != nil {
			data := *s.Inlined
			endian.Native.PutUint32(out[i][0:], uint32(len(data)))
			copy(out[i][4:], data[:min(len(data), MaxInline)])
			continue
		}
		out[i] = ReferencedView(s.Size, s.Prefix[:min(len(s.Prefix), PrefixSize)], s.BufferIndex, s.Offset)
	}
	return out
}

// ValidateViews checks every referenced record against the variadic buffers:
// the buffer index exists, the value lies within the buffer and the stored
// prefix matches the referenced bytes.
func ValidateViews(views []ViewRecord, variadic [][]byte) error {
	for i := range views {
		r := &views[i]
		n := r.Len()
		if n < 0 {
			return fmt.Errorf("%w: view %d has negative length %d", ErrInvalidLayout, i, n)
		}
		if r.IsInline() {
			continue
		}
		idx, off := r.BufferIndex(), r.BufferOffset()
		if idx < 0 || idx >= len(variadic) {
			return fmt.Errorf("%w: view %d references buffer %d of %d", ErrInvalidLayout, i, idx, len(variadic))
		}
		if off < 0 || off+n > len(variadic[idx]) {
			return fmt.Errorf("%w: view %d range [%d, %d) past buffer %d of %d bytes",
				ErrInvalidLayout, i, off, off+n, idx, len(variadic[idx]))
		}
		if !bytes.Equal(r.Prefix(), variadic[idx][off:off+PrefixSize]) {
			return fmt.Errorf("%w: view %d prefix mismatch", ErrInvalidLayout, i)
		}
	}
	return nil
}

// BuildViewsFromValues encodes values, packing those longer than 12 bytes
// into variadic buffers of at most maxBufferSize bytes. A value larger than
// maxBufferSize gets a buffer of its own.
func BuildViewsFromValues[V Value](values []V, maxBufferSize int) ([]ViewRecord, [][]byte) {
	views := make([]ViewRecord, len(values))
	var (
		variadic [][]byte
		cur      []byte
	)
	flush := func() {
		if len(cur) > 0 {
			variadic = append(variadic, cur)
			cur = nil
		}
	}
	for i, v := range values {
		if len(v) <= MaxInline {
			views[i] = InlineView(v)
			continue
		}
		if len(cur)+len(v) > maxBufferSize {
			flush()
		}
		off := len(cur)
		cur = append(cur, v...)
		views[i] = ReferencedView(int32(len(v)), []byte(v)[:PrefixSize], int32(len(variadic)), int32(off))
	}
	flush()
	return views, variadic
}
