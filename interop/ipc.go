package interop

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VanDung-dev/HieraChain-Columnar/array"
)

// ErrNoRecords is returned when an IPC stream holds a schema but no batch.
var ErrNoRecords = errors.New("no records in IPC data")

// IPCWriter writes record batches in the Arrow IPC stream format and reads
// them back.
type IPCWriter struct {
	allocator memory.Allocator
}

// NewIPCWriter creates an IPCWriter allocating from mem, or from the default
// allocator when mem is nil.
func NewIPCWriter(mem memory.Allocator) *IPCWriter {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	return &IPCWriter{allocator: mem}
}

// Serialize writes the records, which must share one schema, as a single
// IPC stream.
func (w *IPCWriter) Serialize(records ...arrow.RecordBatch) ([]byte, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to serialize")
	}

	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(records[0].Schema()), ipc.WithAllocator(w.allocator))
	defer writer.Close()

	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Deserialize reads every record of an IPC stream. The caller releases them.
func (w *IPCWriter) Deserialize(data []byte) ([]arrow.RecordBatch, error) {
	reader, err := ipc.NewReader(bytes.NewReader(data), ipc.WithAllocator(w.allocator))
	if err != nil {
		return nil, fmt.Errorf("failed to create reader: %w", err)
	}
	defer reader.Release()

	var records []arrow.RecordBatch
	for reader.Next() {
		record := reader.RecordBatch()
		record.Retain()
		records = append(records, record)
	}
	if err := reader.Err(); err != nil {
		for _, r := range records {
			r.Release()
		}
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}

// WriteArrays serializes cols as a one-batch IPC stream.
func (w *IPCWriter) WriteArrays(cols []*array.Array) ([]byte, error) {
	rec, err := ToRecordBatch(cols)
	if err != nil {
		return nil, err
	}
	defer rec.Release()
	return w.Serialize(rec)
}

// ReadArrays deserializes an IPC stream and returns the columns of each
// batch.
func (w *IPCWriter) ReadArrays(data []byte) ([][]*array.Array, error) {
	records, err := w.Deserialize(data)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, r := range records {
			r.Release()
		}
	}()

	out := make([][]*array.Array, 0, len(records))
	for i, rec := range records {
		cols, err := FromRecordBatch(rec, w.allocator)
		if err != nil {
			for _, batch := range out {
				releaseAll(batch)
			}
			return nil, fmt.Errorf("batch %d: %w", i, err)
		}
		out = append(out, cols)
	}
	return out, nil
}

func releaseAll(cols []*array.Array) {
	for _, c := range cols {
		c.Release()
	}
}
