package api

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/goccy/go-json"

	"github.com/VanDung-dev/HieraChain-Columnar/array"
	"github.com/VanDung-dev/HieraChain-Columnar/interop"
)

// ColumnSummary describes one imported array.
type ColumnSummary struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Length     int    `json:"length"`
	NullCount  int    `json:"null_count"`
	Dictionary bool   `json:"dictionary,omitempty"`
	Bytes      int    `json:"bytes"`
}

// Response is the JSON answer to one request.
type Response struct {
	OK      bool              `json:"ok"`
	Error   string            `json:"error,omitempty"`
	Batches [][]ColumnSummary `json:"batches,omitempty"`
}

// Summarize describes a through its concrete array type.
func Summarize(a *array.Array) ColumnSummary {
	return array.Visit[ColumnSummary](a.Wrapper(), array.ArrayFunc[ColumnSummary](func(t array.Typed) ColumnSummary {
		s := ColumnSummary{
			Name:      a.Name(),
			Type:      t.DataType().String(),
			Length:    t.Len(),
			NullCount: t.NullCount(),
			Bytes:     bufferBytes(t),
		}
		if d, ok := t.(array.DictionaryArray); ok {
			s.Dictionary = true
			s.Type = fmt.Sprintf("dictionary<%s, %s>", d.KeyType(), d.Dictionary().DataType())
			s.Bytes += bufferBytes(d.Dictionary().Typed())
		}
		return s
	}))
}

func bufferBytes(t array.Typed) int {
	n := 0
	for _, b := range t.Proxy().Buffers() {
		n += len(b)
	}
	return n
}

// BatchHandler imports the record batches of an Arrow IPC stream and
// answers with their summaries.
type BatchHandler struct {
	ipc     *interop.IPCWriter
	metrics *Metrics
	logger  log.Logger
}

// NewBatchHandler creates a BatchHandler. A nil metrics records nothing; a
// nil logger logs nothing.
func NewBatchHandler(mem memory.Allocator, metrics *Metrics, logger log.Logger) *BatchHandler {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &BatchHandler{ipc: interop.NewIPCWriter(mem), metrics: metrics, logger: logger}
}

// Process decodes data and summarizes every column of every batch.
func (h *BatchHandler) Process(data []byte) ([][]ColumnSummary, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("received empty data")
	}
	batches, err := h.ipc.ReadArrays(data)
	if err != nil {
		return nil, fmt.Errorf("failed to import batch: %w", err)
	}

	out := make([][]ColumnSummary, len(batches))
	for i, cols := range batches {
		out[i] = make([]ColumnSummary, len(cols))
		for j, c := range cols {
			out[i][j] = Summarize(c)
			c.Release()
		}
		if h.metrics != nil {
			h.metrics.RecordBatch(out[i])
		}
		level.Debug(h.logger).Log("msg", "batch imported", "batch", i, "cols", len(cols), "rows", rows(out[i]))
	}
	return out, nil
}

func rows(cols []ColumnSummary) int {
	if len(cols) == 0 {
		return 0
	}
	return cols[0].Length
}

// Handle is Process rendered as a JSON Response. Failures are reported in
// the response; only encoding errors are returned.
func (h *BatchHandler) Handle(transport string, data []byte) ([]byte, error) {
	start := time.Now()
	batches, err := h.Process(data)
	if h.metrics != nil {
		h.metrics.RecordRequest(transport, len(data), err, time.Since(start))
	}

	resp := Response{OK: err == nil, Batches: batches}
	if err != nil {
		level.Warn(h.logger).Log("msg", "rejected request", "transport", transport, "bytes", len(data), "err", err)
		resp.Error = err.Error()
	}
	return marshalResponse(resp)
}

func marshalResponse(resp Response) ([]byte, error) { return json.Marshal(resp) }
