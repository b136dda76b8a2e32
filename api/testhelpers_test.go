package api

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"

	"github.com/VanDung-dev/HieraChain-Columnar/array"
	"github.com/VanDung-dev/HieraChain-Columnar/interop"
)

// ipcPayload builds a two-column batch: ids with no nulls and a dictionary
// of words with one null.
func ipcPayload(t *testing.T) []byte {
	t.Helper()
	mem := memory.NewGoAllocator()

	ids, err := array.NewPrimitive([]int32{1, 2, 3, 4, 5}, array.WithName("id"), array.WithAllocator(mem))
	require.NoError(t, err)
	words, err := array.NewString([]string{"alpha", "beta"}, array.WithAllocator(mem))
	require.NoError(t, err)
	keys, err := array.NewDictionary([]uint8{0, 1, 1, 0, 0}, words,
		array.WithName("word"), array.WithNulls(4), array.WithAllocator(mem))
	require.NoError(t, err)

	cols := []*array.Array{array.FromTyped(ids), array.FromTyped(keys)}
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	data, err := interop.NewIPCWriter(mem).WriteArrays(cols)
	require.NoError(t, err)
	return data
}

var wantSummary = [][]ColumnSummary{{
	{Name: "id", Type: "int32", Length: 5},
	{Name: "word", Type: "dictionary<uint8, utf8>", Length: 5, NullCount: 1, Dictionary: true},
}}

// withoutBytes checks that every column reports buffer bytes, then clears
// them: their exact value depends on IPC padding.
func withoutBytes(t *testing.T, batches [][]ColumnSummary) [][]ColumnSummary {
	t.Helper()
	for _, cols := range batches {
		for i := range cols {
			require.Positive(t, cols[i].Bytes, cols[i].Name)
			cols[i].Bytes = 0
		}
	}
	return batches
}
