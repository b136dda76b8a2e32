package interop

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/VanDung-dev/HieraChain-Columnar/array"
)

func TestIPCWriteReadArrays(t *testing.T) {
	mem := newChecked(t)
	w := NewIPCWriter(mem)

	ids := owned(t)(array.NewPrimitive([]uint32{7, 8, 9}, array.WithName("id"), array.WithAllocator(mem)))
	defer ids.Release()
	tags := owned(t)(array.NewStringView([]string{"alpha", "", "a tag longer than twelve"},
		array.WithName("tag"), array.WithNulls(1), array.WithAllocator(mem)))
	defer tags.Release()

	data, err := w.WriteArrays([]*array.Array{ids, tags})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	batches, err := w.ReadArrays(data)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	defer releaseAll(batches[0])

	got := batches[0]
	require.Equal(t, "id", got[0].Name())
	require.Equal(t, "tag", got[1].Name())
	require.True(t, ids.Equal(got[0]))
	require.True(t, tags.Equal(got[1]))
}

func TestIPCMultipleBatches(t *testing.T) {
	mem := newChecked(t)
	w := NewIPCWriter(mem)

	first := owned(t)(array.NewPrimitive([]int64{1}, array.WithName("v"), array.WithAllocator(mem)))
	defer first.Release()
	second := owned(t)(array.NewPrimitive([]int64{2, 3}, array.WithName("v"), array.WithAllocator(mem)))
	defer second.Release()

	r1, err := ToRecordBatch([]*array.Array{first})
	require.NoError(t, err)
	defer r1.Release()
	r2, err := ToRecordBatch([]*array.Array{second})
	require.NoError(t, err)
	defer r2.Release()

	data, err := w.Serialize(r1, r2)
	require.NoError(t, err)

	records, err := w.Deserialize(data)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		defer r.Release()
	}
	require.Equal(t, int64(1), records[0].NumRows())
	require.Equal(t, int64(2), records[1].NumRows())
}

func TestIPCErrors(t *testing.T) {
	w := NewIPCWriter(nil)

	_, err := w.Serialize()
	require.Error(t, err)

	_, err = w.Deserialize([]byte("not an ipc stream"))
	require.Error(t, err)
}
