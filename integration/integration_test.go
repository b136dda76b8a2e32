package integration

import (
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/float16"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
	"github.com/VanDung-dev/HieraChain-Columnar/array"
)

func loadBatch(t *testing.T, path string) []*array.Array {
	t.Helper()
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	t.Cleanup(func() { mem.AssertSize(t, 0) })

	f, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, f.NumBatches())
	cols, err := f.Batch(0, mem)
	require.NoError(t, err)
	t.Cleanup(func() {
		for _, c := range cols {
			c.Release()
		}
	})
	return cols
}

func valid(v any) array.Nullable { return array.Nullable{Value: v, Valid: true} }

func TestPrimitivesFixture(t *testing.T) {
	cols := loadBatch(t, "testdata/primitives.json")
	require.Len(t, cols, 8)

	want := map[string][]array.Nullable{
		"i32":     {valid(int32(-7)), {}, valid(int32(42))},
		"u64":     {valid(uint64(1)), valid(uint64(18446744073709551615)), valid(uint64(3))},
		"half":    {valid(float16.New(0.5)), valid(float16.New(-2)), {}},
		"flag":    {valid(true), valid(false), valid(true)},
		"word":    {valid("hello"), {}, valid("world")},
		"blob":    {valid([]byte{0, 1}), valid([]byte{}), valid([]byte{0xff})},
		"nothing": {{}, {}, {}},
		"color":   {valid("green"), valid("red"), {}},
	}
	for _, c := range cols {
		w, ok := want[c.Name()]
		require.True(t, ok, c.Name())
		if diff := cmp.Diff(w, c.Values(), cmp.Comparer(func(a, b float16.Num) bool { return a == b })); diff != "" {
			t.Errorf("column %s mismatch (-want +got):\n%s", c.Name(), diff)
		}
	}

	require.Equal(t, abi.LARGE_BINARY, cols[5].DataType())
	require.True(t, cols[7].Wrapper().IsDictionary())
	md, err := cols[1].Metadata()
	require.NoError(t, err)
	require.Equal(t, []abi.KeyValue{{Key: "unit", Value: "bytes"}}, md)
	require.Zero(t, cols[1].NullCount(), "non-nullable field ignores VALIDITY")
}

func TestViewsFixture(t *testing.T) {
	cols := loadBatch(t, "testdata/views.json")
	require.Len(t, cols, 2)

	require.Equal(t, abi.STRING_VIEW, cols[0].DataType())
	require.Equal(t, []array.Nullable{valid("hi"), {}, valid("a long string value")}, cols[0].Values())

	require.Equal(t, abi.BINARY_VIEW, cols[1].DataType())
	require.Equal(t, []array.Nullable{
		valid([]byte("raw bytes beyond inline")),
		valid([]byte{0, 1}),
		valid([]byte("tiny")),
	}, cols[1].Values())

	bv, ok := array.As[*array.BinaryView](cols[1].Wrapper())
	require.True(t, ok)
	require.Len(t, bv.Variadic(), 1)
}

func TestDecodeErrors(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	cases := []struct {
		name string
		doc  string
		want error
	}{
		{
			"unsupported type",
			`{"schema":{"fields":[{"name":"d","type":{"name":"date","unit":"DAY"},"nullable":true}]},
			  "batches":[{"count":0,"columns":[{"name":"d","count":0}]}]}`,
			abi.ErrUnsupportedType,
		},
		{
			"count mismatch",
			`{"schema":{"fields":[{"name":"i","type":{"name":"int","isSigned":true,"bitWidth":16},"nullable":false}]},
			  "batches":[{"count":2,"columns":[{"name":"i","count":2,"DATA":[1]}]}]}`,
			abi.ErrInvalidFormat,
		},
		{
			"missing dictionary",
			`{"schema":{"fields":[{"name":"c","type":{"name":"utf8"},"nullable":false,
			   "dictionary":{"id":3,"indexType":{"name":"int","isSigned":true,"bitWidth":32}}}]},
			  "batches":[{"count":1,"columns":[{"name":"c","count":1,"DATA":[0]}]}]}`,
			abi.ErrInvalidFormat,
		},
		{
			"key out of range",
			`{"schema":{"fields":[{"name":"c","type":{"name":"utf8"},"nullable":false,
			   "dictionary":{"id":0,"indexType":{"name":"int","isSigned":false,"bitWidth":8}}}]},
			  "batches":[{"count":1,"columns":[{"name":"c","count":1,"DATA":[5]}]}],
			  "dictionaries":[{"id":0,"data":{"count":1,"columns":[{"name":"v","count":1,"DATA":["x"]}]}}]}`,
			abi.ErrOutOfRange,
		},
		{
			"bad prefix",
			`{"schema":{"fields":[{"name":"v","type":{"name":"utf8view"},"nullable":false}]},
			  "batches":[{"count":1,"columns":[{"name":"v","count":1,
			   "VIEWS":[{"SIZE":13,"PREFIX_HEX":"00000000","BUFFER_INDEX":0,"OFFSET":0}],
			   "VARIADIC_DATA_BUFFERS":["6162636465666768696a6b6c6d"]}]}]}`,
			abi.ErrInvalidFormat,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Decode(strings.NewReader(tc.doc))
			require.NoError(t, err)
			_, err = f.Batch(0, mem)
			require.ErrorIs(t, err, tc.want)
		})
	}

	f, err := Decode(strings.NewReader(`{"schema":{"fields":[]},"batches":[]}`))
	require.NoError(t, err)
	_, err = f.Batch(0, mem)
	require.ErrorIs(t, err, abi.ErrOutOfRange)

	_, err = Decode(strings.NewReader(`{"schema":`))
	require.Error(t, err)
}

func TestIntType(t *testing.T) {
	for _, tc := range []struct {
		typ  Type
		want abi.DataType
	}{
		{Type{Name: "int", Signed: true, BitWidth: 8}, abi.INT8},
		{Type{Name: "int", BitWidth: 8}, abi.UINT8},
		{Type{Name: "int", Signed: true, BitWidth: 64}, abi.INT64},
		{Type{Name: "int", BitWidth: 32}, abi.UINT32},
		{Type{Name: "floatingpoint", Precision: "DOUBLE"}, abi.DOUBLE},
		{Type{Name: "largeutf8"}, abi.LARGE_STRING},
	} {
		got, err := tc.typ.DataType()
		require.NoError(t, err)
		require.Equal(t, tc.want, got)
	}
	_, err := Type{Name: "int", BitWidth: 128}.DataType()
	require.ErrorIs(t, err, abi.ErrUnsupportedType)
}
