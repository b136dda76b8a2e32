package interop

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	arrowarray "github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
	"github.com/VanDung-dev/HieraChain-Columnar/array"
)

func newChecked(t *testing.T) *memory.CheckedAllocator {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	t.Cleanup(func() { mem.AssertSize(t, 0) })
	return mem
}

func owned(t *testing.T) func(array.Typed, error) *array.Array {
	return func(a array.Typed, err error) *array.Array {
		t.Helper()
		require.NoError(t, err)
		return array.FromTyped(a)
	}
}

func TestTypeMapping(t *testing.T) {
	for dt := abi.NA; dt <= abi.BINARY_VIEW; dt++ {
		at, err := ArrowType(dt)
		require.NoError(t, err, dt.String())
		back, err := DataTypeOf(at)
		require.NoError(t, err)
		require.Equal(t, dt, back)
	}
	_, err := ArrowType(abi.UNKNOWN)
	require.ErrorIs(t, err, abi.ErrUnsupportedType)
	_, err = DataTypeOf(arrow.FixedWidthTypes.Date32)
	require.ErrorIs(t, err, arrow.ErrNotImplemented)
}

func TestToArrowStrings(t *testing.T) {
	mem := newChecked(t)
	a := owned(t)(array.NewString([]string{"hello", " ", "ugly", "", "world"},
		array.WithNulls(2, 3), array.WithAllocator(mem)))
	defer a.Release()

	arr, err := ToArrow(a.Wrapper())
	require.NoError(t, err)
	defer arr.Release()

	s, ok := arr.(*arrowarray.String)
	require.True(t, ok)
	require.Equal(t, 5, s.Len())
	require.Equal(t, 2, s.NullN())
	require.Equal(t, "hello", s.Value(0))
	require.True(t, s.IsNull(2))
	require.Equal(t, "world", s.Value(4))
}

func TestRoundTripEveryLayout(t *testing.T) {
	mem := newChecked(t)
	long := "a string well past the inline limit"
	cols := []*array.Array{
		owned(t)(array.NewNull(3, array.WithAllocator(mem))),
		owned(t)(array.NewBoolean([]bool{true, false, true}, array.WithNulls(1), array.WithAllocator(mem))),
		owned(t)(array.NewPrimitive([]int8{-1, 0, 1}, array.WithAllocator(mem))),
		owned(t)(array.NewPrimitive([]uint64{1, 2, 3}, array.WithNulls(0), array.WithAllocator(mem))),
		owned(t)(array.NewPrimitive([]float64{0.5, 1.5, 2.5}, array.WithAllocator(mem))),
		owned(t)(array.NewLargeString([]string{"x", "", "z"}, array.WithAllocator(mem))),
		owned(t)(array.NewBinary([][]byte{{1}, nil, {2, 3}}, array.WithNulls(1), array.WithAllocator(mem))),
		owned(t)(array.NewStringView([]string{"short", long, ""}, array.WithAllocator(mem))),
		owned(t)(array.NewBinaryView([][]byte{[]byte(long), {9}, nil}, array.WithNulls(2), array.WithAllocator(mem))),
	}
	for _, c := range cols {
		t.Run(c.DataType().String(), func(t *testing.T) {
			defer c.Release()
			arr, err := ToArrow(c.Wrapper())
			require.NoError(t, err)
			defer arr.Release()
			require.Equal(t, c.Len(), arr.Len())
			require.Equal(t, c.NullCount(), arr.NullN())

			back, err := FromArrow(arr, "col", mem)
			require.NoError(t, err)
			defer back.Release()
			require.Equal(t, "col", back.Name())
			require.True(t, c.Equal(back))
			if diff := cmp.Diff(c.Values(), back.Values()); diff != "" {
				t.Errorf("values mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoundTripDictionary(t *testing.T) {
	mem := newChecked(t)
	values, err := array.NewString([]string{"red", "green"}, array.WithAllocator(mem))
	require.NoError(t, err)
	d := owned(t)(array.NewDictionary([]int16{1, 0, 1}, values, array.WithNulls(2), array.WithAllocator(mem)))
	defer d.Release()

	arr, err := ToArrow(d.Wrapper())
	require.NoError(t, err)
	defer arr.Release()

	dict, ok := arr.(*arrowarray.Dictionary)
	require.True(t, ok)
	dt := dict.DataType().(*arrow.DictionaryType)
	require.Equal(t, arrow.INT16, dt.IndexType.ID())
	require.Equal(t, arrow.STRING, dt.ValueType.ID())
	require.Equal(t, 1, dict.GetValueIndex(0))

	back, err := FromArrow(arr, "colors", mem)
	require.NoError(t, err)
	defer back.Release()
	require.True(t, back.Wrapper().IsDictionary())
	require.Equal(t, []array.Nullable{
		{Value: "green", Valid: true},
		{Value: "red", Valid: true},
		{},
	}, back.Values())
}

func TestFromArrowSliced(t *testing.T) {
	mem := newChecked(t)
	b := arrowarray.NewInt32Builder(mem)
	b.AppendValues([]int32{1, 2, 3, 4}, []bool{true, false, true, true})
	full := b.NewInt32Array()
	b.Release()
	defer full.Release()

	sliced := arrowarray.NewSlice(full, 1, 3)
	defer sliced.Release()

	a, err := FromArrow(sliced, "", mem)
	require.NoError(t, err)
	defer a.Release()
	require.Equal(t, []array.Nullable{{}, {Value: int32(3), Valid: true}}, a.Values())
}

func TestFromArrowUnsupported(t *testing.T) {
	mem := newChecked(t)
	b := arrowarray.NewDate32Builder(mem)
	b.Append(1)
	arr := b.NewArray()
	b.Release()
	defer arr.Release()

	_, err := FromArrow(arr, "d", mem)
	require.ErrorIs(t, err, abi.ErrUnsupportedType)
}

func TestRecordBatch(t *testing.T) {
	mem := newChecked(t)
	ids := owned(t)(array.NewPrimitive([]int64{1, 2}, array.WithName("id"),
		array.WithMetadata(abi.KeyValue{Key: "unit", Value: "n"}), array.WithAllocator(mem)))
	defer ids.Release()
	names := owned(t)(array.NewString([]string{"a", "b"}, array.WithName("name"), array.WithNulls(1), array.WithAllocator(mem)))
	defer names.Release()

	rec, err := ToRecordBatch([]*array.Array{ids, names})
	require.NoError(t, err)
	defer rec.Release()

	require.Equal(t, int64(2), rec.NumRows())
	require.Equal(t, "id", rec.Schema().Field(0).Name)
	require.False(t, rec.Schema().Field(0).Nullable)
	require.True(t, rec.Schema().Field(1).Nullable)
	v, ok := rec.Schema().Field(0).Metadata.GetValue("unit")
	require.True(t, ok)
	require.Equal(t, "n", v)

	cols, err := FromRecordBatch(rec, mem)
	require.NoError(t, err)
	defer releaseAll(cols)
	require.Len(t, cols, 2)
	require.True(t, ids.Equal(cols[0]))
	require.True(t, names.Equal(cols[1]))
	md, err := cols[0].Metadata()
	require.NoError(t, err)
	require.Equal(t, []abi.KeyValue{{Key: "unit", Value: "n"}}, md)
}

func TestRecordBatchRejectsRaggedColumns(t *testing.T) {
	mem := newChecked(t)
	a := owned(t)(array.NewPrimitive([]int32{1, 2}, array.WithAllocator(mem)))
	defer a.Release()
	b := owned(t)(array.NewPrimitive([]int32{1}, array.WithAllocator(mem)))
	defer b.Release()

	_, err := ToRecordBatch([]*array.Array{a, b})
	require.ErrorIs(t, err, abi.ErrInvalidFormat)
	_, err = ToRecordBatch(nil)
	require.Error(t, err)
}
