package layout

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/require"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
)

func TestOffsetsFromSizes(t *testing.T) {
	offs, err := OffsetsFromSizes[int32]([]int{5, 1, 4, 0, 5})
	require.NoError(t, err)
	require.Equal(t, []int32{0, 5, 6, 10, 10, 15}, offs)

	start, end := Range(offs, 2)
	require.Equal(t, 6, start)
	require.Equal(t, 10, end)

	empty, err := OffsetsFromSizes[int64](nil)
	require.NoError(t, err)
	require.Equal(t, []int64{0}, empty)
}

func TestOffsetsOverflow(t *testing.T) {
	_, err := OffsetsFromSizes[int32]([]int{1 << 30, 1 << 30})
	require.ErrorIs(t, err, ErrInvalidLayout)

	_, err = OffsetsFromSizes[int64]([]int{1 << 30, 1 << 30})
	require.NoError(t, err)

	_, err = OffsetsFromSizes[int32]([]int{-1})
	require.ErrorIs(t, err, abi.ErrInvalidFormat)
}

func TestValidateOffsets(t *testing.T) {
	require.NoError(t, ValidateOffsets([]int32{0, 2, 2, 7}, 7))
	require.NoError(t, ValidateOffsets([]int64{}, 0))

	err := ValidateOffsets([]int32{0, 3, 2}, 5)
	require.ErrorIs(t, err, ErrInvalidLayout)
	require.ErrorIs(t, err, arrow.ErrInvalid)

	require.ErrorIs(t, ValidateOffsets([]int64{0, 8}, 7), ErrInvalidLayout)
	require.ErrorIs(t, ValidateOffsets([]int32{-1, 0}, 7), ErrInvalidLayout)
}

func TestConcat(t *testing.T) {
	data, offs, err := Concat[int64]([]string{"hello", " ", "ugly", "", "world"})
	require.NoError(t, err)
	require.Equal(t, "hello ugly"+"world", string(data))
	require.Equal(t, []int64{0, 5, 6, 10, 10, 15}, offs)
	start, end := Range(offs, 4)
	require.Equal(t, "world", string(data[start:end]))
}

func TestInlineView(t *testing.T) {
	r := InlineView("short")
	require.True(t, r.IsInline())
	require.Equal(t, 5, r.Len())
	require.Equal(t, "short", string(r.Value(nil)))
	require.Equal(t, []byte("shor"), r.Prefix())
	for _, b := range r[4+5:] {
		require.Zero(t, b, "inline data is zero padded")
	}

	twelve := InlineView([]byte("exactly12byt"))
	require.True(t, twelve.IsInline())
	require.Equal(t, "exactly12byt", string(twelve.InlineBytes()))

	require.Panics(t, func() { InlineView("thirteen bytes") })
}

func TestReferencedView(t *testing.T) {
	variadic := [][]byte{[]byte("xxthis is a long value")}
	r := ReferencedView(20, []byte("this"), 0, 2)
	require.False(t, r.IsInline())
	require.Equal(t, 20, r.Len())
	require.Equal(t, 0, r.BufferIndex())
	require.Equal(t, 2, r.BufferOffset())
	require.Equal(t, "this is a long value", string(r.Value(variadic)))
	require.NoError(t, ValidateViews([]ViewRecord{r}, variadic))
}

func TestBuildViewsUsesMarker(t *testing.T) {
	long := []byte("this value is longer than twelve")
	specs := []ViewSpec{
		{Inlined: &[]byte{'a', 'b'}},
		{Size: int32(len(long)), Prefix: []byte("thisXX"), BufferIndex: 0, Offset: 0},
		{Inlined: &long},
	}
	views := BuildViews(specs)
	require.Len(t, views, 3)

	require.Equal(t, "ab", string(views[0].Value(nil)))
	require.Equal(t, []byte("this"), views[1].Prefix())
	require.Equal(t, len(long), views[1].Len())

	// an oversized inline spec keeps its length and only 12 bytes of data
	require.Equal(t, len(long), views[2].Len())
	require.Equal(t, long[:MaxInline], views[2][4:16])
}

func TestValidateViews(t *testing.T) {
	variadic := [][]byte{[]byte("0123456789abcdefghij")}
	good := ReferencedView(16, []byte("0123"), 0, 0)
	require.NoError(t, ValidateViews([]ViewRecord{InlineView("x"), good}, variadic))

	for name, r := range map[string]ViewRecord{
		"missing buffer": ReferencedView(16, []byte("0123"), 1, 0),
		"past the end":   ReferencedView(16, []byte("4567"), 0, 5),
		"prefix":         ReferencedView(16, []byte("0124"), 0, 0),
		"negative index": ReferencedView(16, []byte("0123"), -1, 0),
	} {
		err := ValidateViews([]ViewRecord{r}, variadic)
		require.ErrorIs(t, err, abi.ErrInvalidFormat, name)
	}
}

func TestBuildViewsFromValues(t *testing.T) {
	values := []string{"tiny", "a value past twelve bytes", "", "another long value here", "third long value!!"}
	views, variadic := BuildViewsFromValues(values, 48)
	require.NoError(t, ValidateViews(views, variadic))
	require.Len(t, variadic, 2)
	for i, v := range values {
		require.Equal(t, v, string(views[i].Value(variadic)))
	}

	buf := ViewBytes(views)
	require.Len(t, buf, len(values)*ViewSize)
	back := Views(buf)
	require.Equal(t, views, back)
}
