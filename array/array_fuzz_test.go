package array

import (
	"bytes"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"
)

// FuzzVariableLayouts builds the same values in the offset and view layouts,
// appends a few more, and checks both against the plain slice.
func FuzzVariableLayouts(f *testing.F) {
	f.Add([]byte("hello| |ugly||world"), []byte{0, 0, 1, 1, 0})
	f.Add([]byte("a value longer than twelve bytes|x"), []byte{1})
	f.Add([]byte(""), []byte{})
	f.Add([]byte("||||"), []byte{1, 0, 1, 0, 1})

	f.Fuzz(func(t *testing.T, data []byte, nullMask []byte) {
		mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
		defer mem.AssertSize(t, 0)

		parts := bytes.Split(data, []byte("|"))
		vals := make([]string, len(parts))
		valid := make([]bool, len(parts))
		for i, p := range parts {
			vals[i] = string(p)
			valid[i] = i >= len(nullMask) || nullMask[i]&1 == 0
		}

		s, err := NewString(vals, WithValidity(valid), WithAllocator(mem))
		require.NoError(t, err)
		defer s.Release()
		v, err := NewStringView(vals, WithValidity(valid), WithAllocator(mem))
		require.NoError(t, err)
		defer v.Release()

		extra := append([]string{string(data)}, vals...)
		for _, x := range extra[:min(len(extra), 4)] {
			require.NoError(t, s.Append(x))
			require.NoError(t, v.Append(x))
			vals = append(vals, x)
			valid = append(valid, true)
		}

		nulls := 0
		for i, want := range vals {
			if !valid[i] {
				nulls++
				require.True(t, s.IsNull(i))
				require.True(t, v.IsNull(i))
				continue
			}
			require.Equal(t, want, s.Value(i))
			require.Equal(t, want, v.Value(i))
		}
		require.Equal(t, nulls, s.NullCount())
		require.Equal(t, nulls, v.NullCount())

		ws, wv := Borrowed(s), Borrowed(v)
		c, err := wv.Clone()
		require.NoError(t, err)
		defer c.Release()
		require.True(t, Equal(wv, c))
		require.Equal(t, Size(ws), Size(c))
	})
}
