//go:build cgo

package cabi

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"

	"github.com/VanDung-dev/HieraChain-Columnar/abi"
	"github.com/VanDung-dev/HieraChain-Columnar/array"
)

func TestExportImport(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	s, err := array.NewString([]string{"hello", " ", "ugly", "", "world"},
		array.WithNulls(2, 3), array.WithName("words"),
		array.WithMetadata(abi.KeyValue{Key: "lang", Value: "en"}), array.WithAllocator(mem))
	require.NoError(t, err)
	src := array.FromTyped(s)
	defer src.Release()

	var (
		carr CArray
		csch CSchema
	)
	require.NoError(t, Export(src, &carr, &csch))

	got, err := Import(&carr, &csch, mem)
	require.NoError(t, err)
	defer got.Release()

	require.Equal(t, "words", got.Name())
	require.True(t, src.Equal(got))
	md, err := got.Metadata()
	require.NoError(t, err)
	require.Equal(t, []abi.KeyValue{{Key: "lang", Value: "en"}}, md)
}

func TestExportDictionary(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	values, err := array.NewPrimitive([]float64{0.5, 1.5}, array.WithAllocator(mem))
	require.NoError(t, err)
	d, err := array.NewDictionary([]uint8{1, 1, 0}, values, array.WithAllocator(mem))
	require.NoError(t, err)
	src := array.FromTyped(d)
	defer src.Release()

	var (
		carr CArray
		csch CSchema
	)
	require.NoError(t, Export(src, &carr, &csch))
	got, err := Import(&carr, &csch, mem)
	require.NoError(t, err)
	defer got.Release()

	require.True(t, got.Wrapper().IsDictionary())
	require.Equal(t, []array.Nullable{
		{Value: 1.5, Valid: true},
		{Value: 1.5, Valid: true},
		{Value: 0.5, Valid: true},
	}, got.Values())
}

func TestReleaseUnconsumed(t *testing.T) {
	p, err := array.NewPrimitive([]int32{1, 2, 3})
	require.NoError(t, err)
	src := array.FromTyped(p)
	defer src.Release()

	var (
		carr CArray
		csch CSchema
	)
	require.NoError(t, Export(src, &carr, &csch))
	Release(&carr, &csch)
}
