package main

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"

	"github.com/VanDung-dev/HieraChain-Columnar/interop"
)

func TestConvertFixtures(t *testing.T) {
	for _, name := range []string{"primitives.json", "views.json"} {
		t.Run(name, func(t *testing.T) {
			mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
			defer mem.AssertSize(t, 0)

			data, err := convert("../../integration/testdata/"+name, mem)
			require.NoError(t, err)

			batches, err := interop.NewIPCWriter(mem).ReadArrays(data)
			require.NoError(t, err)
			require.NotEmpty(t, batches)
			for _, cols := range batches {
				require.NotEmpty(t, cols)
				for _, c := range cols {
					c.Release()
				}
			}
		})
	}
}

func TestConvertMissingFile(t *testing.T) {
	_, err := convert("does-not-exist.json", memory.NewGoAllocator())
	require.Error(t, err)
}
