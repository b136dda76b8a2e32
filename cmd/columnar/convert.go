package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VanDung-dev/HieraChain-Columnar/integration"
	"github.com/VanDung-dev/HieraChain-Columnar/interop"
)

// convertCommand rewrites an integration JSON file as an Arrow IPC stream.
type convertCommand struct {
	in  *string
	out *string
}

func (cmd *convertCommand) run(c *kingpin.ParseContext) error {
	data, err := convert(*cmd.in, memory.NewGoAllocator())
	if err != nil {
		exitWithErr(err)
	}
	if err := os.WriteFile(*cmd.out, data, 0o644); err != nil {
		exitWithErr(fmt.Errorf("failed to write %s: %w", *cmd.out, err))
	}
	fmt.Printf("wrote %d bytes to %s\n", len(data), *cmd.out)
	return nil
}

func convert(name string, mem memory.Allocator) ([]byte, error) {
	f, err := integration.ReadFile(name)
	if err != nil {
		return nil, err
	}

	records := make([]arrow.RecordBatch, 0, f.NumBatches())
	defer func() {
		for _, r := range records {
			r.Release()
		}
	}()
	for i := 0; i < f.NumBatches(); i++ {
		cols, err := f.Batch(i, mem)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", i, err)
		}
		rec, err := interop.ToRecordBatch(cols)
		for _, c := range cols {
			c.Release()
		}
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return interop.NewIPCWriter(mem).Serialize(records...)
}

func addConvertCommand(app *kingpin.Application) {
	cmd := &convertCommand{}
	c := app.Command("convert", "Write an integration JSON file as an Arrow IPC stream.").Action(cmd.run)
	cmd.in = c.Arg("file", "The integration JSON file.").Required().ExistingFile()
	cmd.out = c.Arg("out", "The IPC stream to write.").Required().String()
}
