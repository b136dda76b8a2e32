package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VanDung-dev/HieraChain-Columnar/api"
	"github.com/VanDung-dev/HieraChain-Columnar/integration"
)

// inspectCommand prints a summary of every column of every batch in files.
type inspectCommand struct {
	files *[]string
}

func (cmd *inspectCommand) run(c *kingpin.ParseContext) error {
	for _, name := range *cmd.files {
		if err := cmd.inspect(name); err != nil {
			exitWithErr(err)
		}
	}
	return nil
}

func (cmd *inspectCommand) inspect(name string) error {
	f, err := integration.ReadFile(name)
	if err != nil {
		return err
	}
	mem := memory.NewGoAllocator()

	fmt.Printf("%s: %d batches\n", name, f.NumBatches())
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BATCH\tNAME\tTYPE\tLENGTH\tNULLS\tBYTES")
	for i := 0; i < f.NumBatches(); i++ {
		cols, err := f.Batch(i, mem)
		if err != nil {
			return fmt.Errorf("%s: batch %d: %w", name, i, err)
		}
		for _, c := range cols {
			s := api.Summarize(c)
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\n", i, s.Name, s.Type, s.Length, s.NullCount, s.Bytes)
			c.Release()
		}
	}
	return w.Flush()
}

func addInspectCommand(app *kingpin.Application) {
	cmd := &inspectCommand{}
	inspect := app.Command("inspect", "Print the columns of integration JSON files.").Action(cmd.run)
	cmd.files = inspect.Arg("file", "The files to inspect.").Required().ExistingFiles()
}
