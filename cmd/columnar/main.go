package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
)

// Version information
const (
	Version = "0.1.0"
	Name    = "columnar"
)

func main() {
	app := kingpin.New(Name, "Inspect and convert Arrow integration JSON files.")
	app.Version(Version)
	app.HelpFlag.Short('h')

	addInspectCommand(app)
	addConvertCommand(app)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}

func exitWithErr(err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", Name, err)
	os.Exit(1)
}
