//
// Copyright (c) 2026 Osmose Engineering
//

package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	implicit "github.com/osmose-engineering/implicit-geometry"

	// Archive formats
	_ "github.com/osmose-engineering/implicit-geometry/ctb"
	_ "github.com/osmose-engineering/implicit-geometry/pm7m"
	_ "github.com/osmose-engineering/implicit-geometry/sl1"
)

var param struct {
	verbose  int
	machines string
}

func init() {
	pflag.CountVarP(&param.verbose, "verbose", "v", "Verbosity of the log output")
	pflag.StringVarP(&param.machines, "machines", "m", "", "TOML file with extra machine profiles")
	pflag.SetInterspersed(false)
}

// newLogger creates a logger with timestamp formatting, writing to w
// and filtering at the given level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

var logger = newLogger(os.Stderr, log.WarnLevel)

// Commander runs a subcommand after its flags were parsed.
type Commander interface {
	Parse(args []string) error
	Args() []string
	Run() error
	PrintDefaults()
}

var commandMap = map[string]struct {
	NewCommander func() Commander
	Description  string
}{
	"primitive": {NewPrimitiveCommand, "Write a primitive shape document"},
	"lattice":   {NewLatticeCommand, "Write a lattice or foam document"},
	"combine":   {NewCombineCommand, "Combine documents with a boolean operation"},
	"mesh":      {NewMeshCommand, "Write a document referencing an STL mesh"},
	"slice":     {NewSliceCommand, "Slice a document into a printer archive or PNG directory"},
	"export":    {NewExportCommand, "Package a PNG slice directory into a printer archive"},
	"info":      {NewInfoCommand, "Summarize a printer archive"},
	"stl":       {NewSTLCommand, "Tessellate a document into a binary STL"},
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: implicit [options] <command> [command options]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Options:")
	pflag.PrintDefaults()
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Commands:")

	names := make([]string, 0, len(commandMap))
	for name := range commandMap {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", name, commandMap[name].Description)
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Output formats:")
	implicit.FormatterUsage()
}

func run() (err error) {
	pflag.Parse()

	switch param.verbose {
	case 0:
	case 1:
		logger.SetLevel(log.InfoLevel)
	default:
		logger.SetLevel(log.DebugLevel)
	}

	if param.machines != "" {
		if err = implicit.LoadMachines(param.machines); err != nil {
			return
		}
	}

	args := pflag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	entry, found := commandMap[args[0]]
	if !found {
		usage()
		err = fmt.Errorf("unknown command '%s'", args[0])
		return
	}

	command := entry.NewCommander()
	if err = command.Parse(args[1:]); err != nil {
		return
	}

	err = command.Run()
	return
}

func main() {
	if err := run(); err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}
