// Package cli implements the textanalyzer command line: it runs a paragraph
// through an analysis session backed by a word-cloud service and prints or
// exports the results.
package cli

import (
	"fmt"
	"io"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

type commands struct {
	Analyze *AnalyzeCommand
	Export  *ExportCommand
}

func buildParser(version string, stdin io.Reader, stdout, stderr io.Writer) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "textanalyzer"
	parser.LongDescription = "Word counts, statistics, search highlighting and word frequencies for a paragraph of text."

	streams := ioStreams{in: stdin, out: stdout, err: stderr}
	cmds := &commands{
		Analyze: &AnalyzeCommand{globals: &globals, streams: streams},
		Export:  &ExportCommand{globals: &globals, streams: streams},
	}

	parser.AddCommand("analyze", "Analyze a paragraph",
		"Print counts, word statistics, the highlighted search result and the frequency chart.", cmds.Analyze)
	parser.AddCommand("export", "Export the analysis summary as CSV",
		"Write the five summary metrics to text-analysis-results.csv.", cmds.Export)

	return parser, &globals, cmds
}

// Run parses os.Args and executes the matched subcommand.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses args (os.Args when nil) with the process's standard
// streams.
func RunWithArgs(version string, args []string) error {
	return run(version, args, os.Stdin, os.Stdout, os.Stderr)
}

func run(version string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Fprintf(stdout, "textanalyzer %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version, stdin, stdout, stderr)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}
	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok && flagsErr.Type == goflags.ErrHelp {
			return nil
		}
		return err
	}
	return nil
}
