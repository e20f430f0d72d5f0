package cli

import "io"

// GlobalFlags are accepted by every subcommand.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to YAML config file"`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" short:"v" description:"Log debug output to stderr"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// InputFlags select the paragraph and the view over it.
type InputFlags struct {
	File     string   `long:"file" short:"f" description:"Read the paragraph from a file instead of stdin"`
	Text     string   `long:"text" short:"t" description:"Inline paragraph text"`
	Exclude  []string `long:"exclude" short:"x" description:"Word to exclude from counts and chart (repeatable)"`
	Search   string   `long:"search" short:"s" description:"Word to count and highlight"`
	Endpoint string   `long:"endpoint" description:"Word-cloud endpoint URL (overrides config)"`
	Local    bool     `long:"local" description:"Count frequencies in-process instead of calling the service"`
}

// AnalyzeCommand prints the full analysis.
type AnalyzeCommand struct {
	InputFlags
	NoChart bool `long:"no-chart" description:"Skip the frequency chart"`

	globals *GlobalFlags
	streams ioStreams
}

// ExportCommand writes the summary CSV.
type ExportCommand struct {
	InputFlags
	Dir    string `long:"dir" short:"d" description:"Directory for the CSV file (overrides config)"`
	Stdout bool   `long:"stdout" description:"Write the CSV to stdout instead of a file"`

	globals *GlobalFlags
	streams ioStreams
}

type ioStreams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}
