package cli

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/export"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/state"
)

// Execute implements the go-flags Commander interface.
func (c *ExportCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals, c.streams.err)
	if err != nil {
		return err
	}
	paragraph, err := readParagraph(c.InputFlags, c.streams.in)
	if err != nil {
		return err
	}
	s := analyze(cfg, c.InputFlags, paragraph)
	summary := state.Summary(s)

	if c.Stdout {
		return export.WriteCSV(c.streams.out, summary)
	}
	dir := cfg.Analyzer.ExportDir
	if c.Dir != "" {
		dir = c.Dir
	}
	path, err := export.SaveFile(dir, summary)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.streams.out, path)
	return nil
}
