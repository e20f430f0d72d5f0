package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/chart"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/state"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/config"
)

// Execute implements the go-flags Commander interface.
func (c *AnalyzeCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals, c.streams.err)
	if err != nil {
		return err
	}
	paragraph, err := readParagraph(c.InputFlags, c.streams.in)
	if err != nil {
		return err
	}
	s := analyze(cfg, c.InputFlags, paragraph)
	if c.globals.JSON {
		enc := json.NewEncoder(c.streams.out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	return c.print(cfg, s)
}

func (c *AnalyzeCommand) print(cfg *config.Config, s state.State) error {
	out := c.streams.out
	if s.LastError != "" {
		fmt.Fprintln(c.streams.err, warnStyle.Render("word frequencies unavailable: "+s.LastError))
	}

	sum := state.Summary(s)
	fmt.Fprintln(out, headingStyle.Render("Summary"))
	writeKV(out,
		"Overall word count", strconv.Itoa(sum.OverallCount),
		"Searched word count", strconv.Itoa(sum.SearchedCount),
		"Longest word", sum.Longest,
		"Shortest word", sum.Shortest,
		"Average word length", strconv.FormatFloat(sum.AverageLength, 'f', 2, 64),
	)
	if len(s.Exclusions) > 0 {
		writeKV(out, "Excluded", fmt.Sprint([]string(s.Exclusions)))
	}

	if s.Searched {
		fmt.Fprintln(out)
		fmt.Fprintln(out, headingStyle.Render(fmt.Sprintf("Search: %q", s.SearchTerm)))
		fmt.Fprintln(out, highlighter(cfg).Search(s.Document, s.SearchTerm).Highlighted)
	}

	if c.NoChart {
		return nil
	}
	fmt.Fprintln(out)
	r := &chart.TextRenderer{Out: out, Width: cfg.Analyzer.ChartWidth}
	ch, err := r.Render(chart.NewDataset(s.ChartEntries))
	if err != nil {
		return err
	}
	ch.Destroy()
	return nil
}
