package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/chart"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/frequency"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/search"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/state"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/session"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/wordcloud/client"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/wordcloud/counter"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/logger"
)

var (
	headingStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	keyStyle       = lipgloss.NewStyle().Faint(true)
	highlightStyle = lipgloss.NewStyle().Background(lipgloss.Color("#FEF08A")).Foreground(lipgloss.Color("#DC2626"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#D97706"))
)

// localProvider counts in-process, for use without a running service.
var localProvider = frequency.ProviderFunc(func(_ context.Context, paragraph string) ([]frequency.Entry, error) {
	return counter.Count(paragraph).Entries, nil
})

// loadConfig reads the config file and routes logs to stderr.
func loadConfig(g *GlobalFlags, stderr io.Writer) (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	level := "warn"
	if g.Verbose {
		level = "debug"
	}
	logger.SetupWriter(stderr, level, cfg.Logging.Format)
	return cfg, nil
}

// readParagraph takes --text verbatim. File and stdin input lose the
// trailing line ending editors and shells append.
func readParagraph(f InputFlags, stdin io.Reader) (string, error) {
	if f.Text != "" {
		return f.Text, nil
	}
	var (
		data []byte
		err  error
	)
	if f.File != "" {
		if data, err = os.ReadFile(f.File); err != nil {
			return "", fmt.Errorf("reading %s: %w", f.File, err)
		}
	} else if data, err = io.ReadAll(stdin); err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return trimLineEnding(string(data)), nil
}

func trimLineEnding(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}

// analyze replays the flags as user actions: paste the paragraph, add each
// exclusion, then search. It waits for the frequency fetch to settle.
func analyze(cfg *config.Config, f InputFlags, paragraph string) state.State {
	var provider frequency.Provider = localProvider
	if !f.Local {
		clientCfg := cfg.Client
		if f.Endpoint != "" {
			clientCfg.Endpoint = f.Endpoint
		}
		provider = client.New(clientCfg, nil)
	}

	sess := session.New(provider, &chart.BarRenderer{}, nil)
	defer sess.Close()

	sess.Dispatch(state.SetDocument{Text: paragraph})
	for _, term := range f.Exclude {
		sess.Dispatch(state.AddExclusion{Term: term})
	}
	if f.Search != "" {
		sess.Dispatch(state.Search{Term: f.Search})
	}
	sess.Wait()
	return sess.Snapshot()
}

// highlighter uses the configured markers when present and terminal colours
// otherwise.
func highlighter(cfg *config.Config) search.Highlighter {
	if cfg.Analyzer.HighlightOpen != "" || cfg.Analyzer.HighlightClose != "" {
		return search.Highlighter{Marker: search.Marker{
			Open:  cfg.Analyzer.HighlightOpen,
			Close: cfg.Analyzer.HighlightClose,
		}}
	}
	return search.Highlighter{Wrap: func(m string) string { return highlightStyle.Render(m) }}
}

func writeKV(w io.Writer, pairs ...string) {
	width := 0
	for i := 0; i < len(pairs); i += 2 {
		width = max(width, len(pairs[i]))
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(w, "%s%s  %s\n", keyStyle.Render(pairs[i]), strings.Repeat(" ", width-len(pairs[i])), pairs[i+1])
	}
}
