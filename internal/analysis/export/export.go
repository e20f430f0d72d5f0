// Package export serialises the analysis summary as a two-column CSV.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// DefaultFilename is the name offered for the downloaded summary.
const DefaultFilename = "text-analysis-results.csv"

// ContentType is the MIME type of the exported file.
const ContentType = "text/csv;charset=utf-8"

// Summary is the fixed set of exported metrics.
type Summary struct {
	OverallCount  int     `json:"overall_word_count"`
	SearchedCount int     `json:"searched_word_count"`
	Longest       string  `json:"longest_word"`
	Shortest      string  `json:"shortest_word"`
	AverageLength float64 `json:"average_word_length"`
}

// Rows returns the header followed by the five metric rows.
func (s Summary) Rows() [][]string {
	return [][]string{
		{"Metric", "Value"},
		{"Overall Word Count", strconv.Itoa(s.OverallCount)},
		{"Searched Word Count", strconv.Itoa(s.SearchedCount)},
		{"Longest Word", s.Longest},
		{"Shortest Word", s.Shortest},
		{"Average Word Length", strconv.FormatFloat(s.AverageLength, 'f', 2, 64)},
	}
}

// Marshal renders the CSV with CRLF line endings, quoting only fields that
// need it, and no trailing line break.
func Marshal(s Summary) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.WriteAll(s.Rows()); err != nil {
		return nil, fmt.Errorf("encoding summary csv: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\r\n")), nil
}

// WriteCSV writes the summary to w.
func WriteCSV(w io.Writer, s Summary) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing summary csv: %w", err)
	}
	return nil
}

// SaveFile writes the summary to DefaultFilename inside dir and returns the
// full path.
func SaveFile(dir string, s Summary) (string, error) {
	data, err := Marshal(s)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, DefaultFilename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("saving %s: %w", path, err)
	}
	return path, nil
}
