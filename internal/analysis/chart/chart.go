// Package chart turns the exclusion-filtered frequency list into a bar chart.
// A Renderer produces a Chart; every Chart must be destroyed before the next
// one is rendered for the same view.
package chart

import (
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/frequency"
)

// DatasetLabel is the series name shown in the chart legend.
const DatasetLabel = "Word Frequency"

// Dataset is the chart-ready projection of a frequency list.
type Dataset struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// NewDataset copies entries into parallel label/value slices.
func NewDataset(entries []frequency.Entry) Dataset {
	ds := Dataset{
		Labels: make([]string, 0, len(entries)),
		Values: make([]int, 0, len(entries)),
	}
	for _, e := range entries {
		ds.Labels = append(ds.Labels, e.Text)
		ds.Values = append(ds.Values, e.Value)
	}
	return ds
}

// Len returns the number of bars.
func (d Dataset) Len() int { return len(d.Labels) }

// Chart is a live rendering that holds resources until destroyed.
type Chart interface {
	Destroy()
}

// Renderer draws a dataset.
type Renderer interface {
	Render(ds Dataset) (Chart, error)
}
