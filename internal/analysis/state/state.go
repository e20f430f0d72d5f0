// Package state models the analysis view as a serializable record updated by
// pure transitions. Reduce never performs I/O; when a transition needs fresh
// frequencies it returns a FrequencyRequest for the caller to execute.
package state

import (
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/exclusion"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/export"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/frequency"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/search"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/stats"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/tokenizer"
)

// State is the full analysis view. Fields below the marker are derived and
// rebuilt on every transition.
type State struct {
	Document       string            `json:"document"`
	SearchTerm     string            `json:"search_term"`
	Searched       bool              `json:"searched"`
	Exclusions     exclusion.Set     `json:"exclusions"`
	RawFrequencies []frequency.Entry `json:"raw_frequencies"`
	RequestSeq     uint64            `json:"request_seq"`
	AppliedSeq     uint64            `json:"applied_seq"`
	SettledSeq     uint64            `json:"settled_seq"`
	LastError      string            `json:"last_error,omitempty"`

	// derived
	FilteredText string            `json:"filtered_text"`
	OverallCount int               `json:"overall_count"`
	Search       search.Result     `json:"search"`
	Statistics   stats.Statistics  `json:"statistics"`
	ChartEntries []frequency.Entry `json:"chart_entries"`
}

// FrequencyRequest asks the caller to fetch frequencies for Paragraph and
// report back with the same Seq.
type FrequencyRequest struct {
	Seq       uint64
	Paragraph string
}

// Action is a user event or an asynchronous completion.
type Action interface {
	apply(s State) (State, *FrequencyRequest)
}

// SetDocument replaces the document wholesale.
type SetDocument struct{ Text string }

// Search records the term and counts/highlights it.
type Search struct{ Term string }

// AddExclusion appends a term to the exclusion set.
type AddExclusion struct{ Term string }

// FrequenciesLoaded delivers the result of request Seq.
type FrequenciesLoaded struct {
	Seq     uint64
	Entries []frequency.Entry
}

// FrequenciesFailed reports that request Seq failed.
type FrequenciesFailed struct {
	Seq uint64
	Err error
}

// New returns an empty state with derived fields populated.
func New() State {
	return derive(State{Exclusions: exclusion.Set{}})
}

// Reduce applies a to s. The returned request is non-nil only when the
// document changed to a different non-empty value.
func Reduce(s State, a Action) (State, *FrequencyRequest) {
	next, req := a.apply(s)
	return derive(next), req
}

func (a SetDocument) apply(s State) (State, *FrequencyRequest) {
	changed := a.Text != s.Document
	s.Document = a.Text
	if !changed || a.Text == "" {
		return s, nil
	}
	s.RequestSeq++
	return s, &FrequencyRequest{Seq: s.RequestSeq, Paragraph: a.Text}
}

func (a Search) apply(s State) (State, *FrequencyRequest) {
	s.SearchTerm = a.Term
	s.Searched = true
	return s, nil
}

func (a AddExclusion) apply(s State) (State, *FrequencyRequest) {
	s.Exclusions = s.Exclusions.Add(a.Term)
	return s, nil
}

// apply keeps only outcomes newer than the last settled request, success or
// failure, so a slow response for an old document never lands on a newer one.
func (a FrequenciesLoaded) apply(s State) (State, *FrequencyRequest) {
	if a.Seq <= s.SettledSeq {
		return s, nil
	}
	s.SettledSeq = a.Seq
	s.AppliedSeq = a.Seq
	s.RawFrequencies = append([]frequency.Entry(nil), a.Entries...)
	s.LastError = ""
	return s, nil
}

// apply records the error and keeps the prior list. Stale failures are
// ignored.
func (a FrequenciesFailed) apply(s State) (State, *FrequencyRequest) {
	if a.Seq <= s.SettledSeq {
		return s, nil
	}
	s.SettledSeq = a.Seq
	s.LastError = "frequency request failed"
	if a.Err != nil {
		s.LastError = a.Err.Error()
	}
	return s, nil
}

// derive recomputes every derived field from the inputs.
func derive(s State) State {
	s.FilteredText = tokenizer.FilterExcluded(s.Document, s.Exclusions)
	s.OverallCount = tokenizer.CountWords(s.FilteredText)
	s.Statistics = stats.Compute(s.FilteredText)
	if s.Searched {
		s.Search = search.Search(s.Document, s.SearchTerm)
	} else {
		s.Search = search.Result{Highlighted: s.Document}
	}
	s.ChartEntries = frequency.Filter(s.RawFrequencies, s.Exclusions)
	return s
}

// Summary returns the exported metrics for s.
func Summary(s State) export.Summary {
	return export.Summary{
		OverallCount:  s.OverallCount,
		SearchedCount: s.Search.MatchCount,
		Longest:       s.Statistics.Longest,
		Shortest:      s.Statistics.Shortest,
		AverageLength: s.Statistics.AverageLength,
	}
}

// ChartInputsChanged reports whether a redraw is due between two states.
func ChartInputsChanged(prev, next State) bool {
	return prev.Document != next.Document ||
		len(prev.Exclusions) != len(next.Exclusions) ||
		prev.AppliedSeq != next.AppliedSeq
}
