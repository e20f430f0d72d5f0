// Package session drives one analysis view: it folds actions through the
// state reducer, keeps at most one live chart, and runs frequency fetches
// in the background, feeding their outcomes back as actions.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/chart"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/frequency"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/state"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/metrics"
)

type Session struct {
	mu       sync.Mutex
	state    state.State
	provider frequency.Provider
	renderer chart.Renderer
	chart    chart.Chart
	closed   bool

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New starts an empty session. m may be nil.
func New(provider frequency.Provider, renderer chart.Renderer, m *metrics.Metrics) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		state:    state.New(),
		provider: provider,
		renderer: renderer,
		ctx:      ctx,
		cancel:   cancel,
		metrics:  m,
		logger:   slog.Default().With("component", "session"),
	}
}

// Dispatch applies a and returns the resulting state. It never waits on the
// network. Actions dispatched after Close are ignored.
func (s *Session) Dispatch(a state.Action) state.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.state
	}

	prev := s.state
	next, req := state.Reduce(prev, a)
	s.state = next

	if state.ChartInputsChanged(prev, next) {
		s.redraw()
	}
	if req != nil {
		s.fetch(*req)
	}
	return next
}

// Snapshot returns the current state.
func (s *Session) Snapshot() state.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Chart returns the live chart, or nil before the first draw.
func (s *Session) Chart() chart.Chart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chart
}

// Wait blocks until every fetch started so far has been applied or dropped.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels in-flight fetches, waits for them, and destroys the chart.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancel()
	s.destroyChart()
	s.mu.Unlock()
	s.wg.Wait()
}

// redraw destroys the previous chart before rendering its replacement.
// Callers hold s.mu.
func (s *Session) redraw() {
	s.destroyChart()
	c, err := s.renderer.Render(chart.NewDataset(s.state.ChartEntries))
	if err != nil {
		s.logger.Error("chart render failed", "error", err)
		return
	}
	s.chart = c
}

func (s *Session) destroyChart() {
	if s.chart != nil {
		s.chart.Destroy()
		s.chart = nil
	}
}

// fetch runs req in the background. Callers hold s.mu.
func (s *Session) fetch(req state.FrequencyRequest) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		entries, err := s.provider.Frequencies(s.ctx, req.Paragraph)
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			s.logger.Error("fetching word frequencies failed", "seq", req.Seq, "error", err)
			s.count("failed")
			s.Dispatch(state.FrequenciesFailed{Seq: req.Seq, Err: err})
			return
		}
		next := s.Dispatch(state.FrequenciesLoaded{Seq: req.Seq, Entries: entries})
		if next.AppliedSeq == req.Seq {
			s.count("applied")
		} else {
			s.logger.Debug("discarded stale frequencies", "seq", req.Seq, "applied_seq", next.AppliedSeq)
			s.count("stale")
		}
	}()
}

func (s *Session) count(result string) {
	if s.metrics != nil {
		s.metrics.FrequencyFetches.WithLabelValues(result).Inc()
	}
}
