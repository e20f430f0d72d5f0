// Package handler serves the word-cloud HTTP API: raw frequencies, single
// word counts, and server-side analysis and CSV export.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/export"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/frequency"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/state"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/wordcloud/counter"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/wordcloud/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/tracing"
)

// FrequencyCache memoises word-cloud results.
type FrequencyCache interface {
	GetOrCompute(ctx context.Context, paragraph string, computeFn func() ([]frequency.Entry, error)) ([]frequency.Entry, bool, error)
	Invalidate(ctx context.Context) error
	Stats() (hits, misses int64)
}

// Tracker receives one analytics event per served request.
type Tracker interface {
	Track(event analytics.WordCloudEvent)
}

type wordCloudRequest struct {
	Paragraph string `json:"paragraph"`
}

type wordCountRequest struct {
	Paragraph string `json:"paragraph"`
	Word      string `json:"word"`
}

type wordCountResponse struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

type analyzeRequest struct {
	Paragraph string   `json:"paragraph"`
	Search    *string  `json:"search"`
	Exclude   []string `json:"exclude"`
}

type Handler struct {
	validator validator.Validator
	cache     FrequencyCache
	tracker   Tracker
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New builds a Handler. cache, tracker and m may be nil.
func New(v validator.Validator, cache FrequencyCache, tracker Tracker, m *metrics.Metrics) *Handler {
	return &Handler{
		validator: v,
		cache:     cache,
		tracker:   tracker,
		metrics:   m,
		logger:    slog.Default().With("component", "wordcloud-handler"),
	}
}

// WordCloud answers POST /api/word-cloud with one {text, value} entry per
// distinct lowercase token. A missing paragraph yields an empty list.
func (h *Handler) WordCloud(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := tracing.Start(r.Context(), "word_cloud")
	defer span.End()
	log := logger.FromContext(ctx)

	var req wordCloudRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, "invalid", err)
		return
	}
	if err := h.validator.Paragraph(req.Paragraph); err != nil {
		h.fail(w, "invalid", err)
		return
	}

	compute := func() ([]frequency.Entry, error) {
		_, countSpan := tracing.Start(ctx, "count")
		defer countSpan.End()
		res := counter.Count(req.Paragraph)
		countSpan.SetAttr("tokens", res.TotalTokens)
		return res.Entries, nil
	}
	var (
		entries  []frequency.Entry
		cacheHit bool
	)
	if h.cache != nil {
		var err error
		entries, cacheHit, err = h.cache.GetOrCompute(ctx, req.Paragraph, compute)
		if err != nil {
			log.Error("word cloud computation failed", "error", err)
			h.fail(w, "error", apperrors.New(apperrors.ErrInternal, http.StatusInternalServerError, "word cloud failed"))
			return
		}
	} else {
		entries, _ = compute()
	}
	total := sumValues(entries)
	span.SetAttr("cache_hit", cacheHit)
	span.SetAttr("unique", len(entries))

	latencyMs := time.Since(start).Milliseconds()
	log.Info("word cloud served",
		"tokens", total,
		"unique", len(entries),
		"cache_hit", cacheHit,
		"latency_ms", latencyMs,
	)
	if h.metrics != nil {
		h.metrics.WordCloudRequests.WithLabelValues("ok").Inc()
		h.metrics.ParagraphTokens.Observe(float64(total))
		h.metrics.UniqueTokens.Observe(float64(len(entries)))
		if h.cache != nil {
			if cacheHit {
				h.metrics.CacheHitsTotal.Inc()
			} else {
				h.metrics.CacheMissesTotal.Inc()
			}
		}
	}
	h.track(ctx, analytics.EventWordCloud, entries, total, latencyMs, cacheHit)

	if entries == nil {
		entries = []frequency.Entry{}
	}
	h.writeJSON(w, http.StatusOK, entries)
}

// WordCount answers POST /api/word-count with the number of tokens equal to
// word. JSON and form-encoded bodies are both accepted.
func (h *Handler) WordCount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req wordCountRequest
	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			h.fail(w, "invalid", apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "malformed form body"))
			return
		}
		req.Paragraph = r.PostFormValue("paragraph")
		req.Word = r.PostFormValue("word")
	} else if err := h.decode(w, r, &req); err != nil {
		h.fail(w, "invalid", err)
		return
	}
	if err := h.validator.WordCount(req.Paragraph, req.Word); err != nil {
		h.fail(w, "invalid", err)
		return
	}

	n := counter.CountWord(req.Paragraph, req.Word)
	res := counter.Count(req.Paragraph)
	h.track(r.Context(), analytics.EventWordCount, res.Entries, res.TotalTokens, time.Since(start).Milliseconds(), false)
	h.writeJSON(w, http.StatusOK, wordCountResponse{Word: req.Word, Count: n})
}

// Analyze answers POST /api/analyze with the full derived analysis view,
// using locally counted frequencies in place of a remote fetch.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s, res, ok := h.analyze(w, r)
	if !ok {
		return
	}
	h.track(r.Context(), analytics.EventAnalyze, res.Entries, res.TotalTokens, time.Since(start).Milliseconds(), false)
	h.writeJSON(w, http.StatusOK, s)
}

// Export answers POST /api/export with the summary CSV as an attachment.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s, res, ok := h.analyze(w, r)
	if !ok {
		return
	}
	data, err := export.Marshal(state.Summary(s))
	if err != nil {
		logger.FromContext(r.Context()).Error("export failed", "error", err)
		h.fail(w, "error", apperrors.New(apperrors.ErrInternal, http.StatusInternalServerError, "export failed"))
		return
	}
	h.track(r.Context(), analytics.EventExport, res.Entries, res.TotalTokens, time.Since(start).Milliseconds(), false)

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.DefaultFilename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write export", "error", err)
	}
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// analyze replays the request through the state reducer: document, then
// exclusions in order, then the search if one was given.
func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) (state.State, counter.Result, bool) {
	var req analyzeRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, "invalid", err)
		return state.State{}, counter.Result{}, false
	}
	search := ""
	if req.Search != nil {
		search = *req.Search
	}
	if err := h.validator.Analyze(req.Paragraph, search, req.Exclude); err != nil {
		h.fail(w, "invalid", err)
		return state.State{}, counter.Result{}, false
	}

	s, fetch := state.Reduce(state.New(), state.SetDocument{Text: req.Paragraph})
	res := counter.Count(req.Paragraph)
	if fetch != nil {
		s, _ = state.Reduce(s, state.FrequenciesLoaded{Seq: fetch.Seq, Entries: res.Entries})
	}
	for _, term := range req.Exclude {
		s, _ = state.Reduce(s, state.AddExclusion{Term: term})
	}
	if req.Search != nil {
		s, _ = state.Reduce(s, state.Search{Term: search})
	}
	return s, res, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	limit := int64(h.validator.MaxParagraphBytes)
	if limit <= 0 {
		limit = 1 << 20
	}
	// room for the JSON envelope and the other fields
	body := http.MaxBytesReader(w, r.Body, limit*2+4096)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.New(apperrors.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, "request body too large")
		}
		return apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "malformed JSON body: %v", err)
	}
	return nil
}

func (h *Handler) fail(w http.ResponseWriter, outcome string, err error) {
	if h.metrics != nil {
		h.metrics.WordCloudRequests.WithLabelValues(outcome).Inc()
	}
	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		status := http.StatusBadRequest
		if _, ok := verr.Fields["paragraph"]; ok {
			status = http.StatusRequestEntityTooLarge
		}
		h.writeJSON(w, status, map[string]any{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
		return
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		h.writeError(w, appErr.StatusCode, appErr.Message)
		return
	}
	h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
}

func (h *Handler) track(ctx context.Context, typ analytics.EventType, entries []frequency.Entry, total int, latencyMs int64, cacheHit bool) {
	if h.tracker == nil {
		return
	}
	h.tracker.Track(analytics.WordCloudEvent{
		Type:         typ,
		TokenCount:   total,
		UniqueTokens: len(entries),
		TopWords:     topWords(entries, 5),
		LatencyMs:    latencyMs,
		CacheHit:     cacheHit,
		Timestamp:    time.Now().UTC(),
		RequestID:    middleware.GetRequestID(ctx),
	})
}

func topWords(entries []frequency.Entry, n int) []analytics.WordCount {
	counts := make(map[string]int64, len(entries))
	for _, e := range entries {
		counts[e.Text] += int64(e.Value)
	}
	return analytics.TopN(counts, n)
}

func sumValues(entries []frequency.Entry) int {
	n := 0
	for _, e := range entries {
		n += e.Value
	}
	return n
}

func isForm(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
