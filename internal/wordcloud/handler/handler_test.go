package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/frequency"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/state"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/wordcloud/validator"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/metrics"
)

type recordingTracker struct {
	mu     sync.Mutex
	events []analytics.WordCloudEvent
}

func (r *recordingTracker) Track(e analytics.WordCloudEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

type mapCache struct {
	data   map[string][]frequency.Entry
	hits   int64
	misses int64
	err    error
}

func (m *mapCache) GetOrCompute(_ context.Context, p string, fn func() ([]frequency.Entry, error)) ([]frequency.Entry, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	if v, ok := m.data[p]; ok {
		m.hits++
		return v, true, nil
	}
	m.misses++
	v, err := fn()
	if err != nil {
		return nil, false, err
	}
	m.data[p] = v
	return v, false, nil
}

func (m *mapCache) Invalidate(context.Context) error {
	m.data = map[string][]frequency.Entry{}
	return nil
}

func (m *mapCache) Stats() (int64, int64) { return m.hits, m.misses }

func newHandler(cache FrequencyCache, tracker Tracker) *Handler {
	return New(validator.Validator{MaxParagraphBytes: 64}, cache, tracker, nil)
}

func post(t *testing.T, h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestWordCloud(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"counts in first-occurrence order", `{"paragraph":"The cat saw the DOG"}`, http.StatusOK,
			`[{"text":"the","value":2},{"text":"cat","value":1},{"text":"saw","value":1},{"text":"dog","value":1}]`},
		{"missing paragraph", `{}`, http.StatusOK, `[]`},
		{"empty body", ``, http.StatusOK, `[]`},
		{"whitespace only", `{"paragraph":"  \n\t "}`, http.StatusOK, `[]`},
		{"punctuation stays attached", `{"paragraph":"end. end"}`, http.StatusOK,
			`[{"text":"end.","value":1},{"text":"end","value":1}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, newHandler(nil, nil).WordCloud, "/api/word-cloud", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestWordCloudRejectsBadInput(t *testing.T) {
	h := newHandler(nil, nil)

	rec := post(t, h.WordCloud, "/api/word-cloud", `{"paragraph":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, h.WordCloud, "/api/word-cloud", `{"paragraph":"`+strings.Repeat("x", 65)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Fields, "paragraph")
}

func TestWordCloudUsesCacheAndTracks(t *testing.T) {
	cache := &mapCache{data: map[string][]frequency.Entry{}}
	tracker := &recordingTracker{}
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)
	h := New(validator.Validator{MaxParagraphBytes: 64}, cache, tracker, m)

	for i := 0; i < 2; i++ {
		rec := post(t, h.WordCloud, "/api/word-cloud", `{"paragraph":"b a b"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[{"text":"b","value":2},{"text":"a","value":1}]`, rec.Body.String())
	}

	assert.EqualValues(t, 1, cache.hits)
	assert.EqualValues(t, 1, cache.misses)
	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "wordcloud_cache_hits_total")

	require.Len(t, tracker.events, 2)
	first := tracker.events[0]
	assert.Equal(t, analytics.EventWordCloud, first.Type)
	assert.Equal(t, 3, first.TokenCount)
	assert.Equal(t, 2, first.UniqueTokens)
	assert.False(t, first.CacheHit)
	assert.Equal(t, []analytics.WordCount{{Word: "b", Count: 2}, {Word: "a", Count: 1}}, first.TopWords)
	assert.True(t, tracker.events[1].CacheHit)
}

func TestWordCloudCacheFailure(t *testing.T) {
	h := newHandler(&mapCache{err: errors.New("redis down")}, nil)
	rec := post(t, h.WordCloud, "/api/word-cloud", `{"paragraph":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWordCount(t *testing.T) {
	h := newHandler(nil, nil)

	rec := post(t, h.WordCount, "/api/word-count", `{"paragraph":"Go go GO gopher","word":"go"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"word":"go","count":3}`, rec.Body.String())

	rec = post(t, h.WordCount, "/api/word-count", `{"paragraph":"Go go","word":"`+strings.Repeat("w", 257)+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWordCountBlankWordIsZero(t *testing.T) {
	h := newHandler(nil, nil)

	for _, body := range []string{
		`{"paragraph":"Go go","word":""}`,
		`{"paragraph":"Go go","word":" "}`,
		`{"paragraph":"Go go"}`,
	} {
		rec := post(t, h.WordCount, "/api/word-count", body)
		require.Equal(t, http.StatusOK, rec.Code, body)
		var got wordCountResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Zero(t, got.Count, body)
	}
}

func TestWordCountForm(t *testing.T) {
	form := url.Values{"paragraph": {"the cat the"}, "word": {"THE"}}
	req := httptest.NewRequest(http.MethodPost, "/api/word-count", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	newHandler(nil, nil).WordCount(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"word":"THE","count":2}`, rec.Body.String())
}

func TestAnalyze(t *testing.T) {
	tracker := &recordingTracker{}
	h := newHandler(nil, tracker)
	rec := post(t, h.Analyze, "/api/analyze",
		`{"paragraph":"The cat and the hat","exclude":["THE"],"search":"cat"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var s state.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, "cat and hat", s.FilteredText)
	assert.Equal(t, 3, s.OverallCount)
	assert.Equal(t, 1, s.Search.MatchCount)
	assert.Contains(t, s.Search.Highlighted, `<span class="bg-yellow-200 text-red-600">cat</span>`)
	assert.Equal(t, []frequency.Entry{{Text: "cat", Value: 1}, {Text: "and", Value: 1}, {Text: "hat", Value: 1}}, s.ChartEntries)
	assert.InDelta(t, 3.0, s.Statistics.AverageLength, 1e-9)

	require.Len(t, tracker.events, 1)
	assert.Equal(t, analytics.EventAnalyze, tracker.events[0].Type)
}

func TestAnalyzeWithoutSearch(t *testing.T) {
	rec := post(t, newHandler(nil, nil).Analyze, "/api/analyze", `{"paragraph":"x y"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var s state.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.False(t, s.Searched)
	assert.Equal(t, "x y", s.Search.Highlighted)
}

func TestExport(t *testing.T) {
	rec := post(t, newHandler(nil, nil).Export, "/api/export", `{"paragraph":"a bb ccc","search":"bb"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv;charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="text-analysis-results.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t,
		"Metric,Value\r\n"+
			"Overall Word Count,3\r\n"+
			"Searched Word Count,1\r\n"+
			"Longest Word,ccc\r\n"+
			"Shortest Word,a\r\n"+
			"Average Word Length,2.00",
		rec.Body.String())
}

func TestCacheEndpoints(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		h := newHandler(nil, nil)
		rec := httptest.NewRecorder()
		h.CacheStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))
		assert.JSONEq(t, `{"status":"disabled"}`, rec.Body.String())

		rec = httptest.NewRecorder()
		h.CacheInvalidate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
	t.Run("enabled", func(t *testing.T) {
		cache := &mapCache{data: map[string][]frequency.Entry{}, hits: 1, misses: 3}
		h := newHandler(cache, nil)
		rec := httptest.NewRecorder()
		h.CacheStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))
		assert.JSONEq(t, `{"hits":1,"misses":3,"total":4,"hit_rate":"25.0%"}`, rec.Body.String())

		rec = httptest.NewRecorder()
		h.CacheInvalidate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
