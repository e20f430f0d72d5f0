package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/kafka"
)

type fakePublisher struct {
	mu      sync.Mutex
	batches [][]kafka.Event
	err     error
}

func (f *fakePublisher) PublishBatch(_ context.Context, events []kafka.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, events)
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

func TestCollectorFlushesFullBatch(t *testing.T) {
	pub := &fakePublisher{}
	c := NewCollector(pub, 2, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)

	c.Track(WordCloudEvent{Type: EventWordCloud})
	c.Track(WordCloudEvent{Type: EventWordCloud})
	assert.Eventually(t, func() bool { return pub.count() == 2 }, time.Second, 5*time.Millisecond)

	c.Track(WordCloudEvent{Type: EventExport})
	cancel()
	c.Close()
	assert.Equal(t, 3, pub.count())
}

func TestCollectorRequeuesOnFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	c := NewCollector(pub, 10, time.Hour)
	c.Track(WordCloudEvent{Type: EventWordCloud})
	c.flush(context.Background())
	assert.Equal(t, 1, c.BufferLen())

	pub.err = nil
	c.flush(context.Background())
	assert.Equal(t, 0, c.BufferLen())
	assert.Equal(t, 1, pub.count())
}

func TestCollectorDropsWhenFull(t *testing.T) {
	c := NewCollector(&fakePublisher{}, 1, time.Hour)
	for i := 0; i < 10; i++ {
		c.Track(WordCloudEvent{Type: EventWordCloud})
	}
	assert.Equal(t, 3, c.BufferLen())
}

func TestAggregatorStats(t *testing.T) {
	agg := NewAggregator()
	agg.Record(WordCloudEvent{
		Type: EventWordCloud, TokenCount: 4, LatencyMs: 10,
		TopWords: []WordCount{{"the", 2}, {"cat", 1}},
	})
	agg.Record(WordCloudEvent{
		Type: EventWordCloud, TokenCount: 2, LatencyMs: 30, CacheHit: true,
		TopWords: []WordCount{{"cat", 2}},
	})
	agg.Record(WordCloudEvent{Type: EventAnalyze, TokenCount: 0, LatencyMs: 20})

	s := agg.Stats()
	assert.EqualValues(t, 3, s.TotalRequests)
	assert.EqualValues(t, 2, s.WordCloudRequests)
	assert.EqualValues(t, 6, s.TotalTokens)
	assert.EqualValues(t, 1, s.CacheHits)
	assert.EqualValues(t, 1, s.CacheMisses)
	assert.EqualValues(t, 1, s.EmptyParagraphs)
	assert.InDelta(t, 20.0, s.AvgLatencyMs, 0.001)
	assert.EqualValues(t, 20, s.P50LatencyMs)
	assert.EqualValues(t, 30, s.P99LatencyMs)
	assert.Equal(t, []WordCount{{"cat", 3}, {"the", 2}}, s.TopWords)
}

func TestHandleEventSkipsGarbage(t *testing.T) {
	agg := NewAggregator()
	h := HandleEvent(agg)
	require.NoError(t, h(context.Background(), nil, []byte("not json")))
	assert.EqualValues(t, 0, agg.Stats().TotalRequests)

	data, err := json.Marshal(WordCloudEvent{Type: EventWordCount, TokenCount: 5})
	require.NoError(t, err)
	require.NoError(t, h(context.Background(), []byte("word_count"), data))
	assert.EqualValues(t, 5, agg.Stats().TotalTokens)
}

func TestTopNLimitAndTies(t *testing.T) {
	got := TopN(map[string]int64{"b": 1, "a": 1, "c": 5}, 2)
	assert.Equal(t, []WordCount{{"c", 5}, {"a", 1}}, got)
}

type fakeLister struct {
	snaps []AggregatedStats
	err   error
}

func (f fakeLister) ListSnapshots(context.Context, int) ([]AggregatedStats, error) {
	return f.snaps, f.err
}

func TestHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Record(WordCloudEvent{Type: EventWordCloud, TokenCount: 1})

	t.Run("stats", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHandler(agg, nil).Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		var s AggregatedStats
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
		assert.EqualValues(t, 1, s.TotalRequests)
	})
	t.Run("history disabled", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHandler(agg, nil).History(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/history", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
	t.Run("history bad limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHandler(agg, fakeLister{}).History(rec, httptest.NewRequest(http.MethodGet, "/x?limit=0", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("history empty", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHandler(agg, fakeLister{}).History(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
	t.Run("history error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHandler(agg, fakeLister{err: errors.New("down")}).History(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
