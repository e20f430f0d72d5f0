package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/kafka"
)

type AggregatedStats struct {
	TotalRequests     int64       `json:"total_requests"`
	WordCloudRequests int64       `json:"word_cloud_requests"`
	TotalTokens       int64       `json:"total_tokens"`
	CacheHits         int64       `json:"cache_hits"`
	CacheMisses       int64       `json:"cache_misses"`
	EmptyParagraphs   int64       `json:"empty_paragraphs"`
	AvgLatencyMs      float64     `json:"avg_latency_ms"`
	P50LatencyMs      int64       `json:"p50_latency_ms"`
	P95LatencyMs      int64       `json:"p95_latency_ms"`
	P99LatencyMs      int64       `json:"p99_latency_ms"`
	TopWords          []WordCount `json:"top_words"`
	RequestsPerMinute float64     `json:"requests_per_minute"`
}

// Aggregator folds WordCloudEvents into running totals.
type Aggregator struct {
	mu                sync.RWMutex
	totalRequests     atomic.Int64
	wordCloudRequests atomic.Int64
	totalTokens       atomic.Int64
	cacheHits         atomic.Int64
	cacheMisses       atomic.Int64
	emptyParagraphs   atomic.Int64
	latencies         []int64
	wordCounts        map[string]int64
	startTime         time.Time
	logger            *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:  make([]int64, 0, 10000),
		wordCounts: make(map[string]int64),
		startTime:  time.Now(),
		logger:     slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent adapts the aggregator to a Kafka message handler. Undecodable
// messages are logged and acknowledged.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[WordCloudEvent](value)
		if err != nil {
			agg.logger.Error("failed to decode analytics event", "key", string(key), "error", err)
			return nil
		}
		agg.Record(event)
		return nil
	}
}

// Track records event in-process, for deployments without Kafka.
func (a *Aggregator) Track(event WordCloudEvent) {
	a.Record(event)
}

func (a *Aggregator) Record(event WordCloudEvent) {
	a.totalRequests.Add(1)
	a.totalTokens.Add(int64(event.TokenCount))
	if event.Type == EventWordCloud {
		a.wordCloudRequests.Add(1)
		if event.CacheHit {
			a.cacheHits.Add(1)
		} else {
			a.cacheMisses.Add(1)
		}
	}
	if event.TokenCount == 0 {
		a.emptyParagraphs.Add(1)
	}

	a.mu.Lock()
	a.latencies = append(a.latencies, event.LatencyMs)
	for _, w := range event.TopWords {
		a.wordCounts[w.Word] += w.Count
	}
	a.mu.Unlock()
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalRequests:     a.totalRequests.Load(),
		WordCloudRequests: a.wordCloudRequests.Load(),
		TotalTokens:       a.totalTokens.Load(),
		CacheHits:         a.cacheHits.Load(),
		CacheMisses:       a.cacheMisses.Load(),
		EmptyParagraphs:   a.emptyParagraphs.Load(),
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopWords = TopN(a.wordCounts, 10)
	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.RequestsPerMinute = float64(stats.TotalRequests) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// TopN returns the n highest counts, ties broken alphabetically.
func TopN(counts map[string]int64, n int) []WordCount {
	result := make([]WordCount, 0, len(counts))
	for word, count := range counts {
		result = append(result, WordCount{Word: word, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Word < result[j].Word
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
