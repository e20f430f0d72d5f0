package analytics

import "time"

type EventType string

const (
	EventWordCloud EventType = "word_cloud"
	EventWordCount EventType = "word_count"
	EventAnalyze   EventType = "analyze"
	EventExport    EventType = "export"
)

// WordCloudEvent describes one served request. TopWords holds at most
// the five most frequent tokens of the paragraph.
type WordCloudEvent struct {
	Type         EventType   `json:"type"`
	TokenCount   int         `json:"token_count"`
	UniqueTokens int         `json:"unique_tokens"`
	TopWords     []WordCount `json:"top_words,omitempty"`
	LatencyMs    int64       `json:"latency_ms"`
	CacheHit     bool        `json:"cache_hit"`
	Timestamp    time.Time   `json:"timestamp"`
	RequestID    string      `json:"request_id"`
}

type WordCount struct {
	Word  string `json:"word"`
	Count int64  `json:"count"`
}
