// Package store persists word-cloud analytics snapshots in PostgreSQL so
// request history survives restarts of the in-memory aggregator.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/postgres"
)

// Schema is applied by EnsureSchema. The headline counters get their own
// columns for ad hoc SQL; the full stats record lives in data.
const Schema = `CREATE TABLE IF NOT EXISTS wordcloud_snapshots (
    id             BIGSERIAL PRIMARY KEY,
    captured_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    total_requests BIGINT NOT NULL,
    total_tokens   BIGINT NOT NULL,
    cache_hits     BIGINT NOT NULL,
    cache_misses   BIGINT NOT NULL,
    p95_latency_ms BIGINT NOT NULL,
    data           JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS wordcloud_snapshots_captured_at_idx
    ON wordcloud_snapshots (captured_at DESC)`

// StatsSource supplies the stats to snapshot.
type StatsSource interface {
	Stats() analytics.AggregatedStats
}

type Store struct {
	db        *postgres.Client
	retention time.Duration
	logger    *slog.Logger

	mu        sync.Mutex
	lastTotal int64
	saved     bool
}

// New returns a Store. Snapshots older than retention are pruned by the
// periodic saver; zero keeps everything.
func New(db *postgres.Client, retention time.Duration) *Store {
	return &Store{
		db:        db,
		retention: retention,
		logger:    slog.Default().With("component", "analytics-store"),
	}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("creating snapshot table: %w", err)
	}
	return nil
}

// SaveSnapshot inserts stats unconditionally.
func (s *Store) SaveSnapshot(ctx context.Context, stats analytics.AggregatedStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}
	_, err = s.db.DB.ExecContext(ctx,
		`INSERT INTO wordcloud_snapshots
		    (captured_at, total_requests, total_tokens, cache_hits, cache_misses, p95_latency_ms, data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		time.Now().UTC(), stats.TotalRequests, stats.TotalTokens,
		stats.CacheHits, stats.CacheMisses, stats.P95LatencyMs, data,
	)
	if err != nil {
		return fmt.Errorf("saving analytics snapshot: %w", err)
	}

	s.mu.Lock()
	s.lastTotal, s.saved = stats.TotalRequests, true
	s.mu.Unlock()

	s.logger.Debug("analytics snapshot saved",
		"total_requests", stats.TotalRequests,
		"total_tokens", stats.TotalTokens,
	)
	return nil
}

// saveIfChanged skips the insert when no request arrived since the last
// snapshot.
func (s *Store) saveIfChanged(ctx context.Context, stats analytics.AggregatedStats) (bool, error) {
	s.mu.Lock()
	unchanged := s.saved && s.lastTotal == stats.TotalRequests
	s.mu.Unlock()
	if unchanged {
		return false, nil
	}
	return true, s.SaveSnapshot(ctx, stats)
}

// LatestSnapshot returns nil, nil when no snapshot exists yet.
func (s *Store) LatestSnapshot(ctx context.Context) (*analytics.AggregatedStats, error) {
	row := s.db.DB.QueryRowContext(ctx,
		`SELECT data FROM wordcloud_snapshots ORDER BY captured_at DESC LIMIT 1`)
	stats, err := scanStats(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest snapshot: %w", err)
	}
	return &stats, nil
}

// ListSnapshots returns up to limit snapshots, newest first. Rows whose data
// no longer decodes are skipped.
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]analytics.AggregatedStats, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT data FROM wordcloud_snapshots ORDER BY captured_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]analytics.AggregatedStats, 0, limit)
	for rows.Next() {
		stats, err := scanStats(rows)
		if err != nil {
			s.logger.Warn("skipping unreadable snapshot", "error", err)
			continue
		}
		snapshots = append(snapshots, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return snapshots, nil
}

// Prune deletes snapshots captured before now minus the retention window.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	res, err := s.db.DB.ExecContext(ctx,
		`DELETE FROM wordcloud_snapshots WHERE captured_at < $1`,
		time.Now().UTC().Add(-s.retention))
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	return res.RowsAffected()
}

// StartPeriodicSave snapshots src every interval while it changes, prunes
// expired rows, and writes a final snapshot on shutdown.
func (s *Store) StartPeriodicSave(ctx context.Context, src StatsSource, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := s.saveIfChanged(ctx, src.Stats()); err != nil {
					s.logger.Error("periodic snapshot failed", "error", err)
				}
				if n, err := s.Prune(ctx); err != nil {
					s.logger.Error("snapshot pruning failed", "error", err)
				} else if n > 0 {
					s.logger.Info("expired snapshots pruned", "deleted", n)
				}
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if _, err := s.saveIfChanged(shutdownCtx, src.Stats()); err != nil {
					s.logger.Error("final snapshot failed", "error", err)
				}
				return
			}
		}
	}()
	s.logger.Info("periodic snapshot started", "interval", interval, "retention", s.retention)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStats(row scanner) (analytics.AggregatedStats, error) {
	var (
		data  []byte
		stats analytics.AggregatedStats
	)
	if err := row.Scan(&data); err != nil {
		return stats, err
	}
	if err := json.Unmarshal(data, &stats); err != nil {
		return stats, fmt.Errorf("unmarshaling snapshot: %w", err)
	}
	return stats, nil
}
