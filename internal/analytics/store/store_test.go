package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/postgres"
)

type rowFunc func(dest ...any) error

func (f rowFunc) Scan(dest ...any) error { return f(dest...) }

func TestScanStats(t *testing.T) {
	row := rowFunc(func(dest ...any) error {
		*dest[0].(*[]byte) = []byte(`{"total_requests":4,"top_words":[{"word":"a","count":2}]}`)
		return nil
	})
	stats, err := scanStats(row)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalRequests)
	assert.Equal(t, []analytics.WordCount{{Word: "a", Count: 2}}, stats.TopWords)

	bad := rowFunc(func(dest ...any) error {
		*dest[0].(*[]byte) = []byte(`not json`)
		return nil
	})
	_, err = scanStats(bad)
	assert.Error(t, err)
}

func TestPruneWithoutRetentionIsNoop(t *testing.T) {
	s := New(nil, 0)
	n, err := s.Prune(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

// TestSnapshotRoundTrip needs TA_TEST_POSTGRES=1 and a reachable database.
func TestSnapshotRoundTrip(t *testing.T) {
	if os.Getenv("TA_TEST_POSTGRES") == "" {
		t.Skip("skipping: TA_TEST_POSTGRES not set")
	}
	db, err := postgres.New(config.Default().Postgres)
	if err != nil {
		t.Skipf("skipping: postgres unavailable: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := New(db, time.Hour)
	ctx := context.Background()
	require.NoError(t, s.EnsureSchema(ctx))

	want := analytics.AggregatedStats{
		TotalRequests: 3,
		TotalTokens:   12,
		TopWords:      []analytics.WordCount{{Word: "the", Count: 4}},
	}
	require.NoError(t, s.SaveSnapshot(ctx, want))

	saved, err := s.saveIfChanged(ctx, want)
	require.NoError(t, err)
	assert.False(t, saved, "unchanged stats are not saved twice")

	got, err := s.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.TotalRequests, got.TotalRequests)
	assert.Equal(t, want.TopWords, got.TopWords)

	list, err := s.ListSnapshots(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.Prune(ctx)
	require.NoError(t, err)
}
