package universe

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestCache(t *testing.T) *PriceCache {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cache, err := NewPriceCache(db)
	require.NoError(t, err)
	return cache
}

func TestPriceCache_RoundTrip(t *testing.T) {
	cache := newTestCache(t)
	bars := syntheticBars(3, 100)

	require.NoError(t, cache.Put("AAPL", "2y", bars, time.Hour))

	got, ok, err := cache.Get("AAPL", "2y")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 3)
	assert.Equal(t, bars[0].Close, got[0].Close)
	assert.True(t, bars[0].Date.Equal(got[0].Date))
}

func TestPriceCache_MissOnUnknownKey(t *testing.T) {
	cache := newTestCache(t)

	_, ok, err := cache.Get("AAPL", "2y")
	require.NoError(t, err)
	assert.False(t, ok)

	// Same symbol under a different period is a separate entry.
	require.NoError(t, cache.Put("AAPL", "1y", syntheticBars(2, 50), time.Hour))
	_, ok, err = cache.Get("AAPL", "2y")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPriceCache_ExpiredRowsAreMisses(t *testing.T) {
	cache := newTestCache(t)
	require.NoError(t, cache.Put("MSFT", "2y", syntheticBars(2, 10), -time.Minute))

	_, ok, err := cache.Get("MSFT", "2y")
	require.NoError(t, err)
	assert.False(t, ok)

	purged, err := cache.Purge()
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestPriceCache_StoreUsesCacheFirst(t *testing.T) {
	cache := newTestCache(t)
	client, symbols := universeOf(25, 300)

	store := NewStore(client, cache, time.Hour, zerolog.Nop())
	require.NoError(t, store.Load(context.Background(), symbols, "2y"))
	fetches := client.calls

	// Reload within the TTL must be served entirely from the cache.
	require.NoError(t, store.Load(context.Background(), symbols, "2y"))
	assert.Equal(t, fetches, client.calls)
}
