package sourcecache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrapulse/agrorisk/internal/domain"
	"github.com/terrapulse/agrorisk/internal/observability"
)

// --- mock for decorator tests ---

type countingWeather struct {
	calls   int
	records []domain.DailyWeatherRecord
	err     error
}

func (m *countingWeather) FetchDaily(_ context.Context, _ domain.Coordinate, _ domain.DateRange) ([]domain.DailyWeatherRecord, error) {
	m.calls++
	return m.records, m.err
}

func testRange() domain.DateRange {
	return domain.DateRange{
		Start: domain.Date(2025, time.June, 1),
		End:   domain.Date(2025, time.June, 7),
	}
}

func oneRecord(temp float64) []domain.DailyWeatherRecord {
	return []domain.DailyWeatherRecord{{Date: domain.Date(2025, time.June, 1), TemperatureC: &temp}}
}

// --- decorator tests ---

func TestCachedWeather_CacheHit(t *testing.T) {
	inner := &countingWeather{records: oneRecord(25)}
	cached := NewCachedWeather(inner, 10, observability.NewMetricsForTesting())
	coord := domain.Coordinate{Lat: 23.81, Lon: 90.41}

	r1, err := cached.FetchDaily(context.Background(), coord, testRange())
	require.NoError(t, err)
	r2, err := cached.FetchDaily(context.Background(), coord, testRange())
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedWeather_NearbyCoordinatesShareCell(t *testing.T) {
	inner := &countingWeather{records: oneRecord(25)}
	cached := NewCachedWeather(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.FetchDaily(context.Background(), domain.Coordinate{Lat: 23.81, Lon: 90.41}, testRange())
	require.NoError(t, err)
	_, err = cached.FetchDaily(context.Background(), domain.Coordinate{Lat: 23.84, Lon: 90.44}, testRange())
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls, "coordinates in the same 0.1-degree cell share an entry")
}

func TestCachedWeather_DistinctRangesMiss(t *testing.T) {
	inner := &countingWeather{records: oneRecord(25)}
	cached := NewCachedWeather(inner, 10, observability.NewMetricsForTesting())
	coord := domain.Coordinate{Lat: 23.81, Lon: 90.41}
	other := domain.DateRange{Start: domain.Date(2025, time.July, 1), End: domain.Date(2025, time.July, 7)}

	_, err := cached.FetchDaily(context.Background(), coord, testRange())
	require.NoError(t, err)
	_, err = cached.FetchDaily(context.Background(), coord, other)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedWeather_ErrorsAndEmptyNotCached(t *testing.T) {
	inner := &countingWeather{err: errors.New("upstream down")}
	cached := NewCachedWeather(inner, 10, observability.NewMetricsForTesting())
	coord := domain.Coordinate{Lat: 1, Lon: 2}

	_, err := cached.FetchDaily(context.Background(), coord, testRange())
	require.Error(t, err)

	// Upstream recovers but returns nothing; still no cache entry.
	inner.err = nil
	_, err = cached.FetchDaily(context.Background(), coord, testRange())
	require.NoError(t, err)

	inner.records = oneRecord(25)
	records, err := cached.FetchDaily(context.Background(), coord, testRange())
	require.NoError(t, err)

	assert.Len(t, records, 1)
	assert.Equal(t, 3, inner.calls, "failures and empty results must hit upstream again")
}

// --- LRU internals ---

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newLRUCache[int](2)
	c.put("a", 1)
	c.put("b", 2)
	c.put("c", 3) // evicts a

	_, ok := c.get("a")
	assert.False(t, ok)
	v, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	_, ok = c.get("c")
	assert.True(t, ok)
}

func TestLRUCache_GetPromotes(t *testing.T) {
	c := newLRUCache[int](2)
	c.put("a", 1)
	c.put("b", 2)

	_, ok := c.get("a") // promote a; b becomes the tail
	require.True(t, ok)
	c.put("c", 3) // evicts b

	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("b")
	assert.False(t, ok)
}

func TestLRUCache_PutUpdatesExisting(t *testing.T) {
	c := newLRUCache[int](2)
	c.put("a", 1)
	c.put("a", 9)

	v, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, 9, v)
	assert.Len(t, c.entries, 1)
}

func TestLRUCache_ConcurrentAccess(t *testing.T) {
	c := newLRUCache[int](16)
	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*7+i)%32)
				c.put(key, i)
				c.get(key)
			}
		}(g)
	}
	for g := 0; g < 4; g++ {
		<-done
	}
	assert.LessOrEqual(t, len(c.entries), 16)
}
