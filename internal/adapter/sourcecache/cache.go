// Package sourcecache decorates data sources with an in-memory LRU cache
// keyed by grid cell and date range, so nearby requests within the same
// period share upstream fetches.
package sourcecache

import (
	"context"
	"sync"

	"github.com/terrapulse/agrorisk/internal/domain"
	"github.com/terrapulse/agrorisk/internal/observability"
)

func cacheKey(coord domain.Coordinate, rng domain.DateRange) string {
	return coord.GridCell() + "|" + rng.String()
}

// CachedWeather wraps a WeatherSource with an LRU cache.
type CachedWeather struct {
	inner   domain.WeatherSource
	cache   *lruCache[[]domain.DailyWeatherRecord]
	metrics *observability.Metrics
}

// NewCachedWeather creates a cache decorator around a weather source.
func NewCachedWeather(inner domain.WeatherSource, maxEntries int, metrics *observability.Metrics) *CachedWeather {
	return &CachedWeather{inner: inner, cache: newLRUCache[[]domain.DailyWeatherRecord](maxEntries), metrics: metrics}
}

func (c *CachedWeather) FetchDaily(ctx context.Context, coord domain.Coordinate, rng domain.DateRange) ([]domain.DailyWeatherRecord, error) {
	key := cacheKey(coord, rng)
	if records, ok := c.cache.get(key); ok {
		c.metrics.SourceCache.WithLabelValues(domain.SourceWeather, "hit").Inc()
		return records, nil
	}
	c.metrics.SourceCache.WithLabelValues(domain.SourceWeather, "miss").Inc()
	records, err := c.inner.FetchDaily(ctx, coord, rng)
	if err != nil {
		return records, err
	}
	// Only cache non-empty results so transient upstream gaps can be retried.
	if len(records) > 0 {
		c.cache.put(key, records)
	}
	return records, nil
}

// CachedPrecipitation wraps a PrecipitationSource with an LRU cache.
type CachedPrecipitation struct {
	inner   domain.PrecipitationSource
	cache   *lruCache[[]domain.DailyPrecipitationRecord]
	metrics *observability.Metrics
}

// NewCachedPrecipitation creates a cache decorator around a precipitation source.
func NewCachedPrecipitation(inner domain.PrecipitationSource, maxEntries int, metrics *observability.Metrics) *CachedPrecipitation {
	return &CachedPrecipitation{inner: inner, cache: newLRUCache[[]domain.DailyPrecipitationRecord](maxEntries), metrics: metrics}
}

func (c *CachedPrecipitation) FetchDaily(ctx context.Context, coord domain.Coordinate, rng domain.DateRange) ([]domain.DailyPrecipitationRecord, error) {
	key := cacheKey(coord, rng)
	if records, ok := c.cache.get(key); ok {
		c.metrics.SourceCache.WithLabelValues(domain.SourcePrecipitation, "hit").Inc()
		return records, nil
	}
	c.metrics.SourceCache.WithLabelValues(domain.SourcePrecipitation, "miss").Inc()
	records, err := c.inner.FetchDaily(ctx, coord, rng)
	if err != nil {
		return records, err
	}
	if len(records) > 0 {
		c.cache.put(key, records)
	}
	return records, nil
}

// CachedVegetation wraps a VegetationSource with an LRU cache.
type CachedVegetation struct {
	inner   domain.VegetationSource
	cache   *lruCache[[]domain.VegetationSample]
	metrics *observability.Metrics
}

// NewCachedVegetation creates a cache decorator around a vegetation source.
func NewCachedVegetation(inner domain.VegetationSource, maxEntries int, metrics *observability.Metrics) *CachedVegetation {
	return &CachedVegetation{inner: inner, cache: newLRUCache[[]domain.VegetationSample](maxEntries), metrics: metrics}
}

func (c *CachedVegetation) FetchSamples(ctx context.Context, coord domain.Coordinate, rng domain.DateRange) ([]domain.VegetationSample, error) {
	key := cacheKey(coord, rng)
	if samples, ok := c.cache.get(key); ok {
		c.metrics.SourceCache.WithLabelValues(domain.SourceVegetation, "hit").Inc()
		return samples, nil
	}
	c.metrics.SourceCache.WithLabelValues(domain.SourceVegetation, "miss").Inc()
	samples, err := c.inner.FetchSamples(ctx, coord, rng)
	if err != nil {
		return samples, err
	}
	if len(samples) > 0 {
		c.cache.put(key, samples)
	}
	return samples, nil
}

// CachedImagery wraps an ImagerySource with an LRU cache.
type CachedImagery struct {
	inner   domain.ImagerySource
	cache   *lruCache[[]domain.ImagerySnapshot]
	metrics *observability.Metrics
}

// NewCachedImagery creates a cache decorator around an imagery source.
func NewCachedImagery(inner domain.ImagerySource, maxEntries int, metrics *observability.Metrics) *CachedImagery {
	return &CachedImagery{inner: inner, cache: newLRUCache[[]domain.ImagerySnapshot](maxEntries), metrics: metrics}
}

func (c *CachedImagery) FetchSnapshots(ctx context.Context, coord domain.Coordinate, rng domain.DateRange) ([]domain.ImagerySnapshot, error) {
	key := cacheKey(coord, rng)
	if snapshots, ok := c.cache.get(key); ok {
		c.metrics.SourceCache.WithLabelValues(domain.SourceImagery, "hit").Inc()
		return snapshots, nil
	}
	c.metrics.SourceCache.WithLabelValues(domain.SourceImagery, "miss").Inc()
	snapshots, err := c.inner.FetchSnapshots(ctx, coord, rng)
	if err != nil {
		return snapshots, err
	}
	if len(snapshots) > 0 {
		c.cache.put(key, snapshots)
	}
	return snapshots, nil
}

// lruCache is a simple thread-safe LRU cache over any value type.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) remove(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
