// Package ml provides caching for model answers.
package ml

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// CacheKey identifies one model answer
type CacheKey struct {
	Model        string
	ModelVersion string
	Method       string
	Row          []float64
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range k.Row {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = h.Write(buf[:])
	}
	return fmt.Sprintf("%s:%s:%s:%d:%x", k.Model, k.ModelVersion, k.Method, len(k.Row), h.Sum64())
}

// cachedAnswer holds either a value or class probabilities
type cachedAnswer struct {
	value float64
	proba []float64
}

// PredictionCache provides in-memory caching for model answers
type PredictionCache struct {
	name      string
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.Mutex
	hitCount  atomic.Uint64
	missCount atomic.Uint64
}

// NewPredictionCache creates a new prediction cache
func NewPredictionCache(name string, ttl time.Duration, maxSize int) *PredictionCache {
	return &PredictionCache{
		name:    name,
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// GetValue retrieves a cached single-value answer
func (pc *PredictionCache) GetValue(key CacheKey) (float64, bool) {
	answer, ok := pc.get(key)
	if !ok || answer.proba != nil {
		return 0, false
	}
	return answer.value, true
}

// GetProba retrieves cached class probabilities
func (pc *PredictionCache) GetProba(key CacheKey) ([]float64, bool) {
	answer, ok := pc.get(key)
	if !ok || answer.proba == nil {
		return nil, false
	}
	return append([]float64(nil), answer.proba...), true
}

// SetValue stores a single-value answer
func (pc *PredictionCache) SetValue(key CacheKey, value float64) {
	pc.set(key, cachedAnswer{value: value})
}

// SetProba stores class probabilities
func (pc *PredictionCache) SetProba(key CacheKey, proba []float64) {
	pc.set(key, cachedAnswer{proba: append([]float64(nil), proba...)})
}

func (pc *PredictionCache) get(key CacheKey) (cachedAnswer, bool) {
	if result, found := pc.cache.Get(key.String()); found {
		if answer, ok := result.(cachedAnswer); ok {
			pc.hitCount.Add(1)
			pc.updateMetrics()
			return answer, true
		}
	}

	pc.missCount.Add(1)
	pc.updateMetrics()
	return cachedAnswer{}, false
}

func (pc *PredictionCache) set(key CacheKey, answer cachedAnswer) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	// Check size limit
	if pc.cache.ItemCount() >= pc.maxSize {
		// Remove expired items first
		pc.cache.DeleteExpired()
		if pc.cache.ItemCount() >= pc.maxSize {
			return
		}
	}

	pc.cache.Set(key.String(), answer, pc.ttl)
}

// Clear flushes the entire cache
func (pc *PredictionCache) Clear() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.cache.Flush()
	pc.hitCount.Store(0)
	pc.missCount.Store(0)
}

// Stats returns cache statistics
func (pc *PredictionCache) Stats() (hits, misses uint64, ratio float64) {
	hits = pc.hitCount.Load()
	misses = pc.missCount.Load()
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// updateMetrics updates Prometheus metrics
func (pc *PredictionCache) updateMetrics() {
	_, _, ratio := pc.Stats()
	ModelCacheHitRatio.WithLabelValues(pc.name).Set(ratio)
}

// ItemCount returns the number of items in cache
func (pc *PredictionCache) ItemCount() int {
	return pc.cache.ItemCount()
}
