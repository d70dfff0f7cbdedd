package ml

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCacheKeyString tests cache key string representation
func TestCacheKeyString(t *testing.T) {
	key := CacheKey{
		Model:        "goals",
		ModelVersion: "1.0",
		Method:       "predict",
		Row:          []float64{1, 2.5, 3},
	}

	keyStr := key.String()
	assert.NotEmpty(t, keyStr)
	assert.Contains(t, keyStr, "goals")
	assert.Contains(t, keyStr, "1.0")
	assert.Contains(t, keyStr, "predict")
}

// TestCacheKeyEquality tests cache key equality
func TestCacheKeyEquality(t *testing.T) {
	key1 := CacheKey{Model: "goals", ModelVersion: "1.0", Method: "predict", Row: []float64{1, 2, 3}}
	key2 := CacheKey{Model: "goals", ModelVersion: "1.0", Method: "predict", Row: []float64{1, 2, 3}}
	key3 := CacheKey{Model: "goals", ModelVersion: "1.0", Method: "predict", Row: []float64{1, 2, 3.0001}}
	key4 := CacheKey{Model: "goals", ModelVersion: "1.1", Method: "predict", Row: []float64{1, 2, 3}}

	assert.Equal(t, key1.String(), key2.String())
	assert.NotEqual(t, key1.String(), key3.String())
	assert.NotEqual(t, key1.String(), key4.String())
}

// TestPredictionCacheGetSet tests cache Get and Set operations
func TestPredictionCacheGetSet(t *testing.T) {
	cache := NewPredictionCache("test_get_set", time.Hour, 100)
	defer cache.Clear()

	key := CacheKey{Model: "goals", Method: "predict", Row: []float64{1, 2}}

	_, found := cache.GetValue(key)
	assert.False(t, found)

	cache.SetValue(key, 12.5)
	value, found := cache.GetValue(key)
	require.True(t, found)
	assert.Equal(t, 12.5, value)

	probaKey := CacheKey{Model: "match", Method: "predict_proba", Row: []float64{1, 2}}
	cache.SetProba(probaKey, []float64{0.5, 0.2, 0.3})
	proba, found := cache.GetProba(probaKey)
	require.True(t, found)
	assert.Equal(t, []float64{0.5, 0.2, 0.3}, proba)

	// Returned slices are copies
	proba[0] = 99
	again, _ := cache.GetProba(probaKey)
	assert.Equal(t, 0.5, again[0])
}

// TestPredictionCacheExpiration tests cache TTL expiration
func TestPredictionCacheExpiration(t *testing.T) {
	cache := NewPredictionCache("test_expiration", 100*time.Millisecond, 100)
	defer cache.Clear()

	key := CacheKey{Model: "points", Method: "predict", Row: []float64{62, 96, 34}}
	cache.SetValue(key, 90)

	_, found := cache.GetValue(key)
	require.True(t, found)

	time.Sleep(150 * time.Millisecond)

	_, found = cache.GetValue(key)
	assert.False(t, found)
}

// TestPredictionCacheStats tests cache statistics tracking
func TestPredictionCacheStats(t *testing.T) {
	cache := NewPredictionCache("test_stats", time.Hour, 100)
	defer cache.Clear()

	key := CacheKey{Model: "goals", Method: "predict", Row: []float64{1}}

	hits, misses, ratio := cache.Stats()
	assert.Equal(t, uint64(0), hits)
	assert.Equal(t, uint64(0), misses)
	assert.Equal(t, 0.0, ratio)

	_, _ = cache.GetValue(key)
	hits, misses, ratio = cache.Stats()
	assert.Equal(t, uint64(0), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 0.0, ratio)

	cache.SetValue(key, 3)
	_, _ = cache.GetValue(key)
	hits, misses, ratio = cache.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 0.5, ratio)
}

// TestPredictionCacheMaxSize tests cache size limit enforcement
func TestPredictionCacheMaxSize(t *testing.T) {
	maxSize := 5
	cache := NewPredictionCache("test_max_size", time.Hour, maxSize)
	defer cache.Clear()

	for i := 0; i < maxSize+5; i++ {
		cache.SetValue(CacheKey{Model: "goals", Method: "predict", Row: []float64{float64(i)}}, float64(i))
	}

	assert.Equal(t, maxSize, cache.ItemCount())
}
