package noise

import (
	"fmt"
	"math"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// MaxPrecision bounds the rounding precision so quantized steps fit in int64
// for any coordinate a session can plausibly reach.
const MaxPrecision = 6

// Key is a coordinate rounded to a fixed number of decimal places, stored as
// integer steps so equal keys compare exactly.
type Key struct {
	X, Y, Z int64
}

// CacheStats is a snapshot of cache effectiveness.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Len       int
	Capacity  int
}

// HitRatio returns hits / lookups, or 0 before the first lookup.
func (s CacheStats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache memoizes a Sampler by quantized coordinate with LRU eviction.
// Distinct coordinates sharing a Key share one value.
type Cache struct {
	sampler  Sampler
	lru      *simplelru.LRU[Key, float64]
	capacity int
	scale    float64

	hits      uint64
	misses    uint64
	evictions uint64
}

func NewCache(s Sampler, capacity, precision int) (*Cache, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	if precision < 0 || precision > MaxPrecision {
		return nil, fmt.Errorf("%w: %d (want 0..%d)", ErrInvalidPrecision, precision, MaxPrecision)
	}

	c := &Cache{
		sampler:  s,
		capacity: capacity,
		scale:    math.Pow10(precision),
	}
	lru, err := simplelru.NewLRU[Key, float64](capacity, c.onEvict)
	if err != nil {
		return nil, err
	}
	c.lru = lru
	return c, nil
}

func (c *Cache) onEvict(Key, float64) {
	c.evictions++
}

// Quantize rounds each axis independently, half away from zero.
func (c *Cache) Quantize(p Coord) Key {
	return Key{
		X: int64(math.Round(p.X * c.scale)),
		Y: int64(math.Round(p.Y * c.scale)),
		Z: int64(math.Round(p.Z * c.scale)),
	}
}

// GetOrCompute returns the cached value for p's key, sampling and storing
// it on a miss. Either way the key becomes most recently used.
func (c *Cache) GetOrCompute(p Coord) float64 {
	key := c.Quantize(p)
	if v, ok := c.lru.Get(key); ok {
		c.hits++
		return v
	}

	c.misses++
	v := c.sampler.Sample(p)
	c.lru.Add(key, v)
	return v
}

// Contains reports whether p's key is cached without touching recency.
func (c *Cache) Contains(p Coord) bool {
	return c.lru.Contains(c.Quantize(p))
}

func (c *Cache) Len() int { return c.lru.Len() }

func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Len:       c.lru.Len(),
		Capacity:  c.capacity,
	}
}
