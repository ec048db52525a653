package explain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_SetThenGetHits(t *testing.T) {
	c := NewCache(10, time.Hour)
	c.Set(1, "abc", "explanation one")

	got, ok := c.Get(1, "abc")
	assert.True(t, ok)
	assert.Equal(t, "explanation one", got)
	assert.Equal(t, int64(1), c.Hits)
	assert.Equal(t, int64(0), c.Misses)
}

func TestCache_MissIncrementsCounter(t *testing.T) {
	c := NewCache(10, time.Hour)
	_, ok := c.Get(1, "abc")
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Misses)
}

func TestCache_ExpiredEntryCountsAsMiss(t *testing.T) {
	c := NewCache(10, -time.Second)
	c.Set(1, "abc", "stale")

	_, ok := c.Get(1, "abc")
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Misses)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2, time.Hour)
	c.Set(1, "a", "one")
	c.Set(2, "b", "two")
	c.Set(3, "c", "three") // evicts 1 (least recently used)

	_, ok := c.Get(1, "a")
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Evictions)

	_, ok = c.Get(2, "b")
	assert.True(t, ok)
	_, ok = c.Get(3, "c")
	assert.True(t, ok)
}

func TestCache_GetRefreshesRecency(t *testing.T) {
	c := NewCache(2, time.Hour)
	c.Set(1, "a", "one")
	c.Set(2, "b", "two")
	c.Get(1, "a") // 1 is now most-recently-used
	c.Set(3, "c", "three") // evicts 2, not 1

	_, ok := c.Get(1, "a")
	assert.True(t, ok)
	_, ok = c.Get(2, "b")
	assert.False(t, ok)
}

func TestNormalizeQuery_IgnoresCaseOrderAndPunctuation(t *testing.T) {
	a := NormalizeQuery("AI Fintech, Series B!")
	b := NormalizeQuery("series b ai fintech")
	assert.Equal(t, a, b)
}

func TestNormalizeQuery_DifferentQueriesDifferentDigest(t *testing.T) {
	a := NormalizeQuery("ai fintech")
	b := NormalizeQuery("healthcare robotics")
	assert.NotEqual(t, a, b)
}
