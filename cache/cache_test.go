package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetSetAndStats(t *testing.T) {
	c := New()

	_, ok := c.Get(Key("oi", 0))
	assert.False(t, ok)

	c.Set(Key("oi", 0), "olá!")
	v, ok := c.Get(Key("oi", 0))
	assert.True(t, ok)
	assert.Equal(t, "olá!", v)

	// same text at a different history length is a distinct key
	_, ok = c.Get(Key("oi", 2))
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 2, stats.Misses)
	assert.InDelta(t, 1.0/3.0, stats.HitRate, 1e-9)
}

func TestClearResetsCountersAndReturnsCount(t *testing.T) {
	c := New()
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Get("missing")

	assert.Equal(t, 2, c.Clear())

	stats := c.Stats()
	assert.Equal(t, 0, stats.Size)
	assert.Equal(t, 0, stats.Hits)
	assert.Equal(t, 0, stats.Misses)
	assert.Equal(t, 0.0, stats.HitRate)
}

func TestTTLExpiresOnRead(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := New(func(o *Options) {
		o.TTL = time.Minute
		o.Now = func() time.Time { return now }
	})
	c.Set("k", "v")

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats().Size)
}
