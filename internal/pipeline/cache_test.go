package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelCacheRoundTrip(t *testing.T) {
	cache := NewModelCache(time.Minute)

	_, ok := cache.Get()
	assert.False(t, ok, "fresh cache starts empty")

	m := &Model{}
	cache.Put(m)

	got, ok := cache.Get()
	require.True(t, ok)
	assert.Same(t, m, got)
}

func TestModelCacheInvalidate(t *testing.T) {
	cache := NewModelCache(time.Minute)
	cache.Put(&Model{})
	cache.Invalidate()

	_, ok := cache.Get()
	assert.False(t, ok)
}

func TestModelCacheExpires(t *testing.T) {
	cache := NewModelCache(10 * time.Millisecond)
	cache.Put(&Model{})

	time.Sleep(30 * time.Millisecond)

	_, ok := cache.Get()
	assert.False(t, ok, "entries expire after the TTL")
}
