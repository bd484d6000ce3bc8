package pipeline

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/courtside/internal/neural"
	"github.com/yourusername/courtside/internal/trainer"
)

const modelCacheKey = "model"

// Model bundles the encoder, predictor and trainer into the unit the
// orchestrator loads, caches and invalidates together.
type Model struct {
	Encoder   *neural.Encoder
	Predictor *neural.Predictor
	Trainer   *trainer.Trainer
}

// ModelCache holds the assembled model behind a TTL so repeated games within
// the window skip the persistence round-trip. The orchestrator invalidates it
// after every successful update so the next read observes fresh state.
type ModelCache struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewModelCache creates a cache with the given TTL.
func NewModelCache(ttl time.Duration) *ModelCache {
	return &ModelCache{
		cache: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Get returns the cached model, if present and unexpired.
func (c *ModelCache) Get() (*Model, bool) {
	v, ok := c.cache.Get(modelCacheKey)
	if !ok {
		return nil, false
	}
	return v.(*Model), true
}

// Put stores the model for the configured TTL.
func (c *ModelCache) Put(m *Model) {
	c.cache.Set(modelCacheKey, m, c.ttl)
}

// Invalidate drops the cached model.
func (c *ModelCache) Invalidate() {
	c.cache.Delete(modelCacheKey)
}
