package providers

import "updatescan/internal/structures"

// instrumentedCache reports lookups and purges of the listing cache.
type instrumentedCache struct {
	CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *instrumentedCache) Get(key string) ([]byte, bool) {
	val, ok := c.CacheProviderInterface.Get(key)
	if !ok {
		c.metrics.IncCacheMisses()
		return nil, false
	}
	c.metrics.IncCacheHits()
	return val, true
}

func (c *instrumentedCache) Purge() {
	c.CacheProviderInterface.Purge()
	c.metrics.IncCachePurges()
}

// NewInstrumentedCacheProvider returns the listing cache with metrics attached.
// A disabled cache is returned bare so it reports no phantom misses.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if _, disabled := inner.(*noopCache); disabled {
		return inner
	}
	return &instrumentedCache{CacheProviderInterface: inner, metrics: metrics}
}
