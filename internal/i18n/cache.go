// Package i18n loads per-language resource bundles lazily and resolves keys with an
// English fallback.
package i18n

import (
	"sort"
	"sync"

	"github.com/alexivanou/geoweather-api/internal/metrics"
	"go.uber.org/zap"
)

// FallbackLang is always attempted when a bundle or a key is missing
const FallbackLang = "en"

// Loader reads the bundle of one language
type Loader[V any] func(lang string) (map[string]V, error)

// Cache memoizes bundles per language. Only successful loads are memoized, so a failed
// language is retried on the next Get. Returned bundles are shared and must not be modified.
type Cache[V any] struct {
	domain string
	load   Loader[V]
	logger *zap.Logger

	mu      sync.RWMutex
	bundles map[string]map[string]V
}

// NewCache creates a cache for one bundle domain
func NewCache[V any](domain string, load Loader[V], logger *zap.Logger) *Cache[V] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache[V]{
		domain:  domain,
		load:    load,
		logger:  logger,
		bundles: make(map[string]map[string]V),
	}
}

// Get returns the bundle for lang, the fallback bundle if lang cannot be loaded, or an
// empty bundle if neither can. It never fails.
func (c *Cache[V]) Get(lang string) map[string]V {
	if bundle, ok := c.cached(lang); ok {
		return bundle
	}

	// Loads are not serialized: two callers may load the same language and the last
	// write wins. Bundles are static so both writes are equal.
	bundle, err := c.load(lang)
	if err != nil {
		metrics.BundleLoadsTotal.WithLabelValues(c.domain, "fail").Inc()
		c.logger.Debug("Bundle unavailable",
			zap.String("domain", c.domain),
			zap.String("lang", lang),
			zap.Error(err),
		)
		if lang != FallbackLang {
			return c.Get(FallbackLang)
		}
		return map[string]V{}
	}
	metrics.BundleLoadsTotal.WithLabelValues(c.domain, "ok").Inc()

	c.mu.Lock()
	c.bundles[lang] = bundle
	c.mu.Unlock()
	return bundle
}

// Loaded returns the languages currently memoized, sorted
func (c *Cache[V]) Loaded() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	langs := make([]string, 0, len(c.bundles))
	for lang := range c.bundles {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

func (c *Cache[V]) cached(lang string) (map[string]V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bundle, ok := c.bundles[lang]
	return bundle, ok
}

// Resolve returns bundle[key], then fallback[key]
func Resolve[V any](bundle, fallback map[string]V, key string) (V, bool) {
	if v, ok := bundle[key]; ok {
		return v, true
	}
	if v, ok := fallback[key]; ok {
		return v, true
	}
	var zero V
	return zero, false
}

// Lookup returns bundle[key], then fallback[key], then the key itself
func Lookup(bundle, fallback map[string]string, key string) string {
	if v, ok := Resolve(bundle, fallback, key); ok {
		return v
	}
	return key
}
