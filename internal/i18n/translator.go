package i18n

import (
	"strconv"

	"go.uber.org/zap"
)

// Translator resolves UI strings
type Translator struct {
	cache  *Cache[string]
	logger *zap.Logger
}

// NewTranslator wraps a string bundle cache
func NewTranslator(cache *Cache[string], logger *zap.Logger) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{cache: cache, logger: logger}
}

// T returns the value of key in lang, then in English, then the key itself
func (t *Translator) T(lang, key string) string {
	bundle := t.cache.Get(lang)
	if v, ok := bundle[key]; ok {
		return v
	}
	if lang == FallbackLang {
		return key
	}
	t.logger.Debug("Missing translation, falling back to English",
		zap.String("lang", lang),
		zap.String("key", key),
	)
	return Lookup(bundle, t.cache.Get(FallbackLang), key)
}

// Effective returns every key known in English or lang with the value T would return
func (t *Translator) Effective(lang string) map[string]string {
	return merge(t.cache.Get(FallbackLang), t.cache.Get(lang))
}

// Cache exposes the underlying bundle cache
func (t *Translator) Cache() *Cache[string] {
	return t.cache
}

// Condition is the label pair shown for a weather code
type Condition struct {
	Label     string `json:"label" yaml:"label"`
	Condition string `json:"condition" yaml:"condition"`
}

// UnknownCondition is returned for codes missing from every bundle
var UnknownCondition = Condition{Label: "Unknown", Condition: "Unknown conditions"}

// Conditions resolves weather codes to localized labels
type Conditions struct {
	cache *Cache[Condition]
}

// NewConditions wraps a condition bundle cache
func NewConditions(cache *Cache[Condition]) *Conditions {
	return &Conditions{cache: cache}
}

// Describe returns the condition for code in lang, then in English, then UnknownCondition
func (c *Conditions) Describe(lang string, code int) Condition {
	key := strconv.Itoa(code)
	var fallback map[string]Condition
	if lang != FallbackLang {
		fallback = c.cache.Get(FallbackLang)
	}
	if v, ok := Resolve(c.cache.Get(lang), fallback, key); ok {
		return v
	}
	return UnknownCondition
}

// Effective returns every known code with the condition Describe would return
func (c *Conditions) Effective(lang string) map[string]Condition {
	return merge(c.cache.Get(FallbackLang), c.cache.Get(lang))
}

// Cache exposes the underlying bundle cache
func (c *Conditions) Cache() *Cache[Condition] {
	return c.cache
}

func merge[V any](base, overlay map[string]V) map[string]V {
	out := make(map[string]V, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
