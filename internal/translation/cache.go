package translation

import (
	"context"
	"sync"

	"codeberg.org/snonux/wordflash/internal"
)

// TranslationCache stores translations in memory for batch operations
type TranslationCache struct {
	mu           sync.RWMutex
	translations map[string]string
}

// NewTranslationCache creates a new translation cache
func NewTranslationCache() *TranslationCache {
	return &TranslationCache{
		translations: make(map[string]string),
	}
}

// Add adds a translation to the cache
func (tc *TranslationCache) Add(word, translation string) {
	tc.mu.Lock()
	tc.translations[internal.NormalizeWord(word)] = translation
	tc.mu.Unlock()
}

// Get retrieves a translation from the cache
func (tc *TranslationCache) Get(word string) (string, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	translation, ok := tc.translations[internal.NormalizeWord(word)]
	return translation, ok
}

// GetAll returns all cached translations
func (tc *TranslationCache) GetAll() map[string]string {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	// Return a copy to prevent external modification
	result := make(map[string]string, len(tc.translations))
	for k, v := range tc.translations {
		result[k] = v
	}
	return result
}

// CachedTranslator remembers successful translations of the wrapped backend
type CachedTranslator struct {
	next  Translator
	cache *TranslationCache
}

// NewCachedTranslator wraps next with an in-memory cache
func NewCachedTranslator(next Translator) *CachedTranslator {
	return &CachedTranslator{next: next, cache: NewTranslationCache()}
}

// Name returns the wrapped backend name
func (c *CachedTranslator) Name() string {
	return c.next.Name()
}

// Cache exposes the underlying cache
func (c *CachedTranslator) Cache() *TranslationCache {
	return c.cache
}

// TranslateWord serves repeated words from memory
func (c *CachedTranslator) TranslateWord(ctx context.Context, word string) (string, error) {
	if tr, ok := c.cache.Get(word); ok {
		return tr, nil
	}
	tr, err := c.next.TranslateWord(ctx, word)
	if err != nil {
		return "", err
	}
	c.cache.Add(word, tr)
	return tr, nil
}
