package translation

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslationCache(t *testing.T) {
	cache := NewTranslationCache()

	_, found := cache.Get("apple")
	assert.False(t, found, "Expected not found in empty cache")

	cache.Add("apple", "苹果")
	cache.Add("Cat", "猫")

	translation, found := cache.Get(" APPLE ")
	require.True(t, found)
	assert.Equal(t, "苹果", translation)

	cache.Add("apple", "苹果 (水果)")
	translation, _ = cache.Get("apple")
	assert.Equal(t, "苹果 (水果)", translation)
}

func TestTranslationCache_GetAll(t *testing.T) {
	cache := NewTranslationCache()
	cache.Add("apple", "苹果")
	cache.Add("cat", "猫")
	cache.Add("dog", "狗")

	all := cache.GetAll()
	expected := map[string]string{"apple": "苹果", "cat": "猫", "dog": "狗"}
	if !reflect.DeepEqual(all, expected) {
		t.Errorf("GetAll() = %v, want %v", all, expected)
	}

	// Modifying the returned map must not affect the cache
	all["apple"] = "modified"
	translation, _ := cache.Get("apple")
	assert.Equal(t, "苹果", translation)

	assert.Empty(t, NewTranslationCache().GetAll())
}

func TestCachedTranslator(t *testing.T) {
	ctx := context.Background()
	backend := &stubTranslator{name: "stub", out: "狗"}
	cached := NewCachedTranslator(backend)

	for i := 0; i < 3; i++ {
		tr, err := cached.TranslateWord(ctx, "dog")
		require.NoError(t, err)
		assert.Equal(t, "狗", tr)
	}
	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, "stub", cached.Name())

	failing := NewCachedTranslator(&stubTranslator{name: "bad", err: errors.New("down")})
	_, err := failing.TranslateWord(ctx, "dog")
	assert.Error(t, err)
	assert.Empty(t, failing.Cache().GetAll(), "errors are not cached")
}
