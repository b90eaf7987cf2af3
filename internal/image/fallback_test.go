package image

import (
	"encoding/base64"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackIcon(t *testing.T) {
	assert.Equal(t, "🍎", IconFor(" Apple "))
	assert.Equal(t, genericIcon, IconFor("zyzzyva"))

	url := FallbackIcon("apple")
	require.True(t, IsFallbackIcon(url))
	assert.True(t, IsDataURL(url))
	assert.Greater(t, len(url), 100, "icons must not look like truncated payloads")

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/svg+xml;base64,"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "🍎")
	assert.Equal(t, FallbackSVG("apple"), string(raw))

	assert.False(t, IsFallbackIcon("data:image/png;base64,AAAA"))
}

func TestStatsConcurrent(t *testing.T) {
	s := NewStats()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RecordPoolHit()
			s.recordRetry()
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, 50, snap.FromPool)
	assert.Equal(t, 50, snap.Total)
	assert.Equal(t, 50, snap.Retries)

	s.Reset()
	assert.Equal(t, StatsSnapshot{}, s.Snapshot())

	var nilStats *Stats
	nilStats.RecordPoolHit()
	assert.Equal(t, StatsSnapshot{}, nilStats.Snapshot())
}

func TestParseDataURL(t *testing.T) {
	mime, data, err := ParseDataURL(DataURL("image/png", []byte{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, []byte{1, 2, 3}, data)

	mime, data, err = ParseDataURL("data:text/plain,hello")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mime)
	assert.Equal(t, "hello", string(data))

	_, _, err = ParseDataURL("https://example.com/cat.png")
	assert.Error(t, err)
	_, _, err = ParseDataURL("data:image/png;base64,@@@")
	assert.Error(t, err)
}
