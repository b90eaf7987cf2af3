package image

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollinationsClient_BuildURL(t *testing.T) {
	c := NewPollinationsClient(fastConfig("https://img.example.com/"))

	u, err := url.Parse(c.BuildURL("Cat"))
	require.NoError(t, err)
	assert.Equal(t, "img.example.com", u.Host)
	assert.True(t, strings.HasPrefix(u.Path, "/prompt/orange cat"))

	q := u.Query()
	assert.Equal(t, "256", q.Get("width"))
	assert.Equal(t, "256", q.Get("height"))
	assert.Equal(t, "flux", q.Get("model"))
	assert.Equal(t, "true", q.Get("nologo"))
	assert.NotEmpty(t, q.Get("seed"))
	assert.Equal(t, c.BuildURL("cat"), c.BuildURL(" CAT "), "seed is derived from the normalized word")
}

func TestPollinationsClient_Generate(t *testing.T) {
	png := testPNG(t, 32)
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	}))
	defer server.Close()

	stats := NewStats()
	c := NewPollinationsClient(fastConfig(server.URL), WithStats(stats))

	res, err := c.Generate(context.Background(), "apple")
	require.NoError(t, err)
	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, BuildPrompt("apple"), res.Prompt)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(png), res.URL)
	assert.Contains(t, gotPath, "a red apple")

	snap := stats.Snapshot()
	assert.Equal(t, 1, snap.AIGenerated)
	assert.Equal(t, 1, snap.Successful)
	assert.Zero(t, snap.Retries)
}

func TestPollinationsClient_FallsBackAfterRetries(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"empty body", func(w http.ResponseWriter, r *http.Request) {}},
		{"html instead of image", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(strings.Repeat("<html>queue full</html>", 20)))
		}},
		{"tiny placeholder", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte{0x89, 'P', 'N', 'G'})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				tt.handler(w, r)
			}))
			defer server.Close()

			stats := NewStats()
			c := NewPollinationsClient(fastConfig(server.URL), WithStats(stats))

			res, err := c.Generate(context.Background(), "cat")
			require.NoError(t, err)
			assert.Equal(t, SourceFallback, res.Source)
			assert.Equal(t, FallbackIcon("cat"), res.URL)
			assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

			snap := stats.Snapshot()
			assert.Equal(t, 2, snap.Retries)
			assert.Equal(t, 1, snap.SVGFallback)
			assert.Equal(t, 1, snap.Failed)
		})
	}
}

func TestPollinationsClient_RecoversOnRetry(t *testing.T) {
	png := testPNG(t, 32)
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(png)
	}))
	defer server.Close()

	c := NewPollinationsClient(fastConfig(server.URL))
	res, err := c.Generate(context.Background(), "dog")
	require.NoError(t, err)
	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, 1, c.Stats().Snapshot().Retries)
}

func TestPollinationsClient_RejectsOversizedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 2048))
	}))
	defer server.Close()

	cfg := fastConfig(server.URL)
	cfg.MaxSizeBytes = 1024
	cfg.MaxRetries = 1
	c := NewPollinationsClient(cfg)

	_, err := c.fetch(context.Background(), c.BuildURL("cat"))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "TOO_LARGE", ve.Code)
}

func TestPollinationsClient_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewPollinationsClient(fastConfig(server.URL))
	res, err := c.Generate(ctx, "cat")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestPollinationsClient_Name(t *testing.T) {
	assert.Equal(t, "pollinations", NewPollinationsClient(nil).Name())
}

func TestIconGenerator(t *testing.T) {
	stats := NewStats()
	g := NewIconGenerator(stats)
	res, err := g.Generate(context.Background(), "apple")
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, res.Source)
	assert.True(t, IsFallbackIcon(res.URL))
	assert.Equal(t, 1, stats.Snapshot().SVGFallback)
	assert.Equal(t, "none", g.Name())
}
