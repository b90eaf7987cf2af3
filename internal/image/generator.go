package image

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
)

// Source tells where an image came from
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
	SourcePool     Source = "pool"
)

// Result is a generated image
type Result struct {
	URL    string // data URL or remote URL
	Prompt string
	Source Source
}

// Generator produces an image for a word. Implementations absorb remote
// failures and return a fallback Result; an error is returned only when
// ctx is cancelled.
type Generator interface {
	Generate(ctx context.Context, word string) (*Result, error)
	Name() string
}

// DataURL embeds image bytes as a data URL
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsDataURL reports whether s is an embedded payload
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// ParseDataURL splits a base64 data URL into its media type and payload
func ParseDataURL(s string) (string, []byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !IsDataURL(s) || !ok {
		return "", nil, errors.New("not a data URL")
	}
	mime, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return mime, []byte(payload), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, err
	}
	return mime, data, nil
}

// IconGenerator never contacts a backend and always returns the fallback icon
type IconGenerator struct {
	stats *Stats
}

// NewIconGenerator creates an offline generator
func NewIconGenerator(stats *Stats) *IconGenerator {
	return &IconGenerator{stats: stats}
}

// Name returns the provider name
func (g *IconGenerator) Name() string {
	return "none"
}

// Generate returns the fallback icon for word
func (g *IconGenerator) Generate(ctx context.Context, word string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.stats.recordFallback()
	return &Result{URL: FallbackIcon(word), Prompt: BuildPrompt(word), Source: SourceFallback}, nil
}
