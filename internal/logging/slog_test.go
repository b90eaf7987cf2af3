package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TextLevels(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "debug", "text")
	require.NoError(t, err)

	ctx := context.Background()
	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()
	for _, want := range []string{"level=DEBUG", "level=INFO", "level=WARN", "level=ERROR", "a=1", "d=4"} {
		assert.Contains(t, out, want)
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "warn", "text")
	require.NoError(t, err)

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "info", "json")
	require.NoError(t, err)

	log.Info(context.Background(), "word added", "word", "apple")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
	assert.Contains(t, buf.String(), `"word":"apple"`)
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "loud", "text")
	assert.Error(t, err)

	_, err = New(&bytes.Buffer{}, "info", "xml")
	assert.Error(t, err)
}

func TestWith_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "info", "text")
	require.NoError(t, err)

	child := log.With("component", "pool")
	child.Info(context.Background(), "hit", "word", "cat")

	assert.Contains(t, buf.String(), "component=pool")
	assert.Contains(t, buf.String(), "word=cat")
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.Info(context.Background(), "ignored")
	assert.NotNil(t, log.With("k", "v"))
}
