package image

import (
	"bytes"
	goimage "image"
	"image/color"
	"image/png"
	"testing"
	"time"
)

// testPNG renders a size x size gradient that passes the pixel checks
func testPNG(t *testing.T, size int) []byte {
	t.Helper()
	img := goimage.NewRGBA(goimage.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 5), B: 128, A: 255})
		}
	}
	return encodePNG(t, img)
}

// solidPNG renders a single-colour image
func solidPNG(t *testing.T, size int, c color.Color) []byte {
	t.Helper()
	img := goimage.NewRGBA(goimage.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, c)
		}
	}
	return encodePNG(t, img)
}

func encodePNG(t *testing.T, img goimage.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func fastConfig(endpoint string) *Config {
	cfg := DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.Timeout = 2 * time.Second
	cfg.RetryDelay = time.Millisecond
	cfg.MaxRetryDelay = 5 * time.Millisecond
	return cfg
}
