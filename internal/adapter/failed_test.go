package adapter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"codeberg.org/snonux/wordflash/internal/image"
)

func TestIsFailedImage(t *testing.T) {
	longPayload := "data:image/png;base64," + strings.Repeat("QUJD", 40)

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"empty", "", false},
		{"error marker", "ERROR:dog:123456", true},
		{"blob reference", "blob:http://localhost/abc", true},
		{"short payload", "data:image/png;base64,AAAA", true},
		{"valid payload", longPayload, false},
		{"pending marker in header", "data:image/png;AI_PENDING;base64," + strings.Repeat("A", 120), true},
		{"marker words inside base64 are ignored", "data:image/png;base64," + strings.Repeat("error", 30), false},
		{"fallback icon", image.FallbackIcon("apple"), false},
		{"short remote url", "https://cdn.example.com/a.png", false},
		{"remote url with failure word", "https://cdn.example.com/failed.png", true},
		{"remote url with black", "https://cdn.example.com/black-screen.png", true},
		{"remote url with failure word in directory", "https://cdn.example.com/errors/cat.png", false},
		{"remote blackboard", "https://cdn.example.com/img/blackboard.png", false},
		{"remote screenshot", "https://cdn.example.com/img/screenshot.jpg", false},
		{"remote url with query", "https://cdn.example.com/cat.png?retry=1", false},
		{"remote url with uppercase marker", "https://cdn.example.com/Cat_FAILED.png", true},
		{"remote url with chinese marker", "https://cdn.example.com/猫_生成中.png", true},
		{"remote pending placeholder", "https://cdn.example.com/AI_PENDING/cat.png", true},
		{"chinese retry marker", "重试中", true},
		{"generating marker", strings.Repeat("x", 120) + "生成中", true},
		{"short relative path", "/img/cat.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFailedImage(tt.url))
		})
	}
}
