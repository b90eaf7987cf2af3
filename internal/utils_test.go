package internal

import (
	"strings"
	"testing"
)

func TestNormalizeWord(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Apple", "apple"},
		{"  CAT ", "cat"},
		{"ice cream", "ice cream"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeWord(tt.input); got != tt.want {
				t.Errorf("NormalizeWord(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestShortHash(t *testing.T) {
	a := ShortHash("apple", 8)
	b := ShortHash("apple", 8)
	if a != b {
		t.Errorf("ShortHash not stable: %s vs %s", a, b)
	}
	if len(a) != 8 {
		t.Errorf("Expected 8 characters, got %d", len(a))
	}
	if ShortHash("apple", 100) == "" {
		t.Error("Expected full hash when n exceeds length")
	}
}

func TestErrorMarker(t *testing.T) {
	marker := ErrorMarker(" Dog ")
	if !strings.HasPrefix(marker, "ERROR:dog:") {
		t.Errorf("Unexpected marker format: %s", marker)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user_abc_123", "user_abc_123"},
		{"a b/c", "a_b_c"},
		{"2024-01-01T10:00:00", "2024-01-01T10_00_00"},
	}

	for _, tt := range tests {
		if got := SanitizeFilename(tt.input); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
