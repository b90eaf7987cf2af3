package internal

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// NormalizeWord produces the shared pool key for a word: trimmed and lowercased
func NormalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// NowMillis returns the current time as epoch milliseconds
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// ShortHash returns the first n hex characters of the MD5 of s
func ShortHash(s string, n int) string {
	hash := md5.Sum([]byte(s))
	hashStr := hex.EncodeToString(hash[:])
	if n > len(hashStr) {
		n = len(hashStr)
	}
	return hashStr[:n]
}

// ErrorMarker builds the transient image marker that flags a word for regeneration
// Format: ERROR:<word>:<epochMillis>
func ErrorMarker(word string) string {
	return fmt.Sprintf("ERROR:%s:%d", NormalizeWord(word), NowMillis())
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isAlphaNumeric(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// isAlphaNumeric checks if a rune is an ASCII letter or digit
func isAlphaNumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
