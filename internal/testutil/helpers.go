package testutil

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/snonux/wordflash/internal/models"
	"codeberg.org/snonux/wordflash/internal/store"
)

// CreateTestDirectory creates a temporary data directory for testing
func CreateTestDirectory(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()
	for _, dir := range []string{"exports", "wordbanks"} {
		path := filepath.Join(tempDir, dir)
		if err := os.MkdirAll(path, 0755); err != nil {
			t.Fatalf("Failed to create test directory %s: %v", path, err)
		}
	}
	return tempDir
}

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}

// NewTestPNG renders a size x size gradient that passes image validation
func NewTestPNG(t *testing.T, size int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 5), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test png: %v", err)
	}
	return buf.Bytes()
}

// OpenTestStores opens an in-memory shared pool and personal store for userID
func OpenTestStores(t *testing.T, userID string) (*store.SharedPool, *store.PersonalStore) {
	t.Helper()

	pool, err := store.OpenSharedPool(":memory:", nil)
	if err != nil {
		t.Fatalf("Failed to open shared pool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	personal := OpenTestPersonal(t, userID)
	return pool, personal
}

// OpenTestPersonal opens an additional in-memory personal store
func OpenTestPersonal(t *testing.T, userID string) *store.PersonalStore {
	t.Helper()

	personal, err := store.OpenPersonalStore(":memory:", userID, nil)
	if err != nil {
		t.Fatalf("Failed to open personal store: %v", err)
	}
	t.Cleanup(func() { personal.Close() })
	return personal
}

// SeedWords adds words to a personal store and fails the test on error
func SeedWords(t *testing.T, s *store.PersonalStore, words ...string) {
	t.Helper()
	for _, w := range words {
		if _, err := s.AddRef(context.Background(), models.Word{Word: w}); err != nil {
			t.Fatalf("Failed to seed word %s: %v", w, err)
		}
	}
}

// CaptureOutput captures stdout/stderr during test execution
func CaptureOutput(t *testing.T, f func()) (stdout, stderr string) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()

	os.Stdout = wOut
	os.Stderr = wErr

	outCh := make(chan string)
	errCh := make(chan string)
	go func() { b, _ := io.ReadAll(rOut); outCh <- string(b) }()
	go func() { b, _ := io.ReadAll(rErr); errCh <- string(b) }()

	defer func() {
		os.Stdout = oldStdout
		os.Stderr = oldStderr
	}()

	f()

	wOut.Close()
	wErr.Close()
	return <-outCh, <-errCh
}
