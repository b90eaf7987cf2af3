package testutil

import (
	"context"
	"fmt"
	"sync"

	"codeberg.org/snonux/wordflash/internal/image"
)

// MockGenerator mocks an image generator
type MockGenerator struct {
	mu sync.Mutex

	URLs     map[string]string // word -> image URL
	Errors   map[string]error  // word -> error
	Fallback bool              // answer with the fallback icon when no URL is set
	Calls    []string
}

// NewMockGenerator creates a generator answering with deterministic data URLs
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{URLs: map[string]string{}, Errors: map[string]error{}}
}

// Name returns the mock provider name
func (m *MockGenerator) Name() string {
	return "mock"
}

// Generate mocks image generation
func (m *MockGenerator) Generate(ctx context.Context, word string) (*image.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, word)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Errors[word]; ok {
		return nil, err
	}
	prompt := image.BuildPrompt(word)
	if url, ok := m.URLs[word]; ok {
		return &image.Result{URL: url, Prompt: prompt, Source: image.SourceAI}, nil
	}
	if m.Fallback {
		return &image.Result{URL: image.FallbackIcon(word), Prompt: prompt, Source: image.SourceFallback}, nil
	}
	return &image.Result{URL: MockImageURL(word), Prompt: prompt, Source: image.SourceAI}, nil
}

// CallCount returns how often word was generated
func (m *MockGenerator) CallCount(word string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == word {
			n++
		}
	}
	return n
}

// MockImageURL is the default payload of MockGenerator. It is long enough
// to pass the truncated-payload heuristics.
func MockImageURL(word string) string {
	return fmt.Sprintf("data:image/png;base64,%s%0120d", "bW9jay1pbWFnZS0", len(word))
}

// MockTranslator mocks translation service
type MockTranslator struct {
	mu sync.Mutex

	Translations map[string]string
	Errors       map[string]error
	Missing      error // returned for unknown words
	Calls        []string
}

// Name returns the mock backend name
func (m *MockTranslator) Name() string {
	return "mock"
}

// TranslateWord mocks translation
func (m *MockTranslator) TranslateWord(ctx context.Context, word string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, word)

	if err, ok := m.Errors[word]; ok {
		return "", err
	}
	if tr, ok := m.Translations[word]; ok {
		return tr, nil
	}
	if m.Missing != nil {
		return "", m.Missing
	}
	return "", fmt.Errorf("no translation for %s", word)
}
