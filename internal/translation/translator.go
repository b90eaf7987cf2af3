package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ErrNoTranslation is returned when a backend has no translation for a word
var ErrNoTranslation = errors.New("no translation available")

// Translator translates an English word
type Translator interface {
	TranslateWord(ctx context.Context, word string) (string, error)
	Name() string
}

// OpenAITranslator translates with a chat completion model
type OpenAITranslator struct {
	apiKey string
	model  string
	client *openai.Client
}

// OpenAIConfig configures the OpenAI translator
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // empty uses the public API
	Model   string // defaults to gpt-4o-mini
}

// NewOpenAITranslator creates a new translator instance
func NewOpenAITranslator(cfg OpenAIConfig) *OpenAITranslator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAITranslator{
		apiKey: cfg.APIKey,
		model:  model,
		client: openai.NewClientWithConfig(clientCfg),
	}
}

// Name returns the backend name
func (t *OpenAITranslator) Name() string {
	return "openai"
}

// TranslateWord translates an English word to Simplified Chinese
func (t *OpenAITranslator) TranslateWord(ctx context.Context, word string) (string, error) {
	if t.apiKey == "" {
		return "", fmt.Errorf("OpenAI API key not found")
	}

	req := openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Translate the English word '%s' to Simplified Chinese for a young child's flashcard. "+
					"Respond with only the most common translation, nothing else.", word),
			},
		},
		MaxTokens:   50,
		Temperature: 0.3,
	}

	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no translation returned")
	}

	translation := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translation == "" {
		return "", ErrNoTranslation
	}
	return translation, nil
}

// Chain tries each translator in order. A backend answering
// ErrNoTranslation hands over to the next one; any other error stops.
type Chain []Translator

// Name lists the chained backends
func (c Chain) Name() string {
	names := make([]string, 0, len(c))
	for _, t := range c {
		names = append(names, t.Name())
	}
	return strings.Join(names, "+")
}

// TranslateWord returns the first translation found
func (c Chain) TranslateWord(ctx context.Context, word string) (string, error) {
	for _, t := range c {
		tr, err := t.TranslateWord(ctx, word)
		if err == nil {
			return tr, nil
		}
		if !errors.Is(err, ErrNoTranslation) {
			return "", fmt.Errorf("%s: %w", t.Name(), err)
		}
	}
	return "", ErrNoTranslation
}
