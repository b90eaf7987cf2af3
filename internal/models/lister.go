package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Lister lists the OpenAI models usable for images and translations
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister. An empty baseURL uses the public API.
func NewLister(apiKey, baseURL string) *Lister {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(config),
	}
}

// ModelGroups holds model ids by use
type ModelGroups struct {
	Image []string
	Chat  []string
}

// GroupModels sorts model ids into image and chat models. Other models
// are dropped.
func GroupModels(ids []string) ModelGroups {
	groups := ModelGroups{Image: []string{}, Chat: []string{}}
	for _, id := range ids {
		switch {
		case strings.Contains(id, "dall-e") || strings.Contains(id, "gpt-image"):
			groups.Image = append(groups.Image, id)
		case strings.Contains(id, "tts") || strings.Contains(id, "audio") ||
			strings.Contains(id, "realtime") || strings.Contains(id, "transcribe"):
			// speech models cannot translate words
		case strings.Contains(id, "gpt") || strings.Contains(id, "chat"):
			groups.Chat = append(groups.Chat, id)
		}
	}
	sort.Strings(groups.Image)
	sort.Strings(groups.Chat)
	return groups
}

// ListAvailableModels writes the image and chat models of the account to w
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer) error {
	if l.apiKey == "" {
		return fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .wordflash.yaml")
	}

	list, err := l.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}
	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	groups := GroupModels(ids)

	fmt.Fprintln(w, "Available OpenAI Models:")
	fmt.Fprintln(w, "\nImage Generation Models:")
	if len(groups.Image) == 0 {
		fmt.Fprintln(w, "  No image models found")
	}
	for _, model := range groups.Image {
		fmt.Fprintf(w, "  %s\n", model)
	}

	fmt.Fprintln(w, "\nChat/Translation Models:")
	if len(groups.Chat) == 0 {
		fmt.Fprintln(w, "  No chat models found")
	}
	for _, model := range groups.Chat {
		fmt.Fprintf(w, "  %s\n", model)
	}
	return nil
}
