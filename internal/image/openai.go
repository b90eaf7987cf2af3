package image

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/wordflash/internal/logging"
)

const openAIName = "openai"

// ErrNoAPIKey is returned by attempts made without credentials
var ErrNoAPIKey = errors.New("openai: API key not configured")

// OpenAIConfig configures the DALL-E backend
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string // empty uses the public API
	Model       string // dall-e-2 or dall-e-3
	Size        string // e.g. 256x256
	EnableCache bool
	CacheDir    string
}

// OpenAIClient generates images with the OpenAI images API
type OpenAIClient struct {
	client    *openai.Client
	cfg       *Config
	apiKey    string
	model     string
	size      string
	cacheDir  string
	validator Validator
	stats     *Stats
	log       logging.Logger
}

// NewOpenAIClient creates a client. A missing API key is not an error here;
// Generate then falls back to the icon immediately.
func NewOpenAIClient(oc *OpenAIConfig, cfg *Config, opts ...Option) *OpenAIClient {
	if oc == nil {
		oc = &OpenAIConfig{}
	}
	cfg = cfg.withDefaults()
	o := buildOptions(cfg, opts)

	model := oc.Model
	if model == "" {
		model = openai.CreateImageModelDallE2
	}
	size := oc.Size
	if size == "" {
		size = openai.CreateImageSize256x256
	}

	c := &OpenAIClient{
		cfg:       cfg,
		apiKey:    oc.APIKey,
		model:     model,
		size:      size,
		validator: o.validator,
		stats:     o.stats,
		log:       o.log.With("provider", openAIName),
	}
	if oc.EnableCache {
		c.cacheDir = oc.CacheDir
		if c.cacheDir == "" {
			c.cacheDir = "./.wordflash_cache"
		}
	}
	if oc.APIKey != "" {
		clientCfg := openai.DefaultConfig(oc.APIKey)
		if oc.BaseURL != "" {
			clientCfg.BaseURL = oc.BaseURL
		}
		clientCfg.HTTPClient = o.httpClient
		c.client = openai.NewClientWithConfig(clientCfg)
	}
	return c
}

// Name returns the provider name
func (c *OpenAIClient) Name() string {
	return openAIName
}

// Stats returns the client's counters
func (c *OpenAIClient) Stats() *Stats {
	return c.stats
}

// Generate returns an embedded PNG for word, or the fallback icon
func (c *OpenAIClient) Generate(ctx context.Context, word string) (*Result, error) {
	prompt := BuildPrompt(word)

	if c.cacheDir != "" {
		if data, err := os.ReadFile(c.getCacheFilePath(word)); err == nil {
			if c.validator.Validate(data) == nil {
				if mime, err := DetectMIME(data); err == nil {
					c.log.Debug(ctx, "image cache hit", "word", word)
					c.stats.recordAI()
					return &Result{URL: DataURL(mime, data), Prompt: prompt, Source: SourceAI}, nil
				}
			}
		}
	}

	return generateWithRetry(ctx, c.cfg, c.stats, c.log, word, prompt, func(ctx context.Context) (string, error) {
		data, err := c.create(ctx, prompt)
		if err != nil {
			return "", err
		}
		if err := c.validator.Validate(data); err != nil {
			return "", tagProvider(err, openAIName)
		}
		mime, err := DetectMIME(data)
		if err != nil {
			return "", tagProvider(err, openAIName)
		}
		c.saveToCache(ctx, word, data)
		return DataURL(mime, data), nil
	})
}

func (c *OpenAIClient) create(ctx context.Context, prompt string) ([]byte, error) {
	if c.client == nil {
		return nil, ErrNoAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          c.model,
		N:              1,
		Size:           c.size,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		ne := &NetworkError{Provider: openAIName, Message: "image request failed", Err: err}
		var (
			apiErr *openai.APIError
			reqErr *openai.RequestError
		)
		switch {
		case errors.As(err, &apiErr):
			ne.StatusCode = apiErr.HTTPStatusCode
			ne.Message = apiErr.Message
		case errors.As(err, &reqErr):
			ne.StatusCode = reqErr.HTTPStatusCode
		}
		return nil, ne
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, &EmptyResponseError{Provider: openAIName}
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, &ValidationError{Provider: openAIName, Code: "UNDECODABLE", Message: err.Error()}
	}
	return data, nil
}

func (c *OpenAIClient) getCacheFilePath(word string) string {
	key := fmt.Sprintf("%s|%s|%s", c.model, c.size, word)
	return filepath.Join(c.cacheDir, fmt.Sprintf("%x.png", md5.Sum([]byte(key))))
}

func (c *OpenAIClient) saveToCache(ctx context.Context, word string, data []byte) {
	if c.cacheDir == "" {
		return
	}
	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		c.log.Warn(ctx, "failed to create image cache", "error", err)
		return
	}
	if err := os.WriteFile(c.getCacheFilePath(word), data, 0644); err != nil {
		c.log.Warn(ctx, "failed to write image cache", "error", err)
	}
}
