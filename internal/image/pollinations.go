package image

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/wordflash/internal/logging"
)

const pollinationsName = "pollinations"

// PollinationsClient generates images through a Pollinations-style
// GET endpoint: <endpoint>/prompt/<prompt>?width=..&height=..&seed=..
type PollinationsClient struct {
	cfg        *Config
	httpClient *http.Client
	validator  Validator
	breaker    *gobreaker.CircuitBreaker
	stats      *Stats
	log        logging.Logger
}

// Option customizes a generator
type Option func(*options)

type options struct {
	httpClient *http.Client
	validator  Validator
	stats      *Stats
	log        logging.Logger
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithValidator replaces the default size, type and pixel checks
func WithValidator(v Validator) Option {
	return func(o *options) { o.validator = v }
}

// WithStats records outcomes into s
func WithStats(s *Stats) Option {
	return func(o *options) { o.stats = s }
}

// WithLogger sets the logger
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(cfg *Config, opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if o.validator == nil {
		o.validator = DefaultValidator(cfg)
	}
	if o.stats == nil {
		o.stats = NewStats()
	}
	if o.log == nil {
		o.log = logging.NewNop()
	}
	return o
}

// NewPollinationsClient creates a client; a nil cfg uses DefaultConfig
func NewPollinationsClient(cfg *Config, opts ...Option) *PollinationsClient {
	cfg = cfg.withDefaults()
	o := buildOptions(cfg, opts)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        pollinationsName,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// bad image bytes mean the endpoint is up
		IsSuccessful: func(err error) bool {
			var ne *NetworkError
			return err == nil || !errors.As(err, &ne)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			o.log.Warn(context.Background(), "image endpoint breaker changed state", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &PollinationsClient{
		cfg:        cfg,
		httpClient: o.httpClient,
		validator:  o.validator,
		breaker:    breaker,
		stats:      o.stats,
		log:        o.log.With("provider", pollinationsName),
	}
}

// Name returns the provider name
func (c *PollinationsClient) Name() string {
	return pollinationsName
}

// Stats returns the client's counters
func (c *PollinationsClient) Stats() *Stats {
	return c.stats
}

// BuildURL returns the request URL for word
func (c *PollinationsClient) BuildURL(word string) string {
	prompt := BuildPrompt(word)
	params := url.Values{}
	params.Set("width", strconv.Itoa(c.cfg.Width))
	params.Set("height", strconv.Itoa(c.cfg.Height))
	params.Set("model", c.cfg.Model)
	params.Set("nologo", "true")
	params.Set("enhance", "true")
	params.Set("seed", strconv.Itoa(int(Seed(strings.ToLower(strings.TrimSpace(word))))))
	return strings.TrimRight(c.cfg.Endpoint, "/") + "/prompt/" + url.PathEscape(prompt) + "?" + params.Encode()
}

// Generate returns an embedded image for word, or the fallback icon when
// every attempt fails
func (c *PollinationsClient) Generate(ctx context.Context, word string) (*Result, error) {
	prompt := BuildPrompt(word)
	reqURL := c.BuildURL(word)

	return generateWithRetry(ctx, c.cfg, c.stats, c.log, word, prompt, func(ctx context.Context) (string, error) {
		out, err := c.breaker.Execute(func() (interface{}, error) {
			data, err := c.fetch(ctx, reqURL)
			if err != nil {
				return nil, err
			}
			if err := c.validator.Validate(data); err != nil {
				return nil, tagProvider(err, pollinationsName)
			}
			return data, nil
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", &NetworkError{Provider: pollinationsName, Message: "circuit open", Err: err}
		}
		if err != nil {
			return "", err
		}

		data := out.([]byte)
		mime, err := DetectMIME(data)
		if err != nil {
			return "", tagProvider(err, pollinationsName)
		}
		return DataURL(mime, data), nil
	})
}

func (c *PollinationsClient) fetch(ctx context.Context, reqURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &NetworkError{Provider: pollinationsName, Message: "invalid request", Err: err}
	}
	req.Header.Set("Accept", "image/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Provider: pollinationsName, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &NetworkError{
			Provider:   pollinationsName,
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	// one extra byte tells an exact-size payload from an oversized one
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxSizeBytes+1))
	if err != nil {
		return nil, &NetworkError{Provider: pollinationsName, Message: "failed to read body", Err: err}
	}
	if len(data) == 0 {
		return nil, &EmptyResponseError{Provider: pollinationsName}
	}
	if int64(len(data)) > c.cfg.MaxSizeBytes {
		return nil, &ValidationError{
			Provider: pollinationsName,
			Code:     "TOO_LARGE",
			Message:  fmt.Sprintf("image exceeds maximum size of %d bytes", c.cfg.MaxSizeBytes),
		}
	}
	return data, nil
}
