package image

import (
	"context"
	"errors"
	"time"

	"codeberg.org/snonux/wordflash/internal/logging"
)

// attemptFunc performs one generation attempt and returns an image URL
type attemptFunc func(ctx context.Context) (string, error)

// generateWithRetry runs attempt up to cfg.MaxRetries times with linear
// backoff. When every attempt fails the fallback icon is returned with a
// nil error; only context cancellation is reported as an error.
func generateWithRetry(ctx context.Context, cfg *Config, stats *Stats, log logging.Logger, word, prompt string, attempt attemptFunc) (*Result, error) {
	var lastErr error
	for i := 1; i <= cfg.MaxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		url, err := attempt(ctx)
		if err == nil {
			stats.recordAI()
			log.Info(ctx, "image generated", "word", word, "attempt", i)
			return &Result{URL: url, Prompt: prompt, Source: SourceAI}, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		lastErr = err
		log.Warn(ctx, "image attempt failed", "word", word, "attempt", i, "error", err)
		if i == cfg.MaxRetries || !IsRetryable(err) {
			break
		}

		stats.recordRetry()
		if err := sleepContext(ctx, cfg.backoff(i)); err != nil {
			return nil, err
		}
	}

	stats.recordFallback()
	log.Warn(ctx, "using fallback icon", "word", word, "error", lastErr)
	return &Result{URL: FallbackIcon(word), Prompt: prompt, Source: SourceFallback}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// tagProvider fills in the provider name of validation errors
func tagProvider(err error, provider string) error {
	var ve *ValidationError
	if errors.As(err, &ve) && ve.Provider == "" {
		ve.Provider = provider
	}
	return err
}
