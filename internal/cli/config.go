package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"codeberg.org/snonux/wordflash/internal/batch"
	"codeberg.org/snonux/wordflash/internal/image"
)

// Image providers
const (
	ProviderPollinations = "pollinations"
	ProviderOpenAI       = "openai"
	ProviderNone         = "none"
	ProviderStatic       = "static"
)

// Config is the resolved runtime configuration
type Config struct {
	DataDir      string
	IdentityFile string
	LogLevel     string
	LogFormat    string

	ImageProvider string
	Image         *image.Config
	OpenAIImage   *image.OpenAIConfig

	TranslationProvider string
	Wordbank            string
	OpenAIKey           string
	OpenAIBaseURL       string
	OpenAITextModel     string

	Batch batch.Config
}

// LoadConfig resolves the configuration from viper. Unset values fall
// back to the package defaults.
func LoadConfig() (*Config, error) {
	img := image.DefaultConfig()
	if v := viper.GetString("image.endpoint"); v != "" {
		img.Endpoint = v
	}
	if v := viper.GetString("image.model"); v != "" {
		img.Model = v
	}
	if v := viper.GetDuration("image.timeout"); v > 0 {
		img.Timeout = v
	}
	if v := viper.GetInt("image.max_retries"); v > 0 {
		img.MaxRetries = v
	}
	if v := viper.GetDuration("image.retry_delay"); v > 0 {
		img.RetryDelay = v
	}
	if v := viper.GetDuration("image.max_retry_delay"); v > 0 {
		img.MaxRetryDelay = v
	}
	if v := viper.GetInt("image.width"); v > 0 {
		img.Width = v
	}
	if v := viper.GetInt("image.height"); v > 0 {
		img.Height = v
	}

	cfg := &Config{
		DataDir:             viper.GetString("data.dir"),
		IdentityFile:        viper.GetString("identity.file"),
		LogLevel:            stringOr(viper.GetString("log.level"), "warn"),
		LogFormat:           stringOr(viper.GetString("log.format"), "text"),
		ImageProvider:       strings.ToLower(stringOr(viper.GetString("image.provider"), ProviderPollinations)),
		Image:               img,
		TranslationProvider: strings.ToLower(stringOr(viper.GetString("translation.provider"), ProviderStatic)),
		Wordbank:            viper.GetString("translation.wordbank"),
		OpenAIKey:           GetOpenAIKey(),
		OpenAIBaseURL:       viper.GetString("openai.base_url"),
		OpenAITextModel:     viper.GetString("openai.text_model"),
		Batch: batch.Config{
			BatchSize:  viper.GetInt("batch.size"),
			ItemDelay:  durationOr("batch.item_delay", batch.DefaultConfig().ItemDelay),
			BatchDelay: durationOr("batch.batch_delay", batch.DefaultConfig().BatchDelay),
		},
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	cfg.OpenAIImage = &image.OpenAIConfig{
		APIKey:      cfg.OpenAIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       viper.GetString("openai.image_model"),
		Size:        viper.GetString("openai.image_size"),
		EnableCache: viper.GetBool("openai.cache"),
		CacheDir:    viper.GetString("openai.cache_dir"),
	}

	switch cfg.ImageProvider {
	case ProviderPollinations, ProviderOpenAI, ProviderNone:
	default:
		return nil, fmt.Errorf("unknown image provider %q (pollinations, openai or none)", cfg.ImageProvider)
	}
	switch cfg.TranslationProvider {
	case ProviderStatic, ProviderOpenAI:
	default:
		return nil, fmt.Errorf("unknown translation provider %q (static or openai)", cfg.TranslationProvider)
	}
	return cfg, nil
}

func stringOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// durationOr keeps an explicit zero, which disables the delay
func durationOr(key string, def time.Duration) time.Duration {
	if !viper.IsSet(key) {
		return def
	}
	return viper.GetDuration(key)
}
