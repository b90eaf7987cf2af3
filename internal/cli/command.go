package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/wordflash/internal"
)

// CreateRootCommand creates and configures the root cobra command.
// Subcommands are added by the caller.
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wordflash",
		Short: "Picture flashcards for young English learners",
		Long: `wordflash keeps a child's English vocabulary with Chinese translations
and a picture for every word.

Generated pictures and translations are shared by every profile on this
device, so a word is only drawn once. Each profile keeps its own word
list, categories and review progress.

Examples:
  wordflash add apple                 # Add a word, drawing its picture
  wordflash import words.txt          # Add many words in throttled batches
  wordflash export --compress         # Write a snapshot of this profile`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, flags)
	return rootCmd
}

// DefaultDataDir is where databases live unless configured otherwise
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wordflash"
	}
	return filepath.Join(home, ".local", "state", "wordflash")
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	pf := cmd.PersistentFlags()

	// Global flags
	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.wordflash.yaml)")
	pf.StringVarP(&flags.DataDir, "data-dir", "d", DefaultDataDir(), "Directory holding the databases")
	pf.StringVar(&flags.IdentityFile, "identity-file", "", "Identity file (default is user_id inside the data dir)")
	pf.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	pf.StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format: text or json")

	// Image flags
	pf.StringVar(&flags.ImageProvider, "image-provider", flags.ImageProvider, "Image source: pollinations, openai or none")
	pf.StringVar(&flags.ImageEndpoint, "image-endpoint", flags.ImageEndpoint, "Base URL of the pollinations endpoint")
	pf.DurationVar(&flags.ImageTimeout, "image-timeout", flags.ImageTimeout, "Timeout of a single image request")
	pf.IntVar(&flags.MaxRetries, "max-retries", flags.MaxRetries, "Image attempts before falling back to an icon")

	// Translation flags
	pf.StringVar(&flags.TranslationProvider, "translation-provider", flags.TranslationProvider, "Translation source: static or openai")
	pf.StringVar(&flags.Wordbank, "wordbank", "", "Extra wordbank (YAML or JSON) for the translation table")

	// OpenAI flags
	pf.StringVar(&flags.OpenAIImageModel, "openai-image-model", flags.OpenAIImageModel, "OpenAI image model: dall-e-2 or dall-e-3")
	pf.StringVar(&flags.OpenAIImageSize, "openai-image-size", flags.OpenAIImageSize, "OpenAI image size, e.g. 256x256")
	pf.StringVar(&flags.OpenAITextModel, "openai-text-model", flags.OpenAITextModel, "OpenAI model used for translations")

	// Batch flags
	pf.IntVar(&flags.BatchSize, "batch-size", flags.BatchSize, "Words imported concurrently per batch")
	pf.DurationVar(&flags.ItemDelay, "item-delay", flags.ItemDelay, "Pause between words of a batch")
	pf.DurationVar(&flags.BatchDelay, "batch-delay", flags.BatchDelay, "Pause between batches")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	viper.BindPFlag("data.dir", pf.Lookup("data-dir"))
	viper.BindPFlag("identity.file", pf.Lookup("identity-file"))
	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.format", pf.Lookup("log-format"))
	viper.BindPFlag("image.provider", pf.Lookup("image-provider"))
	viper.BindPFlag("image.endpoint", pf.Lookup("image-endpoint"))
	viper.BindPFlag("image.timeout", pf.Lookup("image-timeout"))
	viper.BindPFlag("image.max_retries", pf.Lookup("max-retries"))
	viper.BindPFlag("translation.provider", pf.Lookup("translation-provider"))
	viper.BindPFlag("translation.wordbank", pf.Lookup("wordbank"))
	// Bind OpenAI flags
	viper.BindPFlag("openai.image_model", pf.Lookup("openai-image-model"))
	viper.BindPFlag("openai.image_size", pf.Lookup("openai-image-size"))
	viper.BindPFlag("openai.text_model", pf.Lookup("openai-text-model"))
	viper.BindPFlag("batch.size", pf.Lookup("batch-size"))
	viper.BindPFlag("batch.item_delay", pf.Lookup("item-delay"))
	viper.BindPFlag("batch.batch_delay", pf.Lookup("batch-delay"))
}

// InitConfig loads .env, the config file and WORDFLASH_* environment
// variables into viper
func InitConfig(cfgFile string) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".wordflash" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".wordflash")
	}

	// WORDFLASH_IMAGE_PROVIDER sets image.provider
	viper.SetEnvPrefix("WORDFLASH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("openai.api_key")
}
