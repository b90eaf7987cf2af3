package cli

import "time"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile   string
	DataDir      string
	IdentityFile string
	LogLevel     string
	LogFormat string

	// Image flags
	ImageProvider string
	ImageEndpoint string
	ImageTimeout  time.Duration
	MaxRetries    int

	// Translation flags
	TranslationProvider string
	Wordbank            string

	// OpenAI flags
	OpenAIImageModel string
	OpenAIImageSize  string
	OpenAITextModel  string

	// Batch flags
	BatchSize  int
	ItemDelay  time.Duration
	BatchDelay time.Duration

	// Word flags (add, update)
	Translation string
	Example     string
	Category    string

	// Review flags
	Correct   bool
	Incorrect bool

	// Export flags
	ExportFormat string
	NoImages     bool
	NoProgress   bool
	NoSettings   bool
	Compress     bool
	OutputDir    string
	DeckName     string

	// Maintenance flags
	DryRun    bool
	Force     bool
	MinUsage  int
	OlderThan time.Duration
	Color     string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		LogLevel:            "warn",
		LogFormat:           "text",
		ImageProvider:       "pollinations",
		ImageEndpoint:       "https://image.pollinations.ai",
		ImageTimeout:        15 * time.Second,
		MaxRetries:          3,
		TranslationProvider: "static",
		OpenAIImageModel:    "dall-e-2",
		OpenAIImageSize:     "256x256",
		OpenAITextModel:     "gpt-4o-mini",
		BatchSize:           10,
		ItemDelay:           500 * time.Millisecond,
		BatchDelay:          3 * time.Second,
		ExportFormat:        "json",
		OutputDir:           ".",
		DeckName:            "wordflash",
		MinUsage:            2,
		OlderThan:           30 * 24 * time.Hour,
		Color:               "blue",
	}
}
