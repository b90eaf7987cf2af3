package processor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"codeberg.org/snonux/wordflash/internal/adapter"
	"codeberg.org/snonux/wordflash/internal/batch"
	"codeberg.org/snonux/wordflash/internal/cli"
	"codeberg.org/snonux/wordflash/internal/exchange"
	"codeberg.org/snonux/wordflash/internal/identity"
	"codeberg.org/snonux/wordflash/internal/image"
	"codeberg.org/snonux/wordflash/internal/logging"
	"codeberg.org/snonux/wordflash/internal/store"
	"codeberg.org/snonux/wordflash/internal/translation"
)

// Processor owns the services of one identity
type Processor struct {
	flags    *cli.Flags
	cfg      *cli.Config
	out      io.Writer
	log      logging.Logger
	identity identity.Identity
	idFile   *identity.FileProvider

	pool       *store.SharedPool
	personal   *store.PersonalStore
	stats      *image.Stats
	generator  image.Generator
	translator *translation.CachedTranslator
	table      *translation.Table
	adapter    *adapter.Adapter
	exchange   *exchange.Manager
}

// Option customizes a Processor
type Option func(*Processor)

// WithOutput redirects command output, os.Stdout by default
func WithOutput(w io.Writer) Option {
	return func(p *Processor) { p.out = w }
}

// WithGenerator replaces the configured image generator
func WithGenerator(g image.Generator) Option {
	return func(p *Processor) { p.generator = g }
}

// WithLogger replaces the logger built from the configuration
func WithLogger(l logging.Logger) Option {
	return func(p *Processor) { p.log = l }
}

// NewProcessor loads the identity, opens both stores under cfg.DataDir and
// builds the services. Close releases the stores.
func NewProcessor(flags *cli.Flags, cfg *cli.Config, opts ...Option) (*Processor, error) {
	p := &Processor{
		flags: flags,
		cfg:   cfg,
		out:   os.Stdout,
		stats: image.NewStats(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.log == nil {
		l, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return nil, err
		}
		p.log = l
	}

	p.idFile = identity.NewFileProvider(cfg.DataDir)
	if cfg.IdentityFile != "" {
		p.idFile = identity.NewFileProviderAt(cfg.IdentityFile)
	}
	id, err := p.idFile.Load()
	if err != nil {
		return nil, err
	}
	p.identity = id

	if err := p.openStores(); err != nil {
		return nil, err
	}

	p.table = translation.DefaultTable()
	if cfg.Wordbank != "" {
		if _, err := p.loadWordbank(cfg.Wordbank); err != nil {
			p.Close()
			return nil, err
		}
	}
	p.translator = translation.NewCachedTranslator(p.buildTranslator())

	if p.generator == nil {
		p.generator = p.buildGenerator()
	}

	p.adapter = adapter.New(p.pool, p.personal, p.generator,
		adapter.WithTranslator(p.translator),
		adapter.WithBackfillTable(p.table),
		adapter.WithStats(p.stats),
		adapter.WithLogger(p.log))
	p.exchange = exchange.NewManager(p.adapter, p.personal, exchange.WithLogger(p.log))
	return p, nil
}

func (p *Processor) openStores() error {
	pool, err := store.OpenSharedPool(filepath.Join(p.cfg.DataDir, store.SharedFileName), p.log)
	if err != nil {
		return fmt.Errorf("failed to open shared pool: %w", err)
	}
	personal, err := store.OpenPersonalStore(p.personalPath(), p.identity.UserID, p.log)
	if err != nil {
		pool.Close()
		return fmt.Errorf("failed to open personal store: %w", err)
	}
	p.pool, p.personal = pool, personal
	return nil
}

func (p *Processor) personalPath() string {
	return filepath.Join(p.cfg.DataDir, store.PersonalFileName(p.identity.UserID))
}

func (p *Processor) buildGenerator() image.Generator {
	opts := []image.Option{image.WithStats(p.stats), image.WithLogger(p.log)}
	switch p.cfg.ImageProvider {
	case cli.ProviderNone:
		return image.NewIconGenerator(p.stats)
	case cli.ProviderOpenAI:
		if p.cfg.OpenAIKey == "" {
			fmt.Fprintf(os.Stderr, "Warning: OpenAI API key not found, words get icon pictures\n")
		}
		return image.NewOpenAIClient(p.cfg.OpenAIImage, p.cfg.Image, opts...)
	default:
		return image.NewPollinationsClient(p.cfg.Image, opts...)
	}
}

// buildTranslator puts the static table first; OpenAI only answers words
// the table does not know
func (p *Processor) buildTranslator() translation.Translator {
	if p.cfg.TranslationProvider != cli.ProviderOpenAI || p.cfg.OpenAIKey == "" {
		return p.table
	}
	return translation.Chain{
		p.table,
		translation.NewOpenAITranslator(translation.OpenAIConfig{
			APIKey:  p.cfg.OpenAIKey,
			BaseURL: p.cfg.OpenAIBaseURL,
			Model:   p.cfg.OpenAITextModel,
		}),
	}
}

func (p *Processor) loadWordbank(path string) (int, error) {
	wb, err := translation.LoadWordbank(path)
	if err != nil {
		return 0, err
	}
	return p.table.AddWordbank(wb), nil
}

// Close closes both stores
func (p *Processor) Close() error {
	var firstErr error
	if p.personal != nil {
		firstErr = p.personal.Close()
	}
	if p.pool != nil {
		if err := p.pool.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (p *Processor) importer() *batch.Importer {
	return batch.NewImporter(p.adapter, p.cfg.Batch, p.log)
}

func (p *Processor) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *Processor) printImageStats() {
	s := p.stats.Snapshot()
	if s.Total == 0 && s.FromPool == 0 {
		return
	}
	p.printf("Images: %d drawn, %d from the shared pool, %d icons, %d retries\n",
		s.AIGenerated, s.FromPool, s.SVGFallback, s.Retries)
}
