package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"codeberg.org/snonux/wordflash/internal"
	"codeberg.org/snonux/wordflash/internal/logging"
	"codeberg.org/snonux/wordflash/internal/models"
)

// Adder stores words; *adapter.Adapter satisfies it
type Adder interface {
	AddWord(ctx context.Context, w models.Word) (models.Word, error)
	HasWord(ctx context.Context, word string) (bool, error)
}

// Config controls batch throttling
type Config struct {
	BatchSize  int           // words processed concurrently
	ItemDelay  time.Duration // pause between submissions inside a batch
	BatchDelay time.Duration // pause between batches
}

// DefaultConfig keeps the image endpoint below its rate limit
func DefaultConfig() Config {
	return Config{
		BatchSize:  10,
		ItemDelay:  500 * time.Millisecond,
		BatchDelay: 3 * time.Second,
	}
}

// Progress is called after each word with the number of words handled so
// far. Returning false stops the import after the running batch.
type Progress func(done, total int, word string) bool

// Result summarizes an import
type Result struct {
	Imported []models.Word
	Skipped  int
	Errors   []string
	Stopped  bool // stopped by the progress callback or ctx
}

// Importer adds word lists in throttled, concurrent batches
type Importer struct {
	adder Adder
	cfg   Config
	log   logging.Logger
}

// NewImporter creates an importer; zero config fields use the defaults
func NewImporter(adder Adder, cfg Config, log logging.Logger) *Importer {
	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.ItemDelay < 0 {
		cfg.ItemDelay = 0
	}
	if cfg.BatchDelay < 0 {
		cfg.BatchDelay = 0
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Importer{adder: adder, cfg: cfg, log: log}
}

// Import adds entries that the identity does not hold yet. Words repeated
// in entries are imported once. It returns ctx.Err() when cancelled, along
// with what was imported before.
func (im *Importer) Import(ctx context.Context, entries []WordEntry, progress Progress) (*Result, error) {
	entries = dedupe(entries)
	total := len(entries)
	result := &Result{Imported: []models.Word{}, Errors: []string{}}

	var (
		mu   sync.Mutex
		done int
		stop bool
	)
	record := func(word string, f func()) {
		mu.Lock()
		defer mu.Unlock()
		f()
		done++
		if progress != nil && !progress(done, total, word) {
			stop = true
		}
	}
	stopped := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return stop
	}

	limiter := newLimiter(im.cfg.ItemDelay)
	for start := 0; start < total; start += im.cfg.BatchSize {
		if stopped() {
			break
		}
		if err := ctx.Err(); err != nil {
			result.Stopped = true
			return result, err
		}
		if start > 0 {
			if err := sleepContext(ctx, im.cfg.BatchDelay); err != nil {
				result.Stopped = true
				return result, err
			}
		}

		end := min(start+im.cfg.BatchSize, total)
		im.log.Info(ctx, "importing batch", "from", start+1, "to", end, "total", total)

		pool := NewWorkerPool(im.cfg.BatchSize, im.cfg.BatchSize)
		pool.Start(ctx, nil)
		for _, entry := range entries[start:end] {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
			err := pool.Submit(ctx, func(ctx context.Context) error {
				w, skipped, err := im.importOne(ctx, entry)
				record(entry.Word, func() {
					switch {
					case err != nil:
						result.Errors = append(result.Errors, err.Error())
					case skipped:
						result.Skipped++
					default:
						result.Imported = append(result.Imported, w)
					}
				})
				return err
			})
			if err != nil {
				break
			}
		}
		pool.Close()
	}

	if stopped() {
		result.Stopped = true
	}
	if err := ctx.Err(); err != nil {
		result.Stopped = true
		return result, err
	}
	return result, nil
}

func (im *Importer) importOne(ctx context.Context, entry WordEntry) (models.Word, bool, error) {
	exists, err := im.adder.HasWord(ctx, entry.Word)
	if err != nil {
		return models.Word{}, false, fmt.Errorf("failed to check %q: %w", entry.Word, err)
	}
	if exists {
		return models.Word{}, true, nil
	}

	w := models.Word{Word: entry.Word, Translation: entry.Translation, Example: entry.Example}
	if entry.Category != "" {
		w.Categories = []string{entry.Category}
	}
	added, err := im.adder.AddWord(ctx, w)
	if err != nil {
		return models.Word{}, false, fmt.Errorf("failed to import %q: %w", entry.Word, err)
	}
	return added, false, nil
}

func dedupe(entries []WordEntry) []WordEntry {
	seen := make(map[string]bool, len(entries))
	out := make([]WordEntry, 0, len(entries))
	for _, e := range entries {
		key := internal.NormalizeWord(e.Word)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

// newLimiter spaces submissions by every; zero means unlimited
func newLimiter(every time.Duration) *rate.Limiter {
	if every <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(every), 1)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
