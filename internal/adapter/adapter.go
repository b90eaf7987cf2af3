package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/snonux/wordflash/internal"
	"codeberg.org/snonux/wordflash/internal/image"
	"codeberg.org/snonux/wordflash/internal/logging"
	"codeberg.org/snonux/wordflash/internal/models"
	"codeberg.org/snonux/wordflash/internal/store"
	"codeberg.org/snonux/wordflash/internal/translation"
)

// ErrEmptyWord is returned when a word has no text
var ErrEmptyWord = errors.New("word must be non-empty")

// Adapter is the single entry point for word reads and writes of one identity
type Adapter struct {
	pool       SharedPool
	personal   PersonalStore
	generator  image.Generator
	translator translation.Translator
	table      *translation.Table
	stats      *image.Stats
	log        logging.Logger
}

// Option customizes an Adapter
type Option func(*Adapter)

// WithTranslator fills in missing translations when words are added
func WithTranslator(t translation.Translator) Option {
	return func(a *Adapter) { a.translator = t }
}

// WithBackfillTable sets the table used by BatchUpdateTranslations
func WithBackfillTable(t *translation.Table) Option {
	return func(a *Adapter) { a.table = t }
}

// WithStats records pool hits into s
func WithStats(s *image.Stats) Option {
	return func(a *Adapter) { a.stats = s }
}

// WithLogger sets the logger
func WithLogger(l logging.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

// New creates an adapter over the given stores and image generator
func New(pool SharedPool, personal PersonalStore, generator image.Generator, opts ...Option) *Adapter {
	a := &Adapter{
		pool:      pool,
		personal:  personal,
		generator: generator,
		table:     translation.DefaultTable(),
		log:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.stats == nil {
		a.stats = image.NewStats()
	}
	a.log = a.log.With("user", personal.UserID())
	return a
}

// UserID returns the identity the adapter works for
func (a *Adapter) UserID() string {
	return a.personal.UserID()
}

// ImageStats returns the pool hit counters of this adapter
func (a *Adapter) ImageStats() image.StatsSnapshot {
	return a.stats.Snapshot()
}

// GetAllWords returns the personal words merged with their shared content.
// A word without a shared entry is returned as stored personally.
func (a *Adapter) GetAllWords(ctx context.Context) ([]models.Word, error) {
	refs, err := a.personal.ListRefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}

	words := make([]models.Word, 0, len(refs))
	for _, ref := range refs {
		words = append(words, a.resolve(ctx, ref))
	}
	return words, nil
}

// resolve merges ref with its shared record, degrading to ref on any failure
func (a *Adapter) resolve(ctx context.Context, ref models.Word) models.Word {
	shared, err := a.pool.GetWord(ctx, ref.Word)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			a.log.Warn(ctx, "word missing from shared pool", "word", ref.Word, "id", ref.ID)
		} else {
			a.log.Error(ctx, "failed to read shared word", "word", ref.Word, "error", err)
		}
		return ref
	}
	return merge(*shared, ref)
}

// merge overlays the personal identity, learning data and categories of
// ref onto the canonical shared record. Edited translation and example
// text of ref replaces the shared text.
func merge(shared, ref models.Word) models.Word {
	w := shared
	w.ID = ref.ID
	w.ReviewCount = ref.ReviewCount
	w.LastReviewTime = ref.LastReviewTime
	w.CreatedAt = ref.CreatedAt
	w.UpdatedAt = ref.UpdatedAt
	w.EditedAt = ref.EditedAt
	w.Categories = ref.Categories
	if ref.EditedAt > 0 && ref.Translation != "" {
		w.Translation = ref.Translation
	}
	if ref.EditedAt > 0 && ref.Example != "" {
		w.Example = ref.Example
	}
	if w.Word == "" {
		w.Word = ref.Word
	}
	if w.Translation == "" {
		w.Translation = ref.Translation
	}
	if w.Example == "" {
		w.Example = ref.Example
	}
	if w.ImageURL == "" {
		w.ImageURL = ref.ImageURL
	}
	return w
}

// GetWord returns one merged word by id
func (a *Adapter) GetWord(ctx context.Context, id string) (models.Word, error) {
	ref, err := a.personal.GetRef(ctx, id)
	if err != nil {
		return models.Word{}, err
	}
	return a.resolve(ctx, *ref), nil
}

// HasWord reports whether the identity already holds word
func (a *Adapter) HasWord(ctx context.Context, word string) (bool, error) {
	_, err := a.personal.FindRefByWord(ctx, word)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// AddWord stores w for this identity. The word text is normalized. The
// image comes from the shared pool, w.ImageURL or the generator, in that
// order; a generator error leaves an error marker for later regeneration.
// The shared record is written before the personal one. Duplicates are
// not checked here.
func (a *Adapter) AddWord(ctx context.Context, w models.Word) (models.Word, error) {
	w.Word = internal.NormalizeWord(w.Word)
	if w.Word == "" {
		return w, ErrEmptyWord
	}
	w.Translation = strings.TrimSpace(w.Translation)
	w.Example = strings.TrimSpace(w.Example)

	existing, err := a.pool.GetWord(ctx, w.Word)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		a.log.Warn(ctx, "failed to read shared word", "word", w.Word, "error", err)
	}
	if existing != nil {
		if w.Translation == "" {
			w.Translation = existing.Translation
		}
		if w.Example == "" {
			w.Example = existing.Example
		}
	}
	if w.Translation == "" {
		w.Translation = a.translate(ctx, w.Word)
	}

	imageURL, err := a.resolveImage(ctx, w.Word, w.ImageURL)
	if err != nil {
		return w, err
	}
	w.ImageURL = imageURL

	if err := a.pool.PutWord(ctx, w); err != nil {
		return w, fmt.Errorf("failed to add word %q: %w", w.Word, err)
	}

	stored, err := a.personal.AddRef(ctx, w)
	if err != nil {
		a.log.Warn(ctx, "shared entry written without personal reference", "word", w.Word, "error", err)
		return w, fmt.Errorf("failed to add word %q: %w", w.Word, err)
	}

	a.log.Info(ctx, "word added", "word", stored.Word, "id", stored.ID)
	return stored, nil
}

func (a *Adapter) translate(ctx context.Context, word string) string {
	if a.translator == nil {
		return ""
	}
	tr, err := a.translator.TranslateWord(ctx, word)
	if err != nil {
		if !errors.Is(err, translation.ErrNoTranslation) {
			a.log.Warn(ctx, "translation failed", "word", word, "error", err)
		}
		return ""
	}
	return tr
}

// resolveImage returns the image for word. Only context cancellation is
// reported as an error.
func (a *Adapter) resolveImage(ctx context.Context, word, provided string) (string, error) {
	entry, err := a.pool.GetImage(ctx, word)
	if err == nil && !IsFailedImage(entry.ImageURL) {
		a.stats.RecordPoolHit()
		return entry.ImageURL, nil
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		a.log.Warn(ctx, "image pool lookup failed", "word", word, "error", err)
	}

	if provided != "" && !IsFailedImage(provided) {
		// icons stay personal so the next identity still gets a real image
		if !image.IsFallbackIcon(provided) {
			if err := a.pool.PutImage(ctx, word, provided, image.BuildPrompt(word)); err != nil {
				a.log.Warn(ctx, "failed to register image", "word", word, "error", err)
			}
		}
		return provided, nil
	}

	return a.generate(ctx, word)
}

// generate asks the generator for a new image and registers AI results
// in the pool. Fallback icons are not registered so that a later add or
// regeneration tries the endpoint again.
func (a *Adapter) generate(ctx context.Context, word string) (string, error) {
	res, err := a.generator.Generate(ctx, word)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		a.log.Error(ctx, "image generation failed", "word", word, "error", err)
		return internal.ErrorMarker(word), nil
	}
	if res.Source == image.SourceAI {
		if err := a.pool.PutImage(ctx, word, res.URL, res.Prompt); err != nil {
			a.log.Warn(ctx, "failed to register image", "word", word, "error", err)
		}
	}
	return res.URL, nil
}

// UpdateWord writes w to the personal store only. Shared content is never
// touched by user edits. A changed translation or example marks the word
// as edited, after which the personal text is shown instead of the shared.
func (a *Adapter) UpdateWord(ctx context.Context, w models.Word) (models.Word, error) {
	current, err := a.personal.GetRef(ctx, w.ID)
	if err != nil {
		return w, fmt.Errorf("failed to update word: %w", err)
	}
	if strings.TrimSpace(w.Word) == "" {
		w.Word = current.Word
	}
	if w.CreatedAt == 0 {
		w.CreatedAt = current.CreatedAt
	}
	switch {
	case w.Translation != current.Translation || w.Example != current.Example:
		w.EditedAt = internal.NowMillis()
	case w.EditedAt == 0:
		w.EditedAt = current.EditedAt
	}
	updated, err := a.personal.UpdateRef(ctx, w)
	if err != nil {
		return w, fmt.Errorf("failed to update word: %w", err)
	}
	return updated, nil
}

// DeleteWord removes the personal reference only
func (a *Adapter) DeleteWord(ctx context.Context, id string) error {
	if err := a.personal.DeleteRef(ctx, id); err != nil {
		return fmt.Errorf("failed to delete word: %w", err)
	}
	a.log.Info(ctx, "word deleted", "id", id)
	return nil
}

// SearchWords filters the merged words. An empty or "all" category keeps
// every word; otherwise category must be in the word's list. query matches
// case-insensitively against word, translation or example.
func (a *Adapter) SearchWords(ctx context.Context, query, category string) ([]models.Word, error) {
	words, err := a.GetAllWords(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	result := make([]models.Word, 0, len(words))
	for _, w := range words {
		if !w.HasCategory(category) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(w.Word), q) &&
			!strings.Contains(strings.ToLower(w.Translation), q) &&
			!strings.Contains(strings.ToLower(w.Example), q) {
			continue
		}
		result = append(result, w)
	}
	return result, nil
}

// Entries resolves the words a themed view expects. Words the identity
// holds are Present; the others are Missing placeholders.
func (a *Adapter) Entries(ctx context.Context, wanted []models.MissingWordInfo) ([]models.WordEntry, error) {
	words, err := a.GetAllWords(ctx)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]models.Word, len(words))
	for _, w := range words {
		key := internal.NormalizeWord(w.Word)
		if _, ok := byKey[key]; !ok {
			byKey[key] = w
		}
	}

	entries := make([]models.WordEntry, 0, len(wanted))
	for _, info := range wanted {
		if w, ok := byKey[internal.NormalizeWord(info.Word)]; ok {
			entries = append(entries, models.Present(w))
			continue
		}
		entries = append(entries, models.Missing(info))
	}
	return entries, nil
}

// RecordReview counts a review answer for the word with id
func (a *Adapter) RecordReview(ctx context.Context, id string, correct bool) (*models.LearningProgress, error) {
	p, err := a.personal.RecordReview(ctx, id, correct)
	if err != nil {
		return nil, fmt.Errorf("failed to record review: %w", err)
	}
	return p, nil
}
