package adapter

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/snonux/wordflash/internal"
	"codeberg.org/snonux/wordflash/internal/image"
	"codeberg.org/snonux/wordflash/internal/models"
	"codeberg.org/snonux/wordflash/internal/store"
)

// BackfillResult summarizes a translation backfill
type BackfillResult struct {
	UpdatedCount int      `json:"updatedCount"`
	Errors       []string `json:"errors"`
}

// CleanupResult summarizes a failed-word cleanup
type CleanupResult struct {
	TotalWords   int      `json:"totalWords"`   // personal words left afterwards
	FailedWords  int      `json:"failedWords"`  // distinct words removed
	CleanedWords []string `json:"cleanedWords"` // their normalized text
	Errors       []string `json:"errors"`
}

// WordStatus classifies the image of one personal word
type WordStatus string

const (
	StatusValid   WordStatus = "valid"
	StatusFailed  WordStatus = "failed"
	StatusMissing WordStatus = "missing"
)

// WordStatusEntry is the status of one personal word
type WordStatusEntry struct {
	ID       string     `json:"id"`
	Word     string     `json:"word"`
	Status   WordStatus `json:"status"`
	Fallback bool       `json:"fallback,omitempty"`
	ImageURL string     `json:"imageUrl,omitempty"`
}

// StatusReport is the result of CheckWordStatus
type StatusReport struct {
	TotalWords  int               `json:"totalWords"`
	ValidWords  int               `json:"validWords"`
	FailedWords int               `json:"failedWords"`
	Words       []WordStatusEntry `json:"wordStatus"`
}

// BatchUpdateTranslations overwrites shared translations with the backfill
// table. Only entries whose translation differs are written.
func (a *Adapter) BatchUpdateTranslations(ctx context.Context) (*BackfillResult, error) {
	if a.table == nil {
		return nil, errors.New("no backfill translation table configured")
	}
	words, err := a.pool.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list shared words: %w", err)
	}

	result := &BackfillResult{Errors: []string{}}
	for _, w := range words {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		tr, ok := a.table.Lookup(w.Word)
		if !ok || tr == w.Translation {
			continue
		}
		changed, err := a.pool.UpdateTranslation(ctx, w.Word, tr)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to update %q: %v", w.Word, err))
			continue
		}
		if changed {
			a.log.Debug(ctx, "translation updated", "word", w.Word, "from", w.Translation, "to", tr)
			result.UpdatedCount++
		}
	}

	a.log.Info(ctx, "translation backfill finished", "updated", result.UpdatedCount, "errors", len(result.Errors))
	return result, nil
}

// CleanupFailedWords deletes words whose image looks failed from both
// stores. Shared records are removed only when their own image is failed.
func (a *Adapter) CleanupFailedWords(ctx context.Context) (*CleanupResult, error) {
	result := &CleanupResult{CleanedWords: []string{}, Errors: []string{}}
	cleaned := map[string]bool{}
	markCleaned := func(word string) {
		key := internal.NormalizeWord(word)
		if !cleaned[key] {
			cleaned[key] = true
			result.CleanedWords = append(result.CleanedWords, key)
		}
	}

	shared, err := a.pool.ListAll(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to list shared words: %v", err))
	}
	for _, w := range shared {
		if !IsFailedImage(w.ImageURL) {
			continue
		}
		if err := a.pool.DeleteWord(ctx, w.Word); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to delete shared %q: %v", w.Word, err))
			continue
		}
		markCleaned(w.Word)
	}

	refs, err := a.personal.ListRefs(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to list personal words: %v", err))
	}
	remaining := 0
	for _, ref := range refs {
		if !IsFailedImage(ref.ImageURL) {
			remaining++
			continue
		}
		if err := a.personal.DeleteRef(ctx, ref.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to delete %q: %v", ref.Word, err))
			remaining++
			continue
		}
		markCleaned(ref.Word)
	}

	result.TotalWords = remaining
	result.FailedWords = len(result.CleanedWords)
	a.log.Info(ctx, "failed word cleanup finished", "removed", result.FailedWords, "remaining", remaining)
	return result, nil
}

// CheckWordStatus classifies every personal word without changing anything
func (a *Adapter) CheckWordStatus(ctx context.Context) (*StatusReport, error) {
	refs, err := a.personal.ListRefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}

	report := &StatusReport{TotalWords: len(refs), Words: make([]WordStatusEntry, 0, len(refs))}
	for _, ref := range refs {
		entry := WordStatusEntry{ID: ref.ID, Word: ref.Word}

		shared, err := a.pool.GetWord(ctx, ref.Word)
		switch {
		case errors.Is(err, store.ErrNotFound):
			entry.Status = StatusMissing
		case err != nil:
			entry.Status = StatusFailed
		case shared.ImageURL == "" || IsFailedImage(shared.ImageURL):
			entry.Status = StatusFailed
			entry.ImageURL = shared.ImageURL
		default:
			entry.Status = StatusValid
			entry.ImageURL = shared.ImageURL
			entry.Fallback = image.IsFallbackIcon(shared.ImageURL)
		}

		if entry.Status == StatusValid {
			report.ValidWords++
		} else {
			report.FailedWords++
		}
		report.Words = append(report.Words, entry)
	}
	return report, nil
}

// RegenerateImage generates a new image for the word with id. Without force
// only failed images and fallback icons are replaced. The new image is
// written to the pool, the shared record and the personal reference.
func (a *Adapter) RegenerateImage(ctx context.Context, id string, force bool) (models.Word, error) {
	ref, err := a.personal.GetRef(ctx, id)
	if err != nil {
		return models.Word{}, fmt.Errorf("failed to regenerate image: %w", err)
	}
	current := a.resolve(ctx, *ref)
	if !force && current.ImageURL != "" && !IsFailedImage(current.ImageURL) && !image.IsFallbackIcon(current.ImageURL) {
		return current, nil
	}

	key := internal.NormalizeWord(ref.Word)
	url, err := a.generate(ctx, key)
	if err != nil {
		return current, err
	}

	if err := a.pool.SetWordImage(ctx, key, url); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return current, fmt.Errorf("failed to store image: %w", err)
		}
		shared := *ref
		shared.ImageURL = url
		if err := a.pool.PutWord(ctx, shared); err != nil {
			return current, fmt.Errorf("failed to store image: %w", err)
		}
	}

	ref.ImageURL = url
	updated, err := a.personal.UpdateRef(ctx, *ref)
	if err != nil {
		return current, fmt.Errorf("failed to store image: %w", err)
	}
	a.log.Info(ctx, "image regenerated", "word", key, "fallback", image.IsFallbackIcon(url))
	return a.resolve(ctx, updated), nil
}
