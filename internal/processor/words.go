package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"codeberg.org/snonux/wordflash/internal/adapter"
	"codeberg.org/snonux/wordflash/internal/batch"
	"codeberg.org/snonux/wordflash/internal/image"
	"codeberg.org/snonux/wordflash/internal/models"
	"codeberg.org/snonux/wordflash/internal/translation"
)

// WhoAmI prints the identity and where its data lives
func (p *Processor) WhoAmI() {
	p.printf("User ID:        %s\n", p.identity.UserID)
	if !p.identity.CreatedAt.IsZero() {
		p.printf("Created:        %s\n", p.identity.CreatedAt.Format(time.RFC3339))
	}
	p.printf("Personal store: %s\n", p.personalPath())
	p.printf("Image provider: %s\n", p.generator.Name())
	p.printf("Translation:    %s\n", p.translator.Name())
}

// AddWord adds one word using the word flags
func (p *Processor) AddWord(ctx context.Context, word string) error {
	exists, err := p.adapter.HasWord(ctx, word)
	if err != nil {
		return err
	}
	if exists {
		p.printf("'%s' is already in your list\n", strings.TrimSpace(word))
		return nil
	}

	w := models.Word{Word: word, Translation: p.flags.Translation, Example: p.flags.Example}
	if p.flags.Category != "" {
		id, err := p.categoryID(ctx, p.flags.Category)
		if err != nil {
			return err
		}
		w.Categories = []string{id}
	}

	p.printf("\nAdding: %s\n", word)
	added, err := p.adapter.AddWord(ctx, w)
	if err != nil {
		return err
	}
	p.printWord(added)
	p.printImageStats()
	return nil
}

// categoryID returns the id of the category called name, creating it
func (p *Processor) categoryID(ctx context.Context, name string) (string, error) {
	if models.IsSystemCategory(name) {
		return name, nil
	}
	c, err := p.personal.AddCategory(ctx, name, p.flags.Color)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// ListWords prints every word of the identity
func (p *Processor) ListWords(ctx context.Context) error {
	words, err := p.adapter.GetAllWords(ctx)
	if err != nil {
		return err
	}
	p.printWords(words)
	return nil
}

// SearchWords prints the words matching query in the category flag
func (p *Processor) SearchWords(ctx context.Context, query string) error {
	category := p.flags.Category
	if category != "" && !models.IsSystemCategory(category) {
		// accept names as well as ids
		cats, err := p.personal.ListCategories(ctx)
		if err != nil {
			return err
		}
		for _, c := range cats {
			if strings.EqualFold(c.Name, category) {
				category = c.ID
			}
		}
	}
	words, err := p.adapter.SearchWords(ctx, query, category)
	if err != nil {
		return err
	}
	p.printWords(words)
	return nil
}

// UpdateWord changes the personal copy of the word with id. Only flags
// that are set are applied.
func (p *Processor) UpdateWord(ctx context.Context, id string) error {
	w, err := p.personal.GetRef(ctx, id)
	if err != nil {
		return err
	}
	if p.flags.Translation != "" {
		w.Translation = p.flags.Translation
	}
	if p.flags.Example != "" {
		w.Example = p.flags.Example
	}
	if p.flags.Category != "" {
		cid, err := p.categoryID(ctx, p.flags.Category)
		if err != nil {
			return err
		}
		w.Categories = []string{cid}
	}

	updated, err := p.adapter.UpdateWord(ctx, *w)
	if err != nil {
		return err
	}
	p.printf("Updated %s\n", updated.ID)
	return nil
}

// DeleteWord removes the word with id from this identity
func (p *Processor) DeleteWord(ctx context.Context, id string) error {
	if err := p.adapter.DeleteWord(ctx, id); err != nil {
		return err
	}
	p.printf("Deleted %s\n", id)
	return nil
}

// Review records an answer for the word with id
func (p *Processor) Review(ctx context.Context, id string) error {
	if p.flags.Correct == p.flags.Incorrect {
		return errors.New("pass exactly one of --correct or --incorrect")
	}
	progress, err := p.adapter.RecordReview(ctx, id, p.flags.Correct)
	if err != nil {
		return err
	}
	p.printf("Mastery %d/%d (%d correct, %d incorrect)\n",
		progress.MasteryLevel, models.MaxMasteryLevel, progress.CorrectCount, progress.IncorrectCount)
	return nil
}

// ImportBatch adds the words of a word list or wordbank file
func (p *Processor) ImportBatch(ctx context.Context, file string) error {
	entries, err := batch.ReadBatchFile(file)
	if err != nil {
		return err
	}
	return p.runImport(ctx, entries)
}

// Seed adds the starter word list
func (p *Processor) Seed(ctx context.Context) error {
	entries := make([]batch.WordEntry, 0, len(models.PresetWords))
	for _, w := range models.PresetWords {
		entries = append(entries, batch.WordEntry{Word: w.Word, Translation: w.Translation, Example: w.Example})
	}
	return p.runImport(ctx, entries)
}

func (p *Processor) runImport(ctx context.Context, entries []batch.WordEntry) error {
	for i, e := range entries {
		if e.Category == "" {
			continue
		}
		id, err := p.categoryID(ctx, e.Category)
		if err != nil {
			return err
		}
		entries[i].Category = id
	}

	result, err := p.importer().Import(ctx, entries, func(done, total int, word string) bool {
		p.printf("Processing %d/%d: %s\n", done, total, word)
		return true
	})
	if result != nil {
		p.printf("\n=== Import Summary ===\n")
		p.printf("Imported: %d\n", len(result.Imported))
		p.printf("Skipped (already in your list): %d\n", result.Skipped)
		if len(result.Errors) > 0 {
			p.printf("Errors: %d\n", len(result.Errors))
			for _, e := range result.Errors {
				p.printf("  %s\n", e)
			}
		}
		if result.Stopped {
			p.printf("Import stopped before the end of the list\n")
		}
		p.printf("======================\n")
		p.printImageStats()
	}
	return err
}

// Theme shows which words of a wordbank are in the list and which are not
// imported yet
func (p *Processor) Theme(ctx context.Context, file string) error {
	wb, err := translation.LoadWordbank(file)
	if err != nil {
		return err
	}
	wanted := make([]models.MissingWordInfo, 0, len(wb.Words))
	for _, w := range wb.Words {
		wanted = append(wanted, models.MissingWordInfo{Word: w.Word, Translation: w.Translation, Category: w.Category})
	}

	entries, err := p.adapter.Entries(ctx, wanted)
	if err != nil {
		return err
	}
	p.printf("%s\n", wb.Name)
	missing := 0
	for _, e := range entries {
		if w, ok := e.Word(); ok {
			p.printf("  ✓ %-16s %s\n", w.Word, w.Translation)
			continue
		}
		info, _ := e.MissingInfo()
		missing++
		p.printf("  ✗ %-16s %s (not imported)\n", info.Word, info.Translation)
	}
	p.printf("%d of %d words imported\n", len(entries)-missing, len(entries))
	return nil
}

func (p *Processor) printWords(words []models.Word) {
	if len(words) == 0 {
		p.printf("No words found\n")
		return
	}
	for _, w := range words {
		p.printf("%s  %-16s %-10s %s\n", w.ID, w.Word, w.Translation, strings.Join(w.Categories, ","))
	}
	p.printf("%d words\n", len(words))
}

func (p *Processor) printWord(w models.Word) {
	p.printf("  ID: %s\n", w.ID)
	if w.Translation != "" {
		p.printf("  Translation: %s\n", w.Translation)
	} else {
		p.printf("  Warning: no translation found\n")
	}
	if w.Example != "" {
		p.printf("  Example: %s\n", w.Example)
	}
	p.printf("  Image: %s\n", describeImage(w.ImageURL))
}

func describeImage(url string) string {
	switch {
	case url == "":
		return "none"
	case adapter.IsFailedImage(url):
		return "failed, run regenerate later"
	case image.IsFallbackIcon(url):
		return "icon"
	case len(url) > 60:
		return fmt.Sprintf("%s... (%d bytes)", url[:40], len(url))
	}
	return url
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02 15:04:05")
}
