package processor

import (
	"context"
	"fmt"
	"os"

	"codeberg.org/snonux/wordflash/internal/adapter"
	"codeberg.org/snonux/wordflash/internal/anki"
	"codeberg.org/snonux/wordflash/internal/archive"
	"codeberg.org/snonux/wordflash/internal/exchange"
	"codeberg.org/snonux/wordflash/internal/models"
)

// Export writes a snapshot file into the output directory
func (p *Processor) Export(ctx context.Context) error {
	format, err := exchange.ParseFormat(p.flags.ExportFormat)
	if err != nil {
		return err
	}
	opts := exchange.Options{
		IncludeImages:   !p.flags.NoImages,
		IncludeProgress: !p.flags.NoProgress,
		IncludeSettings: !p.flags.NoSettings,
		Format:          format,
		Compress:        p.flags.Compress,
	}
	path, err := p.exchange.WriteFile(ctx, p.flags.OutputDir, opts)
	if err != nil {
		return err
	}
	p.printf("Snapshot written to: %s\n", path)
	return nil
}

// AnkiDeck writes an Anki import file with the pictures as media files
func (p *Processor) AnkiDeck(ctx context.Context) error {
	words, err := p.adapter.GetAllWords(ctx)
	if err != nil {
		return err
	}
	gen := anki.NewGenerator(&anki.GeneratorOptions{
		OutputDir:      p.flags.OutputDir,
		DeckName:       p.flags.DeckName,
		IncludeHeaders: true,
	})
	for _, w := range words {
		if err := gen.AddWord(w, adapter.IsFailedImage); err != nil {
			return err
		}
	}
	path, err := gen.Generate()
	if err != nil {
		return err
	}
	total, withImages, media := gen.Stats()
	p.printf("Anki deck written to: %s\n", path)
	p.printf("%d cards, %d with pictures, %d media files\n", total, withImages, media)
	return nil
}

// Restore imports a snapshot file
func (p *Processor) Restore(ctx context.Context, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	result, err := p.exchange.Import(ctx, data)
	if err != nil {
		return err
	}
	p.printf("Restored %d words (%d already present), %d progress records\n",
		result.Imported, result.Skipped, result.Progress)
	if result.Settings {
		p.printf("Settings restored\n")
	}
	p.printImageStats()
	return nil
}

// Upload simulates an upload of the full snapshot
func (p *Processor) Upload(ctx context.Context) error {
	result, err := p.exchange.SimulateUpload(ctx)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("upload failed: %s", result.Error)
	}
	p.printf("Uploaded %d bytes as %s\n", result.DataSize, result.UploadID)
	return nil
}

// Uploads prints the upload history
func (p *Processor) Uploads(ctx context.Context) error {
	history, err := p.exchange.UploadHistory(ctx)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		p.printf("No uploads yet\n")
		return nil
	}
	for _, u := range history {
		status := "ok"
		if !u.Success {
			status = "failed: " + u.Error
		}
		p.printf("%s  %-32s %8d bytes  %s\n", formatMillis(u.Timestamp), u.UploadID, u.DataSize, status)
	}
	return nil
}

// Cleanup removes words with failed images. With --dry-run it only reports.
func (p *Processor) Cleanup(ctx context.Context) error {
	if p.flags.DryRun {
		report, err := p.adapter.CheckWordStatus(ctx)
		if err != nil {
			return err
		}
		for _, w := range report.Words {
			if w.Status != adapter.StatusValid {
				p.printf("  %-8s %s (%s)\n", w.Status, w.Word, w.ID)
			}
		}
		p.printf("%d words: %d valid, %d failed\n", report.TotalWords, report.ValidWords, report.FailedWords)
		return nil
	}

	result, err := p.adapter.CleanupFailedWords(ctx)
	if err != nil {
		return err
	}
	for _, w := range result.CleanedWords {
		p.printf("  removed %s\n", w)
	}
	p.printf("Removed %d failed words, %d words left\n", result.FailedWords, result.TotalWords)
	p.printErrors(result.Errors)
	return nil
}

// Backfill rewrites shared translations from the translation table,
// which includes the configured wordbank
func (p *Processor) Backfill(ctx context.Context) error {
	p.printf("Translation table: %d words\n", p.table.Len())
	result, err := p.adapter.BatchUpdateTranslations(ctx)
	if err != nil {
		return err
	}
	p.printf("Updated %d translations\n", result.UpdatedCount)
	p.printErrors(result.Errors)
	return nil
}

// Regenerate draws a new picture for the word with id
func (p *Processor) Regenerate(ctx context.Context, id string) error {
	w, err := p.adapter.RegenerateImage(ctx, id, p.flags.Force)
	if err != nil {
		return err
	}
	p.printf("%s: %s\n", w.Word, describeImage(w.ImageURL))
	p.printImageStats()
	return nil
}

// PoolStats prints shared pool usage
func (p *Processor) PoolStats(ctx context.Context) error {
	stats, err := p.pool.Stats(ctx)
	if err != nil {
		return err
	}
	p.printf("Shared words:  %d\n", stats.TotalWords)
	p.printf("Shared images: %d (used %d times, %.1f per image)\n",
		stats.TotalImages, stats.TotalUsage, stats.AverageUsagePerImage)
	if len(stats.MostUsedWords) > 0 {
		p.printf("Most used:\n")
		for _, u := range stats.MostUsedWords {
			p.printf("  %-16s %d\n", u.Word, u.Count)
		}
	}
	return nil
}

// PoolGC removes rarely used images older than the --older-than flag
func (p *Processor) PoolGC(ctx context.Context) error {
	removed, err := p.pool.CollectGarbage(ctx, p.flags.MinUsage, p.flags.OlderThan)
	if err != nil {
		return err
	}
	p.printf("Removed %d images\n", len(removed))
	return nil
}

// PoolDelete removes a word and its image from the shared pool of every
// identity on this device
func (p *Processor) PoolDelete(ctx context.Context, word string) error {
	if err := p.pool.DeleteWord(ctx, word); err != nil {
		return err
	}
	p.printf("Removed '%s' from the shared pool\n", word)
	return nil
}

// ListCategories prints the categories of the identity
func (p *Processor) ListCategories(ctx context.Context) error {
	cats, err := p.personal.ListCategories(ctx)
	if err != nil {
		return err
	}
	for _, c := range cats {
		marker := ""
		if c.IsDefault {
			marker = " (system)"
		}
		p.printf("%-20s %-16s %s%s\n", c.ID, c.Name, c.Color, marker)
	}
	return nil
}

// AddCategory creates a category with the color flag
func (p *Processor) AddCategory(ctx context.Context, name string) error {
	c, err := p.personal.AddCategory(ctx, name, p.flags.Color)
	if err != nil {
		return err
	}
	p.printf("Category %s (%s)\n", c.Name, c.ID)
	return nil
}

// RenameCategory renames the category with id
func (p *Processor) RenameCategory(ctx context.Context, id, name string) error {
	if err := p.personal.RenameCategory(ctx, id, name); err != nil {
		return err
	}
	p.printf("Renamed %s to %s\n", id, name)
	return nil
}

// DeleteCategory deletes the category with id; its words move to uncategorized
func (p *Processor) DeleteCategory(ctx context.Context, id string) error {
	if err := p.personal.DeleteCategory(ctx, id); err != nil {
		return err
	}
	p.printf("Deleted category %s\n", id)
	return nil
}

// Reset archives the personal database and forgets the identity. The
// shared pool is kept. The processor is closed afterwards.
func (p *Processor) Reset() error {
	if err := p.personal.Close(); err != nil {
		return fmt.Errorf("failed to close personal store: %w", err)
	}
	p.personal = nil

	archived, err := archive.ArchiveFile(p.personalPath())
	if err != nil {
		return err
	}
	if err := p.idFile.Reset(); err != nil {
		return err
	}
	p.printf("Personal data archived to: %s\n", archived)
	return p.Close()
}

// ListModels prints the OpenAI models usable by wordflash
func (p *Processor) ListModels(ctx context.Context) error {
	return models.NewLister(p.cfg.OpenAIKey, p.cfg.OpenAIBaseURL).ListAvailableModels(ctx, p.out)
}

func (p *Processor) printErrors(errs []string) {
	if len(errs) == 0 {
		return
	}
	p.printf("Errors: %d\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "  %s\n", e)
	}
}
