package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"time"

	"codeberg.org/snonux/wordflash/internal"
	"codeberg.org/snonux/wordflash/internal/logging"
	"codeberg.org/snonux/wordflash/internal/models"
)

//go:embed shared_schema.sql
var sharedSchema string

// SharedFileName is the database file of the shared pool inside the data directory
const SharedFileName = "shared.db"

// DefaultQuality is recorded for every generated image
const DefaultQuality = "high"

// SharedPool is the device-wide store of canonical word content.
// Every key is the normalized word; every method normalizes its input.
type SharedPool struct {
	db  *sql.DB
	log logging.Logger
}

// OpenSharedPool opens (and migrates) the shared pool database at path
func OpenSharedPool(path string, log logging.Logger) (*SharedPool, error) {
	db, err := openDB(path, sharedSchema)
	if err != nil {
		return nil, err
	}
	return NewSharedPool(db, log), nil
}

// NewSharedPool wraps an already migrated database handle
func NewSharedPool(db *sql.DB, log logging.Logger) *SharedPool {
	if log == nil {
		log = logging.NewNop()
	}
	return &SharedPool{db: db, log: log.With("store", "shared")}
}

// Close closes the database
func (p *SharedPool) Close() error {
	return p.db.Close()
}

// GetImage returns the image registered for word and increments its usage count
func (p *SharedPool) GetImage(ctx context.Context, word string) (*models.SharedImageEntry, error) {
	key := internal.NormalizeWord(word)

	var e models.SharedImageEntry
	err := p.db.QueryRowContext(ctx,
		`SELECT word, image_url, prompt, generated_at, usage_count, quality FROM images WHERE word = ?`,
		key,
	).Scan(&e.Word, &e.ImageURL, &e.Prompt, &e.GeneratedAt, &e.UsageCount, &e.Quality)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "image", Key: key}
	}
	if err != nil {
		return nil, storageErr("get image", err)
	}

	if _, err := p.db.ExecContext(ctx,
		`UPDATE images SET usage_count = usage_count + 1 WHERE word = ?`, key,
	); err != nil {
		return nil, storageErr("increment usage", err)
	}
	e.UsageCount++

	p.log.Debug(ctx, "image pool hit", "word", key, "usage", e.UsageCount)
	return &e, nil
}

// PutImage registers an image for word. The first insert starts the usage
// count at 1; later calls replace the image and keep the count.
func (p *SharedPool) PutImage(ctx context.Context, word, imageURL, prompt string) error {
	key := internal.NormalizeWord(word)
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO images (word, image_url, prompt, generated_at, usage_count, quality)
		 VALUES (?, ?, ?, ?, 1, ?)
		 ON CONFLICT(word) DO UPDATE SET
		   image_url = excluded.image_url,
		   prompt = excluded.prompt,
		   generated_at = excluded.generated_at`,
		key, imageURL, prompt, internal.NowMillis(), DefaultQuality,
	)
	if err != nil {
		return storageErr("put image", err)
	}
	p.log.Debug(ctx, "image registered", "word", key)
	return nil
}

// DeleteImage removes the image entry for word
func (p *SharedPool) DeleteImage(ctx context.Context, word string) error {
	key := internal.NormalizeWord(word)
	if _, err := p.db.ExecContext(ctx, `DELETE FROM images WHERE word = ?`, key); err != nil {
		return storageErr("delete image", err)
	}
	return nil
}

// ListImages returns every image entry ordered by word
func (p *SharedPool) ListImages(ctx context.Context) ([]models.SharedImageEntry, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT word, image_url, prompt, generated_at, usage_count, quality FROM images ORDER BY word`)
	if err != nil {
		return nil, storageErr("list images", err)
	}
	defer rows.Close()

	entries := []models.SharedImageEntry{}
	for rows.Next() {
		var e models.SharedImageEntry
		if err := rows.Scan(&e.Word, &e.ImageURL, &e.Prompt, &e.GeneratedAt, &e.UsageCount, &e.Quality); err != nil {
			return nil, storageErr("scan image", err)
		}
		entries = append(entries, e)
	}
	return entries, storageErr("list images", rows.Err())
}

// GetWord returns the canonical record for word
func (p *SharedPool) GetWord(ctx context.Context, word string) (*models.Word, error) {
	key := internal.NormalizeWord(word)

	var (
		w          models.Word
		categories string
	)
	err := p.db.QueryRowContext(ctx,
		`SELECT word, translation, example, image_url, categories, created_at, updated_at
		 FROM words WHERE word_key = ?`, key,
	).Scan(&w.Word, &w.Translation, &w.Example, &w.ImageURL, &categories, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "word", Key: key}
	}
	if err != nil {
		return nil, storageErr("get word", err)
	}
	w.Categories = decodeList[string](categories)
	return &w, nil
}

// PutWord upserts the canonical record for w.Word and stamps UpdatedAt.
// Empty translation, example or image values never clear stored ones.
func (p *SharedPool) PutWord(ctx context.Context, w models.Word) error {
	key := internal.NormalizeWord(w.Word)
	if key == "" {
		return &StorageError{Op: "put word", Err: errors.New("word must be non-empty")}
	}

	now := internal.NowMillis()
	createdAt := w.CreatedAt
	if createdAt == 0 {
		createdAt = now
	}

	_, err := p.db.ExecContext(ctx,
		`INSERT INTO words (word_key, word, translation, example, image_url, categories, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(word_key) DO UPDATE SET
		   word = excluded.word,
		   translation = COALESCE(NULLIF(excluded.translation, ''), words.translation),
		   example = COALESCE(NULLIF(excluded.example, ''), words.example),
		   image_url = COALESCE(NULLIF(excluded.image_url, ''), words.image_url),
		   categories = excluded.categories,
		   updated_at = excluded.updated_at`,
		key, w.Word, w.Translation, w.Example, w.ImageURL,
		encodeList(models.NormalizeCategories(w.Categories)), createdAt, now,
	)
	if err != nil {
		return storageErr("put word", err)
	}
	return nil
}

// UpdateTranslation overwrites the shared translation of word. It reports
// false, without touching updated_at, when the value is already current.
// Only bulk translation jobs call this.
func (p *SharedPool) UpdateTranslation(ctx context.Context, word, translation string) (bool, error) {
	key := internal.NormalizeWord(word)
	res, err := p.db.ExecContext(ctx,
		`UPDATE words SET translation = ?, updated_at = ? WHERE word_key = ? AND translation <> ?`,
		translation, internal.NowMillis(), key, translation,
	)
	if err != nil {
		return false, storageErr("update translation", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("update translation", err)
	}
	return n > 0, nil
}

// SetWordImage replaces the image of the canonical record for word.
// Used when an image is regenerated.
func (p *SharedPool) SetWordImage(ctx context.Context, word, imageURL string) error {
	key := internal.NormalizeWord(word)
	res, err := p.db.ExecContext(ctx,
		`UPDATE words SET image_url = ?, updated_at = ? WHERE word_key = ?`,
		imageURL, internal.NowMillis(), key,
	)
	if err != nil {
		return storageErr("set word image", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Kind: "word", Key: key}
	}
	return nil
}

// DeleteWord removes the canonical record and its image for every
// identity on the device. Not part of the ordinary delete path.
func (p *SharedPool) DeleteWord(ctx context.Context, word string) error {
	key := internal.NormalizeWord(word)
	if _, err := p.db.ExecContext(ctx, `DELETE FROM words WHERE word_key = ?`, key); err != nil {
		return storageErr("delete word", err)
	}
	if err := p.DeleteImage(ctx, key); err != nil {
		return err
	}
	p.log.Warn(ctx, "shared word deleted", "word", key)
	return nil
}

// ListAll returns every canonical word record ordered by key
func (p *SharedPool) ListAll(ctx context.Context) ([]models.Word, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT word, translation, example, image_url, categories, created_at, updated_at
		 FROM words ORDER BY word_key`)
	if err != nil {
		return nil, storageErr("list words", err)
	}
	defer rows.Close()

	words := []models.Word{}
	for rows.Next() {
		var (
			w          models.Word
			categories string
		)
		if err := rows.Scan(&w.Word, &w.Translation, &w.Example, &w.ImageURL, &categories, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, storageErr("scan word", err)
		}
		w.Categories = decodeList[string](categories)
		words = append(words, w)
	}
	return words, storageErr("list words", rows.Err())
}

// Stats summarizes pool usage with the ten most used images
func (p *SharedPool) Stats(ctx context.Context) (*models.PoolStats, error) {
	stats := &models.PoolStats{MostUsedWords: []models.UsageCount{}}

	if err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(usage_count), 0) FROM images`,
	).Scan(&stats.TotalImages, &stats.TotalUsage); err != nil {
		return nil, storageErr("pool stats", err)
	}
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words`).Scan(&stats.TotalWords); err != nil {
		return nil, storageErr("pool stats", err)
	}
	if stats.TotalImages > 0 {
		stats.AverageUsagePerImage = float64(stats.TotalUsage) / float64(stats.TotalImages)
	}

	rows, err := p.db.QueryContext(ctx,
		`SELECT word, usage_count FROM images ORDER BY usage_count DESC, word ASC LIMIT 10`)
	if err != nil {
		return nil, storageErr("pool stats", err)
	}
	defer rows.Close()
	for rows.Next() {
		var u models.UsageCount
		if err := rows.Scan(&u.Word, &u.Count); err != nil {
			return nil, storageErr("pool stats", err)
		}
		stats.MostUsedWords = append(stats.MostUsedWords, u)
	}
	return stats, storageErr("pool stats", rows.Err())
}

// CollectGarbage deletes images used fewer than minUsage times that were
// generated more than olderThan ago. It returns the removed keys.
func (p *SharedPool) CollectGarbage(ctx context.Context, minUsage int, olderThan time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-olderThan).UnixMilli()

	rows, err := p.db.QueryContext(ctx,
		`SELECT word FROM images WHERE usage_count < ? AND generated_at <= ? ORDER BY word`,
		minUsage, cutoff,
	)
	if err != nil {
		return nil, storageErr("collect garbage", err)
	}
	var victims []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			rows.Close()
			return nil, storageErr("collect garbage", err)
		}
		victims = append(victims, w)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, storageErr("collect garbage", err)
	}

	for _, w := range victims {
		if err := p.DeleteImage(ctx, w); err != nil {
			return nil, err
		}
	}
	if len(victims) > 0 {
		p.log.Info(ctx, "shared pool garbage collected", "removed", len(victims), "min_usage", minUsage)
	}
	return victims, nil
}
