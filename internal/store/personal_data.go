package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gosimple/slug"

	"codeberg.org/snonux/wordflash/internal"
	"codeberg.org/snonux/wordflash/internal/models"
)

// MaxUploadHistory is how many upload records are kept
const MaxUploadHistory = 10

const settingsKey = "user_settings"

// UploadRecord is one simulated upload in the history
type UploadRecord struct {
	Success   bool   `json:"success"`
	UploadID  string `json:"uploadId,omitempty"`
	Error     string `json:"error,omitempty"`
	DataSize  int    `json:"dataSize"`
	Timestamp int64  `json:"timestamp"`
}

func (s *PersonalStore) seedSystemCategories(ctx context.Context) error {
	for _, c := range models.SystemCategories {
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO categories (id, name, color, is_default, created_at) VALUES (?, ?, ?, 1, 0)`,
			c.ID, c.Name, c.Color,
		); err != nil {
			return storageErr("seed categories", err)
		}
	}
	return nil
}

// ListCategories returns system categories first, then user categories by creation
func (s *PersonalStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, color, is_default, created_at FROM categories
		 ORDER BY is_default DESC, created_at, name`)
	if err != nil {
		return nil, storageErr("list categories", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.IsDefault, &c.CreatedAt); err != nil {
			return nil, storageErr("scan category", err)
		}
		categories = append(categories, c)
	}
	return categories, storageErr("list categories", rows.Err())
}

// AddCategory creates a category named name. When a category with the same
// name (case-insensitive) exists it is returned unchanged.
func (s *PersonalStore) AddCategory(ctx context.Context, name, color string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &StorageError{Op: "add category", Err: errors.New("name must be non-empty")}
	}
	if color == "" {
		color = "blue"
	}

	existing, err := s.findCategoryByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	id := slug.Make(name)
	if id == "" {
		id = "category-" + internal.ShortHash(name, 8)
	}
	if models.IsSystemCategory(id) {
		id = id + "-" + internal.ShortHash(name, 4)
	}

	c := models.Category{ID: id, Name: name, Color: color, CreatedAt: internal.NowMillis()}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, color, is_default, created_at) VALUES (?, ?, ?, 0, ?)`,
		c.ID, c.Name, c.Color, c.CreatedAt,
	); err != nil {
		return nil, storageErr("add category", err)
	}
	return &c, nil
}

func (s *PersonalStore) findCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, color, is_default, created_at FROM categories WHERE lower(name) = lower(?)`,
		name,
	).Scan(&c.ID, &c.Name, &c.Color, &c.IsDefault, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("find category", err)
	}
	return &c, nil
}

func (s *PersonalStore) getCategory(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, color, is_default, created_at FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Color, &c.IsDefault, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "category", Key: id}
	}
	if err != nil {
		return nil, storageErr("get category", err)
	}
	return &c, nil
}

// RenameCategory renames a user category. System categories and names
// already taken by another category are rejected.
func (s *PersonalStore) RenameCategory(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	c, err := s.getCategory(ctx, id)
	if err != nil {
		return err
	}
	if c.IsDefault {
		return &ProtectedError{Key: id, Reason: "system categories cannot be renamed"}
	}
	other, err := s.findCategoryByName(ctx, name)
	if err != nil {
		return err
	}
	if other != nil && other.ID != id {
		return &ProtectedError{Key: id, Reason: "name " + name + " is already used"}
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE categories SET name = ? WHERE id = ?`, name, id); err != nil {
		return storageErr("rename category", err)
	}
	return nil
}

// DeleteCategory removes a user category. Words keep their category list;
// words left without any category fall back to uncategorized.
func (s *PersonalStore) DeleteCategory(ctx context.Context, id string) error {
	c, err := s.getCategory(ctx, id)
	if err != nil {
		return err
	}
	if c.IsDefault {
		return &ProtectedError{Key: id, Reason: "system categories cannot be deleted"}
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return storageErr("delete category", err)
	}

	words, err := s.ListRefs(ctx)
	if err != nil {
		return err
	}
	for _, w := range words {
		kept := make([]string, 0, len(w.Categories))
		for _, cat := range w.Categories {
			if cat != id {
				kept = append(kept, cat)
			}
		}
		if len(kept) == len(w.Categories) {
			continue
		}
		w.Categories = kept
		if _, err := s.UpdateRef(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

// GetProgress returns the learning progress for a word
func (s *PersonalStore) GetProgress(ctx context.Context, wordID string) (*models.LearningProgress, error) {
	var (
		p         models.LearningProgress
		intervals string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT word_id, correct_count, incorrect_count, last_review_at, mastery_level, review_intervals
		 FROM progress WHERE word_id = ?`, wordID,
	).Scan(&p.WordID, &p.CorrectCount, &p.IncorrectCount, &p.LastReviewAt, &p.MasteryLevel, &intervals)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "progress", Key: wordID}
	}
	if err != nil {
		return nil, storageErr("get progress", err)
	}
	p.ReviewIntervals = decodeList[int64](intervals)
	return &p, nil
}

// PutProgress upserts a learning progress record
func (s *PersonalStore) PutProgress(ctx context.Context, p models.LearningProgress) error {
	if p.MasteryLevel < 0 {
		p.MasteryLevel = 0
	}
	if p.MasteryLevel > models.MaxMasteryLevel {
		p.MasteryLevel = models.MaxMasteryLevel
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress (word_id, correct_count, incorrect_count, last_review_at, mastery_level, review_intervals)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(word_id) DO UPDATE SET
		   correct_count = excluded.correct_count,
		   incorrect_count = excluded.incorrect_count,
		   last_review_at = excluded.last_review_at,
		   mastery_level = excluded.mastery_level,
		   review_intervals = excluded.review_intervals`,
		p.WordID, p.CorrectCount, p.IncorrectCount, p.LastReviewAt, p.MasteryLevel, encodeList(p.ReviewIntervals),
	)
	return storageErr("put progress", err)
}

// ListProgress returns every progress record
func (s *PersonalStore) ListProgress(ctx context.Context) ([]models.LearningProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT word_id, correct_count, incorrect_count, last_review_at, mastery_level, review_intervals
		 FROM progress ORDER BY word_id`)
	if err != nil {
		return nil, storageErr("list progress", err)
	}
	defer rows.Close()

	result := []models.LearningProgress{}
	for rows.Next() {
		var (
			p         models.LearningProgress
			intervals string
		)
		if err := rows.Scan(&p.WordID, &p.CorrectCount, &p.IncorrectCount, &p.LastReviewAt, &p.MasteryLevel, &intervals); err != nil {
			return nil, storageErr("scan progress", err)
		}
		p.ReviewIntervals = decodeList[int64](intervals)
		result = append(result, p)
	}
	return result, storageErr("list progress", rows.Err())
}

// GetSettings returns the stored settings or the defaults
func (s *PersonalStore) GetSettings(ctx context.Context) (models.UserSettings, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, settingsKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.DefaultSettings(), storageErr("get settings", err)
	}

	settings := models.DefaultSettings()
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		s.log.Warn(ctx, "stored settings are corrupt, using defaults", "error", err)
		return models.DefaultSettings(), nil
	}
	return settings, nil
}

// PutSettings stores the settings record
func (s *PersonalStore) PutSettings(ctx context.Context, settings models.UserSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return storageErr("put settings", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		settingsKey, string(raw),
	)
	return storageErr("put settings", err)
}

// RecordUpload prepends an upload to the history, keeping the newest MaxUploadHistory
func (s *PersonalStore) RecordUpload(ctx context.Context, r UploadRecord) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO uploads (upload_id, success, error, data_size, timestamp) VALUES (?, ?, ?, ?, ?)`,
		r.UploadID, r.Success, r.Error, r.DataSize, r.Timestamp,
	); err != nil {
		return storageErr("record upload", err)
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM uploads WHERE id NOT IN (SELECT id FROM uploads ORDER BY id DESC LIMIT ?)`,
		MaxUploadHistory,
	)
	return storageErr("trim uploads", err)
}

// ListUploads returns the upload history, newest first
func (s *PersonalStore) ListUploads(ctx context.Context) ([]UploadRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT upload_id, success, error, data_size, timestamp FROM uploads ORDER BY id DESC`)
	if err != nil {
		return nil, storageErr("list uploads", err)
	}
	defer rows.Close()

	history := []UploadRecord{}
	for rows.Next() {
		var r UploadRecord
		if err := rows.Scan(&r.UploadID, &r.Success, &r.Error, &r.DataSize, &r.Timestamp); err != nil {
			return nil, storageErr("scan upload", err)
		}
		history = append(history, r)
	}
	return history, storageErr("list uploads", rows.Err())
}
