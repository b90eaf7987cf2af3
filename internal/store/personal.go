package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"codeberg.org/snonux/wordflash/internal"
	"codeberg.org/snonux/wordflash/internal/logging"
	"codeberg.org/snonux/wordflash/internal/models"
)

//go:embed personal_schema.sql
var personalSchema string

// PersonalFileName returns the database file name for an identity
func PersonalFileName(userID string) string {
	return fmt.Sprintf("personal_%s.db", internal.SanitizeFilename(userID))
}

// PersonalStore holds one identity's words and learning data. Words are
// keyed by an opaque id, so two records may share the same text.
type PersonalStore struct {
	db     *sql.DB
	userID string
	log    logging.Logger
}

// OpenPersonalStore opens (and migrates) the personal database at path
func OpenPersonalStore(path, userID string, log logging.Logger) (*PersonalStore, error) {
	db, err := openDB(path, personalSchema)
	if err != nil {
		return nil, err
	}
	s := NewPersonalStore(db, userID, log)
	if err := s.seedSystemCategories(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewPersonalStore wraps an already migrated database handle
func NewPersonalStore(db *sql.DB, userID string, log logging.Logger) *PersonalStore {
	if log == nil {
		log = logging.NewNop()
	}
	return &PersonalStore{db: db, userID: userID, log: log.With("store", "personal", "user", userID)}
}

// UserID returns the identity this store belongs to
func (s *PersonalStore) UserID() string {
	return s.userID
}

// Close closes the database
func (s *PersonalStore) Close() error {
	return s.db.Close()
}

const wordColumns = `id, word, translation, example, image_url, categories,
	review_count, last_review_time, created_at, updated_at, edited_at`

func scanWord(row interface{ Scan(...any) error }) (models.Word, error) {
	var (
		w          models.Word
		categories string
	)
	err := row.Scan(&w.ID, &w.Word, &w.Translation, &w.Example, &w.ImageURL, &categories,
		&w.ReviewCount, &w.LastReviewTime, &w.CreatedAt, &w.UpdatedAt, &w.EditedAt)
	if err != nil {
		return w, err
	}
	w.Categories = decodeList[string](categories)
	return w, nil
}

// ListRefs returns every word of this identity, oldest first
func (s *PersonalStore) ListRefs(ctx context.Context) ([]models.Word, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+wordColumns+` FROM words ORDER BY created_at, rowid`)
	if err != nil {
		return nil, storageErr("list refs", err)
	}
	defer rows.Close()

	words := []models.Word{}
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, storageErr("scan ref", err)
		}
		words = append(words, w)
	}
	return words, storageErr("list refs", rows.Err())
}

// GetRef returns the word with the given id
func (s *PersonalStore) GetRef(ctx context.Context, id string) (*models.Word, error) {
	w, err := scanWord(s.db.QueryRowContext(ctx,
		`SELECT `+wordColumns+` FROM words WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "word", Key: id}
	}
	if err != nil {
		return nil, storageErr("get ref", err)
	}
	return &w, nil
}

// FindRefByWord returns the first word whose normalized text matches
func (s *PersonalStore) FindRefByWord(ctx context.Context, word string) (*models.Word, error) {
	key := internal.NormalizeWord(word)
	w, err := scanWord(s.db.QueryRowContext(ctx,
		`SELECT `+wordColumns+` FROM words WHERE lower(trim(word)) = ? ORDER BY created_at LIMIT 1`, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "word", Key: key}
	}
	if err != nil {
		return nil, storageErr("find ref", err)
	}
	return &w, nil
}

// AddRef inserts w, assigning a new id when w.ID is empty. It returns the
// stored record.
func (s *PersonalStore) AddRef(ctx context.Context, w models.Word) (models.Word, error) {
	if strings.TrimSpace(w.Word) == "" {
		return w, &StorageError{Op: "add ref", Err: errors.New("word must be non-empty")}
	}
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if w.CreatedAt == 0 {
		w.CreatedAt = internal.NowMillis()
	}
	if w.UpdatedAt == 0 {
		w.UpdatedAt = w.CreatedAt
	}
	w.Categories = models.NormalizeCategories(w.Categories)

	if err := s.upsert(ctx, w); err != nil {
		return w, storageErr("add ref", err)
	}
	s.log.Debug(ctx, "ref added", "id", w.ID, "word", w.Word)
	return w, nil
}

// UpdateRef upserts w by id and stamps UpdatedAt. It never touches the
// shared pool.
func (s *PersonalStore) UpdateRef(ctx context.Context, w models.Word) (models.Word, error) {
	if w.ID == "" {
		return w, &StorageError{Op: "update ref", Err: errors.New("id must be non-empty")}
	}
	if w.CreatedAt == 0 {
		w.CreatedAt = internal.NowMillis()
	}
	w.UpdatedAt = internal.NowMillis()
	w.Categories = models.NormalizeCategories(w.Categories)

	if err := s.upsert(ctx, w); err != nil {
		return w, storageErr("update ref", err)
	}
	return w, nil
}

func (s *PersonalStore) upsert(ctx context.Context, w models.Word) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO words (`+wordColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   word = excluded.word,
		   translation = excluded.translation,
		   example = excluded.example,
		   image_url = excluded.image_url,
		   categories = excluded.categories,
		   review_count = excluded.review_count,
		   last_review_time = excluded.last_review_time,
		   updated_at = excluded.updated_at,
		   edited_at = excluded.edited_at`,
		w.ID, w.Word, w.Translation, w.Example, w.ImageURL, encodeList(w.Categories),
		w.ReviewCount, w.LastReviewTime, w.CreatedAt, w.UpdatedAt, w.EditedAt,
	)
	return err
}

// DeleteRef removes the word with the given id and its learning progress
func (s *PersonalStore) DeleteRef(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM words WHERE id = ?`, id)
	if err != nil {
		return storageErr("delete ref", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Kind: "word", Key: id}
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM progress WHERE word_id = ?`, id); err != nil {
		return storageErr("delete progress", err)
	}
	return nil
}

// RecordReview increments the review count of a word and records the
// answer in its learning progress
func (s *PersonalStore) RecordReview(ctx context.Context, id string, correct bool) (*models.LearningProgress, error) {
	now := internal.NowMillis()
	res, err := s.db.ExecContext(ctx,
		`UPDATE words SET review_count = review_count + 1, last_review_time = ?, updated_at = ? WHERE id = ?`,
		now, now, id,
	)
	if err != nil {
		return nil, storageErr("record review", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, &NotFoundError{Kind: "word", Key: id}
	}

	p, err := s.GetProgress(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if p == nil {
		p = &models.LearningProgress{WordID: id, ReviewIntervals: []int64{}}
	}
	p.RecordAnswer(correct, now)
	if err := s.PutProgress(ctx, *p); err != nil {
		return nil, err
	}
	return p, nil
}
