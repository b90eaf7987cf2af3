package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/wordflash/internal/models"
)

func newTestPool(t *testing.T) *SharedPool {
	t.Helper()
	pool, err := OpenSharedPool(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func TestSharedPool_ImageUsageCount(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)

	_, err := pool.GetImage(ctx, "Cat")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, pool.PutImage(ctx, " Cat ", "data:image/png;base64,AAAA", "orange cat"))

	entry, err := pool.GetImage(ctx, "CAT")
	require.NoError(t, err)
	assert.Equal(t, "cat", entry.Word)
	assert.Equal(t, 2, entry.UsageCount)
	assert.Equal(t, "high", entry.Quality)

	entry, err = pool.GetImage(ctx, "cat")
	require.NoError(t, err)
	assert.Equal(t, 3, entry.UsageCount)

	// replacing the image keeps the counter
	require.NoError(t, pool.PutImage(ctx, "cat", "data:image/png;base64,BBBB", "orange cat"))
	entry, err = pool.GetImage(ctx, "cat")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,BBBB", entry.ImageURL)
	assert.Equal(t, 4, entry.UsageCount)
}

func TestSharedPool_PutWordNormalizesKey(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)

	require.NoError(t, pool.PutWord(ctx, models.Word{Word: "Apple", Translation: "苹果"}))
	require.NoError(t, pool.PutWord(ctx, models.Word{Word: "apple ", Example: "I eat an apple."}))

	all, err := pool.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	w, err := pool.GetWord(ctx, "APPLE")
	require.NoError(t, err)
	assert.Equal(t, "苹果", w.Translation, "empty translation must not clear the stored one")
	assert.Equal(t, "I eat an apple.", w.Example)
	assert.Equal(t, []string{"uncategorized"}, w.Categories)
	assert.NotZero(t, w.CreatedAt)
	assert.NotZero(t, w.UpdatedAt)
}

func TestSharedPool_PutWordRejectsEmpty(t *testing.T) {
	pool := newTestPool(t)
	err := pool.PutWord(context.Background(), models.Word{Word: "  "})
	var se *StorageError
	assert.True(t, errors.As(err, &se))
}

func TestSharedPool_UpdateTranslation(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	require.NoError(t, pool.PutWord(ctx, models.Word{Word: "dog", Translation: "狗"}))

	before, err := pool.GetWord(ctx, "dog")
	require.NoError(t, err)

	changed, err := pool.UpdateTranslation(ctx, "dog", "狗")
	require.NoError(t, err)
	assert.False(t, changed)

	after, err := pool.GetWord(ctx, "dog")
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)

	changed, err = pool.UpdateTranslation(ctx, "Dog", "小狗")
	require.NoError(t, err)
	assert.True(t, changed)

	after, err = pool.GetWord(ctx, "dog")
	require.NoError(t, err)
	assert.Equal(t, "小狗", after.Translation)
}

func TestSharedPool_DeleteWordRemovesImage(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	require.NoError(t, pool.PutWord(ctx, models.Word{Word: "dog"}))
	require.NoError(t, pool.PutImage(ctx, "dog", "https://example.com/dog.png", "a dog"))

	require.NoError(t, pool.DeleteWord(ctx, "DOG"))

	_, err := pool.GetWord(ctx, "dog")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = pool.GetImage(ctx, "dog")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSharedPool_SetWordImage(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)

	err := pool.SetWordImage(ctx, "ghost", "x")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, pool.PutWord(ctx, models.Word{Word: "sun", ImageURL: "ERROR:sun:1"}))
	require.NoError(t, pool.SetWordImage(ctx, "sun", "https://example.com/sun.png"))
	w, err := pool.GetWord(ctx, "sun")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/sun.png", w.ImageURL)
}

func TestSharedPool_Stats(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)

	stats, err := pool.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalImages)
	assert.Zero(t, stats.AverageUsagePerImage)

	require.NoError(t, pool.PutImage(ctx, "cat", "u1", "p"))
	require.NoError(t, pool.PutImage(ctx, "dog", "u2", "p"))
	_, err = pool.GetImage(ctx, "cat")
	require.NoError(t, err)
	require.NoError(t, pool.PutWord(ctx, models.Word{Word: "cat"}))

	stats, err = pool.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalImages)
	assert.Equal(t, 1, stats.TotalWords)
	assert.Equal(t, 3, stats.TotalUsage)
	assert.InDelta(t, 1.5, stats.AverageUsagePerImage, 0.001)
	require.Len(t, stats.MostUsedWords, 2)
	assert.Equal(t, models.UsageCount{Word: "cat", Count: 2}, stats.MostUsedWords[0])
}

func TestSharedPool_CollectGarbage(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)

	require.NoError(t, pool.PutImage(ctx, "cat", "u1", "p"))
	require.NoError(t, pool.PutImage(ctx, "dog", "u2", "p"))
	_, err := pool.GetImage(ctx, "cat")
	require.NoError(t, err)

	// entries are brand new, nothing is old enough
	removed, err := pool.CollectGarbage(ctx, 2, time.Hour)
	require.NoError(t, err)
	assert.Empty(t, removed)

	removed, err = pool.CollectGarbage(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"dog"}, removed)

	images, err := pool.ListImages(ctx)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "cat", images[0].Word)
}

func TestSharedPool_StorageErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	pool := NewSharedPool(db, nil)
	ctx := context.Background()

	mock.ExpectQuery("SELECT word, image_url").WillReturnError(errors.New("disk I/O error"))
	_, err = pool.GetImage(ctx, "cat")
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "get image", se.Op)
	assert.False(t, errors.Is(err, ErrNotFound))

	mock.ExpectExec("INSERT INTO words").WillReturnError(errors.New("database is locked"))
	err = pool.PutWord(ctx, models.Word{Word: "cat"})
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "put word", se.Op)

	require.NoError(t, mock.ExpectationsWereMet())
}
