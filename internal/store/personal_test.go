package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/wordflash/internal/models"
)

func newTestPersonal(t *testing.T) *PersonalStore {
	t.Helper()
	s, err := OpenPersonalStore(":memory:", "user_test", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPersonalFileName(t *testing.T) {
	assert.Equal(t, "personal_user_ab12cd34_1700000000000.db", PersonalFileName("user_ab12cd34_1700000000000"))
	assert.Equal(t, "personal_a_b.db", PersonalFileName("a/b"))
}

func TestPersonalStore_AddAndList(t *testing.T) {
	ctx := context.Background()
	s := newTestPersonal(t)

	refs, err := s.ListRefs(ctx)
	require.NoError(t, err)
	assert.Empty(t, refs)

	a, err := s.AddRef(ctx, models.Word{Word: "apple", Translation: "苹果"})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, []string{"uncategorized"}, a.Categories)

	// same text twice gets two independent ids
	b, err := s.AddRef(ctx, models.Word{Word: "apple"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	refs, err = s.ListRefs(ctx)
	require.NoError(t, err)
	assert.Len(t, refs, 2)

	got, err := s.GetRef(ctx, a.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(a, *got); diff != "" {
		t.Errorf("stored word mismatch (-want +got):\n%s", diff)
	}
}

func TestPersonalStore_AddRejectsEmptyWord(t *testing.T) {
	s := newTestPersonal(t)
	_, err := s.AddRef(context.Background(), models.Word{Word: " "})
	var se *StorageError
	assert.ErrorAs(t, err, &se)
}

func TestPersonalStore_AddStampsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	s := newTestPersonal(t)

	w, err := s.AddRef(ctx, models.Word{Word: "dog"})
	require.NoError(t, err)
	assert.NotZero(t, w.UpdatedAt)
	assert.Equal(t, w.CreatedAt, w.UpdatedAt)

	kept, err := s.AddRef(ctx, models.Word{Word: "bird", CreatedAt: 100, UpdatedAt: 200, EditedAt: 150})
	require.NoError(t, err)
	got, err := s.GetRef(ctx, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.CreatedAt)
	assert.Equal(t, int64(200), got.UpdatedAt)
	assert.Equal(t, int64(150), got.EditedAt)
}

func TestPersonalStore_UpdateRef(t *testing.T) {
	ctx := context.Background()
	s := newTestPersonal(t)

	w, err := s.AddRef(ctx, models.Word{Word: "cat", Translation: "猫"})
	require.NoError(t, err)

	w.Categories = []string{"animals"}
	w.Translation = "小猫"
	updated, err := s.UpdateRef(ctx, w)
	require.NoError(t, err)
	assert.NotZero(t, updated.UpdatedAt)

	got, err := s.GetRef(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "小猫", got.Translation)
	assert.Equal(t, []string{"animals"}, got.Categories)
	assert.Equal(t, w.CreatedAt, got.CreatedAt)

	_, err = s.UpdateRef(ctx, models.Word{Word: "x"})
	assert.Error(t, err)
}

func TestPersonalStore_DeleteRef(t *testing.T) {
	ctx := context.Background()
	s := newTestPersonal(t)

	w, err := s.AddRef(ctx, models.Word{Word: "dog"})
	require.NoError(t, err)
	_, err = s.RecordReview(ctx, w.ID, true)
	require.NoError(t, err)

	require.NoError(t, s.DeleteRef(ctx, w.ID))
	_, err = s.GetRef(ctx, w.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetProgress(ctx, w.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteRef(ctx, w.ID), ErrNotFound)
}

func TestPersonalStore_FindRefByWord(t *testing.T) {
	ctx := context.Background()
	s := newTestPersonal(t)

	_, err := s.FindRefByWord(ctx, "Apple")
	assert.ErrorIs(t, err, ErrNotFound)

	w, err := s.AddRef(ctx, models.Word{Word: "Apple"})
	require.NoError(t, err)

	found, err := s.FindRefByWord(ctx, " apple ")
	require.NoError(t, err)
	assert.Equal(t, w.ID, found.ID)
}

func TestPersonalStore_RecordReview(t *testing.T) {
	ctx := context.Background()
	s := newTestPersonal(t)

	w, err := s.AddRef(ctx, models.Word{Word: "sun"})
	require.NoError(t, err)

	p, err := s.RecordReview(ctx, w.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CorrectCount)
	assert.Equal(t, 1, p.MasteryLevel)

	p, err = s.RecordReview(ctx, w.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, p.IncorrectCount)
	assert.Equal(t, 0, p.MasteryLevel)

	got, err := s.GetRef(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ReviewCount)
	assert.NotZero(t, got.LastReviewTime)

	_, err = s.RecordReview(ctx, "missing", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPersonalStore_Categories(t *testing.T) {
	ctx := context.Background()
	s := newTestPersonal(t)

	cats, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.True(t, cats[0].IsDefault)

	food, err := s.AddCategory(ctx, "Food & Drinks", "")
	require.NoError(t, err)
	assert.Equal(t, "food-and-drinks", food.ID)
	assert.Equal(t, "blue", food.Color)

	again, err := s.AddCategory(ctx, "food & drinks", "red")
	require.NoError(t, err)
	assert.Equal(t, food.ID, again.ID, "same name returns the existing category")

	animals, err := s.AddCategory(ctx, "Animals", "green")
	require.NoError(t, err)

	require.NoError(t, s.RenameCategory(ctx, food.ID, "Food"))
	var pe *ProtectedError
	assert.ErrorAs(t, s.RenameCategory(ctx, animals.ID, "food"), &pe)
	assert.ErrorAs(t, s.RenameCategory(ctx, "uncategorized", "Other"), &pe)
	assert.ErrorAs(t, s.DeleteCategory(ctx, "all"), &pe)
	assert.ErrorIs(t, s.DeleteCategory(ctx, "nope"), ErrNotFound)

	w, err := s.AddRef(ctx, models.Word{Word: "cake", Categories: []string{food.ID}})
	require.NoError(t, err)
	require.NoError(t, s.DeleteCategory(ctx, food.ID))

	got, err := s.GetRef(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"uncategorized"}, got.Categories)

	cats, err = s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 3)
}

func TestPersonalStore_Settings(t *testing.T) {
	ctx := context.Background()
	s := newTestPersonal(t)

	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), settings)

	settings.StudyGoals.DailyNewWords = 10
	settings.PreferredCategories = []string{"animals"}
	require.NoError(t, s.PutSettings(ctx, settings))

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(settings, got); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestPersonalStore_ProgressClampsMastery(t *testing.T) {
	ctx := context.Background()
	s := newTestPersonal(t)

	require.NoError(t, s.PutProgress(ctx, models.LearningProgress{WordID: "w1", MasteryLevel: 9}))
	p, err := s.GetProgress(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, models.MaxMasteryLevel, p.MasteryLevel)
	assert.Equal(t, []int64{}, p.ReviewIntervals)

	all, err := s.ListProgress(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPersonalStore_UploadHistoryIsCapped(t *testing.T) {
	ctx := context.Background()
	s := newTestPersonal(t)

	for i := 0; i < MaxUploadHistory+5; i++ {
		require.NoError(t, s.RecordUpload(ctx, UploadRecord{
			Success:   true,
			UploadID:  "upload_" + string(rune('a'+i)),
			DataSize:  i,
			Timestamp: int64(i),
		}))
	}

	history, err := s.ListUploads(ctx)
	require.NoError(t, err)
	require.Len(t, history, MaxUploadHistory)
	assert.Equal(t, int64(MaxUploadHistory+4), history[0].Timestamp, "newest first")
	assert.Equal(t, int64(5), history[len(history)-1].Timestamp)
}

func TestPersonalStore_StorageErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPersonalStore(db, "user_x", nil)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO words").WillReturnError(errors.New("disk full"))
	_, err = s.AddRef(ctx, models.Word{Word: "cat"})
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "add ref", se.Op)

	mock.ExpectQuery("SELECT id, word").WillReturnError(errors.New("disk I/O error"))
	_, err = s.ListRefs(ctx)
	require.ErrorAs(t, err, &se)

	mock.ExpectExec("DELETE FROM words").WillReturnError(errors.New("locked"))
	err = s.DeleteRef(ctx, "id1")
	require.ErrorAs(t, err, &se)

	require.NoError(t, mock.ExpectationsWereMet())
}
