package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/wordflash/internal/image"
	"codeberg.org/snonux/wordflash/internal/models"
	"codeberg.org/snonux/wordflash/internal/store"
	"codeberg.org/snonux/wordflash/internal/testutil"
	"codeberg.org/snonux/wordflash/internal/translation"
)

type fixture struct {
	adapter  *Adapter
	pool     *store.SharedPool
	personal *store.PersonalStore
	gen      *testutil.MockGenerator
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	pool, personal := testutil.OpenTestStores(t, "user_a")
	gen := testutil.NewMockGenerator()
	return &fixture{
		adapter:  New(pool, personal, gen, opts...),
		pool:     pool,
		personal: personal,
		gen:      gen,
	}
}

func TestGetAllWords_Empty(t *testing.T) {
	f := newFixture(t)
	words, err := f.adapter.GetAllWords(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, words)
	assert.Empty(t, words)
}

func TestAddWord_NormalizesAndGeneratesImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	added, err := f.adapter.AddWord(ctx, models.Word{Word: "  Apple ", Translation: "苹果"})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)

	words, err := f.adapter.GetAllWords(ctx)
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, "apple", words[0].Word)
	assert.Equal(t, testutil.MockImageURL("apple"), words[0].ImageURL)
	assert.Equal(t, []string{"uncategorized"}, words[0].Categories)

	entry, err := f.pool.GetImage(ctx, "apple")
	require.NoError(t, err)
	assert.Equal(t, words[0].ImageURL, entry.ImageURL)
	assert.Equal(t, 1, f.gen.CallCount("apple"))
}

func TestAddWord_Empty(t *testing.T) {
	f := newFixture(t)
	_, err := f.adapter.AddWord(context.Background(), models.Word{Word: "   "})
	assert.ErrorIs(t, err, ErrEmptyWord)
}

func TestAddWord_ReusesPooledImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pooled := "https://cdn.example.com/cat.png"
	require.NoError(t, f.pool.PutImage(ctx, "cat", pooled, "orange cat"))

	w, err := f.adapter.AddWord(ctx, models.Word{Word: "Cat"})
	require.NoError(t, err)
	assert.Equal(t, pooled, w.ImageURL)
	assert.Empty(t, f.gen.Calls, "no generation on a pool hit")
	assert.Equal(t, 1, f.adapter.ImageStats().FromPool)
}

func TestAddWord_UsesProvidedImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	provided := testutil.MockImageURL("imported")

	w, err := f.adapter.AddWord(ctx, models.Word{Word: "kite", ImageURL: provided})
	require.NoError(t, err)
	assert.Equal(t, provided, w.ImageURL)
	assert.Empty(t, f.gen.Calls)

	entry, err := f.pool.GetImage(ctx, "kite")
	require.NoError(t, err)
	assert.Equal(t, provided, entry.ImageURL)
}

func TestAddWord_FillsTranslation(t *testing.T) {
	ctx := context.Background()
	tr := &testutil.MockTranslator{
		Translations: map[string]string{"dog": "狗"},
		Missing:      translation.ErrNoTranslation,
	}
	f := newFixture(t, WithTranslator(tr))

	w, err := f.adapter.AddWord(ctx, models.Word{Word: "Dog"})
	require.NoError(t, err)
	assert.Equal(t, "狗", w.Translation)

	w, err = f.adapter.AddWord(ctx, models.Word{Word: "zyzzyva"})
	require.NoError(t, err)
	assert.Empty(t, w.Translation)
}

func TestAddWord_GenerationFailsThreeTimesUsesFallback(t *testing.T) {
	ctx := context.Background()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := image.DefaultConfig()
	cfg.Endpoint = server.URL
	cfg.RetryDelay = time.Millisecond
	cfg.MaxRetryDelay = 2 * time.Millisecond
	gen := image.NewPollinationsClient(cfg)

	pool, personal := testutil.OpenTestStores(t, "user_a")
	a := New(pool, personal, gen)

	_, err := a.AddWord(ctx, models.Word{Word: "apple"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	words, err := a.GetAllWords(ctx)
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, image.FallbackIcon("apple"), words[0].ImageURL)

	_, err = pool.GetImage(ctx, "apple")
	assert.ErrorIs(t, err, store.ErrNotFound, "fallback icons are not pooled")
}

func TestAddWord_GeneratorErrorStoresMarker(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.gen.Errors["sun"] = errors.New("generator misconfigured")

	w, err := f.adapter.AddWord(ctx, models.Word{Word: "sun"})
	require.NoError(t, err)
	assert.Regexp(t, `^ERROR:sun:\d+$`, w.ImageURL)
	assert.True(t, IsFailedImage(w.ImageURL))
}

func TestAddWord_Cancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.adapter.AddWord(ctx, models.Word{Word: "moon"})
	assert.ErrorIs(t, err, context.Canceled)

	refs, err := f.personal.ListRefs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestAddWord_TwiceKeepsOneSharedRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.adapter.AddWord(ctx, models.Word{Word: "cat", Translation: "猫"})
	require.NoError(t, err)
	_, err = f.adapter.AddWord(ctx, models.Word{Word: "CAT"})
	require.NoError(t, err)

	all, err := f.pool.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "猫", all[0].Translation)
	assert.Equal(t, 1, f.gen.CallCount("cat"))

	has, err := f.adapter.HasWord(ctx, " Cat")
	require.NoError(t, err)
	assert.True(t, has)
}

type failingPersonal struct {
	*store.PersonalStore
}

func (failingPersonal) AddRef(ctx context.Context, w models.Word) (models.Word, error) {
	return w, &store.StorageError{Op: "add ref", Err: errors.New("disk full")}
}

func TestAddWord_PersonalFailureLeavesSharedEntry(t *testing.T) {
	ctx := context.Background()
	pool, personal := testutil.OpenTestStores(t, "user_a")
	a := New(pool, failingPersonal{personal}, testutil.NewMockGenerator())

	_, err := a.AddWord(ctx, models.Word{Word: "bird"})
	var se *store.StorageError
	require.ErrorAs(t, err, &se)

	_, err = pool.GetWord(ctx, "bird")
	assert.NoError(t, err, "shared write is not rolled back")
}

func TestDeleteWord_KeepsSharedEntry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	w, err := f.adapter.AddWord(ctx, models.Word{Word: "dog", Translation: "狗"})
	require.NoError(t, err)
	before, err := f.pool.GetWord(ctx, "dog")
	require.NoError(t, err)

	require.NoError(t, f.adapter.DeleteWord(ctx, w.ID))

	words, err := f.adapter.GetAllWords(ctx)
	require.NoError(t, err)
	assert.Empty(t, words)

	after, err := f.pool.GetWord(ctx, "dog")
	require.NoError(t, err)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("shared record changed (-before +after):\n%s", diff)
	}

	assert.ErrorIs(t, f.adapter.DeleteWord(ctx, w.ID), store.ErrNotFound)
}

func TestUpdateWord_NeverTouchesSharedPool(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	w, err := f.adapter.AddWord(ctx, models.Word{Word: "fish", Translation: "鱼"})
	require.NoError(t, err)
	before, err := f.pool.GetWord(ctx, "fish")
	require.NoError(t, err)

	w.Categories = []string{"animals"}
	w.Translation = "小鱼"
	w.ImageURL = "https://cdn.example.com/other.png"
	_, err = f.adapter.UpdateWord(ctx, w)
	require.NoError(t, err)

	after, err := f.pool.GetWord(ctx, "fish")
	require.NoError(t, err)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("shared record changed (-before +after):\n%s", diff)
	}

	merged, err := f.adapter.GetWord(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"animals"}, merged.Categories)
	assert.Equal(t, "小鱼", merged.Translation, "edited translation is shown")
	assert.Equal(t, before.ImageURL, merged.ImageURL, "shared image is canonical")

	_, err = f.adapter.UpdateWord(ctx, models.Word{ID: "missing", Word: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateWord_EditedTextOverridesShared(t *testing.T) {
	ctx := context.Background()
	pool, alice := testutil.OpenTestStores(t, "user_alice")
	bob := testutil.OpenTestPersonal(t, "user_bob")
	gen := testutil.NewMockGenerator()
	a := New(pool, alice, gen)
	b := New(pool, bob, gen)

	w, err := a.AddWord(ctx, models.Word{Word: "bank", Translation: "银行"})
	require.NoError(t, err)
	_, err = b.AddWord(ctx, models.Word{Word: "bank"})
	require.NoError(t, err)
	assert.Zero(t, w.EditedAt)

	// category changes alone do not mark the text as edited
	w.Categories = []string{"places"}
	w, err = a.UpdateWord(ctx, w)
	require.NoError(t, err)
	assert.Zero(t, w.EditedAt)

	w.Translation = "河岸"
	w.Example = "We sat on the river bank."
	edited, err := a.UpdateWord(ctx, w)
	require.NoError(t, err)
	assert.NotZero(t, edited.EditedAt)

	got, err := a.GetWord(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "河岸", got.Translation)
	assert.Equal(t, "We sat on the river bank.", got.Example)
	assert.Equal(t, []string{"places"}, got.Categories)

	// a later review keeps the edit
	_, err = a.RecordReview(ctx, w.ID, true)
	require.NoError(t, err)
	got, err = a.GetWord(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "河岸", got.Translation)

	shared, err := pool.GetWord(ctx, "bank")
	require.NoError(t, err)
	assert.Equal(t, "银行", shared.Translation)

	bw, err := b.GetAllWords(ctx)
	require.NoError(t, err)
	require.Len(t, bw, 1)
	assert.Equal(t, "银行", bw[0].Translation, "other identities keep the shared text")
}

func TestAddWord_FallbackIconStaysPersonal(t *testing.T) {
	ctx := context.Background()
	pool, alice := testutil.OpenTestStores(t, "user_alice")
	bob := testutil.OpenTestPersonal(t, "user_bob")
	gen := testutil.NewMockGenerator()
	a := New(pool, alice, gen)
	b := New(pool, bob, gen)

	icon := image.FallbackIcon("cat")
	wa, err := a.AddWord(ctx, models.Word{Word: "cat", Translation: "猫", ImageURL: icon})
	require.NoError(t, err)
	assert.Equal(t, icon, wa.ImageURL)
	assert.Empty(t, gen.Calls)

	_, err = pool.GetImage(ctx, "cat")
	assert.ErrorIs(t, err, store.ErrNotFound)

	wb, err := b.AddWord(ctx, models.Word{Word: "cat"})
	require.NoError(t, err)
	assert.Equal(t, 1, gen.CallCount("cat"))
	assert.Equal(t, testutil.MockImageURL("cat"), wb.ImageURL)

	entry, err := pool.GetImage(ctx, "cat")
	require.NoError(t, err)
	assert.Equal(t, testutil.MockImageURL("cat"), entry.ImageURL)
}

func TestGetAllWords_DegradesWithoutSharedEntry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ref, err := f.personal.AddRef(ctx, models.Word{Word: "ghost", Translation: "鬼"})
	require.NoError(t, err)

	words, err := f.adapter.GetAllWords(ctx)
	require.NoError(t, err)
	require.Len(t, words, 1)
	if diff := cmp.Diff(ref, words[0]); diff != "" {
		t.Errorf("degraded word mismatch (-want +got):\n%s", diff)
	}
}

func TestTwoIdentitiesShareOneRecord(t *testing.T) {
	ctx := context.Background()
	pool, alice := testutil.OpenTestStores(t, "user_alice")
	bob := testutil.OpenTestPersonal(t, "user_bob")
	gen := testutil.NewMockGenerator()

	a := New(pool, alice, gen)
	b := New(pool, bob, gen)

	wa, err := a.AddWord(ctx, models.Word{Word: "cat", Translation: "猫"})
	require.NoError(t, err)
	_, err = b.AddWord(ctx, models.Word{Word: "Cat"})
	require.NoError(t, err)

	all, err := pool.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = a.RecordReview(ctx, wa.ID, true)
	require.NoError(t, err)

	aw, err := a.GetAllWords(ctx)
	require.NoError(t, err)
	bw, err := b.GetAllWords(ctx)
	require.NoError(t, err)
	require.Len(t, aw, 1)
	require.Len(t, bw, 1)

	assert.Equal(t, 1, aw[0].ReviewCount)
	assert.Equal(t, 0, bw[0].ReviewCount)
	assert.NotEqual(t, aw[0].ID, bw[0].ID)
	assert.Equal(t, aw[0].Translation, bw[0].Translation)
	assert.Equal(t, aw[0].ImageURL, bw[0].ImageURL)
	assert.Equal(t, 1, gen.CallCount("cat"))
}

func TestSearchWords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, w := range []models.Word{
		{Word: "cat", Translation: "猫", Categories: []string{"animals"}},
		{Word: "apple", Translation: "苹果", Example: "A cat eats an APPLE.", Categories: []string{"food"}},
		{Word: "dog", Translation: "狗", Categories: []string{"animals", "pets"}},
	} {
		_, err := f.adapter.AddWord(ctx, w)
		require.NoError(t, err)
	}

	texts := func(words []models.Word) []string {
		out := []string{}
		for _, w := range words {
			out = append(out, w.Word)
		}
		return out
	}

	tests := []struct {
		query    string
		category string
		want     []string
	}{
		{"", "all", []string{"cat", "apple", "dog"}},
		{"", "", []string{"cat", "apple", "dog"}},
		{"CAT", "all", []string{"cat", "apple"}},
		{"cat", "animals", []string{"cat"}},
		{"", "pets", []string{"dog"}},
		{"苹果", "", []string{"apple"}},
		{"zebra", "all", []string{}},
		{"", "anim", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query+"/"+tt.category, func(t *testing.T) {
			got, err := f.adapter.SearchWords(ctx, tt.query, tt.category)
			require.NoError(t, err)
			assert.Equal(t, tt.want, texts(got))
		})
	}
}

func TestEntries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.adapter.AddWord(ctx, models.Word{Word: "lion"})
	require.NoError(t, err)

	entries, err := f.adapter.Entries(ctx, []models.MissingWordInfo{
		{Word: "Lion", Translation: "狮子"},
		{Word: "zebra", Translation: "斑马", Category: "animals"},
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	w, ok := entries[0].Word()
	require.True(t, ok)
	assert.Equal(t, "lion", w.Word)

	assert.Equal(t, models.EntryMissing, entries[1].Kind())
	info, ok := entries[1].MissingInfo()
	require.True(t, ok)
	assert.Equal(t, "斑马", info.Translation)
}
