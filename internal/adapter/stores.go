package adapter

import (
	"context"

	"codeberg.org/snonux/wordflash/internal/models"
	"codeberg.org/snonux/wordflash/internal/store"
)

// SharedPool is the part of the shared store the adapter uses
type SharedPool interface {
	GetImage(ctx context.Context, word string) (*models.SharedImageEntry, error)
	PutImage(ctx context.Context, word, imageURL, prompt string) error
	GetWord(ctx context.Context, word string) (*models.Word, error)
	PutWord(ctx context.Context, w models.Word) error
	SetWordImage(ctx context.Context, word, imageURL string) error
	UpdateTranslation(ctx context.Context, word, translation string) (bool, error)
	DeleteWord(ctx context.Context, word string) error
	ListAll(ctx context.Context) ([]models.Word, error)
}

// PersonalStore is the part of the personal store the adapter uses
type PersonalStore interface {
	UserID() string
	ListRefs(ctx context.Context) ([]models.Word, error)
	GetRef(ctx context.Context, id string) (*models.Word, error)
	FindRefByWord(ctx context.Context, word string) (*models.Word, error)
	AddRef(ctx context.Context, w models.Word) (models.Word, error)
	UpdateRef(ctx context.Context, w models.Word) (models.Word, error)
	DeleteRef(ctx context.Context, id string) error
	RecordReview(ctx context.Context, id string, correct bool) (*models.LearningProgress, error)
}

var (
	_ SharedPool    = (*store.SharedPool)(nil)
	_ PersonalStore = (*store.PersonalStore)(nil)
)
