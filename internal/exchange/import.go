package exchange

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"codeberg.org/snonux/wordflash/internal"
	"codeberg.org/snonux/wordflash/internal/models"
)

// ImportResult summarizes a restore
type ImportResult struct {
	Imported int
	Skipped  int // already held by the identity, or repeated in the snapshot
	Progress int
	Settings bool
}

// Import restores a JSON snapshot, plain or gzip compressed. The whole
// snapshot is validated before anything is written. Words go through the
// normal add path; words the identity already holds are skipped.
func (m *Manager) Import(ctx context.Context, data []byte) (*ImportResult, error) {
	snap, err := Parse(data)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	ids := make(map[string]string, len(snap.PersonalWords))
	for _, w := range snap.PersonalWords {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		exists, err := m.words.HasWord(ctx, w.Word)
		if err != nil {
			return result, fmt.Errorf("failed to import %q: %w", w.Word, err)
		}
		if exists {
			result.Skipped++
			continue
		}

		added, err := m.words.AddWord(ctx, importedWord(w, snap.ImageData))
		if err != nil {
			return result, fmt.Errorf("failed to import %q: %w", w.Word, err)
		}
		if w.ID != "" {
			ids[w.ID] = added.ID
		}
		result.Imported++
	}

	for _, p := range snap.LearningProgress {
		newID, ok := ids[p.WordID]
		if !ok {
			continue
		}
		p.WordID = newID
		if err := m.personal.PutProgress(ctx, p); err != nil {
			return result, fmt.Errorf("failed to import progress: %w", err)
		}
		result.Progress++
	}

	if snap.UserSettings != nil {
		if err := m.personal.PutSettings(ctx, *snap.UserSettings); err != nil {
			return result, fmt.Errorf("failed to import settings: %w", err)
		}
		result.Settings = true
	}

	m.log.Info(ctx, "snapshot imported",
		"exported_at", snap.ExportInfo.ExportedAt, "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

// importedWord keeps the content and learning fields of w. A new id is
// assigned on add.
func importedWord(w models.Word, images map[string]string) models.Word {
	imageURL := w.ImageURL
	if url, ok := images[w.Word]; ok && url != "" {
		imageURL = url
	}
	return models.Word{
		Word:           w.Word,
		Translation:    w.Translation,
		Example:        w.Example,
		ImageURL:       imageURL,
		Categories:     w.Categories,
		ReviewCount:    w.ReviewCount,
		LastReviewTime: w.LastReviewTime,
		CreatedAt:      w.CreatedAt,
		EditedAt:       w.EditedAt,
	}
}

var gzipMagic = []byte{0x1f, 0x8b}

// Parse decodes and validates a snapshot. Every failure is an *ImportError.
func Parse(data []byte) (*Snapshot, error) {
	if bytes.HasPrefix(data, gzipMagic) {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, &ImportError{Message: "corrupt gzip data", Err: err}
		}
		defer zr.Close()
		if data, err = io.ReadAll(zr); err != nil {
			return nil, &ImportError{Message: "corrupt gzip data", Err: err}
		}
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &ImportError{Message: "not a JSON snapshot", Err: err}
	}
	if err := validate(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func validate(snap *Snapshot) error {
	if snap.ExportInfo == nil {
		return &ImportError{Field: "exportInfo", Message: "missing"}
	}
	if strings.TrimSpace(snap.ExportInfo.ExportedAt) == "" {
		return &ImportError{Field: "exportInfo.exportedAt", Message: "missing"}
	}
	if snap.PersonalWords == nil {
		return &ImportError{Field: "personalWords", Message: "missing word array"}
	}
	for i, w := range snap.PersonalWords {
		if internal.NormalizeWord(w.Word) == "" {
			return &ImportError{Field: fmt.Sprintf("personalWords[%d].word", i), Message: "empty word"}
		}
	}
	return nil
}
