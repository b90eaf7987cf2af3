package exchange

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/snonux/wordflash/internal"
	"codeberg.org/snonux/wordflash/internal/logging"
	"codeberg.org/snonux/wordflash/internal/models"
	"codeberg.org/snonux/wordflash/internal/store"
)

// SnapshotVersion is written into every export
const SnapshotVersion = "1.0.0"

// Format of an export
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "json" and "csv" in any case
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Options selects what goes into an export
type Options struct {
	IncludeImages   bool   `json:"includeImages"`
	IncludeProgress bool   `json:"includeProgress"`
	IncludeSettings bool   `json:"includeSettings"`
	Format          Format `json:"format"`
	Compress        bool   `json:"compress"`
}

// DefaultOptions exports everything as uncompressed JSON
func DefaultOptions() Options {
	return Options{
		IncludeImages:   true,
		IncludeProgress: true,
		IncludeSettings: true,
		Format:          FormatJSON,
	}
}

// ExportInfo describes a snapshot
type ExportInfo struct {
	UserID     string  `json:"userId"`
	ExportedAt string  `json:"exportedAt"`
	Version    string  `json:"version"`
	Options    Options `json:"options"`
}

// Snapshot is the JSON export document
type Snapshot struct {
	ExportInfo       *ExportInfo               `json:"exportInfo"`
	PersonalWords    []models.Word             `json:"personalWords"`
	LearningProgress []models.LearningProgress `json:"learningProgress,omitempty"`
	UserSettings     *models.UserSettings      `json:"userSettings,omitempty"`
	ImageData        map[string]string         `json:"imageData,omitempty"`
}

// Words is the word access the manager needs; *adapter.Adapter satisfies it
type Words interface {
	UserID() string
	GetAllWords(ctx context.Context) ([]models.Word, error)
	AddWord(ctx context.Context, w models.Word) (models.Word, error)
	HasWord(ctx context.Context, word string) (bool, error)
}

// PersonalData is the personal store access the manager needs
type PersonalData interface {
	ListProgress(ctx context.Context) ([]models.LearningProgress, error)
	PutProgress(ctx context.Context, p models.LearningProgress) error
	GetSettings(ctx context.Context) (models.UserSettings, error)
	PutSettings(ctx context.Context, settings models.UserSettings) error
	RecordUpload(ctx context.Context, r store.UploadRecord) error
	ListUploads(ctx context.Context) ([]store.UploadRecord, error)
}

var _ PersonalData = (*store.PersonalStore)(nil)

// Manager exports, imports and uploads snapshots of one identity
type Manager struct {
	words       Words
	personal    PersonalData
	log         logging.Logger
	now         func() time.Time
	uploadDelay time.Duration
}

// Option customizes a Manager
type Option func(*Manager)

// WithLogger sets the logger
func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithUploadDelay sets how long a simulated upload takes
func WithUploadDelay(d time.Duration) Option {
	return func(m *Manager) { m.uploadDelay = d }
}

// NewManager creates a manager
func NewManager(words Words, personal PersonalData, opts ...Option) *Manager {
	m := &Manager{
		words:       words,
		personal:    personal,
		log:         logging.NewNop(),
		now:         time.Now,
		uploadDelay: time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot collects the data selected by opts
func (m *Manager) Snapshot(ctx context.Context, opts Options) (*Snapshot, error) {
	words, err := m.words.GetAllWords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export words: %w", err)
	}

	snap := &Snapshot{
		ExportInfo: &ExportInfo{
			UserID:     m.words.UserID(),
			ExportedAt: m.now().UTC().Format(time.RFC3339Nano),
			Version:    SnapshotVersion,
			Options:    opts,
		},
		PersonalWords: words,
	}

	if opts.IncludeProgress {
		progress, err := m.personal.ListProgress(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to export progress: %w", err)
		}
		snap.LearningProgress = progress
	}
	if opts.IncludeSettings {
		settings, err := m.personal.GetSettings(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to export settings: %w", err)
		}
		snap.UserSettings = &settings
	}
	if opts.IncludeImages {
		snap.ImageData = make(map[string]string)
		for _, w := range words {
			if w.ImageURL != "" {
				snap.ImageData[w.Word] = w.ImageURL
			}
		}
	} else {
		// image payloads stay out of the word list too
		for i := range snap.PersonalWords {
			snap.PersonalWords[i].ImageURL = ""
		}
	}
	return snap, nil
}

// Export serializes a snapshot in the format selected by opts
func (m *Manager) Export(ctx context.Context, opts Options) ([]byte, error) {
	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	snap, err := m.Snapshot(ctx, opts)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch opts.Format {
	case FormatJSON:
		data, err = json.MarshalIndent(snap, "", "  ")
	case FormatCSV:
		data, err = encodeCSV(snap.PersonalWords)
	default:
		return nil, fmt.Errorf("unsupported export format %q", opts.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if opts.Compress {
		if data, err = compress(data); err != nil {
			return nil, fmt.Errorf("failed to compress snapshot: %w", err)
		}
	}

	m.log.Info(ctx, "snapshot exported",
		"words", len(snap.PersonalWords), "format", string(opts.Format),
		"compressed", opts.Compress, "bytes", len(data))
	return data, nil
}

var csvHeader = []string{"word", "translation", "example", "categories", "createdAt"}

func encodeCSV(words []models.Word) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, word := range words {
		row := []string{
			word.Word,
			word.Translation,
			word.Example,
			strings.Join(word.Categories, ";"),
			time.UnixMilli(word.CreatedAt).UTC().Format(time.RFC3339Nano),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName returns the export file name for userID at t
func FileName(userID string, t time.Time, opts Options) string {
	ts := strings.NewReplacer(":", "-", ".", "-").Replace(t.UTC().Format("2006-01-02T15:04:05.000Z"))
	format := opts.Format
	if format == "" {
		format = FormatJSON
	}
	name := fmt.Sprintf("wordflash_%s_%s.%s", internal.SanitizeFilename(userID), ts, format)
	if opts.Compress {
		name += ".gz"
	}
	return name
}

// WriteFile exports into dir and returns the path of the written file
func (m *Manager) WriteFile(ctx context.Context, dir string, opts Options) (string, error) {
	data, err := m.Export(ctx, opts)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, FileName(m.words.UserID(), m.now(), opts))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}
