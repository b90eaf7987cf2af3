package translation

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"codeberg.org/snonux/wordflash/internal"
)

//go:embed wordbank.yaml
var defaultWordbank []byte

// WordbankEntry is one word of a theme wordbank
type WordbankEntry struct {
	Word        string `yaml:"word" json:"word"`
	Translation string `yaml:"translation" json:"translation"`
	Example     string `yaml:"example,omitempty" json:"example,omitempty"`
	Category    string `yaml:"category,omitempty" json:"category,omitempty"`
}

// Wordbank is a themed word list. Files may also be a flat
// "word: translation" map, which loads as a wordbank without metadata.
type Wordbank struct {
	Name        string          `yaml:"name" json:"name"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
	Category    string          `yaml:"category,omitempty" json:"category,omitempty"`
	Words       []WordbankEntry `yaml:"words" json:"words"`
}

// ParseWordbank decodes a wordbank. JSON is used when format is "json",
// YAML otherwise.
func ParseWordbank(data []byte, format string) (*Wordbank, error) {
	unmarshal := yaml.Unmarshal
	if format == "json" {
		unmarshal = json.Unmarshal
	}

	var wb Wordbank
	if err := unmarshal(data, &wb); err == nil && len(wb.Words) > 0 {
		return &wb, nil
	}

	var flat map[string]string
	if err := unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("failed to parse wordbank: %w", err)
	}
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	wb = Wordbank{Words: make([]WordbankEntry, 0, len(keys))}
	for _, k := range keys {
		wb.Words = append(wb.Words, WordbankEntry{Word: k, Translation: flat[k]})
	}
	return &wb, nil
}

// LoadWordbank reads a .yaml, .yml or .json wordbank file
func LoadWordbank(path string) (*Wordbank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read wordbank: %w", err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	wb, err := ParseWordbank(data, format)
	if err != nil {
		return nil, err
	}
	if wb.Name == "" {
		wb.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return wb, nil
}

// Table is a static translation table keyed by normalized word
type Table struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewTable creates a table from a word to translation map
func NewTable(entries map[string]string) *Table {
	t := &Table{entries: make(map[string]string, len(entries))}
	for k, v := range entries {
		t.Set(k, v)
	}
	return t
}

// DefaultTable returns the built-in table of common beginner words
func DefaultTable() *Table {
	t := NewTable(nil)
	wb, err := ParseWordbank(defaultWordbank, "yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded wordbank is invalid: %v", err))
	}
	t.AddWordbank(wb)
	return t
}

// Set stores a translation; empty values are ignored
func (t *Table) Set(word, translation string) {
	key := internal.NormalizeWord(word)
	translation = strings.TrimSpace(translation)
	if key == "" || translation == "" {
		return
	}
	t.mu.Lock()
	t.entries[key] = translation
	t.mu.Unlock()
}

// AddWordbank merges a wordbank into the table, later entries winning.
// It returns the number of entries merged.
func (t *Table) AddWordbank(wb *Wordbank) int {
	n := 0
	for _, e := range wb.Words {
		if internal.NormalizeWord(e.Word) == "" || strings.TrimSpace(e.Translation) == "" {
			continue
		}
		t.Set(e.Word, e.Translation)
		n++
	}
	return n
}

// Lookup returns the translation for word
func (t *Table) Lookup(word string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tr, ok := t.entries[internal.NormalizeWord(word)]
	return tr, ok
}

// Len returns the number of entries
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Name returns the backend name
func (t *Table) Name() string {
	return "static"
}

// TranslateWord implements Translator; unknown words yield ErrNoTranslation
func (t *Table) TranslateWord(_ context.Context, word string) (string, error) {
	if tr, ok := t.Lookup(word); ok {
		return tr, nil
	}
	return "", ErrNoTranslation
}
