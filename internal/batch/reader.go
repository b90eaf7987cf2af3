package batch

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/wordflash/internal/translation"
)

// WordEntry is one word to import
type WordEntry struct {
	Word        string
	Translation string
	Example     string
	Category    string
}

// ReadBatchFile reads words to import. Wordbank files (.yaml, .yml, .json)
// are loaded as themed word lists; anything else is read as plain text.
func ReadBatchFile(filename string) ([]WordEntry, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml", ".json":
		wb, err := translation.LoadWordbank(filename)
		if err != nil {
			return nil, err
		}
		return FromWordbank(wb), nil
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	defer f.Close()

	entries, err := parseLines(bufio.NewScanner(f))
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return entries, nil
}

// parseLines supports these formats, one word per line:
//   - "apple"
//   - "apple = 苹果"
//   - "apple = 苹果 | food"
//
// Blank lines and lines starting with # are skipped.
func parseLines(scanner *bufio.Scanner) ([]WordEntry, error) {
	var entries []WordEntry
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var entry WordEntry
		if rest, category, ok := strings.Cut(line, "|"); ok {
			line = strings.TrimSpace(rest)
			entry.Category = strings.TrimSpace(category)
		}
		if word, tr, ok := strings.Cut(line, "="); ok {
			entry.Word = strings.TrimSpace(word)
			entry.Translation = strings.TrimSpace(tr)
		} else {
			entry.Word = line
		}

		// Ignore lines without a word, e.g. "= 苹果"
		if entry.Word == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}

// FromWordbank converts wordbank entries
func FromWordbank(wb *translation.Wordbank) []WordEntry {
	entries := make([]WordEntry, 0, len(wb.Words))
	for _, w := range wb.Words {
		if strings.TrimSpace(w.Word) == "" {
			continue
		}
		category := w.Category
		if category == "" {
			category = wb.Category
		}
		entries = append(entries, WordEntry{
			Word:        w.Word,
			Translation: w.Translation,
			Example:     w.Example,
			Category:    category,
		})
	}
	return entries
}
