package models

// EntryKind distinguishes words found in the store from placeholders
type EntryKind int

const (
	// EntryPresent wraps a stored word
	EntryPresent EntryKind = iota
	// EntryMissing marks a word that was expected but has not been imported
	EntryMissing
)

// MissingWordInfo describes a word that a view expected but no store holds
type MissingWordInfo struct {
	Word        string
	Translation string
	Category    string
}

// WordEntry is either a present Word or a MissingWordInfo placeholder.
// Callers switch on Kind and use the matching accessor.
type WordEntry struct {
	kind    EntryKind
	word    Word
	missing MissingWordInfo
}

// Present wraps a stored word
func Present(w Word) WordEntry {
	return WordEntry{kind: EntryPresent, word: w}
}

// Missing wraps a placeholder for a word that is not imported
func Missing(info MissingWordInfo) WordEntry {
	return WordEntry{kind: EntryMissing, missing: info}
}

// Kind returns the variant of the entry
func (e WordEntry) Kind() EntryKind {
	return e.kind
}

// Word returns the stored word; ok is false for missing entries
func (e WordEntry) Word() (Word, bool) {
	return e.word, e.kind == EntryPresent
}

// MissingInfo returns the placeholder; ok is false for present entries
func (e WordEntry) MissingInfo() (MissingWordInfo, bool) {
	return e.missing, e.kind == EntryMissing
}

// Text returns the display text for either variant
func (e WordEntry) Text() string {
	if e.kind == EntryMissing {
		return e.missing.Word
	}
	return e.word.Word
}
