// Package store persists words in two sqlite databases: the shared pool,
// which holds the canonical image and translation for every normalized
// word on the device, and the personal store, which holds one identity's
// word references, categories, learning progress and settings.
//
// The two databases are written independently. There is no transaction
// spanning both; concurrent processes writing the same files get
// last-write-wins semantics.
package store
