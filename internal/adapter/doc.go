// Package adapter coordinates the shared pool and a personal store. Reads
// merge personal references with canonical shared content, adds write the
// shared pool before the personal store, and user edits or deletes only
// ever touch the personal store. Bulk maintenance jobs (translation
// backfill, failed-word cleanup) collect per-word errors and keep going.
//
// The two stores have no common transaction. A failed personal write after
// a successful shared write leaves an unreferenced shared entry behind;
// `pool gc` sweeps those. Concurrent writers are last-write-wins.
package adapter
