// Package exchange turns the words, learning progress and settings of one
// identity into portable snapshots (JSON or CSV, optionally gzip
// compressed) and restores JSON snapshots through the normal add path.
// Uploading is simulated: the snapshot is built and measured, and the
// outcome is recorded in a short history.
package exchange
