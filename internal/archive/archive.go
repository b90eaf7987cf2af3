package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// sqlite keeps these next to a database file
var sidecarSuffixes = []string{"-journal", "-wal", "-shm"}

// ArchiveFile moves a database file into an "archive" directory next to
// it, renamed with a timestamp. Sidecar files move along. It returns the
// archived path.
func ArchiveFile(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("file does not exist: %s", path)
	}

	archiveDir := filepath.Join(filepath.Dir(path), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)

	now := time.Now()
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", base, now.Format("20060102-150405"), ext))
	if _, err := os.Stat(archivePath); err == nil {
		// Add microseconds to make it unique
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", base, now.Format("20060102-150405.000000"), ext))
	}

	if err := os.Rename(path, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", path, err)
	}
	for _, suffix := range sidecarSuffixes {
		if _, err := os.Stat(path + suffix); err == nil {
			if err := os.Rename(path+suffix, archivePath+suffix); err != nil {
				return archivePath, fmt.Errorf("failed to archive %s: %w", path+suffix, err)
			}
		}
	}
	return archivePath, nil
}
