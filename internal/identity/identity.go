// Package identity derives and persists the local user identity that
// scopes which personal store a profile reads and writes.
package identity

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"codeberg.org/snonux/wordflash/internal"
)

// FileName is the identity file inside the data directory
const FileName = "user_id"

// Identity is the stable per-profile user value
type Identity struct {
	UserID    string
	CreatedAt time.Time
}

// Fingerprint returns a string describing the current host and OS user
type Fingerprint func() string

// HostFingerprint combines hostname, OS user and platform
func HostFingerprint() string {
	host, _ := os.Hostname()
	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	return strings.Join([]string{host, username, runtime.GOOS, runtime.GOARCH}, "|")
}

// Derive builds a new identity: user_<fingerprint hash>_<epoch millis>
func Derive(fp Fingerprint, now time.Time) Identity {
	return Identity{
		UserID:    fmt.Sprintf("user_%s_%d", internal.ShortHash(fp(), 8), now.UnixMilli()),
		CreatedAt: now,
	}
}

// FileProvider loads the identity from a file, deriving and saving it on first use
type FileProvider struct {
	path        string
	fingerprint Fingerprint
	now         func() time.Time
}

// NewFileProvider creates a provider storing the identity under dataDir
func NewFileProvider(dataDir string) *FileProvider {
	return NewFileProviderAt(filepath.Join(dataDir, FileName))
}

// NewFileProviderAt creates a provider storing the identity at path
func NewFileProviderAt(path string) *FileProvider {
	return &FileProvider{
		path:        path,
		fingerprint: HostFingerprint,
		now:         time.Now,
	}
}

// Path returns the identity file location
func (p *FileProvider) Path() string {
	return p.path
}

// Load returns the persisted identity, creating it when absent
func (p *FileProvider) Load() (Identity, error) {
	data, err := os.ReadFile(p.path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if !strings.HasPrefix(id, "user_") {
			return Identity{}, fmt.Errorf("invalid identity in %s: %q", p.path, id)
		}
		info, statErr := os.Stat(p.path)
		created := time.Time{}
		if statErr == nil {
			created = info.ModTime()
		}
		return Identity{UserID: id, CreatedAt: created}, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return Identity{}, fmt.Errorf("failed to read identity: %w", err)
	}

	id := Derive(p.fingerprint, p.now())
	if err := p.save(id); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// Reset removes the persisted identity; the next Load derives a new one
func (p *FileProvider) Reset() error {
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove identity: %w", err)
	}
	return nil
}

func (p *FileProvider) save(id Identity) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(p.path, []byte(id.UserID+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write identity: %w", err)
	}
	return nil
}
