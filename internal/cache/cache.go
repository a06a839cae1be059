package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"

	"github.com/bianoble/confpatch/internal/sandbox"
)

// Cache stores file pre-images by their SHA256 hash so a rewritten
// configuration file can be restored. Entries are verified on retrieval.
type Cache struct {
	fs  afero.Fs
	dir string
}

// New creates a Cache at the given directory.
// The directory is created if it does not exist.
func New(fs afero.Fs, dir string) (*Cache, error) {
	objDir := filepath.Join(dir, "objects")
	if err := fs.MkdirAll(objDir, 0755); err != nil {
		return nil, fmt.Errorf("creating backup directory %s: %w", objDir, err)
	}
	return &Cache{fs: fs, dir: dir}, nil
}

// DefaultDir returns the default backup directory.
// Uses XDG_STATE_HOME if set, otherwise ~/.local/state/confpatch.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "confpatch")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		if runtime.GOOS == "windows" {
			return filepath.Join(os.TempDir(), "confpatch-state")
		}
		return filepath.Join("/tmp", "confpatch-state")
	}
	return filepath.Join(home, ".local", "state", "confpatch")
}

// Get retrieves a stored file by its SHA256 hash.
// Returns the content and true if found and verified.
// Returns nil, false if not stored.
// A corrupt entry is removed and reported as a miss.
func (c *Cache) Get(hash string) ([]byte, bool, error) {
	path := c.objectPath(hash)
	data, err := afero.ReadFile(c.fs, path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading backup %s: %w", hash, err)
	}

	if ComputeHash(data) != hash {
		_ = c.fs.Remove(path)
		return nil, false, nil
	}

	return data, true, nil
}

// Put stores content under its SHA256 hash and returns the hash.
// Entries are immutable: storing existing content is a no-op.
func (c *Cache) Put(content []byte) (string, error) {
	hash := ComputeHash(content)
	path := c.objectPath(hash)

	if c.Has(hash) {
		return hash, nil
	}

	if err := sandbox.WriteAtomic(c.fs, path, content, 0644); err != nil {
		return "", fmt.Errorf("storing backup %s: %w", hash, err)
	}
	return hash, nil
}

// Has checks if a hash exists without reading content.
func (c *Cache) Has(hash string) bool {
	_, err := c.fs.Stat(c.objectPath(hash))
	return err == nil
}

// Size returns the total size of the store in bytes.
func (c *Cache) Size() (int64, error) {
	var total int64
	err := afero.Walk(c.fs, c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}

// Path returns the backup directory path.
func (c *Cache) Path() string {
	return c.dir
}

func (c *Cache) objectPath(hash string) string {
	if len(hash) < 2 {
		return filepath.Join(c.dir, "objects", hash)
	}
	return filepath.Join(c.dir, "objects", hash[:2], hash)
}

// ComputeHash computes the SHA256 hash of content and returns the hex string.
func ComputeHash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}
