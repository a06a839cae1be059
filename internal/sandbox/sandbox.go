package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Sandbox confines file access to an install root on an afero.Fs. An empty
// Root disables containment.
type Sandbox struct {
	Fs   afero.Fs
	Root string
}

// New returns a Sandbox for root. On the OS file system the root is made
// absolute and its symlinks are resolved.
func New(fs afero.Fs, root string) (*Sandbox, error) {
	if root == "" {
		return &Sandbox{Fs: fs}, nil
	}
	root = filepath.Clean(root)
	if isOsFs(fs) {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolving install root: %w", err)
		}
		root, err = resolveExistingPath(abs)
		if err != nil {
			return nil, fmt.Errorf("resolving install root symlinks: %w", err)
		}
	}
	return &Sandbox{Fs: fs, Root: root}, nil
}

// ValidatePath joins target onto the root and checks that the result stays
// inside it. Absolute targets are accepted when they are inside the root.
// On the OS file system symlinks of the existing part of the path are
// resolved before the check.
func (s *Sandbox) ValidatePath(target string) (string, error) {
	if s.Root == "" {
		return filepath.Clean(target), nil
	}

	candidate := target
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(s.Root, candidate)
	}
	candidate = filepath.Clean(candidate)

	resolved := candidate
	if isOsFs(s.Fs) {
		var err error
		resolved, err = resolveExistingPath(candidate)
		if err != nil {
			return "", fmt.Errorf("resolving target path: %w", err)
		}
	}

	rel, err := filepath.Rel(s.Root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path '%s' resolves to '%s' which is outside the install root '%s'", target, resolved, s.Root)
	}
	return resolved, nil
}

// ReadFile reads a file inside the sandbox.
func (s *Sandbox) ReadFile(target string) ([]byte, error) {
	resolved, err := s.ValidatePath(target)
	if err != nil {
		return nil, err
	}
	return afero.ReadFile(s.Fs, resolved)
}

// Exists reports whether target exists and is a regular file.
func (s *Sandbox) Exists(target string) (bool, error) {
	resolved, err := s.ValidatePath(target)
	if err != nil {
		return false, err
	}
	info, err := s.Fs.Stat(resolved)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, fmt.Errorf("'%s' is a directory", resolved)
	}
	return true, nil
}

// SafeWrite atomically replaces target inside the sandbox. An existing file
// keeps its permissions; a new one gets perm.
func (s *Sandbox) SafeWrite(target string, content []byte, perm os.FileMode) error {
	resolved, err := s.ValidatePath(target)
	if err != nil {
		return err
	}
	if info, err := s.Fs.Stat(resolved); err == nil {
		perm = info.Mode().Perm()
	}
	return WriteAtomic(s.Fs, resolved, content, perm)
}

// WriteAtomic writes content to a temp file next to path and renames it into
// place, so readers see either the old or the new content. Parent
// directories are created.
func WriteAtomic(fs afero.Fs, path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	// Same directory keeps the rename on one file system.
	tmp, err := afero.TempFile(fs, dir, ".confpatch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = fs.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := fs.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := fs.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", path, err)
	}

	success = true
	return nil
}

func isOsFs(fs afero.Fs) bool {
	_, ok := fs.(*afero.OsFs)
	return ok
}

// resolveExistingPath resolves symlinks for the longest existing prefix of the path,
// then appends the non-existing suffix. This handles paths that don't fully exist yet.
func resolveExistingPath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	if dir == path {
		return path, nil
	}

	resolvedDir, err := resolveExistingPath(dir)
	if err != nil {
		return "", err
	}

	return filepath.Join(resolvedDir, base), nil
}
