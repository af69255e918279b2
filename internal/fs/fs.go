package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/sokinpui/skewpatch/internal/log"
)

// Walker enumerates source and backup files under a root directory.
type Walker struct {
	root      string
	extension string
	suffix    string
	exclude   []string
}

// NewWalker creates a Walker. Exclude patterns use doublestar syntax and are
// matched against slash-separated paths relative to root.
func NewWalker(root, extension, suffix string, exclude []string) (*Walker, error) {
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	return &Walker{
		root:      root,
		extension: extension,
		suffix:    suffix,
		exclude:   exclude,
	}, nil
}

// Root returns the directory being walked.
func (w *Walker) Root() string {
	return w.root
}

// Sources returns every file with the walker's extension, backups excluded.
// An empty extension matches every file.
func (w *Walker) Sources() ([]string, error) {
	return w.collect(func(path string) bool {
		if strings.HasSuffix(path, w.suffix) {
			return false
		}
		return w.extension == "" || filepath.Ext(path) == w.extension
	})
}

// Backups returns every backup file under the root.
func (w *Walker) Backups() ([]string, error) {
	return w.collect(func(path string) bool {
		return strings.HasSuffix(path, w.suffix) && len(filepath.Base(path)) > len(w.suffix)
	})
}

func (w *Walker) collect(keep func(path string) bool) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(w.root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			if path == w.root {
				return err
			}
			// Unreadable entries are skipped, the rest of the tree is still walked.
			log.Warn("skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path != w.root && w.excluded(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && keep(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", w.root, err)
	}
	return paths, nil
}

func (w *Walker) excluded(path string) bool {
	if len(w.exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			log.Debug("excluded %s by %q", rel, pattern)
			return true
		}
	}
	return false
}

// BackupPath returns the backup paired with an original file.
func BackupPath(original, suffix string) string {
	return original + suffix
}

// OriginalPath returns the original paired with a backup file.
func OriginalPath(backup, suffix string) (string, bool) {
	if !strings.HasSuffix(backup, suffix) || len(backup) == len(suffix) {
		return "", false
	}
	return strings.TrimSuffix(backup, suffix), true
}

// Exists reports whether path exists. Stat errors other than not-exist are
// returned.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// CopyFile copies src over dst, keeping the permission bits and the
// modification time of src.
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	// OpenFile does not change the mode of an existing file.
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// CopyVerified copies src over dst and checks that both hash the same.
func CopyVerified(src, dst string) error {
	if err := CopyFile(src, dst); err != nil {
		return err
	}
	srcHash, err := GetFileSHA256(src)
	if err != nil {
		return err
	}
	dstHash, err := GetFileSHA256(dst)
	if err != nil {
		return err
	}
	if srcHash != dstHash {
		return fmt.Errorf("copy of %s to %s does not match", src, dst)
	}
	return nil
}

// WriteFilePreservingMode rewrites path with content, keeping its mode.
func WriteFilePreservingMode(path string, content []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, info.Mode().Perm())
}

// GetFileSHA256 calculates the SHA256 hash of a file.
func GetFileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Relativize converts paths under base into relative paths for display.
// Paths that cannot be made relative are returned unchanged.
func Relativize(base string, paths []string) []string {
	rel := make([]string, len(paths))
	for i, p := range paths {
		r, err := filepath.Rel(base, p)
		if err != nil || strings.HasPrefix(r, "..") {
			rel[i] = p
			continue
		}
		rel[i] = r
	}
	return rel
}
