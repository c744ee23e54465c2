package archive

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"
)

// issueDigestBytes is how much of the issue key digest names a directory
const issueDigestBytes = 6

// Storage is the process-owned directory tree extracted pages are written to.
// Each resolved issue gets one subdirectory named after its archive.
type Storage struct {
	root   string
	lock   *flock.Flock
	logger zerolog.Logger
}

// OpenStorage prepares the storage directory and takes an exclusive lock on it.
//
// Stale regular files left at the top level by a previous run are removed on a
// best-effort basis; anything that cannot be removed is left alone.
func OpenStorage(root string, logger zerolog.Logger) (*Storage, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(root), 0755); err != nil {
		return nil, fmt.Errorf("create storage parent: %w", err)
	}

	lock := flock.New(root + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire storage lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStorageLocked, root)
	}

	s := &Storage{root: root, lock: lock, logger: logger}

	if _, err := os.Stat(root); err == nil {
		s.removeStaleFiles()
	} else if err := os.MkdirAll(root, 0755); err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	logger.Info().Str("path", root).Msg("temporary storage ready")
	return s, nil
}

// Root returns the absolute storage directory
func (s *Storage) Root() string {
	return s.root
}

// IssueDir returns the directory an issue's pages are extracted to. It is
// named after the archive's base name up to the first dot, followed by a
// digest of the issue key so archives sharing a base name never share a
// directory.
func (s *Storage) IssueDir(archivePath, issueKey string) string {
	name, _, _ := strings.Cut(filepath.Base(archivePath), ".")
	sum := blake3.Sum256([]byte(issueKey))
	return filepath.Join(s.root, name+"-"+hex.EncodeToString(sum[:issueDigestBytes]))
}

// Contains reports whether path is a regular file inside the storage tree
func (s *Storage) Contains(path string) bool {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (s *Storage) removeStaleFiles() {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return
	}
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := os.Remove(filepath.Join(s.root, e.Name())); err == nil {
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info().Int("files", removed).Msg("removed stale files from temporary storage")
	}
}

// Close removes the whole storage tree and releases the lock.
// Removal failures (an open handle on some platforms) are logged, not returned.
func (s *Storage) Close() error {
	if err := os.RemoveAll(s.root); err != nil {
		s.logger.Warn().Err(err).Str("path", s.root).Msg("unable to remove temporary storage, is a page still open?")
	}
	if err := s.lock.Unlock(); err != nil {
		return fmt.Errorf("release storage lock: %w", err)
	}
	_ = os.Remove(s.lock.Path())
	return nil
}
