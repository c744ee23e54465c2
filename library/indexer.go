package library

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// archivePattern matches comic archives; names are lower-cased before matching
const archivePattern = "*.cb[rz]"

// indexer walks the collection once and groups archives into titles
type indexer struct {
	index      *Index
	ignoredSet map[string]struct{}
	dirs       int
	logger     zerolog.Logger
}

// Build walks cfg.Root and groups every comic archive under a title key.
//
// Directories are visited top-down in lexical order. A directory's own archives
// are grouped before any of its subdirectories are visited, which decides the
// keys that files sitting beside sub-titled folders end up under.
func Build(cfg Config) (*Index, error) {
	info, err := os.Stat(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, cfg.Root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, cfg.Root)
	}

	ix := &indexer{
		index: &Index{
			root:   cfg.Root,
			titles: make(map[string]*Title),
		},
		ignoredSet: make(map[string]struct{}),
		logger:     cfg.Logger,
	}

	startTime := time.Now()
	ix.walk(cfg.Root)

	ix.logger.Info().
		Int("comics", ix.index.total).
		Int("titles", len(ix.index.titles)).
		Int("dirs", ix.dirs).
		Int("ignored", len(ix.index.ignored)).
		Dur("duration", time.Since(startTime)).
		Msg("collection indexed")

	return ix.index, nil
}

// walk reads dir once, groups its archives, then descends into its
// subdirectories in lexical order. Unreadable directories are logged and skipped.
func (ix *indexer) walk(dir string) {
	ix.dirs++
	entries, err := os.ReadDir(dir)
	if err != nil {
		ix.logger.Warn().Err(err).Str("dir", dir).Msg("failed to read directory")
		return
	}

	ix.visitDir(dir, entries)
	for _, e := range entries {
		if e.IsDir() {
			ix.walk(filepath.Join(dir, e.Name()))
		}
	}
}

// visitDir groups the archives directly inside dir
func (ix *indexer) visitDir(dir string, entries []fs.DirEntry) {
	matches := matchArchives(entries)
	if len(matches) == 0 {
		leaf := filepath.Base(dir)
		ix.index.ignored = append(ix.index.ignored, leaf)
		ix.ignoredSet[leaf] = struct{}{}
		return
	}

	for _, name := range matches {
		ix.addMatch(name, dir)
		ix.index.total++
	}
}

// matchArchives returns the sorted names of non-directory entries that look like comic archives
func matchArchives(entries []fs.DirEntry) []string {
	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(archivePattern, strings.ToLower(e.Name())); ok {
			matches = append(matches, e.Name())
		}
	}
	slices.Sort(matches)
	return matches
}

// addMatch files one archive under a title.
//
// The directory's path relative to the root is split into two candidates,
// everything before the last separator and the leaf. Each candidate that is not
// an ignored leaf name is normalized and slugified; an existing title with that
// slug gets its count bumped. The file then lands under the last evaluated
// candidate's slug, which is created if it does not exist yet.
func (ix *indexer) addMatch(filename, dir string) {
	var (
		key     string
		display string
		seen    bool
	)
	for _, folder := range splitCandidates(ix.relativeDir(dir)) {
		if _, skip := ix.ignoredSet[folder]; skip {
			continue
		}
		display = NormalizeTitle(folder)
		key = Slugify(display)
		seen = true
		if t, ok := ix.index.titles[key]; ok {
			t.IssueCount++
		}
	}

	// Both candidates ignored: fall back to the leaf.
	if !seen {
		_, leaf := splitPair(ix.relativeDir(dir))
		display = NormalizeTitle(leaf)
		key = Slugify(display)
	}

	t, ok := ix.index.titles[key]
	if !ok {
		t = &Title{
			Key:          key,
			DisplayTitle: display,
			IssueCount:   1,
			Files:        make(map[string]string),
		}
		ix.index.titles[key] = t
	}

	fileKey := Slugify(filename)
	if !t.addFile(fileKey, filepath.Join(dir, filename)) {
		ix.logger.Debug().
			Str("title", key).
			Str("file", filename).
			Msg("duplicate file key, skipped")
	}
}

// relativeDir returns dir relative to the collection root, "" for the root itself
func (ix *indexer) relativeDir(dir string) string {
	rel, err := filepath.Rel(ix.index.root, dir)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

// splitCandidates returns the two grouping candidates for a relative directory
func splitCandidates(rel string) [2]string {
	head, leaf := splitPair(rel)
	return [2]string{head, leaf}
}

// splitPair splits a slash-separated path at its last separator.
// The head keeps any inner separators; trailing ones are trimmed.
func splitPair(rel string) (head, leaf string) {
	i := strings.LastIndex(rel, "/")
	if i < 0 {
		return "", rel
	}
	head = strings.TrimRight(rel[:i+1], "/")
	if head == "" {
		head = rel[:i+1]
	}
	return head, rel[i+1:]
}
