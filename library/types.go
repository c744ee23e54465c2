package library

import (
	"slices"

	"github.com/rs/zerolog"
)

// Title is one logical comic title grouped from the collection's folders
type Title struct {
	Key          string
	DisplayTitle string

	// IssueCount counts grouping-candidate matches during the walk, so it
	// can run ahead of len(Files).
	IssueCount int

	// Files maps file key to absolute archive path
	Files map[string]string

	fileOrder []string
}

// FileKeys returns the title's file keys in the order they were indexed
func (t *Title) FileKeys() []string {
	return slices.Clone(t.fileOrder)
}

// addFile records a file under its key; duplicate keys are ignored
func (t *Title) addFile(fileKey, path string) bool {
	if _, exists := t.Files[fileKey]; exists {
		return false
	}
	t.Files[fileKey] = path
	t.fileOrder = append(t.fileOrder, fileKey)
	return true
}

// Index is the in-memory collection built once at startup.
// It is never mutated after Build returns, so concurrent readers need no locking.
type Index struct {
	root    string
	titles  map[string]*Title
	ignored []string
	total   int
}

// Root returns the collection root directory
func (ix *Index) Root() string {
	return ix.root
}

// Title looks up a title by key
func (ix *Index) Title(key string) (*Title, bool) {
	t, ok := ix.titles[key]
	return t, ok
}

// Keys returns all title keys sorted lexicographically
func (ix *Index) Keys() []string {
	keys := make([]string, 0, len(ix.titles))
	for k := range ix.titles {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Lookup resolves a (title key, file key) pair to an archive path
func (ix *Index) Lookup(titleKey, fileKey string) (string, bool) {
	t, ok := ix.titles[titleKey]
	if !ok {
		return "", false
	}
	path, ok := t.Files[fileKey]
	return path, ok
}

// Len returns the number of titles
func (ix *Index) Len() int {
	return len(ix.titles)
}

// Total returns the number of matching archives seen during the walk,
// duplicates included
func (ix *Index) Total() int {
	return ix.total
}

// Ignored returns the leaf names of directories that held no archives
func (ix *Index) Ignored() []string {
	return slices.Clone(ix.ignored)
}

// Config contains configuration for building the index
type Config struct {
	Root   string
	Logger zerolog.Logger
}
