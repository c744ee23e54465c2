package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// ExtractFailedPage is the single page listed for a RAR archive that could not be read
const ExtractFailedPage = "Could not extract the files from this issue"

// PathLookup resolves a (title key, file key) pair to an archive on disk
type PathLookup interface {
	Lookup(titleKey, fileKey string) (string, bool)
}

// Config contains configuration for the resolver
type Config struct {
	Index   PathLookup
	Storage *Storage
	Logger  zerolog.Logger

	// CacheSize bounds the number of cached issues; 0 never evicts
	CacheSize int

	// Workers bounds concurrent extractions; 0 uses GOMAXPROCS
	Workers int
}

// Stats reports resolver activity
type Stats struct {
	Hits        int64
	Misses      int64
	Extractions int64
	Cached      int
}

// Resolver lists and extracts the pages of an issue, caching the result per issue.
//
// Extraction runs on the resolver's own context inside a bounded pool. Concurrent
// requests for the same uncached issue share one extraction; a caller that goes
// away stops waiting without cancelling the extraction for the others.
type Resolver struct {
	index   PathLookup
	storage *Storage
	cache   *issueCache
	flights singleflight.Group
	workers *semaphore.Weighted
	size    int64
	logger  zerolog.Logger
	closing sync.Once

	ctx    context.Context
	cancel context.CancelFunc

	hits        atomic.Int64
	misses      atomic.Int64
	extractions atomic.Int64
}

// NewResolver creates a resolver backed by cfg.Storage
func NewResolver(cfg Config) (*Resolver, error) {
	if cfg.Index == nil || cfg.Storage == nil {
		return nil, errors.New("resolver requires an index and storage")
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Resolver{
		index:   cfg.Index,
		storage: cfg.Storage,
		workers: semaphore.NewWeighted(int64(workers)),
		size:    int64(workers),
		logger:  cfg.Logger,
		ctx:     ctx,
		cancel:  cancel,
	}

	cache, err := newIssueCache(cfg.CacheSize, r.evict)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create issue cache: %w", err)
	}
	r.cache = cache

	return r, nil
}

// Resolve returns the ordered page paths of an issue, extracting the archive on
// first use. Unknown keys, unreadable ZIPs and unsupported formats yield
// ErrNotFound. A RAR that cannot be read yields []string{ExtractFailedPage}.
func (r *Resolver) Resolve(ctx context.Context, titleKey, fileKey string) ([]string, error) {
	key := cacheKey(titleKey, fileKey)
	if pages, ok := r.cache.get(key); ok {
		r.hits.Add(1)
		return pages, nil
	}
	r.misses.Add(1)

	archivePath, ok := r.index.Lookup(titleKey, fileKey)
	if !ok {
		return nil, ErrNotFound
	}

	ch := r.flights.DoChan(key, func() (any, error) {
		return r.load(key, archivePath)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]string), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// load extracts an issue and caches it. Runs at most once per key at a time.
func (r *Resolver) load(key, archivePath string) ([]string, error) {
	// A flight that finished between the caller's cache miss and this one
	// has already filled the cache.
	if pages, ok := r.cache.get(key); ok {
		return pages, nil
	}

	if _, err := os.Stat(archivePath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, archivePath)
	}

	ex, err := extractorFor(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	if err := r.workers.Acquire(r.ctx, 1); err != nil {
		return nil, err
	}
	defer r.workers.Release(1)

	r.extractions.Add(1)
	dir := r.storage.IssueDir(archivePath, key)
	pages, err := extractPages(r.ctx, ex, archivePath, dir, r.logger)
	if err != nil || len(pages) == 0 {
		r.removeIssueDir(dir)
	}
	if err != nil {
		if r.ctx.Err() != nil {
			return nil, r.ctx.Err()
		}
		if isRar(archivePath) {
			r.logger.Warn().Err(err).Str("archive", archivePath).Msg("could not extract contents")
			return []string{ExtractFailedPage}, nil
		}
		r.logger.Warn().Err(err).Str("archive", archivePath).Msg("invalid archive")
		return nil, fmt.Errorf("%w: %w", ErrNotFound, ErrInvalidArchive)
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages in %s", ErrNotFound, archivePath)
	}

	r.cache.add(key, issue{dir: dir, pages: pages})
	r.logger.Info().
		Str("issue", key).
		Int("pages", len(pages)).
		Msg("issue extracted")

	return pages, nil
}

// evict removes the directory of an issue dropped from a bounded cache
func (r *Resolver) evict(key string, extracted issue) {
	r.removeIssueDir(extracted.dir)
	r.logger.Debug().Str("issue", key).Msg("issue evicted from cache")
}

func (r *Resolver) removeIssueDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		r.logger.Debug().Err(err).Str("path", dir).Msg("failed to remove issue directory")
	}
}

// IsExtractedPage reports whether page is a file this resolver wrote to storage
func (r *Resolver) IsExtractedPage(page string) bool {
	return page != ExtractFailedPage && r.storage.Contains(page)
}

// Stats returns a snapshot of resolver activity
func (r *Resolver) Stats() Stats {
	return Stats{
		Hits:        r.hits.Load(),
		Misses:      r.misses.Load(),
		Extractions: r.extractions.Load(),
		Cached:      r.cache.len(),
	}
}

// Close cancels in-flight extractions and waits for them to stop
func (r *Resolver) Close() {
	r.closing.Do(func() {
		r.cancel()
		_ = r.workers.Acquire(context.Background(), r.size)
	})
}

func isRar(archivePath string) bool {
	return strings.EqualFold(filepath.Ext(archivePath), ".cbr")
}
