package api

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/xiaoyuanzhu-com/comix/archive"
	"github.com/xiaoyuanzhu-com/comix/library"
)

// Response is what a request path resolves to
type Response interface {
	response()
}

// RootListing lists every title in the collection, sorted by key
type RootListing struct {
	Directory string
	Titles    []TitleSummary
}

// TitleSummary is one row of the root listing
type TitleSummary struct {
	Key          string
	DisplayTitle string
	IssueCount   int
}

// TitleListing lists the issues of one title
type TitleListing struct {
	Key          string
	DisplayTitle string
	Issues       []IssueLink
}

// IssueLink is one archive of a title
type IssueLink struct {
	FileKey string
	Name    string
	Size    string // human readable, empty if unknown
}

// IssueListing lists the pages of one issue
type IssueListing struct {
	TitleKey string
	FileKey  string
	Pages    []PageLink
}

// PageLink is one page of an issue; Position is 1-based
type PageLink struct {
	Position int
	Label    string
}

// PageContent is an extracted page file to stream back verbatim
type PageContent struct {
	FilePath string
}

// NotFound means the path names nothing servable
type NotFound struct{}

func (RootListing) response()  {}
func (TitleListing) response() {}
func (IssueListing) response() {}
func (PageContent) response()  {}
func (NotFound) response()     {}

// PageResolver lists the pages of an issue
type PageResolver interface {
	Resolve(ctx context.Context, titleKey, fileKey string) ([]string, error)
	IsExtractedPage(page string) bool
}

// Dispatcher maps request paths onto the collection
type Dispatcher struct {
	index    *library.Index
	resolver PageResolver
	logger   zerolog.Logger
}

// NewDispatcher creates a dispatcher over a built index
func NewDispatcher(index *library.Index, resolver PageResolver, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		index:    index,
		resolver: resolver,
		logger:   logger,
	}
}

// Dispatch resolves a request path. Rules are checked in order:
//
//	/                              root listing
//	/favicon.ico                   not found
//	/issue/{title}/{file}          issue listing
//	/{title}/...                   title listing, when {title} is a known key
//	/page/{title}/{file}/{n}       page content
//
// Any other shape falls back to the root listing.
func (d *Dispatcher) Dispatch(ctx context.Context, path string) Response {
	segments := splitPath(path)
	if len(segments) == 0 {
		return d.root()
	}

	top := segments[0]
	if top == "favicon.ico" {
		return NotFound{}
	}
	if top == "issue" && len(segments) == 3 {
		return d.issue(ctx, segments[1], segments[2])
	}
	if _, ok := d.index.Title(top); ok {
		return d.title(top)
	}
	if top == "page" && len(segments) == 4 {
		return d.page(ctx, segments[1], segments[2], segments[3])
	}
	return d.root()
}

// splitPath splits on '/' and drops empty segments
func splitPath(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

func (d *Dispatcher) root() Response {
	keys := d.index.Keys()
	titles := make([]TitleSummary, 0, len(keys))
	for _, key := range keys {
		t, _ := d.index.Title(key)
		titles = append(titles, TitleSummary{
			Key:          key,
			DisplayTitle: t.DisplayTitle,
			IssueCount:   t.IssueCount,
		})
	}
	return RootListing{Directory: d.index.Root(), Titles: titles}
}

func (d *Dispatcher) title(key string) Response {
	t, _ := d.index.Title(key)
	fileKeys := t.FileKeys()
	issues := make([]IssueLink, 0, len(fileKeys))
	for _, fileKey := range fileKeys {
		path := t.Files[fileKey]
		link := IssueLink{FileKey: fileKey, Name: filepath.Base(path)}
		if info, err := os.Stat(path); err == nil {
			link.Size = humanize.Bytes(uint64(info.Size()))
		}
		issues = append(issues, link)
	}
	return TitleListing{Key: key, DisplayTitle: t.DisplayTitle, Issues: issues}
}

func (d *Dispatcher) issue(ctx context.Context, titleKey, fileKey string) Response {
	pages, ok := d.resolve(ctx, titleKey, fileKey)
	if !ok {
		return NotFound{}
	}
	links := make([]PageLink, len(pages))
	for i, p := range pages {
		links[i] = PageLink{Position: i + 1, Label: filepath.Base(p)}
	}
	return IssueListing{TitleKey: titleKey, FileKey: fileKey, Pages: links}
}

func (d *Dispatcher) page(ctx context.Context, titleKey, fileKey, position string) Response {
	pages, ok := d.resolve(ctx, titleKey, fileKey)
	if !ok {
		return NotFound{}
	}
	n, err := strconv.Atoi(position)
	if err != nil || n < 1 || n > len(pages) {
		return NotFound{}
	}
	page := pages[n-1]
	if !d.resolver.IsExtractedPage(page) {
		return NotFound{}
	}
	return PageContent{FilePath: page}
}

func (d *Dispatcher) resolve(ctx context.Context, titleKey, fileKey string) ([]string, bool) {
	pages, err := d.resolver.Resolve(ctx, titleKey, fileKey)
	if err != nil {
		if !errors.Is(err, archive.ErrNotFound) && ctx.Err() == nil {
			d.logger.Error().
				Err(err).
				Str("title", titleKey).
				Str("file", fileKey).
				Msg("failed to resolve issue")
		}
		return nil, false
	}
	return pages, true
}
