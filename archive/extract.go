package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mholt/archives"
	"github.com/rs/zerolog"
)

// pageNamePattern selects archive entries that are served as pages.
// Only JPEG names match; PNG and GIF pages are not picked up.
var pageNamePattern = regexp.MustCompile(`(?i).jpe?g`)

// IsPageName reports whether an archive entry name looks like a page image
func IsPageName(name string) bool {
	return pageNamePattern.MatchString(name)
}

// FilterPageNames keeps the entry names that look like page images, in order
func FilterPageNames(names []string) []string {
	var pages []string
	for _, name := range names {
		if IsPageName(name) {
			pages = append(pages, name)
		}
	}
	return pages
}

// extractorFor picks the archive format from the file extension
func extractorFor(archivePath string) (archives.Extractor, error) {
	switch strings.ToLower(filepath.Ext(archivePath)) {
	case ".cbz":
		return archives.Zip{}, nil
	case ".cbr":
		return archives.Rar{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(archivePath))
	}
}

// extractPages writes every page entry of the archive into destDir and returns
// the written paths in archive order. Each page gets its own numbered
// subdirectory, so entries sharing a base name in different archive folders
// stay distinct. A page that cannot be written is logged and skipped; only a
// failure to read the archive itself is returned.
func extractPages(ctx context.Context, ex archives.Extractor, archivePath, destDir string, logger zerolog.Logger) ([]string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("create issue directory: %w", err)
	}

	var (
		pages    []string
		total    int64
		position int
	)
	err = ex.Extract(ctx, f, func(ctx context.Context, entry archives.FileInfo) error {
		if entry.IsDir() || !IsPageName(entry.NameInArchive) {
			return nil
		}

		position++
		savePath := filepath.Join(destDir, pageSlot(position), path.Base(entry.NameInArchive))
		n, err := writeEntry(entry, savePath)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("path", savePath).
				Str("entry", entry.NameInArchive).
				Msg("unable to write page")
			return nil
		}

		total += n
		pages = append(pages, savePath)
		return nil
	})
	if err != nil {
		return pages, err
	}

	logger.Debug().
		Str("archive", archivePath).
		Int("pages", len(pages)).
		Str("size", humanize.Bytes(uint64(total))).
		Msg("archive extracted")

	return pages, nil
}

// pageSlot names the subdirectory holding the n-th page entry
func pageSlot(n int) string {
	return fmt.Sprintf("%04d", n)
}

// writeEntry copies one archive entry to savePath
func writeEntry(entry archives.FileInfo, savePath string) (int64, error) {
	src, err := entry.Open()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(savePath), 0755); err != nil {
		return 0, err
	}

	dst, err := os.Create(savePath)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(savePath)
		return 0, err
	}
	return n, nil
}
