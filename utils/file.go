package utils

import (
	"path/filepath"
	"strings"
)

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".html": "text/html; charset=utf-8",
	".txt":  "text/plain; charset=utf-8",
}

// DetectMimeType detects MIME type based on file extension.
// Unknown extensions are served as plain text.
func DetectMimeType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if mimeType, ok := mimeTypes[ext]; ok {
		return mimeType
	}
	return "text/plain"
}
