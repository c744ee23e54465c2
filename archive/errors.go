package archive

import "errors"

var (
	// ErrNotFound is returned when an issue cannot be resolved to any pages
	ErrNotFound = errors.New("issue not found")

	// ErrUnsupportedFormat is returned for archives that are neither ZIP nor RAR
	ErrUnsupportedFormat = errors.New("unsupported archive format")

	// ErrInvalidArchive is returned when a ZIP archive cannot be read
	ErrInvalidArchive = errors.New("invalid archive")

	// ErrStorageLocked is returned when another process owns the storage directory
	ErrStorageLocked = errors.New("temporary storage is in use by another process")
)
