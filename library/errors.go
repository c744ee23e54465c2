package library

import "errors"

var (
	// ErrRootNotFound is returned when the collection root does not exist
	ErrRootNotFound = errors.New("collection root not found")

	// ErrNotDirectory is returned when the collection root is a file
	ErrNotDirectory = errors.New("collection root is not a directory")
)
