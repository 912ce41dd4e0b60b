package files

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to the API layer. Handlers map these onto HTTP
// status codes; everything else is a server error.
var (
	ErrInvalidName      = errors.New("invalid file name")
	ErrUnsupportedImage = errors.New("unsupported image")
	ErrNotFound         = errors.New("file not found")
)

// StorageError wraps an I/O failure from the blob store or the repository.
type StorageError struct {
	Op   string // "put", "get", "delete", "save", "find", "list"
	Name string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
