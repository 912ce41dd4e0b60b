package files

import (
	"context"
	"path/filepath"
	"strings"
	"time"
)

// FileRecord is the metadata of one stored file
type FileRecord struct {
	Name        string    `json:"name"`
	StoragePath string    `json:"storagePath"`
	SizeBytes   int64     `json:"sizeBytes"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// Summary is the aggregate view over all stored files
type Summary struct {
	TotalFiles   int64 `json:"totalFiles"`
	TotalStorage int64 `json:"totalStorage"`
}

// Repository defines the interface for file metadata persistence
type Repository interface {
	// Save stores a record, replacing any existing record with the same name
	Save(ctx context.Context, record *FileRecord) error

	// FindByName retrieves a record by name, ErrNotFound if absent
	FindByName(ctx context.Context, name string) (*FileRecord, error)

	// FindAll retrieves all records in a stable order
	FindAll(ctx context.Context) ([]FileRecord, error)

	// Delete removes a record by name, ErrNotFound if absent
	Delete(ctx context.Context, name string) error
}

// BlobStore defines the interface for the physical file storage
type BlobStore interface {
	// Put writes the blob and returns its absolute path on disk
	Put(name string, data []byte) (string, error)

	// Get reads the blob back
	Get(name string) ([]byte, error)

	// Delete removes the blob; an already-absent blob is not an error
	Delete(name string) error
}

// Normalizer transforms uploaded image bytes before storage
type Normalizer interface {
	Normalize(data []byte) ([]byte, error)
}

// SanitizeName validates a client-supplied file name and strips any
// directory prefix. Names carrying a path-traversal sequence are rejected
// before any filesystem or database access.
func SanitizeName(declared string) (string, error) {
	name := strings.TrimSpace(declared)
	if name == "" {
		return "", ErrInvalidName
	}
	if strings.Contains(name, "..") {
		return "", ErrInvalidName
	}
	name = filepath.Base(filepath.Clean(name))
	if name == "." || name == string(filepath.Separator) {
		return "", ErrInvalidName
	}
	return name, nil
}
