package files

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Service provides application-level file operations
type Service struct {
	repo       Repository
	blobs      BlobStore
	normalizer Normalizer
	cache      *resultCache
	locks      *nameLocks
}

// NewService creates a new file service
func NewService(repo Repository, blobs BlobStore, normalizer Normalizer) *Service {
	return &Service{
		repo:       repo,
		blobs:      blobs,
		normalizer: normalizer,
		cache:      newResultCache(),
		locks:      newNameLocks(),
	}
}

// Store normalizes the uploaded image, writes the blob, and records its
// metadata. Re-uploading an existing name overwrites the blob and replaces
// the record. Returns the sanitized name the file was stored under.
func (s *Service) Store(ctx context.Context, declaredName string, raw []byte) (string, error) {
	name, err := SanitizeName(declaredName)
	if err != nil {
		return "", err
	}

	normalized, err := s.normalizer.Normalize(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	s.locks.Lock(name)
	defer s.locks.Unlock(name)

	path, err := s.blobs.Put(name, normalized)
	if err != nil {
		return "", &StorageError{Op: "put", Name: name, Err: err}
	}

	record := &FileRecord{
		Name:        name,
		StoragePath: path,
		SizeBytes:   int64(len(normalized)),
		UploadedAt:  time.Now().UTC(),
	}

	if err := s.repo.Save(ctx, record); err != nil {
		// Remove the blob so a failed metadata write leaves no orphan.
		s.blobs.Delete(name)
		return "", &StorageError{Op: "save", Name: name, Err: err}
	}

	s.cache.Invalidate()

	return name, nil
}

// Delete removes the blob and the metadata record for a name.
func (s *Service) Delete(ctx context.Context, name string) error {
	name, err := SanitizeName(name)
	if err != nil {
		return err
	}

	s.locks.Lock(name)
	defer s.locks.Unlock(name)

	if _, err := s.repo.FindByName(ctx, name); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return &StorageError{Op: "find", Name: name, Err: err}
	}

	if err := s.blobs.Delete(name); err != nil {
		return &StorageError{Op: "delete", Name: name, Err: err}
	}

	if err := s.repo.Delete(ctx, name); err != nil {
		return &StorageError{Op: "delete", Name: name, Err: err}
	}

	s.cache.Invalidate()

	return nil
}

// Download returns the metadata record and the stored bytes for a name.
func (s *Service) Download(ctx context.Context, name string) (*FileRecord, []byte, error) {
	name, err := SanitizeName(name)
	if err != nil {
		return nil, nil, err
	}

	record, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, err
		}
		return nil, nil, &StorageError{Op: "find", Name: name, Err: err}
	}

	data, err := s.blobs.Get(name)
	if err != nil {
		return nil, nil, &StorageError{Op: "get", Name: name, Err: err}
	}

	return record, data, nil
}

// List returns the metadata of all stored files, served from the cache
// when no mutation has happened since the last call.
func (s *Service) List(ctx context.Context) ([]FileRecord, error) {
	cached, gen, ok := s.cache.List()
	if ok {
		return cached, nil
	}

	list, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	if list == nil {
		list = []FileRecord{}
	}

	s.cache.SetList(list, gen)

	return list, nil
}

// Summary returns the aggregate over all stored files, served from the
// cache when no mutation has happened since the last call.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	cached, gen, ok := s.cache.Summary()
	if ok {
		return cached, nil
	}

	list, err := s.repo.FindAll(ctx)
	if err != nil {
		return Summary{}, &StorageError{Op: "list", Err: err}
	}

	summary := Summary{TotalFiles: int64(len(list))}
	for _, record := range list {
		summary.TotalStorage += record.SizeBytes
	}

	s.cache.SetSummary(summary, gen)

	return summary, nil
}
