package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mpetrov/imgstash/internal/files"
	_ "modernc.org/sqlite"
)

// Repository implements files.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// NewRepository opens the database and initializes the schema
func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db}

	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return repo, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) initSchema() error {
	// name is the primary key: one record per stored blob.
	createTableQuery := `
	CREATE TABLE IF NOT EXISTS file_records (
		name TEXT PRIMARY KEY,
		storage_path TEXT NOT NULL,
		size_bytes INTEGER NOT NULL,
		uploaded_at DATETIME NOT NULL
	);`
	if _, err := r.db.Exec(createTableQuery); err != nil {
		return fmt.Errorf("failed to create file_records table: %w", err)
	}

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_file_records_uploaded_at ON file_records(uploaded_at);
	`
	if _, err := r.db.Exec(createIndexQuery); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// Save stores a record, replacing any existing record with the same name
func (r *Repository) Save(ctx context.Context, record *files.FileRecord) error {
	query := `
	INSERT INTO file_records (name, storage_path, size_bytes, uploaded_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
		storage_path = excluded.storage_path,
		size_bytes = excluded.size_bytes,
		uploaded_at = excluded.uploaded_at
	`

	_, err := r.db.ExecContext(ctx, query,
		record.Name,
		record.StoragePath,
		record.SizeBytes,
		record.UploadedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save file record: %w", err)
	}

	return nil
}

// FindByName retrieves a record by name
func (r *Repository) FindByName(ctx context.Context, name string) (*files.FileRecord, error) {
	query := `
	SELECT name, storage_path, size_bytes, uploaded_at
	FROM file_records
	WHERE name = ?
	`

	var record files.FileRecord
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&record.Name,
		&record.StoragePath,
		&record.SizeBytes,
		&record.UploadedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, files.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find file record: %w", err)
	}

	return &record, nil
}

// FindAll retrieves all records, newest first
func (r *Repository) FindAll(ctx context.Context) ([]files.FileRecord, error) {
	query := `
	SELECT name, storage_path, size_bytes, uploaded_at
	FROM file_records
	ORDER BY uploaded_at DESC, name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query file records: %w", err)
	}
	defer rows.Close()

	var records []files.FileRecord
	for rows.Next() {
		var record files.FileRecord
		err := rows.Scan(
			&record.Name,
			&record.StoragePath,
			&record.SizeBytes,
			&record.UploadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file record row: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file record rows: %w", err)
	}

	return records, nil
}

// Delete removes a record by name
func (r *Repository) Delete(ctx context.Context, name string) error {
	query := `DELETE FROM file_records WHERE name = ?`

	result, err := r.db.ExecContext(ctx, query, name)
	if err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return files.ErrNotFound
	}

	return nil
}
