// Package storage keeps personnel photos on disk.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown photo ids.
var ErrNotFound = errors.New("file not found")

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	PersonID    int64     `json:"person_id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // relative to the storage root
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the photo storage operations
type Storage interface {
	// Save stores a file for a person and returns its metadata
	Save(ctx context.Context, personID int64, filename string, r io.Reader) (*FileInfo, error)

	// Open returns a reader for a stored file
	Open(ctx context.Context, personID int64, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error)

	// Delete removes a file
	Delete(ctx context.Context, personID int64, fileID uuid.UUID) error

	// List returns the files of a person, oldest first
	List(ctx context.Context, personID int64) ([]*FileInfo, error)

	// Info returns metadata for a file
	Info(ctx context.Context, personID int64, fileID uuid.UUID) (*FileInfo, error)
}
