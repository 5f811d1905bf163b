package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStorage implements Storage using the local filesystem. Files of a
// person live under <base>/<personID>/ with their metadata in .meta/.
type LocalStorage struct {
	basePath string
}

var _ Storage = (*LocalStorage)(nil)

// NewLocalStorage roots the photo store at basePath, creating it when
// missing.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create photo root %s: %w", basePath, err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

func (s *LocalStorage) personDir(personID int64) string {
	return filepath.Join(s.basePath, strconv.FormatInt(personID, 10))
}

func (s *LocalStorage) metaPath(personID int64, fileID uuid.UUID) string {
	return filepath.Join(s.personDir(personID), ".meta", fileID.String()+".json")
}

// Abs returns the filesystem path of a stored file.
func (s *LocalStorage) Abs(info *FileInfo) string {
	return filepath.Join(s.basePath, info.Path)
}

// Save stores a file and returns its metadata
func (s *LocalStorage) Save(ctx context.Context, personID int64, filename string, r io.Reader) (*FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fileID := uuid.New()

	dir := s.personDir(personID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create person directory: %w", err)
	}

	// Short id prefix keeps two uploads of the same name apart.
	stored := fmt.Sprintf("%s_%s", fileID.String()[:8], sanitizeFilename(filepath.Base(filename)))
	filePath := filepath.Join(dir, stored)

	br := bufio.NewReader(r)
	head, _ := br.Peek(512)
	contentType := http.DetectContentType(head)

	dst, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create photo %s: %w", stored, err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, br)
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to write photo %s: %w", stored, err)
	}

	info := &FileInfo{
		ID:          fileID,
		PersonID:    personID,
		Name:        filename,
		Size:        size,
		ContentType: contentType,
		Path:        filepath.Join(strconv.FormatInt(personID, 10), stored),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.writeMeta(info); err != nil {
		os.Remove(filePath)
		return nil, err
	}
	return info, nil
}

// Open returns a reader for a stored file
func (s *LocalStorage) Open(ctx context.Context, personID int64, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error) {
	info, err := s.Info(ctx, personID, fileID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := os.Open(s.Abs(info))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open photo %s: %w", fileID, err)
	}
	return rc, info, nil
}

// Delete removes a file and its metadata
func (s *LocalStorage) Delete(ctx context.Context, personID int64, fileID uuid.UUID) error {
	info, err := s.Info(ctx, personID, fileID)
	if err != nil {
		return err
	}

	if err := os.Remove(s.Abs(info)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete photo %s: %w", fileID, err)
	}
	if err := os.Remove(s.metaPath(personID, fileID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}

	return nil
}

// List returns all files of a person, oldest first
func (s *LocalStorage) List(ctx context.Context, personID int64) ([]*FileInfo, error) {
	entries, err := os.ReadDir(filepath.Join(s.personDir(personID), ".meta"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list photos of %d: %w", personID, err)
	}

	var photos []*FileInfo
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok {
			continue
		}
		id, err := uuid.Parse(name)
		if err != nil {
			continue
		}
		// Sidecars whose photo vanished are skipped, not fatal.
		if info, err := s.Info(ctx, personID, id); err == nil {
			photos = append(photos, info)
		}
	}

	sort.SliceStable(photos, func(i, j int) bool {
		return photos[i].CreatedAt.Before(photos[j].CreatedAt)
	})
	return photos, nil
}

// Info returns metadata for a file
func (s *LocalStorage) Info(ctx context.Context, personID int64, fileID uuid.UUID) (*FileInfo, error) {
	raw, err := os.ReadFile(s.metaPath(personID, fileID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, fileID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sidecar of %s: %w", fileID, err)
	}

	info := new(FileInfo)
	if err := json.Unmarshal(raw, info); err != nil {
		return nil, fmt.Errorf("failed to decode sidecar of %s: %w", fileID, err)
	}
	return info, nil
}

func (s *LocalStorage) writeMeta(info *FileInfo) error {
	path := s.metaPath(info.PersonID, info.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create sidecar directory: %w", err)
	}

	raw, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sidecar of %s: %w", info.ID, err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write sidecar of %s: %w", info.ID, err)
	}
	return nil
}

// unsafeName maps characters unsafe in stored file names to "_".
var unsafeName = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	"..", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "_",
)

// sanitizeFilename makes an uploaded name safe to store; an empty name
// becomes "foto".
func sanitizeFilename(name string) string {
	if s := unsafeName.Replace(strings.TrimSpace(name)); s != "" {
		return s
	}
	return "foto"
}
