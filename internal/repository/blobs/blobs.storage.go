// FilePath: internal/repository/blobs/blobs.storage.go
package blobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fieldworks/meterhub/internal/errors"
	"github.com/google/uuid"
	nuts "github.com/vaudience/go-nuts"
)

const (
	defaultPermissions = 0755
	jpegExtension      = ".jpg"
	pngExtension       = ".png"
)

// Config holds configuration for the blob store
type Config struct {
	BasePath    string
	BaseURL     string
	MaxFileSize int64
	AllowedMime []string
}

// Store implements the repository.BlobRepository interface on the local
// filesystem. Paths are relative to BasePath; public URLs are served by
// the photos resource.
type Store struct {
	config Config
}

// NewStore creates a new blob store rooted at the configured base path
func NewStore(config Config) (*Store, error) {
	if err := createDirectoryIfNotExists(config.BasePath); err != nil {
		return nil, err
	}
	return &Store{config: config}, nil
}

func (s *Store) Upload(ctx context.Context, path string, data []byte, mimeType string) error {
	if int64(len(data)) > s.config.MaxFileSize {
		return errors.NewValidationError("file size exceeds maximum allowed size", nil)
	}
	if !s.isAllowedMimeType(mimeType) {
		return errors.NewValidationError("unsupported file type", nil)
	}
	if !isSafePath(path) {
		return errors.NewValidationError("invalid storage path", nil)
	}

	fullPath := filepath.Join(s.config.BasePath, filepath.FromSlash(path))
	if err := createDirectoryIfNotExists(filepath.Dir(fullPath)); err != nil {
		return err
	}

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return errors.NewUploadError("failed to store blob", err)
	}

	nuts.L.Infof("[BlobStore] Stored blob: %s (%d bytes)", path, len(data))
	return nil
}

func (s *Store) PublicURL(path string) string {
	return fmt.Sprintf("%s/api/v1/photos/%s", strings.TrimRight(s.config.BaseURL, "/"), path)
}

func (s *Store) Delete(ctx context.Context, path string) error {
	if !isSafePath(path) {
		return errors.NewValidationError("invalid storage path", nil)
	}
	err := os.Remove(filepath.Join(s.config.BasePath, filepath.FromSlash(path)))
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("blob not found", err)
		}
		return errors.NewInternalError("failed to delete blob", err)
	}
	return nil
}

func (s *Store) Open(ctx context.Context, path string) ([]byte, error) {
	if !isSafePath(path) {
		return nil, errors.NewValidationError("invalid storage path", nil)
	}
	data, err := os.ReadFile(filepath.Join(s.config.BasePath, filepath.FromSlash(path)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("blob not found", err)
		}
		return nil, errors.NewInternalError("failed to read blob", err)
	}
	return data, nil
}

// PhotoPath builds a storage path namespaced by owner with a
// collision-resistant suffix, for example
// meters/u1/20240115_143000_1b4e28ba.jpg
func PhotoPath(folder, ownerID, mimeType string, now time.Time) string {
	ext := jpegExtension
	if mimeType == "image/png" {
		ext = pngExtension
	}
	token := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%s/%s/%s_%s%s", folder, ownerID, now.Format("20060102_150405"), token, ext)
}

func (s *Store) isAllowedMimeType(mimeType string) bool {
	for _, allowed := range s.config.AllowedMime {
		if allowed == mimeType {
			return true
		}
	}
	return false
}

func isSafePath(path string) bool {
	if path == "" || strings.HasPrefix(path, "/") {
		return false
	}
	for _, part := range strings.Split(path, "/") {
		if part == ".." || part == "" {
			return false
		}
	}
	return true
}

func createDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		err := os.MkdirAll(path, defaultPermissions)
		if err != nil {
			return errors.NewInternalError("failed to create directory", err)
		}
	}
	return nil
}
