// Package evidence stores delivery photos on the local filesystem. The
// HTTP server exposes the directory under /evidence.
package evidence

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"lastmile/internal/pkg/errs"

	"github.com/google/uuid"
)

// PathPrefix is the URL path the directory is served under.
const PathPrefix = "/evidence"

// MaxFileSize bounds one stored photo.
const MaxFileSize = 15 << 20

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".heic": {},
}

// ErrFileTooLarge is returned when a photo exceeds MaxFileSize.
var ErrFileTooLarge = errs.NewValueIsOutOfRangeError("photo size", MaxFileSize+1, 1, MaxFileSize)

// FileSystemStore implements ports.EvidenceStore.
type FileSystemStore struct {
	dir     string
	baseURL string
}

// NewFileSystemStore writes into dir and builds URLs on publicBaseURL.
func NewFileSystemStore(dir, publicBaseURL string) (*FileSystemStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating evidence dir: %w", err)
	}
	return &FileSystemStore{dir: dir, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Dir is the directory the files live in.
func (s *FileSystemStore) Dir() string {
	return s.dir
}

// Save writes content under a random name that keeps the original image
// extension, or .jpg for anything else. A partial file is removed.
func (s *FileSystemStore) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		ext = ".jpg"
	}
	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}

	n, err := io.Copy(f, io.LimitReader(content, MaxFileSize+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && n > MaxFileSize {
		err = ErrFileTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}

	return s.baseURL + PathPrefix + "/" + name, nil
}
