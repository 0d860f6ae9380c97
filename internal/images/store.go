package images

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	apperrors "github.com/ndsborki/loadout-bot/internal/errors"
)

// Store writes one image asset per build record, named by record ID so two
// builds for the same weapon never clobber each other's image.
type Store struct {
	dir string
}

// NewStore creates an image store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes the image for the given record ID and returns its path.
func (s *Store) Save(ctx context.Context, id string, r io.Reader) (string, error) {
	if id == "" {
		return "", apperrors.InvalidArgument("record ID is required")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", apperrors.Wrap(err, "failed to create images directory")
	}

	path := s.Path(id)
	tmp, err := os.CreateTemp(s.dir, ".img-*")
	if err != nil {
		return "", apperrors.Wrap(err, "failed to create temp image file")
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", apperrors.Wrap(err, "failed to write image")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", apperrors.Wrap(err, "failed to close image file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return "", apperrors.Wrap(err, "failed to store image")
	}

	return path, nil
}

// Path returns where the image for a record ID lives.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s.jpg", id))
}

// Exists reports whether the asset at path is present.
func Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
