package builds

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/ndsborki/loadout-bot/internal/domain/build"
	apperrors "github.com/ndsborki/loadout-bot/internal/errors"
)

// FileRepository stores all build records in a single JSON array file.
// Mutations are whole-file read-modify-write; a mutex serializes writers so
// concurrent wizard commits cannot lose updates, and each write lands via
// temp file + rename so a crash cannot truncate the store.
type FileRepository struct {
	mu   sync.Mutex
	path string
}

// NewFileRepository creates a repository backed by the given file path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Load reads every build record. A missing file is an empty catalog.
func (r *FileRepository) Load(ctx context.Context) ([]*build.Build, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked()
}

// Append stores a new build record.
func (r *FileRepository) Append(ctx context.Context, b *build.Build) error {
	if b == nil {
		return apperrors.InvalidArgument("build cannot be nil")
	}
	if b.ID == "" {
		return apperrors.InvalidArgument("build ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.loadLocked()
	if err != nil {
		return err
	}

	bCopy := *b
	records = append(records, &bCopy)
	return r.writeLocked(records)
}

// Delete removes the record with the given ID.
func (r *FileRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidArgument("build ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.loadLocked()
	if err != nil {
		return err
	}

	kept := make([]*build.Build, 0, len(records))
	found := false
	for _, b := range records {
		if b.ID == id {
			found = true
			continue
		}
		kept = append(kept, b)
	}
	if !found {
		return apperrors.NotFoundf("build with ID '%s' not found", id).
			WithMeta("build_id", id)
	}

	return r.writeLocked(kept)
}

func (r *FileRepository) loadLocked() ([]*build.Build, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []*build.Build{}, nil
		}
		return nil, apperrors.Wrap(err, "failed to read build store")
	}

	var records []*build.Build
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, apperrors.WrapWithCode(err, apperrors.CodeCorrupt, "build store is not a valid JSON array")
	}

	for i, b := range records {
		if b == nil || b.WeaponName == "" || b.Type == "" || b.Modules == nil {
			return nil, apperrors.Corruptf("build store record %d is missing required fields", i)
		}
	}

	return records, nil
}

func (r *FileRepository) writeLocked(records []*build.Build) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, "failed to encode build store")
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.Wrap(err, "failed to create store directory")
	}

	tmp, err := os.CreateTemp(dir, ".builds-*.json")
	if err != nil {
		return apperrors.Wrap(err, "failed to create temp store file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return apperrors.Wrap(err, "failed to write build store")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return apperrors.Wrap(err, "failed to close temp store file")
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)
		return apperrors.Wrap(err, "failed to replace build store")
	}
	return nil
}
