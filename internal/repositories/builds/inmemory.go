package builds

import (
	"context"
	"sync"

	"github.com/ndsborki/loadout-bot/internal/domain/build"
	apperrors "github.com/ndsborki/loadout-bot/internal/errors"
)

// InMemoryRepository is an in-memory implementation of the build repository.
// Useful for testing and development.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records []*build.Build
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Load reads every build record
func (r *InMemoryRepository) Load(ctx context.Context) ([]*build.Build, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Return copies to avoid external modifications
	out := make([]*build.Build, len(r.records))
	for i, b := range r.records {
		bCopy := *b
		out[i] = &bCopy
	}
	return out, nil
}

// Append stores a new build record
func (r *InMemoryRepository) Append(ctx context.Context, b *build.Build) error {
	if b == nil {
		return apperrors.InvalidArgument("build cannot be nil")
	}
	if b.ID == "" {
		return apperrors.InvalidArgument("build ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	bCopy := *b
	r.records = append(r.records, &bCopy)
	return nil
}

// Delete removes the record with the given ID
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidArgument("build ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, b := range r.records {
		if b.ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}

	return apperrors.NotFoundf("build with ID '%s' not found", id).
		WithMeta("build_id", id)
}
