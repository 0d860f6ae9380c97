package builds

//go:generate mockgen -destination=mock/mock.go -package=mockbuilds -source=interface.go

import (
	"context"

	"github.com/ndsborki/loadout-bot/internal/domain/build"
)

// Repository defines the interface for build record persistence. The
// catalog is small; every operation works on the whole record set.
type Repository interface {
	// Load reads every build record
	Load(ctx context.Context) ([]*build.Build, error)

	// Append stores a new build record
	Append(ctx context.Context, b *build.Build) error

	// Delete removes the record with the given ID
	Delete(ctx context.Context, id string) error
}
