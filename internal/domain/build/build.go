package build

import (
	"time"

	apperrors "github.com/ndsborki/loadout-bot/internal/errors"
)

// Category is the closed set of build categories
type Category string

const (
	CategoryTopMeta Category = "top-meta"
	CategoryMeta    Category = "meta"
	CategoryNew     Category = "new"
)

// Categories lists all categories in display order
var Categories = []Category{CategoryTopMeta, CategoryMeta, CategoryNew}

// Label returns the display label for the category
func (c Category) Label() string {
	switch c {
	case CategoryTopMeta:
		return "Top Meta"
	case CategoryMeta:
		return "Meta"
	case CategoryNew:
		return "New"
	}
	return string(c)
}

// CategoryFromLabel resolves a display label back to a category
func CategoryFromLabel(label string) (Category, bool) {
	for _, c := range Categories {
		if c.Label() == label {
			return c, true
		}
	}
	return "", false
}

// ModeWarzone is the single supported game mode
const ModeWarzone = "warzone"

// ModuleCounts are the only legal module set sizes
var ModuleCounts = []int{5, 8}

// ValidModuleCount reports whether n is a legal module set size
func ValidModuleCount(n int) bool {
	for _, c := range ModuleCounts {
		if n == c {
			return true
		}
	}
	return false
}

// Build is a persisted weapon configuration
type Build struct {
	ID         string            `json:"id"`
	WeaponName string            `json:"weapon_name"`
	Role       string            `json:"role"`
	Category   Category          `json:"category"`
	Mode       string            `json:"mode"`
	Type       string            `json:"type"`
	Modules    map[string]string `json:"modules"`
	Image      string            `json:"image"`
	Author     string            `json:"author"`
	CreatedAt  time.Time         `json:"created_at"`
}

// SlotVariants is the reference data a build validates against: for each
// legal slot of the build's type, the set of legal variant codes.
type SlotVariants interface {
	VariantCodes(slot string) ([]string, bool)
}

// Validate checks the build's invariants against the reference catalog
// data for its weapon type.
func (b *Build) Validate(ref SlotVariants) error {
	if b.WeaponName == "" {
		return apperrors.Validation("weapon name is required")
	}
	if b.Type == "" {
		return apperrors.Validation("weapon type is required")
	}
	if _, ok := CategoryFromLabel(b.Category.Label()); !ok {
		return apperrors.Validationf("unknown category %q", b.Category)
	}
	if !ValidModuleCount(len(b.Modules)) {
		return apperrors.Validationf("module count must be 5 or 8, got %d", len(b.Modules))
	}

	for slot, code := range b.Modules {
		codes, ok := ref.VariantCodes(slot)
		if !ok {
			return apperrors.Validationf("slot %q is not valid for type %q", slot, b.Type).
				WithMeta("slot", slot)
		}
		if !contains(codes, code) {
			return apperrors.Validationf("variant %q is not valid for slot %q", code, slot).
				WithMeta("slot", slot).
				WithMeta("variant", code)
		}
	}

	return nil
}

func contains(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
