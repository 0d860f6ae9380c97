package build_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndsborki/loadout-bot/internal/domain/build"
	apperrors "github.com/ndsborki/loadout-bot/internal/errors"
)

type fakeSlots map[string][]string

func (f fakeSlots) VariantCodes(slot string) ([]string, bool) {
	codes, ok := f[slot]
	return codes, ok
}

func validBuild() *build.Build {
	return &build.Build{
		ID:         "b-1",
		WeaponName: "Kilo 141",
		Role:       "long range",
		Category:   build.CategoryMeta,
		Mode:       build.ModeWarzone,
		Type:       "assault",
		Modules: map[string]string{
			"muzzle": "monolithic",
			"barrel": "singuard",
			"optic":  "vlk",
			"stock":  "skeleton",
			"ammo":   "60rnd",
		},
	}
}

func refSlots() fakeSlots {
	return fakeSlots{
		"muzzle": {"monolithic", "compensator"},
		"barrel": {"singuard", "prowler"},
		"optic":  {"vlk", "holo"},
		"stock":  {"skeleton", "no_stock"},
		"ammo":   {"60rnd", "50rnd"},
		"grip":   {"commando", "ranger"},
		"laser":  {"tac_laser"},
		"perk":   {"sleight"},
	}
}

func TestValidateOK(t *testing.T) {
	require.NoError(t, validBuild().Validate(refSlots()))
}

func TestValidateModuleCount(t *testing.T) {
	b := validBuild()
	delete(b.Modules, "ammo")

	err := b.Validate(refSlots())
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestValidateUnknownSlot(t *testing.T) {
	b := validBuild()
	delete(b.Modules, "ammo")
	b.Modules["underbarrel"] = "grenade"

	err := b.Validate(refSlots())
	require.Error(t, err)
	assert.Equal(t, "underbarrel", apperrors.GetMeta(err)["slot"])
}

func TestValidateUnknownVariant(t *testing.T) {
	b := validBuild()
	b.Modules["optic"] = "thermal"

	err := b.Validate(refSlots())
	require.Error(t, err)
	assert.Equal(t, "thermal", apperrors.GetMeta(err)["variant"])
}

func TestValidateMissingName(t *testing.T) {
	b := validBuild()
	b.WeaponName = ""
	assert.Error(t, b.Validate(refSlots()))
}

func TestCategoryLabelRoundTrip(t *testing.T) {
	for _, c := range build.Categories {
		got, ok := build.CategoryFromLabel(c.Label())
		require.True(t, ok, c.Label())
		assert.Equal(t, c, got)
	}

	_, ok := build.CategoryFromLabel("Legendary")
	assert.False(t, ok)
}

func TestValidModuleCount(t *testing.T) {
	assert.True(t, build.ValidModuleCount(5))
	assert.True(t, build.ValidModuleCount(8))
	assert.False(t, build.ValidModuleCount(0))
	assert.False(t, build.ValidModuleCount(7))
}
