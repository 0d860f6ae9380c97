package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/ndsborki/loadout-bot/internal/errors"
)

// WeaponType is one entry of the ordered weapon type list
type WeaponType struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Variant is one selectable option for a slot
type Variant struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// typeModules holds the reference data for one weapon type. Slot order is
// the order the slots appear in the backing file.
type typeModules struct {
	slots    []string
	variants map[string][]Variant
}

// Catalog is the static, read-only reference catalog: weapon types, their
// ordered module slots, and each slot's variants. All files are loaded once
// and never reloaded.
type Catalog struct {
	types   []WeaponType
	modules map[string]*typeModules
}

// Load reads types.json and one modules-<key>.json per weapon type from dir.
// Types without a modules file are kept in the type list but ModulesFor will
// report them as unknown.
func Load(ctx context.Context, dir string) (*Catalog, error) {
	data, err := os.ReadFile(filepath.Join(dir, "types.json"))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read weapon type list")
	}

	var types []WeaponType
	if err := json.Unmarshal(data, &types); err != nil {
		return nil, apperrors.WrapWithCode(err, apperrors.CodeCorrupt, "weapon type list is not valid JSON")
	}

	c := &Catalog{
		types:   types,
		modules: make(map[string]*typeModules, len(types)),
	}

	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	for _, wt := range types {
		wt := wt
		g.Go(func() error {
			path := filepath.Join(dir, fmt.Sprintf("modules-%s.json", wt.Key))
			f, err := os.Open(path)
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return apperrors.Wrapf(err, "failed to read modules for type %q", wt.Key)
			}
			defer f.Close() //nolint:errcheck

			tm, err := decodeModules(f)
			if err != nil {
				return apperrors.WrapWithCode(err, apperrors.CodeCorrupt,
					fmt.Sprintf("modules file for type %q is malformed", wt.Key))
			}

			mu.Lock()
			c.modules[wt.Key] = tm
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return c, nil
}

// decodeModules parses {slotName: [{code,label},...]} preserving the order
// the slots appear in the file. encoding/json maps drop key order, so the
// object is walked token by token.
func decodeModules(f *os.File) (*typeModules, error) {
	dec := json.NewDecoder(f)

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	tm := &typeModules{variants: make(map[string][]Variant)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		slot, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected slot name, got %v", keyTok)
		}

		var variants []Variant
		if err := dec.Decode(&variants); err != nil {
			return nil, fmt.Errorf("slot %q: %w", slot, err)
		}

		tm.slots = append(tm.slots, slot)
		tm.variants[slot] = variants
	}

	return tm, nil
}

// WeaponTypes returns the ordered weapon type list for the type keyboard.
func (c *Catalog) WeaponTypes() []WeaponType {
	out := make([]WeaponType, len(c.types))
	copy(out, c.types)
	return out
}

// KeyForLabel resolves a keyboard label back to a weapon type key.
func (c *Catalog) KeyForLabel(label string) (string, bool) {
	for _, wt := range c.types {
		if wt.Label == label {
			return wt.Key, true
		}
	}
	return "", false
}

// LabelFor returns the display label for a weapon type key, falling back to
// the key itself.
func (c *Catalog) LabelFor(key string) string {
	for _, wt := range c.types {
		if wt.Key == key {
			return wt.Label
		}
	}
	return key
}

// ModulesFor returns each slot's variants for a weapon type.
func (c *Catalog) ModulesFor(typeKey string) (map[string][]Variant, error) {
	tm, ok := c.modules[typeKey]
	if !ok {
		return nil, apperrors.NotFoundf("no module data for weapon type %q", typeKey)
	}

	out := make(map[string][]Variant, len(tm.variants))
	for slot, variants := range tm.variants {
		out[slot] = append([]Variant(nil), variants...)
	}
	return out, nil
}

// SlotOrder returns the ordered slot names for a weapon type.
func (c *Catalog) SlotOrder(typeKey string) ([]string, error) {
	tm, ok := c.modules[typeKey]
	if !ok {
		return nil, apperrors.NotFoundf("no module data for weapon type %q", typeKey)
	}
	return append([]string(nil), tm.slots...), nil
}

// TranslationFor flattens all slots' variants into one code->label map for
// rendering. Codes are expected globally unique within a type; on collision
// the last slot wins.
func (c *Catalog) TranslationFor(typeKey string) map[string]string {
	tm, ok := c.modules[typeKey]
	if !ok {
		return map[string]string{}
	}

	out := make(map[string]string)
	for _, slot := range tm.slots {
		for _, v := range tm.variants[slot] {
			out[v.Code] = v.Label
		}
	}
	return out
}

// SlotVariantsFor adapts one type's data to the build validation interface.
func (c *Catalog) SlotVariantsFor(typeKey string) (*TypeSlotVariants, error) {
	tm, ok := c.modules[typeKey]
	if !ok {
		return nil, apperrors.NotFoundf("no module data for weapon type %q", typeKey)
	}
	return &TypeSlotVariants{tm: tm}, nil
}

// TypeSlotVariants exposes one weapon type's legal slots and variant codes.
type TypeSlotVariants struct {
	tm *typeModules
}

// VariantCodes returns the legal variant codes for a slot.
func (t *TypeSlotVariants) VariantCodes(slot string) ([]string, bool) {
	variants, ok := t.tm.variants[slot]
	if !ok {
		return nil, false
	}
	codes := make([]string, len(variants))
	for i, v := range variants {
		codes[i] = v.Code
	}
	return codes, true
}
