package session

import (
	"github.com/ndsborki/loadout-bot/internal/domain/build"
	"github.com/ndsborki/loadout-bot/internal/refdata"
)

// Wizard tags the workflow a session is currently inside
type Wizard int

const (
	WizardNone Wizard = iota
	WizardCreate
	WizardBrowse
	WizardDelete
)

// CreateStep enumerates the creation wizard's steps
type CreateStep int

const (
	CreateStepWeaponName CreateStep = iota
	CreateStepRole
	CreateStepCategory
	CreateStepMode
	CreateStepTypeChoice
	CreateStepModuleCount
	CreateStepModuleSelect
	CreateStepImageUpload
	CreateStepConfirmation
	CreateStepPostConfirm
)

// BrowseStep enumerates the browse wizard's steps
type BrowseStep int

const (
	BrowseStepCategorySelect BrowseStep = iota
	BrowseStepType
	BrowseStepWeapon
	BrowseStepSetCount
	BrowseStepDisplay
)

// DeleteStep enumerates the delete wizard's steps
type DeleteStep int

const (
	DeleteStepEnterID DeleteStep = iota
	DeleteStepConfirm
)

// CreateState accumulates the creation wizard's fields
type CreateState struct {
	Step CreateStep

	// BuildID is assigned when the image arrives so the asset can be
	// stored under the record's eventual ID.
	BuildID string

	WeaponName  string
	Role        string
	Category    build.Category
	Mode        string
	TypeKey     string
	TargetCount int

	// ModuleOptions is the ordered slot list for TypeKey; Selected and
	// Detailed track the two-phase module selection loop.
	ModuleOptions []string
	Variants      map[string][]refdata.Variant
	Selected      []string
	Detailed      map[string]string
	CurrentSlot   string

	ImagePath string
}

// RemainingSlots returns the not-yet-selected slots in catalog order.
func (s *CreateState) RemainingSlots() []string {
	var out []string
	for _, slot := range s.ModuleOptions {
		if !s.IsSelected(slot) {
			out = append(out, slot)
		}
	}
	return out
}

// IsSelected reports whether a slot has already been resolved to a variant.
func (s *CreateState) IsSelected(slot string) bool {
	for _, sel := range s.Selected {
		if sel == slot {
			return true
		}
	}
	return false
}

// KnownSlot reports whether a slot name belongs to the chosen weapon type.
func (s *CreateState) KnownSlot(slot string) bool {
	for _, opt := range s.ModuleOptions {
		if opt == slot {
			return true
		}
	}
	return false
}

// BrowseState accumulates the browse wizard's filter and cursor
type BrowseState struct {
	Step BrowseStep

	Category build.Category
	TypeKey  string
	Weapon   string
	Count    int

	Results []*build.Build
	Index   int
}

// DeleteTarget remembers what a positional identifier pointed at when the
// list was rendered.
type DeleteTarget struct {
	BuildID    string
	WeaponName string
}

// DeleteState holds the delete wizard's per-session identifier map
type DeleteState struct {
	Step DeleteStep

	IDMap     map[string]DeleteTarget
	PendingID string
}

// Session is the per-user ephemeral state: the active wizard and its
// accumulated data. Exactly one of Create/Browse/Delete is non-nil while a
// wizard is active. Sessions are owned by the Manager and never shared
// across users.
type Session struct {
	UserID string
	Wizard Wizard

	Create *CreateState
	Browse *BrowseState
	Delete *DeleteState
}

// Reset clears all wizard state
func (s *Session) Reset() {
	s.Wizard = WizardNone
	s.Create = nil
	s.Browse = nil
	s.Delete = nil
}

// IsActive reports whether the given wizard is in progress
func (s *Session) IsActive(w Wizard) bool {
	return s.Wizard == w
}

// StartCreate resets the session into a fresh creation wizard
func (s *Session) StartCreate() *CreateState {
	s.Reset()
	s.Wizard = WizardCreate
	s.Create = &CreateState{Step: CreateStepWeaponName}
	return s.Create
}

// StartBrowse resets the session into a fresh browse wizard
func (s *Session) StartBrowse() *BrowseState {
	s.Reset()
	s.Wizard = WizardBrowse
	s.Browse = &BrowseState{Step: BrowseStepCategorySelect}
	return s.Browse
}

// StartDelete resets the session into a fresh delete wizard
func (s *Session) StartDelete() *DeleteState {
	s.Reset()
	s.Wizard = WizardDelete
	s.Delete = &DeleteState{Step: DeleteStepEnterID}
	return s.Delete
}
