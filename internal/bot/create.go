package bot

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/ndsborki/loadout-bot/internal/domain/build"
	apperrors "github.com/ndsborki/loadout-bot/internal/errors"
	"github.com/ndsborki/loadout-bot/internal/gateway"
	"github.com/ndsborki/loadout-bot/internal/images"
	"github.com/ndsborki/loadout-bot/internal/refdata"
	"github.com/ndsborki/loadout-bot/internal/session"
)

// enterCreate starts the creation wizard. Allow-list gated.
func (b *Bot) enterCreate(ctx context.Context, s *session.Session, ev gateway.Event) error {
	if !b.allowed(ev.UserID) {
		b.sendText(ctx, ev.UserID, "❌ You don't have permission to add builds.", b.mainMenu(ev.UserID))
		return nil
	}

	s.StartCreate()
	b.sendText(ctx, ev.UserID, "Enter the weapon name:", nil)
	return nil
}

// handleCreate advances the creation wizard by one event. Every step either
// advances or re-prompts; unknown steps are a programming error.
func (b *Bot) handleCreate(ctx context.Context, s *session.Session, ev gateway.Event) error {
	st := s.Create

	switch st.Step {
	case session.CreateStepWeaponName:
		return b.createWeaponName(ctx, st, ev)
	case session.CreateStepRole:
		return b.createRole(ctx, st, ev)
	case session.CreateStepCategory:
		return b.createCategory(ctx, st, ev)
	case session.CreateStepMode:
		return b.createMode(ctx, st, ev)
	case session.CreateStepTypeChoice:
		return b.createTypeChoice(ctx, st, ev)
	case session.CreateStepModuleCount:
		return b.createModuleCount(ctx, st, ev)
	case session.CreateStepModuleSelect:
		return b.createModuleSelect(ctx, st, ev)
	case session.CreateStepImageUpload:
		return b.createImageUpload(ctx, st, ev)
	case session.CreateStepConfirmation:
		return b.createConfirmation(ctx, s, ev)
	case session.CreateStepPostConfirm:
		return b.createPostConfirm(ctx, s, ev)
	default:
		return apperrors.Internalf("unhandled create step %d", st.Step)
	}
}

func (b *Bot) createWeaponName(ctx context.Context, st *session.CreateState, ev gateway.Event) error {
	if ev.Kind != gateway.KindText || ev.Text == "" {
		b.sendText(ctx, ev.UserID, "Please enter the weapon name as text.", nil)
		return nil
	}

	st.WeaponName = ev.Text
	st.Step = session.CreateStepRole
	b.sendText(ctx, ev.UserID, "Now enter the weapon's range:", nil)
	return nil
}

func (b *Bot) createRole(ctx context.Context, st *session.CreateState, ev gateway.Event) error {
	if ev.Kind != gateway.KindText || ev.Text == "" {
		b.sendText(ctx, ev.UserID, "Please enter the range as text.", nil)
		return nil
	}

	st.Role = ev.Text
	st.Step = session.CreateStepCategory
	b.sendText(ctx, ev.UserID, "Choose the build category:", withMainMenu(singleRows(categoryLabels())))
	return nil
}

func (b *Bot) createCategory(ctx context.Context, st *session.CreateState, ev gateway.Event) error {
	cat, ok := build.CategoryFromLabel(ev.Text)
	if ev.Kind != gateway.KindText || !ok {
		b.sendText(ctx, ev.UserID, "Please pick a category from the keyboard.", withMainMenu(singleRows(categoryLabels())))
		return nil
	}

	st.Category = cat
	st.Step = session.CreateStepMode
	b.sendText(ctx, ev.UserID, "Choose the mode:", gateway.NewKeyboard([]string{modeLabel}))
	return nil
}

func (b *Bot) createMode(ctx context.Context, st *session.CreateState, ev gateway.Event) error {
	if ev.Kind != gateway.KindText || ev.Text != modeLabel {
		b.sendText(ctx, ev.UserID, "Please pick the mode from the keyboard.", gateway.NewKeyboard([]string{modeLabel}))
		return nil
	}

	st.Mode = build.ModeWarzone
	st.Step = session.CreateStepTypeChoice
	b.sendText(ctx, ev.UserID, "Choose the weapon type:", gateway.NewKeyboard(pairRows(b.typeLabels())...))
	return nil
}

func (b *Bot) createTypeChoice(ctx context.Context, st *session.CreateState, ev gateway.Event) error {
	key, ok := b.ref.KeyForLabel(ev.Text)
	if ev.Kind != gateway.KindText || !ok {
		b.sendText(ctx, ev.UserID, "Please pick a weapon type from the keyboard.", gateway.NewKeyboard(pairRows(b.typeLabels())...))
		return nil
	}

	slots, err := b.ref.SlotOrder(key)
	if err != nil {
		// ReferenceMissing: report, stay on this step.
		b.log.Warn("no module data for weapon type", zap.String("type", key))
		b.sendText(ctx, ev.UserID, "❌ Modules for this weapon type aren't configured yet. Pick another type.", gateway.NewKeyboard(pairRows(b.typeLabels())...))
		return nil
	}
	variants, err := b.ref.ModulesFor(key)
	if err != nil {
		return err
	}

	st.TypeKey = key
	st.ModuleOptions = slots
	st.Variants = variants
	st.Step = session.CreateStepModuleCount
	b.sendText(ctx, ev.UserID, "How many modules?", gateway.NewKeyboard([]string{"5"}, []string{"8"}))
	return nil
}

func (b *Bot) createModuleCount(ctx context.Context, st *session.CreateState, ev gateway.Event) error {
	count, err := strconv.Atoi(ev.Text)
	if ev.Kind != gateway.KindText || err != nil || !build.ValidModuleCount(count) {
		b.sendText(ctx, ev.UserID, "Please choose 5 or 8 from the keyboard.", gateway.NewKeyboard([]string{"5"}, []string{"8"}))
		return nil
	}

	st.TargetCount = count
	st.Selected = nil
	st.Detailed = make(map[string]string)
	st.Step = session.CreateStepModuleSelect
	b.sendText(ctx, ev.UserID, "Choose a module:", gateway.NewKeyboard(pairRows(st.RemainingSlots())...))
	return nil
}

// createModuleSelect runs the two-phase selection loop: a slot arrives as
// keyboard text, its variant as a choice event from the second-level
// surface. Stray images are rejected instead of advancing the wizard.
func (b *Bot) createModuleSelect(ctx context.Context, st *session.CreateState, ev gateway.Event) error {
	switch ev.Kind {
	case gateway.KindImage:
		b.sendText(ctx, ev.UserID, "❗ Select all modules first. Then send the image.", nil)
		return nil

	case gateway.KindText:
		slot := ev.Text
		if !st.KnownSlot(slot) || st.IsSelected(slot) {
			b.sendText(ctx, ev.UserID, "Invalid or already selected module.", gateway.NewKeyboard(pairRows(st.RemainingSlots())...))
			return nil
		}

		st.CurrentSlot = slot
		choices := make([]gateway.Choice, 0, len(st.Variants[slot]))
		for _, v := range st.Variants[slot] {
			choices = append(choices, gateway.Choice{Value: v.Code, Label: v.Code})
		}
		b.presentChoices(ctx, ev.UserID, fmt.Sprintf("Choose a variant for %s:", slot), choices)
		return nil

	case gateway.KindChoice:
		return b.createVariantChosen(ctx, st, ev)

	default:
		b.sendText(ctx, ev.UserID, "Please pick a module from the keyboard.", gateway.NewKeyboard(pairRows(st.RemainingSlots())...))
		return nil
	}
}

func (b *Bot) createVariantChosen(ctx context.Context, st *session.CreateState, ev gateway.Event) error {
	slot := st.CurrentSlot
	if slot == "" {
		b.sendText(ctx, ev.UserID, "Choose a module first.", gateway.NewKeyboard(pairRows(st.RemainingSlots())...))
		return nil
	}

	if !validVariant(st.Variants[slot], ev.Choice) {
		b.sendText(ctx, ev.UserID, "That variant doesn't belong to the selected module.", nil)
		return nil
	}

	st.Detailed[slot] = ev.Choice
	if !st.IsSelected(slot) {
		st.Selected = append(st.Selected, slot)
	}
	st.CurrentSlot = ""
	b.sendText(ctx, ev.UserID, fmt.Sprintf("✅ %s: %s", slot, ev.Choice), nil)

	if len(st.Selected) >= st.TargetCount {
		st.Step = session.CreateStepImageUpload
		b.log.Info("all modules selected", zap.String("user_id", ev.UserID), zap.Int("count", len(st.Selected)))
		b.sendText(ctx, ev.UserID, "📷 All modules selected.\nNow attach the build image (photo or file):", nil)
		return nil
	}

	b.sendText(ctx, ev.UserID, "Choose the next module:", gateway.NewKeyboard(pairRows(st.RemainingSlots())...))
	return nil
}

func (b *Bot) createImageUpload(ctx context.Context, st *session.CreateState, ev gateway.Event) error {
	if ev.Kind != gateway.KindImage || ev.Image == nil {
		b.sendText(ctx, ev.UserID, "❌ Please attach the image as a photo or a file.", nil)
		return nil
	}

	rc, err := ev.Image.Open(ctx)
	if err != nil {
		return apperrors.WrapWithCode(err, apperrors.CodeUnavailable, "failed to fetch image attachment")
	}
	defer rc.Close() //nolint:errcheck

	if st.BuildID == "" {
		st.BuildID = b.idGen.New()
	}
	path, err := b.images.Save(ctx, st.BuildID, rc)
	if err != nil {
		return err
	}

	st.ImagePath = path
	st.Step = session.CreateStepConfirmation
	b.log.Info("image stored", zap.String("user_id", ev.UserID), zap.String("path", path))
	b.sendText(ctx, ev.UserID,
		"✅ Image received.\n\nPress \""+btnFinish+"\" to save the build, or \""+btnCancel+"\" to abort.",
		gateway.NewKeyboard([]string{btnFinish, btnCancel}))
	return nil
}

func (b *Bot) createConfirmation(ctx context.Context, s *session.Session, ev gateway.Event) error {
	st := s.Create

	switch {
	case ev.Kind == gateway.KindText && ev.Text == btnFinish:
		// The asset must still exist when the record is committed.
		if !images.Exists(st.ImagePath) {
			st.Step = session.CreateStepImageUpload
			b.sendText(ctx, ev.UserID, "❌ The image is gone. Please attach it again.", nil)
			return nil
		}
		return b.commitBuild(ctx, s, ev)

	case ev.Kind == gateway.KindText && ev.Text == btnCancel:
		s.Reset()
		b.sendText(ctx, ev.UserID, "❌ Action cancelled.", b.mainMenu(ev.UserID))
		return nil

	default:
		b.sendText(ctx, ev.UserID,
			"📍 Please press \""+btnFinish+"\" to save the build, or \""+btnCancel+"\" to exit.",
			gateway.NewKeyboard([]string{btnFinish, btnCancel}))
		return nil
	}
}

func (b *Bot) commitBuild(ctx context.Context, s *session.Session, ev gateway.Event) error {
	st := s.Create

	rec := &build.Build{
		ID:         st.BuildID,
		WeaponName: st.WeaponName,
		Role:       st.Role,
		Category:   st.Category,
		Mode:       st.Mode,
		Type:       st.TypeKey,
		Modules:    st.Detailed,
		Image:      st.ImagePath,
		Author:     ev.Author,
		CreatedAt:  b.now(),
	}

	ref, err := b.ref.SlotVariantsFor(st.TypeKey)
	if err != nil {
		return err
	}
	if err := rec.Validate(ref); err != nil {
		return err
	}

	if err := b.repo.Append(ctx, rec); err != nil {
		return err
	}

	b.log.Info("build created",
		zap.String("build_id", rec.ID),
		zap.String("weapon", rec.WeaponName),
		zap.String("author", rec.Author))

	st.Step = session.CreateStepPostConfirm
	b.sendText(ctx, ev.UserID,
		"✅ Build added!\n\nWhat next?",
		gateway.NewKeyboard([]string{btnAddAnother}, []string{btnBack}))
	return nil
}

func (b *Bot) createPostConfirm(ctx context.Context, s *session.Session, ev gateway.Event) error {
	switch {
	case ev.Kind == gateway.KindText && ev.Text == btnAddAnother:
		return b.enterCreate(ctx, s, ev)

	case ev.Kind == gateway.KindText && ev.Text == btnBack:
		s.Reset()
		return b.handleStart(ctx, s, ev)

	default:
		b.sendText(ctx, ev.UserID, "Please pick an option from the keyboard.",
			gateway.NewKeyboard([]string{btnAddAnother}, []string{btnBack}))
		return nil
	}
}

const modeLabel = "Warzone"

func categoryLabels() []string {
	labels := make([]string, len(build.Categories))
	for i, c := range build.Categories {
		labels[i] = c.Label()
	}
	return labels
}

func (b *Bot) typeLabels() []string {
	types := b.ref.WeaponTypes()
	labels := make([]string, len(types))
	for i, wt := range types {
		labels[i] = wt.Label
	}
	return labels
}

func validVariant(variants []refdata.Variant, code string) bool {
	for _, v := range variants {
		if v.Code == code {
			return true
		}
	}
	return false
}
