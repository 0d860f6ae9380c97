package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/ndsborki/loadout-bot/internal/errors"
	"github.com/ndsborki/loadout-bot/internal/gateway"
	"github.com/ndsborki/loadout-bot/internal/session"
)

// enterDelete starts the delete wizard. Allow-list gated: denied users get
// no identifier map at all.
func (b *Bot) enterDelete(ctx context.Context, s *session.Session, ev gateway.Event) error {
	if !b.allowed(ev.UserID) {
		b.sendText(ctx, ev.UserID, "⛔ You don't have access to this command.", nil)
		return nil
	}

	records, err := b.repo.Load(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		b.sendText(ctx, ev.UserID, "❌ No builds to delete.", b.mainMenu(ev.UserID))
		return nil
	}

	s.StartDelete()
	return b.renderDeleteList(ctx, s, ev.UserID)
}

// renderDeleteList assigns fresh 1-based positional identifiers, scoped to
// this session, and shows the full list. An emptied catalog ends the wizard.
func (b *Bot) renderDeleteList(ctx context.Context, s *session.Session, userID string) error {
	records, err := b.repo.Load(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		s.Reset()
		b.sendText(ctx, userID, "❌ No builds left.", b.mainMenu(userID))
		return nil
	}

	st := s.Delete
	st.IDMap = make(map[string]session.DeleteTarget, len(records))
	lines := []string{"🧾 Builds available for deletion:"}
	for i, rec := range records {
		id := strconv.Itoa(i + 1)
		st.IDMap[id] = session.DeleteTarget{BuildID: rec.ID, WeaponName: rec.WeaponName}

		var moduleLines []string
		for _, slot := range sortedSlots(rec.Modules) {
			moduleLines = append(moduleLines, fmt.Sprintf("🔸 %s: %s", slot, rec.Modules[slot]))
		}
		lines = append(lines, fmt.Sprintf(
			"%s (ID %s)\nType: %s\n\nModules: %d\n%s\n\nAuthor: %s",
			rec.WeaponName, id, b.ref.LabelFor(rec.Type),
			len(rec.Modules), strings.Join(moduleLines, "\n"), rec.Author))
	}

	st.Step = session.DeleteStepEnterID
	st.PendingID = ""
	b.sendText(ctx, userID,
		strings.Join(lines, "\n\n")+"\n\nEnter the ID of the build to delete (e.g. 1)",
		gateway.NewKeyboard([]string{btnExitDelete}))
	return nil
}

// handleDelete advances the delete wizard by one event.
func (b *Bot) handleDelete(ctx context.Context, s *session.Session, ev gateway.Event) error {
	if ev.Kind == gateway.KindText && ev.Text == btnExitDelete {
		s.Reset()
		b.sendText(ctx, ev.UserID, "🚫 Left delete mode.", b.mainMenu(ev.UserID))
		return nil
	}

	st := s.Delete

	switch st.Step {
	case session.DeleteStepEnterID:
		return b.deleteEnterID(ctx, st, ev)
	case session.DeleteStepConfirm:
		return b.deleteConfirm(ctx, s, ev)
	default:
		return apperrors.Internalf("unhandled delete step %d", st.Step)
	}
}

func (b *Bot) deleteEnterID(ctx context.Context, st *session.DeleteState, ev gateway.Event) error {
	id := strings.TrimSpace(ev.Text)
	target, ok := st.IDMap[id]
	if ev.Kind != gateway.KindText || !ok {
		b.sendText(ctx, ev.UserID, "❌ Invalid ID. Try again.", nil)
		return nil
	}

	st.PendingID = id
	st.Step = session.DeleteStepConfirm
	b.sendText(ctx, ev.UserID,
		fmt.Sprintf("❗ Are you sure you want to delete build %s (ID: %s)?", target.WeaponName, id),
		gateway.NewKeyboard([]string{btnYes}, []string{btnCancel}))
	return nil
}

func (b *Bot) deleteConfirm(ctx context.Context, s *session.Session, ev gateway.Event) error {
	st := s.Delete

	switch {
	case ev.Kind == gateway.KindText && ev.Text == btnCancel:
		b.sendText(ctx, ev.UserID, "❌ Cancelled.", nil)
		return b.renderDeleteList(ctx, s, ev.UserID)

	case ev.Kind == gateway.KindText && ev.Text == btnYes:
		target, ok := st.IDMap[st.PendingID]
		if !ok {
			b.sendText(ctx, ev.UserID, "❌ Lost track of that ID. Back to the list.", nil)
			return b.renderDeleteList(ctx, s, ev.UserID)
		}

		if err := b.repo.Delete(ctx, target.BuildID); err != nil {
			if apperrors.IsNotFound(err) {
				// A concurrent writer got there first.
				b.sendText(ctx, ev.UserID, "❌ That build is already gone. Back to the list.", nil)
				return b.renderDeleteList(ctx, s, ev.UserID)
			}
			return err
		}

		b.log.Info("build deleted",
			zap.String("build_id", target.BuildID),
			zap.String("weapon", target.WeaponName),
			zap.String("user_id", ev.UserID))
		b.sendText(ctx, ev.UserID, "✅ Build deleted.", nil)
		return b.renderDeleteList(ctx, s, ev.UserID)

	default:
		// Neither yes nor cancel: re-prompt rather than fall through.
		b.sendText(ctx, ev.UserID,
			"Please answer \""+btnYes+"\" to delete, or \""+btnCancel+"\" to go back.",
			gateway.NewKeyboard([]string{btnYes}, []string{btnCancel}))
		return nil
	}
}

func sortedSlots(modules map[string]string) []string {
	slots := make([]string, 0, len(modules))
	for slot := range modules {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	return slots
}
