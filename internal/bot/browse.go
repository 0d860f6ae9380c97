package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ndsborki/loadout-bot/internal/domain/build"
	apperrors "github.com/ndsborki/loadout-bot/internal/errors"
	"github.com/ndsborki/loadout-bot/internal/gateway"
	"github.com/ndsborki/loadout-bot/internal/images"
	"github.com/ndsborki/loadout-bot/internal/session"
)

// enterBrowse starts (or restarts) the browse wizard. Open to everyone.
func (b *Bot) enterBrowse(ctx context.Context, s *session.Session, ev gateway.Event) error {
	records, err := b.repo.Load(ctx)
	if err != nil {
		return err
	}

	inMode := filterBuilds(records, func(r *build.Build) bool {
		return strings.EqualFold(r.Mode, build.ModeWarzone)
	})
	if len(inMode) == 0 {
		b.sendText(ctx, ev.UserID, "No Warzone builds yet.", b.mainMenu(ev.UserID))
		return nil
	}

	s.StartBrowse()

	labels := make([]string, len(build.Categories))
	for i, c := range build.Categories {
		n := len(filterBuilds(inMode, func(r *build.Build) bool { return r.Category == c }))
		labels[i] = fmt.Sprintf("%s (%d)", c.Label(), n)
	}
	b.sendText(ctx, ev.UserID, "Choose a category:", withMainMenu(singleRows(labels)))
	return nil
}

// handleBrowse advances the browse wizard by one event.
func (b *Bot) handleBrowse(ctx context.Context, s *session.Session, ev gateway.Event) error {
	// Re-entering the top-level trigger restarts the wizard.
	if ev.Kind == gateway.KindText && ev.Text == btnBrowse {
		return b.enterBrowse(ctx, s, ev)
	}

	st := s.Browse

	switch st.Step {
	case session.BrowseStepCategorySelect:
		return b.browseCategory(ctx, s, ev)
	case session.BrowseStepType:
		return b.browseType(ctx, s, ev)
	case session.BrowseStepWeapon:
		return b.browseWeapon(ctx, st, ev)
	case session.BrowseStepSetCount:
		return b.browseCount(ctx, st, ev)
	case session.BrowseStepDisplay:
		return b.browseDisplay(ctx, s, ev)
	default:
		return apperrors.Internalf("unhandled browse step %d", st.Step)
	}
}

func (b *Bot) browseCategory(ctx context.Context, s *session.Session, ev gateway.Event) error {
	st := s.Browse

	cat, ok := build.CategoryFromLabel(stripCount(ev.Text))
	if ev.Kind != gateway.KindText || !ok {
		b.sendText(ctx, ev.UserID, "Please pick a category from the keyboard.", nil)
		return nil
	}
	st.Category = cat

	records, err := b.loadCategory(ctx, cat)
	if err != nil {
		return err
	}

	types := distinct(records, func(r *build.Build) string { return r.Type })
	if len(types) == 0 {
		s.Reset()
		b.sendText(ctx, ev.UserID, "No builds in this category yet.", b.mainMenu(ev.UserID))
		return nil
	}

	labels := make([]string, len(types))
	for i, t := range types {
		labels[i] = b.ref.LabelFor(t)
	}

	st.Step = session.BrowseStepType
	b.sendText(ctx, ev.UserID, "Choose a weapon type:", withMainMenu(singleRows(labels)))
	return nil
}

func (b *Bot) browseType(ctx context.Context, s *session.Session, ev gateway.Event) error {
	st := s.Browse

	key, ok := b.ref.KeyForLabel(ev.Text)
	if !ok {
		// Older records may predate the label; accept the raw key too.
		key = ev.Text
	}

	records, err := b.loadCategory(ctx, st.Category)
	if err != nil {
		return err
	}

	weapons := distinct(
		filterBuilds(records, func(r *build.Build) bool { return r.Type == key }),
		func(r *build.Build) string { return r.WeaponName })
	if ev.Kind != gateway.KindText || len(weapons) == 0 {
		b.sendText(ctx, ev.UserID, "No builds for that type yet. Pick another one.", nil)
		return nil
	}

	st.TypeKey = key
	st.Step = session.BrowseStepWeapon
	b.sendText(ctx, ev.UserID, "Choose a weapon:", withMainMenu(singleRows(weapons)))
	return nil
}

func (b *Bot) browseWeapon(ctx context.Context, st *session.BrowseState, ev gateway.Event) error {
	if ev.Kind != gateway.KindText || ev.Text == "" {
		b.sendText(ctx, ev.UserID, "Please pick a weapon from the keyboard.", nil)
		return nil
	}

	st.Weapon = ev.Text
	st.Step = session.BrowseStepSetCount
	return b.showCountButtons(ctx, st, ev.UserID, "Choose the module count:")
}

// showCountButtons renders the two count buttons with live counts for the
// current {type, weapon} filter.
func (b *Bot) showCountButtons(ctx context.Context, st *session.BrowseState, userID, prompt string) error {
	records, err := b.repo.Load(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, len(build.ModuleCounts))
	for i, c := range build.ModuleCounts {
		n := len(filterBuilds(records, func(r *build.Build) bool {
			return r.WeaponName == st.Weapon && r.Type == st.TypeKey && len(r.Modules) == c
		}))
		rows[i] = []string{fmt.Sprintf("%d (%d)", c, n)}
	}

	b.sendText(ctx, userID, prompt, withMainMenu(rows))
	return nil
}

func (b *Bot) browseCount(ctx context.Context, st *session.BrowseState, ev gateway.Event) error {
	return b.applyCountFilter(ctx, st, ev)
}

// applyCountFilter parses the leading integer off the count button label and
// narrows the catalog to {type, weapon, category, modules-size}. An empty
// result re-shows refreshed count buttons without leaving the step.
func (b *Bot) applyCountFilter(ctx context.Context, st *session.BrowseState, ev gateway.Event) error {
	fields := strings.Fields(ev.Text)
	if ev.Kind != gateway.KindText || len(fields) == 0 {
		b.sendText(ctx, ev.UserID, "⚠️ Please pick the module count from the keyboard.", nil)
		return nil
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil {
		b.sendText(ctx, ev.UserID, "⚠️ Please pick the module count from the keyboard.", nil)
		return nil
	}

	records, err := b.repo.Load(ctx)
	if err != nil {
		return err
	}

	matched := filterBuilds(records, func(r *build.Build) bool {
		return r.Type == st.TypeKey &&
			r.WeaponName == st.Weapon &&
			r.Category == st.Category &&
			len(r.Modules) == count
	})

	if len(matched) == 0 {
		st.Count = 0
		return b.showCountButtons(ctx, st, ev.UserID, "❌ No matching builds found.\n\nChoose another module count:")
	}

	st.Count = count
	st.Results = matched
	st.Index = 0
	st.Step = session.BrowseStepDisplay
	b.sendBuild(ctx, st, ev.UserID)
	return nil
}

func (b *Bot) browseDisplay(ctx context.Context, s *session.Session, ev gateway.Event) error {
	st := s.Browse

	if ev.Kind == gateway.KindText {
		switch ev.Text {
		case btnNext:
			// Clamped: a no-op at the last record.
			if st.Index < len(st.Results)-1 {
				st.Index++
				b.sendBuild(ctx, st, ev.UserID)
			}
			return nil
		case btnPrev:
			if st.Index > 0 {
				st.Index--
				b.sendBuild(ctx, st, ev.UserID)
			}
			return nil
		}
	}

	// A count button press switches the module-count filter in place.
	return b.applyCountFilter(ctx, st, ev)
}

// sendBuild renders the record under the cursor: image with caption when the
// asset exists, text-only otherwise. Navigation buttons appear only where
// they can move the cursor.
func (b *Bot) sendBuild(ctx context.Context, st *session.BrowseState, userID string) {
	rec := st.Results[st.Index]
	translation := b.ref.TranslationFor(rec.Type)

	var moduleLines []string
	for _, slot := range b.slotOrderFor(rec) {
		code := rec.Modules[slot]
		label, ok := translation[code]
		if !ok {
			label = code
		}
		moduleLines = append(moduleLines, fmt.Sprintf("├ %s: %s", slot, label))
	}

	caption := fmt.Sprintf(
		"Weapon: %s\nRange: %s\nType: %s\n\nModules: %d\n%s\n\nAuthor: %s",
		rec.WeaponName, orDash(rec.Role), b.ref.LabelFor(rec.Type),
		len(rec.Modules), strings.Join(moduleLines, "\n"), rec.Author)

	var navRow []string
	if st.Index > 0 {
		navRow = append(navRow, btnPrev)
	}
	if st.Index < len(st.Results)-1 {
		navRow = append(navRow, btnNext)
	}
	var rows [][]string
	if len(navRow) > 0 {
		rows = append(rows, navRow)
	}
	rows = append(rows, []string{btnBrowse})
	kb := withMainMenu(rows)

	if images.Exists(rec.Image) {
		b.sendImage(ctx, userID, rec.Image, caption, kb)
	} else {
		b.sendText(ctx, userID, caption, kb)
	}
}

// slotOrderFor orders a record's module slots by the reference catalog,
// with any unknown slots appended alphabetically.
func (b *Bot) slotOrderFor(rec *build.Build) []string {
	order, err := b.ref.SlotOrder(rec.Type)
	if err != nil {
		order = nil
	}

	out := make([]string, 0, len(rec.Modules))
	seen := make(map[string]bool, len(rec.Modules))
	for _, slot := range order {
		if _, ok := rec.Modules[slot]; ok {
			out = append(out, slot)
			seen[slot] = true
		}
	}

	var rest []string
	for slot := range rec.Modules {
		if !seen[slot] {
			rest = append(rest, slot)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func (b *Bot) loadCategory(ctx context.Context, cat build.Category) ([]*build.Build, error) {
	records, err := b.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return filterBuilds(records, func(r *build.Build) bool {
		return strings.EqualFold(r.Mode, build.ModeWarzone) && r.Category == cat
	}), nil
}

func filterBuilds(records []*build.Build, keep func(*build.Build) bool) []*build.Build {
	var out []*build.Build
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// distinct returns the sorted unique values of key over records.
func distinct(records []*build.Build, key func(*build.Build) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		k := key(r)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// stripCount removes a trailing " (n)" count annotation from a button label.
func stripCount(label string) string {
	if i := strings.LastIndex(label, " ("); i > 0 && strings.HasSuffix(label, ")") {
		return label[:i]
	}
	return label
}
