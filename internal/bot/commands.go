package bot

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/ndsborki/loadout-bot/internal/errors"
	"github.com/ndsborki/loadout-bot/internal/gateway"
	"github.com/ndsborki/loadout-bot/internal/logging"
	"github.com/ndsborki/loadout-bot/internal/session"
)

const logTailLines = 30

func (b *Bot) handleStart(ctx context.Context, s *session.Session, ev gateway.Event) error {
	var text string
	if b.allowed(ev.UserID) {
		text = "Welcome to the Warzone loadout bot."
	} else {
		text = "👋 Welcome to the Warzone loadout bot!\n\n" +
			"Here you can:\n" +
			" • Browse Warzone weapon builds\n" +
			" • Filter by type and module count\n" +
			" • Page through matching builds with photos and authors\n\n" +
			"📍 Press \"" + btnBrowse + "\" to get started!\n\n" +
			"⚠️ Adding builds is restricted to administrators."
	}

	b.sendText(ctx, ev.UserID, text, b.mainMenu(ev.UserID))
	return nil
}

func (b *Bot) handleHelp(ctx context.Context, ev gateway.Event) error {
	b.sendText(ctx, ev.UserID,
		"💬 Questions, problems, or ideas for the bot? Message the admin directly. Always happy to make it better!",
		nil)
	return nil
}

func (b *Bot) handleShowAll(ctx context.Context, ev gateway.Event) error {
	records, err := b.repo.Load(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		b.sendText(ctx, ev.UserID, "The build list is empty.", nil)
		return nil
	}

	lines := []string{"📄 Warzone builds:"}
	for i, rec := range records {
		lines = append(lines, fmt.Sprintf(
			"%d. %s\n├ Range: %s\n├ Type: %s\n├ Modules: %d\n└ Author: %s",
			i+1, strings.ToUpper(rec.WeaponName), orDash(rec.Role),
			b.ref.LabelFor(rec.Type), len(rec.Modules), rec.Author))
	}

	b.sendText(ctx, ev.UserID, strings.Join(lines, "\n\n"),
		gateway.NewKeyboard([]string{btnMainMenu}))
	return nil
}

func (b *Bot) handleStatus(ctx context.Context, ev gateway.Event) error {
	if !b.allowed(ev.UserID) {
		b.sendText(ctx, ev.UserID, "⛔ You don't have access to this command.", nil)
		return nil
	}

	records, err := b.repo.Load(ctx)
	if err != nil {
		return err
	}

	uptime := b.now().Sub(b.startedAt).Round(time.Second)
	msg := fmt.Sprintf("🖥 Uptime: %s\n\n📦 Total builds: %d\n\n", uptime, len(records))

	if len(records) > 0 {
		last := records[len(records)-1]
		msg += fmt.Sprintf("🆕 Latest build:\n├ Weapon: %s\n├ Range: %s\n├ Type: %s\n└ Author: %s",
			last.WeaponName, orDash(last.Role), b.ref.LabelFor(last.Type), last.Author)
	} else {
		msg += "❗ No builds yet."
	}

	b.sendText(ctx, ev.UserID, msg, nil)
	return nil
}

func (b *Bot) handleLog(ctx context.Context, ev gateway.Event) error {
	if !b.allowed(ev.UserID) {
		b.sendText(ctx, ev.UserID, "❌ You don't have permission to view logs.", nil)
		return nil
	}

	excerpt, err := logging.Tail(b.logPath, logTailLines)
	if err != nil {
		b.log.Error("failed to read log excerpt", zap.Error(err))
		b.sendText(ctx, ev.UserID, "❌ Could not read the logs.", nil)
		return nil
	}
	if excerpt == "" {
		excerpt = "⚠️ The log is empty."
	}

	b.sendText(ctx, b.adminID, fmt.Sprintf("📄 Last %d log lines:\n%s", logTailLines, excerpt), nil)
	b.sendText(ctx, ev.UserID, "📤 Logs sent to the admin channel.", nil)
	return nil
}

func (b *Bot) handleRestart(ctx context.Context, s *session.Session, ev gateway.Event) error {
	if !b.allowed(ev.UserID) {
		b.sendText(ctx, ev.UserID, "⛔ You don't have access to this command.", nil)
		return nil
	}

	s.Reset()
	b.sendText(ctx, ev.UserID, "🔄 Restarting...\n⏳ Give it a couple of seconds...", nil)

	if err := b.writeRestartMarker(ev.UserID); err != nil {
		return err
	}

	b.log.Info("restart requested", zap.String("user_id", ev.UserID))
	b.exit()
	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, s *session.Session, ev gateway.Event) error {
	if !b.allowed(ev.UserID) {
		b.sendText(ctx, ev.UserID, "⛔ You don't have access to this command.", nil)
		return nil
	}

	b.sendText(ctx, ev.UserID, "📥 Fetching updates...", nil)

	out, err := b.runUpdate(ctx)
	if err != nil {
		b.log.Error("update failed", zap.Error(err))
		b.sendText(ctx, ev.UserID, fmt.Sprintf("❌ Update failed: %v", err), nil)
		return nil
	}
	b.sendText(ctx, ev.UserID, fmt.Sprintf("✅ Update complete:\n%s", out), nil)
	b.sendText(ctx, ev.UserID, "♻️ Restarting the bot...", nil)

	if err := b.writeRestartMarker(ev.UserID); err != nil {
		return err
	}

	b.log.Info("update requested", zap.String("user_id", ev.UserID))
	b.exit()
	return nil
}

func (b *Bot) writeRestartMarker(userID string) error {
	if err := os.WriteFile(b.markerPath, []byte(userID), 0o644); err != nil {
		return apperrors.Wrap(err, "failed to write restart marker")
	}
	return nil
}

// NotifyRestart delivers the one-shot "restarted" confirmation: if the
// marker file exists, its user gets a message and the marker is consumed.
func (b *Bot) NotifyRestart(ctx context.Context) {
	data, err := os.ReadFile(b.markerPath)
	if err != nil {
		if !os.IsNotExist(err) {
			b.log.Warn("failed to read restart marker", zap.Error(err))
		}
		return
	}

	userID := strings.TrimSpace(string(data))
	if userID != "" {
		b.sendText(ctx, userID, "✅ Bot restarted successfully. Back to the main menu...", b.mainMenu(userID))
	}

	if err := os.Remove(b.markerPath); err != nil {
		b.log.Warn("failed to remove restart marker", zap.Error(err))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
