package bot

import (
	"context"

	"go.uber.org/zap"

	apperrors "github.com/ndsborki/loadout-bot/internal/errors"
	"github.com/ndsborki/loadout-bot/internal/gateway"
	"github.com/ndsborki/loadout-bot/internal/session"
)

// HandleEvent routes one inbound event. Events for a single user are
// serialized by the session manager; errors never escape, they become a
// user-visible message plus a log entry, and the session keeps its
// pre-error step.
func (b *Bot) HandleEvent(ctx context.Context, ev gateway.Event) {
	err := b.sessions.Do(ev.UserID, func(s *session.Session) (doErr error) {
		defer func() {
			if r := recover(); r != nil {
				b.log.Error("panic handling event", zap.Any("panic", r), zap.String("user_id", ev.UserID))
				doErr = apperrors.Internalf("panic: %v", r)
			}
		}()
		return b.dispatch(ctx, s, ev)
	})
	if err == nil {
		return
	}

	b.log.Error("event handling failed",
		zap.String("user_id", ev.UserID),
		zap.String("code", string(apperrors.GetCode(err))),
		zap.Error(err))

	switch apperrors.GetCode(err) {
	case apperrors.CodeCorrupt, apperrors.CodeNotFound, apperrors.CodeUnavailable:
		b.sendText(ctx, ev.UserID, "❌ That feature is unavailable right now. Please try again later.", nil)
	default:
		b.sendText(ctx, ev.UserID, "❌ Something went wrong. Please try again.", nil)
	}
}

func (b *Bot) dispatch(ctx context.Context, s *session.Session, ev gateway.Event) error {
	// Global triggers preempt any wizard.
	switch {
	case ev.Kind == gateway.KindCommand && ev.Command == "start",
		ev.Kind == gateway.KindCommand && ev.Command == "home",
		ev.Kind == gateway.KindText && ev.Text == btnMainMenu:
		s.Reset()
		return b.handleStart(ctx, s, ev)

	case ev.Kind == gateway.KindCommand && ev.Command == "cancel":
		s.Reset()
		b.sendText(ctx, ev.UserID, "❌ Action cancelled.", b.mainMenu(ev.UserID))
		return nil

	case ev.Kind == gateway.KindCommand && ev.Command == "restart":
		return b.handleRestart(ctx, s, ev)

	case ev.Kind == gateway.KindCommand && ev.Command == "update":
		return b.handleUpdate(ctx, s, ev)
	}

	// An active wizard owns every other event.
	switch s.Wizard {
	case session.WizardCreate:
		return b.handleCreate(ctx, s, ev)
	case session.WizardBrowse:
		return b.handleBrowse(ctx, s, ev)
	case session.WizardDelete:
		return b.handleDelete(ctx, s, ev)
	case session.WizardNone:
		// fall through to entry routing below
	default:
		return apperrors.Internalf("unhandled wizard tag %d", s.Wizard)
	}

	// Entry triggers and stateless commands.
	if ev.Kind == gateway.KindCommand {
		switch ev.Command {
		case "help":
			return b.handleHelp(ctx, ev)
		case "show_all":
			return b.handleShowAll(ctx, ev)
		case "status":
			return b.handleStatus(ctx, ev)
		case "log":
			return b.handleLog(ctx, ev)
		case "add":
			return b.enterCreate(ctx, s, ev)
		case "delete":
			return b.enterDelete(ctx, s, ev)
		default:
			b.sendText(ctx, ev.UserID, "⚠️ I don't know that command.", nil)
			return nil
		}
	}

	if ev.Kind == gateway.KindText {
		switch ev.Text {
		case btnBrowse:
			return b.enterBrowse(ctx, s, ev)
		case btnAdd:
			return b.enterCreate(ctx, s, ev)
		}
	}

	b.sendText(ctx, ev.UserID, "🤖 I don't understand that message. Use the commands or buttons.", nil)
	return nil
}
