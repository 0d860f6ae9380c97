package bot

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/ndsborki/loadout-bot/internal/errors"
	"github.com/ndsborki/loadout-bot/internal/gateway"
	"github.com/ndsborki/loadout-bot/internal/images"
	"github.com/ndsborki/loadout-bot/internal/refdata"
	"github.com/ndsborki/loadout-bot/internal/repositories/builds"
	"github.com/ndsborki/loadout-bot/internal/session"
	"github.com/ndsborki/loadout-bot/internal/uuid"
)

// Button labels shared across wizards
const (
	btnBrowse     = "📋 Warzone Builds"
	btnAdd        = "➕ Add Build"
	btnAddAnother = "➕ Add Another Build"
	btnMainMenu   = "🏠 Main Menu"
	btnBack       = "◀ Cancel"
	btnNext       = "➡ Next"
	btnPrev       = "⬅ Previous"
	btnFinish     = "Finish"
	btnCancel     = "Cancel"
	btnYes        = "Yes"
	btnExitDelete = "🚪 Exit Delete Mode"
)

// Config holds the bot's collaborators
type Config struct {
	Repository  builds.Repository
	RefCatalog  *refdata.Catalog
	Images      *images.Store
	Messenger   gateway.Messenger
	Sessions    *session.Manager
	IDGenerator uuid.Generator
	Logger      *zap.Logger

	// Allowed reports allow-list membership for privileged commands
	Allowed func(userID string) bool

	// AdminID receives log excerpts
	AdminID string

	// LogPath is the file the log command excerpts
	LogPath string

	// RestartMarkerPath records a user ID to notify after restart
	RestartMarkerPath string

	// Exit terminates the process (restart command); defaults to os.Exit(0)
	Exit func()

	// RunUpdate pulls the latest deployment; defaults to `git pull`
	RunUpdate func(ctx context.Context) (string, error)

	// Now defaults to time.Now
	Now func() time.Time
}

// Bot is the conversational core: it owns the dispatcher, the three wizards,
// and the stateless commands.
type Bot struct {
	repo     builds.Repository
	ref      *refdata.Catalog
	images   *images.Store
	msgr     gateway.Messenger
	sessions *session.Manager
	idGen    uuid.Generator
	log      *zap.Logger

	allowed    func(string) bool
	adminID    string
	logPath    string
	markerPath string
	exit       func()
	runUpdate  func(ctx context.Context) (string, error)
	now        func() time.Time

	startedAt time.Time
}

// New creates the bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, apperrors.InvalidArgument("config cannot be nil")
	}
	if cfg.Repository == nil {
		return nil, apperrors.InvalidArgument("repository is required")
	}
	if cfg.RefCatalog == nil {
		return nil, apperrors.InvalidArgument("reference catalog is required")
	}
	if cfg.Messenger == nil {
		return nil, apperrors.InvalidArgument("messenger is required")
	}
	if cfg.Images == nil {
		return nil, apperrors.InvalidArgument("image store is required")
	}

	b := &Bot{
		repo:       cfg.Repository,
		ref:        cfg.RefCatalog,
		images:     cfg.Images,
		msgr:       cfg.Messenger,
		sessions:   cfg.Sessions,
		idGen:      cfg.IDGenerator,
		log:        cfg.Logger,
		allowed:    cfg.Allowed,
		adminID:    cfg.AdminID,
		logPath:    cfg.LogPath,
		markerPath: cfg.RestartMarkerPath,
		exit:       cfg.Exit,
		runUpdate:  cfg.RunUpdate,
		now:        cfg.Now,
	}

	if b.sessions == nil {
		b.sessions = session.NewManager()
	}
	if b.idGen == nil {
		b.idGen = uuid.NewGoogleUUIDGenerator()
	}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	if b.allowed == nil {
		b.allowed = func(string) bool { return false }
	}
	if b.exit == nil {
		b.exit = func() { os.Exit(0) }
	}
	if b.runUpdate == nil {
		b.runUpdate = gitPull
	}
	if b.now == nil {
		b.now = time.Now
	}
	b.startedAt = b.now()

	return b, nil
}

func gitPull(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "git", "pull").CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

// mainMenu is the entry keyboard: browsing for everyone, adding for
// allow-listed users.
func (b *Bot) mainMenu(userID string) *gateway.Keyboard {
	rows := [][]string{{btnBrowse}}
	if b.allowed(userID) {
		rows = append(rows, []string{btnAdd})
	}
	return gateway.NewKeyboard(rows...)
}

// withMainMenu appends the main menu button unless a row already carries it.
func withMainMenu(rows [][]string) *gateway.Keyboard {
	for _, row := range rows {
		for _, label := range row {
			if label == btnMainMenu {
				return gateway.NewKeyboard(rows...)
			}
		}
	}
	return gateway.NewKeyboard(append(rows, []string{btnMainMenu})...)
}

// pairRows groups labels two per keyboard row.
func pairRows(labels []string) [][]string {
	var rows [][]string
	for i := 0; i < len(labels); i += 2 {
		end := i + 2
		if end > len(labels) {
			end = len(labels)
		}
		rows = append(rows, labels[i:end])
	}
	return rows
}

// singleRows puts each label on its own keyboard row.
func singleRows(labels []string) [][]string {
	rows := make([][]string, len(labels))
	for i, l := range labels {
		rows[i] = []string{l}
	}
	return rows
}

// sendText logs and swallows transport errors: the triggering event is
// dropped rather than retried.
func (b *Bot) sendText(ctx context.Context, userID, body string, kb *gateway.Keyboard) {
	if err := b.msgr.SendText(ctx, userID, body, kb); err != nil {
		b.log.Warn("failed to send message", zap.String("user_id", userID), zap.Error(err))
	}
}

func (b *Bot) sendImage(ctx context.Context, userID, path, caption string, kb *gateway.Keyboard) {
	if err := b.msgr.SendImage(ctx, userID, path, caption, kb); err != nil {
		b.log.Warn("failed to send image", zap.String("user_id", userID), zap.Error(err))
	}
}

func (b *Bot) presentChoices(ctx context.Context, userID, prompt string, choices []gateway.Choice) {
	if err := b.msgr.PresentChoices(ctx, userID, prompt, choices); err != nil {
		b.log.Warn("failed to present choices", zap.String("user_id", userID), zap.Error(err))
	}
}
