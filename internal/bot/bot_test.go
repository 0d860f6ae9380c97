package bot_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ndsborki/loadout-bot/internal/bot"
	"github.com/ndsborki/loadout-bot/internal/domain/build"
	"github.com/ndsborki/loadout-bot/internal/gateway"
	"github.com/ndsborki/loadout-bot/internal/images"
	"github.com/ndsborki/loadout-bot/internal/refdata"
	"github.com/ndsborki/loadout-bot/internal/repositories/builds"
	"github.com/ndsborki/loadout-bot/internal/session"
	"github.com/ndsborki/loadout-bot/internal/uuid"
)

// Button labels as the user sees them.
const (
	labelBrowse     = "📋 Warzone Builds"
	labelAdd        = "➕ Add Build"
	labelAddAnother = "➕ Add Another Build"
	labelMainMenu   = "🏠 Main Menu"
	labelBack       = "◀ Cancel"
	labelNext       = "➡ Next"
	labelPrev       = "⬅ Previous"
	labelExitDelete = "🚪 Exit Delete Mode"
)

const (
	adminUser  = "admin-1"
	publicUser = "viewer-1"
)

type sentText struct {
	UserID   string
	Body     string
	Keyboard *gateway.Keyboard
}

type sentImage struct {
	UserID   string
	Path     string
	Caption  string
	Keyboard *gateway.Keyboard
}

type choicePrompt struct {
	UserID  string
	Prompt  string
	Choices []gateway.Choice
}

// recordingMessenger captures everything the bot sends.
type recordingMessenger struct {
	mu      sync.Mutex
	texts   []sentText
	images  []sentImage
	choices []choicePrompt
}

func (m *recordingMessenger) SendText(ctx context.Context, userID, body string, kb *gateway.Keyboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, sentText{UserID: userID, Body: body, Keyboard: kb})
	return nil
}

func (m *recordingMessenger) SendImage(ctx context.Context, userID, path, caption string, kb *gateway.Keyboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images = append(m.images, sentImage{UserID: userID, Path: path, Caption: caption, Keyboard: kb})
	return nil
}

func (m *recordingMessenger) PresentChoices(ctx context.Context, userID, prompt string, choices []gateway.Choice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.choices = append(m.choices, choicePrompt{UserID: userID, Prompt: prompt, Choices: choices})
	return nil
}

func (m *recordingMessenger) lastText(t *testing.T) sentText {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.texts, "no text messages sent")
	return m.texts[len(m.texts)-1]
}

func (m *recordingMessenger) lastChoices(t *testing.T) choicePrompt {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.choices, "no choice prompts sent")
	return m.choices[len(m.choices)-1]
}

func (m *recordingMessenger) textCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.texts)
}

func (m *recordingMessenger) imageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.images)
}

// fakeAsset is an in-memory image attachment.
type fakeAsset struct {
	name string
	data []byte
}

func (a fakeAsset) Name() string { return a.name }

func (a fakeAsset) Open(ctx context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(a.data)), nil
}

const testTypesJSON = `[
	{"key": "assault", "label": "Assault Rifles"},
	{"key": "sniper", "label": "Sniper Rifles"}
]`

const testAssaultJSON = `{
	"muzzle": [
		{"code": "monolithic", "label": "Monolithic Suppressor"},
		{"code": "compensator", "label": "Compensator"}
	],
	"barrel": [
		{"code": "singuard", "label": "Singuard Arms Pro"},
		{"code": "prowler", "label": "FSS Prowler"}
	],
	"optic": [
		{"code": "vlk", "label": "VLK 3.0x Optic"},
		{"code": "holo", "label": "Corp Combat Holo"}
	],
	"stock": [
		{"code": "skeleton", "label": "Skeleton Stock"},
		{"code": "no_stock", "label": "No Stock"}
	],
	"ammo": [
		{"code": "60rnd", "label": "60 Round Mags"},
		{"code": "50rnd", "label": "50 Round Mags"}
	],
	"grip": [
		{"code": "commando", "label": "Commando Foregrip"},
		{"code": "ranger", "label": "Ranger Foregrip"}
	]
}`

// loadTestCatalog builds a catalog where assault has module data and sniper
// deliberately has none.
func loadTestCatalog(t *testing.T) *refdata.Catalog {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "types.json"), []byte(testTypesJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "modules-assault.json"), []byte(testAssaultJSON), 0o644))

	cat, err := refdata.Load(context.Background(), dir)
	require.NoError(t, err)
	return cat
}

type env struct {
	t          *testing.T
	bot        *bot.Bot
	msgr       *recordingMessenger
	repo       *builds.InMemoryRepository
	sessions   *session.Manager
	imagesDir  string
	logPath    string
	markerPath string
	exitCalls  int
	updateOut  string
	updateErr  error
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{
		t:          t,
		msgr:       &recordingMessenger{},
		repo:       builds.NewInMemoryRepository(),
		sessions:   session.NewManager(),
		imagesDir:  t.TempDir(),
		logPath:    filepath.Join(t.TempDir(), "bot.log"),
		markerPath: filepath.Join(t.TempDir(), "restart_message.txt"),
		updateOut:  "Already up to date.",
	}

	b, err := bot.New(&bot.Config{
		Repository:        e.repo,
		RefCatalog:        loadTestCatalog(t),
		Images:            images.NewStore(e.imagesDir),
		Messenger:         e.msgr,
		Sessions:          e.sessions,
		IDGenerator:       &uuid.SequenceGenerator{Prefix: "b"},
		Allowed:           func(userID string) bool { return userID == adminUser },
		AdminID:           adminUser,
		LogPath:           e.logPath,
		RestartMarkerPath: e.markerPath,
		Exit:              func() { e.exitCalls++ },
		RunUpdate:         func(ctx context.Context) (string, error) { return e.updateOut, e.updateErr },
		Now:               func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	e.bot = b
	return e
}

func (e *env) handle(ev gateway.Event) {
	e.bot.HandleEvent(context.Background(), ev)
}

func (e *env) session(userID string, inspect func(s *session.Session)) {
	require.NoError(e.t, e.sessions.Do(userID, func(s *session.Session) error {
		inspect(s)
		return nil
	}))
}

func (e *env) seed(records ...*build.Build) {
	for _, r := range records {
		require.NoError(e.t, e.repo.Append(context.Background(), r))
	}
}

func text(userID, s string) gateway.Event {
	return gateway.Event{Kind: gateway.KindText, UserID: userID, Author: "Tester", Text: s}
}

func choice(userID, value string) gateway.Event {
	return gateway.Event{Kind: gateway.KindChoice, UserID: userID, Author: "Tester", Choice: value}
}

func command(userID, name string) gateway.Event {
	return gateway.Event{Kind: gateway.KindCommand, UserID: userID, Author: "Tester", Command: name}
}

func imageEvent(userID string) gateway.Event {
	return gateway.Event{
		Kind:   gateway.KindImage,
		UserID: userID,
		Author: "Tester",
		Image:  fakeAsset{name: "build.jpg", data: []byte("jpeg bytes")},
	}
}

func assaultBuild(id, weapon string, cat build.Category, moduleCount int) *build.Build {
	modules := map[string]string{
		"muzzle": "monolithic",
		"barrel": "singuard",
		"optic":  "vlk",
		"stock":  "skeleton",
		"ammo":   "60rnd",
	}
	extra := []string{"grip", "laser", "perk"}
	for i := 5; i < moduleCount; i++ {
		modules[extra[i-5]] = "filler"
	}

	return &build.Build{
		ID:         id,
		WeaponName: weapon,
		Role:       "long range",
		Category:   cat,
		Mode:       build.ModeWarzone,
		Type:       "assault",
		Author:     "Tester",
		Modules:    modules,
		CreatedAt:  time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

// writeImage stores an asset for the given record ID and returns its path.
func writeImage(t *testing.T, e *env, id string) string {
	t.Helper()
	path, err := images.NewStore(e.imagesDir).Save(context.Background(), id, bytes.NewReader([]byte("jpeg bytes")))
	require.NoError(t, err)
	return path
}

func keyboardLabels(kb *gateway.Keyboard) []string {
	if kb == nil {
		return nil
	}
	var out []string
	for _, row := range kb.Rows {
		out = append(out, row...)
	}
	return out
}
