// Package discord adapts the Discord transport onto the gateway interfaces:
// DM messages and component presses become events, and outbound sends map
// keyboards and choice surfaces onto button rows.
package discord

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	apperrors "github.com/ndsborki/loadout-bot/internal/errors"
	"github.com/ndsborki/loadout-bot/internal/gateway"
)

// Custom ID prefixes distinguishing the two button surfaces
const (
	keyboardPrefix = "kb:"
	choicePrefix   = "choice:"
)

// EventHandler consumes inbound events
type EventHandler interface {
	HandleEvent(ctx context.Context, ev gateway.Event)
}

// Config holds the adapter's collaborators
type Config struct {
	Session *discordgo.Session
	Logger  *zap.Logger

	// HTTPClient fetches image attachments; defaults to a 30s-timeout client
	HTTPClient *http.Client
}

// Adapter bridges discordgo and the conversational core. It is created
// before the core (which needs it as its Messenger) and bound to the core's
// event handler afterwards.
type Adapter struct {
	dg      *discordgo.Session
	handler EventHandler
	log     *zap.Logger
	http    *http.Client

	mu       sync.Mutex
	channels map[string]string // userID -> DM channel ID
}

// NewAdapter creates the adapter
func NewAdapter(cfg *Config) (*Adapter, error) {
	if cfg == nil || cfg.Session == nil {
		return nil, apperrors.InvalidArgument("discord session is required")
	}

	a := &Adapter{
		dg:       cfg.Session,
		log:      cfg.Logger,
		http:     cfg.HTTPClient,
		channels: make(map[string]string),
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	if a.http == nil {
		a.http = &http.Client{Timeout: 30 * time.Second}
	}

	return a, nil
}

// Bind wires the inbound side to the event handler and registers the
// discordgo handlers.
func (a *Adapter) Bind(handler EventHandler) error {
	if handler == nil {
		return apperrors.InvalidArgument("event handler is required")
	}

	a.handler = handler
	a.dg.AddHandler(a.onMessageCreate)
	a.dg.AddHandler(a.onInteractionCreate)
	return nil
}

// RegisterCommands registers the bot's slash commands under the given
// application ID. Use an empty guild ID for global commands.
func (a *Adapter) RegisterCommands(appID, guildID string) error {
	if appID == "" {
		return apperrors.InvalidArgument("application ID is required")
	}

	commands := []*discordgo.ApplicationCommand{
		{Name: "start", Description: "Show the main menu"},
		{Name: "help", Description: "How to reach the admin"},
		{Name: "show_all", Description: "List every build as text"},
		{Name: "status", Description: "Catalog and process status (admin)"},
		{Name: "log", Description: "Send recent log lines to the admin (admin)"},
		{Name: "restart", Description: "Restart the bot (admin)"},
		{Name: "update", Description: "Pull the latest deployment and restart (admin)"},
		{Name: "add", Description: "Add a new build (admin)"},
		{Name: "delete", Description: "Delete a build (admin)"},
		{Name: "home", Description: "Reset and show the main menu"},
		{Name: "cancel", Description: "Abandon the current wizard"},
	}

	for _, cmd := range commands {
		if _, err := a.dg.ApplicationCommandCreate(appID, guildID, cmd); err != nil {
			return apperrors.Wrapf(err, "failed to register command %q", cmd.Name)
		}
	}
	return nil
}

func (a *Adapter) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	ctx := context.Background()
	a.rememberChannel(m.Author.ID, m.ChannelID)

	ev := gateway.Event{
		UserID: m.Author.ID,
		Author: displayName(m.Author),
	}

	if att := firstImageAttachment(m.Attachments); att != nil {
		ev.Kind = gateway.KindImage
		ev.Image = &attachmentAsset{client: a.http, url: att.URL, name: att.Filename}
		a.handler.HandleEvent(ctx, ev)
		return
	}

	content := strings.TrimSpace(m.Content)
	if strings.HasPrefix(content, "/") {
		ev.Kind = gateway.KindCommand
		ev.Command = strings.TrimPrefix(strings.Fields(content)[0], "/")
	} else {
		ev.Kind = gateway.KindText
		ev.Text = content
	}
	a.handler.HandleEvent(ctx, ev)
}

func (a *Adapter) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	user := i.User
	if user == nil && i.Member != nil {
		user = i.Member.User
	}
	if user == nil {
		return
	}
	a.rememberChannel(user.ID, i.ChannelID)

	ev := gateway.Event{
		UserID: user.ID,
		Author: displayName(user),
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		ev.Kind = gateway.KindCommand
		ev.Command = i.ApplicationCommandData().Name
		a.acknowledge(s, i, fmt.Sprintf("/%s", ev.Command))

	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		switch {
		case strings.HasPrefix(customID, choicePrefix):
			ev.Kind = gateway.KindChoice
			ev.Choice = strings.TrimPrefix(customID, choicePrefix)
		case strings.HasPrefix(customID, keyboardPrefix):
			// Keyboard buttons come back as plain text input.
			ev.Kind = gateway.KindText
			ev.Text = strings.TrimPrefix(customID, keyboardPrefix)
		default:
			a.log.Warn("unknown component custom ID", zap.String("custom_id", customID))
			return
		}
		a.deferUpdate(s, i)

	default:
		return
	}

	a.handler.HandleEvent(ctx, ev)
}

// acknowledge closes a slash command interaction; replies go out as regular
// channel messages.
func (a *Adapter) acknowledge(s *discordgo.Session, i *discordgo.InteractionCreate, echo string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: echo,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		a.log.Warn("failed to acknowledge interaction", zap.Error(err))
	}
}

func (a *Adapter) deferUpdate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		a.log.Warn("failed to acknowledge component press", zap.Error(err))
	}
}

// SendText implements gateway.Messenger
func (a *Adapter) SendText(ctx context.Context, userID, body string, keyboard *gateway.Keyboard) error {
	channelID, err := a.channelFor(userID)
	if err != nil {
		return err
	}

	_, err = a.dg.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    body,
		Components: keyboardComponents(keyboard),
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to send message")
	}
	return nil
}

// SendImage implements gateway.Messenger
func (a *Adapter) SendImage(ctx context.Context, userID, path, caption string, keyboard *gateway.Keyboard) error {
	channelID, err := a.channelFor(userID)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return apperrors.WrapWithCode(err, apperrors.CodeUnavailable, "failed to open image asset")
	}
	defer f.Close() //nolint:errcheck

	_, err = a.dg.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    caption,
		Components: keyboardComponents(keyboard),
		Files: []*discordgo.File{{
			Name:        filepath.Base(path),
			ContentType: "image/jpeg",
			Reader:      f,
		}},
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to send image")
	}
	return nil
}

// PresentChoices implements gateway.Messenger
func (a *Adapter) PresentChoices(ctx context.Context, userID, prompt string, choices []gateway.Choice) error {
	channelID, err := a.channelFor(userID)
	if err != nil {
		return err
	}

	var rows []discordgo.MessageComponent
	row := discordgo.ActionsRow{}
	for _, c := range choices {
		if len(row.Components) == maxButtonsPerRow {
			rows = append(rows, row)
			row = discordgo.ActionsRow{}
		}
		row.Components = append(row.Components, discordgo.Button{
			Label:    c.Label,
			Style:    discordgo.SecondaryButton,
			CustomID: choicePrefix + c.Value,
		})
		if len(rows) == maxComponentRows {
			break
		}
	}
	if len(row.Components) > 0 && len(rows) < maxComponentRows {
		rows = append(rows, row)
	}

	_, err = a.dg.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    prompt,
		Components: rows,
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to present choices")
	}
	return nil
}

// Discord component limits
const (
	maxButtonsPerRow = 5
	maxComponentRows = 5
)

func keyboardComponents(kb *gateway.Keyboard) []discordgo.MessageComponent {
	if kb == nil {
		return nil
	}

	var rows []discordgo.MessageComponent
	for _, labels := range kb.Rows {
		if len(rows) == maxComponentRows {
			break
		}
		row := discordgo.ActionsRow{}
		for _, label := range labels {
			if len(row.Components) == maxButtonsPerRow {
				break
			}
			row.Components = append(row.Components, discordgo.Button{
				Label:    label,
				Style:    discordgo.PrimaryButton,
				CustomID: keyboardPrefix + label,
			})
		}
		rows = append(rows, row)
	}
	return rows
}

func (a *Adapter) channelFor(userID string) (string, error) {
	a.mu.Lock()
	if id, ok := a.channels[userID]; ok {
		a.mu.Unlock()
		return id, nil
	}
	a.mu.Unlock()

	ch, err := a.dg.UserChannelCreate(userID)
	if err != nil {
		return "", apperrors.Wrapf(err, "failed to open DM channel for user %s", userID)
	}

	a.mu.Lock()
	a.channels[userID] = ch.ID
	a.mu.Unlock()
	return ch.ID, nil
}

func (a *Adapter) rememberChannel(userID, channelID string) {
	a.mu.Lock()
	a.channels[userID] = channelID
	a.mu.Unlock()
}

func displayName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

func firstImageAttachment(atts []*discordgo.MessageAttachment) *discordgo.MessageAttachment {
	for _, att := range atts {
		if strings.HasPrefix(att.ContentType, "image/") {
			return att
		}
	}
	return nil
}

// attachmentAsset lazily downloads a message attachment
type attachmentAsset struct {
	client *http.Client
	url    string
	name   string
}

func (a *attachmentAsset) Name() string { return a.name }

func (a *attachmentAsset) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build attachment request")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, apperrors.WrapWithCode(err, apperrors.CodeUnavailable, "failed to download attachment")
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, apperrors.Newf(apperrors.CodeUnavailable, "attachment download returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
