package gateway

//go:generate mockgen -destination=mock/mock.go -package=mockgateway -source=messenger.go

import "context"

// Messenger is the outbound surface the core drives. Implementations talk
// to the actual messaging transport; the core never sees transport types.
type Messenger interface {
	// SendText sends a text message, optionally replacing the user's
	// reply keyboard
	SendText(ctx context.Context, userID, body string, keyboard *Keyboard) error

	// SendImage sends a stored image asset with a caption
	SendImage(ctx context.Context, userID, path, caption string, keyboard *Keyboard) error

	// PresentChoices shows an ephemeral selection surface tied to one
	// message; the selection comes back as a KindChoice event
	PresentChoices(ctx context.Context, userID, prompt string, choices []Choice) error
}
