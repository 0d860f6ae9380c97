package gateway

import (
	"context"
	"io"
)

// Kind discriminates inbound event types
type Kind int

const (
	// KindText is free text typed by the user (includes reply-keyboard
	// button presses, which arrive as plain text)
	KindText Kind = iota

	// KindChoice is a bounded menu selection, distinct from free text
	KindChoice

	// KindImage is an image-bearing event
	KindImage

	// KindCommand is a named command invocation
	KindCommand
)

// Asset is a lazily-downloadable image attachment
type Asset interface {
	// Name is the attachment's file name
	Name() string

	// Open fetches the asset content
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Event is one inbound message from a user
type Event struct {
	Kind   Kind
	UserID string

	// Author is the user's display name, captured for build attribution
	Author string

	// Text carries KindText content
	Text string

	// Choice carries the selected value for KindChoice
	Choice string

	// Command carries the command name for KindCommand
	Command string

	// Image carries the attachment for KindImage
	Image Asset
}

// Keyboard is a persistent set of reply buttons, row by row
type Keyboard struct {
	Rows [][]string
}

// NewKeyboard builds a keyboard from rows of button labels
func NewKeyboard(rows ...[]string) *Keyboard {
	return &Keyboard{Rows: rows}
}

// Choice is one option of an ephemeral selection surface
type Choice struct {
	Value string
	Label string
}
