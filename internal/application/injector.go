package application

import "context"

// TextInjector delivers text to whatever window currently has focus by
// simulating keyboard input.
type TextInjector interface {
	Type(ctx context.Context, text string) error
}
