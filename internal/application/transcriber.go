package application

import "context"

// Transcriber converts a WAV clip to text. Implementations make a single
// attempt per call; retrying a failed dictation is the user's decision.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, model, prompt string) (string, error)
}
