//go:build !portaudio
// +build !portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Microphone stub when portaudio is not available.
type Microphone struct {
	logger *slog.Logger
}

func NewMicrophone(sampleRate int, highpassHz float64, minDuration time.Duration, logger *slog.Logger) *Microphone {
	return &Microphone{logger: logger}
}

func (m *Microphone) Name() string {
	return "microphone"
}

func (m *Microphone) Begin(_ context.Context) error {
	return fmt.Errorf("microphone capture not available: rebuild with -tags portaudio")
}

func (m *Microphone) End() ([]byte, error) {
	return nil, fmt.Errorf("microphone capture not available")
}

func (m *Microphone) Abort() error {
	return nil
}
