package inject

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"
)

// Injector delivers text to the focused window by staging it on the
// clipboard and sending the paste chord.
type Injector struct {
	trailingSpace    bool
	restoreClipboard bool
	logger           *slog.Logger

	readClip  func() (string, error)
	writeClip func(string) error
	sendPaste func() error
}

func New(trailingSpace, restoreClipboard bool, logger *slog.Logger) *Injector {
	return &Injector{
		trailingSpace:    trailingSpace,
		restoreClipboard: restoreClipboard,
		logger:           logger,
		readClip:         clipboard.ReadAll,
		writeClip:        clipboard.WriteAll,
		sendPaste:        sendPasteChord,
	}
}

func (i *Injector) Type(_ context.Context, text string) error {
	if i.trailingSpace {
		text += " "
	}

	orig, readErr := i.readClip()
	if readErr != nil {
		i.logger.Debug("reading clipboard", "error", readErr)
	}

	if err := i.writeClip(text); err != nil {
		return fmt.Errorf("staging clipboard: %w", err)
	}
	// small delay so the clipboard write settles before the chord
	time.Sleep(80 * time.Millisecond)

	if err := i.sendPaste(); err != nil {
		return fmt.Errorf("sending paste chord: %w", err)
	}

	// restore is skipped when the original read failed
	if i.restoreClipboard && readErr == nil {
		time.Sleep(120 * time.Millisecond)
		if err := i.writeClip(orig); err != nil {
			i.logger.Warn("restoring clipboard", "error", err)
		}
	}

	return nil
}

func sendPasteChord() error {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return err
	}
	kb.HasCTRL(true)
	kb.SetKeys(keybd_event.VK_V)
	return kb.Launching()
}
