//go:build !windows

package hotkey

import (
	"fmt"
	"log/slog"
)

// Listen is only implemented for Windows builds.
func Listen(toggleSpec, cancelSpec string, handler func(Action), logger *slog.Logger) error {
	return fmt.Errorf("global hotkeys not supported on this platform")
}
