package notify

import (
	"context"

	"github.com/gen2brain/beeep"
)

// Desktop shows transient notifications through the platform notifier.
// The icon is optional; an empty path shows a bare toast.
type Desktop struct {
	iconPath string
}

func NewDesktop(iconPath string) *Desktop {
	return &Desktop{iconPath: iconPath}
}

func (d *Desktop) Notify(_ context.Context, title, message string) error {
	return beeep.Notify(title, message, d.iconPath)
}
