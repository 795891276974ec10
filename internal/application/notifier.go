package application

import "context"

// Notifier surfaces session outcomes to the user outside the log stream,
// e.g. as desktop notifications.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

type NoopNotifier struct{}

func (n *NoopNotifier) Notify(_ context.Context, _, _ string) error {
	return nil
}
