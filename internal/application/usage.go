package application

import "context"

// UsageRecorder persists the call counters. Record is invoked once per
// successful transcription API round-trip.
type UsageRecorder interface {
	Record(ctx context.Context) error
}

