package application

import "context"

// AudioCapture owns the microphone for the duration of one session.
// Begin acquires the device and starts buffering; End stops buffering,
// releases the device and returns the clip encoded as WAV; Abort releases
// the device and discards the buffer.
type AudioCapture interface {
	Begin(ctx context.Context) error
	End() ([]byte, error)
	Abort() error
	Name() string
}
