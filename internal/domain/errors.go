package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrorKindDevice        ErrorKind = "device"
	ErrorKindTranscription ErrorKind = "transcription"
	ErrorKindEmptyAudio    ErrorKind = "empty_audio"
	ErrorKindInjection     ErrorKind = "injection"
)

// ErrNoAudio is returned by capture sources when a clip is empty or too
// short to transcribe.
var ErrNoAudio = errors.New("no audio captured")

// SessionError ties a session failure to the stage it happened in.
type SessionError struct {
	Kind ErrorKind
	Err  error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
