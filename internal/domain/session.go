package domain

import "time"

type State int

const (
	StateIdle State = iota
	StateRecording
	StateTranscribing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateTranscribing:
		return "transcribing"
	default:
		return "unknown"
	}
}

type SessionStatus string

const (
	StatusDone     SessionStatus = "done"
	StatusEmpty    SessionStatus = "empty"
	StatusFailed   SessionStatus = "failed"
	StatusCanceled SessionStatus = "canceled"
)

// SessionResult is the terminal record of one dictation session, emitted
// once per session regardless of outcome.
type SessionResult struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Model     string
	Status    SessionStatus
	Text      string
	Chars     int
	ErrorKind ErrorKind
	Err       error
}
