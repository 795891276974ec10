package application

import "dictation/internal/domain"

// EventSink observes the session lifecycle. StateChanged fires on every
// transition; SessionDone fires exactly once per session, after all side
// effects of that session have completed. Callbacks must return quickly.
type EventSink interface {
	StateChanged(st domain.State)
	SessionDone(res domain.SessionResult)
}
