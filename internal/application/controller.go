package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"dictation/internal/domain"
)

// Controller drives the dictation session lifecycle:
// Idle -> Recording -> Transcribing -> Idle. At most one session exists at
// a time; a toggle received while a transcription is in flight is ignored.
type Controller struct {
	capture  AudioCapture
	trans    Transcriber
	injector TextInjector
	usage    UsageRecorder
	cues     CuePlayer
	notifier Notifier
	settings *Settings
	logger   *slog.Logger

	mu      sync.Mutex
	state   domain.State
	current *session

	sinks []EventSink
}

type session struct {
	id        string
	startedAt time.Time
	model     string
	prompt    string
}

func NewController(
	capture AudioCapture,
	trans Transcriber,
	injector TextInjector,
	usage UsageRecorder,
	cues CuePlayer,
	notifier Notifier,
	settings *Settings,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		capture:  capture,
		trans:    trans,
		injector: injector,
		usage:    usage,
		cues:     cues,
		notifier: notifier,
		settings: settings,
		logger:   logger,
		state:    domain.StateIdle,
	}
}

// AddSink registers a lifecycle observer. Sinks must be registered before
// the first Toggle; the slice is not guarded afterwards.
func (c *Controller) AddSink(sink EventSink) {
	c.sinks = append(c.sinks, sink)
}

func (c *Controller) State() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Toggle starts a session when idle and finishes one when recording.
// Finishing hands the buffered clip to a worker goroutine so the caller
// (hotkey loop, tray) stays responsive while the API call is in flight.
func (c *Controller) Toggle(ctx context.Context) {
	c.mu.Lock()
	switch c.state {
	case domain.StateTranscribing:
		c.mu.Unlock()
		c.logger.Debug("toggle ignored, transcription in flight")

	case domain.StateRecording:
		sess := c.current
		c.current = nil
		c.state = domain.StateTranscribing
		c.mu.Unlock()

		c.emitState(domain.StateTranscribing)
		c.cues.Play(CueStop)
		clip, err := c.capture.End()
		c.logger.Info("recording stopped", "session", sess.id, "bytes", len(clip))
		go c.finish(ctx, sess, clip, err)

	default: // idle
		sess := &session{
			id:        uuid.NewString(),
			startedAt: time.Now(),
			model:     c.settings.Model(),
			prompt:    c.settings.SystemPrompt(),
		}
		if err := c.capture.Begin(ctx); err != nil {
			c.mu.Unlock()
			c.completeFailure(ctx, sess, domain.ErrorKindDevice, err)
			return
		}
		c.current = sess
		c.state = domain.StateRecording
		c.mu.Unlock()

		c.emitState(domain.StateRecording)
		c.cues.Play(CueStart)
		c.logger.Info("recording started", "session", sess.id, "model", sess.model)
	}
}

// Cancel discards an in-progress recording without transcribing: no API
// call, no stats increment. It does nothing unless a recording is active.
func (c *Controller) Cancel(ctx context.Context) {
	c.mu.Lock()
	if c.state != domain.StateRecording {
		c.mu.Unlock()
		c.logger.Debug("cancel ignored", "state", c.state.String())
		return
	}
	sess := c.current
	c.current = nil
	c.state = domain.StateIdle
	c.mu.Unlock()

	if err := c.capture.Abort(); err != nil {
		c.logger.Warn("aborting capture", "error", err)
	}
	c.cues.Play(CueStop)
	c.logger.Info("recording canceled", "session", sess.id)

	c.emitState(domain.StateIdle)
	c.emitDone(sess.result(domain.StatusCanceled))
}

// finish runs on the worker goroutine. Injection and the stats increment
// happen before the controller returns to Idle, so a new toggle is only
// accepted once this session's side effects are complete.
func (c *Controller) finish(ctx context.Context, sess *session, clip []byte, endErr error) {
	if endErr != nil {
		kind := domain.ErrorKindDevice
		if errors.Is(endErr, domain.ErrNoAudio) {
			kind = domain.ErrorKindEmptyAudio
		}
		c.completeFailure(ctx, sess, kind, endErr)
		return
	}
	if len(clip) == 0 {
		c.completeFailure(ctx, sess, domain.ErrorKindEmptyAudio, domain.ErrNoAudio)
		return
	}

	c.logger.Info("transcribing", "session", sess.id, "model", sess.model)
	text, err := c.trans.Transcribe(ctx, clip, sess.model, sess.prompt)
	if err != nil {
		c.completeFailure(ctx, sess, domain.ErrorKindTranscription, err)
		return
	}

	// The billable call succeeded; this counts even if the transcript is
	// empty or injection fails afterwards.
	if err := c.usage.Record(ctx); err != nil {
		c.logger.Warn("recording usage", "error", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		c.logger.Info("no speech detected", "session", sess.id)
		c.notify(ctx, "Dictation", "No speech detected")
		c.complete(sess.result(domain.StatusEmpty))
		return
	}

	if err := c.injector.Type(ctx, text); err != nil {
		c.completeFailure(ctx, sess, domain.ErrorKindInjection, err)
		return
	}

	res := sess.result(domain.StatusDone)
	res.Text = text
	res.Chars = utf8.RuneCountInString(text)
	c.logger.Info("dictation complete", "session", sess.id, "chars", res.Chars)
	c.complete(res)
}

func (c *Controller) completeFailure(ctx context.Context, sess *session, kind domain.ErrorKind, err error) {
	c.logger.Error("session failed", "session", sess.id, "kind", string(kind), "error", err)
	c.cues.Play(CueError)
	c.notify(ctx, "Dictation failed", err.Error())

	res := sess.result(domain.StatusFailed)
	res.ErrorKind = kind
	res.Err = &domain.SessionError{Kind: kind, Err: err}
	c.complete(res)
}

// complete returns the controller to Idle and emits the terminal events.
func (c *Controller) complete(res domain.SessionResult) {
	c.mu.Lock()
	changed := c.state != domain.StateIdle
	c.state = domain.StateIdle
	c.current = nil
	c.mu.Unlock()

	if changed {
		c.emitState(domain.StateIdle)
	}
	c.emitDone(res)
}

func (c *Controller) notify(ctx context.Context, title, message string) {
	if err := c.notifier.Notify(ctx, title, message); err != nil {
		c.logger.Warn("sending notification", "error", err)
	}
}

func (c *Controller) emitState(st domain.State) {
	for _, s := range c.sinks {
		s.StateChanged(st)
	}
}

func (c *Controller) emitDone(res domain.SessionResult) {
	for _, s := range c.sinks {
		s.SessionDone(res)
	}
}

func (s *session) result(status domain.SessionStatus) domain.SessionResult {
	return domain.SessionResult{
		ID:        s.id,
		StartedAt: s.startedAt,
		Duration:  time.Since(s.startedAt),
		Model:     s.model,
		Status:    status,
	}
}
