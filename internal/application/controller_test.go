package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"dictation/internal/application"
	"dictation/internal/domain"
)

type mockCapture struct {
	mu       sync.Mutex
	begins   int
	ends     int
	aborts   int
	beginErr error
	endErr   error
	clip     []byte
}

func (m *mockCapture) Begin(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.beginErr != nil {
		return m.beginErr
	}
	m.begins++
	return nil
}

func (m *mockCapture) End() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ends++
	if m.endErr != nil {
		return nil, m.endErr
	}
	return m.clip, nil
}

func (m *mockCapture) Abort() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aborts++
	return nil
}

func (m *mockCapture) Name() string { return "mock" }

type mockTranscriber struct {
	mu      sync.Mutex
	text    string
	err     error
	calls   int
	models  []string
	prompts []string
	block   chan struct{}
}

func (m *mockTranscriber) Transcribe(_ context.Context, _ []byte, model, prompt string) (string, error) {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.models = append(m.models, model)
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func (m *mockTranscriber) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockInjector struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (m *mockInjector) Type(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.texts = append(m.texts, text)
	return nil
}

func (m *mockInjector) injected() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

type mockUsage struct {
	mu    sync.Mutex
	count int
}

func (m *mockUsage) Record(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count++
	return nil
}

func (m *mockUsage) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

type mockCues struct {
	mu     sync.Mutex
	played []application.Cue
}

func (m *mockCues) Play(cue application.Cue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.played = append(m.played, cue)
}

func (m *mockCues) sequence() []application.Cue {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]application.Cue(nil), m.played...)
}

type eventRecorder struct {
	mu     sync.Mutex
	states []domain.State
	done   chan domain.SessionResult
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{done: make(chan domain.SessionResult, 8)}
}

func (r *eventRecorder) StateChanged(st domain.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st)
}

func (r *eventRecorder) SessionDone(res domain.SessionResult) {
	r.done <- res
}

func (r *eventRecorder) stateLog() []domain.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.State(nil), r.states...)
}

type fixture struct {
	capture    *mockCapture
	trans      *mockTranscriber
	injector   *mockInjector
	usage      *mockUsage
	cues       *mockCues
	events     *eventRecorder
	controller *application.Controller
}

func newFixture() *fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &fixture{
		capture:  &mockCapture{clip: []byte("clip-bytes")},
		trans:    &mockTranscriber{text: "hello world"},
		injector: &mockInjector{},
		usage:    &mockUsage{},
		cues:     &mockCues{},
		events:   newEventRecorder(),
	}

	settings := application.NewSettings("gemini-1.5-flash-latest", "transcribe exactly", true)
	f.controller = application.NewController(
		f.capture,
		f.trans,
		f.injector,
		f.usage,
		f.cues,
		&application.NoopNotifier{},
		settings,
		logger,
	)
	f.controller.AddSink(f.events)
	return f
}

func (f *fixture) waitDone(t *testing.T) domain.SessionResult {
	t.Helper()
	select {
	case res := <-f.events.done:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session to finish")
		return domain.SessionResult{}
	}
}

func (f *fixture) assertNoSession(t *testing.T) {
	t.Helper()
	select {
	case res := <-f.events.done:
		t.Fatalf("unexpected session result: %+v", res)
	default:
	}
}

func TestController_SuccessfulSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.controller.Toggle(ctx)
	if got := f.controller.State(); got != domain.StateRecording {
		t.Fatalf("state after first toggle: got %s, want recording", got)
	}

	f.controller.Toggle(ctx)
	res := f.waitDone(t)

	if res.Status != domain.StatusDone {
		t.Errorf("status: got %s, want done", res.Status)
	}
	if res.Text != "hello world" {
		t.Errorf("text: got %q, want %q", res.Text, "hello world")
	}
	if got := f.injector.injected(); len(got) != 1 || got[0] != "hello world" {
		t.Errorf("injected: got %v, want exactly one %q", got, "hello world")
	}
	if got := f.usage.total(); got != 1 {
		t.Errorf("usage count: got %d, want 1", got)
	}
	if got := f.controller.State(); got != domain.StateIdle {
		t.Errorf("final state: got %s, want idle", got)
	}

	wantStates := []domain.State{domain.StateRecording, domain.StateTranscribing, domain.StateIdle}
	if got := f.events.stateLog(); len(got) != len(wantStates) {
		t.Errorf("state transitions: got %v, want %v", got, wantStates)
	} else {
		for i := range wantStates {
			if got[i] != wantStates[i] {
				t.Errorf("transition %d: got %s, want %s", i, got[i], wantStates[i])
			}
		}
	}

	if f.trans.models[0] != "gemini-1.5-flash-latest" {
		t.Errorf("model: got %s", f.trans.models[0])
	}
	if f.trans.prompts[0] != "transcribe exactly" {
		t.Errorf("prompt: got %s", f.trans.prompts[0])
	}

	wantCues := []application.Cue{application.CueStart, application.CueStop}
	if got := f.cues.sequence(); len(got) != 2 || got[0] != wantCues[0] || got[1] != wantCues[1] {
		t.Errorf("cues: got %v, want %v", got, wantCues)
	}
}

func TestController_StateAlternatesAcrossSessions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f.controller.Toggle(ctx)
		f.controller.Toggle(ctx)
		f.waitDone(t)
	}

	want := []domain.State{domain.StateRecording, domain.StateTranscribing, domain.StateIdle}
	got := f.events.stateLog()
	if len(got) != 3*len(want) {
		t.Fatalf("transitions: got %v", got)
	}
	for i, st := range got {
		if st != want[i%3] {
			t.Errorf("transition %d: got %s, want %s", i, st, want[i%3])
		}
	}

	if f.capture.begins != 3 || f.capture.ends != 3 {
		t.Errorf("capture pairs: begins=%d ends=%d, want 3/3", f.capture.begins, f.capture.ends)
	}
}

func TestController_ToggleDuringTranscribingIsNoOp(t *testing.T) {
	f := newFixture()
	f.trans.block = make(chan struct{})
	ctx := context.Background()

	f.controller.Toggle(ctx)
	f.controller.Toggle(ctx)

	// The worker is parked inside Transcribe; extra toggles must not start
	// a new session or touch the microphone.
	f.controller.Toggle(ctx)
	f.controller.Toggle(ctx)

	if got := f.controller.State(); got != domain.StateTranscribing {
		t.Fatalf("state during flight: got %s, want transcribing", got)
	}
	if f.capture.begins != 1 {
		t.Errorf("microphone acquisitions: got %d, want 1", f.capture.begins)
	}

	close(f.trans.block)
	res := f.waitDone(t)

	if res.Status != domain.StatusDone {
		t.Errorf("status: got %s, want done", res.Status)
	}
	if got := f.trans.callCount(); got != 1 {
		t.Errorf("transcribe calls: got %d, want 1", got)
	}
	if got := f.injector.injected(); len(got) != 1 {
		t.Errorf("injections: got %d, want 1", len(got))
	}
	if got := f.controller.State(); got != domain.StateIdle {
		t.Errorf("final state: got %s, want idle", got)
	}
}

func TestController_TranscriptionFailure(t *testing.T) {
	f := newFixture()
	f.trans.err = errors.New("api returned 500")
	ctx := context.Background()

	f.controller.Toggle(ctx)
	f.controller.Toggle(ctx)
	res := f.waitDone(t)

	if res.Status != domain.StatusFailed {
		t.Errorf("status: got %s, want failed", res.Status)
	}
	if res.ErrorKind != domain.ErrorKindTranscription {
		t.Errorf("error kind: got %s, want transcription", res.ErrorKind)
	}
	if got := f.injector.injected(); len(got) != 0 {
		t.Errorf("injector must not run on failure, got %v", got)
	}
	if got := f.usage.total(); got != 0 {
		t.Errorf("usage count: got %d, want 0", got)
	}
	if got := f.controller.State(); got != domain.StateIdle {
		t.Errorf("final state: got %s, want idle", got)
	}

	wantCues := []application.Cue{application.CueStart, application.CueStop, application.CueError}
	got := f.cues.sequence()
	if len(got) != 3 || got[0] != wantCues[0] || got[1] != wantCues[1] || got[2] != wantCues[2] {
		t.Errorf("cues: got %v, want %v", got, wantCues)
	}

	var serr *domain.SessionError
	if !errors.As(res.Err, &serr) || serr.Kind != domain.ErrorKindTranscription {
		t.Errorf("result error: got %v", res.Err)
	}
}

func TestController_DeviceUnavailable(t *testing.T) {
	f := newFixture()
	f.capture.beginErr = errors.New("no default input device")
	ctx := context.Background()

	f.controller.Toggle(ctx)
	res := f.waitDone(t)

	if res.Status != domain.StatusFailed || res.ErrorKind != domain.ErrorKindDevice {
		t.Errorf("result: got %s/%s, want failed/device", res.Status, res.ErrorKind)
	}
	if got := f.trans.callCount(); got != 0 {
		t.Errorf("transcriber must not be called, got %d calls", got)
	}
	if got := f.usage.total(); got != 0 {
		t.Errorf("usage count: got %d, want 0", got)
	}
	if got := f.controller.State(); got != domain.StateIdle {
		t.Errorf("state: got %s, want idle", got)
	}
	if got := f.events.stateLog(); len(got) != 0 {
		t.Errorf("no transitions expected, got %v", got)
	}
}

func TestController_EmptyClipSkipsAPICall(t *testing.T) {
	f := newFixture()
	f.capture.endErr = domain.ErrNoAudio
	ctx := context.Background()

	f.controller.Toggle(ctx)
	f.controller.Toggle(ctx)
	res := f.waitDone(t)

	if res.Status != domain.StatusFailed || res.ErrorKind != domain.ErrorKindEmptyAudio {
		t.Errorf("result: got %s/%s, want failed/empty_audio", res.Status, res.ErrorKind)
	}
	if got := f.trans.callCount(); got != 0 {
		t.Errorf("transcriber must not be called for an empty clip, got %d", got)
	}
	if got := f.usage.total(); got != 0 {
		t.Errorf("usage count: got %d, want 0", got)
	}
}

func TestController_EmptyTranscript(t *testing.T) {
	f := newFixture()
	f.trans.text = "   \n"
	ctx := context.Background()

	f.controller.Toggle(ctx)
	f.controller.Toggle(ctx)
	res := f.waitDone(t)

	if res.Status != domain.StatusEmpty {
		t.Errorf("status: got %s, want empty", res.Status)
	}
	if got := f.injector.injected(); len(got) != 0 {
		t.Errorf("nothing should be injected, got %v", got)
	}
	if got := f.usage.total(); got != 1 {
		t.Errorf("usage count: got %d, want 1 (the API call succeeded)", got)
	}
}

func TestController_InjectionFailureIsSurfaced(t *testing.T) {
	f := newFixture()
	f.injector.err = errors.New("no focused window")
	ctx := context.Background()

	f.controller.Toggle(ctx)
	f.controller.Toggle(ctx)
	res := f.waitDone(t)

	if res.Status != domain.StatusFailed || res.ErrorKind != domain.ErrorKindInjection {
		t.Errorf("result: got %s/%s, want failed/injection", res.Status, res.ErrorKind)
	}
	if got := f.usage.total(); got != 1 {
		t.Errorf("usage count: got %d, want 1 (the API call succeeded)", got)
	}
	if got := f.controller.State(); got != domain.StateIdle {
		t.Errorf("state: got %s, want idle", got)
	}
}

func TestController_CancelDiscardsRecording(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.controller.Toggle(ctx)
	f.controller.Cancel(ctx)
	res := f.waitDone(t)

	if res.Status != domain.StatusCanceled {
		t.Errorf("status: got %s, want canceled", res.Status)
	}
	if f.capture.aborts != 1 {
		t.Errorf("aborts: got %d, want 1", f.capture.aborts)
	}
	if got := f.trans.callCount(); got != 0 {
		t.Errorf("transcriber must not be called on cancel, got %d", got)
	}
	if got := f.usage.total(); got != 0 {
		t.Errorf("usage count: got %d, want 0", got)
	}

	wantCues := []application.Cue{application.CueStart, application.CueStop}
	if got := f.cues.sequence(); len(got) != 2 || got[0] != wantCues[0] || got[1] != wantCues[1] {
		t.Errorf("cues: got %v, want %v", got, wantCues)
	}
	if got := f.controller.State(); got != domain.StateIdle {
		t.Errorf("state: got %s, want idle", got)
	}
}

func TestController_CancelWhileIdleDoesNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.controller.Cancel(ctx)
	time.Sleep(20 * time.Millisecond)

	f.assertNoSession(t)
	if f.capture.aborts != 0 {
		t.Errorf("aborts: got %d, want 0", f.capture.aborts)
	}
	if got := f.controller.State(); got != domain.StateIdle {
		t.Errorf("state: got %s, want idle", got)
	}
}
