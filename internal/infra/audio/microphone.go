//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"dictation/internal/domain"
)

const framesPerBuffer = 1024

// Microphone buffers the default input device in memory between Begin and
// End. The device is held exclusively for the lifetime of one recording.
type Microphone struct {
	sampleRate  int
	highpassHz  float64
	minDuration time.Duration
	logger      *slog.Logger

	mu        sync.Mutex
	recording bool
	stop      chan struct{}
	done      chan recordResult
}

type recordResult struct {
	samples []int16
	err     error
}

func NewMicrophone(sampleRate int, highpassHz float64, minDuration time.Duration, logger *slog.Logger) *Microphone {
	return &Microphone{
		sampleRate:  sampleRate,
		highpassHz:  highpassHz,
		minDuration: minDuration,
		logger:      logger,
	}
}

func (m *Microphone) Name() string {
	return "microphone"
}

// Begin acquires the input device and starts buffering samples. It fails
// synchronously when no device is available.
func (m *Microphone) Begin(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recording {
		return fmt.Errorf("microphone already recording")
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	in := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), len(in), in)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("starting stream: %w", err)
	}

	m.recording = true
	m.stop = make(chan struct{})
	m.done = make(chan recordResult, 1)

	go m.readLoop(stream, in, m.stop, m.done)

	m.logger.Info("recording started", "sample_rate", m.sampleRate)
	return nil
}

// readLoop owns the stream once Begin hands it over. It is the only
// goroutine touching the stream, so teardown never races a blocking Read.
func (m *Microphone) readLoop(stream *portaudio.Stream, in []int16, stop <-chan struct{}, done chan<- recordResult) {
	samples := make([]int16, 0, m.sampleRate)
	var readErr error

loop:
	for {
		select {
		case <-stop:
			break loop
		default:
		}

		if err := stream.Read(); err != nil {
			readErr = fmt.Errorf("reading stream: %w", err)
			break
		}
		samples = append(samples, in...)
	}

	stream.Stop()
	stream.Close()
	portaudio.Terminate()

	done <- recordResult{samples: samples, err: readErr}
}

// End stops buffering, releases the device and returns the clip as WAV
// bytes. Clips shorter than the configured minimum yield ErrNoAudio.
func (m *Microphone) End() ([]byte, error) {
	m.mu.Lock()
	if !m.recording {
		m.mu.Unlock()
		return nil, fmt.Errorf("microphone not recording")
	}
	stop, done := m.stop, m.done
	m.recording = false
	m.stop, m.done = nil, nil
	m.mu.Unlock()

	close(stop)
	res := <-done
	if res.err != nil {
		return nil, res.err
	}

	minSamples := int(m.minDuration.Seconds() * float64(m.sampleRate))
	if len(res.samples) < minSamples {
		m.logger.Info("clip below minimum duration", "samples", len(res.samples))
		return nil, domain.ErrNoAudio
	}

	samples := Highpass(res.samples, m.highpassHz, m.sampleRate)
	return EncodeWAV(samples, m.sampleRate), nil
}

// Abort stops buffering and discards whatever was captured.
func (m *Microphone) Abort() error {
	m.mu.Lock()
	if !m.recording {
		m.mu.Unlock()
		return nil
	}
	stop, done := m.stop, m.done
	m.recording = false
	m.stop, m.done = nil, nil
	m.mu.Unlock()

	close(stop)
	<-done
	return nil
}
