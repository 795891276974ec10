package cue

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"

	"dictation/internal/application"
)

// playbackRate is the mixer rate; cues recorded at other rates are
// resampled once at load time.
const playbackRate = beep.SampleRate(44100)

// Player decodes the cue assets at construction and replays them from
// memory. Missing or unreadable assets are skipped, leaving that cue
// silent. Play never blocks.
type Player struct {
	enabled func() bool
	logger  *slog.Logger
	buffers map[application.Cue]*beep.Buffer
	ready   bool
}

func NewPlayer(startPath, stopPath, errorPath string, enabled func() bool, logger *slog.Logger) *Player {
	p := &Player{
		enabled: enabled,
		logger:  logger,
		buffers: make(map[application.Cue]*beep.Buffer),
	}

	paths := map[application.Cue]string{
		application.CueStart: startPath,
		application.CueStop:  stopPath,
		application.CueError: errorPath,
	}
	for cue, path := range paths {
		if path == "" {
			continue
		}
		buf, err := loadCue(path)
		if err != nil {
			logger.Warn("loading cue", "cue", cue.String(), "path", path, "error", err)
			continue
		}
		p.buffers[cue] = buf
	}

	if len(p.buffers) > 0 {
		if err := speaker.Init(playbackRate, playbackRate.N(time.Second/10)); err != nil {
			logger.Warn("initializing speaker", "error", err)
		} else {
			p.ready = true
		}
	}

	return p
}

// Play mixes the cue into the speaker and returns immediately.
func (p *Player) Play(cue application.Cue) {
	if !p.ready || !p.enabled() {
		return
	}
	buf, ok := p.buffers[cue]
	if !ok {
		return
	}
	speaker.Play(buf.Streamer(0, buf.Len()))
}

func loadCue(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("unsupported cue format %q", ext)
	}
	if err != nil {
		f.Close()
		return nil, err
	}
	defer streamer.Close()

	buf := beep.NewBuffer(beep.Format{
		SampleRate:  playbackRate,
		NumChannels: format.NumChannels,
		Precision:   2,
	})
	if format.SampleRate == playbackRate {
		buf.Append(streamer)
	} else {
		buf.Append(beep.Resample(4, format.SampleRate, playbackRate, streamer))
	}
	return buf, nil
}
