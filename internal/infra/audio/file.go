package audio

import (
	"context"
	"fmt"
	"os"

	"dictation/internal/domain"
)

// FileCapture replays a pre-recorded clip instead of recording the
// microphone. Begin verifies the file is readable; End returns its
// contents. Used for development and end-to-end tests.
type FileCapture struct {
	path string
}

func NewFileCapture(path string) *FileCapture {
	return &FileCapture{path: path}
}

func (f *FileCapture) Name() string {
	return "file"
}

func (f *FileCapture) Begin(_ context.Context) error {
	info, err := os.Stat(f.path)
	if err != nil {
		return fmt.Errorf("audio file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("audio file %s is a directory", f.path)
	}
	return nil
}

func (f *FileCapture) End() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading audio file: %w", err)
	}
	if len(data) == 0 {
		return nil, domain.ErrNoAudio
	}
	return data, nil
}

func (f *FileCapture) Abort() error {
	return nil
}
