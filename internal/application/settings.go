package application

import "sync"

// Settings is the live dictation configuration shared between the
// controller (reads) and the settings surface (writes). It is the
// process-scoped counterpart of the persisted config file.
type Settings struct {
	mu           sync.RWMutex
	model        string
	systemPrompt string
	soundEnabled bool
}

func NewSettings(model, systemPrompt string, soundEnabled bool) *Settings {
	return &Settings{
		model:        model,
		systemPrompt: systemPrompt,
		soundEnabled: soundEnabled,
	}
}

func (s *Settings) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

func (s *Settings) SetModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
}

func (s *Settings) SystemPrompt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.systemPrompt
}

func (s *Settings) SetSystemPrompt(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systemPrompt = prompt
}

func (s *Settings) SoundEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.soundEnabled
}

func (s *Settings) SetSoundEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.soundEnabled = enabled
}
