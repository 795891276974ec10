package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dictation/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	if cfg.Transcriber != config.TranscriberGemini {
		t.Errorf("transcriber = %q, want %q", cfg.Transcriber, config.TranscriberGemini)
	}
	if cfg.Gemini.Model != "gemini-1.5-flash-latest" {
		t.Errorf("gemini model = %q, want gemini-1.5-flash-latest", cfg.Gemini.Model)
	}
	if cfg.Hotkey.Toggle != "ctrl+alt+d" {
		t.Errorf("toggle hotkey = %q, want ctrl+alt+d", cfg.Hotkey.Toggle)
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("sample rate = %d, want 16000", cfg.Audio.SampleRate)
	}
	if got := cfg.RequestTimeout().Seconds(); got != 120 {
		t.Errorf("request timeout = %vs, want 120s", got)
	}
	if !cfg.Sounds.Enabled {
		t.Error("sounds should be enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transcriber != config.TranscriberGemini {
		t.Errorf("transcriber = %q, want default %q", cfg.Transcriber, config.TranscriberGemini)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadKeepsDefaultsForUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
transcriber: whisper
audio:
  source: file
  file: clip.wav
sounds:
  start: custom_start.mp3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transcriber != config.TranscriberWhisper {
		t.Errorf("transcriber = %q, want whisper", cfg.Transcriber)
	}
	if cfg.Audio.File != "clip.wav" {
		t.Errorf("audio file = %q, want clip.wav", cfg.Audio.File)
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("sample rate = %d, want default 16000", cfg.Audio.SampleRate)
	}
	if !cfg.Sounds.Enabled {
		t.Error("sounds.enabled should keep its default when the file omits it")
	}
	if cfg.Sounds.Start != "custom_start.mp3" {
		t.Errorf("sounds start = %q, want custom_start.mp3", cfg.Sounds.Start)
	}
}

func TestLoadExpandsEnvReferences(t *testing.T) {
	t.Setenv("DICTATION_TEST_KEY", "secret-value")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "gemini:\n  api_key: ${DICTATION_TEST_KEY}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gemini.APIKey != "secret-value" {
		t.Errorf("api key = %q, want expanded secret-value", cfg.Gemini.APIKey)
	}
}

func TestSavePreservesEnvReferences(t *testing.T) {
	t.Setenv("DICTATION_TEST_KEY", "secret-value")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "gemini:\n  api_key: ${DICTATION_TEST_KEY}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.SetActiveModel("gemini-2.0-flash")
	cfg.SetSoundEnabled(false)
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(saved)
	if !strings.Contains(text, "${DICTATION_TEST_KEY}") {
		t.Error("saved config should keep the ${VAR} reference")
	}
	if strings.Contains(text, "secret-value") {
		t.Error("saved config must not contain the expanded secret")
	}
	if !strings.Contains(text, "gemini-2.0-flash") {
		t.Error("saved config should contain the selected model")
	}

	reloaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("reloaded model = %q, want gemini-2.0-flash", reloaded.Gemini.Model)
	}
	if reloaded.Sounds.Enabled {
		t.Error("reloaded sounds.enabled should be false")
	}
	if reloaded.Gemini.APIKey != "secret-value" {
		t.Errorf("reloaded api key = %q, want re-expanded secret-value", reloaded.Gemini.APIKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		errMsg string
	}{
		{"defaults", func(*config.Config) {}, ""},
		{"whisper backend", func(c *config.Config) { c.Transcriber = config.TranscriberWhisper }, ""},
		{"unknown transcriber", func(c *config.Config) { c.Transcriber = "parrot" }, "unknown transcriber"},
		{"unknown audio source", func(c *config.Config) { c.Audio.Source = "tape" }, "unknown audio source"},
		{"file source without path", func(c *config.Config) { c.Audio.Source = "file" }, "audio.file must be set"},
		{"zero sample rate", func(c *config.Config) { c.Audio.SampleRate = 0 }, "sample_rate must be positive"},
		{"stereo capture", func(c *config.Config) { c.Audio.Channels = 2 }, "only mono capture"},
		{"missing toggle hotkey", func(c *config.Config) { c.Hotkey.Toggle = "" }, "hotkey.toggle must be set"},
		{"zero timeout", func(c *config.Config) { c.RequestTimeoutSeconds = 0 }, "request_timeout_seconds must be positive"},
		{"bad log level", func(c *config.Config) { c.Log.Level = "loud" }, "unknown log level"},
		{"bad log format", func(c *config.Config) { c.Log.Format = "xml" }, "unknown log format"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.errMsg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tc.errMsg)
			}
		})
	}
}

func TestActiveModelFollowsBackend(t *testing.T) {
	cfg := config.Default()

	if got := cfg.ActiveModel(); got != "gemini-1.5-flash-latest" {
		t.Errorf("gemini active model = %q", got)
	}
	if got := cfg.AvailableModels(); len(got) == 0 || got[0] != "gemini-2.0-flash" {
		t.Errorf("gemini available models = %v", got)
	}

	cfg.Transcriber = config.TranscriberWhisper
	if got := cfg.ActiveModel(); got != "whisper-1" {
		t.Errorf("whisper active model = %q", got)
	}
	if got := cfg.AvailableModels(); len(got) != 1 || got[0] != "whisper-1" {
		t.Errorf("whisper available models = %v", got)
	}

	cfg.SetActiveModel("whisper-1")
	if cfg.OpenAI.Model != "whisper-1" {
		t.Errorf("SetActiveModel should target the whisper backend, got %q", cfg.OpenAI.Model)
	}
}
