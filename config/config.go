package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	TranscriberGemini  = "gemini"
	TranscriberWhisper = "whisper"
)

// DefaultSystemPrompt is used when system_prompt is not set. It mirrors the
// instructions the transcription models respond to best: clean text, no
// commentary, empty output for silence.
const DefaultSystemPrompt = `You are a dictation transcriber. Transcribe the speech in this audio exactly as spoken, with correct punctuation and capitalization. Remove filler words such as "um", "uh" and false starts, but do not rephrase anything. Output only the transcribed text, with no commentary or quotes. If the audio contains no intelligible speech, output an empty string.`

// Model choices offered by the settings surface, per backend.
var (
	GeminiModels = []string{
		"gemini-2.0-flash",
		"gemini-2.0-flash-lite",
		"gemini-1.5-flash-latest",
	}
	WhisperModels = []string{"whisper-1"}
)

type Config struct {
	Transcriber           string             `yaml:"transcriber"`
	SystemPrompt          string             `yaml:"system_prompt"`
	RequestTimeoutSeconds int                `yaml:"request_timeout_seconds"`
	Gemini                GeminiConfig       `yaml:"gemini"`
	OpenAI                OpenAIConfig       `yaml:"openai"`
	Hotkey                HotkeyConfig       `yaml:"hotkey"`
	Audio                 AudioConfig        `yaml:"audio"`
	Sounds                SoundsConfig       `yaml:"sounds"`
	Tray                  TrayConfig         `yaml:"tray"`
	Notifications         NotificationConfig `yaml:"notifications"`
	Injection             InjectionConfig    `yaml:"injection"`
	Usage                 UsageConfig        `yaml:"usage"`
	History               HistoryConfig      `yaml:"history"`
	Log                   LogConfig          `yaml:"log"`

	// raw mirrors the file as written, with ${VAR} placeholders intact,
	// so Save never bakes expanded secrets into the file.
	raw  *Config
	path string
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OpenAIConfig struct {
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
}

type HotkeyConfig struct {
	Toggle string `yaml:"toggle"`
	Cancel string `yaml:"cancel"`
}

type AudioConfig struct {
	Source        string  `yaml:"source"`
	File          string  `yaml:"file"`
	SampleRate    int     `yaml:"sample_rate"`
	Channels      int     `yaml:"channels"`
	HighpassHz    float64 `yaml:"highpass_hz"`
	MinDurationMs int     `yaml:"min_duration_ms"`
}

type SoundsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Start   string `yaml:"start"`
	Stop    string `yaml:"stop"`
	Error   string `yaml:"error"`
}

type TrayConfig struct {
	Enabled bool   `yaml:"enabled"`
	Icon    string `yaml:"icon"`
}

type NotificationConfig struct {
	Enabled bool `yaml:"enabled"`
}

type InjectionConfig struct {
	TrailingSpace    bool `yaml:"trailing_space"`
	RestoreClipboard bool `yaml:"restore_clipboard"`
}

type UsageConfig struct {
	File string `yaml:"file"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when the file is absent or a field
// is not set. Loading unmarshals the file over this, so booleans that
// default to true keep working.
func Default() *Config {
	return &Config{
		Transcriber:           TranscriberGemini,
		SystemPrompt:          DefaultSystemPrompt,
		RequestTimeoutSeconds: 120,
		Gemini: GeminiConfig{
			Model: "gemini-1.5-flash-latest",
		},
		OpenAI: OpenAIConfig{
			Model: "whisper-1",
		},
		Hotkey: HotkeyConfig{
			Toggle: "ctrl+alt+d",
		},
		Audio: AudioConfig{
			Source:        "mic",
			SampleRate:    16000,
			Channels:      1,
			HighpassHz:    100,
			MinDurationMs: 300,
		},
		Sounds: SoundsConfig{
			Enabled: true,
			Start:   "assets/dictation_started.mp3",
			Stop:    "assets/dictation_stopped.mp3",
			Error:   "assets/dictation_failed.mp3",
		},
		Tray: TrayConfig{
			Enabled: true,
			Icon:    "assets/icon.png",
		},
		Notifications: NotificationConfig{Enabled: true},
		Injection: InjectionConfig{
			TrailingSpace:    true,
			RestoreClipboard: true,
		},
		Usage:   UsageConfig{File: "dictation_usage.json"},
		History: HistoryConfig{Path: "dictation_history.db"},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the config file at path. ${VAR} references are expanded from
// the environment for runtime use; the unexpanded form is kept for Save.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			cfg.raw = Default()
			cfg.path = path
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	raw := Default()
	if err := yaml.Unmarshal(data, raw); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg := Default()
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.raw = raw
	cfg.path = path
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Transcriber {
	case TranscriberGemini, TranscriberWhisper:
	default:
		return fmt.Errorf("unknown transcriber %q (want %q or %q)", c.Transcriber, TranscriberGemini, TranscriberWhisper)
	}

	switch c.Audio.Source {
	case "mic", "file":
	default:
		return fmt.Errorf("unknown audio source %q (want mic or file)", c.Audio.Source)
	}
	if c.Audio.Source == "file" && c.Audio.File == "" {
		return fmt.Errorf("audio.file must be set when audio.source is file")
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Channels != 1 {
		return fmt.Errorf("audio.channels: only mono capture is supported, got %d", c.Audio.Channels)
	}

	if c.Hotkey.Toggle == "" {
		return fmt.Errorf("hotkey.toggle must be set")
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive, got %d", c.RequestTimeoutSeconds)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}

	return nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ActiveModel returns the model configured for the selected backend.
func (c *Config) ActiveModel() string {
	if c.Transcriber == TranscriberWhisper {
		return c.OpenAI.Model
	}
	return c.Gemini.Model
}

// SetActiveModel updates the selected backend's model in both the runtime
// view and the to-be-saved view.
func (c *Config) SetActiveModel(model string) {
	if c.Transcriber == TranscriberWhisper {
		c.OpenAI.Model = model
		if c.raw != nil {
			c.raw.OpenAI.Model = model
		}
		return
	}
	c.Gemini.Model = model
	if c.raw != nil {
		c.raw.Gemini.Model = model
	}
}

func (c *Config) SetSoundEnabled(enabled bool) {
	c.Sounds.Enabled = enabled
	if c.raw != nil {
		c.raw.Sounds.Enabled = enabled
	}
}

// AvailableModels lists the models the settings surface offers for the
// selected backend.
func (c *Config) AvailableModels() []string {
	if c.Transcriber == TranscriberWhisper {
		return WhisperModels
	}
	return GeminiModels
}

// Save writes the configuration back to the file it was loaded from with
// ${VAR} placeholders preserved.
func (c *Config) Save() error {
	out := c.raw
	if out == nil {
		out = c
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
