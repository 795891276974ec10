package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dictation/config"
	"dictation/internal/application"
	"dictation/internal/infra"
	"dictation/internal/infra/audio"
	"dictation/internal/infra/cue"
	"dictation/internal/infra/gemini"
	"dictation/internal/infra/history"
	"dictation/internal/infra/hotkey"
	"dictation/internal/infra/inject"
	"dictation/internal/infra/notify"
	"dictation/internal/infra/openai"
	"dictation/internal/infra/tray"
	"dictation/internal/infra/usage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	settings := application.NewSettings(cfg.ActiveModel(), cfg.SystemPrompt, cfg.Sounds.Enabled)

	capture := createCapture(cfg.Audio, logger)
	transcriber := createTranscriber(cfg)
	injector := inject.New(cfg.Injection.TrailingSpace, cfg.Injection.RestoreClipboard, logger)
	cues := cue.NewPlayer(cfg.Sounds.Start, cfg.Sounds.Stop, cfg.Sounds.Error, settings.SoundEnabled, logger)
	stats := usage.NewStore(cfg.Usage.File, logger)

	var notifier application.Notifier
	if cfg.Notifications.Enabled {
		notifier = notify.NewDesktop(cfg.Tray.Icon)
	} else {
		notifier = &application.NoopNotifier{}
	}

	controller := application.NewController(
		capture,
		transcriber,
		injector,
		stats,
		cues,
		notifier,
		settings,
		logger,
	)

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path, logger)
		if err != nil {
			logger.Error("opening history store", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		controller.AddSink(store)
	}

	trayApp := tray.New(cfg, settings, stats,
		func() { controller.Toggle(ctx) },
		func() { controller.Cancel(ctx) },
		logger,
	)
	if cfg.Tray.Enabled {
		controller.AddSink(trayApp)
	}

	if apiKey := activeAPIKey(cfg); apiKey == "" {
		logger.Warn("api key not configured, dictation attempts will fail", "transcriber", cfg.Transcriber)
		if err := notifier.Notify(ctx, "Dictation", "API key not configured"); err != nil {
			logger.Debug("startup notification", "error", err)
		}
	}

	err = hotkey.Listen(cfg.Hotkey.Toggle, cfg.Hotkey.Cancel, func(action hotkey.Action) {
		switch action {
		case hotkey.ActionToggle:
			controller.Toggle(ctx)
		case hotkey.ActionCancel:
			controller.Cancel(ctx)
		}
	}, logger)
	if err != nil {
		// The tray menu still offers start/stop, so a missing hotkey is not fatal.
		logger.Warn("global hotkey unavailable, use the tray menu", "error", err)
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		if cfg.Tray.Enabled {
			trayApp.Quit()
		} else {
			cancel()
		}
	}()

	logger.Info("dictation ready",
		"transcriber", cfg.Transcriber,
		"model", settings.Model(),
		"toggle", cfg.Hotkey.Toggle,
	)

	// systray.Run must stay on the main goroutine.
	if cfg.Tray.Enabled {
		trayApp.Run(cancel)
	} else {
		<-ctx.Done()
	}

	// Drop any recording still open so the device is released on exit.
	controller.Cancel(context.Background())
}

func createCapture(cfg config.AudioConfig, logger *slog.Logger) application.AudioCapture {
	switch cfg.Source {
	case "file":
		return audio.NewFileCapture(cfg.File)
	default:
		minDuration := time.Duration(cfg.MinDurationMs) * time.Millisecond
		return audio.NewMicrophone(cfg.SampleRate, cfg.HighpassHz, minDuration, logger)
	}
}

func createTranscriber(cfg *config.Config) application.Transcriber {
	httpClient := infra.NewHTTPClient(cfg.RequestTimeout())
	if cfg.Transcriber == config.TranscriberWhisper {
		return openai.NewWhisperClient(cfg.OpenAI.APIKey, cfg.OpenAI.Language, httpClient)
	}
	return gemini.NewClient(cfg.Gemini.APIKey, httpClient)
}

func activeAPIKey(cfg *config.Config) string {
	if cfg.Transcriber == config.TranscriberWhisper {
		return cfg.OpenAI.APIKey
	}
	return cfg.Gemini.APIKey
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
