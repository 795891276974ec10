package tray

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/getlantern/systray"

	"dictation/config"
	"dictation/internal/application"
	"dictation/internal/domain"
	"dictation/internal/infra/usage"
)

// App owns the tray icon and menu. It subscribes to controller events so
// the menu reflects session state without polling.
type App struct {
	cfg      *config.Config
	settings *application.Settings
	stats    *usage.Store
	onToggle func()
	onCancel func()
	logger   *slog.Logger

	mu         sync.Mutex
	status     *systray.MenuItem
	toggleItem *systray.MenuItem
	cancelItem *systray.MenuItem
	usageItem  *systray.MenuItem
}

func New(cfg *config.Config, settings *application.Settings, stats *usage.Store, onToggle, onCancel func(), logger *slog.Logger) *App {
	return &App{
		cfg:      cfg,
		settings: settings,
		stats:    stats,
		onToggle: onToggle,
		onCancel: onCancel,
		logger:   logger,
	}
}

// Run blocks on the tray loop until Quit is called. onQuit runs after the
// loop winds down.
func (a *App) Run(onQuit func()) {
	systray.Run(a.onReady, onQuit)
}

func (a *App) Quit() {
	systray.Quit()
}

func (a *App) onReady() {
	systray.SetTitle("Dictation")
	systray.SetTooltip("Voice dictation into the focused window")
	a.setIcon()

	a.mu.Lock()
	a.status = systray.AddMenuItem("Idle", "Session state")
	a.status.Disable()
	a.usageItem = systray.AddMenuItem(usageLabel(a.stats.Snapshot()), "Transcription calls")
	a.usageItem.Disable()
	a.toggleItem = systray.AddMenuItem("Start dictation", "Start or stop recording")
	a.cancelItem = systray.AddMenuItem("Cancel recording", "Discard the current recording")
	a.cancelItem.Disable()
	a.mu.Unlock()

	go func() {
		for range a.toggleItem.ClickedCh {
			a.onToggle()
		}
	}()
	go func() {
		for range a.cancelItem.ClickedCh {
			a.onCancel()
		}
	}()

	systray.AddSeparator()

	models := systray.AddMenuItem("Model", "Transcription model")
	modelNames := a.cfg.AvailableModels()
	modelItems := make([]*systray.MenuItem, len(modelNames))
	current := a.settings.Model()
	for i, name := range modelNames {
		modelItems[i] = models.AddSubMenuItemCheckbox(name, "", name == current)
	}
	for i := range modelItems {
		go func(idx int) {
			for range modelItems[idx].ClickedCh {
				a.selectModel(modelNames, modelItems, idx)
			}
		}(i)
	}

	sounds := systray.AddMenuItemCheckbox("Sound cues", "Play start/stop/error cues", a.settings.SoundEnabled())
	go func() {
		for range sounds.ClickedCh {
			a.toggleSounds(sounds)
		}
	}()

	systray.AddSeparator()

	quit := systray.AddMenuItem("Quit", "Stop dictation and exit")
	go func() {
		<-quit.ClickedCh
		systray.Quit()
	}()
}

func (a *App) setIcon() {
	if a.cfg.Tray.Icon == "" {
		return
	}
	icon, err := os.ReadFile(a.cfg.Tray.Icon)
	if err != nil {
		a.logger.Warn("loading tray icon", "path", a.cfg.Tray.Icon, "error", err)
		return
	}
	systray.SetIcon(icon)
}

func (a *App) selectModel(names []string, items []*systray.MenuItem, idx int) {
	name := names[idx]
	a.settings.SetModel(name)
	a.cfg.SetActiveModel(name)
	if err := a.cfg.Save(); err != nil {
		a.logger.Warn("saving settings", "error", err)
	}
	for i, item := range items {
		if i == idx {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
	a.logger.Info("model selected", "model", name)
}

func (a *App) toggleSounds(item *systray.MenuItem) {
	enabled := !a.settings.SoundEnabled()
	a.settings.SetSoundEnabled(enabled)
	a.cfg.SetSoundEnabled(enabled)
	if err := a.cfg.Save(); err != nil {
		a.logger.Warn("saving settings", "error", err)
	}
	if enabled {
		item.Check()
	} else {
		item.Uncheck()
	}
	a.logger.Info("sound cues toggled", "enabled", enabled)
}

// StateChanged updates the status line and the action items. Safe to call
// before the menu is built; events arriving that early are dropped.
func (a *App) StateChanged(st domain.State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status == nil {
		return
	}
	switch st {
	case domain.StateRecording:
		a.status.SetTitle("Recording...")
		a.toggleItem.SetTitle("Stop dictation")
		a.toggleItem.Enable()
		a.cancelItem.Enable()
	case domain.StateTranscribing:
		a.status.SetTitle("Transcribing...")
		a.toggleItem.SetTitle("Transcribing...")
		a.toggleItem.Disable()
		a.cancelItem.Disable()
	default:
		a.status.SetTitle("Idle")
		a.toggleItem.SetTitle("Start dictation")
		a.toggleItem.Enable()
		a.cancelItem.Disable()
	}
}

// SessionDone refreshes the usage line after every session.
func (a *App) SessionDone(domain.SessionResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.usageItem == nil {
		return
	}
	a.usageItem.SetTitle(usageLabel(a.stats.Snapshot()))
}

func usageLabel(st usage.Stats) string {
	return fmt.Sprintf("Calls today: %d (total %d)", st.DailyCount, st.TotalCount)
}
