package gui

import (
	"fmt"
	"sync"

	"kbmod/internal/checklist"
	"kbmod/internal/config"
	"kbmod/internal/log"
	"kbmod/internal/watch"
	"kbmod/pkg/types"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// App is the hotkey modifier editor window
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	cfg        *config.Config
	cfgPath    string
	watcher    *watch.ConfigWatcher

	modifiers   *ModifierList
	statusLabel *widget.Label

	// mu guards cfg and lastSaved, which the watcher goroutine shares with
	// the UI. It is never held while calling into modifiers.
	mu        sync.Mutex
	lastSaved types.Bitmask
}

// NewApp creates the GUI application. Changes are saved to cfgPath; an
// empty path disables saving and watching.
func NewApp(cfg *config.Config, cfgPath string) *App {
	return newApp(app.NewWithID("io.github.kbmod"), cfg, cfgPath)
}

func newApp(fyneApp fyne.App, cfg *config.Config, cfgPath string) *App {
	a := &App{
		fyneApp: fyneApp,
		cfg:     cfg,
		cfgPath: cfgPath,
	}
	a.mainWindow = a.fyneApp.NewWindow("kbmod")
	a.setupMainWindow()
	return a
}

// GetMainWindow returns the main window instance
func (a *App) GetMainWindow() fyne.Window {
	return a.mainWindow
}

// Modifiers returns the modifier selector.
func (a *App) Modifiers() *ModifierList {
	return a.modifiers
}

// Run starts watching the config file, if any, and blocks in the fyne
// event loop until the window closes.
func (a *App) Run() {
	if a.cfgPath != "" {
		a.startWatching()
		defer a.stopWatching()
	}
	a.mainWindow.ShowAndRun()
}

func (a *App) setupMainWindow() {
	mask, err := a.cfg.Bitmask()
	if err != nil {
		log.LogWithError(err).Warn("Ignoring configured modifiers")
		mask = 0
	}

	a.lastSaved = mask

	a.modifiers = NewModifierList()
	for _, m := range types.AllModifiers {
		a.modifiers.AddModifierRow(m)
	}
	a.modifiers.SetBitmask(mask)
	a.modifiers.SetAbbreviated(a.cfg.UI.Abbreviated)
	a.modifiers.OnModifierChanged = func(mod types.Modifier, state checklist.CheckState) {
		log.LogWithFields(log.F("modifier", mod.String()), log.F("state", state.String())).Debug("Modifier toggled")
	}
	a.modifiers.OnBitmaskChanged = a.handleBitmaskChanged

	a.statusLabel = widget.NewLabel("")
	a.updateStatus(mask)

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentClearIcon(), func() {
			a.applyBitmask(0)
			a.handleBitmaskChanged(0)
		}),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.HelpIcon(), func() {
			a.ShowInfo("Pick the modifier keys for the hotkey.\n" +
				"The selection is stored as a bitmask in " + a.displayPath() + ".")
		}),
	)

	content := container.NewBorder(
		toolbar,
		container.NewHBox(a.statusLabel, layout.NewSpacer()),
		nil,
		nil,
		container.NewVBox(
			widget.NewLabelWithStyle("Hotkey modifiers", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			a.modifiers,
		),
	)

	a.mainWindow.Resize(fyne.NewSize(360, 220))
	a.mainWindow.SetContent(content)
}

func (a *App) handleBitmaskChanged(mask types.Bitmask) {
	a.updateStatus(mask)
	a.saveConfig(mask)
}

// applyBitmask re-syncs the selector without triggering a save.
func (a *App) applyBitmask(mask types.Bitmask) {
	a.modifiers.SetBitmask(mask)
	a.updateStatus(mask)
}

func (a *App) updateStatus(mask types.Bitmask) {
	a.statusLabel.SetText(fmt.Sprintf("0x%02X  %s", uint32(mask), mask.Format(a.cfg.UI.Abbreviated)))
}

func (a *App) saveConfig(mask types.Bitmask) {
	a.mu.Lock()
	a.cfg.SetBitmask(mask)
	a.lastSaved = mask
	var err error
	if a.cfgPath != "" {
		err = config.SaveConfig(a.cfg, a.cfgPath)
	}
	a.mu.Unlock()

	if err != nil {
		log.LogWithError(err).Error("Failed to save config")
		a.ShowError("Saving configuration", err)
	}
}

// applyConfigChange takes a reloaded config from the watcher. The selector is
// updated silently so the reload does not write the file again. A reload of
// what the app itself last saved is ignored. It is safe to call from the
// watcher goroutine.
func (a *App) applyConfigChange(change watch.ConfigChange) {
	if change.Err != nil {
		return
	}
	mask, err := change.Config.Bitmask()
	if err != nil {
		log.LogWithError(err).Warn("Ignoring reloaded config")
		return
	}

	a.mu.Lock()
	if mask == a.lastSaved {
		a.mu.Unlock()
		return
	}
	a.cfg.Hotkey.Modifiers = change.Config.Hotkey.Modifiers
	a.lastSaved = mask
	a.mu.Unlock()

	if mask == a.modifiers.Bitmask() {
		return
	}
	log.LogWithFields(log.F("bitmask", uint32(mask))).Info("Config changed on disk")
	a.applyBitmask(mask)
}

func (a *App) startWatching() {
	w, err := watch.New(a.cfgPath)
	if err != nil {
		log.LogWithError(err).Warn("Config file will not be watched")
		return
	}
	if err := w.Start(); err != nil {
		log.LogWithError(err).Warn("Config file will not be watched")
		return
	}
	a.watcher = w

	go func() {
		for change := range w.Changes() {
			a.applyConfigChange(change)
		}
	}()
}

func (a *App) stopWatching() {
	if a.watcher != nil {
		a.watcher.Stop()
		a.watcher = nil
	}
}

func (a *App) displayPath() string {
	if a.cfgPath == "" {
		return "memory only"
	}
	return a.cfgPath
}

// ShowError displays an error dialog
func (a *App) ShowError(title string, err error) {
	if err == nil {
		return
	}
	log.LogWithError(err).Error(title)
	dialog.ShowError(err, a.mainWindow)
}

// ShowInfo displays an information dialog
func (a *App) ShowInfo(message string) {
	dialog.ShowInformation("kbmod", message, a.mainWindow)
}
