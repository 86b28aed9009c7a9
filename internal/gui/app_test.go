package gui

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"kbmod/internal/config"
	"kbmod/internal/watch"
	"kbmod/pkg/types"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, cfg *config.Config, path string) *App {
	t.Helper()
	fyneApp := test.NewApp()
	t.Cleanup(fyneApp.Quit)
	return newApp(fyneApp, cfg, path)
}

func TestAppSeedsFromConfig(t *testing.T) {
	cfg := config.New()
	cfg.Hotkey.Modifiers = []string{"alt", "win"}

	a := newTestApp(t, cfg, "")
	require.NotNil(t, a.GetMainWindow().Content())

	mods := a.Modifiers()
	require.Equal(t, len(types.AllModifiers), mods.Len())
	assert.Equal(t, types.Bitmask(types.ModAlt|types.ModWin), mods.Bitmask())
	assert.Equal(t, "0x09  Alt+Win", a.statusLabel.Text)
}

func TestAppSavesOnToggle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	a := newTestApp(t, config.New(), path)

	releaseAt(a.Modifiers().view, rowHeight()*3+1) // Win

	saved, err := config.LoadConfigFile(path)
	require.NoError(t, err)
	mask, err := saved.Bitmask()
	require.NoError(t, err)
	assert.Equal(t, types.Bitmask(types.ModControl|types.ModShift|types.ModWin), mask)
	assert.Equal(t, "0x0E  Control+Shift+Win", a.statusLabel.Text)
}

func TestAppAppliesConfigChangeWithoutSaving(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	a := newTestApp(t, config.New(), path)

	changed := config.New()
	changed.Hotkey.Modifiers = []string{"alt"}
	a.applyConfigChange(watch.ConfigChange{Path: path, Config: changed, Timestamp: time.Now()})

	assert.Equal(t, types.Bitmask(types.ModAlt), a.Modifiers().Bitmask())
	assert.Equal(t, "0x01  Alt", a.statusLabel.Text)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "a reload must not write the config back")

	// Failed reloads leave the selection alone
	a.applyConfigChange(watch.ConfigChange{Path: path, Err: assert.AnError})
	assert.Equal(t, types.Bitmask(types.ModAlt), a.Modifiers().Bitmask())
}

func TestAppIgnoresInvalidConfiguredModifiers(t *testing.T) {
	cfg := config.New()
	cfg.Hotkey.Modifiers = []string{"hyper"}

	a := newTestApp(t, cfg, "")
	assert.Equal(t, types.Bitmask(0), a.Modifiers().Bitmask())
}

func TestAppIgnoresReloadOfItsOwnSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	a := newTestApp(t, config.New(), path)

	releaseAt(a.Modifiers().view, 1) // Alt
	want := types.Bitmask(types.ModAlt | types.ModControl | types.ModShift)
	require.Equal(t, want, a.Modifiers().Bitmask())

	// The watcher reports the app's own write back to it
	echo, err := config.LoadConfigFile(path)
	require.NoError(t, err)
	a.applyConfigChange(watch.ConfigChange{Path: path, Config: echo, Timestamp: time.Now()})
	assert.Equal(t, want, a.Modifiers().Bitmask())
	assert.Equal(t, "0x07  Alt+Control+Shift", a.statusLabel.Text)
}

func TestAppConfigChangesRaceWithClicks(t *testing.T) {
	a := newTestApp(t, config.New(), "")

	saves := 0
	onChanged := a.Modifiers().OnBitmaskChanged
	a.Modifiers().OnBitmaskChanged = func(mask types.Bitmask) {
		saves++
		onChanged(mask)
	}

	const n = 100
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			changed := config.New()
			changed.SetBitmask(types.Bitmask(i % 16))
			a.applyConfigChange(watch.ConfigChange{Config: changed, Timestamp: time.Now()})
		}
	}()

	view := a.Modifiers().view
	for i := 0; i < n; i++ {
		releaseAt(view, rowHeight()*float32(i%4)+1)
	}
	wg.Wait()

	assert.Equal(t, n, saves, "every click is saved")
}
