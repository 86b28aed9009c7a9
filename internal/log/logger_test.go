package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kbmod/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	l.Info("info message")
	assert.Contains(t, buf.String(), "level=info")
	assert.Contains(t, buf.String(), "info message")
	buf.Reset()

	l.Warn("warn message")
	assert.Contains(t, buf.String(), "level=warning")
	assert.Contains(t, buf.String(), "warn message")
	buf.Reset()

	l.Error("error message")
	assert.Contains(t, buf.String(), "level=error")
	buf.Reset()

	l.Infof("formatted %s", "message")
	assert.Contains(t, buf.String(), "formatted message")
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	SetDebug(false)
	l.Debug("debug message")
	assert.Empty(t, buf.String())

	SetDebug(true)
	defer SetDebug(false)
	l.Debug("debug message")
	assert.Contains(t, buf.String(), "level=debug")
	assert.Contains(t, buf.String(), "debug message")
	buf.Reset()

	l.Debugf("formatted %s", "debug")
	assert.Contains(t, buf.String(), "formatted debug")
}

func TestStructuredLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	l.With(F("row", 2), F("modifier", "Shift")).Info("row toggled")
	output := buf.String()
	assert.Contains(t, output, "row toggled")
	assert.Contains(t, output, "row=2")
	assert.Contains(t, output, "modifier=Shift")
	buf.Reset()

	l.With(F("key1", "value1")).With(F("key2", 123)).Info("chained fields")
	output = buf.String()
	assert.Contains(t, output, "key1=value1")
	assert.Contains(t, output, "key2=123")
}

func TestJSONLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf), WithJSON())

	l.With(F("bitmask", 6)).Info("json message")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "json message", entry["message"])
	assert.Equal(t, float64(6), entry["bitmask"])
	assert.Contains(t, entry, "timestamp")
}

func TestErrorLogging(t *testing.T) {
	var buf bytes.Buffer
	originalLogger := logger
	Configure(WithOutput(&buf))
	defer func() { logger = originalLogger }()

	LogWithFields(F("error", fmt.Errorf("standard error").Error())).Error("error occurred")
	assert.Contains(t, buf.String(), "standard error")
	buf.Reset()

	LogWithError(errors.New("application error")).Error("app error occurred")
	assert.Contains(t, buf.String(), "application error")
	assert.Contains(t, buf.String(), "error_kind=0")
	buf.Reset()

	configErr := errors.NewConfigError("config error", "hotkey", errors.InvalidConfig, nil)
	LogWithError(configErr).Error("config error occurred")
	assert.Contains(t, buf.String(), "param=hotkey")
	assert.Contains(t, buf.String(), fmt.Sprintf("error_kind=%d", errors.InvalidConfig))
	buf.Reset()

	modErr := errors.NewModifierError("unknown modifier", "hyper", errors.InvalidModifier, nil)
	LogError(modErr, "parse failed")
	assert.Contains(t, buf.String(), "parse failed")
	assert.Contains(t, buf.String(), "token=hyper")
	buf.Reset()

	fileErr := errors.NewFileError("read failed", "/tmp/cfg.yaml", errors.FileAccessDenied, nil)
	LogWithError(fileErr).Error("file error occurred")
	assert.Contains(t, buf.String(), "path=/tmp/cfg.yaml")
}

func TestNilErrorHandling(t *testing.T) {
	var buf bytes.Buffer
	originalLogger := logger
	Configure(WithOutput(&buf))
	defer func() { logger = originalLogger }()

	LogWithError(nil).Error("nil error test")
	assert.Contains(t, buf.String(), "nil error test")
	assert.Contains(t, buf.String(), "<nil>")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kbmod.log")
	var buf bytes.Buffer

	originalLogger := logger
	Configure(WithOutput(&buf), WithFile(path))
	defer func() {
		logger.Close()
		logger = originalLogger
	}()

	Info("file test message")

	assert.Contains(t, buf.String(), "file test message")
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "file test message")
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	l.WithContext(nil).Info("context message")
	assert.Contains(t, buf.String(), "context message")
}

func TestRedirect(t *testing.T) {
	var screen, elsewhere bytes.Buffer

	originalLogger := logger
	Configure(WithOutput(&screen))
	defer func() { logger = originalLogger }()

	restore := Redirect(WithOutput(&elsewhere))
	Info("while redirected")
	restore()
	Info("after restore")

	assert.Contains(t, elsewhere.String(), "while redirected")
	assert.NotContains(t, elsewhere.String(), "after restore")
	assert.NotContains(t, screen.String(), "while redirected")
	assert.Contains(t, screen.String(), "after restore")
}
