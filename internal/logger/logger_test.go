package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHelpersRouteToGlobalLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(nil) })

	Debug("d")
	Info("i", zap.String("key", "sounds/a.mp3"))
	Warn("w")
	Error("e")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, "i", entries[1].Message)
	assert.Equal(t, "sounds/a.mp3", entries[1].ContextMap()["key"])
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestSetNilFallsBackToNop(t *testing.T) {
	Set(nil)
	assert.NotPanics(t, func() { Info("ignored") })
}

func TestInit_RejectsUnknownLevel(t *testing.T) {
	err := Init(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestInit_WritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "voicepad.log")
	require.NoError(t, Init(Config{Level: "info", FilePath: path, MaxSizeMB: 1}))
	t.Cleanup(func() { Set(nil) })

	Info("file output")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"file output"`)
}
