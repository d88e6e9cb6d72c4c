package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG", zapcore.InfoLevel))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel(" warn ", zapcore.InfoLevel))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("", zapcore.InfoLevel))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("loud", zapcore.ErrorLevel))
}

func TestNewWritesConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "client.log")

	log := New(Options{
		Level:        "info",
		ConsoleLevel: "warn",
		File:         path,
		Console:      &console,
	})
	log.Info("only in file")
	log.Warn("everywhere")
	require.NoError(t, log.Sync())

	assert.NotContains(t, console.String(), "only in file")
	assert.Contains(t, console.String(), "everywhere")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"only in file"`)
	assert.Contains(t, string(data), `"msg":"everywhere"`)
}
