package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultLoggerLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf)

	logger.Debug("hidden")
	assert.Empty(t, buf.String(), "debug is below the default level")

	component := logger.WithFields(Fields{"component": "welch"})
	component.Info("segment computed", Fields{"nperseg": 256})

	out := buf.String()
	assert.Contains(t, out, "[INFO] segment computed")
	assert.Contains(t, out, "component=welch")
	assert.Contains(t, out, "nperseg=256")
}

func TestDefaultLoggerChildSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	root := NewWriterLogger(&buf)
	child := root.WithFields(Fields{"component": "vca"})

	root.SetLevel(DebugLevel)
	child.Debug("clipped")

	assert.Contains(t, buf.String(), "[DEBUG] clipped")
}

func TestDefaultLoggerError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf)

	logger.Error(errors.New("singular"), "fit failed")
	assert.Contains(t, buf.String(), "[ERROR] fit failed: singular")
}

func TestWithContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf)

	ctx := ContextWithFields(context.Background(), Fields{"measurement": "m1"})
	logger.WithContext(ctx).Warn("narrow the range")

	assert.Contains(t, buf.String(), "measurement=m1")
}

func TestSetGlobalLoggerNil(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(nil)
	_, ok := GetGlobalLogger().(*NoOpLogger)
	assert.True(t, ok)
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core))

	scoped := logger.WithFields(Fields{"component": "segmenter"})
	scoped.Info("peaks detected", Fields{"count": 4})
	scoped.Error(errors.New("boom"), "failed")

	require.Equal(t, 2, logs.Len())
	first := logs.All()[0]
	assert.Equal(t, "peaks detected", first.Message)
	assert.Equal(t, "segmenter", first.ContextMap()["component"])
	assert.EqualValues(t, 4, first.ContextMap()["count"])

	logger.SetLevel(WarnLevel)
	scoped.Info("suppressed")
	assert.Equal(t, 2, logs.Len())
}

func TestZapLoggerFatalRunsFatalHook(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core, zap.WithFatalHook(zapcore.WriteThenPanic)))

	assert.Panics(t, func() {
		logger.WithFields(Fields{"component": "segmenter"}).Fatal(errors.New("boom"), "unrecoverable")
	})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.FatalLevel, entry.Level)
	assert.Equal(t, "unrecoverable", entry.Message)
	assert.Equal(t, "boom", entry.ContextMap()["error"])
}
