package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewWithOutput_Stderr(t *testing.T) {
	l, err := NewWithOutput("debug", "json", "stderr")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestZapWrapper_Chaining(t *testing.T) {
	log := NewTestLogger(t).
		WithFields(map[string]interface{}{"session": "s1"}).
		With(map[string]interface{}{"taskType": "query-inventory"}).
		WithError(errors.New("boom"))

	assert.NotPanics(t, func() {
		log.Info("resolved", map[string]interface{}{"score": 91.5})
		log.Warn("no match", nil)
		log.Debug("debug", nil)
		log.Error("failed", map[string]interface{}{"code": "SCHEMA_ERROR"})
	})
}

func TestNewNoOpLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNoOpLogger().Info("ignored", map[string]interface{}{"k": "v"})
	})
}
