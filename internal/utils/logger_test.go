// internal/utils/logger_test.go
package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedServiceLogger(t *testing.T) (*ServiceLogger, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.InfoLevel)
	return NewServiceLogger(zap.New(core), "print-service"), logs
}

func TestLogServiceStartIncludesVersionAndConfig(t *testing.T) {
	sl, logs := newObservedServiceLogger(t)

	cfg := struct {
		Name string
		Port string
	}{"print-service", "8086"}

	sl.LogServiceStart("1.2.0", cfg)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Service starting", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "1.2.0", fields["version"])
	assert.Contains(t, fields, "config")
}

func TestLogServiceStop(t *testing.T) {
	sl, logs := newObservedServiceLogger(t)

	sl.LogServiceStop("shutdown signal received")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "shutdown signal received", entries[0].ContextMap()["reason"])
}

func TestLogAPIRequestEscalatesLevel(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantLevel  zapcore.Level
	}{
		{"success is info", 200, zapcore.InfoLevel},
		{"client error is warn", 404, zapcore.WarnLevel},
		{"server error is error", 502, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sl, logs := newObservedServiceLogger(t)

			sl.LogAPIRequest("POST", "/print", "pos-screen", "10.0.0.2", tt.statusCode, 12*time.Millisecond)

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantLevel, entries[0].Level)
		})
	}
}
