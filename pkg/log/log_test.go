package log_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/dukex/caseflow/pkg/log"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, log.ParseLevel(tt.name))
		})
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := log.New(&buf, "warn").With("module", "progression")
	logger.Info("Step completed")
	logger.Warn("Cannot complete step", "step_id", "triage")

	out := buf.String()
	assert.NotContains(t, out, "Step completed")
	assert.Contains(t, out, "Cannot complete step")
	assert.Contains(t, out, "module=progression")
	assert.Contains(t, out, "step_id=triage")
}
