package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_Modes(t *testing.T) {
	tests := []struct {
		mode    string
		verbose bool
		debug   bool
		wantErr bool
	}{
		{"development", false, false, false},
		{"", true, true, false},
		{"production", false, false, false},
		{"PROD", true, true, false},
		{"syslog", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			l, err := New(tt.mode, tt.verbose)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.debug, l.Core().Enabled(zapcore.DebugLevel))
			assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
		})
	}
}

func TestInstall_Restores(t *testing.T) {
	before := zap.L()
	l, err := New("production", false)
	require.NoError(t, err)

	restore := Install(l)
	assert.Same(t, l, zap.L())
	restore()
	assert.Same(t, before, zap.L())
}
