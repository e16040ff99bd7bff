package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		env   string
		debug bool
		info  bool
	}{
		{"production", false, true},
		{"local", true, true},
		{"", true, true},
		{"testing", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			l := New(tt.env)
			assert.NotNil(t, l)
			assert.Equal(t, tt.debug, l.Core().Enabled(zapcore.DebugLevel))
			assert.Equal(t, tt.info, l.Core().Enabled(zapcore.InfoLevel))
		})
	}
}
