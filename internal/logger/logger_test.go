package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	cases := []struct {
		env   string
		debug bool
	}{
		{env: "development", debug: true},
		{env: "local", debug: true},
		{env: "production", debug: false},
		{env: "", debug: false},
	}
	for _, tc := range cases {
		t.Run(tc.env, func(t *testing.T) {
			l, err := New(tc.env)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := l.Core().Enabled(zapcore.DebugLevel); got != tc.debug {
				t.Fatalf("expected debug enabled=%v, got %v", tc.debug, got)
			}
		})
	}
}
