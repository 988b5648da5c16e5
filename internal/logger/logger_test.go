package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{"default config", nil},
		{"custom json config", &Config{Level: "debug", Format: "json"}},
		{"console config", &Config{Level: "info", Format: "console", Output: io.Discard}},
		{"auto config", &Config{Format: "auto", Output: io.Discard}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, New(tt.config))
		})
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "info", Format: "json", Output: buf})

	log.Info("adapter ready")

	entry := decodeLine(t, buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "adapter ready", entry["message"])
	assert.NotEmpty(t, entry["time"])
}

func TestLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "info", Format: "json", Output: buf})

	child := log.With().
		Str("bucket", "media").
		Int("page_size", 1000).
		Logger()

	child.InfoWith("listing", Fields{"prefix": "docs/"})

	entry := decodeLine(t, buf)
	assert.Equal(t, "media", entry["bucket"])
	assert.Equal(t, float64(1000), entry["page_size"])
	assert.Equal(t, "docs/", entry["prefix"])
	assert.Equal(t, "listing", entry["message"])
}

func TestLogger_ErrorWith(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "error", Format: "json", Output: buf})

	log.ErrorWith("put failed", errors.New("object store unreachable"), Fields{
		"key":  "docs/a.txt",
		"size": 5432,
	})

	entry := decodeLine(t, buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "put failed", entry["message"])
	assert.Equal(t, "object store unreachable", entry["error"])
	assert.Equal(t, "docs/a.txt", entry["key"])
	assert.Equal(t, float64(5432), entry["size"])
}

func TestLogger_WarnWith(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "warn", Format: "json", Output: buf})

	log.WarnWith("rename failed", errors.New("denied"), Fields{"state": "delete_failed"})

	entry := decodeLine(t, buf)
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "denied", entry["error"])
	assert.Equal(t, "delete_failed", entry["state"])
}

func TestLogger_Context(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "info", Format: "json", Output: buf})

	ctx := log.WithContext(context.Background())
	FromContext(ctx).Info("from context")

	assert.Equal(t, "from context", decodeLine(t, buf)["message"])
}

func TestFromContext_FallsBackToGlobal(t *testing.T) {
	prev := global
	t.Cleanup(func() { global = prev })

	buf := &bytes.Buffer{}
	SetGlobal(New(&Config{Level: "info", Format: "json", Output: buf}))
	SetGlobal(nil)

	FromContext(context.Background()).Info("global")
	assert.Equal(t, "global", decodeLine(t, buf)["message"])
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		logFunc  func(*Logger)
		expected bool
	}{
		{
			name:     "debug level logs debug",
			level:    "debug",
			logFunc:  func(l *Logger) { l.DebugWith("debug message", nil) },
			expected: true,
		},
		{
			name:     "info level skips debug",
			level:    "info",
			logFunc:  func(l *Logger) { l.DebugWith("debug message", Fields{"op": "head"}) },
			expected: false,
		},
		{
			name:     "error level logs error",
			level:    "error",
			logFunc:  func(l *Logger) { l.ErrorWith("error message", errors.New("x"), nil) },
			expected: true,
		},
		{
			name:     "error level skips info",
			level:    "error",
			logFunc:  func(l *Logger) { l.Info("info message") },
			expected: false,
		},
		{
			name:     "warn level skips info fields",
			level:    "warn",
			logFunc:  func(l *Logger) { l.InfoWith("info message", Fields{"k": "v"}) },
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.logFunc(New(&Config{Level: tt.level, Format: "json", Output: buf}))

			if tt.expected {
				assert.NotEmpty(t, buf.String(), "expected log output")
			} else {
				assert.Empty(t, buf.String(), "expected no log output")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug": zerolog.DebugLevel,
		"info":  zerolog.InfoLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
		"fatal": zerolog.FatalLevel,
		"":      zerolog.InfoLevel,
		"loud":  zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestLogger_AutoFormatFallsBackToJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "info", Format: "auto", Output: buf})

	log.Info("not a terminal")

	assert.Equal(t, "not a terminal", decodeLine(t, buf)["message"])
}

func TestNop(t *testing.T) {
	log := Nop()
	assert.NotPanics(t, func() {
		log.Info("dropped")
		log.ErrorWith("dropped", errors.New("x"), nil)
		log.HTTPEvent().Msg("dropped")
	})
}

func BenchmarkLogger_InfoWith(b *testing.B) {
	log := New(&Config{Level: "info", Format: "json", Output: io.Discard})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		log.InfoWith("benchmark message", Fields{"op": "put", "attempt": i})
	}
}

func BenchmarkLogger_DebugWithDisabled(b *testing.B) {
	log := New(&Config{Level: "info", Format: "json", Output: io.Discard})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		log.DebugWith("object store call", Fields{"op": "head", "key": "a.txt"})
	}
}
