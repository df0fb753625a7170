package logger

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Infow("info", map[string]any{"k": 2})
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLoggerFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	require.NoError(t, SetLevel("warn"))
	defer func() { require.NoError(t, SetLevel("info")) }()

	l := NewZerologLogger("batch").With(map[string]any{"run_id": "r1"})
	l.Infof("dropped")
	l.Warnf("row %d", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "batch", entry["component"])
	assert.Equal(t, "r1", entry["run_id"])
	assert.Equal(t, "row 3", entry["message"])
	assert.Equal(t, "warn", entry["level"])

	assert.Error(t, SetLevel("loud"))
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l = l.With(map[string]any{"a": 1})
	assert.NotPanics(t, func() { l.Errorf("x") })
}

func TestSetOutputAcceptsAnyWriter(t *testing.T) {
	defer SetOutput(os.Stderr)
	var a, b bytes.Buffer
	writers := []io.Writer{&a, io.MultiWriter(&a, &b), zerolog.ConsoleWriter{Out: &b}, os.Stderr}
	for _, w := range writers {
		assert.NotPanics(t, func() { SetOutput(w) })
	}

	SetOutput(io.MultiWriter(&a, &b))
	NewZerologLogger("multi").Warnf("both")
	assert.Contains(t, a.String(), `"message":"both"`)
	assert.Contains(t, b.String(), `"message":"both"`)
}
