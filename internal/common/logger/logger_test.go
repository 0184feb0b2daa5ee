package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesActionAndFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	New("test-svc").WithRequestID("req-1").Error("save_failed", errors.New("boom"), map[string]any{"key": "k1"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test-svc", entry["service"])
	assert.Equal(t, "save_failed", entry["action"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "k1", entry["key"])
	assert.Equal(t, "error", entry["level"])
	require.Contains(t, entry, "error")
	assert.Equal(t, "boom", entry["error"].(map[string]any)["msg"])
}

func TestDebugSuppressedAtInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })
	SetLevel("info")

	New("test-svc").Debug("noise", nil)
	assert.Zero(t, buf.Len())
}
