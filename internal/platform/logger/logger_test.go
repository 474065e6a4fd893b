package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smpadmin/internal/platform/config"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, config.LogConfig{Level: "warn", Format: "json"})

	log.Info("dropped")
	log.Warn("kept", "smp_id", "SMP-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "SMP-1", entry["smp_id"])
	assert.Equal(t, "smpadmin", entry["service"])
}

func TestNew_TextWithBadLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, config.LogConfig{Level: "nope", Format: "text"})

	log.Debug("hidden")
	log.Info("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=visible")
}
