package observability

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/castbot/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "json"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_Console(t *testing.T) {
	cfg := config.LoggingConfig{Level: "debug", Format: "console", Output: "stdout"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := config.LoggingConfig{Level: "trace", Format: "json"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "xml"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_FileOutputCarriesAppField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "castbot.log")
	logger, err := NewLogger(config.LoggingConfig{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)
	logger.Debug("tick")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "castbot", entry["app"])
	assert.Equal(t, "tick", entry["msg"])
}
