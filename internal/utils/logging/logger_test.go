package logging

import (
	"os"
	"path/filepath"
	"testing"

	"MatchPublisher/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelAndFormat(t *testing.T) {
	logger := New(config.LogConfig{Level: "DEBUG", Format: "json"})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	logger = New(config.LogConfig{Level: "bogus"})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	logger := New(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1})
	logger.Info("match published")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "match published")
}
