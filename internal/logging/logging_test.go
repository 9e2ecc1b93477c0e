package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/digit-vision-mcp/internal/config"
)

func TestNew_LevelAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Output: &buf})
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	logger.Info("hidden")
	logger.WithFields(Fields{"call_id": "abc", "tool": "digit_classify_grid"}).Warn("slow call")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "slow call")
	assert.Contains(t, out, "call_id:abc")
	assert.Contains(t, out, "tool:digit_classify_grid")
	assert.Contains(t, out, "logging_test.go")
}

func TestNew_DefaultLevel(t *testing.T) {
	logger, err := New(Options{Output: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(Options{Level: "chatty"})
	assert.ErrorContains(t, err, "invalid log level")
}

func TestNew_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "digit.log")
	logger, err := New(Options{Level: "debug", File: file, Output: &bytes.Buffer{}})
	require.NoError(t, err)

	logger.Debug("written to disk")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to disk")
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "error"
	cfg.LogFile = "/var/log/digit.log"

	assert.Equal(t, Options{Level: "error", File: "/var/log/digit.log"}, FromConfig(cfg))
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("nothing happens")
	assert.Equal(t, logrus.PanicLevel, logger.GetLevel())
}
