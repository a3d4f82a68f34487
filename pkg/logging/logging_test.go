package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		value    string
		verbose  bool
		expected logrus.Level
	}{
		{"warn", false, logrus.WarnLevel},
		{"error", false, logrus.ErrorLevel},
		{"", false, logrus.InfoLevel},
		{"loud", false, logrus.InfoLevel},
		{"error", true, logrus.DebugLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLevel(tt.value, tt.verbose), "value=%q verbose=%v", tt.value, tt.verbose)
	}
}

func TestNew_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, logrus.InfoLevel)
	logger.WithField("component", "gateway").Info("request completed")
	logger.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "gateway", entry["component"])
	assert.Equal(t, "request completed", entry["msg"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "assetctl.log")
	f, logger, err := FileLogger(logrus.InfoLevel, path)
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}
