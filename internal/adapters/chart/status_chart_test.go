package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamal-hamza/assetctl/internal/core/services"
)

var points = []services.SeriesPoint{
	{Label: "MAINTENANCE", Value: 1},
	{Label: "AVAILABLE", Value: 4},
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, Render(&buf, points, at))

	html := buf.String()
	assert.Contains(t, html, "Asset Status Distribution")
	assert.Contains(t, html, "MAINTENANCE")
	assert.Contains(t, html, "AVAILABLE")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("MAINTENANCE")), bytes.Index(buf.Bytes(), []byte(`"AVAILABLE"`)), "bars keep mapping order")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "metrics.html")
	require.NoError(t, WriteFile(path, points, time.Now()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<html")
}
