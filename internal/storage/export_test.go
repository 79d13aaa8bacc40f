package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/hanoisim/internal/hanoi"
	"github.com/san-kum/hanoisim/internal/player"
)

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, player.DefaultTiming(), testResult(2)))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, 2, data.Disks)
	assert.Equal(t, 3, data.Total)
	assert.Equal(t, int64(3000), data.DurationMs)
	assert.Equal(t, hanoi.Moves(2), data.Moves)
	assert.Contains(t, buf.String(), `"from": "SOURCE"`)
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, ExportJSON(path, player.DefaultTiming(), testResult(3)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"total": 7`)
}
