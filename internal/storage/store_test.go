package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/hanoisim/internal/hanoi"
	"github.com/san-kum/hanoisim/internal/player"
)

func testResult(n int) *player.Result {
	return &player.Result{
		Disks:   n,
		Moves:   hanoi.Moves(n),
		Metrics: map[string]float64{"moves": float64(hanoi.TotalMoves(n))},
		Elapsed: 2 * time.Second,
		Solved:  true,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runID, err := st.Save("cli", player.DefaultTiming(), testResult(4))
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, 4, meta.Disks)
	assert.Equal(t, 15, meta.Moves)
	assert.Equal(t, 3*time.Second, meta.Duration)
	assert.True(t, meta.Solved)
	assert.Equal(t, "cli", meta.Source)
	assert.Equal(t, 15.0, meta.Metrics["moves"])

	moves, err := st.LoadMoves(runID)
	require.NoError(t, err)
	assert.Equal(t, hanoi.Moves(4), moves)
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = st.Save("cli", player.DefaultTiming(), testResult(2))
	require.NoError(t, err)
	_, err = st.Save("web", player.DefaultTiming(), testResult(3))
	require.NoError(t, err)

	runs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	require.NoError(t, st.Init())

	runID, err := st.Save("cli", player.DefaultTiming(), testResult(1))
	require.NoError(t, err)

	for _, name := range []string{"metadata.json", "moves.csv"} {
		_, err := os.Stat(filepath.Join(tmpDir, runID, name))
		assert.NoError(t, err, name)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, runID, "moves.csv"))
	require.NoError(t, err)
	assert.Equal(t, "step,disk,from,to\n1,1,SOURCE,TARGET\n", string(data))
}

func TestStoreNotFound(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Load("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = st.LoadMoves("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStorePartialRun(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	result := &player.Result{Disks: 5, Moves: hanoi.Moves(5)[:4], Canceled: true}
	runID, err := st.Save("tui", player.DefaultTiming(), result)
	require.NoError(t, err)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.True(t, meta.Canceled)
	assert.False(t, meta.Solved)
	assert.Equal(t, 4, meta.Moves)
}
