package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistory(t *testing.T) (*History, *time.Time) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.json")
	h, err := Load(path)
	require.NoError(t, err)
	now := time.Unix(1_700_000_000, 0)
	h.now = func() time.Time { return now }
	return h, &now
}

func TestLoadMissingFile(t *testing.T) {
	h, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, h.Entries())
}

func TestAddPersistsAndReloads(t *testing.T) {
	h, _ := newTestHistory(t)
	require.NoError(t, h.Add("question", "answer"))

	reloaded, err := Load(h.path)
	require.NoError(t, err)
	entries := reloaded.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "question", entries[0].UserInput)
	assert.Equal(t, "answer", entries[0].Response)
	assert.NotEmpty(t, entries[0].ID)
}

func TestAddTrimsToLimit(t *testing.T) {
	h, _ := newTestHistory(t)
	h.SetLimit(3)
	for _, in := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, h.Add(in, "r"))
	}
	entries := h.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "c", entries[0].UserInput)
	assert.Equal(t, "e", entries[2].UserInput)
}

func TestRelevantFiltersByAge(t *testing.T) {
	h, now := newTestHistory(t)
	require.NoError(t, h.Add("old", "r"))
	*now = now.Add(2 * time.Hour)
	require.NoError(t, h.Add("recent", "r"))
	*now = now.Add(10 * time.Minute)

	relevant := h.Relevant()
	require.Len(t, relevant, 1)
	assert.Equal(t, "recent", relevant[0].Entry.UserInput)
	assert.Equal(t, 10*time.Minute, relevant[0].Age)
}

func TestClearRemovesFile(t *testing.T) {
	h, _ := newTestHistory(t)
	require.NoError(t, h.Add("q", "r"))
	require.NoError(t, h.Clear())
	assert.Empty(t, h.Entries())
	_, err := os.Stat(h.path)
	assert.True(t, os.IsNotExist(err))

	// Clearing twice is not an error.
	require.NoError(t, h.Clear())
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}
