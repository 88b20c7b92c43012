package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf(`session:
  daily_free_limit: 2
  timezone: UTC
storage:
  driver: sqlite
  path: %s
`, filepath.Join(dir, "deck.db"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, configPath, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", configPath, "--log-level", "error"}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPlayRecordsWins(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, cfg, "a\ns\na\na\nq\n", "play")

	require.NoError(t, err)
	assert.Contains(t, out, playHelp)
	assert.Equal(t, 2, strings.Count(out, "nice!"))
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, "daily free limit reached")

	out, err = execute(t, cfg, "", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "completed today: 2")
	assert.Contains(t, out, "skipped today:   1")
	assert.Contains(t, out, "current streak:  1")
	assert.Contains(t, out, "free (0 of 2 left today)")
}

func TestPlayStopsAtEOF(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, cfg, "bogus\n", "play")

	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, playHelp))
}

func TestHistory(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, cfg, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "no wins yet")

	_, err = execute(t, cfg, "a\nq\n", "play")
	require.NoError(t, err)

	out, err = execute(t, cfg, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "Today")
	assert.Contains(t, out, "1 total")

	_, err = execute(t, cfg, "", "history", "clear")
	assert.ErrorContains(t, err, "--yes")

	out, err = execute(t, cfg, "", "history", "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared 1 entries")

	out, err = execute(t, cfg, "", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "total completed: 1", "clearing history keeps counters")
}

func TestUnlockAndRestore(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, cfg, "", "restore")
	require.NoError(t, err)
	assert.Contains(t, out, "no active purchase found")

	out, err = execute(t, cfg, "", "unlock")
	require.NoError(t, err)
	assert.Contains(t, out, "premium unlocked, 4 cards in deck")

	out, err = execute(t, cfg, "", "restore")
	require.NoError(t, err)
	assert.Contains(t, out, "premium restored")

	out, err = execute(t, cfg, "", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "plan:            premium")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := execute(t, filepath.Join(t.TempDir(), "nope.yaml"), "", "stats")
	assert.ErrorContains(t, err, "failed to read config file")
}
