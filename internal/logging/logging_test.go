package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	s, err := New(Options{Console: &buf, Level: "warn"})
	require.NoError(t, err)
	defer s.Close()

	s.Logger.Info("hidden")
	s.Logger.Warn("shown", "file", "a.ncom")
	assert.Empty(t, s.Path)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "level=WARN msg=shown file=a.ncom")
}

func TestNew_FileSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var buf bytes.Buffer
	at := time.Date(2021, time.March, 12, 13, 55, 14, 0, time.Local)
	s, err := New(Options{Dir: dir, Console: &buf, Now: func() time.Time { return at }})
	require.NoError(t, err)

	s.Logger.With("run", "abc").Error("ratio low", "converted", 7)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.Equal(t, filepath.Join(dir, "log_2021-03-12_13_55_14.txt"), s.Path)
	b, err := os.ReadFile(s.Path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "level=ERROR msg=\"ratio low\" run=abc converted=7")
	assert.Contains(t, buf.String(), "level=ERROR msg=\"ratio low\" run=abc converted=7")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	lvl, err = ParseLevel("ERROR")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
