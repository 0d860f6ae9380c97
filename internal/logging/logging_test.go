package logging_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ndsborki/loadout-bot/internal/errors"
	"github.com/ndsborki/loadout-bot/internal/logging"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bot.log")

	logger, err := logging.New(path)
	require.NoError(t, err)

	logger.Info("hello from the test")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the test")
}

func TestTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")

	var sb strings.Builder
	for i := 1; i <= 50; i++ {
		fmt.Fprintf(&sb, "line %d\n", i)
	}
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))

	got, err := logging.Tail(path, 30)
	require.NoError(t, err)

	lines := strings.Split(got, "\n")
	require.Len(t, lines, 30)
	assert.Equal(t, "line 21", lines[0])
	assert.Equal(t, "line 50", lines[29])
}

func TestTailShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	require.NoError(t, os.WriteFile(path, []byte("only line\n"), 0o644))

	got, err := logging.Tail(path, 30)
	require.NoError(t, err)
	assert.Equal(t, "only line", got)
}

func TestTailMissingFile(t *testing.T) {
	_, err := logging.Tail(filepath.Join(t.TempDir(), "missing.log"), 30)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))
}
