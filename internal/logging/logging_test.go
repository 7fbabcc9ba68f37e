package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/slidecraft/internal/config"
	"github.com/Rrens/slidecraft/internal/logging"
)

func TestSetup_Level(t *testing.T) {
	closer, err := logging.Setup(config.LoggingConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestSetup_UnknownLevelFallsBackToInfo(t *testing.T) {
	closer, err := logging.Setup(config.LoggingConfig{Level: "loud"})
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestSetup_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "slidecraft.log")

	closer, err := logging.Setup(config.LoggingConfig{Level: "info", File: path})
	require.NoError(t, err)

	log.Info().Msg("hello")
	require.NoError(t, closer.Close())

	matches, err := filepath.Glob(path + ".*")
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
}
