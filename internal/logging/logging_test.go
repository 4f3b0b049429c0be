package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	assert.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)

	level, err = ParseLevel(" DEBUG ")
	assert.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew_JSONWritesToFileAndOut(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "logs", "aidocs.log")

	logger, closer, err := New(Options{Level: "info", JSON: true, File: file, Out: &buf})
	require.NoError(t, err)
	logger.Info().Str("planPath", "plan.json").Msg("planned")
	logger.Debug().Msg("hidden")
	require.NoError(t, closer.Close())

	assert.Contains(t, buf.String(), `"planPath":"plan.json"`)
	assert.NotContains(t, buf.String(), "hidden")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "planned")
}
