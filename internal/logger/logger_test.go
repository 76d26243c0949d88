package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("production logs json at info", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(&buf, false)

		require.Equal(t, zerolog.InfoLevel, log.GetLevel())

		log.Debug().Msg("hidden")
		require.Empty(t, buf.String())

		log.Info().Str("file", "js/tim.js").Msg("Built file")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		require.Equal(t, "Built file", entry["message"])
		require.Equal(t, "js/tim.js", entry["file"])
		require.Contains(t, entry, "time")
		require.Contains(t, entry, "caller")
	})

	t.Run("dev logs to console at debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(&buf, true)

		require.Equal(t, zerolog.DebugLevel, log.GetLevel())

		log.Debug().Msg("Build started")
		require.Contains(t, buf.String(), "Build started")
		require.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
	})
}
