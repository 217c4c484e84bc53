package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf).
		WithFields(Fields{"component": "crawler", "category": "dj-oprema"}).
		WithError(errors.New("timeout"))

	log.Warn().Int("attempt", 2).Msg("Retrying category")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "crawler", entry["component"])
	assert.Equal(t, "dj-oprema", entry["category"])
	assert.Equal(t, "timeout", entry["error"])
	assert.Equal(t, float64(2), entry["attempt"])
	assert.Equal(t, "Retrying category", entry["message"])
}

func TestGetLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	assert.Equal(t, zerolog.WarnLevel, getLogLevel())

	t.Setenv("LOG_LEVEL", "not-a-level")
	assert.Equal(t, zerolog.InfoLevel, getLogLevel())

	os.Unsetenv("LOG_LEVEL")
	t.Setenv("GEARDEAL_ENVIRONMENT", "production")
	assert.Equal(t, zerolog.InfoLevel, getLogLevel())

	t.Setenv("GEARDEAL_ENVIRONMENT", "development")
	assert.Equal(t, zerolog.DebugLevel, getLogLevel())
}

func TestComponentLoggersInitDefault(t *testing.T) {
	Default = nil
	assert.NotNil(t, ForCrawler("dj-oprema"))
	assert.NotNil(t, Default)
	assert.NotNil(t, ForWorker())
	assert.NotNil(t, ForEvaluator())
	assert.NotNil(t, ForNotifier())
}
