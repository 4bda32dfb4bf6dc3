package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/console")
	t.Setenv("PORT", "")
	t.Setenv("API_PORT", "")
	t.Setenv("API_BEARER_TOKEN", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_TOPIC", "")
	t.Setenv("EXPORT_TEMPLATE_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.ListenAddr())
	assert.Equal(t, "insumo-submissions", cfg.KafkaTopic)
	assert.False(t, cfg.EventsEnabled())
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadPortFallback(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/console")
	t.Setenv("PORT", "")
	t.Setenv("API_PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)

	t.Setenv("PORT", "9100")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/console")
	t.Setenv("PORT", "not-a-port")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadKafkaBrokers(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/console")
	t.Setenv("PORT", "")
	t.Setenv("API_PORT", "")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092,")
	t.Setenv("KAFKA_TOPIC", "offers")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "offers", cfg.KafkaTopic)
	assert.True(t, cfg.EventsEnabled())
}
