package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
[database]
host = "db"
dbname = "therapy"
user = "app"

[therapy_catalog]
url = "http://catalog"

[identity]
url = "http://identity"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 3, cfg.Database.SerializableRetries)
	assert.Equal(t, "local", cfg.Lock.Backend)
	assert.Equal(t, 3*time.Second, cfg.Lock.WaitTimeout())
	assert.Equal(t, 60, cfg.Scheduling.DefaultGranularityMinutes)
	assert.Equal(t, "09:00", cfg.Scheduling.WorkdayStart)
	assert.Equal(t, time.UTC, cfg.Scheduling.Location())
	assert.Equal(t, 5, cfg.TherapyCatalog.BreakerFailures)
	assert.Equal(t, "host=db port=5432 user=app password= dbname=therapy sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, "postgres://app:@db:5432/therapy?sslmode=disable", cfg.Database.URL())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "whsec")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, "whsec", cfg.Payments.WebhookSecret)
	assert.Equal(t, "debug", cfg.Logs.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "redis backend without url", content: minimalConfig + "\n[lock]\nbackend = \"redis\"\n"},
		{name: "unknown backend", content: minimalConfig + "\n[lock]\nbackend = \"etcd\"\n"},
		{name: "granularity out of range", content: minimalConfig + "\n[scheduling]\ndefault_granularity_minutes = 1\n"},
		{name: "reversed workday", content: minimalConfig + "\n[scheduling]\nworkday_start = \"18:00\"\nworkday_end = \"09:00\"\n"},
		{name: "unknown timezone", content: minimalConfig + "\n[scheduling]\ntimezone = \"Mars/Olympus\"\n"},
		{name: "missing host", content: "[database]\ndbname = \"x\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorIs(t, err, ErrReadConfig)
}

func TestLoad_RepositoryConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "therapy_booking", cfg.Database.DBName)
}
