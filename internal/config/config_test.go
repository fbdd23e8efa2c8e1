package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
api:
  environment: production
  port: "9000"
  jwt_signing_key: secret
  jwt_ttl: 2h
postgres:
  host: db
  user: app
  password: pw
  dbname: qr
`)

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", conf.API.Environment)
	assert.Equal(t, "9000", conf.API.Port)
	assert.Equal(t, 2*time.Hour, conf.API.JWTTTL)
	assert.Equal(t, "db", conf.Postgres.Host)
	assert.Equal(t, "5432", conf.Postgres.Port)
	assert.Equal(t, 1000, conf.Batch.InsertChunkSize)
	assert.Equal(t, 10000, conf.Batch.MaxCodesPerPDF)
	assert.Equal(t, "qr-admin:jobs", conf.Redis.QueueKey)
	assert.Contains(t, conf.Postgres.DSN(), "host=db port=5432 user=app password=pw dbname=qr")
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
api:
  port: "9000"
  jwt_signing_key: secret
`)
	t.Setenv("API_PORT", "7777")

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7777", conf.API.Port)
}

func TestLoad_MissingSigningKey(t *testing.T) {
	path := writeConfig(t, `
api:
  port: "9000"
`)

	_, err := Load(path)
	assert.ErrorIs(t, err, errMissingJWTSigningKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
