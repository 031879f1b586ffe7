package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost:5432/agency")
	t.Setenv("DB_QUERY_TIMEOUT", "5")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, 10*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, "exports", cfg.Export.Dir)
	assert.Equal(t, "saved_queries.json", cfg.SavedQueries)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Nil(t, cfg.StorageSettings())

	db, err := cfg.DatabaseSettings()
	require.NoError(t, err)
	assert.Equal(t, database.DialectPostgres, db.Dialect)
	assert.Empty(t, db.Schema, "the session applies the engine default")
}

func TestLoad_MissingURL(t *testing.T) {
	t.Setenv("DB_URL", "")
	_, err := Load("")
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Contains(t, err.Error(), "URL")
}

func TestLoad_YAMLThenEnvOverrides(t *testing.T) {
	path := write(t, "config.yaml", `
database:
  driver: mysql
  url: tcp(localhost:3306)/agency
  user: agent
  schema: agency
  query_timeout: 45s
log:
  level: debug
  format: console
storage:
  endpoint: localhost:9000
  access_key: minio
  secret_key: secret
  bucket: reports
`)
	t.Setenv("DB_USER", "override")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "override", cfg.Database.User)
	assert.Equal(t, 45*time.Second, cfg.Database.QueryTimeout)

	lc := cfg.Logger()
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "console", lc.Format)

	sc := cfg.StorageSettings()
	require.NotNil(t, sc)
	assert.Equal(t, "reports", sc.Bucket)
	assert.True(t, sc.UseSSL)
	assert.Equal(t, 24*time.Hour, sc.PresignTTL)

	db, err := cfg.DatabaseSettings()
	require.NoError(t, err)
	assert.Equal(t, database.DialectMySQL, db.Dialect)
	assert.Equal(t, "agency", db.Schema)
}

func TestLoad_EnvFile(t *testing.T) {
	env := write(t, ".env", "DB_DRIVER=sqlite\nDB_URL=/tmp/agency.db\n")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_URL", "")
	os.Unsetenv("DB_DRIVER")
	os.Unsetenv("DB_URL")

	cfg, err := Load("", env)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/agency.db", cfg.Database.URL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"driver":   {"DB_URL": "x", "DB_DRIVER": "oracle"},
		"schema":   {"DB_URL": "x", "DB_SCHEMA": "sales; DROP"},
		"log":      {"DB_URL": "x", "LOG_FORMAT": "xml"},
		"duration": {"DB_URL": "x", "DB_QUERY_TIMEOUT": "soon"},
		"ssl":      {"DB_URL": "x", "MINIO_USE_SSL": "maybe"},
		"storage":  {"DB_URL": "x", "MINIO_ENDPOINT": "localhost:9000"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
			assert.True(t, errs.IsValidation(err))
		})
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
