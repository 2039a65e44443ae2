package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
api:
  base_url: localhost:8080
  environment: production
  port: "8080"
  allowed_cors_domains:
    - http://localhost:5173
  jwt_signing_key: 0123456789abcdef0123456789abcdef
  jwt_ttl: 2h
gin:
  mode: release
postgres:
  host: db
  port: "5432"
  user: medal
  password: secret
  db: medalboard
  sslmode: disable
redis:
  addr: ""
admin:
  username: admin
  password: changeme123
scoring:
  gold_points: 12
jobs:
  enabled: true
  cache_refresh_interval: 5m
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	conf, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, conf.API.Environment)
	assert.Equal(t, []string{"http://localhost:5173"}, conf.API.AllowedCORSDomains)
	assert.Equal(t, 2*time.Hour, conf.API.JWTTTL)
	assert.Equal(t, "release", conf.Gin.Mode)
	assert.Equal(t, "host=db port=5432 user=medal password=secret dbname=medalboard sslmode=disable", conf.Postgres.DSN())
	assert.Equal(t, 15*time.Second, conf.Redis.TTL)

	assert.Equal(t, 12, conf.Scoring.GoldPoints)
	assert.Equal(t, 7, conf.Scoring.SilverPoints)
	assert.Equal(t, 5, conf.Scoring.BronzePoints)
	assert.Equal(t, 1, conf.Scoring.NonWinnerPoints)
	assert.Equal(t, 200, conf.Scoring.MaxNonWinnerUnits)

	assert.True(t, conf.Jobs.Enabled)
	assert.Equal(t, 5*time.Minute, conf.Jobs.CacheRefreshInterval)
	assert.Equal(t, time.Hour, conf.Jobs.LedgerAuditInterval)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("POSTGRES_HOST", "pg.internal")

	conf, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "9090", conf.API.Port)
	assert.Equal(t, "pg.internal", conf.Postgres.Host)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoadRejectsShortSigningKey(t *testing.T) {
	body := `
api:
  environment: production
  jwt_signing_key: short
`
	_, err := Load(writeConfig(t, body))
	assert.ErrorContains(t, err, "jwt_signing_key")
}

func TestLoadDevelopmentAllowsShortKey(t *testing.T) {
	body := `
api:
  environment: development
  jwt_signing_key: dev
`
	conf, err := Load(writeConfig(t, body))
	require.NoError(t, err)
	assert.Equal(t, "8080", conf.API.Port)
	assert.Equal(t, "admin", conf.Admin.Username)
}

func TestLoadRejectsNegativeScoring(t *testing.T) {
	body := `
api:
  environment: development
scoring:
  bronze_points: -1
`
	_, err := Load(writeConfig(t, body))
	assert.ErrorContains(t, err, "scoring")
}

func TestLoadRejectsNonPositiveUnitCap(t *testing.T) {
	body := `
api:
  environment: development
scoring:
  max_non_winner_units: 0
`
	_, err := Load(writeConfig(t, body))
	assert.ErrorContains(t, err, "max_non_winner_units")
}
