package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_File(t *testing.T) {
	p := writeYAML(t, `
app:
  http:
    port: 9090
db:
  driver: mysql
  dsn: root:pw@tcp(db)/market
policy:
  adminRoles: [AdminUser, Seller]
pagination:
  perPage: 10
session:
  flashTTL: 30s
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.HTTP.Port)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, []string{"AdminUser", "Seller"}, cfg.Policy.AdminRoles)
	assert.Equal(t, 10, cfg.Pagination.PerPage)
	assert.Equal(t, 30*time.Second, cfg.Session.FlashTTL)
	// untouched keys keep their defaults
	assert.Equal(t, "market_session", cfg.Session.CookieName)
	assert.Equal(t, 10*time.Second, cfg.App.HTTP.RequestTimeout)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 6, cfg.Pagination.PerPage)
	assert.Equal(t, []string{"AdminUser"}, cfg.Policy.AdminRoles)
	assert.Equal(t, 8080, cfg.App.HTTP.Port)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", "from-env")
	t.Setenv("APP_REDIS_ADDR", "redis:6379")
	t.Setenv("APP_DB_DRIVER", "postgres")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "postgres", cfg.DB.Driver)
}

func TestLoad_MalformedFile(t *testing.T) {
	p := writeYAML(t, "app: [unterminated")
	_, err := Load(p)
	assert.Error(t, err)
}
