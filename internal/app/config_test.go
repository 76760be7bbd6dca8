package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mimichub-backend/internal/services"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "preproduction", cfg.DB.Schema)
	assert.Equal(t, 30, cfg.DB.MaxOpenConns)
	assert.Equal(t, 10, cfg.DB.MaxIdleConns)
	assert.Equal(t, time.Hour, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, 30*time.Second, cfg.DBPoolTimeout)
	assert.Equal(t, services.DefaultAccessTTL, cfg.GoogleAuth.AccessTokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.LookupCacheTTL)
	assert.False(t, cfg.AuthRequired)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("DB_DRIVER: sqlite\nPORT: \"9000\"\nDB_POOL_SIZE: 4\n"), 0o600))

	t.Setenv("PORT", "9100")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://hub.example.com, http://localhost:5173")
	t.Setenv("ACCESS_TOKEN_TTL", "2h")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, 4, cfg.DBPoolSize)
	assert.Equal(t, 24, cfg.DB.MaxOpenConns)
	assert.Equal(t, []string{"https://hub.example.com", "http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, 2*time.Hour, cfg.GoogleAuth.AccessTokenTTL)
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GCP_MEDIA_BUCKET_NAME=media-dev\nREDIS_ADDR=localhost:6379\n"), 0o600))
	t.Chdir(dir)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "media-dev", cfg.Storage.Bucket)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoadConfigAuthRequiredNeedsSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AUTH_REQUIRED", "true")

	_, err := LoadConfig("")
	require.Error(t, err)
}
