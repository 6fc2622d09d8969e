package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", t.TempDir()+"/missing.env")
	for _, k := range []string{"MONGODB_URI", "STORE_DRIVER", "SQLITE_PATH", "API_PREFIX", "REDIS_HOST", "RATE_LIMIT_ENABLED", "EXPORT_PAGE_SIZE"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "/api", cfg.Server.APIPrefix)
	assert.Equal(t, "5010", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.MongoDB.Timeout)
	assert.Equal(t, "documents", cfg.MongoDB.Collection)
	assert.Equal(t, "", cfg.Redis.Addr())
	assert.Equal(t, 100, cfg.Export.PageSize)
	assert.Equal(t, "archived", cfg.Export.Prefix)
}

func TestLoadConfig_MongoFromURI(t *testing.T) {
	isolate(t)
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	t.Setenv("MONGODB_DATABASE", "docs_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("API_PREFIX", "v2/")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "docs_test", cfg.MongoDB.Database)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "/v2", cfg.Server.APIPrefix)
}

func TestLoadConfig_RejectsBadDriver(t *testing.T) {
	isolate(t)
	t.Setenv("STORE_DRIVER", "postgres")
	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("STORE_DRIVER", "mongo")
	_, err = LoadConfig()
	require.ErrorContains(t, err, "MONGODB_URI")
}

func TestLoadConfig_SQLite(t *testing.T) {
	isolate(t)
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/docs.db")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/docs.db", cfg.SQLite.Path)
}

func TestValidate_RateLimit(t *testing.T) {
	cfg := &Config{
		Store:     StoreConfig{Driver: DriverMemory},
		RateLimit: RateLimitConfig{Enabled: true, RPS: 0},
		Export:    ExportConfig{PageSize: 10},
	}
	require.Error(t, cfg.Validate())
	cfg.RateLimit.RPS = 5
	require.NoError(t, cfg.Validate())
}
