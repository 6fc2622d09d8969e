package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Export    ExportConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	APIPrefix    string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory = "memory"
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

type StoreConfig struct {
	Driver string
}

type MongoDBConfig struct {
	URI             string
	Database        string
	Collection      string
	Timeout         time.Duration
	ConnectAttempts int
	ConnectBackoff  time.Duration
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr is host:port, or empty when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

// ExportConfig points at the MinIO bucket archived documents are exported to.
type ExportConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Prefix    string
	PageSize  int
}

type LogConfig struct {
	Level string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "5010")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("STORE_DRIVER", "")
	v.SetDefault("MONGODB_DATABASE", "tiereddocs")
	v.SetDefault("MONGODB_COLLECTION", "documents")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("MONGODB_CONNECT_ATTEMPTS", 5)
	v.SetDefault("MONGODB_CONNECT_BACKOFF_MS", 1000)
	v.SetDefault("SQLITE_PATH", "data/documents.db")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("MINIO_BUCKET", "tiereddocs-archive")
	v.SetDefault("EXPORT_PREFIX", "archived")
	v.SetDefault("EXPORT_PAGE_SIZE", 100)
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			APIPrefix:    "/" + strings.Trim(v.GetString("API_PREFIX"), "/"),
			ReadTimeout:  time.Duration(v.GetInt("SERVER_READ_TIMEOUT")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("SERVER_WRITE_TIMEOUT")) * time.Second,
		},
		Store: StoreConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		},
		MongoDB: MongoDBConfig{
			URI:             v.GetString("MONGODB_URI"),
			Database:        v.GetString("MONGODB_DATABASE"),
			Collection:      v.GetString("MONGODB_COLLECTION"),
			Timeout:         time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
			ConnectAttempts: v.GetInt("MONGODB_CONNECT_ATTEMPTS"),
			ConnectBackoff:  time.Duration(v.GetInt("MONGODB_CONNECT_BACKOFF_MS")) * time.Millisecond,
		},
		SQLite: SQLiteConfig{
			Path: v.GetString("SQLITE_PATH"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Export: ExportConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			Prefix:    strings.Trim(v.GetString("EXPORT_PREFIX"), "/"),
			PageSize:  v.GetInt("EXPORT_PAGE_SIZE"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	if cfg.Store.Driver == "" {
		// Mongo when configured, otherwise the in-memory store.
		cfg.Store.Driver = DriverMemory
		if cfg.MongoDB.URI != "" {
			cfg.Store.Driver = DriverMongo
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports configuration that cannot work at all.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite:
	case DriverMongo:
		if c.MongoDB.URI == "" {
			return fmt.Errorf("STORE_DRIVER=mongo requires MONGODB_URI")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want mongo, sqlite or memory)", c.Store.Driver)
	}
	if c.Store.Driver == DriverSQLite && c.SQLite.Path == "" {
		return fmt.Errorf("STORE_DRIVER=sqlite requires SQLITE_PATH")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 0) {
		return fmt.Errorf("invalid rate limit: rps=%v burst=%d", c.RateLimit.RPS, c.RateLimit.Burst)
	}
	if c.Export.PageSize < 1 || c.Export.PageSize > 100 {
		return fmt.Errorf("EXPORT_PAGE_SIZE must be between 1 and 100, got %d", c.Export.PageSize)
	}
	return nil
}
