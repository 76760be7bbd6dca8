package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/yungbote/mimichub-backend/internal/data/db"
	"github.com/yungbote/mimichub-backend/internal/observability"
	"github.com/yungbote/mimichub-backend/internal/platform/gcp"
	"github.com/yungbote/mimichub-backend/internal/services"
)

const Version = "1.0.0"

type Config struct {
	Version   string
	Port      string
	LogMode   string
	APIPrefix string

	DB            db.Config
	DBPoolSize    int
	DBMaxOverflow int
	DBPoolTimeout time.Duration
	DBPoolRecycle time.Duration
	AutoMigrate   bool

	Storage        gcp.StorageConfig
	StorageModeRaw string

	GoogleAuth   services.GoogleAuthConfig
	AuthRequired bool
	CookieSecure bool
	CORSOrigins  []string

	RedisAddr      string
	LookupCacheTTL time.Duration

	Otel observability.OtelConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8000")
	v.SetDefault("LOG_MODE", "development")
	v.SetDefault("API_V1_STR", "/api/v1")
	v.SetDefault("DB_DRIVER", db.DriverPostgres)
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_NAME", "mimichub")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("DB_SCHEMA", "preproduction")
	v.SetDefault("DB_POOL_SIZE", 10)
	v.SetDefault("DB_MAX_OVERFLOW", 20)
	v.SetDefault("DB_POOL_TIMEOUT", 30)
	v.SetDefault("DB_POOL_RECYCLE", 3600)
	v.SetDefault("DB_AUTO_MIGRATE", false)
	v.SetDefault("ACCESS_TOKEN_TTL", services.DefaultAccessTTL)
	v.SetDefault("AUTH_REQUIRED", false)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("LOOKUP_CACHE_TTL", 5*time.Minute)
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "mimichub")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)
}

// LoadConfig reads defaults, then the optional file (yaml or .env), then the
// environment. An empty path looks for ./config.yaml and ./.env.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := readConfigFile(v, path); err != nil {
		return Config{}, err
	}

	poolSize := v.GetInt("DB_POOL_SIZE")
	overflow := v.GetInt("DB_MAX_OVERFLOW")
	recycle := time.Duration(v.GetInt("DB_POOL_RECYCLE")) * time.Second

	cfg := Config{
		Version:   Version,
		Port:      v.GetString("PORT"),
		LogMode:   v.GetString("LOG_MODE"),
		APIPrefix: v.GetString("API_V1_STR"),
		DB: db.Config{
			Driver:          v.GetString("DB_DRIVER"),
			Host:            v.GetString("POSTGRES_HOST"),
			Port:            v.GetString("POSTGRES_PORT"),
			User:            v.GetString("POSTGRES_USER"),
			Password:        v.GetString("POSTGRES_PASSWORD"),
			Name:            v.GetString("POSTGRES_NAME"),
			SSLMode:         v.GetString("POSTGRES_SSLMODE"),
			Schema:          v.GetString("DB_SCHEMA"),
			SQLitePath:      v.GetString("SQLITE_PATH"),
			MaxOpenConns:    poolSize + overflow,
			MaxIdleConns:    poolSize,
			ConnMaxLifetime: recycle,
		},
		DBPoolSize:    poolSize,
		DBMaxOverflow: overflow,
		DBPoolTimeout: time.Duration(v.GetInt("DB_POOL_TIMEOUT")) * time.Second,
		DBPoolRecycle: recycle,
		AutoMigrate:   v.GetBool("DB_AUTO_MIGRATE"),
		Storage: gcp.StorageConfig{
			Bucket:       v.GetString("GCP_MEDIA_BUCKET_NAME"),
			EmulatorHost: v.GetString("STORAGE_EMULATOR_HOST"),
			Credentials:  firstNonEmpty(v.GetString("GOOGLE_APPLICATION_CREDENTIALS_JSON"), v.GetString("GOOGLE_APPLICATION_CREDENTIALS")),
		},
		StorageModeRaw: v.GetString("OBJECT_STORAGE_MODE"),
		GoogleAuth: services.GoogleAuthConfig{
			ClientID:       v.GetString("GOOGLE_AUTH_CLIENT_ID"),
			ClientSecret:   v.GetString("GOOGLE_AUTH_CLIENT_SECRET"),
			AllowedDomain:  v.GetString("GOOGLE_AUTH_ALLOWED_DOMAINS"),
			JWTSecret:      v.GetString("GOOGLE_AUTH_SECRET_KEY"),
			AccessTokenTTL: v.GetDuration("ACCESS_TOKEN_TTL"),
		},
		AuthRequired:   v.GetBool("AUTH_REQUIRED"),
		CookieSecure:   v.GetBool("COOKIE_SECURE"),
		CORSOrigins:    splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		LookupCacheTTL: v.GetDuration("LOOKUP_CACHE_TTL"),
		Otel: observability.OtelConfig{
			Enabled:     v.GetBool("OTEL_ENABLED"),
			ServiceName: v.GetString("OTEL_SERVICE_NAME"),
			Environment: v.GetString("LOG_MODE"),
			Version:     Version,
			Endpoint:    v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Insecure:    v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
			Headers:     v.GetString("OTEL_EXPORTER_OTLP_HEADERS"),
			SampleRatio: v.GetFloat64("OTEL_SAMPLE_RATIO"),
		},
	}
	if cfg.AuthRequired && cfg.GoogleAuth.JWTSecret == "" {
		return cfg, errors.New("AUTH_REQUIRED needs GOOGLE_AUTH_SECRET_KEY")
	}
	return cfg, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config.yaml: %w", err)
		}
	}
	// .env entries sit just above the built-in defaults.
	env := viper.New()
	env.SetConfigFile(".env")
	env.SetConfigType("env")
	if err := env.ReadInConfig(); err == nil {
		for _, k := range env.AllKeys() {
			v.SetDefault(k, env.Get(k))
		}
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
