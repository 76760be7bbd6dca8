package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	dataagg "github.com/yungbote/mimichub-backend/internal/data/aggregates"
	"github.com/yungbote/mimichub-backend/internal/data/db"
	datarepos "github.com/yungbote/mimichub-backend/internal/data/repos"
	httpserver "github.com/yungbote/mimichub-backend/internal/http"
	"github.com/yungbote/mimichub-backend/internal/observability"
	"github.com/yungbote/mimichub-backend/internal/platform/cache"
	"github.com/yungbote/mimichub-backend/internal/platform/gcp"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Metrics  *observability.Metrics
	Repos    *datarepos.Catalog
	Services Services
	Server   *httpserver.Server

	cache        cache.Store
	bucket       gcp.MediaBucket
	otelShutdown func(context.Context) error
}

// New opens the database, cache and bucket and wires every layer. Close
// releases them.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*App, error) {
	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel)

	metrics, err := observability.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	a.Metrics = metrics

	gdb, err := OpenDB(cfg, log, metrics)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.DB = gdb
	if cfg.AutoMigrate {
		log.Info("Auto-migrating catalogue schema", "schema", cfg.DB.Schema)
		if err := db.AutoMigrateAll(gdb, cfg.DB.Schema); err != nil {
			a.Close()
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	store, err := openCache(log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.cache = store

	bucket, err := resolveMediaBucket(log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.bucket = bucket

	a.Repos = wireRepos(gdb, log)
	a.Services = wireServices(gdb, log, cfg, a.Repos, dataagg.NewMetricsHooks(metrics), store, bucket)
	a.Server = wireServer(log, cfg, gdb, metrics, a.Services)
	return a, nil
}

// OpenDB connects and instruments the store. metrics may be nil.
func OpenDB(cfg Config, log *logger.Logger, metrics *observability.Metrics) (*gorm.DB, error) {
	gdb, err := db.Open(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if metrics == nil {
		return gdb, nil
	}
	if err := db.InstrumentQueries(gdb, metrics); err != nil {
		_ = db.Close(gdb)
		return nil, fmt.Errorf("instrument queries: %w", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		if err := metrics.RegisterDBStats(sqlDB, cfg.DB.Name); err != nil {
			log.Warn("db stats collector not registered", "error", err)
		}
	}
	return gdb, nil
}

func openCache(log *logger.Logger, cfg Config) (cache.Store, error) {
	if cfg.RedisAddr == "" {
		ttl := cfg.LookupCacheTTL
		if ttl <= 0 {
			ttl = 5 * time.Minute
		}
		return cache.NewMemory(ttl, 2*ttl), nil
	}
	store, err := cache.NewRedis(log, cfg.RedisAddr, "mimichub:")
	if err != nil {
		return nil, fmt.Errorf("init redis cache: %w", err)
	}
	return store, nil
}

func poolStats(gdb *gorm.DB) func() sql.DBStats {
	return func() sql.DBStats {
		if gdb == nil {
			return sql.DBStats{}
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return sql.DBStats{}
		}
		return sqlDB.Stats()
	}
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("Serving", "addr", addr, "api_prefix", a.Cfg.APIPrefix, "auth_required", a.Cfg.AuthRequired)
	return a.Server.Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.bucket != nil {
		if err := a.bucket.Close(); err != nil {
			a.Log.Warn("bucket close failed", "error", err)
		}
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if a.DB != nil {
		if err := db.Close(a.DB); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.otelShutdown(ctx)
	}
	a.Log.Sync()
}
