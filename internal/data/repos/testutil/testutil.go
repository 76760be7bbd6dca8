package testutil

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/mimichub-backend/internal/data/db"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

var (
	pgOnce sync.Once
	pgDB   *gorm.DB
	pgErr  error

	sqliteSeq atomic.Int64
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.Nop()
}

// DB returns a migrated, empty catalogue database. By default every call gets
// its own in-memory sqlite database; with TEST_POSTGRES_DSN set the shared
// postgres database is truncated instead.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	if dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN")); dsn != "" {
		return postgresDB(tb, dsn)
	}
	return sqliteDB(tb)
}

func sqliteDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	name := fmt.Sprintf("file:mimichub_test_%d?mode=memory&cache=shared&_foreign_keys=1", sqliteSeq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		tb.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := gdb.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		tb.Fatalf("enable foreign keys: %v", err)
	}
	if err := db.AutoMigrateAll(gdb, ""); err != nil {
		tb.Fatalf("migrate sqlite: %v", err)
	}
	return gdb
}

var truncateOrder = []string{
	"evaluations",
	"training_runs_to_tasks",
	"training_runs",
	"episodes",
	"episode_conversion_versions",
	"raw_episodes",
	"tasks_to_subdatasets",
	"task_variants_to_subdatasets",
	"subdatasets",
	"task_variant_to_items",
	"task_variants",
	"tasks",
	"items",
	"teleop_modes",
	"embodiments",
}

func postgresDB(tb testing.TB, dsn string) *gorm.DB {
	tb.Helper()
	pgOnce.Do(func() {
		pgDB, pgErr = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
			TranslateError: true,
		})
		if pgErr != nil {
			return
		}
		pgErr = db.AutoMigrateAll(pgDB, "")
	})
	if pgErr != nil {
		tb.Fatalf("failed to init test db: %v", pgErr)
	}
	stmt := "TRUNCATE " + strings.Join(truncateOrder, ", ") + " RESTART IDENTITY CASCADE"
	if err := pgDB.Exec(stmt).Error; err != nil {
		tb.Fatalf("truncate: %v", err)
	}
	return pgDB
}

func Ptr[T any](v T) *T { return &v }
