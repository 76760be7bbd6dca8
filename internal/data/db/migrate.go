package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/mimichub-backend/internal/domain/catalog"
)

// AutoMigrateAll creates the schema (postgres only), every catalogue table and
// the secondary indexes gorm tags cannot express.
func AutoMigrateAll(db *gorm.DB, schema string) error {
	if db.Dialector.Name() == DriverPostgres && strings.TrimSpace(schema) != "" {
		if err := db.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %q`, schema)).Error; err != nil {
			return fmt.Errorf("create schema %s: %w", schema, err)
		}
	}
	if err := db.AutoMigrate(catalog.Models()...); err != nil {
		return err
	}
	return EnsureCatalogIndexes(db)
}

func EnsureCatalogIndexes(db *gorm.DB) error {
	// Episode stats group raw episodes by label within one subdataset.
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_raw_episodes_subdataset_label ON raw_episodes(subdataset_id, label);`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_task_variants_to_subdatasets_subdataset ON task_variants_to_subdatasets(subdataset_id);`).Error; err != nil {
		return err
	}
	return nil
}
