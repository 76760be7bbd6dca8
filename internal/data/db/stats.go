package db

import (
	"time"

	"gorm.io/gorm"
)

const startedAtKey = "mimichub:query_started_at"

// QueryObserver receives the latency of every statement gorm executes.
type QueryObserver interface {
	ObserveDBQuery(operation, table string, dur time.Duration, err error)
}

// InstrumentQueries hooks gorm's callback chains so every statement reports
// its latency to obs.
func InstrumentQueries(db *gorm.DB, obs QueryObserver) error {
	if db == nil || obs == nil {
		return nil
	}
	before := func(tx *gorm.DB) {
		tx.InstanceSet(startedAtKey, time.Now())
	}
	after := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(startedAtKey)
			if !ok {
				return
			}
			started, ok := v.(time.Time)
			if !ok {
				return
			}
			table := ""
			if tx.Statement != nil {
				table = tx.Statement.Table
			}
			obs.ObserveDBQuery(op, table, time.Since(started), tx.Error)
		}
	}

	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("mimichub:before_create", before); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("mimichub:after_create", after("create")); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("mimichub:before_query", before); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("mimichub:after_query", after("query")); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("mimichub:before_update", before); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("mimichub:after_update", after("update")); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("mimichub:before_delete", before); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("mimichub:after_delete", after("delete")); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("mimichub:before_row", before); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("mimichub:after_row", after("row")); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("mimichub:before_raw", before); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("mimichub:after_raw", after("raw"))
}
