// Package catalog holds the gorm repositories for the robot training-data catalogue.
// Every method takes a dbctx.Context so callers decide which session (pool or
// transaction) the statement runs on.
package catalog

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
)

// Page is offset/limit pagination. Negative values disable the clause.
type Page struct {
	Skip  int
	Limit int
}

// All disables pagination.
var All = Page{Limit: -1}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	return q.Offset(p.Skip).Limit(p.Limit)
}

func getByID[T any](dbc dbctx.Context, db *gorm.DB, id int) (*T, error) {
	var row T
	err := dbc.Session(db).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func getByIDs[T any](dbc dbctx.Context, db *gorm.DB, ids []int) ([]*T, error) {
	var rows []*T
	if len(ids) == 0 {
		return rows, nil
	}
	if err := dbc.Session(db).Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func createAll[T any](dbc dbctx.Context, db *gorm.DB, rows []*T) ([]*T, error) {
	if len(rows) == 0 {
		return []*T{}, nil
	}
	if err := dbc.Session(db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// updateFields applies a column map to one row and reports whether it existed.
func updateFields[T any](dbc dbctx.Context, db *gorm.DB, id int, updates map[string]interface{}) (bool, error) {
	if len(updates) == 0 {
		var n int64
		if err := dbc.Session(db).Model(new(T)).Where("id = ?", id).Count(&n).Error; err != nil {
			return false, err
		}
		return n > 0, nil
	}
	res := dbc.Session(db).Model(new(T)).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func deleteByIDs[T any](dbc dbctx.Context, db *gorm.DB, ids []int) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := dbc.Session(db).Where("id IN ?", ids).Delete(new(T))
	return res.RowsAffected, res.Error
}
