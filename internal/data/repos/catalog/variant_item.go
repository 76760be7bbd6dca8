package catalog

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

// VariantItemRow is a variant→item link joined with the item it points at.
type VariantItemRow struct {
	TaskVariantID int
	ItemID        int
	Quantity      int
	Name          string
	URL           *string
	Images        datatypes.JSONSlice[string]
	Notes         *string
}

type TaskVariantItemRepo interface {
	// Upsert inserts the link or overwrites the quantity of an existing one.
	Upsert(dbc dbctx.Context, link *types.TaskVariantItem) error
	ListByVariantIDs(dbc dbctx.Context, variantIDs []int) ([]VariantItemRow, error)
	Delete(dbc dbctx.Context, variantID, itemID int) (int64, error)
}

type taskVariantItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskVariantItemRepo(db *gorm.DB, baseLog *logger.Logger) TaskVariantItemRepo {
	repoLog := baseLog.With("repo", "TaskVariantItemRepo")
	return &taskVariantItemRepo{db: db, log: repoLog}
}

func (r *taskVariantItemRepo) Upsert(dbc dbctx.Context, link *types.TaskVariantItem) error {
	return dbc.Session(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_variant_id"}, {Name: "item_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity"}),
		}).
		Create(link).Error
}

func (r *taskVariantItemRepo) ListByVariantIDs(dbc dbctx.Context, variantIDs []int) ([]VariantItemRow, error) {
	var rows []VariantItemRow
	if len(variantIDs) == 0 {
		return rows, nil
	}
	err := dbc.Session(r.db).
		Table("task_variant_to_items AS tvi").
		Select("tvi.task_variant_id, tvi.item_id, tvi.quantity, items.name, items.url, items.images, items.notes").
		Joins("JOIN items ON items.id = tvi.item_id").
		Where("tvi.task_variant_id IN ?", variantIDs).
		Order("tvi.task_variant_id, items.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *taskVariantItemRepo) Delete(dbc dbctx.Context, variantID, itemID int) (int64, error) {
	res := dbc.Session(r.db).
		Where("task_variant_id = ? AND item_id = ?", variantID, itemID).
		Delete(&types.TaskVariantItem{})
	return res.RowsAffected, res.Error
}
