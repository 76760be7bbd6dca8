package catalog

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

type ItemRepo interface {
	Create(dbc dbctx.Context, rows []*types.Item) ([]*types.Item, error)
	GetByID(dbc dbctx.Context, id int) (*types.Item, error)
	GetByName(dbc dbctx.Context, name string) (*types.Item, error)
	List(dbc dbctx.Context, page Page) ([]*types.Item, error)
	UpdateFields(dbc dbctx.Context, id int, updates map[string]interface{}) (bool, error)
	DeleteByIDs(dbc dbctx.Context, ids []int) (int64, error)
}

type itemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	repoLog := baseLog.With("repo", "ItemRepo")
	return &itemRepo{db: db, log: repoLog}
}

func (r *itemRepo) Create(dbc dbctx.Context, rows []*types.Item) ([]*types.Item, error) {
	return createAll(dbc, r.db, rows)
}

func (r *itemRepo) GetByID(dbc dbctx.Context, id int) (*types.Item, error) {
	return getByID[types.Item](dbc, r.db, id)
}

func (r *itemRepo) GetByName(dbc dbctx.Context, name string) (*types.Item, error) {
	var row types.Item
	err := dbc.Session(r.db).Where("name = ?", name).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *itemRepo) List(dbc dbctx.Context, page Page) ([]*types.Item, error) {
	var out []*types.Item
	if err := page.apply(dbc.Session(r.db).Order("id")).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *itemRepo) UpdateFields(dbc dbctx.Context, id int, updates map[string]interface{}) (bool, error) {
	return updateFields[types.Item](dbc, r.db, id, updates)
}

func (r *itemRepo) DeleteByIDs(dbc dbctx.Context, ids []int) (int64, error) {
	return deleteByIDs[types.Item](dbc, r.db, ids)
}
