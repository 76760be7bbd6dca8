package catalog

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

// SubdatasetLinkRepo manages the variant↔subdataset junction and the older
// task↔subdataset one.
type SubdatasetLinkRepo interface {
	Create(dbc dbctx.Context, link *types.TaskVariantSubdataset) error
	GetBySubdatasetID(dbc dbctx.Context, subdatasetID int) (*types.TaskVariantSubdataset, error)
	ListBySubdatasetID(dbc dbctx.Context, subdatasetID int) ([]*types.TaskVariantSubdataset, error)
	ListByVariantIDs(dbc dbctx.Context, variantIDs []int) ([]*types.TaskVariantSubdataset, error)
	Delete(dbc dbctx.Context, subdatasetID, variantID int) (int64, error)

	CreateTaskLink(dbc dbctx.Context, link *types.TaskSubdataset) error
	ListTaskLinksBySubdatasetID(dbc dbctx.Context, subdatasetID int) ([]*types.TaskSubdataset, error)
}

type subdatasetLinkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubdatasetLinkRepo(db *gorm.DB, baseLog *logger.Logger) SubdatasetLinkRepo {
	repoLog := baseLog.With("repo", "SubdatasetLinkRepo")
	return &subdatasetLinkRepo{db: db, log: repoLog}
}

func (r *subdatasetLinkRepo) Create(dbc dbctx.Context, link *types.TaskVariantSubdataset) error {
	return dbc.Session(r.db).Create(link).Error
}

func (r *subdatasetLinkRepo) GetBySubdatasetID(dbc dbctx.Context, subdatasetID int) (*types.TaskVariantSubdataset, error) {
	var row types.TaskVariantSubdataset
	err := dbc.Session(r.db).
		Where("subdataset_id = ?", subdatasetID).
		Order("id").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *subdatasetLinkRepo) ListBySubdatasetID(dbc dbctx.Context, subdatasetID int) ([]*types.TaskVariantSubdataset, error) {
	var out []*types.TaskVariantSubdataset
	err := dbc.Session(r.db).Where("subdataset_id = ?", subdatasetID).Order("id").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *subdatasetLinkRepo) ListByVariantIDs(dbc dbctx.Context, variantIDs []int) ([]*types.TaskVariantSubdataset, error) {
	var out []*types.TaskVariantSubdataset
	if len(variantIDs) == 0 {
		return out, nil
	}
	err := dbc.Session(r.db).Where("task_variant_id IN ?", variantIDs).Order("id").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *subdatasetLinkRepo) Delete(dbc dbctx.Context, subdatasetID, variantID int) (int64, error) {
	res := dbc.Session(r.db).
		Where("subdataset_id = ? AND task_variant_id = ?", subdatasetID, variantID).
		Delete(&types.TaskVariantSubdataset{})
	return res.RowsAffected, res.Error
}

func (r *subdatasetLinkRepo) CreateTaskLink(dbc dbctx.Context, link *types.TaskSubdataset) error {
	return dbc.Session(r.db).Create(link).Error
}

func (r *subdatasetLinkRepo) ListTaskLinksBySubdatasetID(dbc dbctx.Context, subdatasetID int) ([]*types.TaskSubdataset, error) {
	var out []*types.TaskSubdataset
	err := dbc.Session(r.db).Where("subdataset_id = ?", subdatasetID).Order("id").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
