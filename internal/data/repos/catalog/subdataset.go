package catalog

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

// SubdatasetFilter narrows a subdataset listing. At most one membership filter
// applies: Unassigned wins over TaskVariantID, which wins over TaskID.
type SubdatasetFilter struct {
	EmbodimentID  *int
	TeleopModeID  *int
	TaskVariantID *int
	TaskID        *int
	Unassigned    bool
	WithRefs      bool
	Page
}

type SubdatasetRepo interface {
	Create(dbc dbctx.Context, rows []*types.Subdataset) ([]*types.Subdataset, error)
	GetByID(dbc dbctx.Context, id int) (*types.Subdataset, error)
	GetWithRefs(dbc dbctx.Context, id int) (*types.Subdataset, error)
	GetByIDsWithRefs(dbc dbctx.Context, ids []int) ([]*types.Subdataset, error)
	GetByName(dbc dbctx.Context, name string) (*types.Subdataset, error)
	List(dbc dbctx.Context, f SubdatasetFilter) ([]*types.Subdataset, error)
	Count(dbc dbctx.Context) (int64, error)
	UpdateFields(dbc dbctx.Context, id int, updates map[string]interface{}) (bool, error)
	DeleteByIDs(dbc dbctx.Context, ids []int) (int64, error)
}

type subdatasetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubdatasetRepo(db *gorm.DB, baseLog *logger.Logger) SubdatasetRepo {
	repoLog := baseLog.With("repo", "SubdatasetRepo")
	return &subdatasetRepo{db: db, log: repoLog}
}

func (r *subdatasetRepo) Create(dbc dbctx.Context, rows []*types.Subdataset) ([]*types.Subdataset, error) {
	return createAll(dbc, r.db, rows)
}

func (r *subdatasetRepo) GetByID(dbc dbctx.Context, id int) (*types.Subdataset, error) {
	return getByID[types.Subdataset](dbc, r.db, id)
}

func (r *subdatasetRepo) GetWithRefs(dbc dbctx.Context, id int) (*types.Subdataset, error) {
	var row types.Subdataset
	err := dbc.Session(r.db).
		Preload("Embodiment").
		Preload("TeleopMode").
		Where("id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *subdatasetRepo) GetByIDsWithRefs(dbc dbctx.Context, ids []int) ([]*types.Subdataset, error) {
	var out []*types.Subdataset
	if len(ids) == 0 {
		return out, nil
	}
	err := dbc.Session(r.db).
		Preload("Embodiment").
		Preload("TeleopMode").
		Where("id IN ?", ids).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *subdatasetRepo) GetByName(dbc dbctx.Context, name string) (*types.Subdataset, error) {
	var row types.Subdataset
	err := dbc.Session(r.db).Where("name = ?", name).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *subdatasetRepo) List(dbc dbctx.Context, f SubdatasetFilter) ([]*types.Subdataset, error) {
	sess := dbc.Session(r.db)
	q := sess.Model(&types.Subdataset{})
	if f.WithRefs {
		q = q.Preload("Embodiment").Preload("TeleopMode")
	}
	if f.EmbodimentID != nil {
		q = q.Where("embodiment_id = ?", *f.EmbodimentID)
	}
	if f.TeleopModeID != nil {
		q = q.Where("teleop_mode_id = ?", *f.TeleopModeID)
	}

	switch {
	case f.Unassigned:
		linked := sess.Model(&types.TaskVariantSubdataset{}).Distinct("subdataset_id")
		q = q.Where("id NOT IN (?)", linked)
	case f.TaskVariantID != nil:
		linked := sess.Model(&types.TaskVariantSubdataset{}).
			Select("subdataset_id").
			Where("task_variant_id = ?", *f.TaskVariantID)
		q = q.Where("id IN (?)", linked)
	case f.TaskID != nil:
		linked := sess.Table("task_variants_to_subdatasets AS tvs").
			Select("tvs.subdataset_id").
			Joins("JOIN task_variants AS tv ON tv.id = tvs.task_variant_id").
			Where("tv.task_id = ?", *f.TaskID)
		q = q.Where("id IN (?)", linked)
	}

	var out []*types.Subdataset
	if err := f.Page.apply(q.Order("id")).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *subdatasetRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.Session(r.db).Model(&types.Subdataset{}).Count(&n).Error
	return n, err
}

func (r *subdatasetRepo) UpdateFields(dbc dbctx.Context, id int, updates map[string]interface{}) (bool, error) {
	return updateFields[types.Subdataset](dbc, r.db, id, updates)
}

func (r *subdatasetRepo) DeleteByIDs(dbc dbctx.Context, ids []int) (int64, error) {
	return deleteByIDs[types.Subdataset](dbc, r.db, ids)
}
