package catalog

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

type TaskVariantRepo interface {
	Create(dbc dbctx.Context, variants []*types.TaskVariant) ([]*types.TaskVariant, error)
	GetByID(dbc dbctx.Context, id int) (*types.TaskVariant, error)
	// GetWithRefs loads the variant with its embodiment and teleop mode.
	GetWithRefs(dbc dbctx.Context, id int) (*types.TaskVariant, error)
	GetByIDs(dbc dbctx.Context, ids []int) ([]*types.TaskVariant, error)
	ListByTaskIDs(dbc dbctx.Context, taskIDs []int, withRefs bool) ([]*types.TaskVariant, error)
	ListByTaskID(dbc dbctx.Context, taskID int, page Page) ([]*types.TaskVariant, error)
	UpdateFields(dbc dbctx.Context, id int, updates map[string]interface{}) (bool, error)
	DeleteByIDs(dbc dbctx.Context, ids []int) (int64, error)
}

type taskVariantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskVariantRepo(db *gorm.DB, baseLog *logger.Logger) TaskVariantRepo {
	repoLog := baseLog.With("repo", "TaskVariantRepo")
	return &taskVariantRepo{db: db, log: repoLog}
}

func (r *taskVariantRepo) Create(dbc dbctx.Context, variants []*types.TaskVariant) ([]*types.TaskVariant, error) {
	return createAll(dbc, r.db, variants)
}

func (r *taskVariantRepo) GetByID(dbc dbctx.Context, id int) (*types.TaskVariant, error) {
	return getByID[types.TaskVariant](dbc, r.db, id)
}

func (r *taskVariantRepo) GetWithRefs(dbc dbctx.Context, id int) (*types.TaskVariant, error) {
	var row types.TaskVariant
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

func (r *taskVariantRepo) GetByIDs(dbc dbctx.Context, ids []int) ([]*types.TaskVariant, error) {
	return getByIDs[types.TaskVariant](dbc, r.db, ids)
}

func (r *taskVariantRepo) ListByTaskIDs(dbc dbctx.Context, taskIDs []int, withRefs bool) ([]*types.TaskVariant, error) {
	var out []*types.TaskVariant
	if len(taskIDs) == 0 {
		return out, nil
	}
	q := dbc.Session(r.db)
	if withRefs {
		q = q.Preload("Embodiment").Preload("TeleopMode")
	}
	if err := q.Where("task_id IN ?", taskIDs).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskVariantRepo) ListByTaskID(dbc dbctx.Context, taskID int, page Page) ([]*types.TaskVariant, error) {
	var out []*types.TaskVariant
	q := dbc.Session(r.db).Where("task_id = ?", taskID).Order("id")
	if err := page.apply(q).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskVariantRepo) UpdateFields(dbc dbctx.Context, id int, updates map[string]interface{}) (bool, error) {
	return updateFields[types.TaskVariant](dbc, r.db, id, updates)
}

func (r *taskVariantRepo) DeleteByIDs(dbc dbctx.Context, ids []int) (int64, error) {
	return deleteByIDs[types.TaskVariant](dbc, r.db, ids)
}
