package catalog

import (
	"gorm.io/gorm"

	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

type TaskFilter struct {
	Status     *string
	IsExternal *bool
	Page
}

type TaskRepo interface {
	Create(dbc dbctx.Context, tasks []*types.Task) ([]*types.Task, error)
	GetByID(dbc dbctx.Context, id int) (*types.Task, error)
	GetByIDs(dbc dbctx.Context, ids []int) ([]*types.Task, error)
	List(dbc dbctx.Context, f TaskFilter) ([]*types.Task, error)
	Count(dbc dbctx.Context) (int64, error)
	UpdateFields(dbc dbctx.Context, id int, updates map[string]interface{}) (bool, error)
	DeleteByIDs(dbc dbctx.Context, ids []int) (int64, error)
}

type taskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	repoLog := baseLog.With("repo", "TaskRepo")
	return &taskRepo{db: db, log: repoLog}
}

func (r *taskRepo) Create(dbc dbctx.Context, tasks []*types.Task) ([]*types.Task, error) {
	return createAll(dbc, r.db, tasks)
}

func (r *taskRepo) GetByID(dbc dbctx.Context, id int) (*types.Task, error) {
	return getByID[types.Task](dbc, r.db, id)
}

func (r *taskRepo) GetByIDs(dbc dbctx.Context, ids []int) ([]*types.Task, error) {
	return getByIDs[types.Task](dbc, r.db, ids)
}

func (r *taskRepo) List(dbc dbctx.Context, f TaskFilter) ([]*types.Task, error) {
	q := dbc.Session(r.db).Model(&types.Task{})
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.IsExternal != nil {
		q = q.Where("is_external = ?", *f.IsExternal)
	}
	var out []*types.Task
	if err := f.Page.apply(q.Order("id")).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.Session(r.db).Model(&types.Task{}).Count(&n).Error
	return n, err
}

func (r *taskRepo) UpdateFields(dbc dbctx.Context, id int, updates map[string]interface{}) (bool, error) {
	return updateFields[types.Task](dbc, r.db, id, updates)
}

func (r *taskRepo) DeleteByIDs(dbc dbctx.Context, ids []int) (int64, error) {
	return deleteByIDs[types.Task](dbc, r.db, ids)
}
