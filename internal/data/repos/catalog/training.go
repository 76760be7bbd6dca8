package catalog

import (
	"gorm.io/gorm"

	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

// TrainingRepo covers training runs and evaluations, the two task outcome tables.
type TrainingRepo interface {
	CreateRuns(dbc dbctx.Context, rows []*types.TrainingRun) ([]*types.TrainingRun, error)
	LinkRunToTask(dbc dbctx.Context, runID, taskID int) error
	ListRunsByTaskID(dbc dbctx.Context, taskID int) ([]*types.TrainingRun, error)

	CreateEvaluations(dbc dbctx.Context, rows []*types.Evaluation) ([]*types.Evaluation, error)
	ListEvaluationsByTaskID(dbc dbctx.Context, taskID int) ([]*types.Evaluation, error)
}

type trainingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrainingRepo(db *gorm.DB, baseLog *logger.Logger) TrainingRepo {
	return &trainingRepo{db: db, log: baseLog.With("repo", "TrainingRepo")}
}

func (r *trainingRepo) CreateRuns(dbc dbctx.Context, rows []*types.TrainingRun) ([]*types.TrainingRun, error) {
	return createAll(dbc, r.db, rows)
}

func (r *trainingRepo) LinkRunToTask(dbc dbctx.Context, runID, taskID int) error {
	return dbc.Session(r.db).Create(&types.TrainingRunTask{TrainingRunID: runID, TaskID: taskID}).Error
}

func (r *trainingRepo) ListRunsByTaskID(dbc dbctx.Context, taskID int) ([]*types.TrainingRun, error) {
	var out []*types.TrainingRun
	err := dbc.Session(r.db).
		Table("training_runs").
		Select("training_runs.*").
		Joins("JOIN training_runs_to_tasks AS trt ON trt.training_run_id = training_runs.id").
		Where("trt.task_id = ?", taskID).
		Order("training_runs.id").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *trainingRepo) CreateEvaluations(dbc dbctx.Context, rows []*types.Evaluation) ([]*types.Evaluation, error) {
	return createAll(dbc, r.db, rows)
}

func (r *trainingRepo) ListEvaluationsByTaskID(dbc dbctx.Context, taskID int) ([]*types.Evaluation, error) {
	var out []*types.Evaluation
	err := dbc.Session(r.db).Where("task_id = ?", taskID).Order("id").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
