package services

import (
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	dataagg "github.com/yungbote/mimichub-backend/internal/data/aggregates"
	repos "github.com/yungbote/mimichub-backend/internal/data/repos/catalog"
	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/pkg/patch"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

type TaskCreateInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	IsExternal  *bool   `json:"is_external"`
}

type TaskUpdateInput struct {
	Name        patch.Field[string] `json:"name"`
	Description patch.Field[string] `json:"description"`
	Status      patch.Field[string] `json:"status"`
	IsExternal  patch.Field[bool]   `json:"is_external"`
}

type VariantCreateInput struct {
	Name         string   `json:"name"`
	Description  *string  `json:"description"`
	Items        *string  `json:"items"`
	EmbodimentID *int     `json:"embodiment_id"`
	TeleopModeID *int     `json:"teleop_mode_id"`
	Notes        *string  `json:"notes"`
	Media        []string `json:"media"`
}

type VariantUpdateInput struct {
	Name         patch.Field[string]   `json:"name"`
	Description  patch.Field[string]   `json:"description"`
	Items        patch.Field[string]   `json:"items"`
	EmbodimentID patch.Field[int]      `json:"embodiment_id"`
	TeleopModeID patch.Field[int]      `json:"teleop_mode_id"`
	Notes        patch.Field[string]   `json:"notes"`
	Media        patch.Field[[]string] `json:"media"`
}

type VariantItemInput struct {
	ItemID   int  `json:"item_id"`
	Quantity *int `json:"quantity"`
}

type TaskService interface {
	CreateTask(dbc dbctx.Context, in TaskCreateInput) (*types.TaskWithVariants, error)
	GetTask(dbc dbctx.Context, id int) (*types.TaskWithVariants, error)
	ListTasks(dbc dbctx.Context, f repos.TaskFilter) ([]*types.TaskWithVariants, error)
	// ListTaskSummaries is ListTasks without the variants.
	ListTaskSummaries(dbc dbctx.Context, f repos.TaskFilter) ([]*types.Task, error)
	UpdateTask(dbc dbctx.Context, id int, in TaskUpdateInput) (*types.TaskWithVariants, error)
	DeleteTask(dbc dbctx.Context, id int) error

	CreateVariant(dbc dbctx.Context, taskID int, in VariantCreateInput) (*types.TaskVariant, error)
	ListVariants(dbc dbctx.Context, taskID int, page repos.Page) ([]*types.TaskVariant, error)
	GetVariant(dbc dbctx.Context, id int) (*types.VariantSummary, error)
	UpdateVariant(dbc dbctx.Context, id int, in VariantUpdateInput) (*types.TaskVariant, error)
	DeleteVariant(dbc dbctx.Context, id int) error
	AddVariantItem(dbc dbctx.Context, variantID int, in VariantItemInput) (*types.VariantSummary, error)
	RemoveVariantItem(dbc dbctx.Context, variantID, itemID int) error

	GetTaskDetail(dbc dbctx.Context, id int) (*types.TaskDetail, error)
}

type taskService struct {
	db              *gorm.DB
	log             *logger.Logger
	deps            dataagg.Deps
	taskRepo        repos.TaskRepo
	variantRepo     repos.TaskVariantRepo
	variantItemRepo repos.TaskVariantItemRepo
	itemRepo        repos.ItemRepo
	subdatasetRepo  repos.SubdatasetRepo
	linkRepo        repos.SubdatasetLinkRepo
	trainingRepo    repos.TrainingRepo
}

func NewTaskService(
	db *gorm.DB,
	log *logger.Logger,
	hooks dataagg.Hooks,
	taskRepo repos.TaskRepo,
	variantRepo repos.TaskVariantRepo,
	variantItemRepo repos.TaskVariantItemRepo,
	itemRepo repos.ItemRepo,
	subdatasetRepo repos.SubdatasetRepo,
	linkRepo repos.SubdatasetLinkRepo,
	trainingRepo repos.TrainingRepo,
) TaskService {
	return &taskService{
		db:              db,
		log:             log.With("service", "TaskService"),
		deps:            dataagg.Deps{DB: db, Hooks: hooks},
		taskRepo:        taskRepo,
		variantRepo:     variantRepo,
		variantItemRepo: variantItemRepo,
		itemRepo:        itemRepo,
		subdatasetRepo:  subdatasetRepo,
		linkRepo:        linkRepo,
		trainingRepo:    trainingRepo,
	}
}

// CreateTask inserts the task and its default variant in one transaction.
func (s *taskService) CreateTask(dbc dbctx.Context, in TaskCreateInput) (*types.TaskWithVariants, error) {
	const op = "task.create"
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid(op, "name is required")
	}
	task := &types.Task{
		Name:        name,
		Description: in.Description,
		Status:      types.TaskStatusCreated,
	}
	if in.Status != nil && strings.TrimSpace(*in.Status) != "" {
		task.Status = strings.TrimSpace(*in.Status)
	}
	if in.IsExternal != nil {
		task.IsExternal = *in.IsExternal
	}

	var variant *types.TaskVariant
	err := dataagg.Write(dbc, s.deps, op, func(dbc dbctx.Context) error {
		if _, err := s.taskRepo.Create(dbc, []*types.Task{task}); err != nil {
			return err
		}
		variant = &types.TaskVariant{TaskID: task.ID, Name: types.DefaultVariantName}
		_, err := s.variantRepo.Create(dbc, []*types.TaskVariant{variant})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("task created", "task_id", task.ID, "variant_id", variant.ID)
	return &types.TaskWithVariants{Task: *task, Variants: []*types.TaskVariant{variant}}, nil
}

func (s *taskService) GetTask(dbc dbctx.Context, id int) (*types.TaskWithVariants, error) {
	const op = "task.get"
	task, err := s.taskRepo.GetByID(dbc, id)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if task == nil {
		return nil, notFound(op, msgTaskNotFound)
	}
	variants, err := s.variantRepo.ListByTaskIDs(dbc, []int{id}, false)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return &types.TaskWithVariants{Task: *task, Variants: nonNil(variants)}, nil
}

func (s *taskService) ListTasks(dbc dbctx.Context, f repos.TaskFilter) ([]*types.TaskWithVariants, error) {
	const op = "task.list"
	tasks, err := s.taskRepo.List(dbc, f)
	if err != nil {
		return nil, storeErr(op, err)
	}
	ids := make([]int, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	variants, err := s.variantRepo.ListByTaskIDs(dbc, ids, false)
	if err != nil {
		return nil, storeErr(op, err)
	}
	byTask := make(map[int][]*types.TaskVariant, len(tasks))
	for _, v := range variants {
		byTask[v.TaskID] = append(byTask[v.TaskID], v)
	}
	out := make([]*types.TaskWithVariants, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, &types.TaskWithVariants{Task: *t, Variants: nonNil(byTask[t.ID])})
	}
	return out, nil
}

func (s *taskService) ListTaskSummaries(dbc dbctx.Context, f repos.TaskFilter) ([]*types.Task, error) {
	tasks, err := s.taskRepo.List(dbc, f)
	if err != nil {
		return nil, storeErr("task.list", err)
	}
	return nonNil(tasks), nil
}

func (s *taskService) UpdateTask(dbc dbctx.Context, id int, in TaskUpdateInput) (*types.TaskWithVariants, error) {
	const op = "task.update"
	if in.Name.Set && (in.Name.Null || strings.TrimSpace(in.Name.Value) == "") {
		return nil, invalid(op, "name cannot be empty")
	}
	if in.Status.Set && (in.Status.Null || strings.TrimSpace(in.Status.Value) == "") {
		return nil, invalid(op, "status cannot be empty")
	}
	if in.IsExternal.Set && in.IsExternal.Null {
		return nil, invalid(op, "is_external cannot be null")
	}
	updates := patch.Updates{}
	patch.PutWith(updates, "name", in.Name, trimmed)
	patch.Put(updates, "description", in.Description)
	patch.PutWith(updates, "status", in.Status, trimmed)
	patch.Put(updates, "is_external", in.IsExternal)

	existed, err := s.taskRepo.UpdateFields(dbc, id, updates)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if !existed {
		return nil, notFound(op, msgTaskNotFound)
	}
	return s.GetTask(dbc, id)
}

func (s *taskService) DeleteTask(dbc dbctx.Context, id int) error {
	const op = "task.delete"
	n, err := s.taskRepo.DeleteByIDs(dbc, []int{id})
	if err != nil {
		return storeErr(op, err)
	}
	if n == 0 {
		return notFound(op, msgTaskNotFound)
	}
	s.log.Info("task deleted", "task_id", id)
	return nil
}

func (s *taskService) CreateVariant(dbc dbctx.Context, taskID int, in VariantCreateInput) (*types.TaskVariant, error) {
	const op = "task_variant.create"
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid(op, "name is required")
	}
	variant := &types.TaskVariant{
		TaskID:       taskID,
		Name:         name,
		Description:  in.Description,
		Items:        in.Items,
		EmbodimentID: in.EmbodimentID,
		TeleopModeID: in.TeleopModeID,
		Notes:        in.Notes,
		Media:        datatypes.JSONSlice[string](in.Media),
	}
	err := dataagg.Write(dbc, s.deps, op, func(dbc dbctx.Context) error {
		task, err := s.taskRepo.GetByID(dbc, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return notFound(op, msgTaskNotFound)
		}
		_, err = s.variantRepo.Create(dbc, []*types.TaskVariant{variant})
		return err
	})
	if err != nil {
		return nil, err
	}
	return variant, nil
}

func (s *taskService) ListVariants(dbc dbctx.Context, taskID int, page repos.Page) ([]*types.TaskVariant, error) {
	const op = "task_variant.list"
	task, err := s.taskRepo.GetByID(dbc, taskID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if task == nil {
		return nil, notFound(op, msgTaskNotFound)
	}
	variants, err := s.variantRepo.ListByTaskID(dbc, taskID, page)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return nonNil(variants), nil
}

func (s *taskService) GetVariant(dbc dbctx.Context, id int) (*types.VariantSummary, error) {
	const op = "task_variant.get"
	v, err := s.variantRepo.GetWithRefs(dbc, id)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if v == nil {
		return nil, notFound(op, msgVariantNotFound)
	}
	rows, err := s.variantItemRepo.ListByVariantIDs(dbc, []int{id})
	if err != nil {
		return nil, storeErr(op, err)
	}
	summary := types.NewVariantSummary(v, itemSummaries(rows)[id])
	return &summary, nil
}

func (s *taskService) UpdateVariant(dbc dbctx.Context, id int, in VariantUpdateInput) (*types.TaskVariant, error) {
	const op = "task_variant.update"
	if in.Name.Set && (in.Name.Null || strings.TrimSpace(in.Name.Value) == "") {
		return nil, invalid(op, "name cannot be empty")
	}
	updates := patch.Updates{}
	patch.PutWith(updates, "name", in.Name, trimmed)
	patch.Put(updates, "description", in.Description)
	patch.Put(updates, "items", in.Items)
	patch.Put(updates, "embodiment_id", in.EmbodimentID)
	patch.Put(updates, "teleop_mode_id", in.TeleopModeID)
	patch.Put(updates, "notes", in.Notes)
	patch.PutWith(updates, "media", in.Media, func(v []string) interface{} {
		return datatypes.JSONSlice[string](v)
	})

	existed, err := s.variantRepo.UpdateFields(dbc, id, updates)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if !existed {
		return nil, notFound(op, msgVariantNotFound)
	}
	v, err := s.variantRepo.GetByID(dbc, id)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if v == nil {
		return nil, notFound(op, msgVariantNotFound)
	}
	return v, nil
}

func (s *taskService) DeleteVariant(dbc dbctx.Context, id int) error {
	const op = "task_variant.delete"
	n, err := s.variantRepo.DeleteByIDs(dbc, []int{id})
	if err != nil {
		return storeErr(op, err)
	}
	if n == 0 {
		return notFound(op, msgVariantNotFound)
	}
	return nil
}

// AddVariantItem links an item to a variant, overwriting the quantity when the
// link already exists.
func (s *taskService) AddVariantItem(dbc dbctx.Context, variantID int, in VariantItemInput) (*types.VariantSummary, error) {
	const op = "task_variant.add_item"
	if in.ItemID <= 0 {
		return nil, invalid(op, "item_id is required")
	}
	quantity := 1
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	if quantity < 1 {
		return nil, invalid(op, "quantity must be at least 1")
	}
	err := dataagg.Write(dbc, s.deps, op, func(dbc dbctx.Context) error {
		v, err := s.variantRepo.GetByID(dbc, variantID)
		if err != nil {
			return err
		}
		if v == nil {
			return notFound(op, msgVariantNotFound)
		}
		item, err := s.itemRepo.GetByID(dbc, in.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return notFound(op, msgItemNotFound)
		}
		return s.variantItemRepo.Upsert(dbc, &types.TaskVariantItem{
			TaskVariantID: variantID,
			ItemID:        in.ItemID,
			Quantity:      quantity,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetVariant(dbc, variantID)
}

func (s *taskService) RemoveVariantItem(dbc dbctx.Context, variantID, itemID int) error {
	const op = "task_variant.remove_item"
	n, err := s.variantItemRepo.Delete(dbc, variantID, itemID)
	if err != nil {
		return storeErr(op, err)
	}
	if n == 0 {
		return notFound(op, "Item is not linked to this task variant")
	}
	return nil
}

func trimmed(s string) interface{} { return strings.TrimSpace(s) }

func itemSummaries(rows []repos.VariantItemRow) map[int][]types.VariantItemSummary {
	out := make(map[int][]types.VariantItemSummary)
	for _, r := range rows {
		out[r.TaskVariantID] = append(out[r.TaskVariantID], types.VariantItemSummary{
			ItemID:   r.ItemID,
			ItemName: r.Name,
			Quantity: r.Quantity,
			URL:      r.URL,
			Images:   nonNil([]string(r.Images)),
			Notes:    r.Notes,
		})
	}
	return out
}
