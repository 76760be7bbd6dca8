package handlers

import (
	"github.com/gin-gonic/gin"

	repos "github.com/yungbote/mimichub-backend/internal/data/repos/catalog"
	"github.com/yungbote/mimichub-backend/internal/http/response"
	"github.com/yungbote/mimichub-backend/internal/services"
)

type TaskHandler struct {
	tasks services.TaskService
}

func NewTaskHandler(tasks services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func taskFilterOf(c *gin.Context) (repos.TaskFilter, bool) {
	page, ok := pageOf(c)
	if !ok {
		return repos.TaskFilter{}, false
	}
	isExternal, ok := queryBoolPtr(c, "is_external")
	if !ok {
		return repos.TaskFilter{}, false
	}
	return repos.TaskFilter{
		Status:     queryStringPtr(c, "status"),
		IsExternal: isExternal,
		Page:       page,
	}, true
}

// GET /tasks
func (h *TaskHandler) List(c *gin.Context) {
	f, ok := taskFilterOf(c)
	if !ok {
		return
	}
	out, err := h.tasks.ListTasks(dbcOf(c), f)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /tasks/list
func (h *TaskHandler) ListSummaries(c *gin.Context) {
	f, ok := taskFilterOf(c)
	if !ok {
		return
	}
	out, err := h.tasks.ListTaskSummaries(dbcOf(c), f)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req services.TaskCreateInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.tasks.CreateTask(dbcOf(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.tasks.GetTask(dbcOf(c), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// PUT /tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.TaskUpdateInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.tasks.UpdateTask(dbcOf(c), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.tasks.DeleteTask(dbcOf(c), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondMessage(c, "Task deleted successfully")
}

// GET /tasks/:id/detail
func (h *TaskHandler) Detail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.tasks.GetTaskDetail(dbcOf(c), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /tasks/:id/variants
func (h *TaskHandler) CreateVariant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.VariantCreateInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.tasks.CreateVariant(dbcOf(c), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /tasks/:id/variants
func (h *TaskHandler) ListVariants(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, ok := pageOf(c)
	if !ok {
		return
	}
	out, err := h.tasks.ListVariants(dbcOf(c), id, page)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /tasks/variants/:variant_id
func (h *TaskHandler) GetVariant(c *gin.Context) {
	id, ok := pathID(c, "variant_id")
	if !ok {
		return
	}
	out, err := h.tasks.GetVariant(dbcOf(c), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// PUT /tasks/variants/:variant_id
func (h *TaskHandler) UpdateVariant(c *gin.Context) {
	id, ok := pathID(c, "variant_id")
	if !ok {
		return
	}
	var req services.VariantUpdateInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.tasks.UpdateVariant(dbcOf(c), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// DELETE /tasks/variants/:variant_id
func (h *TaskHandler) DeleteVariant(c *gin.Context) {
	id, ok := pathID(c, "variant_id")
	if !ok {
		return
	}
	if err := h.tasks.DeleteVariant(dbcOf(c), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondMessage(c, "Task variant deleted successfully")
}

// POST /tasks/variants/:variant_id/items
// body: { "item_id": 3, "quantity": 2 }
func (h *TaskHandler) AddVariantItem(c *gin.Context) {
	id, ok := pathID(c, "variant_id")
	if !ok {
		return
	}
	var req services.VariantItemInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.tasks.AddVariantItem(dbcOf(c), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// DELETE /tasks/variants/:variant_id/items/:item_id
func (h *TaskHandler) RemoveVariantItem(c *gin.Context) {
	id, ok := pathID(c, "variant_id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}
	if err := h.tasks.RemoveVariantItem(dbcOf(c), id, itemID); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, true)
}
