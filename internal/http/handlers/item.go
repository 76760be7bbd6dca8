package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/mimichub-backend/internal/http/response"
	"github.com/yungbote/mimichub-backend/internal/services"
)

type ItemHandler struct {
	items services.ItemService
}

func NewItemHandler(items services.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

// GET /items
func (h *ItemHandler) List(c *gin.Context) {
	page, ok := pageOf(c)
	if !ok {
		return
	}
	out, err := h.items.List(dbcOf(c), page)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /items/list returns id and name only, for pickers.
func (h *ItemHandler) ListNames(c *gin.Context) {
	page, ok := pageOf(c)
	if !ok {
		return
	}
	out, err := h.items.ListNames(dbcOf(c), page)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /items
func (h *ItemHandler) Create(c *gin.Context) {
	var req services.ItemCreateInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.items.Create(dbcOf(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.items.Get(dbcOf(c), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// PUT /items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.ItemUpdateInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.items.Update(dbcOf(c), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// DELETE /items/:id
func (h *ItemHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.items.Delete(dbcOf(c), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, true)
}
