package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/http/response"
	"github.com/yungbote/mimichub-backend/internal/services"
)

var errNameRequired = errors.New("name is required")

type referenceRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// ReferenceHandler serves embodiments and teleoperation modes.
type ReferenceHandler struct {
	refs services.ReferenceService
}

func NewReferenceHandler(refs services.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{refs: refs}
}

// GET /embodiments
func (h *ReferenceHandler) ListEmbodiments(c *gin.Context) {
	page, ok := pageOf(c)
	if !ok {
		return
	}
	out, err := h.refs.ListEmbodiments(dbcOf(c), page)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /embodiments/:id
func (h *ReferenceHandler) GetEmbodiment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.refs.GetEmbodiment(dbcOf(c), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /embodiments
func (h *ReferenceHandler) CreateEmbodiment(c *gin.Context) {
	var req referenceRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		response.BadRequest(c, errNameRequired)
		return
	}
	row := &types.Embodiment{Name: strings.TrimSpace(req.Name), Description: req.Description}
	if err := h.refs.CreateEmbodiment(dbcOf(c), row); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, row)
}

// GET /teleop-modes
func (h *ReferenceHandler) ListTeleopModes(c *gin.Context) {
	page, ok := pageOf(c)
	if !ok {
		return
	}
	out, err := h.refs.ListTeleopModes(dbcOf(c), page)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /teleop-modes/:id
func (h *ReferenceHandler) GetTeleopMode(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.refs.GetTeleopMode(dbcOf(c), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /teleop-modes
func (h *ReferenceHandler) CreateTeleopMode(c *gin.Context) {
	var req referenceRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		response.BadRequest(c, errNameRequired)
		return
	}
	row := &types.TeleopMode{Name: strings.TrimSpace(req.Name), Description: req.Description}
	if err := h.refs.CreateTeleopMode(dbcOf(c), row); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, row)
}
