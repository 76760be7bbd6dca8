package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	repos "github.com/yungbote/mimichub-backend/internal/data/repos/catalog"
	"github.com/yungbote/mimichub-backend/internal/http/response"
	"github.com/yungbote/mimichub-backend/internal/services"
)

// unassignedFilter is the task_variant_id value selecting subdatasets with no variant link.
const unassignedFilter = "unassigned"

var errInvalidVariantFilter = errors.New(`task_variant_id must be an integer or "unassigned"`)

type SubdatasetHandler struct {
	subdatasets services.SubdatasetService
	episodes    services.RawEpisodeService
}

func NewSubdatasetHandler(subdatasets services.SubdatasetService, episodes services.RawEpisodeService) *SubdatasetHandler {
	return &SubdatasetHandler{subdatasets: subdatasets, episodes: episodes}
}

func subdatasetFilterOf(c *gin.Context) (repos.SubdatasetFilter, bool) {
	var f repos.SubdatasetFilter
	page, ok := pageOf(c)
	if !ok {
		return f, false
	}
	f.Page = page
	if f.EmbodimentID, ok = queryIntPtr(c, "embodiment_id"); !ok {
		return f, false
	}
	if f.TeleopModeID, ok = queryIntPtr(c, "teleop_mode_id"); !ok {
		return f, false
	}
	if f.TaskID, ok = queryIntPtr(c, "task_id"); !ok {
		return f, false
	}
	if raw := strings.TrimSpace(c.Query("task_variant_id")); raw != "" {
		if strings.EqualFold(raw, unassignedFilter) {
			f.Unassigned = true
		} else {
			v, err := strconv.Atoi(raw)
			if err != nil {
				response.BadRequest(c, errInvalidVariantFilter)
				return f, false
			}
			f.TaskVariantID = &v
		}
	}
	return f, true
}

// GET /subdatasets
func (h *SubdatasetHandler) List(c *gin.Context) {
	f, ok := subdatasetFilterOf(c)
	if !ok {
		return
	}
	out, err := h.subdatasets.ListSubdatasets(dbcOf(c), f)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /subdatasets/list
func (h *SubdatasetHandler) ListSummaries(c *gin.Context) {
	f, ok := subdatasetFilterOf(c)
	if !ok {
		return
	}
	out, err := h.subdatasets.ListSubdatasetSummaries(dbcOf(c), f)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /subdatasets
func (h *SubdatasetHandler) Create(c *gin.Context) {
	var req services.SubdatasetCreateInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.subdatasets.CreateSubdataset(dbcOf(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /subdatasets/:id
func (h *SubdatasetHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.subdatasets.GetSubdataset(dbcOf(c), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// PUT /subdatasets/:id
func (h *SubdatasetHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.SubdatasetUpdateInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.subdatasets.UpdateSubdataset(dbcOf(c), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// DELETE /subdatasets/:id
func (h *SubdatasetHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.subdatasets.DeleteSubdataset(dbcOf(c), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, true)
}

// GET /subdatasets/:id/processed_episodes
func (h *SubdatasetHandler) ProcessedEpisodes(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, ok := pageOf(c)
	if !ok {
		return
	}
	out, err := h.subdatasets.ProcessedEpisodes(dbcOf(c), id, page)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /subdatasets/:id/linked_tasks
func (h *SubdatasetHandler) LinkedTasks(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.subdatasets.LinkedTasks(dbcOf(c), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /subdatasets/:id/link_task_variant
// body: { "task_variant_id": 10 }
func (h *SubdatasetHandler) LinkTaskVariant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		TaskVariantID int `json:"task_variant_id"`
	}
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.subdatasets.LinkTaskVariant(dbcOf(c), id, req.TaskVariantID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// DELETE /subdatasets/:id/link_task_variant/:task_variant_id
func (h *SubdatasetHandler) UnlinkTaskVariant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	variantID, ok := pathID(c, "task_variant_id")
	if !ok {
		return
	}
	if err := h.subdatasets.UnlinkTaskVariant(dbcOf(c), id, variantID); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, true)
}

// GET /subdatasets/:id/episodes
func (h *SubdatasetHandler) ListEpisodes(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, ok := pageOf(c)
	if !ok {
		return
	}
	out, err := h.episodes.List(dbcOf(c), repos.RawEpisodeFilter{
		SubdatasetID: &id,
		Label:        queryStringPtr(c, "label"),
		Page:         page,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /subdatasets/:id/episodes
func (h *SubdatasetHandler) CreateEpisode(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.RawEpisodeCreateInput
	if !bindJSON(c, &req) {
		return
	}
	req.SubdatasetID = id
	out, err := h.episodes.Create(dbcOf(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *SubdatasetHandler) scopedEpisode(c *gin.Context) (scope int, episodeID int, ok bool) {
	if scope, ok = pathID(c, "id"); !ok {
		return 0, 0, false
	}
	if episodeID, ok = pathID(c, "episode_id"); !ok {
		return 0, 0, false
	}
	return scope, episodeID, true
}

// GET /subdatasets/:id/episodes/:episode_id
func (h *SubdatasetHandler) GetEpisode(c *gin.Context) {
	scope, episodeID, ok := h.scopedEpisode(c)
	if !ok {
		return
	}
	out, err := h.episodes.Get(dbcOf(c), &scope, episodeID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// PUT /subdatasets/:id/episodes/:episode_id
func (h *SubdatasetHandler) UpdateEpisode(c *gin.Context) {
	scope, episodeID, ok := h.scopedEpisode(c)
	if !ok {
		return
	}
	var req services.RawEpisodeUpdateInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.episodes.Update(dbcOf(c), &scope, episodeID, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// DELETE /subdatasets/:id/episodes/:episode_id
func (h *SubdatasetHandler) DeleteEpisode(c *gin.Context) {
	scope, episodeID, ok := h.scopedEpisode(c)
	if !ok {
		return
	}
	if err := h.episodes.Delete(dbcOf(c), &scope, episodeID); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, true)
}
