package handlers

import (
	"github.com/gin-gonic/gin"

	repos "github.com/yungbote/mimichub-backend/internal/data/repos/catalog"
	"github.com/yungbote/mimichub-backend/internal/http/response"
	"github.com/yungbote/mimichub-backend/internal/services"
)

type RawEpisodeHandler struct {
	episodes services.RawEpisodeService
}

func NewRawEpisodeHandler(episodes services.RawEpisodeService) *RawEpisodeHandler {
	return &RawEpisodeHandler{episodes: episodes}
}

// GET /raw-episodes?subdataset_id=&label=
func (h *RawEpisodeHandler) List(c *gin.Context) {
	page, ok := pageOf(c)
	if !ok {
		return
	}
	subID, ok := queryIntPtr(c, "subdataset_id")
	if !ok {
		return
	}
	out, err := h.episodes.List(dbcOf(c), repos.RawEpisodeFilter{
		SubdatasetID: subID,
		Label:        queryStringPtr(c, "label"),
		Page:         page,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /raw-episodes?subdataset_id=
func (h *RawEpisodeHandler) Create(c *gin.Context) {
	subID, ok := queryIntPtr(c, "subdataset_id")
	if !ok {
		return
	}
	var req services.RawEpisodeCreateInput
	if !bindJSON(c, &req) {
		return
	}
	if subID != nil {
		req.SubdatasetID = *subID
	}
	out, err := h.episodes.Create(dbcOf(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /raw-episodes/:episode_id
func (h *RawEpisodeHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "episode_id")
	if !ok {
		return
	}
	out, err := h.episodes.Get(dbcOf(c), nil, id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// PUT /raw-episodes/:episode_id
func (h *RawEpisodeHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "episode_id")
	if !ok {
		return
	}
	var req services.RawEpisodeUpdateInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.episodes.Update(dbcOf(c), nil, id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// DELETE /raw-episodes/:episode_id
func (h *RawEpisodeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "episode_id")
	if !ok {
		return
	}
	if err := h.episodes.Delete(dbcOf(c), nil, id); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, true)
}
