package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	repos "github.com/yungbote/mimichub-backend/internal/data/repos/catalog"
	"github.com/yungbote/mimichub-backend/internal/http/response"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
)

const defaultPageLimit = 100

func dbcOf(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

// pathID parses a positive-or-zero integer path parameter, answering 400 on failure.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		response.BadRequest(c, fmt.Errorf("%s must be an integer", name))
		return 0, false
	}
	return id, true
}

// pageOf reads skip/limit. Negative values are passed through unvalidated.
func pageOf(c *gin.Context) (repos.Page, bool) {
	skip, ok := queryInt(c, "skip", 0)
	if !ok {
		return repos.Page{}, false
	}
	limit, ok := queryInt(c, "limit", defaultPageLimit)
	if !ok {
		return repos.Page{}, false
	}
	return repos.Page{Skip: skip, Limit: limit}, true
}

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw, present := c.GetQuery(key)
	if !present || strings.TrimSpace(raw) == "" {
		return def, true
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		response.BadRequest(c, fmt.Errorf("%s must be an integer", key))
		return 0, false
	}
	return v, true
}

func queryIntPtr(c *gin.Context, key string) (*int, bool) {
	raw, present := c.GetQuery(key)
	if !present || strings.TrimSpace(raw) == "" {
		return nil, true
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		response.BadRequest(c, fmt.Errorf("%s must be an integer", key))
		return nil, false
	}
	return &v, true
}

func queryBoolPtr(c *gin.Context, key string) (*bool, bool) {
	raw, present := c.GetQuery(key)
	if !present || strings.TrimSpace(raw) == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		response.BadRequest(c, fmt.Errorf("%s must be a boolean", key))
		return nil, false
	}
	return &v, true
}

func queryStringPtr(c *gin.Context, key string) *string {
	raw, present := c.GetQuery(key)
	if !present {
		return nil
	}
	return &raw
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.BadRequest(c, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}
