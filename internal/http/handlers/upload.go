package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mimichub-backend/internal/http/response"
	"github.com/yungbote/mimichub-backend/internal/services"
)

type UploadHandler struct {
	uploads services.UploadService
}

func NewUploadHandler(uploads services.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// POST /upload/images
// multipart: task_name, task_id, variant_id, start_image?, end_image?
func (h *UploadHandler) UploadImages(c *gin.Context) {
	in := services.ImageUploadInput{TaskName: c.PostForm("task_name")}
	var err error
	if in.TaskID, err = formInt(c, "task_id"); err != nil {
		response.BadRequest(c, err)
		return
	}
	if in.VariantID, err = formInt(c, "variant_id"); err != nil {
		response.BadRequest(c, err)
		return
	}

	var closers []multipart.File
	defer func() {
		for _, f := range closers {
			_ = f.Close()
		}
	}()
	open := func(field string) (*services.ImageFile, error) {
		fh, err := c.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		closers = append(closers, f)
		return &services.ImageFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		}, nil
	}
	if in.Start, err = open("start_image"); err != nil {
		response.BadRequest(c, err)
		return
	}
	if in.End, err = open("end_image"); err != nil {
		response.BadRequest(c, err)
		return
	}

	uris, err := h.uploads.UploadTaskImages(dbcOf(c), in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"message": "Images uploaded successfully",
		"uris":    uris,
	})
}

// POST /upload/images/base64
// body: ["gs://bucket/1_2_start.jpg", ...]
func (h *UploadHandler) ImagesAsBase64(c *gin.Context) {
	var uris []string
	if !bindJSON(c, &uris) {
		return
	}
	images, err := h.uploads.ImagesAsBase64(c.Request.Context(), uris)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"images": images})
}

// DELETE /upload/images
// body: ["gs://bucket/1_2_start.jpg", ...]
func (h *UploadHandler) DeleteImages(c *gin.Context) {
	var uris []string
	if !bindJSON(c, &uris) {
		return
	}
	if err := h.uploads.DeleteImages(dbcOf(c), uris); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondMessage(c, "Images deleted successfully")
}

func formInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.PostForm(key))
	if raw == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}
