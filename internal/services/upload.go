package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	domainagg "github.com/yungbote/mimichub-backend/internal/domain/aggregates"
	"github.com/yungbote/mimichub-backend/internal/platform/ctxutil"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/platform/gcp"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

var allowedImageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp"}

const maxConcurrentDownloads = 8

// ImageFile is one part of a multipart upload.
type ImageFile struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type ImageUploadInput struct {
	TaskName  string
	TaskID    int
	VariantID int
	Start     *ImageFile
	End       *ImageFile
}

// UploadService stores the start/end configuration photos of a task variant.
type UploadService interface {
	UploadTaskImages(dbc dbctx.Context, in ImageUploadInput) ([]string, error)
	// ImagesAsBase64 downloads the objects and returns data URIs in request order.
	ImagesAsBase64(ctx context.Context, uris []string) ([]string, error)
	DeleteImages(dbc dbctx.Context, uris []string) error
}

type uploadService struct {
	log    *logger.Logger
	bucket gcp.MediaBucket
}

func NewUploadService(log *logger.Logger, bucket gcp.MediaBucket) UploadService {
	return &uploadService{log: log.With("service", "UploadService"), bucket: bucket}
}

func isAllowedImageType(ct string) bool {
	for _, t := range allowedImageTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// ImageObjectName is the bucket key for a variant's start or end photo.
func ImageObjectName(taskID, variantID int, kind, filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%d_%d_%s%s", taskID, variantID, kind, ext)
}

func (s *uploadService) UploadTaskImages(dbc dbctx.Context, in ImageUploadInput) ([]string, error) {
	const op = "upload.images"
	taskName := strings.TrimSpace(in.TaskName)
	if taskName == "" {
		return nil, invalid(op, "Task name is required")
	}
	if in.Start == nil && in.End == nil {
		return nil, invalid(op, "At least one image must be provided")
	}
	if in.Start != nil && !isAllowedImageType(in.Start.ContentType) {
		return nil, invalid(op, "Start image must be one of: "+strings.Join(allowedImageTypes, ", "))
	}
	if in.End != nil && !isAllowedImageType(in.End.ContentType) {
		return nil, invalid(op, "End image must be one of: "+strings.Join(allowedImageTypes, ", "))
	}

	log := s.log.With(ctxutil.LogFields(dbc.Ctx)...)
	log.Info("uploading task images", "task_name", taskName, "task_id", in.TaskID, "variant_id", in.VariantID)
	uris := make([]string, 0, 2)
	for _, part := range []struct {
		kind string
		file *ImageFile
	}{{"start", in.Start}, {"end", in.End}} {
		if part.file == nil {
			continue
		}
		key := ImageObjectName(in.TaskID, in.VariantID, part.kind, part.file.Filename)
		uri, err := s.bucket.UploadFile(dbc, key, part.file.Body, part.file.ContentType)
		if err != nil {
			log.Error("image upload failed", "key", key, "error", err)
			return nil, domainagg.NewError(domainagg.CodeUpstream, op, "Failed to upload images: "+err.Error(), err)
		}
		uris = append(uris, uri)
	}
	return uris, nil
}

func (s *uploadService) ImagesAsBase64(ctx context.Context, uris []string) ([]string, error) {
	const op = "upload.images_base64"
	out := make([]string, len(uris))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDownloads)
	for i, uri := range uris {
		g.Go(func() error {
			data, err := s.dataURI(gctx, uri)
			if err != nil {
				return fmt.Errorf("%s: %w", uri, err)
			}
			out[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.With(ctxutil.LogFields(ctx)...).Error("image download failed", "error", err)
		return nil, domainagg.NewError(domainagg.CodeUpstream, op, "Failed to download images: "+err.Error(), err)
	}
	return out, nil
}

func (s *uploadService) dataURI(ctx context.Context, uri string) (string, error) {
	obj, err := s.bucket.DownloadFile(ctx, uri)
	if err != nil {
		return "", err
	}
	defer obj.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj); err != nil {
		return "", err
	}
	ct := obj.ContentType
	if ct == "" {
		ct = "image/jpeg"
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (s *uploadService) DeleteImages(dbc dbctx.Context, uris []string) error {
	const op = "upload.delete_images"
	for _, uri := range uris {
		if _, _, err := gcp.ParseGSURI(uri); err != nil {
			return invalid(op, err.Error())
		}
	}
	for _, uri := range uris {
		err := s.bucket.DeleteFile(dbc, uri)
		if errors.Is(err, gcp.ErrObjectNotFound) {
			s.log.Warn("image already gone", "uri", uri)
			continue
		}
		if err != nil {
			return domainagg.NewError(domainagg.CodeUpstream, op, "Failed to delete images: "+err.Error(), err)
		}
	}
	return nil
}
