package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidURI     = errors.New("invalid gs:// uri")
)

// MediaBucket stores task configuration images and addresses them by gs:// URI.
type MediaBucket interface {
	Name() string
	UploadFile(dbc dbctx.Context, key string, file io.Reader, contentType string) (string, error)
	DownloadFile(ctx context.Context, uri string) (*Object, error)
	DeleteFile(dbc dbctx.Context, uri string) error
	Close() error
}

// Object is an open object body. Close must be called.
type Object struct {
	io.ReadCloser
	ContentType string
}

type mediaBucket struct {
	log           *logger.Logger
	storageClient *storage.Client
	httpClient    *http.Client
	cfg           StorageConfig
}

func NewMediaBucket(log *logger.Logger, cfg StorageConfig) (MediaBucket, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	serviceLog := log.With("service", "MediaBucket")

	mb := &mediaBucket{log: serviceLog, cfg: cfg, httpClient: http.DefaultClient}
	if !cfg.IsEmulator() {
		opts := ClientOptions(cfg.Credentials)
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		stClient, err := storage.NewClient(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		mb.storageClient = stClient
	} else {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
	}

	serviceLog.Info(
		"Object storage initialized",
		"mode", cfg.Mode,
		"mode_source", cfg.ModeSource(),
		"emulator_host", cfg.EmulatorHost,
		"bucket", cfg.Bucket,
	)
	return mb, nil
}

// NewEmulatorBucket talks to a fake-gcs style JSON API at cfg.EmulatorHost with
// the given client.
func NewEmulatorBucket(log *logger.Logger, cfg StorageConfig, client *http.Client) (MediaBucket, error) {
	cfg.Mode = StorageModeGCSEmulator
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &mediaBucket{log: log.With("service", "MediaBucket"), cfg: cfg, httpClient: client}, nil
}

func (mb *mediaBucket) Name() string { return mb.cfg.Bucket }

func (mb *mediaBucket) Close() error {
	if mb.storageClient == nil {
		return nil
	}
	return mb.storageClient.Close()
}

// GSURI formats the canonical reference stored on variants.
func GSURI(bucket, key string) string {
	return fmt.Sprintf("gs://%s/%s", bucket, key)
}

// ParseGSURI splits gs://bucket/key.
func ParseGSURI(uri string) (bucket, key string, err error) {
	s := strings.TrimSpace(uri)
	if !strings.HasPrefix(s, "gs://") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}
	s = strings.TrimPrefix(s, "gs://")
	i := strings.Index(s, "/")
	if i <= 0 || i == len(s)-1 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}
	return s[:i], s[i+1:], nil
}

func (mb *mediaBucket) UploadFile(dbc dbctx.Context, key string, file io.Reader, contentType string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("empty object key")
	}
	if contentType == "" {
		contentType = contentTypeForKey(key)
	}
	parent := dbc.Ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
	defer cancel()

	if mb.cfg.IsEmulator() {
		if err := mb.emulatorUpload(ctx, key, file, contentType); err != nil {
			return "", err
		}
		return GSURI(mb.cfg.Bucket, key), nil
	}

	w := mb.storageClient.Bucket(mb.cfg.Bucket).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return GSURI(mb.cfg.Bucket, key), nil
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".gif"):
		return "image/gif"
	default:
		return ""
	}
}

func (mb *mediaBucket) DeleteFile(dbc dbctx.Context, uri string) error {
	bucket, key, err := ParseGSURI(uri)
	if err != nil {
		return err
	}
	parent := dbc.Ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()

	if mb.cfg.IsEmulator() {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, mb.emulatorObjectMetaURL(bucket, key), nil)
		if err != nil {
			return fmt.Errorf("failed creating emulator delete request: %w", err)
		}
		resp, err := mb.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed emulator delete request: %w", err)
		}
		defer resp.Body.Close()
		return emulatorStatusError("delete", resp)
	}

	if err := mb.storageClient.Bucket(bucket).Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, uri)
		}
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, bucket, err)
	}
	return nil
}

// The reader keeps its context alive until Close.
type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	if r.cancel != nil {
		r.cancel()
	}
	return err
}

func (mb *mediaBucket) DownloadFile(ctx context.Context, uri string) (*Object, error) {
	bucket, key, err := ParseGSURI(uri)
	if err != nil {
		return nil, err
	}
	ctx2, cancel := context.WithTimeout(ctx, 2*time.Minute)

	if mb.cfg.IsEmulator() {
		req, err := http.NewRequestWithContext(ctx2, http.MethodGet, mb.emulatorObjectMediaURL(bucket, key), nil)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed creating emulator download request: %w", err)
		}
		resp, err := mb.httpClient.Do(req)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed emulator download request: %w", err)
		}
		if err := emulatorStatusError("download", resp); err != nil {
			_ = resp.Body.Close()
			cancel()
			return nil, err
		}
		ct := resp.Header.Get("Content-Type")
		if ct == "" || ct == "application/octet-stream" {
			if guess := contentTypeForKey(key); guess != "" {
				ct = guess
			}
		}
		return &Object{ReadCloser: &readCloserWithCancel{ReadCloser: resp.Body, cancel: cancel}, ContentType: ct}, nil
	}

	r, err := mb.storageClient.Bucket(bucket).Object(key).NewReader(ctx2)
	if err != nil {
		cancel()
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, uri)
		}
		return nil, fmt.Errorf("failed to open GCS reader: %w", err)
	}
	ct := r.Attrs.ContentType
	if ct == "" {
		ct = contentTypeForKey(key)
	}
	return &Object{ReadCloser: &readCloserWithCancel{ReadCloser: r, cancel: cancel}, ContentType: ct}, nil
}

func (mb *mediaBucket) emulatorUpload(ctx context.Context, key string, file io.Reader, contentType string) error {
	u := fmt.Sprintf(
		"%s/upload/storage/v1/b/%s/o?uploadType=media&name=%s",
		mb.cfg.EmulatorHost,
		url.PathEscape(mb.cfg.Bucket),
		url.QueryEscape(key),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, file)
	if err != nil {
		return fmt.Errorf("failed creating emulator upload request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := mb.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed emulator upload request: %w", err)
	}
	defer resp.Body.Close()
	return emulatorStatusError("upload", resp)
}

func emulatorStatusError(op string, resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: emulator %s", ErrObjectNotFound, op)
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("emulator %s failed: status=%d body=%s", op, resp.StatusCode, strings.TrimSpace(string(body)))
	}
}

func (mb *mediaBucket) emulatorObjectMediaURL(bucket, key string) string {
	return mb.emulatorObjectMetaURL(bucket, key) + "?alt=media"
}

func (mb *mediaBucket) emulatorObjectMetaURL(bucket, key string) string {
	return fmt.Sprintf(
		"%s/storage/v1/b/%s/o/%s",
		strings.TrimRight(mb.cfg.EmulatorHost, "/"),
		url.PathEscape(bucket),
		url.PathEscape(key),
	)
}
