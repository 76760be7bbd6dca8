package gcp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

type fakeObject struct {
	data        []byte
	contentType string
}

// fakeGCS implements the handful of JSON API routes the emulator path uses.
type fakeGCS struct {
	mu      sync.Mutex
	objects map[string]fakeObject
}

func (f *fakeGCS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/upload/storage/v1/b/"):
		bucket := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/upload/storage/v1/b/"), "/o")
		body, _ := io.ReadAll(r.Body)
		f.objects[bucket+"/"+r.URL.Query().Get("name")] = fakeObject{data: body, contentType: r.Header.Get("Content-Type")}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	case strings.HasPrefix(r.URL.Path, "/storage/v1/b/"):
		rest := strings.TrimPrefix(r.URL.Path, "/storage/v1/b/")
		parts := strings.SplitN(rest, "/o/", 2)
		if len(parts) != 2 {
			http.NotFound(w, r)
			return
		}
		id := parts[0] + "/" + parts[1]
		obj, ok := f.objects[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", obj.contentType)
			_, _ = w.Write(obj.data)
		case http.MethodDelete:
			delete(f.objects, id)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		http.NotFound(w, r)
	}
}

func newEmulatorBucket(t *testing.T) (MediaBucket, *fakeGCS) {
	t.Helper()
	fake := &fakeGCS{objects: map[string]fakeObject{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	mb, err := NewEmulatorBucket(logger.Nop(), StorageConfig{Bucket: "media", EmulatorHost: srv.URL}, srv.Client())
	if err != nil {
		t.Fatalf("NewEmulatorBucket: %v", err)
	}
	return mb, fake
}

func TestParseGSURI(t *testing.T) {
	bucket, key, err := ParseGSURI("gs://media/12_3_start.png")
	if err != nil {
		t.Fatalf("ParseGSURI: %v", err)
	}
	if bucket != "media" || key != "12_3_start.png" {
		t.Fatalf("got bucket=%q key=%q", bucket, key)
	}

	for _, bad := range []string{"", "media/x.png", "gs://", "gs://media", "gs://media/", "https://storage.googleapis.com/media/x.png"} {
		if _, _, err := ParseGSURI(bad); !errors.Is(err, ErrInvalidURI) {
			t.Fatalf("ParseGSURI(%q): expected ErrInvalidURI, got %v", bad, err)
		}
	}
}

func TestEmulatorUploadDownloadDelete(t *testing.T) {
	mb, fake := newEmulatorBucket(t)
	dbc := dbctx.Background()

	uri, err := mb.UploadFile(dbc, "7_9_start.png", strings.NewReader("png-bytes"), "")
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if uri != "gs://media/7_9_start.png" {
		t.Fatalf("uri: got=%q", uri)
	}
	if got := fake.objects["media/7_9_start.png"].contentType; got != "image/png" {
		t.Fatalf("stored content type: want image/png got=%q", got)
	}

	obj, err := mb.DownloadFile(context.Background(), uri)
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	data, err := io.ReadAll(obj)
	_ = obj.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "png-bytes" || obj.ContentType != "image/png" {
		t.Fatalf("download: data=%q content_type=%q", data, obj.ContentType)
	}

	if err := mb.DeleteFile(dbc, uri); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if err := mb.DeleteFile(dbc, uri); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("second delete: expected ErrObjectNotFound, got %v", err)
	}
	if _, err := mb.DownloadFile(context.Background(), uri); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("download after delete: expected ErrObjectNotFound, got %v", err)
	}
}

func TestUploadRejectsEmptyKey(t *testing.T) {
	mb, _ := newEmulatorBucket(t)
	if _, err := mb.UploadFile(dbctx.Background(), " / ", strings.NewReader("x"), "image/png"); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"a.PNG":        "image/png",
		"a.jpeg":       "image/jpeg",
		"a.jpg?x=1":    "image/jpeg",
		"a.webp":       "image/webp",
		"a.gif":        "image/gif",
		"a.bin":        "",
		"no-extension": "",
	}
	for key, want := range cases {
		if got := contentTypeForKey(key); got != want {
			t.Fatalf("contentTypeForKey(%q): want=%q got=%q", key, want, got)
		}
	}
}
