package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repos "github.com/yungbote/mimichub-backend/internal/data/repos/catalog"
	domainagg "github.com/yungbote/mimichub-backend/internal/domain/aggregates"
	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	httpH "github.com/yungbote/mimichub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/mimichub-backend/internal/http/middleware"
	"github.com/yungbote/mimichub-backend/internal/observability"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
	"github.com/yungbote/mimichub-backend/internal/services"
)

// Fakes embed the service interface so only the methods a test touches need bodies.

type fakeTasks struct {
	services.TaskService
	filter  repos.TaskFilter
	update  services.TaskUpdateInput
	deleted int
}

func (f *fakeTasks) ListTasks(_ dbctx.Context, filter repos.TaskFilter) ([]*types.TaskWithVariants, error) {
	f.filter = filter
	return []*types.TaskWithVariants{{Task: types.Task{ID: 1, Name: "pick-place"}, Variants: []*types.TaskVariant{}}}, nil
}

func (f *fakeTasks) UpdateTask(_ dbctx.Context, id int, in services.TaskUpdateInput) (*types.TaskWithVariants, error) {
	f.update = in
	return &types.TaskWithVariants{Task: types.Task{ID: id, Name: "pick-place"}}, nil
}

func (f *fakeTasks) DeleteTask(_ dbctx.Context, id int) error {
	f.deleted = id
	return nil
}

func (f *fakeTasks) GetTaskDetail(_ dbctx.Context, id int) (*types.TaskDetail, error) {
	if id != 1 {
		return nil, domainagg.NotFound("task.detail", "Task not found")
	}
	return &types.TaskDetail{
		ID:   1,
		Name: "pick-place",
		SubdatasetsByVariant: []types.VariantSubdatasets{{
			Variant:     types.VariantSummary{ID: 10, TaskID: 1, Name: "default"},
			Subdatasets: []types.SubdatasetSummary{{ID: 100, Name: "lab-a"}},
		}},
	}, nil
}

type fakeSubdatasets struct {
	services.SubdatasetService
	filter  repos.SubdatasetFilter
	linked  [2]int
	linkErr error
}

func (f *fakeSubdatasets) ListSubdatasets(_ dbctx.Context, filter repos.SubdatasetFilter) ([]*types.SubdatasetDetail, error) {
	f.filter = filter
	return []*types.SubdatasetDetail{}, nil
}

func (f *fakeSubdatasets) LinkTaskVariant(_ dbctx.Context, subID, variantID int) (*types.TaskVariantSubdataset, error) {
	if f.linkErr != nil {
		return nil, f.linkErr
	}
	f.linked = [2]int{subID, variantID}
	return &types.TaskVariantSubdataset{SubdatasetID: subID, TaskVariantID: variantID}, nil
}

type fakeEpisodes struct {
	services.RawEpisodeService
	scope *int
	id    int
}

func (f *fakeEpisodes) Get(_ dbctx.Context, scope *int, id int) (*types.RawEpisode, error) {
	f.scope, f.id = scope, id
	return nil, domainagg.NotFound("raw_episode.get", "Raw episode not found")
}

type fakeUploads struct {
	services.UploadService
	in        services.ImageUploadInput
	startBody string
	deleted   []string
}

func (f *fakeUploads) UploadTaskImages(_ dbctx.Context, in services.ImageUploadInput) ([]string, error) {
	f.in = in
	if in.Start != nil {
		b, _ := io.ReadAll(in.Start.Body)
		f.startBody = string(b)
	}
	return []string{"gs://media/7_9_start.png"}, nil
}

func (f *fakeUploads) ImagesAsBase64(_ context.Context, uris []string) ([]string, error) {
	out := make([]string, len(uris))
	for i, u := range uris {
		out[i] = "data:image/jpeg;base64," + u
	}
	return out, nil
}

func (f *fakeUploads) DeleteImages(_ dbctx.Context, uris []string) error {
	f.deleted = uris
	return nil
}

type fakeAuth struct {
	services.AuthService
}

func (fakeAuth) SignInWithGoogle(_ context.Context, code string) (*services.User, string, error) {
	if code != "good-code" {
		return nil, "", domainagg.NewError(domainagg.CodeForbidden, "auth.google", "Access denied. Use your @mimic.test account.", nil)
	}
	return &services.User{Email: "ada@mimic.test", Name: "Ada"}, "signed-token", nil
}

func (fakeAuth) ParseToken(token string) (*services.User, error) {
	if token != "signed-token" {
		return nil, domainagg.NewError(domainagg.CodeUnauthorized, "auth.parse", "Not authenticated", nil)
	}
	return &services.User{Email: "ada@mimic.test", Name: "Ada"}, nil
}

func (fakeAuth) AccessTTL() time.Duration { return time.Hour }

type harness struct {
	router      *gin.Engine
	tasks       *fakeTasks
	subdatasets *fakeSubdatasets
	episodes    *fakeEpisodes
	uploads     *fakeUploads
}

func newHarness(t *testing.T, authRequired bool) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	metrics, err := observability.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	h := &harness{
		tasks:       &fakeTasks{},
		subdatasets: &fakeSubdatasets{},
		episodes:    &fakeEpisodes{},
		uploads:     &fakeUploads{},
	}
	auth := fakeAuth{}
	h.router = NewRouter(RouterConfig{
		Log:               logger.Nop(),
		Metrics:           metrics,
		AuthRequired:      authRequired,
		AuthMiddleware:    httpMW.NewAuthMiddleware(logger.Nop(), auth),
		AuthHandler:       httpH.NewAuthHandler(auth, false),
		HealthHandler:     httpH.NewHealthHandler("1.0.0", "sqlite", metrics.Timings(), nil, httpH.PoolSettings{PoolSize: 10}),
		TaskHandler:       httpH.NewTaskHandler(h.tasks),
		SubdatasetHandler: httpH.NewSubdatasetHandler(h.subdatasets, h.episodes),
		UploadHandler:     httpH.NewUploadHandler(h.uploads),
	})
	return h
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestTaskListParsesFilters(t *testing.T) {
	h := newHarness(t, false)
	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/v1/tasks?skip=2&limit=5&status=active&is_external=true", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	f := h.tasks.filter
	assert.Equal(t, repos.Page{Skip: 2, Limit: 5}, f.Page)
	require.NotNil(t, f.Status)
	assert.Equal(t, "active", *f.Status)
	require.NotNil(t, f.IsExternal)
	assert.True(t, *f.IsExternal)
}

func TestTaskListDefaultsAndBadInput(t *testing.T) {
	h := newHarness(t, false)
	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, repos.Page{Skip: 0, Limit: 100}, h.tasks.filter.Page)
	assert.Nil(t, h.tasks.filter.Status)

	rec = h.do(httptest.NewRequest(http.MethodGet, "/api/v1/tasks?skip=-3", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, -3, h.tasks.filter.Skip)

	rec = h.do(httptest.NewRequest(http.MethodGet, "/api/v1/tasks?limit=ten", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "limit must be an integer", decode(t, rec)["detail"])
}

func TestTaskUpdateDistinguishesNullFromAbsent(t *testing.T) {
	h := newHarness(t, false)
	rec := h.do(jsonRequest(http.MethodPut, "/api/v1/tasks/4", `{"description": null, "status": "done"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	in := h.tasks.update
	assert.True(t, in.Description.Set)
	assert.True(t, in.Description.Null)
	assert.True(t, in.Status.Set)
	assert.Equal(t, "done", in.Status.Value)
	assert.False(t, in.Name.Set)
}

func TestTaskDeleteAndDetail(t *testing.T) {
	h := newHarness(t, false)
	rec := h.do(httptest.NewRequest(http.MethodDelete, "/api/v1/tasks/9", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Task deleted successfully"}`, rec.Body.String())
	assert.Equal(t, 9, h.tasks.deleted)

	rec = h.do(httptest.NewRequest(http.MethodGet, "/api/v1/tasks/1/detail", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	groups := body["subdatasets_by_variant"].([]any)
	require.Len(t, groups, 1)

	rec = h.do(httptest.NewRequest(http.MethodGet, "/api/v1/tasks/2/detail", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "Task not found", body["detail"])
	assert.Equal(t, "not_found", body["error"].(map[string]any)["code"])

	rec = h.do(httptest.NewRequest(http.MethodGet, "/api/v1/tasks/abc/detail", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubdatasetUnassignedFilter(t *testing.T) {
	h := newHarness(t, false)
	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/v1/subdatasets?task_variant_id=unassigned&embodiment_id=3", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, h.subdatasets.filter.Unassigned)
	assert.Nil(t, h.subdatasets.filter.TaskVariantID)
	require.NotNil(t, h.subdatasets.filter.EmbodimentID)
	assert.Equal(t, 3, *h.subdatasets.filter.EmbodimentID)

	rec = h.do(httptest.NewRequest(http.MethodGet, "/api/v1/subdatasets?task_variant_id=12", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, h.subdatasets.filter.Unassigned)
	require.NotNil(t, h.subdatasets.filter.TaskVariantID)
	assert.Equal(t, 12, *h.subdatasets.filter.TaskVariantID)

	rec = h.do(httptest.NewRequest(http.MethodGet, "/api/v1/subdatasets?task_variant_id=some", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLinkTaskVariant(t *testing.T) {
	h := newHarness(t, false)
	rec := h.do(jsonRequest(http.MethodPost, "/api/v1/subdatasets/100/link_task_variant", `{"task_variant_id": 10}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, [2]int{100, 10}, h.subdatasets.linked)

	h.subdatasets.linkErr = domainagg.Conflict("subdataset.link_task_variant", "Subdataset is already linked to a task variant")
	rec = h.do(jsonRequest(http.MethodPost, "/api/v1/subdatasets/100/link_task_variant", `{"task_variant_id": 11}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "conflict", decode(t, rec)["error"].(map[string]any)["code"])

	rec = h.do(jsonRequest(http.MethodPost, "/api/v1/subdatasets/100/link_task_variant", `not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScopedEpisodeRoute(t *testing.T) {
	h := newHarness(t, false)
	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/v1/subdatasets/5/episodes/77", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, h.episodes.scope)
	assert.Equal(t, 5, *h.episodes.scope)
	assert.Equal(t, 77, h.episodes.id)
}

func TestUploadImagesMultipart(t *testing.T) {
	h := newHarness(t, false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("task_name", "pick-place"))
	require.NoError(t, mw.WriteField("task_id", "7"))
	require.NoError(t, mw.WriteField("variant_id", "9"))
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="start_image"; filename="start.png"`)
	hdr.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, _ = part.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := h.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Images uploaded successfully","uris":["gs://media/7_9_start.png"]}`, rec.Body.String())

	in := h.uploads.in
	assert.Equal(t, "pick-place", in.TaskName)
	assert.Equal(t, 7, in.TaskID)
	assert.Equal(t, 9, in.VariantID)
	require.NotNil(t, in.Start)
	assert.Equal(t, "start.png", in.Start.Filename)
	assert.Equal(t, "image/png", in.Start.ContentType)
	assert.Equal(t, "png-bytes", h.uploads.startBody)
	assert.Nil(t, in.End)
}

func TestUploadImagesRequiresTaskID(t *testing.T) {
	h := newHarness(t, false)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("task_name", "pick-place"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := h.do(req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "task_id is required", decode(t, rec)["detail"])
}

func TestBase64AndDeleteImages(t *testing.T) {
	h := newHarness(t, false)
	rec := h.do(jsonRequest(http.MethodPost, "/api/v1/upload/images/base64", `["a","b"]`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"images":["data:image/jpeg;base64,a","data:image/jpeg;base64,b"]}`, rec.Body.String())

	rec = h.do(jsonRequest(http.MethodDelete, "/api/v1/upload/images", `["gs://media/1_2_end.jpg"]`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"gs://media/1_2_end.jpg"}, h.uploads.deleted)
}

func TestGoogleSignInSetsCookie(t *testing.T) {
	h := newHarness(t, false)
	rec := h.do(jsonRequest(http.MethodPost, "/auth/google", `{"code":"good-code","redirect_uri":"postmessage"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"user":{"email":"ada@mimic.test","name":"Ada"}}`, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, services.AccessTokenCookie, cookies[0].Name)
	assert.Equal(t, "signed-token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.AddCookie(cookies[0])
	rec = h.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"email":"ada@mimic.test","name":"Ada"}`, rec.Body.String())

	rec = h.do(httptest.NewRequest(http.MethodGet, "/api/users/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(jsonRequest(http.MethodPost, "/auth/google", `{"code":"other"}`))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	h := newHarness(t, false)
	for _, method := range []string{http.MethodPost, http.MethodGet} {
		rec := h.do(httptest.NewRequest(method, "/auth/logout", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Successfully logged out"}`, rec.Body.String())
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "", cookies[0].Value)
		assert.True(t, cookies[0].MaxAge < 0)
	}
}

func TestAuthRequiredGuardsAPI(t *testing.T) {
	h := newHarness(t, true)
	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.AddCookie(&http.Cookie{Name: services.AccessTokenCookie, Value: "signed-token"})
	rec = h.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOpsEndpoints(t *testing.T) {
	h := newHarness(t, false)
	rec := h.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"message":"Welcome to mimic hub API"}`, rec.Body.String())

	rec = h.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1.0.0", body["version"])
	assert.Equal(t, "sqlite", body["database"])
	perf := body["performance"].(map[string]any)
	assert.Contains(t, perf, "connections")
	assert.Contains(t, perf, "queries")

	rec = h.do(httptest.NewRequest(http.MethodGet, "/performance", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "gorm/sqlite", body["connection_method"])
	assert.Equal(t, float64(10), body["pool_settings"].(map[string]any)["pool_size"])

	rec = h.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# HELP")

	rec = h.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
