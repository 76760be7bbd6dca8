package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/mimichub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/mimichub-backend/internal/http/middleware"
	"github.com/yungbote/mimichub-backend/internal/observability"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	APIPrefix      string
	CORSOrigins    []string
	AuthRequired   bool
	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler       *httpH.AuthHandler
	HealthHandler     *httpH.HealthHandler
	TaskHandler       *httpH.TaskHandler
	SubdatasetHandler *httpH.SubdatasetHandler
	RawEpisodeHandler *httpH.RawEpisodeHandler
	ItemHandler       *httpH.ItemHandler
	ReferenceHandler  *httpH.ReferenceHandler
	UploadHandler     *httpH.UploadHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics, "/metrics"))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Ops
	if cfg.HealthHandler != nil {
		r.GET("/", cfg.HealthHandler.Root)
		r.GET("/health", cfg.HealthHandler.HealthCheck)
		r.GET("/performance", cfg.HealthHandler.Performance)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Auth
	if cfg.AuthHandler != nil {
		r.POST("/auth/google", cfg.AuthHandler.GoogleSignIn)
		r.POST("/auth/logout", cfg.AuthHandler.Logout)
		r.GET("/auth/logout", cfg.AuthHandler.Logout)
		if cfg.AuthMiddleware != nil {
			r.GET("/api/users/me", cfg.AuthMiddleware.RequireAuth(), cfg.AuthHandler.Me)
		}
	}

	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)
	if cfg.AuthRequired && cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// Tasks
	if h := cfg.TaskHandler; h != nil {
		api.GET("/tasks", h.List)
		api.POST("/tasks", h.Create)
		api.GET("/tasks/list", h.ListSummaries)
		api.GET("/tasks/:id", h.Get)
		api.PUT("/tasks/:id", h.Update)
		api.DELETE("/tasks/:id", h.Delete)
		api.GET("/tasks/:id/detail", h.Detail)
		api.POST("/tasks/:id/variants", h.CreateVariant)
		api.GET("/tasks/:id/variants", h.ListVariants)
		api.GET("/tasks/variants/:variant_id", h.GetVariant)
		api.PUT("/tasks/variants/:variant_id", h.UpdateVariant)
		api.DELETE("/tasks/variants/:variant_id", h.DeleteVariant)
		api.POST("/tasks/variants/:variant_id/items", h.AddVariantItem)
		api.DELETE("/tasks/variants/:variant_id/items/:item_id", h.RemoveVariantItem)
	}

	// Subdatasets
	if h := cfg.SubdatasetHandler; h != nil {
		api.GET("/subdatasets", h.List)
		api.POST("/subdatasets", h.Create)
		api.GET("/subdatasets/list", h.ListSummaries)
		api.GET("/subdatasets/:id", h.Get)
		api.PUT("/subdatasets/:id", h.Update)
		api.DELETE("/subdatasets/:id", h.Delete)
		api.GET("/subdatasets/:id/episodes", h.ListEpisodes)
		api.POST("/subdatasets/:id/episodes", h.CreateEpisode)
		api.GET("/subdatasets/:id/episodes/:episode_id", h.GetEpisode)
		api.PUT("/subdatasets/:id/episodes/:episode_id", h.UpdateEpisode)
		api.DELETE("/subdatasets/:id/episodes/:episode_id", h.DeleteEpisode)
		api.GET("/subdatasets/:id/processed_episodes", h.ProcessedEpisodes)
		api.GET("/subdatasets/:id/linked_tasks", h.LinkedTasks)
		api.POST("/subdatasets/:id/link_task_variant", h.LinkTaskVariant)
		api.DELETE("/subdatasets/:id/link_task_variant/:task_variant_id", h.UnlinkTaskVariant)
	}

	// Raw episodes
	if h := cfg.RawEpisodeHandler; h != nil {
		api.GET("/raw-episodes", h.List)
		api.POST("/raw-episodes", h.Create)
		api.GET("/raw-episodes/:episode_id", h.Get)
		api.PUT("/raw-episodes/:episode_id", h.Update)
		api.DELETE("/raw-episodes/:episode_id", h.Delete)
	}

	// Items
	if h := cfg.ItemHandler; h != nil {
		api.GET("/items", h.List)
		api.POST("/items", h.Create)
		api.GET("/items/list", h.ListNames)
		api.GET("/items/:id", h.Get)
		api.PUT("/items/:id", h.Update)
		api.DELETE("/items/:id", h.Delete)
	}

	// Reference tables
	if h := cfg.ReferenceHandler; h != nil {
		api.GET("/embodiments", h.ListEmbodiments)
		api.POST("/embodiments", h.CreateEmbodiment)
		api.GET("/embodiments/:id", h.GetEmbodiment)
		api.GET("/teleop-modes", h.ListTeleopModes)
		api.POST("/teleop-modes", h.CreateTeleopMode)
		api.GET("/teleop-modes/:id", h.GetTeleopMode)
	}

	// Upload
	if h := cfg.UploadHandler; h != nil {
		api.POST("/upload/images", h.UploadImages)
		api.DELETE("/upload/images", h.DeleteImages)
		api.POST("/upload/images/base64", h.ImagesAsBase64)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})
	return r
}
