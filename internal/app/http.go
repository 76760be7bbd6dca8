package app

import (
	"gorm.io/gorm"

	httpserver "github.com/yungbote/mimichub-backend/internal/http"
	httpH "github.com/yungbote/mimichub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/mimichub-backend/internal/http/middleware"
	"github.com/yungbote/mimichub-backend/internal/observability"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, db *gorm.DB, metrics *observability.Metrics, svc Services) *httpserver.Server {
	log.Info("Wiring handlers...")
	var uploads *httpH.UploadHandler
	if svc.Uploads != nil {
		uploads = httpH.NewUploadHandler(svc.Uploads)
	}
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return httpserver.NewServer(httpserver.RouterConfig{
		Log:            log.With("component", "http"),
		Metrics:        metrics,
		ServiceName:    serviceName,
		APIPrefix:      cfg.APIPrefix,
		CORSOrigins:    cfg.CORSOrigins,
		AuthRequired:   cfg.AuthRequired,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, svc.Auth),

		AuthHandler: httpH.NewAuthHandler(svc.Auth, cfg.CookieSecure),
		HealthHandler: httpH.NewHealthHandler(cfg.Version, cfg.DB.Driver, metrics.Timings(), poolStats(db), httpH.PoolSettings{
			PoolSize:    cfg.DBPoolSize,
			MaxOverflow: cfg.DBMaxOverflow,
			PoolTimeout: cfg.DBPoolTimeout.Seconds(),
			PoolRecycle: cfg.DBPoolRecycle.Seconds(),
		}),
		TaskHandler:       httpH.NewTaskHandler(svc.Tasks),
		SubdatasetHandler: httpH.NewSubdatasetHandler(svc.Subdatasets, svc.RawEpisodes),
		RawEpisodeHandler: httpH.NewRawEpisodeHandler(svc.RawEpisodes),
		ItemHandler:       httpH.NewItemHandler(svc.Items),
		ReferenceHandler:  httpH.NewReferenceHandler(svc.References),
		UploadHandler:     uploads,
	})
}
