package app

import (
	"gorm.io/gorm"

	dataagg "github.com/yungbote/mimichub-backend/internal/data/aggregates"
	datarepos "github.com/yungbote/mimichub-backend/internal/data/repos"
	domainagg "github.com/yungbote/mimichub-backend/internal/domain/aggregates"
	"github.com/yungbote/mimichub-backend/internal/platform/cache"
	"github.com/yungbote/mimichub-backend/internal/platform/gcp"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
	"github.com/yungbote/mimichub-backend/internal/services"
)

type Services struct {
	Tasks       services.TaskService
	Subdatasets services.SubdatasetService
	RawEpisodes services.RawEpisodeService
	Items       services.ItemService
	References  services.ReferenceService
	// Uploads is nil when no media bucket is configured.
	Uploads services.UploadService
	Auth    services.AuthService
	Seeder  *services.Seeder
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	r *datarepos.Catalog,
	hooks dataagg.Hooks,
	store cache.Store,
	bucket gcp.MediaBucket,
) Services {
	log.Info("Wiring services...")
	out := Services{
		Tasks: services.NewTaskService(db, log, hooks,
			r.Tasks, r.Variants, r.VariantItems, r.Items, r.Subdatasets, r.Links, r.Training),
		Subdatasets: services.NewSubdatasetService(db, log, hooks,
			r.Subdatasets, r.RawEpisodes, r.Episodes, r.Links, r.Tasks, r.Variants),
		RawEpisodes: services.NewRawEpisodeService(db, log, hooks, r.Subdatasets, r.RawEpisodes),
		Items:       services.NewItemService(db, log, hooks, r.Items),
		References:  services.NewReferenceService(log, store, cfg.LookupCacheTTL, r.Embodiments, r.TeleopModes),
		Auth:        services.NewAuthService(log, cfg.GoogleAuth, nil, nil),
		Seeder:      services.NewSeeder(db, log, store, r),
	}
	if bucket != nil {
		out.Uploads = services.NewUploadService(log, bucket)
	}
	for _, svc := range []any{out.Tasks, out.Subdatasets, out.RawEpisodes, out.Items, out.Seeder} {
		if agg, ok := svc.(domainagg.Aggregate); ok {
			c := agg.Contract()
			log.Debug("write boundary", "aggregate", c.Name, "tx", c.WriteTxOwnership, "reads", c.ReadPolicy)
		}
	}
	return out
}
