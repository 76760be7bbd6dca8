package services

import (
	"context"
	"testing"

	"go.uber.org/goleak"
	"gorm.io/gorm"

	aggtestutil "github.com/yungbote/mimichub-backend/internal/data/aggregates/testutil"
	datarepos "github.com/yungbote/mimichub-backend/internal/data/repos"
	"github.com/yungbote/mimichub-backend/internal/data/repos/testutil"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// The shared postgres handle used with TEST_POSTGRES_DSN lives for the whole run.
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

type fixture struct {
	db    *gorm.DB
	dbc   dbctx.Context
	repos *datarepos.Catalog
	hooks *aggtestutil.HooksRecorder
	log   *logger.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return &fixture{
		db:    db,
		dbc:   dbctx.Context{Ctx: context.Background()},
		repos: datarepos.NewCatalog(db, log),
		hooks: &aggtestutil.HooksRecorder{},
		log:   log,
	}
}

func (f *fixture) taskService() TaskService {
	r := f.repos
	return NewTaskService(f.db, f.log, f.hooks, r.Tasks, r.Variants, r.VariantItems, r.Items, r.Subdatasets, r.Links, r.Training)
}

func (f *fixture) subdatasetService() SubdatasetService {
	r := f.repos
	return NewSubdatasetService(f.db, f.log, f.hooks, r.Subdatasets, r.RawEpisodes, r.Episodes, r.Links, r.Tasks, r.Variants)
}

func (f *fixture) rawEpisodeService() RawEpisodeService {
	return NewRawEpisodeService(f.db, f.log, f.hooks, f.repos.Subdatasets, f.repos.RawEpisodes)
}

func (f *fixture) itemService() ItemService {
	return NewItemService(f.db, f.log, f.hooks, f.repos.Items)
}
