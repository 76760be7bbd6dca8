package catalog

import (
	"gorm.io/gorm"

	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

type EpisodeRepo interface {
	Create(dbc dbctx.Context, rows []*types.Episode) ([]*types.Episode, error)
	CreateConversionVersions(dbc dbctx.Context, rows []*types.EpisodeConversionVersion) ([]*types.EpisodeConversionVersion, error)
	// ListBySubdatasetID returns processed episodes with their conversion version loaded.
	ListBySubdatasetID(dbc dbctx.Context, subdatasetID int, page Page) ([]*types.Episode, error)
}

type episodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEpisodeRepo(db *gorm.DB, baseLog *logger.Logger) EpisodeRepo {
	repoLog := baseLog.With("repo", "EpisodeRepo")
	return &episodeRepo{db: db, log: repoLog}
}

func (r *episodeRepo) Create(dbc dbctx.Context, rows []*types.Episode) ([]*types.Episode, error) {
	return createAll(dbc, r.db, rows)
}

func (r *episodeRepo) CreateConversionVersions(dbc dbctx.Context, rows []*types.EpisodeConversionVersion) ([]*types.EpisodeConversionVersion, error) {
	return createAll(dbc, r.db, rows)
}

func (r *episodeRepo) ListBySubdatasetID(dbc dbctx.Context, subdatasetID int, page Page) ([]*types.Episode, error) {
	var out []*types.Episode
	q := dbc.Session(r.db).
		Preload("ConversionVersion").
		Where("subdataset_id = ?", subdatasetID).
		Order("id")
	if err := page.apply(q).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
