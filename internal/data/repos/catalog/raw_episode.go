package catalog

import (
	"gorm.io/gorm"

	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

type RawEpisodeFilter struct {
	SubdatasetID *int
	Label        *string
	Page
}

type RawEpisodeRepo interface {
	Create(dbc dbctx.Context, rows []*types.RawEpisode) ([]*types.RawEpisode, error)
	GetByID(dbc dbctx.Context, id int) (*types.RawEpisode, error)
	List(dbc dbctx.Context, f RawEpisodeFilter) ([]*types.RawEpisode, error)
	ListBySubdatasetIDs(dbc dbctx.Context, subdatasetIDs []int) ([]*types.RawEpisode, error)
	// LabelStats aggregates label counts for one subdataset in a single grouped query.
	LabelStats(dbc dbctx.Context, subdatasetID int) (types.EpisodeStats, error)
	Count(dbc dbctx.Context) (int64, error)
	UpdateFields(dbc dbctx.Context, id int, updates map[string]interface{}) (bool, error)
	DeleteByIDs(dbc dbctx.Context, ids []int) (int64, error)
}

type rawEpisodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRawEpisodeRepo(db *gorm.DB, baseLog *logger.Logger) RawEpisodeRepo {
	repoLog := baseLog.With("repo", "RawEpisodeRepo")
	return &rawEpisodeRepo{db: db, log: repoLog}
}

func (r *rawEpisodeRepo) Create(dbc dbctx.Context, rows []*types.RawEpisode) ([]*types.RawEpisode, error) {
	return createAll(dbc, r.db, rows)
}

func (r *rawEpisodeRepo) GetByID(dbc dbctx.Context, id int) (*types.RawEpisode, error) {
	return getByID[types.RawEpisode](dbc, r.db, id)
}

func (r *rawEpisodeRepo) List(dbc dbctx.Context, f RawEpisodeFilter) ([]*types.RawEpisode, error) {
	q := dbc.Session(r.db).Model(&types.RawEpisode{})
	if f.SubdatasetID != nil {
		q = q.Where("subdataset_id = ?", *f.SubdatasetID)
	}
	if f.Label != nil {
		q = q.Where("label = ?", *f.Label)
	}
	var out []*types.RawEpisode
	if err := f.Page.apply(q.Order("id")).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *rawEpisodeRepo) ListBySubdatasetIDs(dbc dbctx.Context, subdatasetIDs []int) ([]*types.RawEpisode, error) {
	var out []*types.RawEpisode
	if len(subdatasetIDs) == 0 {
		return out, nil
	}
	err := dbc.Session(r.db).Where("subdataset_id IN ?", subdatasetIDs).Order("id").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

type labelCount struct {
	Label *string
	Total int64
}

func (r *rawEpisodeRepo) LabelStats(dbc dbctx.Context, subdatasetID int) (types.EpisodeStats, error) {
	var rows []labelCount
	err := dbc.Session(r.db).
		Model(&types.RawEpisode{}).
		Select("label, COUNT(*) AS total").
		Where("subdataset_id = ?", subdatasetID).
		Group("label").
		Scan(&rows).Error
	if err != nil {
		return types.EpisodeStats{}, err
	}
	var stats types.EpisodeStats
	for _, row := range rows {
		stats.Add(row.Label, row.Total)
	}
	return stats, nil
}

func (r *rawEpisodeRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.Session(r.db).Model(&types.RawEpisode{}).Count(&n).Error
	return n, err
}

func (r *rawEpisodeRepo) UpdateFields(dbc dbctx.Context, id int, updates map[string]interface{}) (bool, error) {
	return updateFields[types.RawEpisode](dbc, r.db, id, updates)
}

func (r *rawEpisodeRepo) DeleteByIDs(dbc dbctx.Context, ids []int) (int64, error) {
	return deleteByIDs[types.RawEpisode](dbc, r.db, ids)
}
