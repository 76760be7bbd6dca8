package services

import (
	"time"

	"gorm.io/gorm"

	dataagg "github.com/yungbote/mimichub-backend/internal/data/aggregates"
	repos "github.com/yungbote/mimichub-backend/internal/data/repos/catalog"
	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/pkg/patch"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

type RawEpisodeCreateInput struct {
	SubdatasetID int        `json:"subdataset_id"`
	Operator     *string    `json:"operator"`
	URL          *string    `json:"url"`
	Label        *string    `json:"label"`
	Repository   *string    `json:"repository"`
	GitCommit    *string    `json:"git_commit"`
	RecordedAt   *time.Time `json:"recorded_at"`
}

type RawEpisodeUpdateInput struct {
	Operator   patch.Field[string]    `json:"operator"`
	URL        patch.Field[string]    `json:"url"`
	Label      patch.Field[string]    `json:"label"`
	Repository patch.Field[string]    `json:"repository"`
	GitCommit  patch.Field[string]    `json:"git_commit"`
	RecordedAt patch.Field[time.Time] `json:"recorded_at"`
}

// RawEpisodeService serves both the subdataset-scoped routes and the global
// ones. A non-nil scope requires the episode to belong to that subdataset; a
// mismatch reads as not found.
type RawEpisodeService interface {
	List(dbc dbctx.Context, f repos.RawEpisodeFilter) ([]*types.RawEpisode, error)
	Create(dbc dbctx.Context, in RawEpisodeCreateInput) (*types.RawEpisode, error)
	Get(dbc dbctx.Context, scope *int, id int) (*types.RawEpisode, error)
	Update(dbc dbctx.Context, scope *int, id int, in RawEpisodeUpdateInput) (*types.RawEpisode, error)
	Delete(dbc dbctx.Context, scope *int, id int) error
}

type rawEpisodeService struct {
	db             *gorm.DB
	log            *logger.Logger
	deps           dataagg.Deps
	subdatasetRepo repos.SubdatasetRepo
	rawEpisodeRepo repos.RawEpisodeRepo
}

func NewRawEpisodeService(
	db *gorm.DB,
	log *logger.Logger,
	hooks dataagg.Hooks,
	subdatasetRepo repos.SubdatasetRepo,
	rawEpisodeRepo repos.RawEpisodeRepo,
) RawEpisodeService {
	return &rawEpisodeService{
		db:             db,
		log:            log.With("service", "RawEpisodeService"),
		deps:           dataagg.Deps{DB: db, Hooks: hooks},
		subdatasetRepo: subdatasetRepo,
		rawEpisodeRepo: rawEpisodeRepo,
	}
}

func (s *rawEpisodeService) requireSubdataset(dbc dbctx.Context, op string, id int) error {
	sub, err := s.subdatasetRepo.GetByID(dbc, id)
	if err != nil {
		return err
	}
	if sub == nil {
		return notFound(op, msgSubdatasetNotFound)
	}
	return nil
}

func (s *rawEpisodeService) List(dbc dbctx.Context, f repos.RawEpisodeFilter) ([]*types.RawEpisode, error) {
	const op = "raw_episode.list"
	if f.SubdatasetID != nil {
		if err := s.requireSubdataset(dbc, op, *f.SubdatasetID); err != nil {
			return nil, storeErr(op, err)
		}
	}
	rows, err := s.rawEpisodeRepo.List(dbc, f)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return nonNil(rows), nil
}

func (s *rawEpisodeService) Create(dbc dbctx.Context, in RawEpisodeCreateInput) (*types.RawEpisode, error) {
	const op = "raw_episode.create"
	if in.SubdatasetID <= 0 {
		return nil, invalid(op, "subdataset_id is required")
	}
	row := &types.RawEpisode{
		SubdatasetID: in.SubdatasetID,
		Operator:     in.Operator,
		URL:          in.URL,
		Label:        in.Label,
		Repository:   in.Repository,
		GitCommit:    in.GitCommit,
		RecordedAt:   in.RecordedAt,
	}
	err := dataagg.Write(dbc, s.deps, op, func(dbc dbctx.Context) error {
		if err := s.requireSubdataset(dbc, op, in.SubdatasetID); err != nil {
			return err
		}
		_, err := s.rawEpisodeRepo.Create(dbc, []*types.RawEpisode{row})
		return err
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// load fetches the episode and enforces the scope.
func (s *rawEpisodeService) load(dbc dbctx.Context, op string, scope *int, id int) (*types.RawEpisode, error) {
	if scope != nil {
		if err := s.requireSubdataset(dbc, op, *scope); err != nil {
			return nil, err
		}
	}
	row, err := s.rawEpisodeRepo.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if row == nil || (scope != nil && row.SubdatasetID != *scope) {
		return nil, notFound(op, msgRawEpisodeNotFound)
	}
	return row, nil
}

func (s *rawEpisodeService) Get(dbc dbctx.Context, scope *int, id int) (*types.RawEpisode, error) {
	const op = "raw_episode.get"
	row, err := s.load(dbc, op, scope, id)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return row, nil
}

func (s *rawEpisodeService) Update(dbc dbctx.Context, scope *int, id int, in RawEpisodeUpdateInput) (*types.RawEpisode, error) {
	const op = "raw_episode.update"
	updates := patch.Updates{}
	patch.Put(updates, "operator", in.Operator)
	patch.Put(updates, "url", in.URL)
	patch.Put(updates, "label", in.Label)
	patch.Put(updates, "repository", in.Repository)
	patch.Put(updates, "git_commit", in.GitCommit)
	patch.Put(updates, "recorded_at", in.RecordedAt)

	var out *types.RawEpisode
	err := dataagg.Write(dbc, s.deps, op, func(dbc dbctx.Context) error {
		if _, err := s.load(dbc, op, scope, id); err != nil {
			return err
		}
		if _, err := s.rawEpisodeRepo.UpdateFields(dbc, id, updates); err != nil {
			return err
		}
		row, err := s.rawEpisodeRepo.GetByID(dbc, id)
		out = row
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *rawEpisodeService) Delete(dbc dbctx.Context, scope *int, id int) error {
	const op = "raw_episode.delete"
	return dataagg.Write(dbc, s.deps, op, func(dbc dbctx.Context) error {
		if _, err := s.load(dbc, op, scope, id); err != nil {
			return err
		}
		_, err := s.rawEpisodeRepo.DeleteByIDs(dbc, []int{id})
		return err
	})
}
