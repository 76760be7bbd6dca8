package services

import (
	"errors"
	"sort"
	"strings"

	"gorm.io/gorm"

	dataagg "github.com/yungbote/mimichub-backend/internal/data/aggregates"
	repos "github.com/yungbote/mimichub-backend/internal/data/repos/catalog"
	domainagg "github.com/yungbote/mimichub-backend/internal/domain/aggregates"
	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/pkg/patch"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

type SubdatasetCreateInput struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Notes        *string `json:"notes"`
	EmbodimentID *int    `json:"embodiment_id"`
	TeleopModeID *int    `json:"teleop_mode_id"`
}

type SubdatasetUpdateInput struct {
	Name         patch.Field[string] `json:"name"`
	Description  patch.Field[string] `json:"description"`
	Notes        patch.Field[string] `json:"notes"`
	EmbodimentID patch.Field[int]    `json:"embodiment_id"`
	TeleopModeID patch.Field[int]    `json:"teleop_mode_id"`
}

type SubdatasetService interface {
	CreateSubdataset(dbc dbctx.Context, in SubdatasetCreateInput) (*types.SubdatasetDetail, error)
	GetSubdataset(dbc dbctx.Context, id int) (*types.SubdatasetDetail, error)
	// ListSubdatasets returns full details; raw episodes for the whole page are
	// fetched in one query.
	ListSubdatasets(dbc dbctx.Context, f repos.SubdatasetFilter) ([]*types.SubdatasetDetail, error)
	ListSubdatasetSummaries(dbc dbctx.Context, f repos.SubdatasetFilter) ([]types.SubdatasetSummary, error)
	UpdateSubdataset(dbc dbctx.Context, id int, in SubdatasetUpdateInput) (*types.SubdatasetDetail, error)
	DeleteSubdataset(dbc dbctx.Context, id int) error

	LinkTaskVariant(dbc dbctx.Context, subdatasetID, variantID int) (*types.TaskVariantSubdataset, error)
	UnlinkTaskVariant(dbc dbctx.Context, subdatasetID, variantID int) error
	LinkedTasks(dbc dbctx.Context, subdatasetID int) ([]*types.TaskWithVariants, error)
	ProcessedEpisodes(dbc dbctx.Context, subdatasetID int, page repos.Page) ([]types.ProcessedEpisode, error)
}

type subdatasetService struct {
	db             *gorm.DB
	log            *logger.Logger
	deps           dataagg.Deps
	subdatasetRepo repos.SubdatasetRepo
	rawEpisodeRepo repos.RawEpisodeRepo
	episodeRepo    repos.EpisodeRepo
	linkRepo       repos.SubdatasetLinkRepo
	taskRepo       repos.TaskRepo
	variantRepo    repos.TaskVariantRepo
}

func NewSubdatasetService(
	db *gorm.DB,
	log *logger.Logger,
	hooks dataagg.Hooks,
	subdatasetRepo repos.SubdatasetRepo,
	rawEpisodeRepo repos.RawEpisodeRepo,
	episodeRepo repos.EpisodeRepo,
	linkRepo repos.SubdatasetLinkRepo,
	taskRepo repos.TaskRepo,
	variantRepo repos.TaskVariantRepo,
) SubdatasetService {
	return &subdatasetService{
		db:             db,
		log:            log.With("service", "SubdatasetService"),
		deps:           dataagg.Deps{DB: db, Hooks: hooks},
		subdatasetRepo: subdatasetRepo,
		rawEpisodeRepo: rawEpisodeRepo,
		episodeRepo:    episodeRepo,
		linkRepo:       linkRepo,
		taskRepo:       taskRepo,
		variantRepo:    variantRepo,
	}
}

func (s *subdatasetService) CreateSubdataset(dbc dbctx.Context, in SubdatasetCreateInput) (*types.SubdatasetDetail, error) {
	const op = "subdataset.create"
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid(op, "name is required")
	}
	row := &types.Subdataset{
		Name:         name,
		Description:  in.Description,
		Notes:        in.Notes,
		EmbodimentID: in.EmbodimentID,
		TeleopModeID: in.TeleopModeID,
	}
	err := dataagg.Write(dbc, s.deps, op, func(dbc dbctx.Context) error {
		if err := s.ensureNameFree(dbc, op, name, 0); err != nil {
			return err
		}
		_, err := s.subdatasetRepo.Create(dbc, []*types.Subdataset{row})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetSubdataset(dbc, row.ID)
}

func (s *subdatasetService) ensureNameFree(dbc dbctx.Context, op, name string, selfID int) error {
	existing, err := s.subdatasetRepo.GetByName(dbc, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return domainagg.Conflict(op, "Subdataset with this name already exists")
	}
	return nil
}

func (s *subdatasetService) GetSubdataset(dbc dbctx.Context, id int) (*types.SubdatasetDetail, error) {
	const op = "subdataset.get"
	row, err := s.subdatasetRepo.GetWithRefs(dbc, id)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if row == nil {
		return nil, notFound(op, msgSubdatasetNotFound)
	}
	episodes, err := s.rawEpisodeRepo.List(dbc, repos.RawEpisodeFilter{SubdatasetID: &id, Page: repos.All})
	if err != nil {
		return nil, storeErr(op, err)
	}
	stats, err := s.rawEpisodeRepo.LabelStats(dbc, id)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return &types.SubdatasetDetail{
		SubdatasetSummary: types.NewSubdatasetSummary(row),
		RawEpisodes:       nonNil(episodes),
		EpisodeStats:      stats,
	}, nil
}

func (s *subdatasetService) ListSubdatasets(dbc dbctx.Context, f repos.SubdatasetFilter) ([]*types.SubdatasetDetail, error) {
	const op = "subdataset.list"
	f.WithRefs = true
	rows, err := s.subdatasetRepo.List(dbc, f)
	if err != nil {
		return nil, storeErr(op, err)
	}
	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	episodes, err := s.rawEpisodeRepo.ListBySubdatasetIDs(dbc, ids)
	if err != nil {
		return nil, storeErr(op, err)
	}
	bySub := make(map[int][]*types.RawEpisode, len(rows))
	for _, e := range episodes {
		bySub[e.SubdatasetID] = append(bySub[e.SubdatasetID], e)
	}
	out := make([]*types.SubdatasetDetail, 0, len(rows))
	for _, r := range rows {
		d := &types.SubdatasetDetail{
			SubdatasetSummary: types.NewSubdatasetSummary(r),
			RawEpisodes:       nonNil(bySub[r.ID]),
		}
		for _, e := range d.RawEpisodes {
			d.EpisodeStats.Add(e.Label, 1)
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *subdatasetService) ListSubdatasetSummaries(dbc dbctx.Context, f repos.SubdatasetFilter) ([]types.SubdatasetSummary, error) {
	f.WithRefs = true
	rows, err := s.subdatasetRepo.List(dbc, f)
	if err != nil {
		return nil, storeErr("subdataset.list", err)
	}
	out := make([]types.SubdatasetSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, types.NewSubdatasetSummary(r))
	}
	return out, nil
}

func (s *subdatasetService) UpdateSubdataset(dbc dbctx.Context, id int, in SubdatasetUpdateInput) (*types.SubdatasetDetail, error) {
	const op = "subdataset.update"
	if in.Name.Set && (in.Name.Null || strings.TrimSpace(in.Name.Value) == "") {
		return nil, invalid(op, "name cannot be empty")
	}
	updates := patch.Updates{}
	patch.PutWith(updates, "name", in.Name, trimmed)
	patch.Put(updates, "description", in.Description)
	patch.Put(updates, "notes", in.Notes)
	patch.Put(updates, "embodiment_id", in.EmbodimentID)
	patch.Put(updates, "teleop_mode_id", in.TeleopModeID)

	err := dataagg.Write(dbc, s.deps, op, func(dbc dbctx.Context) error {
		if in.Name.Set {
			if err := s.ensureNameFree(dbc, op, strings.TrimSpace(in.Name.Value), id); err != nil {
				return err
			}
		}
		existed, err := s.subdatasetRepo.UpdateFields(dbc, id, updates)
		if err != nil {
			return err
		}
		if !existed {
			return notFound(op, msgSubdatasetNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetSubdataset(dbc, id)
}

func (s *subdatasetService) DeleteSubdataset(dbc dbctx.Context, id int) error {
	const op = "subdataset.delete"
	n, err := s.subdatasetRepo.DeleteByIDs(dbc, []int{id})
	if err != nil {
		return storeErr(op, err)
	}
	if n == 0 {
		return notFound(op, msgSubdatasetNotFound)
	}
	s.log.Info("subdataset deleted", "subdataset_id", id)
	return nil
}

// LinkTaskVariant attaches the subdataset to a variant. A subdataset belongs to
// at most one variant; the pre-check gives the friendly error and the unique
// index on subdataset_id catches concurrent writers.
func (s *subdatasetService) LinkTaskVariant(dbc dbctx.Context, subdatasetID, variantID int) (*types.TaskVariantSubdataset, error) {
	const op = "subdataset.link_task_variant"
	if variantID <= 0 {
		return nil, invalid(op, "task_variant_id is required")
	}
	link := &types.TaskVariantSubdataset{TaskVariantID: variantID, SubdatasetID: subdatasetID}
	err := dataagg.Write(dbc, s.deps, op, func(dbc dbctx.Context) error {
		sub, err := s.subdatasetRepo.GetByID(dbc, subdatasetID)
		if err != nil {
			return err
		}
		if sub == nil {
			return notFound(op, msgSubdatasetNotFound)
		}
		variant, err := s.variantRepo.GetByID(dbc, variantID)
		if err != nil {
			return err
		}
		if variant == nil {
			return notFound(op, msgVariantNotFound)
		}
		existing, err := s.linkRepo.GetBySubdatasetID(dbc, subdatasetID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domainagg.Conflict(op, msgAlreadyLinked)
		}
		if err := s.linkRepo.Create(dbc, link); err != nil {
			if isUniqueViolation(op, err) {
				return domainagg.NewError(domainagg.CodeConflict, op, msgAlreadyLinked, err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("subdataset linked", "subdataset_id", subdatasetID, "task_variant_id", variantID)
	return link, nil
}

func isUniqueViolation(op string, err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return domainagg.IsCode(dataagg.MapError(op, err), domainagg.CodeConflict)
}

func (s *subdatasetService) UnlinkTaskVariant(dbc dbctx.Context, subdatasetID, variantID int) error {
	const op = "subdataset.unlink_task_variant"
	n, err := s.linkRepo.Delete(dbc, subdatasetID, variantID)
	if err != nil {
		return storeErr(op, err)
	}
	if n == 0 {
		return notFound(op, "Subdataset is not linked to this task variant")
	}
	return nil
}

// LinkedTasks lists the tasks that reference the subdataset, through a variant
// link or the older task-level link. Each task carries only its linked variants.
func (s *subdatasetService) LinkedTasks(dbc dbctx.Context, subdatasetID int) ([]*types.TaskWithVariants, error) {
	const op = "subdataset.linked_tasks"
	sub, err := s.subdatasetRepo.GetByID(dbc, subdatasetID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if sub == nil {
		return nil, notFound(op, msgSubdatasetNotFound)
	}

	links, err := s.linkRepo.ListBySubdatasetID(dbc, subdatasetID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	variantIDs := make([]int, 0, len(links))
	for _, l := range links {
		variantIDs = append(variantIDs, l.TaskVariantID)
	}
	variants, err := s.variantRepo.GetByIDs(dbc, variantIDs)
	if err != nil {
		return nil, storeErr(op, err)
	}
	taskLinks, err := s.linkRepo.ListTaskLinksBySubdatasetID(dbc, subdatasetID)
	if err != nil {
		return nil, storeErr(op, err)
	}

	variantsByTask := make(map[int][]*types.TaskVariant)
	for _, v := range variants {
		variantsByTask[v.TaskID] = append(variantsByTask[v.TaskID], v)
	}
	taskIDSet := make(map[int]bool)
	for taskID := range variantsByTask {
		taskIDSet[taskID] = true
	}
	for _, tl := range taskLinks {
		taskIDSet[tl.TaskID] = true
	}
	taskIDs := make([]int, 0, len(taskIDSet))
	for id := range taskIDSet {
		taskIDs = append(taskIDs, id)
	}
	sort.Ints(taskIDs)

	tasks, err := s.taskRepo.GetByIDs(dbc, taskIDs)
	if err != nil {
		return nil, storeErr(op, err)
	}
	out := make([]*types.TaskWithVariants, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, &types.TaskWithVariants{Task: *t, Variants: nonNil(variantsByTask[t.ID])})
	}
	return out, nil
}

func (s *subdatasetService) ProcessedEpisodes(dbc dbctx.Context, subdatasetID int, page repos.Page) ([]types.ProcessedEpisode, error) {
	const op = "subdataset.processed_episodes"
	sub, err := s.subdatasetRepo.GetByID(dbc, subdatasetID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if sub == nil {
		return nil, notFound(op, msgSubdatasetNotFound)
	}
	rows, err := s.episodeRepo.ListBySubdatasetID(dbc, subdatasetID, page)
	if err != nil {
		return nil, storeErr(op, err)
	}
	out := make([]types.ProcessedEpisode, 0, len(rows))
	for _, e := range rows {
		out = append(out, types.NewProcessedEpisode(e))
	}
	return out, nil
}
