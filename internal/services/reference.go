package services

import (
	"context"
	"time"

	repos "github.com/yungbote/mimichub-backend/internal/data/repos/catalog"
	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/platform/cache"
	"github.com/yungbote/mimichub-backend/internal/platform/ctxutil"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

const (
	embodimentsCacheKey = "embodiments:all"
	teleopModesCacheKey = "teleop_modes:all"
)

// ReferenceService serves the small lookup tables. Both tables are read whole
// through the cache; pagination and id lookups run over the cached list.
type ReferenceService interface {
	ListEmbodiments(dbc dbctx.Context, page repos.Page) ([]*types.Embodiment, error)
	GetEmbodiment(dbc dbctx.Context, id int) (*types.Embodiment, error)
	CreateEmbodiment(dbc dbctx.Context, row *types.Embodiment) error
	ListTeleopModes(dbc dbctx.Context, page repos.Page) ([]*types.TeleopMode, error)
	GetTeleopMode(dbc dbctx.Context, id int) (*types.TeleopMode, error)
	CreateTeleopMode(dbc dbctx.Context, row *types.TeleopMode) error
}

type referenceService struct {
	log            *logger.Logger
	cache          cache.Store
	ttl            time.Duration
	embodimentRepo repos.EmbodimentRepo
	teleopRepo     repos.TeleopModeRepo
}

// NewReferenceService accepts a nil store, in which case every call hits the
// database.
func NewReferenceService(
	log *logger.Logger,
	store cache.Store,
	ttl time.Duration,
	embodimentRepo repos.EmbodimentRepo,
	teleopRepo repos.TeleopModeRepo,
) ReferenceService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &referenceService{
		log:            log.With("service", "ReferenceService"),
		cache:          store,
		ttl:            ttl,
		embodimentRepo: embodimentRepo,
		teleopRepo:     teleopRepo,
	}
}

func (s *referenceService) embodiments(dbc dbctx.Context) ([]*types.Embodiment, error) {
	return cache.Fetch(ctxutil.Default(dbc.Ctx), s.cache, embodimentsCacheKey, s.ttl, func(context.Context) ([]*types.Embodiment, error) {
		return s.embodimentRepo.List(dbc, repos.All)
	})
}

func (s *referenceService) teleopModes(dbc dbctx.Context) ([]*types.TeleopMode, error) {
	return cache.Fetch(ctxutil.Default(dbc.Ctx), s.cache, teleopModesCacheKey, s.ttl, func(context.Context) ([]*types.TeleopMode, error) {
		return s.teleopRepo.List(dbc, repos.All)
	})
}

func (s *referenceService) ListEmbodiments(dbc dbctx.Context, page repos.Page) ([]*types.Embodiment, error) {
	rows, err := s.embodiments(dbc)
	if err != nil {
		return nil, storeErr("embodiment.list", err)
	}
	return paginate(rows, page), nil
}

func (s *referenceService) GetEmbodiment(dbc dbctx.Context, id int) (*types.Embodiment, error) {
	const op = "embodiment.get"
	rows, err := s.embodiments(dbc)
	if err != nil {
		return nil, storeErr(op, err)
	}
	for _, r := range rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, notFound(op, msgEmbodimentNotFound)
}

func (s *referenceService) CreateEmbodiment(dbc dbctx.Context, row *types.Embodiment) error {
	const op = "embodiment.create"
	if _, err := s.embodimentRepo.Create(dbc, []*types.Embodiment{row}); err != nil {
		return storeErr(op, err)
	}
	s.invalidate(dbc, embodimentsCacheKey)
	return nil
}

func (s *referenceService) ListTeleopModes(dbc dbctx.Context, page repos.Page) ([]*types.TeleopMode, error) {
	rows, err := s.teleopModes(dbc)
	if err != nil {
		return nil, storeErr("teleop_mode.list", err)
	}
	return paginate(rows, page), nil
}

func (s *referenceService) GetTeleopMode(dbc dbctx.Context, id int) (*types.TeleopMode, error) {
	const op = "teleop_mode.get"
	rows, err := s.teleopModes(dbc)
	if err != nil {
		return nil, storeErr(op, err)
	}
	for _, r := range rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, notFound(op, msgTeleopNotFound)
}

func (s *referenceService) CreateTeleopMode(dbc dbctx.Context, row *types.TeleopMode) error {
	const op = "teleop_mode.create"
	if _, err := s.teleopRepo.Create(dbc, []*types.TeleopMode{row}); err != nil {
		return storeErr(op, err)
	}
	s.invalidate(dbc, teleopModesCacheKey)
	return nil
}

func (s *referenceService) invalidate(dbc dbctx.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctxutil.Default(dbc.Ctx), key); err != nil {
		s.log.Warn("cache invalidate failed", "key", key, "error", err)
	}
}

// paginate applies skip/limit to an in-memory list the way the SQL clause would:
// negative values disable the clause.
func paginate[T any](rows []T, page repos.Page) []T {
	if page.Skip > 0 {
		if page.Skip >= len(rows) {
			return []T{}
		}
		rows = rows[page.Skip:]
	}
	if page.Limit >= 0 && page.Limit < len(rows) {
		rows = rows[:page.Limit]
	}
	return nonNil(rows)
}
