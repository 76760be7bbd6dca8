package catalog

import (
	"gorm.io/gorm"

	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

type EmbodimentRepo interface {
	Create(dbc dbctx.Context, rows []*types.Embodiment) ([]*types.Embodiment, error)
	GetByID(dbc dbctx.Context, id int) (*types.Embodiment, error)
	List(dbc dbctx.Context, page Page) ([]*types.Embodiment, error)
}

type embodimentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEmbodimentRepo(db *gorm.DB, baseLog *logger.Logger) EmbodimentRepo {
	return &embodimentRepo{db: db, log: baseLog.With("repo", "EmbodimentRepo")}
}

func (r *embodimentRepo) Create(dbc dbctx.Context, rows []*types.Embodiment) ([]*types.Embodiment, error) {
	return createAll(dbc, r.db, rows)
}

func (r *embodimentRepo) GetByID(dbc dbctx.Context, id int) (*types.Embodiment, error) {
	return getByID[types.Embodiment](dbc, r.db, id)
}

func (r *embodimentRepo) List(dbc dbctx.Context, page Page) ([]*types.Embodiment, error) {
	var out []*types.Embodiment
	if err := page.apply(dbc.Session(r.db).Order("id")).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type TeleopModeRepo interface {
	Create(dbc dbctx.Context, rows []*types.TeleopMode) ([]*types.TeleopMode, error)
	GetByID(dbc dbctx.Context, id int) (*types.TeleopMode, error)
	List(dbc dbctx.Context, page Page) ([]*types.TeleopMode, error)
}

type teleopModeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTeleopModeRepo(db *gorm.DB, baseLog *logger.Logger) TeleopModeRepo {
	return &teleopModeRepo{db: db, log: baseLog.With("repo", "TeleopModeRepo")}
}

func (r *teleopModeRepo) Create(dbc dbctx.Context, rows []*types.TeleopMode) ([]*types.TeleopMode, error) {
	return createAll(dbc, r.db, rows)
}

func (r *teleopModeRepo) GetByID(dbc dbctx.Context, id int) (*types.TeleopMode, error) {
	return getByID[types.TeleopMode](dbc, r.db, id)
}

func (r *teleopModeRepo) List(dbc dbctx.Context, page Page) ([]*types.TeleopMode, error) {
	var out []*types.TeleopMode
	if err := page.apply(dbc.Session(r.db).Order("id")).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
