package services

import (
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	dataagg "github.com/yungbote/mimichub-backend/internal/data/aggregates"
	repos "github.com/yungbote/mimichub-backend/internal/data/repos/catalog"
	domainagg "github.com/yungbote/mimichub-backend/internal/domain/aggregates"
	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/pkg/patch"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

type ItemCreateInput struct {
	Name   string   `json:"name"`
	URL    *string  `json:"url"`
	Images []string `json:"images"`
	Notes  *string  `json:"notes"`
}

type ItemUpdateInput struct {
	Name   patch.Field[string]   `json:"name"`
	URL    patch.Field[string]   `json:"url"`
	Images patch.Field[[]string] `json:"images"`
	Notes  patch.Field[string]   `json:"notes"`
}

type ItemService interface {
	Create(dbc dbctx.Context, in ItemCreateInput) (*types.Item, error)
	Get(dbc dbctx.Context, id int) (*types.Item, error)
	List(dbc dbctx.Context, page repos.Page) ([]*types.Item, error)
	// ListNames is the slim {id, name} listing used by pickers.
	ListNames(dbc dbctx.Context, page repos.Page) ([]types.RefInfo, error)
	Update(dbc dbctx.Context, id int, in ItemUpdateInput) (*types.Item, error)
	Delete(dbc dbctx.Context, id int) error
}

type itemService struct {
	db       *gorm.DB
	log      *logger.Logger
	deps     dataagg.Deps
	itemRepo repos.ItemRepo
}

func NewItemService(db *gorm.DB, log *logger.Logger, hooks dataagg.Hooks, itemRepo repos.ItemRepo) ItemService {
	return &itemService{
		db:       db,
		log:      log.With("service", "ItemService"),
		deps:     dataagg.Deps{DB: db, Hooks: hooks},
		itemRepo: itemRepo,
	}
}

const msgItemNameTaken = "Item with this name already exists"

func (s *itemService) Create(dbc dbctx.Context, in ItemCreateInput) (*types.Item, error) {
	const op = "item.create"
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid(op, "name is required")
	}
	row := &types.Item{
		Name:   name,
		URL:    in.URL,
		Images: datatypes.JSONSlice[string](nonNil(in.Images)),
		Notes:  in.Notes,
	}
	err := dataagg.Write(dbc, s.deps, op, func(dbc dbctx.Context) error {
		existing, err := s.itemRepo.GetByName(dbc, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return domainagg.Conflict(op, msgItemNameTaken)
		}
		_, err = s.itemRepo.Create(dbc, []*types.Item{row})
		return err
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *itemService) Get(dbc dbctx.Context, id int) (*types.Item, error) {
	const op = "item.get"
	row, err := s.itemRepo.GetByID(dbc, id)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if row == nil {
		return nil, notFound(op, msgItemNotFound)
	}
	return row, nil
}

func (s *itemService) List(dbc dbctx.Context, page repos.Page) ([]*types.Item, error) {
	rows, err := s.itemRepo.List(dbc, page)
	if err != nil {
		return nil, storeErr("item.list", err)
	}
	return nonNil(rows), nil
}

func (s *itemService) ListNames(dbc dbctx.Context, page repos.Page) ([]types.RefInfo, error) {
	rows, err := s.List(dbc, page)
	if err != nil {
		return nil, err
	}
	out := make([]types.RefInfo, 0, len(rows))
	for _, r := range rows {
		out = append(out, types.RefInfo{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

func (s *itemService) Update(dbc dbctx.Context, id int, in ItemUpdateInput) (*types.Item, error) {
	const op = "item.update"
	if in.Name.Set && (in.Name.Null || strings.TrimSpace(in.Name.Value) == "") {
		return nil, invalid(op, "name cannot be empty")
	}
	updates := patch.Updates{}
	patch.PutWith(updates, "name", in.Name, trimmed)
	patch.Put(updates, "url", in.URL)
	patch.PutWith(updates, "images", in.Images, func(v []string) interface{} {
		return datatypes.JSONSlice[string](nonNil(v))
	})
	patch.Put(updates, "notes", in.Notes)

	var out *types.Item
	err := dataagg.Write(dbc, s.deps, op, func(dbc dbctx.Context) error {
		if in.Name.Set {
			existing, err := s.itemRepo.GetByName(dbc, strings.TrimSpace(in.Name.Value))
			if err != nil {
				return err
			}
			if existing != nil && existing.ID != id {
				return domainagg.Conflict(op, msgItemNameTaken)
			}
		}
		existed, err := s.itemRepo.UpdateFields(dbc, id, updates)
		if err != nil {
			return err
		}
		if !existed {
			return notFound(op, msgItemNotFound)
		}
		out, err = s.itemRepo.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *itemService) Delete(dbc dbctx.Context, id int) error {
	const op = "item.delete"
	n, err := s.itemRepo.DeleteByIDs(dbc, []int{id})
	if err != nil {
		return storeErr(op, err)
	}
	if n == 0 {
		return notFound(op, msgItemNotFound)
	}
	return nil
}
