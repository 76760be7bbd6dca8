package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	dataagg "github.com/yungbote/mimichub-backend/internal/data/aggregates"
	datarepos "github.com/yungbote/mimichub-backend/internal/data/repos"
	repos "github.com/yungbote/mimichub-backend/internal/data/repos/catalog"
	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/platform/cache"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

// SeedFile is the YAML layout accepted by `mimichub seed`. References between
// sections are by name.
type SeedFile struct {
	Embodiments []SeedRef        `yaml:"embodiments"`
	TeleopModes []SeedRef        `yaml:"teleop_modes"`
	Items       []SeedItem       `yaml:"items"`
	Tasks       []SeedTask       `yaml:"tasks"`
	Subdatasets []SeedSubdataset `yaml:"subdatasets"`
}

type SeedRef struct {
	Name        string  `yaml:"name"`
	Description *string `yaml:"description"`
}

type SeedItem struct {
	Name   string   `yaml:"name"`
	URL    *string  `yaml:"url"`
	Images []string `yaml:"images"`
	Notes  *string  `yaml:"notes"`
}

type SeedTask struct {
	Name        string        `yaml:"name"`
	Description *string       `yaml:"description"`
	Status      string        `yaml:"status"`
	IsExternal  bool          `yaml:"is_external"`
	Variants    []SeedVariant `yaml:"variants"`
}

type SeedVariant struct {
	Name        string            `yaml:"name"`
	Description *string           `yaml:"description"`
	Embodiment  string            `yaml:"embodiment"`
	TeleopMode  string            `yaml:"teleop_mode"`
	Notes       *string           `yaml:"notes"`
	Media       []string          `yaml:"media"`
	Items       []SeedVariantItem `yaml:"items"`
}

type SeedVariantItem struct {
	Name     string `yaml:"name"`
	Quantity int    `yaml:"quantity"`
}

type SeedSubdataset struct {
	Name        string  `yaml:"name"`
	Description *string `yaml:"description"`
	Embodiment  string  `yaml:"embodiment"`
	TeleopMode  string  `yaml:"teleop_mode"`
	Task        string  `yaml:"task"`
	Variant     string  `yaml:"variant"`
}

// SeedReport counts the rows a seed run created. Rows that already existed by
// name are skipped and not counted.
type SeedReport struct {
	Embodiments int `json:"embodiments"`
	TeleopModes int `json:"teleop_modes"`
	Items       int `json:"items"`
	Tasks       int `json:"tasks"`
	Variants    int `json:"variants"`
	Subdatasets int `json:"subdatasets"`
}

func ParseSeedFile(r io.Reader) (*SeedFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f SeedFile
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

type Seeder struct {
	log            *logger.Logger
	deps           dataagg.Deps
	store          cache.Store
	embodimentRepo repos.EmbodimentRepo
	teleopRepo     repos.TeleopModeRepo
	itemRepo       repos.ItemRepo
	taskRepo       repos.TaskRepo
	variantRepo    repos.TaskVariantRepo
	variantItems   repos.TaskVariantItemRepo
	subdatasetRepo repos.SubdatasetRepo
	linkRepo       repos.SubdatasetLinkRepo
}

func NewSeeder(db *gorm.DB, log *logger.Logger, store cache.Store, r *datarepos.Catalog) *Seeder {
	return &Seeder{
		log:            log.With("service", "Seeder"),
		deps:           dataagg.Deps{DB: db},
		store:          store,
		embodimentRepo: r.Embodiments,
		teleopRepo:     r.TeleopModes,
		itemRepo:       r.Items,
		taskRepo:       r.Tasks,
		variantRepo:    r.Variants,
		variantItems:   r.VariantItems,
		subdatasetRepo: r.Subdatasets,
		linkRepo:       r.Links,
	}
}

// Apply loads the file in one transaction. Any unresolved reference aborts the
// whole run.
func (s *Seeder) Apply(dbc dbctx.Context, f *SeedFile) (SeedReport, error) {
	var rep SeedReport
	err := dataagg.Write(dbc, s.deps, "seed.apply", func(dbc dbctx.Context) error {
		rep = SeedReport{}
		embodiments, err := s.seedEmbodiments(dbc, f.Embodiments, &rep)
		if err != nil {
			return err
		}
		teleops, err := s.seedTeleopModes(dbc, f.TeleopModes, &rep)
		if err != nil {
			return err
		}
		items, err := s.seedItems(dbc, f.Items, &rep)
		if err != nil {
			return err
		}
		variants, err := s.seedTasks(dbc, f.Tasks, embodiments, teleops, items, &rep)
		if err != nil {
			return err
		}
		return s.seedSubdatasets(dbc, f.Subdatasets, embodiments, teleops, variants, &rep)
	})
	if err != nil {
		return SeedReport{}, err
	}
	if s.store != nil {
		ctx := dbc.Ctx
		if ctx == nil {
			ctx = context.Background()
		}
		if err := s.store.Delete(ctx, embodimentsCacheKey, teleopModesCacheKey); err != nil {
			s.log.Warn("cache invalidate failed", "error", err)
		}
	}
	s.log.Info("seed applied", "report", rep)
	return rep, nil
}

func (s *Seeder) seedEmbodiments(dbc dbctx.Context, in []SeedRef, rep *SeedReport) (map[string]int, error) {
	rows, err := s.embodimentRepo.List(dbc, repos.All)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int, len(rows)+len(in))
	for _, r := range rows {
		ids[r.Name] = r.ID
	}
	for _, ref := range in {
		name := strings.TrimSpace(ref.Name)
		if name == "" {
			return nil, invalid("seed.embodiments", "embodiment name is required")
		}
		if _, ok := ids[name]; ok {
			continue
		}
		row := &types.Embodiment{Name: name, Description: ref.Description}
		if _, err := s.embodimentRepo.Create(dbc, []*types.Embodiment{row}); err != nil {
			return nil, err
		}
		ids[name] = row.ID
		rep.Embodiments++
	}
	return ids, nil
}

func (s *Seeder) seedTeleopModes(dbc dbctx.Context, in []SeedRef, rep *SeedReport) (map[string]int, error) {
	rows, err := s.teleopRepo.List(dbc, repos.All)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int, len(rows)+len(in))
	for _, r := range rows {
		ids[r.Name] = r.ID
	}
	for _, ref := range in {
		name := strings.TrimSpace(ref.Name)
		if name == "" {
			return nil, invalid("seed.teleop_modes", "teleop mode name is required")
		}
		if _, ok := ids[name]; ok {
			continue
		}
		row := &types.TeleopMode{Name: name, Description: ref.Description}
		if _, err := s.teleopRepo.Create(dbc, []*types.TeleopMode{row}); err != nil {
			return nil, err
		}
		ids[name] = row.ID
		rep.TeleopModes++
	}
	return ids, nil
}

func (s *Seeder) seedItems(dbc dbctx.Context, in []SeedItem, rep *SeedReport) (map[string]int, error) {
	rows, err := s.itemRepo.List(dbc, repos.All)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int, len(rows)+len(in))
	for _, r := range rows {
		ids[r.Name] = r.ID
	}
	for _, it := range in {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			return nil, invalid("seed.items", "item name is required")
		}
		if _, ok := ids[name]; ok {
			continue
		}
		row := &types.Item{Name: name, URL: it.URL, Images: datatypes.JSONSlice[string](nonNil(it.Images)), Notes: it.Notes}
		if _, err := s.itemRepo.Create(dbc, []*types.Item{row}); err != nil {
			return nil, err
		}
		ids[name] = row.ID
		rep.Items++
	}
	return ids, nil
}

// lookupRef resolves an optional by-name reference.
func lookupRef(op, kind, name string, ids map[string]int) (*int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	id, ok := ids[name]
	if !ok {
		return nil, invalid(op, fmt.Sprintf("unknown %s %q", kind, name))
	}
	return &id, nil
}

// seedTasks returns the variant ids keyed by "task/variant".
func (s *Seeder) seedTasks(
	dbc dbctx.Context,
	in []SeedTask,
	embodiments, teleops, items map[string]int,
	rep *SeedReport,
) (map[string]int, error) {
	const op = "seed.tasks"
	existing, err := s.taskRepo.List(dbc, repos.TaskFilter{Page: repos.All})
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(existing))
	for _, t := range existing {
		taken[t.Name] = true
	}

	variantIDs := make(map[string]int)
	for _, st := range in {
		name := strings.TrimSpace(st.Name)
		if name == "" {
			return nil, invalid(op, "task name is required")
		}
		if taken[name] {
			s.log.Debug("seed task exists, skipping", "task", name)
			continue
		}
		status := strings.TrimSpace(st.Status)
		if status == "" {
			status = types.TaskStatusCreated
		}
		task := &types.Task{Name: name, Description: st.Description, Status: status, IsExternal: st.IsExternal}
		if _, err := s.taskRepo.Create(dbc, []*types.Task{task}); err != nil {
			return nil, err
		}
		taken[name] = true
		rep.Tasks++

		specs := st.Variants
		if len(specs) == 0 {
			specs = []SeedVariant{{Name: types.DefaultVariantName}}
		}
		for _, sv := range specs {
			embodimentID, err := lookupRef(op, "embodiment", sv.Embodiment, embodiments)
			if err != nil {
				return nil, err
			}
			teleopID, err := lookupRef(op, "teleop mode", sv.TeleopMode, teleops)
			if err != nil {
				return nil, err
			}
			vname := strings.TrimSpace(sv.Name)
			if vname == "" {
				vname = types.DefaultVariantName
			}
			v := &types.TaskVariant{
				TaskID:       task.ID,
				Name:         vname,
				Description:  sv.Description,
				EmbodimentID: embodimentID,
				TeleopModeID: teleopID,
				Notes:        sv.Notes,
				Media:        datatypes.JSONSlice[string](nonNil(sv.Media)),
			}
			if _, err := s.variantRepo.Create(dbc, []*types.TaskVariant{v}); err != nil {
				return nil, err
			}
			variantIDs[name+"/"+vname] = v.ID
			rep.Variants++

			for _, vi := range sv.Items {
				itemID, err := lookupRef(op, "item", vi.Name, items)
				if err != nil {
					return nil, err
				}
				if itemID == nil {
					return nil, invalid(op, "variant item name is required")
				}
				qty := vi.Quantity
				if qty <= 0 {
					qty = 1
				}
				link := &types.TaskVariantItem{TaskVariantID: v.ID, ItemID: *itemID, Quantity: qty}
				if err := s.variantItems.Upsert(dbc, link); err != nil {
					return nil, err
				}
			}
		}
	}
	return variantIDs, nil
}

func (s *Seeder) seedSubdatasets(
	dbc dbctx.Context,
	in []SeedSubdataset,
	embodiments, teleops, variants map[string]int,
	rep *SeedReport,
) error {
	const op = "seed.subdatasets"
	for _, sd := range in {
		name := strings.TrimSpace(sd.Name)
		if name == "" {
			return invalid(op, "subdataset name is required")
		}
		existing, err := s.subdatasetRepo.GetByName(dbc, name)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		embodimentID, err := lookupRef(op, "embodiment", sd.Embodiment, embodiments)
		if err != nil {
			return err
		}
		teleopID, err := lookupRef(op, "teleop mode", sd.TeleopMode, teleops)
		if err != nil {
			return err
		}
		row := &types.Subdataset{Name: name, Description: sd.Description, EmbodimentID: embodimentID, TeleopModeID: teleopID}
		if _, err := s.subdatasetRepo.Create(dbc, []*types.Subdataset{row}); err != nil {
			return err
		}
		rep.Subdatasets++

		if strings.TrimSpace(sd.Task) == "" {
			continue
		}
		vname := strings.TrimSpace(sd.Variant)
		if vname == "" {
			vname = types.DefaultVariantName
		}
		key := strings.TrimSpace(sd.Task) + "/" + vname
		variantID, ok := variants[key]
		if !ok {
			return invalid(op, fmt.Sprintf("unknown task variant %q", key))
		}
		if err := s.linkRepo.Create(dbc, &types.TaskVariantSubdataset{TaskVariantID: variantID, SubdatasetID: row.ID}); err != nil {
			return err
		}
	}
	return nil
}
