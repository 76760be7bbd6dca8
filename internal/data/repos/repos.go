package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/mimichub-backend/internal/data/repos/catalog"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

type TaskRepo = catalog.TaskRepo
type TaskVariantRepo = catalog.TaskVariantRepo
type TaskVariantItemRepo = catalog.TaskVariantItemRepo
type SubdatasetRepo = catalog.SubdatasetRepo
type SubdatasetLinkRepo = catalog.SubdatasetLinkRepo
type RawEpisodeRepo = catalog.RawEpisodeRepo
type EpisodeRepo = catalog.EpisodeRepo
type ItemRepo = catalog.ItemRepo
type EmbodimentRepo = catalog.EmbodimentRepo
type TeleopModeRepo = catalog.TeleopModeRepo
type TrainingRepo = catalog.TrainingRepo

// Catalog bundles every catalogue repository over one database handle.
type Catalog struct {
	Tasks        TaskRepo
	Variants     TaskVariantRepo
	VariantItems TaskVariantItemRepo
	Subdatasets  SubdatasetRepo
	Links        SubdatasetLinkRepo
	RawEpisodes  RawEpisodeRepo
	Episodes     EpisodeRepo
	Items        ItemRepo
	Embodiments  EmbodimentRepo
	TeleopModes  TeleopModeRepo
	Training     TrainingRepo
}

func NewCatalog(db *gorm.DB, baseLog *logger.Logger) *Catalog {
	return &Catalog{
		Tasks:        catalog.NewTaskRepo(db, baseLog),
		Variants:     catalog.NewTaskVariantRepo(db, baseLog),
		VariantItems: catalog.NewTaskVariantItemRepo(db, baseLog),
		Subdatasets:  catalog.NewSubdatasetRepo(db, baseLog),
		Links:        catalog.NewSubdatasetLinkRepo(db, baseLog),
		RawEpisodes:  catalog.NewRawEpisodeRepo(db, baseLog),
		Episodes:     catalog.NewEpisodeRepo(db, baseLog),
		Items:        catalog.NewItemRepo(db, baseLog),
		Embodiments:  catalog.NewEmbodimentRepo(db, baseLog),
		TeleopModes:  catalog.NewTeleopModeRepo(db, baseLog),
		Training:     catalog.NewTrainingRepo(db, baseLog),
	}
}
