package catalog

import "time"

// Subdataset is a named collection of recorded episodes.
type Subdataset struct {
	ID           int         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name         string      `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Description  *string     `gorm:"column:description" json:"description"`
	Notes        *string     `gorm:"column:notes" json:"notes"`
	EmbodimentID *int        `gorm:"column:embodiment_id;index" json:"embodiment_id"`
	Embodiment   *Embodiment `gorm:"constraint:OnDelete:SET NULL;foreignKey:EmbodimentID;references:ID" json:"-"`
	TeleopModeID *int        `gorm:"column:teleop_mode_id;index" json:"teleop_mode_id"`
	TeleopMode   *TeleopMode `gorm:"constraint:OnDelete:SET NULL;foreignKey:TeleopModeID;references:ID" json:"-"`
}

func (Subdataset) TableName() string { return "subdatasets" }

// TaskVariantSubdataset links a subdataset to the single variant it belongs to.
// The unique index on subdataset_id enforces that exclusivity.
type TaskVariantSubdataset struct {
	ID            int          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TaskVariantID int          `gorm:"column:task_variant_id;not null;index" json:"task_variant_id"`
	TaskVariant   *TaskVariant `gorm:"constraint:OnDelete:CASCADE;foreignKey:TaskVariantID;references:ID" json:"-"`
	SubdatasetID  int          `gorm:"column:subdataset_id;not null;uniqueIndex:idx_task_variants_to_subdatasets_subdataset" json:"subdataset_id"`
	Subdataset    *Subdataset  `gorm:"constraint:OnDelete:CASCADE;foreignKey:SubdatasetID;references:ID" json:"-"`
}

func (TaskVariantSubdataset) TableName() string { return "task_variants_to_subdatasets" }

// TaskSubdataset is the older task-level link, kept for data recorded before variants existed.
type TaskSubdataset struct {
	ID           int         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TaskID       int         `gorm:"column:task_id;not null;index" json:"task_id"`
	Task         *Task       `gorm:"constraint:OnDelete:CASCADE;foreignKey:TaskID;references:ID" json:"-"`
	SubdatasetID int         `gorm:"column:subdataset_id;not null;index" json:"subdataset_id"`
	Subdataset   *Subdataset `gorm:"constraint:OnDelete:CASCADE;foreignKey:SubdatasetID;references:ID" json:"-"`
}

func (TaskSubdataset) TableName() string { return "tasks_to_subdatasets" }

// RawEpisode is one teleoperated recording as it came off the rig.
type RawEpisode struct {
	ID           int         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SubdatasetID int         `gorm:"column:subdataset_id;not null;index" json:"subdataset_id"`
	Subdataset   *Subdataset `gorm:"constraint:OnDelete:CASCADE;foreignKey:SubdatasetID;references:ID" json:"-"`
	Operator     *string     `gorm:"column:operator" json:"operator"`
	URL          *string     `gorm:"column:url" json:"url"`
	Label        *string     `gorm:"column:label;index" json:"label"`
	Repository   *string     `gorm:"column:repository" json:"repository"`
	GitCommit    *string     `gorm:"column:git_commit" json:"git_commit"`
	RecordedAt   *time.Time  `gorm:"column:recorded_at" json:"recorded_at"`
	UploadedAt   time.Time   `gorm:"column:uploaded_at;not null;autoCreateTime" json:"uploaded_at"`
}

func (RawEpisode) TableName() string { return "raw_episodes" }

const (
	LabelGood = "good"
	LabelBad  = "bad"
)

// Episode is a raw episode after a conversion pipeline has processed it.
type Episode struct {
	ID                  int                       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SubdatasetID        *int                      `gorm:"column:subdataset_id;index" json:"subdataset_id"`
	Subdataset          *Subdataset               `gorm:"constraint:OnDelete:CASCADE;foreignKey:SubdatasetID;references:ID" json:"-"`
	RawEpisodeID        *int                      `gorm:"column:raw_episode_id;index" json:"raw_episode_id"`
	RawEpisode          *RawEpisode               `gorm:"constraint:OnDelete:CASCADE;foreignKey:RawEpisodeID;references:ID" json:"-"`
	ConversionVersionID *int                      `gorm:"column:conversion_version_id;index" json:"conversion_version_id"`
	ConversionVersion   *EpisodeConversionVersion `gorm:"constraint:OnDelete:CASCADE;foreignKey:ConversionVersionID;references:ID" json:"-"`
	URL                 *string                   `gorm:"column:url" json:"url"`
	UploadedAt          *time.Time                `gorm:"column:uploaded_at" json:"uploaded_at"`
}

func (Episode) TableName() string { return "episodes" }

type EpisodeConversionVersion struct {
	ID         int        `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Version    *string    `gorm:"column:version" json:"version"`
	Repository *string    `gorm:"column:repository" json:"repository"`
	GitCommit  *string    `gorm:"column:git_commit" json:"git_commit"`
	IsActive   *bool      `gorm:"column:is_active" json:"is_active"`
	IsMain     *bool      `gorm:"column:is_main" json:"is_main"`
	Notes      *string    `gorm:"column:notes" json:"notes"`
	CreatedAt  *time.Time `gorm:"column:created_at" json:"created_at"`
}

func (EpisodeConversionVersion) TableName() string { return "episode_conversion_versions" }

// EpisodeStats summarises raw-episode labels. Labels other than good/bad count
// toward Total only; matching is case-sensitive.
type EpisodeStats struct {
	Total int64 `json:"total"`
	Good  int64 `json:"good"`
	Bad   int64 `json:"bad"`
}

// Add folds one label group into the stats.
func (s *EpisodeStats) Add(label *string, n int64) {
	s.Total += n
	if label == nil {
		return
	}
	switch *label {
	case LabelGood:
		s.Good += n
	case LabelBad:
		s.Bad += n
	}
}
