package catalog

import "gorm.io/datatypes"

type Embodiment struct {
	ID          int     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Description *string `gorm:"column:description" json:"description"`
}

func (Embodiment) TableName() string { return "embodiments" }

type TeleopMode struct {
	ID          int     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Description *string `gorm:"column:description" json:"description"`
}

func (TeleopMode) TableName() string { return "teleop_modes" }

// Item is a physical object in the lab inventory.
type Item struct {
	ID     int                         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name   string                      `gorm:"column:name;not null;uniqueIndex" json:"name"`
	URL    *string                     `gorm:"column:url" json:"url"`
	Images datatypes.JSONSlice[string] `gorm:"column:images" json:"images"`
	Notes  *string                     `gorm:"column:notes" json:"notes"`
}

func (Item) TableName() string { return "items" }

type TrainingRun struct {
	ID        int     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	DatasetID *int    `gorm:"column:dataset_id;index" json:"dataset_id"`
	URL       *string `gorm:"column:url" json:"url"`
}

func (TrainingRun) TableName() string { return "training_runs" }

type TrainingRunTask struct {
	ID            int          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TrainingRunID int          `gorm:"column:training_run_id;not null;index" json:"training_run_id"`
	TrainingRun   *TrainingRun `gorm:"constraint:OnDelete:CASCADE;foreignKey:TrainingRunID;references:ID" json:"-"`
	TaskID        int          `gorm:"column:task_id;not null;index" json:"task_id"`
	Task          *Task        `gorm:"constraint:OnDelete:CASCADE;foreignKey:TaskID;references:ID" json:"-"`
}

func (TrainingRunTask) TableName() string { return "training_runs_to_tasks" }

// Evaluation records a policy evaluation against a task. Evaluations outlive the
// task they were run against.
type Evaluation struct {
	ID           int                         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TaskID       *int                        `gorm:"column:task_id;index" json:"task_id"`
	Task         *Task                       `gorm:"constraint:OnDelete:SET NULL;foreignKey:TaskID;references:ID" json:"-"`
	Name         *string                     `gorm:"column:name" json:"name"`
	Description  *string                     `gorm:"column:description" json:"description"`
	Media        datatypes.JSONSlice[string] `gorm:"column:media" json:"media"`
	Items        *string                     `gorm:"column:items" json:"items"`
	EmbodimentID *int                        `gorm:"column:embodiment_id" json:"embodiment_id"`
	Notes        *string                     `gorm:"column:notes" json:"notes"`
}

func (Evaluation) TableName() string { return "evaluations" }

// Models lists every table in migration order.
func Models() []interface{} {
	return []interface{}{
		&Embodiment{},
		&TeleopMode{},
		&Item{},
		&Task{},
		&TaskVariant{},
		&TaskVariantItem{},
		&Subdataset{},
		&TaskVariantSubdataset{},
		&TaskSubdataset{},
		&RawEpisode{},
		&EpisodeConversionVersion{},
		&Episode{},
		&TrainingRun{},
		&TrainingRunTask{},
		&Evaluation{},
	}
}
