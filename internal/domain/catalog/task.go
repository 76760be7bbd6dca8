package catalog

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TaskStatusCreated = "created"

	// DefaultVariantName is the variant every new task gets.
	DefaultVariantName = "default"
)

type Task struct {
	ID          int       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description *string   `gorm:"column:description" json:"description"`
	Status      string    `gorm:"column:status;not null;default:created;index" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
	IsExternal  bool      `gorm:"column:is_external;not null;default:false" json:"is_external"`
}

func (Task) TableName() string { return "tasks" }

// TaskVariant is a concrete configuration of a task. Items is the legacy
// free-text description of required objects; structured links live in
// TaskVariantItem.
type TaskVariant struct {
	ID           int                         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TaskID       int                         `gorm:"column:task_id;not null;index" json:"task_id"`
	Task         *Task                       `gorm:"constraint:OnDelete:CASCADE;foreignKey:TaskID;references:ID" json:"-"`
	Name         string                      `gorm:"column:name;not null" json:"name"`
	Description  *string                     `gorm:"column:description" json:"description"`
	Items        *string                     `gorm:"column:items" json:"items"`
	EmbodimentID *int                        `gorm:"column:embodiment_id;index" json:"embodiment_id"`
	Embodiment   *Embodiment                 `gorm:"constraint:OnDelete:SET NULL;foreignKey:EmbodimentID;references:ID" json:"-"`
	TeleopModeID *int                        `gorm:"column:teleop_mode_id;index" json:"teleop_mode_id"`
	TeleopMode   *TeleopMode                 `gorm:"constraint:OnDelete:SET NULL;foreignKey:TeleopModeID;references:ID" json:"-"`
	Notes        *string                     `gorm:"column:notes" json:"notes"`
	Media        datatypes.JSONSlice[string] `gorm:"column:media" json:"media"`
}

func (TaskVariant) TableName() string { return "task_variants" }

// TaskVariantItem attaches an inventory item to a variant with a quantity.
type TaskVariantItem struct {
	TaskVariantID int          `gorm:"column:task_variant_id;primaryKey;autoIncrement:false" json:"task_variant_id"`
	TaskVariant   *TaskVariant `gorm:"constraint:OnDelete:CASCADE;foreignKey:TaskVariantID;references:ID" json:"-"`
	ItemID        int          `gorm:"column:item_id;primaryKey;autoIncrement:false;index" json:"item_id"`
	Item          *Item        `gorm:"constraint:OnDelete:CASCADE;foreignKey:ItemID;references:ID" json:"-"`
	Quantity      int          `gorm:"column:quantity;not null;default:1" json:"quantity"`
}

func (TaskVariantItem) TableName() string { return "task_variant_to_items" }
