package catalog

import "time"

// RefInfo is the {id, name} shape embodiments and teleop modes take inside
// other responses.
type RefInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func EmbodimentInfo(e *Embodiment) *RefInfo {
	if e == nil {
		return nil
	}
	return &RefInfo{ID: e.ID, Name: e.Name}
}

func TeleopModeInfo(m *TeleopMode) *RefInfo {
	if m == nil {
		return nil
	}
	return &RefInfo{ID: m.ID, Name: m.Name}
}

// TaskWithVariants is a task together with every variant it owns.
type TaskWithVariants struct {
	Task
	Variants []*TaskVariant `json:"variants"`
}

type VariantItemSummary struct {
	ItemID   int      `json:"item_id"`
	ItemName string   `json:"item_name"`
	Quantity int      `json:"quantity"`
	URL      *string  `json:"url"`
	Images   []string `json:"images"`
	Notes    *string  `json:"notes"`
}

// VariantSummary replaces the legacy free-text items column with the
// structured item links.
type VariantSummary struct {
	ID           int                  `json:"id"`
	TaskID       int                  `json:"task_id"`
	Name         string               `json:"name"`
	Description  *string              `json:"description"`
	EmbodimentID *int                 `json:"embodiment_id"`
	TeleopModeID *int                 `json:"teleop_mode_id"`
	Embodiment   *RefInfo             `json:"embodiment"`
	TeleopMode   *RefInfo             `json:"teleop_mode"`
	Notes        *string              `json:"notes"`
	Media        []string             `json:"media"`
	Items        []VariantItemSummary `json:"items"`
}

func NewVariantSummary(v *TaskVariant, items []VariantItemSummary) VariantSummary {
	if items == nil {
		items = []VariantItemSummary{}
	}
	media := []string(v.Media)
	if media == nil {
		media = []string{}
	}
	return VariantSummary{
		ID:           v.ID,
		TaskID:       v.TaskID,
		Name:         v.Name,
		Description:  v.Description,
		EmbodimentID: v.EmbodimentID,
		TeleopModeID: v.TeleopModeID,
		Embodiment:   EmbodimentInfo(v.Embodiment),
		TeleopMode:   TeleopModeInfo(v.TeleopMode),
		Notes:        v.Notes,
		Media:        media,
		Items:        items,
	}
}

type SubdatasetSummary struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Description  *string  `json:"description"`
	Notes        *string  `json:"notes"`
	EmbodimentID *int     `json:"embodiment_id"`
	TeleopModeID *int     `json:"teleop_mode_id"`
	Embodiment   *RefInfo `json:"embodiment"`
	TeleopMode   *RefInfo `json:"teleop_mode"`
}

func NewSubdatasetSummary(s *Subdataset) SubdatasetSummary {
	return SubdatasetSummary{
		ID:           s.ID,
		Name:         s.Name,
		Description:  s.Description,
		Notes:        s.Notes,
		EmbodimentID: s.EmbodimentID,
		TeleopModeID: s.TeleopModeID,
		Embodiment:   EmbodimentInfo(s.Embodiment),
		TeleopMode:   TeleopModeInfo(s.TeleopMode),
	}
}

// SubdatasetDetail adds the raw episodes and their label statistics.
type SubdatasetDetail struct {
	SubdatasetSummary
	RawEpisodes  []*RawEpisode `json:"raw_episodes"`
	EpisodeStats EpisodeStats  `json:"episode_stats"`
}

type VariantSubdatasets struct {
	Variant     VariantSummary      `json:"variant"`
	Subdatasets []SubdatasetSummary `json:"subdatasets"`
}

// TaskDetail is the task page: variants, their subdatasets, and the training
// runs and evaluations recorded against the task.
type TaskDetail struct {
	ID                   int                  `json:"id"`
	Name                 string               `json:"name"`
	Description          *string              `json:"description"`
	Status               string               `json:"status"`
	CreatedAt            time.Time            `json:"created_at"`
	IsExternal           bool                 `json:"is_external"`
	Variants             []VariantSummary     `json:"variants"`
	Subdatasets          []SubdatasetSummary  `json:"subdatasets"`
	SubdatasetsByVariant []VariantSubdatasets `json:"subdatasets_by_variant"`
	TrainingRuns         []*TrainingRun       `json:"training_runs"`
	Evaluations          []*Evaluation        `json:"evaluations"`
}

type ConversionVersionInfo struct {
	ID      int     `json:"id"`
	Version *string `json:"version"`
}

// ProcessedEpisode is an episode with its conversion version inlined.
type ProcessedEpisode struct {
	ID                  int                    `json:"id"`
	SubdatasetID        *int                   `json:"subdataset_id"`
	RawEpisodeID        *int                   `json:"raw_episode_id"`
	ConversionVersionID *int                   `json:"conversion_version_id"`
	URL                 *string                `json:"url"`
	UploadedAt          *time.Time             `json:"uploaded_at"`
	ConversionVersion   *ConversionVersionInfo `json:"conversion_version"`
}

func NewProcessedEpisode(e *Episode) ProcessedEpisode {
	out := ProcessedEpisode{
		ID:                  e.ID,
		SubdatasetID:        e.SubdatasetID,
		RawEpisodeID:        e.RawEpisodeID,
		ConversionVersionID: e.ConversionVersionID,
		URL:                 e.URL,
		UploadedAt:          e.UploadedAt,
	}
	if cv := e.ConversionVersion; cv != nil {
		out.ConversionVersion = &ConversionVersionInfo{ID: cv.ID, Version: cv.Version}
	}
	return out
}
