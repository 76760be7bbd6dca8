package testutil

import (
	"testing"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
)

func SeedTask(tb testing.TB, gdb *gorm.DB, name string) *types.Task {
	tb.Helper()
	t := &types.Task{Name: name, Status: types.TaskStatusCreated}
	if err := gdb.Create(t).Error; err != nil {
		tb.Fatalf("seed task: %v", err)
	}
	return t
}

func SeedVariant(tb testing.TB, gdb *gorm.DB, taskID int, name string, embodimentID, teleopModeID *int) *types.TaskVariant {
	tb.Helper()
	v := &types.TaskVariant{
		TaskID:       taskID,
		Name:         name,
		EmbodimentID: embodimentID,
		TeleopModeID: teleopModeID,
	}
	if err := gdb.Create(v).Error; err != nil {
		tb.Fatalf("seed variant: %v", err)
	}
	return v
}

func SeedEmbodiment(tb testing.TB, gdb *gorm.DB, name string) *types.Embodiment {
	tb.Helper()
	e := &types.Embodiment{Name: name}
	if err := gdb.Create(e).Error; err != nil {
		tb.Fatalf("seed embodiment: %v", err)
	}
	return e
}

func SeedTeleopMode(tb testing.TB, gdb *gorm.DB, name string) *types.TeleopMode {
	tb.Helper()
	m := &types.TeleopMode{Name: name}
	if err := gdb.Create(m).Error; err != nil {
		tb.Fatalf("seed teleop mode: %v", err)
	}
	return m
}

func SeedSubdataset(tb testing.TB, gdb *gorm.DB, name string, embodimentID, teleopModeID *int) *types.Subdataset {
	tb.Helper()
	s := &types.Subdataset{Name: name, EmbodimentID: embodimentID, TeleopModeID: teleopModeID}
	if err := gdb.Create(s).Error; err != nil {
		tb.Fatalf("seed subdataset: %v", err)
	}
	return s
}

func SeedLink(tb testing.TB, gdb *gorm.DB, variantID, subdatasetID int) *types.TaskVariantSubdataset {
	tb.Helper()
	l := &types.TaskVariantSubdataset{TaskVariantID: variantID, SubdatasetID: subdatasetID}
	if err := gdb.Create(l).Error; err != nil {
		tb.Fatalf("seed link: %v", err)
	}
	return l
}

func SeedRawEpisode(tb testing.TB, gdb *gorm.DB, subdatasetID int, label *string) *types.RawEpisode {
	tb.Helper()
	recorded := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e := &types.RawEpisode{
		SubdatasetID: subdatasetID,
		Label:        label,
		Operator:     Ptr("op-1"),
		URL:          Ptr("gs://episodes/raw.mcap"),
		RecordedAt:   &recorded,
	}
	if err := gdb.Create(e).Error; err != nil {
		tb.Fatalf("seed raw episode: %v", err)
	}
	return e
}

func SeedItem(tb testing.TB, gdb *gorm.DB, name string, images ...string) *types.Item {
	tb.Helper()
	it := &types.Item{Name: name, Images: images}
	if err := gdb.Create(it).Error; err != nil {
		tb.Fatalf("seed item: %v", err)
	}
	return it
}

func SeedVariantItem(tb testing.TB, gdb *gorm.DB, variantID, itemID, quantity int) {
	tb.Helper()
	if err := gdb.Create(&types.TaskVariantItem{TaskVariantID: variantID, ItemID: itemID, Quantity: quantity}).Error; err != nil {
		tb.Fatalf("seed variant item: %v", err)
	}
}
