package catalog

import (
	"context"
	"testing"

	"github.com/yungbote/mimichub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
)

func TestTaskRepo(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewTaskRepo(db, testutil.Logger(t))

	created, err := repo.Create(dbc, []*types.Task{
		{Name: "pick cube", Status: types.TaskStatusCreated},
		{Name: "stack cups", Status: "ready", IsExternal: true},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created[0].ID == 0 || created[1].ID == 0 {
		t.Fatalf("Create did not assign ids: %+v", created)
	}

	got, err := repo.GetByID(dbc, created[0].ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: err=%v got=%v", err, got)
	}
	if got.Status != types.TaskStatusCreated || got.IsExternal {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("created_at not set")
	}

	missing, err := repo.GetByID(dbc, 9999)
	if err != nil || missing != nil {
		t.Fatalf("GetByID(missing): err=%v got=%v", err, missing)
	}

	ready := "ready"
	rows, err := repo.List(dbc, TaskFilter{Status: &ready, Page: All})
	if err != nil || len(rows) != 1 || rows[0].Name != "stack cups" {
		t.Fatalf("List(status): err=%v rows=%v", err, rows)
	}
	external := false
	rows, err = repo.List(dbc, TaskFilter{IsExternal: &external, Page: All})
	if err != nil || len(rows) != 1 || rows[0].Name != "pick cube" {
		t.Fatalf("List(is_external): err=%v rows=%v", err, rows)
	}
	rows, err = repo.List(dbc, TaskFilter{Page: Page{Skip: 1, Limit: 10}})
	if err != nil || len(rows) != 1 || rows[0].ID != created[1].ID {
		t.Fatalf("List(page): err=%v rows=%v", err, rows)
	}

	ok, err := repo.UpdateFields(dbc, created[0].ID, map[string]interface{}{"description": "fast", "status": "ready"})
	if err != nil || !ok {
		t.Fatalf("UpdateFields: ok=%v err=%v", ok, err)
	}
	got, _ = repo.GetByID(dbc, created[0].ID)
	if got.Description == nil || *got.Description != "fast" || got.Status != "ready" || got.Name != "pick cube" {
		t.Fatalf("after UpdateFields: %+v", got)
	}
	ok, err = repo.UpdateFields(dbc, 9999, map[string]interface{}{"status": "x"})
	if err != nil || ok {
		t.Fatalf("UpdateFields(missing): ok=%v err=%v", ok, err)
	}

	n, err := repo.DeleteByIDs(dbc, []int{created[0].ID})
	if err != nil || n != 1 {
		t.Fatalf("DeleteByIDs: n=%d err=%v", n, err)
	}
	count, _ := repo.Count(dbc)
	if count != 1 {
		t.Fatalf("Count after delete: %d", count)
	}
}

func TestTaskDeleteCascadesToVariantsAndLinks(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	tasks := NewTaskRepo(db, testutil.Logger(t))
	variants := NewTaskVariantRepo(db, testutil.Logger(t))
	links := NewSubdatasetLinkRepo(db, testutil.Logger(t))

	task := testutil.SeedTask(t, db, "wipe table")
	v := testutil.SeedVariant(t, db, task.ID, "default", nil, nil)
	sd := testutil.SeedSubdataset(t, db, "wipe-01", nil, nil)
	testutil.SeedLink(t, db, v.ID, sd.ID)
	item := testutil.SeedItem(t, db, "sponge")
	testutil.SeedVariantItem(t, db, v.ID, item.ID, 2)

	if _, err := tasks.DeleteByIDs(dbc, []int{task.ID}); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	if got, _ := variants.GetByID(dbc, v.ID); got != nil {
		t.Fatalf("variant survived task delete")
	}
	if link, _ := links.GetBySubdatasetID(dbc, sd.ID); link != nil {
		t.Fatalf("link survived task delete")
	}
	var remaining int64
	db.Model(&types.TaskVariantItem{}).Count(&remaining)
	if remaining != 0 {
		t.Fatalf("variant items survived task delete: %d", remaining)
	}
	var items int64
	db.Model(&types.Item{}).Count(&items)
	if items != 1 {
		t.Fatalf("item must outlive the variant")
	}
}
