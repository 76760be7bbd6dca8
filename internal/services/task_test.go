package services

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mimichub-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/mimichub-backend/internal/domain/aggregates"
	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/pkg/patch"
)

func TestCreateTaskAddsDefaultVariant(t *testing.T) {
	f := newFixture(t)
	svc := f.taskService()

	got, err := svc.CreateTask(f.dbc, TaskCreateInput{Name: "  pick cube  "})
	require.NoError(t, err)
	assert.Equal(t, "pick cube", got.Name)
	assert.Equal(t, types.TaskStatusCreated, got.Status)
	require.Len(t, got.Variants, 1)
	assert.Equal(t, types.DefaultVariantName, got.Variants[0].Name)
	assert.Equal(t, got.ID, got.Variants[0].TaskID)
	assert.Equal(t, map[string]int{"success": 1}, f.hooks.StatusCounts("task.create"))

	reread, err := svc.GetTask(f.dbc, got.ID)
	require.NoError(t, err)
	require.Len(t, reread.Variants, 1)
}

func TestCreateTaskRequiresName(t *testing.T) {
	f := newFixture(t)
	_, err := f.taskService().CreateTask(f.dbc, TaskCreateInput{Name: "   "})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestUpdateTaskAppliesOnlyPresentFields(t *testing.T) {
	f := newFixture(t)
	svc := f.taskService()
	created, err := svc.CreateTask(f.dbc, TaskCreateInput{Name: "stack", Description: testutil.Ptr("two cups")})
	require.NoError(t, err)

	updated, err := svc.UpdateTask(f.dbc, created.ID, TaskUpdateInput{
		Status:      patch.Of("ready"),
		Description: patch.Null[string](),
	})
	require.NoError(t, err)
	assert.Equal(t, "stack", updated.Name)
	assert.Equal(t, "ready", updated.Status)
	assert.Nil(t, updated.Description)

	_, err = svc.UpdateTask(f.dbc, created.ID, TaskUpdateInput{Name: patch.Null[string]()})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "null name: %v", err)

	_, err = svc.UpdateTask(f.dbc, 9999, TaskUpdateInput{Status: patch.Of("ready")})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "missing task: %v", err)
	assert.Equal(t, msgTaskNotFound, domainagg.MessageOf(err))
}

func TestDeleteTaskCascadesToVariants(t *testing.T) {
	f := newFixture(t)
	svc := f.taskService()
	created, err := svc.CreateTask(f.dbc, TaskCreateInput{Name: "wipe"})
	require.NoError(t, err)
	variantID := created.Variants[0].ID

	require.NoError(t, svc.DeleteTask(f.dbc, created.ID))
	_, err = svc.GetVariant(f.dbc, variantID)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "variant after delete: %v", err)

	err = svc.DeleteTask(f.dbc, created.ID)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "second delete: %v", err)
}

func TestCreateVariantForMissingTask(t *testing.T) {
	f := newFixture(t)
	_, err := f.taskService().CreateVariant(f.dbc, 42, VariantCreateInput{Name: "left"})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("want not_found, got %v", err)
	}
	if got := f.hooks.StatusCounts("task_variant.create"); got["not_found"] != 1 {
		t.Fatalf("hook status counts: %v", got)
	}
}

func TestUpdateVariantMediaAndRefs(t *testing.T) {
	f := newFixture(t)
	svc := f.taskService()
	emb := testutil.SeedEmbodiment(t, f.db, "ur5")
	created, err := svc.CreateTask(f.dbc, TaskCreateInput{Name: "pour"})
	require.NoError(t, err)

	v, err := svc.UpdateVariant(f.dbc, created.Variants[0].ID, VariantUpdateInput{
		EmbodimentID: patch.Of(emb.ID),
		Media:        patch.Of([]string{"gs://b/1_1_start.jpg"}),
	})
	require.NoError(t, err)
	require.NotNil(t, v.EmbodimentID)
	assert.Equal(t, emb.ID, *v.EmbodimentID)
	assert.Equal(t, []string{"gs://b/1_1_start.jpg"}, []string(v.Media))

	summary, err := svc.GetVariant(f.dbc, v.ID)
	require.NoError(t, err)
	require.NotNil(t, summary.Embodiment)
	assert.Equal(t, "ur5", summary.Embodiment.Name)
	assert.Empty(t, summary.Items)
}

func TestVariantItemLinks(t *testing.T) {
	f := newFixture(t)
	svc := f.taskService()
	task := testutil.SeedTask(t, f.db, "set table")
	v := testutil.SeedVariant(t, f.db, task.ID, "default", nil, nil)
	fork := testutil.SeedItem(t, f.db, "fork", "gs://items/fork.jpg")

	summary, err := svc.AddVariantItem(f.dbc, v.ID, VariantItemInput{ItemID: fork.ID})
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 1, summary.Items[0].Quantity)
	assert.Equal(t, "fork", summary.Items[0].ItemName)
	assert.Equal(t, []string{"gs://items/fork.jpg"}, summary.Items[0].Images)

	summary, err = svc.AddVariantItem(f.dbc, v.ID, VariantItemInput{ItemID: fork.ID, Quantity: testutil.Ptr(3)})
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 3, summary.Items[0].Quantity)

	_, err = svc.AddVariantItem(f.dbc, v.ID, VariantItemInput{ItemID: fork.ID, Quantity: testutil.Ptr(0)})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "zero quantity: %v", err)

	_, err = svc.AddVariantItem(f.dbc, v.ID, VariantItemInput{ItemID: 777})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "missing item: %v", err)
	assert.Equal(t, msgItemNotFound, domainagg.MessageOf(err))

	require.NoError(t, svc.RemoveVariantItem(f.dbc, v.ID, fork.ID))
	err = svc.RemoveVariantItem(f.dbc, v.ID, fork.ID)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "second remove: %v", err)
}

func TestGetTaskDetailAssemblesVariantGroups(t *testing.T) {
	f := newFixture(t)
	svc := f.taskService()

	emb := testutil.SeedEmbodiment(t, f.db, "aloha")
	tele := testutil.SeedTeleopMode(t, f.db, "leader-follower")
	task := testutil.SeedTask(t, f.db, "fold towel")
	v1 := testutil.SeedVariant(t, f.db, task.ID, "default", nil, nil)
	v2 := testutil.SeedVariant(t, f.db, task.ID, "bimanual", &emb.ID, &tele.ID)
	towel := testutil.SeedItem(t, f.db, "towel")
	testutil.SeedVariantItem(t, f.db, v1.ID, towel.ID, 2)

	s1 := testutil.SeedSubdataset(t, f.db, "towel-a", nil, nil)
	s2 := testutil.SeedSubdataset(t, f.db, "towel-b", &emb.ID, nil)
	s3 := testutil.SeedSubdataset(t, f.db, "towel-c", nil, &tele.ID)
	testutil.SeedLink(t, f.db, v1.ID, s1.ID)
	testutil.SeedLink(t, f.db, v1.ID, s2.ID)
	testutil.SeedLink(t, f.db, v2.ID, s3.ID)

	runs, err := f.repos.Training.CreateRuns(f.dbc, []*types.TrainingRun{{URL: testutil.Ptr("wandb://run/1")}})
	require.NoError(t, err)
	require.NoError(t, f.repos.Training.LinkRunToTask(f.dbc, runs[0].ID, task.ID))
	_, err = f.repos.Training.CreateEvaluations(f.dbc, []*types.Evaluation{{TaskID: &task.ID, Name: testutil.Ptr("eval-1")}})
	require.NoError(t, err)

	detail, err := svc.GetTaskDetail(f.dbc, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "fold towel", detail.Name)
	require.Len(t, detail.Variants, 2)
	require.Len(t, detail.SubdatasetsByVariant, 2)
	assert.Len(t, detail.TrainingRuns, 1)
	assert.Len(t, detail.Evaluations, 1)

	groups := map[int][]int{}
	for _, g := range detail.SubdatasetsByVariant {
		for _, sd := range g.Subdatasets {
			groups[g.Variant.ID] = append(groups[g.Variant.ID], sd.ID)
		}
	}
	sort.Ints(groups[v1.ID])
	assert.Equal(t, []int{s1.ID, s2.ID}, groups[v1.ID])
	assert.Equal(t, []int{s3.ID}, groups[v2.ID])
	assert.Len(t, detail.Subdatasets, 3)

	for _, vs := range detail.Variants {
		switch vs.ID {
		case v1.ID:
			require.Len(t, vs.Items, 1)
			assert.Equal(t, 2, vs.Items[0].Quantity)
			assert.Nil(t, vs.Embodiment)
		case v2.ID:
			assert.Empty(t, vs.Items)
			require.NotNil(t, vs.Embodiment)
			require.NotNil(t, vs.TeleopMode)
			assert.Equal(t, "aloha", vs.Embodiment.Name)
			assert.Equal(t, "leader-follower", vs.TeleopMode.Name)
		default:
			t.Fatalf("unexpected variant %d", vs.ID)
		}
	}
}

func TestGetTaskDetailWithoutVariants(t *testing.T) {
	f := newFixture(t)
	task := testutil.SeedTask(t, f.db, "empty")

	detail, err := f.taskService().GetTaskDetail(f.dbc, task.ID)
	require.NoError(t, err)
	assert.NotNil(t, detail.Variants)
	assert.Empty(t, detail.Variants)
	assert.NotNil(t, detail.Subdatasets)
	assert.NotNil(t, detail.SubdatasetsByVariant)
	assert.NotNil(t, detail.TrainingRuns)
	assert.NotNil(t, detail.Evaluations)

	_, err = f.taskService().GetTaskDetail(f.dbc, 12345)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))
}
