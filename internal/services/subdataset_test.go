package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repos "github.com/yungbote/mimichub-backend/internal/data/repos/catalog"
	"github.com/yungbote/mimichub-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/mimichub-backend/internal/domain/aggregates"
	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/pkg/patch"
)

func TestCreateSubdatasetRejectsDuplicateName(t *testing.T) {
	f := newFixture(t)
	svc := f.subdatasetService()
	emb := testutil.SeedEmbodiment(t, f.db, "franka")

	created, err := svc.CreateSubdataset(f.dbc, SubdatasetCreateInput{Name: "pick-2024-05", EmbodimentID: &emb.ID})
	require.NoError(t, err)
	require.NotNil(t, created.Embodiment)
	assert.Equal(t, "franka", created.Embodiment.Name)
	assert.NotNil(t, created.RawEpisodes)
	assert.Equal(t, types.EpisodeStats{}, created.EpisodeStats)

	_, err = svc.CreateSubdataset(f.dbc, SubdatasetCreateInput{Name: "pick-2024-05"})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeConflict), "duplicate: %v", err)
	assert.Equal(t, []string{"subdataset.create"}, f.hooks.Conflicts)
}

func TestGetSubdatasetComputesEpisodeStats(t *testing.T) {
	f := newFixture(t)
	sd := testutil.SeedSubdataset(t, f.db, "s", nil, nil)
	testutil.SeedRawEpisode(t, f.db, sd.ID, testutil.Ptr(types.LabelGood))
	testutil.SeedRawEpisode(t, f.db, sd.ID, testutil.Ptr(types.LabelGood))
	testutil.SeedRawEpisode(t, f.db, sd.ID, testutil.Ptr(types.LabelBad))
	testutil.SeedRawEpisode(t, f.db, sd.ID, testutil.Ptr("Good"))
	testutil.SeedRawEpisode(t, f.db, sd.ID, nil)

	got, err := f.subdatasetService().GetSubdataset(f.dbc, sd.ID)
	require.NoError(t, err)
	assert.Len(t, got.RawEpisodes, 5)
	assert.Equal(t, types.EpisodeStats{Total: 5, Good: 2, Bad: 1}, got.EpisodeStats)

	list, err := f.subdatasetService().ListSubdatasets(f.dbc, repos.SubdatasetFilter{Page: repos.All})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, got.EpisodeStats, list[0].EpisodeStats)

	_, err = f.subdatasetService().GetSubdataset(f.dbc, 999)
	assert.Equal(t, msgSubdatasetNotFound, domainagg.MessageOf(err))
}

func TestUpdateSubdatasetClearsReference(t *testing.T) {
	f := newFixture(t)
	emb := testutil.SeedEmbodiment(t, f.db, "so100")
	sd := testutil.SeedSubdataset(t, f.db, "s", &emb.ID, nil)
	svc := f.subdatasetService()

	got, err := svc.UpdateSubdataset(f.dbc, sd.ID, SubdatasetUpdateInput{
		EmbodimentID: patch.Null[int](),
		Notes:        patch.Of("re-recorded"),
	})
	require.NoError(t, err)
	assert.Nil(t, got.EmbodimentID)
	assert.Nil(t, got.Embodiment)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "re-recorded", *got.Notes)

	_, err = svc.UpdateSubdataset(f.dbc, 404, SubdatasetUpdateInput{Notes: patch.Of("x")})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))
}

func TestLinkTaskVariantIsExclusive(t *testing.T) {
	f := newFixture(t)
	svc := f.subdatasetService()
	task := testutil.SeedTask(t, f.db, "t")
	v1 := testutil.SeedVariant(t, f.db, task.ID, "a", nil, nil)
	v2 := testutil.SeedVariant(t, f.db, task.ID, "b", nil, nil)
	sd := testutil.SeedSubdataset(t, f.db, "s", nil, nil)

	link, err := svc.LinkTaskVariant(f.dbc, sd.ID, v1.ID)
	require.NoError(t, err)
	assert.Equal(t, v1.ID, link.TaskVariantID)

	_, err = svc.LinkTaskVariant(f.dbc, sd.ID, v2.ID)
	require.Error(t, err)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeConflict))
	assert.Equal(t, msgAlreadyLinked, domainagg.MessageOf(err))

	_, err = svc.LinkTaskVariant(f.dbc, sd.ID, v1.ID)
	assert.Equal(t, msgAlreadyLinked, domainagg.MessageOf(err))
	assert.Equal(t, map[string]int{"success": 1, "conflict": 2}, f.hooks.StatusCounts("subdataset.link_task_variant"))

	require.NoError(t, svc.UnlinkTaskVariant(f.dbc, sd.ID, v1.ID))
	_, err = svc.LinkTaskVariant(f.dbc, sd.ID, v2.ID)
	require.NoError(t, err)
}

func TestLinkTaskVariantMissingRows(t *testing.T) {
	f := newFixture(t)
	svc := f.subdatasetService()
	sd := testutil.SeedSubdataset(t, f.db, "s", nil, nil)

	_, err := svc.LinkTaskVariant(f.dbc, sd.ID, 55)
	assert.Equal(t, msgVariantNotFound, domainagg.MessageOf(err))
	_, err = svc.LinkTaskVariant(f.dbc, 55, 1)
	assert.Equal(t, msgSubdatasetNotFound, domainagg.MessageOf(err))
	_, err = svc.LinkTaskVariant(f.dbc, sd.ID, 0)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation))

	err = svc.UnlinkTaskVariant(f.dbc, sd.ID, 55)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))
}

func TestLinkedTasksUnionsBothJunctions(t *testing.T) {
	f := newFixture(t)
	svc := f.subdatasetService()
	viaVariant := testutil.SeedTask(t, f.db, "via variant")
	linked := testutil.SeedVariant(t, f.db, viaVariant.ID, "linked", nil, nil)
	testutil.SeedVariant(t, f.db, viaVariant.ID, "other", nil, nil)
	legacy := testutil.SeedTask(t, f.db, "legacy")
	testutil.SeedTask(t, f.db, "unrelated")
	sd := testutil.SeedSubdataset(t, f.db, "s", nil, nil)

	testutil.SeedLink(t, f.db, linked.ID, sd.ID)
	require.NoError(t, f.repos.Links.CreateTaskLink(f.dbc, &types.TaskSubdataset{TaskID: legacy.ID, SubdatasetID: sd.ID}))

	got, err := svc.LinkedTasks(f.dbc, sd.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, viaVariant.ID, got[0].ID)
	require.Len(t, got[0].Variants, 1)
	assert.Equal(t, linked.ID, got[0].Variants[0].ID)
	assert.Equal(t, legacy.ID, got[1].ID)
	assert.NotNil(t, got[1].Variants)
	assert.Empty(t, got[1].Variants)
}

func TestProcessedEpisodes(t *testing.T) {
	f := newFixture(t)
	svc := f.subdatasetService()
	sd := testutil.SeedSubdataset(t, f.db, "s", nil, nil)
	raw := testutil.SeedRawEpisode(t, f.db, sd.ID, nil)

	versions, err := f.repos.Episodes.CreateConversionVersions(f.dbc, []*types.EpisodeConversionVersion{{Version: testutil.Ptr("v2")}})
	require.NoError(t, err)
	_, err = f.repos.Episodes.Create(f.dbc, []*types.Episode{
		{SubdatasetID: &sd.ID, RawEpisodeID: &raw.ID, ConversionVersionID: &versions[0].ID, URL: testutil.Ptr("gs://e/1")},
		{SubdatasetID: &sd.ID, RawEpisodeID: &raw.ID, URL: testutil.Ptr("gs://e/2")},
	})
	require.NoError(t, err)

	got, err := svc.ProcessedEpisodes(f.dbc, sd.ID, repos.All)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].ConversionVersion)
	require.NotNil(t, got[0].ConversionVersion.Version)
	assert.Equal(t, "v2", *got[0].ConversionVersion.Version)
	assert.Nil(t, got[1].ConversionVersion)

	page, err := svc.ProcessedEpisodes(f.dbc, sd.ID, repos.Page{Skip: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page, 1)

	_, err = svc.ProcessedEpisodes(f.dbc, 999, repos.All)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))
}

func TestDeleteSubdataset(t *testing.T) {
	f := newFixture(t)
	svc := f.subdatasetService()
	sd := testutil.SeedSubdataset(t, f.db, "s", nil, nil)
	testutil.SeedRawEpisode(t, f.db, sd.ID, nil)

	require.NoError(t, svc.DeleteSubdataset(f.dbc, sd.ID))
	err := svc.DeleteSubdataset(f.dbc, sd.ID)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))
}
