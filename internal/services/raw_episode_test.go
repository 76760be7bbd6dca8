package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repos "github.com/yungbote/mimichub-backend/internal/data/repos/catalog"
	"github.com/yungbote/mimichub-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/mimichub-backend/internal/domain/aggregates"
	"github.com/yungbote/mimichub-backend/internal/pkg/patch"
)

func TestRawEpisodeScopeMismatchIsNotFound(t *testing.T) {
	f := newFixture(t)
	svc := f.rawEpisodeService()
	a := testutil.SeedSubdataset(t, f.db, "a", nil, nil)
	b := testutil.SeedSubdataset(t, f.db, "b", nil, nil)
	ep := testutil.SeedRawEpisode(t, f.db, a.ID, nil)

	got, err := svc.Get(f.dbc, &a.ID, ep.ID)
	require.NoError(t, err)
	assert.Equal(t, ep.ID, got.ID)

	_, err = svc.Get(f.dbc, &b.ID, ep.ID)
	assert.Equal(t, msgRawEpisodeNotFound, domainagg.MessageOf(err))

	_, err = svc.Update(f.dbc, &b.ID, ep.ID, RawEpisodeUpdateInput{Label: patch.Of("good")})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))

	err = svc.Delete(f.dbc, &b.ID, ep.ID)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))

	missing := 999
	_, err = svc.Get(f.dbc, &missing, ep.ID)
	assert.Equal(t, msgSubdatasetNotFound, domainagg.MessageOf(err))

	// the global routes carry no scope
	got, err = svc.Get(f.dbc, nil, ep.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.SubdatasetID)
}

func TestRawEpisodeLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := f.rawEpisodeService()
	sd := testutil.SeedSubdataset(t, f.db, "s", nil, nil)
	recorded := time.Date(2024, 6, 2, 9, 30, 0, 0, time.UTC)

	created, err := svc.Create(f.dbc, RawEpisodeCreateInput{
		SubdatasetID: sd.ID,
		Operator:     testutil.Ptr("alice"),
		Label:        testutil.Ptr("bad"),
		RecordedAt:   &recorded,
	})
	require.NoError(t, err)
	assert.False(t, created.UploadedAt.IsZero())

	updated, err := svc.Update(f.dbc, &sd.ID, created.ID, RawEpisodeUpdateInput{
		Label:    patch.Of("good"),
		Operator: patch.Null[string](),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Label)
	assert.Equal(t, "good", *updated.Label)
	assert.Nil(t, updated.Operator)
	require.NotNil(t, updated.RecordedAt)
	assert.True(t, recorded.Equal(*updated.RecordedAt))

	good := "good"
	list, err := svc.List(f.dbc, repos.RawEpisodeFilter{SubdatasetID: &sd.ID, Label: &good, Page: repos.All})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(f.dbc, &sd.ID, created.ID))
	list, err = svc.List(f.dbc, repos.RawEpisodeFilter{SubdatasetID: &sd.ID, Page: repos.All})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRawEpisodeCreateValidation(t *testing.T) {
	f := newFixture(t)
	svc := f.rawEpisodeService()

	_, err := svc.Create(f.dbc, RawEpisodeCreateInput{})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation))

	_, err = svc.Create(f.dbc, RawEpisodeCreateInput{SubdatasetID: 31})
	assert.Equal(t, msgSubdatasetNotFound, domainagg.MessageOf(err))

	missing := 31
	_, err = svc.List(f.dbc, repos.RawEpisodeFilter{SubdatasetID: &missing})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))
}
