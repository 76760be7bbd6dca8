package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repos "github.com/yungbote/mimichub-backend/internal/data/repos/catalog"
	"github.com/yungbote/mimichub-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/mimichub-backend/internal/domain/aggregates"
	types "github.com/yungbote/mimichub-backend/internal/domain/catalog"
	"github.com/yungbote/mimichub-backend/internal/platform/cache"
)

func TestReferenceServiceServesFromCache(t *testing.T) {
	f := newFixture(t)
	store := cache.NewMemory(time.Minute, 0)
	t.Cleanup(func() { _ = store.Close() })
	svc := NewReferenceService(f.log, store, time.Minute, f.repos.Embodiments, f.repos.TeleopModes)

	testutil.SeedEmbodiment(t, f.db, "aloha")
	first, err := svc.ListEmbodiments(f.dbc, repos.All)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// written behind the service's back: invisible until the entry is dropped
	testutil.SeedEmbodiment(t, f.db, "koch")
	cached, err := svc.ListEmbodiments(f.dbc, repos.All)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	require.NoError(t, svc.CreateEmbodiment(f.dbc, &types.Embodiment{Name: "so100"}))
	fresh, err := svc.ListEmbodiments(f.dbc, repos.All)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)

	got, err := svc.GetEmbodiment(f.dbc, fresh[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "koch", got.Name)

	_, err = svc.GetEmbodiment(f.dbc, 999)
	assert.Equal(t, msgEmbodimentNotFound, domainagg.MessageOf(err))
}

func TestReferenceServiceWithoutCache(t *testing.T) {
	f := newFixture(t)
	svc := NewReferenceService(f.log, nil, 0, f.repos.Embodiments, f.repos.TeleopModes)

	testutil.SeedTeleopMode(t, f.db, "vr")
	testutil.SeedTeleopMode(t, f.db, "spacemouse")
	modes, err := svc.ListTeleopModes(f.dbc, repos.Page{Skip: 1, Limit: 5})
	require.NoError(t, err)
	require.Len(t, modes, 1)
	assert.Equal(t, "spacemouse", modes[0].Name)

	_, err = svc.GetTeleopMode(f.dbc, 77)
	assert.Equal(t, msgTeleopNotFound, domainagg.MessageOf(err))
}

func TestPaginate(t *testing.T) {
	rows := []int{1, 2, 3, 4}
	cases := []struct {
		page repos.Page
		want []int
	}{
		{repos.All, []int{1, 2, 3, 4}},
		{repos.Page{Skip: 1, Limit: 2}, []int{2, 3}},
		{repos.Page{Skip: 10, Limit: 2}, []int{}},
		{repos.Page{Skip: -3, Limit: 0}, []int{}},
		{repos.Page{Skip: 3, Limit: -1}, []int{4}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, paginate(rows, tc.page), "page %+v", tc.page)
	}
}
