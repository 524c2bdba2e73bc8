package services_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"noiressence/internal/domain"
	"noiressence/internal/repos"
	"noiressence/internal/services"
)

func newCatalog(t *testing.T) *services.CatalogService {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return services.NewCatalogService(repos.NewProductRepo(db), repos.NewCategoryRepo(db))
}

func TestCreateFillsDefaultsAndAppends(t *testing.T) {
	cat := newCatalog(t)

	p, err := cat.Create(domain.Draft{Name: "  Amber Dusk ", Price: "99.50", Notes: []string{"Amber", " ", "Musk"}})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.Equal(t, "Amber Dusk", p.Name)
	require.Equal(t, domain.HouseBrand, p.Brand)
	require.Equal(t, domain.PlaceholderImage, p.Image)
	require.Equal(t, domain.Unisex, p.Category)
	require.Equal(t, []string{"Amber", "Musk"}, p.Notes)
	require.True(t, p.IsNew)

	all, err := cat.List()
	require.NoError(t, err)
	require.Len(t, all, 7)
	require.Equal(t, p.ID, all[6].ID)
	require.True(t, all[6].Price.Equal(decimal.RequireFromString("99.5")))
}

func TestCreateRejectsInvalidDrafts(t *testing.T) {
	cat := newCatalog(t)
	cases := map[string]domain.Draft{
		"no name":      {Price: "10"},
		"no price":     {Name: "X"},
		"zero price":   {Name: "X", Price: "0"},
		"negative":     {Name: "X", Price: "-5"},
		"not a number": {Name: "X", Price: "abc"},
		"bad category": {Name: "X", Price: "10", Category: "Kids"},
	}
	for name, d := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := cat.Create(d)
			require.ErrorIs(t, err, services.ErrInvalidDraft)
		})
	}
	st, err := cat.Stats()
	require.NoError(t, err)
	require.Equal(t, 6, st.Count)
}

func TestDeleteUnknownIsNoop(t *testing.T) {
	cat := newCatalog(t)
	ok, err := cat.Delete("does-not-exist")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = cat.Delete("2")
	require.NoError(t, err)
	require.True(t, ok)
	_, err = cat.Get("2")
	require.ErrorIs(t, err, services.ErrProductMissing)
}

func TestStatsAveragePrice(t *testing.T) {
	cat := newCatalog(t)
	st, err := cat.Stats()
	require.NoError(t, err)
	require.Equal(t, 6, st.Count)
	require.Equal(t, "167.50", st.AvgPrice.StringFixed(2))

	for _, id := range []string{"1", "2", "3", "4", "5", "6"} {
		_, err := cat.Delete(id)
		require.NoError(t, err)
	}
	st, err = cat.Stats()
	require.NoError(t, err)
	require.Zero(t, st.Count)
	require.True(t, st.AvgPrice.IsZero())
}

func TestBrowseFiltersByCategoryAndQuery(t *testing.T) {
	cat := newCatalog(t)

	women, err := cat.Browse("", domain.Women)
	require.NoError(t, err)
	require.Len(t, women, 2)

	oud, err := cat.Browse("OUD", "")
	require.NoError(t, err)
	require.Len(t, oud, 1)
	require.Equal(t, "Midnight Oud", oud[0].Name)

	none, err := cat.Browse("oud", domain.Men)
	require.NoError(t, err)
	require.Empty(t, none)

	counts, err := cat.CategoryCounts()
	require.NoError(t, err)
	require.Len(t, counts, 3)
}
